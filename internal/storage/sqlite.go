package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mindcanvas/internal/logging"
	"mindcanvas/internal/model"
)

// SQLiteStore persists the collection relationally. Child and root ordering
// is kept in a sort_order column; geometry columns are nullable so legacy
// rows round-trip as missing fields for the migration pass to repair.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLiteStore opens (or creates) the database file and initializes the
// schema.
func NewSQLiteStore(path string, logger logging.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store path must not be empty")
	}
	if logger == nil {
		logger = logging.NewNoop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set SQLite synchronous pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA cache_size = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set SQLite cache pragma: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify database connection: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	s.logger.Debug("sqlite store opened", "path", path)
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS mindmaps (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			sort_order INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT NOT NULL,
			mindmap_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			emoji TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			size TEXT NOT NULL DEFAULT '',
			width REAL,
			height REAL,
			parent_id TEXT,
			x REAL,
			y REAL,
			sort_order INTEGER NOT NULL,
			PRIMARY KEY (mindmap_id, id),
			FOREIGN KEY (mindmap_id) REFERENCES mindmaps(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent
			ON nodes(mindmap_id, parent_id, sort_order);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// LoadAll reconstructs the collection, rebuilding childIds and rootNodeIds
// from parent references and sort_order.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]*model.Mindmap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category, created_at, updated_at FROM mindmaps ORDER BY sort_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mindmaps: %w", err)
	}
	defer rows.Close()

	var maps []*model.Mindmap
	byID := make(map[string]*model.Mindmap)
	for rows.Next() {
		var m model.Mindmap
		var created, updated string
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan mindmap row: %w", err)
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for mindmap %s: %w", m.ID, err)
		}
		if m.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at for mindmap %s: %w", m.ID, err)
		}
		m.Data = model.MindmapData{Nodes: make(map[string]*model.NodeData), RootNodeIDs: []string{}}
		maps = append(maps, &m)
		byID[m.ID] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mindmap rows: %w", err)
	}

	nodeRows, err := s.db.QueryContext(ctx, `
		SELECT mindmap_id, id, title, description, emoji, color, size,
		       width, height, parent_id, x, y
		FROM nodes ORDER BY mindmap_id, sort_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer nodeRows.Close()

	rowOrder := make(map[string][]string)
	for nodeRows.Next() {
		var (
			mindmapID     string
			n             model.NodeData
			size          string
			width, height sql.NullFloat64
			parentID      sql.NullString
			x, y          sql.NullFloat64
		)
		if err := nodeRows.Scan(&mindmapID, &n.ID, &n.Title, &n.Description, &n.Emoji, &n.Color,
			&size, &width, &height, &parentID, &x, &y); err != nil {
			return nil, fmt.Errorf("failed to scan node row: %w", err)
		}
		n.Size = model.SizeCategory(size)
		if width.Valid {
			n.Width = width.Float64
		}
		if height.Valid {
			n.Height = height.Float64
		}
		n.X, n.Y = math.NaN(), math.NaN()
		if x.Valid {
			n.X = x.Float64
		}
		if y.Valid {
			n.Y = y.Float64
		}
		if parentID.Valid {
			pid := parentID.String
			n.ParentID = &pid
		}
		n.ChildIDs = []string{}

		m, ok := byID[mindmapID]
		if !ok {
			continue
		}
		m.Data.Nodes[n.ID] = &n
		rowOrder[mindmapID] = append(rowOrder[mindmapID], n.ID)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate node rows: %w", err)
	}

	// Link in sort_order once every node is scanned, so a child row stored
	// before its parent still attaches deterministically.
	for _, m := range maps {
		for _, id := range rowOrder[m.ID] {
			n := m.Data.Nodes[id]
			if n.ParentID == nil {
				m.Data.RootNodeIDs = append(m.Data.RootNodeIDs, id)
			} else if parent, ok := m.Data.Nodes[*n.ParentID]; ok {
				parent.ChildIDs = append(parent.ChildIDs, id)
			}
		}
	}

	if maps == nil {
		maps = []*model.Mindmap{}
	}
	return maps, nil
}

// SaveAll replaces the persisted collection inside one transaction.
func (s *SQLiteStore) SaveAll(ctx context.Context, maps []*model.Mindmap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM mindmaps`); err != nil {
		return fmt.Errorf("failed to clear mindmaps: %w", err)
	}

	insertMap, err := tx.PrepareContext(ctx, `
		INSERT INTO mindmaps (id, name, category, created_at, updated_at, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare mindmap insert: %w", err)
	}
	defer insertMap.Close()

	insertNode, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (mindmap_id, id, title, description, emoji, color, size,
		                   width, height, parent_id, x, y, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer insertNode.Close()

	for i, m := range maps {
		if _, err := insertMap.ExecContext(ctx, m.ID, m.Name, m.Category,
			m.CreatedAt.Format(time.RFC3339Nano), m.UpdatedAt.Format(time.RFC3339Nano), i); err != nil {
			return fmt.Errorf("failed to insert mindmap %s: %w", m.ID, err)
		}
		if err := s.insertNodes(ctx, insertNode, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection: %w", err)
	}
	return nil
}

// insertNodes writes a mindmap's node table in traversal order so sibling
// positions land in sort_order.
func (s *SQLiteStore) insertNodes(ctx context.Context, stmt *sql.Stmt, m *model.Mindmap) error {
	order := 0
	written := make(map[string]bool, len(m.Data.Nodes))

	var write func(id string) error
	write = func(id string) error {
		n, ok := m.Data.Nodes[id]
		if !ok || written[id] {
			return nil
		}
		written[id] = true

		var parent any
		if n.ParentID != nil {
			parent = *n.ParentID
		}
		x, y := nullableCoord(n.X), nullableCoord(n.Y)
		if _, err := stmt.ExecContext(ctx, m.ID, n.ID, n.Title, n.Description, n.Emoji, n.Color,
			string(n.Size), n.Width, n.Height, parent, x, y, order); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
		order++

		for _, cid := range n.ChildIDs {
			if err := write(cid); err != nil {
				return err
			}
		}
		return nil
	}

	for _, rid := range m.Data.RootNodeIDs {
		if err := write(rid); err != nil {
			return err
		}
	}
	// Anything not reachable from a root still gets persisted; the migration
	// pass adopts it on the next load.
	for id := range m.Data.Nodes {
		if err := write(id); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	return nil
}

func nullableCoord(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
