package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mindcanvas/internal/event"
	"mindcanvas/internal/model"
	"mindcanvas/internal/storage"
)

// MindmapPatch carries optional field updates for a mindmap. Nil pointers
// leave a field untouched, so an empty string can be set deliberately.
type MindmapPatch struct {
	Name     *string
	Category *string
	Data     *MindmapDataPatch
}

// MindmapDataPatch merges into a mindmap's data one level deep: a non-nil
// Nodes map replaces the node table, a non-nil RootNodeIDs slice replaces
// the root order. The result passes through the migration pass, so partial
// or inconsistent payloads are repaired rather than rejected.
type MindmapDataPatch struct {
	Nodes       map[string]*model.NodeData
	RootNodeIDs []string
}

// CreateMindmap adds an empty mindmap to the collection and persists it.
func (m *Manager) CreateMindmap(ctx context.Context, name, category string) (*model.Mindmap, error) {
	if !model.ValidName(name) {
		return nil, fmt.Errorf("mindmap name must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mm := model.NewMindmap(uuid.NewString(), name, category, time.Now().UTC())
	m.mindmaps = append(m.mindmaps, mm)
	if err := m.persistLocked(ctx); err != nil {
		return nil, err
	}

	m.events.Publish(event.Event{Type: event.MindmapCreated, Data: mm.Clone()})
	m.logger.Info("mindmap created", "id", mm.ID, "name", mm.Name)
	return mm.Clone(), nil
}

// UpdateMindmap applies a patch and persists. Unknown ids are a silent
// no-op returning (nil, false, nil).
func (m *Manager) UpdateMindmap(ctx context.Context, id string, patch MindmapPatch) (*model.Mindmap, bool, error) {
	if patch.Name != nil && !model.ValidName(*patch.Name) {
		return nil, false, fmt.Errorf("mindmap name must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mm := m.findLocked(id)
	if mm == nil {
		return nil, false, nil
	}

	if patch.Name != nil {
		mm.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		mm.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Data != nil {
		if patch.Data.Nodes != nil {
			nodes := make(map[string]*model.NodeData, len(patch.Data.Nodes))
			for nid, n := range patch.Data.Nodes {
				nodes[nid] = n.Clone()
			}
			mm.Data.Nodes = nodes
		}
		if patch.Data.RootNodeIDs != nil {
			mm.Data.RootNodeIDs = append([]string{}, patch.Data.RootNodeIDs...)
		}
		Normalize(mm)
	}
	mm.UpdatedAt = time.Now().UTC()

	if err := m.persistLocked(ctx); err != nil {
		return nil, true, err
	}
	m.events.Publish(event.Event{Type: event.MindmapUpdated, Data: mm.Clone()})
	return mm.Clone(), true, nil
}

// DeleteMindmap removes a mindmap and persists. Unknown ids are a no-op.
func (m *Manager) DeleteMindmap(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, mm := range m.mindmaps {
		if mm.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	m.mindmaps = append(m.mindmaps[:idx], m.mindmaps[idx+1:]...)
	if err := m.persistLocked(ctx); err != nil {
		return true, err
	}

	m.events.Publish(event.Event{Type: event.MindmapDeleted, Data: id})
	m.logger.Info("mindmap deleted", "id", id)
	return true, nil
}

// ExportMindmap writes one mindmap to a file. An empty path derives the file
// name from the mindmap's display name in the current directory. It returns
// the path written.
func (m *Manager) ExportMindmap(id, path, format string) (string, error) {
	format, err := storage.ParseFormat(format)
	if err != nil {
		return "", err
	}

	mm, ok := m.MindmapByID(id)
	if !ok {
		return "", fmt.Errorf("mindmap not found")
	}
	if path == "" {
		path = storage.ExportFileName(mm.Name, format)
	}
	if err := storage.FileExport(mm, path, format); err != nil {
		return "", err
	}

	m.logger.Info("mindmap exported", "id", id, "path", path, "format", format)
	return path, nil
}

// ImportMindmap reads a mindmap from a file, repairs it through the
// migration pass and appends it to the collection. A colliding or missing id
// is replaced with a fresh one.
func (m *Manager) ImportMindmap(ctx context.Context, path, format string) (*model.Mindmap, error) {
	imported, err := storage.FileImport(path, format)
	if err != nil {
		return nil, err
	}
	if !model.ValidName(imported.Name) {
		return nil, fmt.Errorf("imported mindmap has no name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if imported.ID == "" || m.findLocked(imported.ID) != nil {
		imported.ID = uuid.NewString()
	}
	Normalize(imported)

	now := time.Now().UTC()
	if imported.CreatedAt.IsZero() {
		imported.CreatedAt = now
	}
	imported.UpdatedAt = now

	m.mindmaps = append(m.mindmaps, imported)
	if err := m.persistLocked(ctx); err != nil {
		return nil, err
	}

	m.events.Publish(event.Event{Type: event.MindmapCreated, Data: imported.Clone()})
	m.logger.Info("mindmap imported", "id", imported.ID, "name", imported.Name, "path", path)
	return imported.Clone(), nil
}
