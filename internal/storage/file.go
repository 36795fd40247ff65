package storage

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/crypto/blake2b"

	"mindcanvas/internal/logging"
	"mindcanvas/internal/model"
)

// FileStore keeps the whole collection in one JSON file. Writes are atomic
// (temp file + rename), accompanied by a BLAKE2b checksum sidecar, and the
// previous contents are kept as gzip-compressed rotating backups.
type FileStore struct {
	mu      sync.Mutex
	path    string
	backups int
	logger  logging.Logger
}

// NewFileStore creates a file store at path, keeping up to backups rotated
// copies of overwritten data.
func NewFileStore(path string, backups int, logger logging.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path must not be empty")
	}
	if logger == nil {
		logger = logging.NewNoop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{path: path, backups: backups, logger: logger}, nil
}

// Path returns the collection file location, for watchers.
func (s *FileStore) Path() string {
	return s.path
}

// LoadAll reads and decodes the collection. A checksum sidecar mismatch is
// logged but does not block the load.
func (s *FileStore) LoadAll(ctx context.Context) ([]*model.Mindmap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("no collection file yet", "path", s.path)
		return []*model.Mindmap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}

	s.verifyChecksum(raw)

	var maps []*model.Mindmap
	if err := json.Unmarshal(raw, &maps); err != nil {
		return nil, fmt.Errorf("failed to decode collection file %s: %w", s.path, err)
	}
	if maps == nil {
		maps = []*model.Mindmap{}
	}
	return maps, nil
}

// SaveAll serializes the collection and replaces the file atomically.
func (s *FileStore) SaveAll(ctx context.Context, maps []*model.Mindmap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(maps, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	if err := s.rotateBackups(); err != nil {
		// Backups are best-effort; the write itself still proceeds.
		s.logger.Warn("backup rotation failed", "error", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp collection file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace collection file: %w", err)
	}

	sum := blake2b.Sum256(data)
	if err := os.WriteFile(s.checksumPath(), []byte(hex.EncodeToString(sum[:])+"\n"), 0644); err != nil {
		s.logger.Warn("failed to write checksum sidecar", "error", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) checksumPath() string {
	return s.path + ".sum"
}

func (s *FileStore) backupPath(i int) string {
	return fmt.Sprintf("%s.bak.%d.gz", s.path, i)
}

// verifyChecksum compares the sidecar against the file contents. Absence of
// the sidecar is normal (older data, external edits).
func (s *FileStore) verifyChecksum(raw []byte) {
	want, err := os.ReadFile(s.checksumPath())
	if err != nil {
		return
	}
	sum := blake2b.Sum256(raw)
	if got := hex.EncodeToString(sum[:]); got != strings.TrimSpace(string(want)) {
		s.logger.Warn("collection file checksum mismatch, loading anyway",
			"path", s.path, "expected", strings.TrimSpace(string(want)), "actual", got)
	}
}

// rotateBackups shifts existing backups up one slot and compresses the
// current file into slot 1.
func (s *FileStore) rotateBackups() error {
	if s.backups <= 0 {
		return nil
	}
	cur, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read current file for backup: %w", err)
	}

	for i := s.backups - 1; i >= 1; i-- {
		if _, err := os.Stat(s.backupPath(i)); err == nil {
			if err := os.Rename(s.backupPath(i), s.backupPath(i+1)); err != nil {
				return fmt.Errorf("failed to rotate backup %d: %w", i, err)
			}
		}
	}

	f, err := os.Create(s.backupPath(1))
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(cur); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("failed to compress backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize backup: %w", err)
	}
	return f.Close()
}
