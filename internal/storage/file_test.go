package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/internal/model"
)

func ptr(s string) *string { return &s }

func fixedTime() time.Time {
	return time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
}

// sampleCollection builds a fully placed two-mindmap collection so every
// store can round-trip it without the migration pass.
func sampleCollection() []*model.Mindmap {
	now := fixedTime()
	return []*model.Mindmap{
		{
			ID:        "m1",
			Name:      "Physics",
			Category:  "science",
			CreatedAt: now,
			UpdatedAt: now,
			Data: model.MindmapData{
				Nodes: map[string]*model.NodeData{
					"r1": {
						ID: "r1", Title: "Mechanics", Size: model.SizeStandard,
						Width: 250, Height: 120, ChildIDs: []string{"c1", "c2"},
						X: 4875, Y: 400,
					},
					"c1": {
						ID: "c1", Title: "Kinematics", Size: model.SizeMini,
						Width: 180, Height: 80, ParentID: ptr("r1"), ChildIDs: []string{},
						X: 4730, Y: 580,
					},
					"c2": {
						ID: "c2", Title: "Dynamics", Description: "Forces and motion",
						Emoji: "⚙️", Color: "#BFDBFE", Size: model.SizeMassive,
						Width: 320, Height: 160, ParentID: ptr("r1"), ChildIDs: []string{},
						X: 5020, Y: 580,
					},
				},
				RootNodeIDs: []string{"r1"},
			},
		},
		{
			ID:        "m2",
			Name:      "Empty Map",
			CreatedAt: now,
			UpdatedAt: now,
			Data: model.MindmapData{
				Nodes:       map[string]*model.NodeData{},
				RootNodeIDs: []string{},
			},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindmaps.json")
	store, err := NewFileStore(path, 2, nil)
	require.NoError(t, err)

	want := sampleCollection()
	require.NoError(t, store.SaveAll(context.Background(), want))

	got, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should not survive a save")
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), 0, nil)
	require.NoError(t, err)

	got, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindmaps.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store, err := NewFileStore(path, 0, nil)
	require.NoError(t, err)

	_, err = store.LoadAll(context.Background())
	require.Error(t, err)
}

func TestFileStoreChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindmaps.json")
	store, err := NewFileStore(path, 0, nil)
	require.NoError(t, err)
	require.NoError(t, store.SaveAll(context.Background(), sampleCollection()))

	sum, err := os.ReadFile(path + ".sum")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(string(sum)), 64, "BLAKE2b-256 hex digest")

	t.Run("mismatch is non-fatal", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path+".sum", []byte("0000"), 0644))
		got, err := store.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("missing sidecar is non-fatal", func(t *testing.T) {
		require.NoError(t, os.Remove(path+".sum"))
		got, err := store.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestFileStoreBackupRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mindmaps.json")
	store, err := NewFileStore(path, 2, nil)
	require.NoError(t, err)

	for _, name := range []string{"gen1", "gen2", "gen3", "gen4"} {
		maps := sampleCollection()
		maps[0].Name = name
		require.NoError(t, store.SaveAll(context.Background(), maps))
	}

	assert.Contains(t, string(mustRead(t, path)), "gen4")
	assert.Contains(t, gunzip(t, path+".bak.1.gz"), "gen3")
	assert.Contains(t, gunzip(t, path+".bak.2.gz"), "gen2")

	_, err = os.Stat(path + ".bak.3.gz")
	assert.True(t, os.IsNotExist(err), "rotation must stay within the configured count")
}

func TestFileStoreBackupsDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindmaps.json")
	store, err := NewFileStore(path, 0, nil)
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, store.SaveAll(context.Background(), sampleCollection()))
	}
	_, err = os.Stat(path + ".bak.1.gz")
	assert.True(t, os.IsNotExist(err))
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

func gunzip(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer r.Close()

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}
