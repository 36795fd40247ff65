package data

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/internal/event"
	"mindcanvas/internal/layout"
	"mindcanvas/internal/model"
	"mindcanvas/internal/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "mindmaps.json"), 0, nil)
	require.NoError(t, err)

	m, err := NewManager(store, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Load(context.Background()))
	return m
}

// requireLinkInvariants asserts that rootNodeIds is exactly the parentless
// id set and that every parent/child link is bidirectional.
func requireLinkInvariants(t *testing.T, mm *model.Mindmap) {
	t.Helper()
	roots := make(map[string]bool)
	for _, rid := range mm.Data.RootNodeIDs {
		require.Contains(t, mm.Data.Nodes, rid)
		require.Nil(t, mm.Data.Nodes[rid].ParentID, "root %s must be parentless", rid)
		require.False(t, roots[rid], "duplicate root id %s", rid)
		roots[rid] = true
	}
	for id, n := range mm.Data.Nodes {
		if n.ParentID == nil {
			require.True(t, roots[id], "parentless node %s missing from rootNodeIds", id)
		} else {
			parent := mm.Data.Nodes[*n.ParentID]
			require.NotNil(t, parent, "node %s has dangling parent", id)
			require.Contains(t, parent.ChildIDs, id)
		}
		for _, cid := range n.ChildIDs {
			child := mm.Data.Nodes[cid]
			require.NotNil(t, child, "childIds of %s holds dangling id %s", id, cid)
			require.NotNil(t, child.ParentID)
			require.Equal(t, id, *child.ParentID)
		}
	}
}

func TestCreateMindmap(t *testing.T) {
	m := newTestManager(t)

	mm, err := m.CreateMindmap(context.Background(), "  Physics  ", "science")
	require.NoError(t, err)
	assert.NotEmpty(t, mm.ID)
	assert.Equal(t, "Physics", mm.Name)
	assert.Equal(t, "science", mm.Category)
	assert.False(t, mm.CreatedAt.IsZero())
	assert.Equal(t, mm.CreatedAt, mm.UpdatedAt)
	assert.Empty(t, mm.Data.Nodes)

	assert.Len(t, m.Mindmaps(), 1)

	_, err = m.CreateMindmap(context.Background(), "   ", "")
	require.Error(t, err)
}

func TestMindmapByID(t *testing.T) {
	m := newTestManager(t)
	created, err := m.CreateMindmap(context.Background(), "Physics", "")
	require.NoError(t, err)

	got, ok := m.MindmapByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, created.ID, got.ID)

	// Accessors hand out clones; mutating one must not leak into the engine.
	got.Name = "tampered"
	got.Data.Nodes["ghost"] = &model.NodeData{ID: "ghost"}
	again, ok := m.MindmapByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Physics", again.Name)
	assert.Empty(t, again.Data.Nodes)

	_, ok = m.MindmapByID("no-such-id")
	assert.False(t, ok)
}

func TestUpdateMindmap(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	created, err := m.CreateMindmap(ctx, "Physics", "science")
	require.NoError(t, err)

	t.Run("patch fields", func(t *testing.T) {
		name, category := "Classical Physics", ""
		got, ok, err := m.UpdateMindmap(ctx, created.ID, MindmapPatch{Name: &name, Category: &category})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Classical Physics", got.Name)
		assert.Empty(t, got.Category)
		assert.True(t, got.UpdatedAt.After(created.UpdatedAt) || got.UpdatedAt.Equal(created.UpdatedAt))
	})

	t.Run("data payload replaces and is repaired", func(t *testing.T) {
		pid := "r"
		nodes := map[string]*model.NodeData{
			"r": {ID: "r", Title: "Root", ChildIDs: []string{"c"}, X: 100, Y: 100, Size: model.SizeStandard, Width: 250, Height: 120},
			"c": {ID: "c", Title: "Child", ParentID: &pid, X: 100, Y: 280, Size: model.SizeStandard, Width: 250, Height: 120},
		}
		got, ok, err := m.UpdateMindmap(ctx, created.ID, MindmapPatch{Data: &MindmapDataPatch{Nodes: nodes}})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []string{"r"}, got.Data.RootNodeIDs, "migration must rebuild the root order")
		requireLinkInvariants(t, got)
	})

	t.Run("unknown id", func(t *testing.T) {
		got, ok, err := m.UpdateMindmap(ctx, "no-such-id", MindmapPatch{})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		name := "   "
		_, _, err := m.UpdateMindmap(ctx, created.ID, MindmapPatch{Name: &name})
		require.Error(t, err)
	})
}

func TestDeleteMindmap(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	created, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	ok, err := m.DeleteMindmap(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, m.Mindmaps())

	ok, err = m.DeleteMindmap(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddNodeScenario(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	root, ok, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Mechanics"})
	require.NoError(t, err)
	require.True(t, ok)
	child, ok, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "Newton's Laws"})
	require.NoError(t, err)
	require.True(t, ok)

	got, ok := m.MindmapByID(mm.ID)
	require.True(t, ok)
	require.Len(t, got.Data.RootNodeIDs, 1)
	assert.Equal(t, root.ID, got.Data.RootNodeIDs[0])
	require.NotNil(t, got.Data.Nodes[child.ID].ParentID)
	assert.Equal(t, root.ID, *got.Data.Nodes[child.ID].ParentID)
	assert.Equal(t, []string{child.ID}, got.Data.Nodes[root.ID].ChildIDs)
	requireLinkInvariants(t, got)

	// First root lands on the canonical origin; the first child sits one
	// vertical gap below, centered under the parent.
	assert.Equal(t, layout.OriginX, root.X)
	assert.Equal(t, layout.OriginY, root.Y)
	assert.Equal(t, root.X, child.X)
	assert.Equal(t, root.Y+root.Height+layout.VerticalGap, child.Y)
	assert.Equal(t, model.SizeStandard, child.Size)
	assert.Equal(t, 250.0, child.Width)
	assert.GreaterOrEqual(t, child.Height, layout.MinNodeHeight)
	assert.LessOrEqual(t, child.Height, layout.MaxNodeHeight)
}

func TestAddNodeSecondRootPlacedToTheRight(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	first, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Mechanics"})
	require.NoError(t, err)
	second, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Optics"})
	require.NoError(t, err)

	assert.Equal(t, first.X+first.Width+layout.RootGap, second.X)
	assert.Equal(t, first.Y, second.Y)
}

func TestAddNodeSiblingSlots(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)
	root, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Mechanics"})
	require.NoError(t, err)

	a, _, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "A"})
	require.NoError(t, err)
	b, _, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "B"})
	require.NoError(t, err)

	// The second child takes the last of two standard-width slots whose
	// block is centered under the parent, half a slot right of the first
	// child's original position.
	assert.Equal(t, a.Y, b.Y)
	assert.Equal(t, (250.0+layout.SiblingGap)/2, b.X-a.X)
}

func TestAddNodeUnresolvableParentFallsBackToRoot(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	n, ok, err := m.AddNode(ctx, mm.ID, "no-such-parent", NodeContent{Title: "Adrift"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, n.ParentID)

	got, _ := m.MindmapByID(mm.ID)
	assert.Contains(t, got.Data.RootNodeIDs, n.ID)
	requireLinkInvariants(t, got)
}

func TestAddNodeValidation(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	_, _, err = m.AddNode(ctx, mm.ID, "", NodeContent{Title: "  "})
	require.Error(t, err)

	_, _, err = m.AddNode(ctx, mm.ID, "", NodeContent{Title: "ok", Color: "#123456"})
	require.Error(t, err)

	_, ok, err := m.AddNode(ctx, "no-such-mindmap", "", NodeContent{Title: "ok"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateNode(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)
	n, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Mechanics"})
	require.NoError(t, err)

	t.Run("content change recomputes height", func(t *testing.T) {
		long := "An extended discussion of classical mechanics covering kinematics, dynamics, " +
			"energy, momentum, rotation, oscillation and gravitation in enough words to wrap."
		got, ok, err := m.UpdateNode(ctx, mm.ID, n.ID, NodePatch{Description: &long})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Greater(t, got.Height, n.Height)
		assert.LessOrEqual(t, got.Height, layout.MaxNodeHeight)
	})

	t.Run("explicit height only clamped", func(t *testing.T) {
		h := 5000.0
		got, _, err := m.UpdateNode(ctx, mm.ID, n.ID, NodePatch{Height: &h})
		require.NoError(t, err)
		assert.Equal(t, layout.MaxNodeHeight, got.Height)

		low := 5.0
		got, _, err = m.UpdateNode(ctx, mm.ID, n.ID, NodePatch{Height: &low})
		require.NoError(t, err)
		assert.Equal(t, layout.MinNodeHeight, got.Height)
	})

	t.Run("color change keeps height", func(t *testing.T) {
		before, _ := m.MindmapByID(mm.ID)
		color := "#FDE68A"
		got, _, err := m.UpdateNode(ctx, mm.ID, n.ID, NodePatch{Color: &color})
		require.NoError(t, err)
		assert.Equal(t, "#FDE68A", got.Color)
		assert.Equal(t, before.Data.Nodes[n.ID].Height, got.Height)
	})

	t.Run("size resets width", func(t *testing.T) {
		size := model.SizeMassive
		got, _, err := m.UpdateNode(ctx, mm.ID, n.ID, NodePatch{Size: &size})
		require.NoError(t, err)
		assert.Equal(t, 320.0, got.Width)
	})

	t.Run("validation", func(t *testing.T) {
		bad := " "
		_, _, err := m.UpdateNode(ctx, mm.ID, n.ID, NodePatch{Title: &bad})
		require.Error(t, err)

		color := "#000000"
		_, _, err = m.UpdateNode(ctx, mm.ID, n.ID, NodePatch{Color: &color})
		require.Error(t, err)
	})

	t.Run("unknown node is a no-op", func(t *testing.T) {
		got, ok, err := m.UpdateNode(ctx, mm.ID, "no-such-node", NodePatch{})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}

func TestMoveNode(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)
	n, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Mechanics"})
	require.NoError(t, err)

	ok, err := m.MoveNode(ctx, mm.ID, n.ID, -250.5, 99999)
	require.NoError(t, err)
	require.True(t, ok)

	got, _ := m.MindmapByID(mm.ID)
	assert.Equal(t, -250.5, got.Data.Nodes[n.ID].X)
	assert.Equal(t, 99999.0, got.Data.Nodes[n.ID].Y)

	ok, err = m.MoveNode(ctx, mm.ID, "no-such-node", 0, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResizeNodeHeightAlwaysInBounds(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	texts := []NodeContent{
		{Title: "x"},
		{Title: "A very long title that should certainly wrap across several lines of the card"},
		{Title: "t", Description: "short"},
		{Title: "t", Description: "An enormous description. " + longText(40), Emoji: "🧲"},
	}
	for i, content := range texts {
		n, _, err := m.AddNode(ctx, mm.ID, "", content)
		require.NoError(t, err)
		for _, size := range []model.SizeCategory{model.SizeMini, model.SizeStandard, model.SizeMassive} {
			got, ok, err := m.ResizeNode(ctx, mm.ID, n.ID, size)
			require.NoError(t, err)
			require.True(t, ok)
			assert.GreaterOrEqual(t, got.Height, layout.MinNodeHeight, "case %d size %s", i, size)
			assert.LessOrEqual(t, got.Height, layout.MaxNodeHeight, "case %d size %s", i, size)
			assert.Equal(t, layout.WidthFor(size), got.Width)
		}
	}

	_, _, err = m.ResizeNode(ctx, mm.ID, "whatever", model.SizeCategory("huge"))
	require.Error(t, err)
}

func longText(words int) string {
	out := ""
	for i := 0; i < words; i++ {
		out += fmt.Sprintf("word%d ", i)
	}
	return out
}

func TestDeleteNodeCascades(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	root, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Mechanics"})
	require.NoError(t, err)
	a, _, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "Kinematics"})
	require.NoError(t, err)
	b, _, err := m.AddNode(ctx, mm.ID, a.ID, NodeContent{Title: "Velocity"})
	require.NoError(t, err)
	c, _, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "Dynamics"})
	require.NoError(t, err)

	ok, err := m.DeleteNode(ctx, mm.ID, a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, _ := m.MindmapByID(mm.ID)
	assert.NotContains(t, got.Data.Nodes, a.ID)
	assert.NotContains(t, got.Data.Nodes, b.ID)
	assert.Equal(t, []string{c.ID}, got.Data.Nodes[root.ID].ChildIDs)
	requireLinkInvariants(t, got)

	t.Run("deleting the root empties the map", func(t *testing.T) {
		ok, err := m.DeleteNode(ctx, mm.ID, root.ID)
		require.NoError(t, err)
		require.True(t, ok)

		got, _ := m.MindmapByID(mm.ID)
		assert.Empty(t, got.Data.Nodes)
		assert.Empty(t, got.Data.RootNodeIDs)
	})

	ok, err = m.DeleteNode(ctx, mm.ID, "no-such-node")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindNodes(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	root, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Mechanics"})
	require.NoError(t, err)
	child, _, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "Waves", Description: "mechanical oscillation"})
	require.NoError(t, err)
	_, _, err = m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Optics"})
	require.NoError(t, err)

	matches, ok := m.FindNodes(mm.ID, "MECHANIC")
	require.True(t, ok)
	require.Len(t, matches, 2)
	assert.Equal(t, root.ID, matches[0].ID, "depth-first order starts at the first root")
	assert.Equal(t, child.ID, matches[1].ID)

	matches, ok = m.FindNodes(mm.ID, "no such text")
	require.True(t, ok)
	assert.Empty(t, matches)

	_, ok = m.FindNodes("no-such-mindmap", "x")
	assert.False(t, ok)
}

func TestSortChildren(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	root, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Topics"})
	require.NoError(t, err)
	banana, _, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "Banana"})
	require.NoError(t, err)
	apple, _, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "apple"})
	require.NoError(t, err)
	cherry, _, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "Cherry"})
	require.NoError(t, err)

	before, _ := m.MindmapByID(mm.ID)
	positions := map[string][2]float64{}
	for id, n := range before.Data.Nodes {
		positions[id] = [2]float64{n.X, n.Y}
	}

	ok, err := m.SortChildren(ctx, mm.ID, root.ID, false)
	require.NoError(t, err)
	require.True(t, ok)

	got, _ := m.MindmapByID(mm.ID)
	assert.Equal(t, []string{apple.ID, banana.ID, cherry.ID}, got.Data.Nodes[root.ID].ChildIDs)
	for id, n := range got.Data.Nodes {
		assert.Equal(t, positions[id], [2]float64{n.X, n.Y}, "sort must not move cards")
	}

	t.Run("empty node id sorts roots", func(t *testing.T) {
		_, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Appendix"})
		require.NoError(t, err)
		ok, err := m.SortChildren(ctx, mm.ID, "", false)
		require.NoError(t, err)
		require.True(t, ok)

		got, _ := m.MindmapByID(mm.ID)
		titles := make([]string, 0, len(got.Data.RootNodeIDs))
		for _, rid := range got.Data.RootNodeIDs {
			titles = append(titles, got.Data.Nodes[rid].Title)
		}
		assert.Equal(t, []string{"Appendix", "Topics"}, titles)
	})

	ok, err = m.SortChildren(ctx, mm.ID, "no-such-node", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSortChildrenRecursive(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	root, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: "Topics"})
	require.NoError(t, err)
	b, _, err := m.AddNode(ctx, mm.ID, root.ID, NodeContent{Title: "B"})
	require.NoError(t, err)
	bz, _, err := m.AddNode(ctx, mm.ID, b.ID, NodeContent{Title: "z"})
	require.NoError(t, err)
	ba, _, err := m.AddNode(ctx, mm.ID, b.ID, NodeContent{Title: "a"})
	require.NoError(t, err)

	ok, err := m.SortChildren(ctx, mm.ID, "", true)
	require.NoError(t, err)
	require.True(t, ok)

	got, _ := m.MindmapByID(mm.ID)
	assert.Equal(t, []string{ba.ID, bz.ID}, got.Data.Nodes[b.ID].ChildIDs)
}

func TestPersistenceAcrossManagers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mindmaps.json")
	ctx := context.Background()

	store, err := storage.NewFileStore(path, 0, nil)
	require.NoError(t, err)
	first, err := NewManager(store, nil, nil)
	require.NoError(t, err)
	require.NoError(t, first.Load(ctx))

	mm, err := first.CreateMindmap(ctx, "Physics", "science")
	require.NoError(t, err)
	root, _, err := first.AddNode(ctx, mm.ID, "", NodeContent{Title: "Mechanics"})
	require.NoError(t, err)

	reopened, err := storage.NewFileStore(path, 0, nil)
	require.NoError(t, err)
	second, err := NewManager(reopened, nil, nil)
	require.NoError(t, err)
	require.NoError(t, second.Load(ctx))

	got, ok := second.MindmapByID(mm.ID)
	require.True(t, ok)
	assert.Equal(t, "Physics", got.Name)
	require.Contains(t, got.Data.Nodes, root.ID)
	assert.Equal(t, "Mechanics", got.Data.Nodes[root.ID].Title)
	requireLinkInvariants(t, got)
}

type brokenStore struct {
	loadErr error
	saveErr error
}

func (s *brokenStore) LoadAll(context.Context) ([]*model.Mindmap, error) {
	return nil, s.loadErr
}

func (s *brokenStore) SaveAll(context.Context, []*model.Mindmap) error {
	return s.saveErr
}

func (s *brokenStore) Close() error { return nil }

func TestLoadDegradesToEmptyOnReadFailure(t *testing.T) {
	m, err := NewManager(&brokenStore{loadErr: fmt.Errorf("disk on fire")}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, m.Load(context.Background()))
	assert.Empty(t, m.Mindmaps())
}

func TestWriteFailureSurfacedButStateKept(t *testing.T) {
	m, err := NewManager(&brokenStore{saveErr: fmt.Errorf("read-only filesystem")}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Load(context.Background()))

	_, err = m.CreateMindmap(context.Background(), "Physics", "")
	require.Error(t, err)
	assert.Len(t, m.Mindmaps(), 1, "in-memory state keeps the applied mutation")
}

func TestReloadSkipsOwnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindmaps.json")
	ctx := context.Background()

	store, err := storage.NewFileStore(path, 0, nil)
	require.NoError(t, err)
	m, err := NewManager(store, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Load(ctx))

	reloads := make(chan event.Event, 4)
	m.Events().Subscribe(event.CollectionReloaded, func(e event.Event) { reloads <- e })

	_, err = m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	// Reloading the engine's own save must not announce anything.
	require.NoError(t, m.Reload(ctx))
	select {
	case <-reloads:
		t.Fatal("reload of the engine's own save must not publish an event")
	case <-time.After(300 * time.Millisecond):
	}

	// An outside edit must swap in and announce.
	outside, err := storage.NewFileStore(path, 0, nil)
	require.NoError(t, err)
	external := model.NewMindmap("ext", "Edited Elsewhere", "", time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))
	require.NoError(t, outside.SaveAll(ctx, []*model.Mindmap{external}))

	require.NoError(t, m.Reload(ctx))
	select {
	case <-reloads:
	case <-time.After(3 * time.Second):
		t.Fatal("external change should publish a reload event")
	}
	_, ok := m.MindmapByID("ext")
	assert.True(t, ok)
}

func TestConcurrentMutationsAndReads(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	mm, err := m.CreateMindmap(ctx, "Physics", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _, err := m.AddNode(ctx, mm.ID, "", NodeContent{Title: fmt.Sprintf("n%d", i)})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			if got, ok := m.MindmapByID(mm.ID); ok {
				requireLinkInvariants(t, got)
			}
		}()
	}
	wg.Wait()

	got, _ := m.MindmapByID(mm.ID)
	assert.Len(t, got.Data.RootNodeIDs, 8)
	requireLinkInvariants(t, got)
}
