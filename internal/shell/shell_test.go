package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/internal/config"
	"mindcanvas/internal/data"
	"mindcanvas/internal/storage"
	"mindcanvas/internal/summarize"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "mindmaps.json"), 0, nil)
	require.NoError(t, err)

	mgr, err := data.NewManager(store, nil, nil)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	var buf bytes.Buffer
	s := New(&buf, mgr, nil, config.CanvasConfig{ViewportWidth: 1000, ViewportHeight: 800}, nil)
	return s, &buf
}

func run(t *testing.T, s *Shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, s.Execute(context.Background(), line), "command %q", line)
	}
}

func TestExecuteRejectsUnknownCommands(t *testing.T) {
	s, _ := newTestShell(t)
	ctx := context.Background()

	assert.Error(t, s.Execute(ctx, "frobnicate"))
	assert.Error(t, s.Execute(ctx, "mindmap frobnicate"))
	assert.Error(t, s.Execute(ctx, "canvas frobnicate"))

	run(t, s, "mindmap new Physics")
	assert.Error(t, s.Execute(ctx, "node frobnicate"))
}

func TestExitCommands(t *testing.T) {
	s, _ := newTestShell(t)
	assert.ErrorIs(t, s.Execute(context.Background(), "exit"), ErrExit)
	assert.ErrorIs(t, s.Execute(context.Background(), "quit"), ErrExit)
}

func TestSystemScope(t *testing.T) {
	s, buf := newTestShell(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Execute(ctx, "system exit"), ErrExit)
	assert.ErrorIs(t, s.Execute(ctx, "system quit"), ErrExit)

	run(t, s, "system help")
	assert.Contains(t, buf.String(), "mindmap")

	err := s.Execute(ctx, "system reboot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown system operation")
}

func TestMindmapLifecycle(t *testing.T) {
	s, buf := newTestShell(t)

	run(t, s, "mindmap new Physics science")
	assert.Contains(t, buf.String(), "created")
	assert.NotEmpty(t, s.selectedID())

	buf.Reset()
	run(t, s, "mindmap list")
	assert.Contains(t, buf.String(), "Physics")
	assert.Contains(t, buf.String(), "science")
	assert.Contains(t, buf.String(), selectionMarker)

	buf.Reset()
	run(t, s, `mindmap edit name:"Physics II"`)
	run(t, s, "mindmap show")
	assert.Contains(t, buf.String(), "Physics II")

	run(t, s, "mindmap delete")
	assert.Empty(t, s.selectedID())

	buf.Reset()
	run(t, s, "mindmap list")
	assert.Contains(t, buf.String(), "no mindmaps yet")
}

func TestMindmapResolution(t *testing.T) {
	s, _ := newTestShell(t)
	run(t, s, "mindmap new Physics", "mindmap new Chemistry")

	t.Run("by case-insensitive name", func(t *testing.T) {
		run(t, s, "mindmap select physics")
		mm, err := s.resolveMindmap("")
		require.NoError(t, err)
		assert.Equal(t, "Physics", mm.Name)
	})

	t.Run("by id prefix", func(t *testing.T) {
		maps := s.mgr.Mindmaps()
		run(t, s, "mindmap select "+maps[1].ID[:8])
		assert.Equal(t, maps[1].ID, s.selectedID())
	})

	t.Run("ambiguous name", func(t *testing.T) {
		run(t, s, "mindmap new Twin", "mindmap new Twin")
		err := s.Execute(context.Background(), "mindmap select twin")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous")
	})

	t.Run("no match", func(t *testing.T) {
		assert.Error(t, s.Execute(context.Background(), "mindmap select Biology"))
	})
}

func TestNodeCommandsNeedASelection(t *testing.T) {
	s, _ := newTestShell(t)
	err := s.Execute(context.Background(), "node add Idea")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no mindmap selected")
}

func TestNodeLifecycle(t *testing.T) {
	s, buf := newTestShell(t)
	run(t, s,
		"mindmap new Physics",
		"node add Mechanics",
		`node add Mechanics "Newton's Laws" "three laws of motion"`,
	)

	buf.Reset()
	run(t, s, "mindmap show")
	assert.Contains(t, buf.String(), "Mechanics")
	assert.Contains(t, buf.String(), "Newton's Laws")

	run(t, s, `node update "Newton's Laws" description:"action and reaction" color:#BFDBFE`)
	buf.Reset()
	run(t, s, `node show "Newton's Laws"`)
	assert.Contains(t, buf.String(), "action and reaction")
	assert.Contains(t, buf.String(), "#BFDBFE")

	run(t, s, "node move Mechanics 100 200")
	buf.Reset()
	run(t, s, "node show Mechanics")
	assert.Contains(t, buf.String(), "(100.0, 200.0)")

	buf.Reset()
	run(t, s, "node resize Mechanics massive")
	assert.Contains(t, buf.String(), "massive")

	buf.Reset()
	run(t, s, "node find newton")
	assert.Contains(t, buf.String(), "1 match(es)")
	assert.Contains(t, buf.String(), "Newton's Laws")

	buf.Reset()
	run(t, s, "node find warp drive")
	assert.Contains(t, buf.String(), "no nodes match")

	run(t, s, "node delete Mechanics")
	buf.Reset()
	run(t, s, "mindmap show")
	assert.Contains(t, buf.String(), "(empty)")
}

func TestNodeAddExplicitRoot(t *testing.T) {
	s, _ := newTestShell(t)
	run(t, s,
		"mindmap new Ideas",
		"node add Trunk",
		`node add - "Second Root" "independent branch"`,
	)

	mm, err := s.resolveMindmap("")
	require.NoError(t, err)
	assert.Len(t, mm.Data.RootNodeIDs, 2)
}

func TestNodeUpdateRejectsUnknownField(t *testing.T) {
	s, _ := newTestShell(t)
	run(t, s, "mindmap new Physics", "node add Mechanics")

	err := s.Execute(context.Background(), "node update Mechanics flavor:spicy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")

	err = s.Execute(context.Background(), "node update Mechanics height:tall")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a number")
}

func TestNodeSort(t *testing.T) {
	s, _ := newTestShell(t)
	run(t, s,
		"mindmap new Fruit",
		"node add Basket",
		"node add Basket Cherry",
		"node add Basket apple",
		"node add Basket Banana",
		"node sort Basket",
	)

	mm, err := s.resolveMindmap("")
	require.NoError(t, err)
	basket, err := FindNode(mm, "Basket")
	require.NoError(t, err)

	var titles []string
	for _, cid := range basket.ChildIDs {
		titles = append(titles, mm.Data.Nodes[cid].Title)
	}
	assert.Equal(t, []string{"apple", "Banana", "Cherry"}, titles)
}

func TestCanvasZoomAndPan(t *testing.T) {
	s, buf := newTestShell(t)
	run(t, s, "mindmap new Physics", "node add Mechanics")

	run(t, s, "canvas zoom in")
	assert.InDelta(t, 1.2, s.camera.Scale, 1e-9)

	run(t, s, "canvas zoom 2.5 100 100")
	assert.InDelta(t, 2.5, s.camera.Scale, 1e-9)

	run(t, s, "canvas zoom 99")
	assert.InDelta(t, 3.0, s.camera.Scale, 1e-9)

	panX, panY := s.camera.PanX, s.camera.PanY
	run(t, s, "canvas pan 50 -25")
	assert.InDelta(t, panX+50, s.camera.PanX, 1e-9)
	assert.InDelta(t, panY-25, s.camera.PanY, 1e-9)

	buf.Reset()
	run(t, s, "canvas view")
	assert.Contains(t, buf.String(), "scale 3.00")
	assert.Contains(t, buf.String(), "Mechanics")
	assert.Contains(t, buf.String(), "1 nodes, 0 connectors")
}

func TestCanvasResetCentersFirstRoot(t *testing.T) {
	s, _ := newTestShell(t)
	run(t, s, "mindmap new Physics", "node add Mechanics", "canvas zoom in", "canvas pan 300 300", "canvas reset")

	mm, err := s.resolveMindmap("")
	require.NoError(t, err)
	root := mm.Data.Nodes[mm.Data.RootNodeIDs[0]]

	assert.InDelta(t, 1.0, s.camera.Scale, 1e-9)
	assert.InDelta(t, 500-(root.X+root.Width/2), s.camera.PanX, 1e-9)
	assert.InDelta(t, 400-(root.Y+root.Height/2), s.camera.PanY, 1e-9)
}

func TestCanvasDragCommitsThroughEngine(t *testing.T) {
	s, buf := newTestShell(t)
	run(t, s, "mindmap new Physics", "node add Mechanics", "canvas reset")

	mm, err := s.resolveMindmap("")
	require.NoError(t, err)
	before := mm.Data.Nodes[mm.Data.RootNodeIDs[0]]

	// After reset the root's card center sits at the viewport center.
	buf.Reset()
	run(t, s, "canvas press 500 400")
	assert.Contains(t, buf.String(), "dragging")

	run(t, s, "canvas move 550 420", "canvas release 550 420")

	mm, err = s.resolveMindmap("")
	require.NoError(t, err)
	after := mm.Data.Nodes[before.ID]
	assert.InDelta(t, before.X+50, after.X, 1e-9)
	assert.InDelta(t, before.Y+20, after.Y, 1e-9)
}

func TestCanvasBackgroundPressPans(t *testing.T) {
	s, buf := newTestShell(t)
	run(t, s, "mindmap new Physics", "node add Mechanics", "canvas reset")
	panX, panY := s.camera.PanX, s.camera.PanY

	buf.Reset()
	run(t, s, "canvas press 10 10")
	assert.Contains(t, buf.String(), "panning")

	run(t, s, "canvas move 60 90", "canvas release 60 90")
	assert.InDelta(t, panX+50, s.camera.PanX, 1e-9)
	assert.InDelta(t, panY+80, s.camera.PanY, 1e-9)
}

func TestNodeSummarizeCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"summary": "Motion follows three laws."})
	}))
	defer srv.Close()

	s, buf := newTestShell(t)
	s.summarizer = summarize.NewClient(config.SummarizeConfig{
		Endpoint:       srv.URL,
		TimeoutSeconds: 5,
	}, nil)

	run(t, s,
		"mindmap new Physics",
		`node add Mechanics`,
		`node update Mechanics description:"bodies, forces, acceleration"`,
		"node summarize Mechanics",
	)
	assert.Contains(t, buf.String(), "Motion follows three laws.")
	assert.Contains(t, buf.String(), "not stored")
}

func TestNodeSummarizeRequiresDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an empty description")
	}))
	defer srv.Close()

	s, _ := newTestShell(t)
	s.summarizer = summarize.NewClient(config.SummarizeConfig{
		Endpoint:       srv.URL,
		TimeoutSeconds: 5,
	}, nil)

	run(t, s, "mindmap new Physics", "node add Mechanics")
	err := s.Execute(context.Background(), "node summarize Mechanics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no description to summarize")
}

func TestNodeSummarizeUnconfigured(t *testing.T) {
	s, _ := newTestShell(t)
	run(t, s, "mindmap new Physics", "node add Mechanics")

	err := s.Execute(context.Background(), "node summarize Mechanics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestHelpOutput(t *testing.T) {
	s, buf := newTestShell(t)

	run(t, s, "help")
	out := buf.String()
	for _, scope := range []string{"mindmap", "node", "canvas"} {
		assert.Contains(t, out, scope)
	}

	buf.Reset()
	run(t, s, "help node sort")
	assert.Contains(t, buf.String(), "--recursive")

	buf.Reset()
	run(t, s, "help bogus")
	assert.Contains(t, buf.String(), "no such scope")
}

func TestPromptTracksSelection(t *testing.T) {
	s, _ := newTestShell(t)
	assert.Equal(t, "mindcanvas> ", s.prompt())

	run(t, s, "mindmap new Physics")
	assert.Equal(t, "mindcanvas(Physics)> ", s.prompt())

	run(t, s, "mindmap select")
	assert.Equal(t, "mindcanvas> ", s.prompt())
}

func TestRenderTreeShape(t *testing.T) {
	s, buf := newTestShell(t)
	run(t, s,
		"mindmap new Outline",
		"node add Top",
		"node add Top Middle",
		"node add Middle Leaf",
	)

	buf.Reset()
	run(t, s, "mindmap show")
	out := buf.String()

	top := strings.Index(out, "Top")
	middle := strings.Index(out, "Middle")
	leaf := strings.Index(out, "Leaf")
	require.True(t, top >= 0 && middle >= 0 && leaf >= 0, "all nodes rendered")
	assert.Less(t, top, middle)
	assert.Less(t, middle, leaf)
	assert.Contains(t, out, "└─")
}
