package shell

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"mindcanvas/internal/canvas"
	"mindcanvas/internal/model"
)

func (s *Shell) runCanvas(ctx context.Context, cmd Command) error {
	switch cmd.Operation {
	case "zoom":
		return s.canvasZoom(cmd.Args)
	case "pan":
		return s.canvasPan(cmd.Args)
	case "reset":
		return s.canvasReset()
	case "view", "", "show":
		return s.canvasView()
	case "press":
		return s.canvasPress(cmd.Args)
	case "move":
		return s.canvasMove(cmd.Args)
	case "release":
		return s.canvasRelease(ctx, cmd.Args)
	default:
		return fmt.Errorf("unknown canvas operation %q (try 'help canvas')", cmd.Operation)
	}
}

// canvasZoom handles "zoom in", "zoom out", and "zoom <scale>", each with an
// optional screen anchor.
func (s *Shell) canvasZoom(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: canvas zoom <in|out|scale> [x y]")
	}
	anchor, err := parseAnchor(args[1:])
	if err != nil {
		return err
	}
	switch args[0] {
	case "in":
		s.camera.ZoomStep(anchor, true)
	case "out":
		s.camera.ZoomStep(anchor, false)
	default:
		scale, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("zoom target %q is neither in, out, nor a scale", args[0])
		}
		s.camera.ZoomAt(anchor, scale)
	}
	fmt.Fprintln(s.out, renderCamera(s.camera, s.input.State()))
	return nil
}

func (s *Shell) canvasPan(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: canvas pan <dx> <dy>")
	}
	dx, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("dx %q is not a number", args[0])
	}
	dy, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("dy %q is not a number", args[1])
	}
	s.camera.PanBy(dx, dy)
	fmt.Fprintln(s.out, renderCamera(s.camera, s.input.State()))
	return nil
}

// canvasReset restores scale 1 centered on the selected mindmap's first root.
func (s *Shell) canvasReset() error {
	mm, err := s.resolveMindmap("")
	if err != nil {
		return err
	}
	focus := firstPlacedNode(mm)
	s.camera.Reset(focus)
	fmt.Fprintln(s.out, renderCamera(s.camera, s.input.State()))
	return nil
}

func (s *Shell) canvasView() error {
	mm, err := s.resolveMindmap("")
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, renderViewport(s.camera, mm, s.input.State()))
	return nil
}

func (s *Shell) canvasPress(args []string) error {
	p, err := parsePoint(args)
	if err != nil {
		return err
	}
	mm, err := s.resolveMindmap("")
	if err != nil {
		return err
	}
	hit := canvas.HitTest(&mm.Data, s.camera, p)
	s.input.Press(p, hit)
	switch s.input.State() {
	case canvas.StateDragging:
		s.printOK(fmt.Sprintf("dragging %q", hit.Node.Title))
	case canvas.StatePanning:
		s.printOK("panning")
	default:
		s.printNotice("press had no effect")
	}
	return nil
}

func (s *Shell) canvasMove(args []string) error {
	p, err := parsePoint(args)
	if err != nil {
		return err
	}
	action := s.input.Move(p)
	switch action.Kind {
	case canvas.ActionPanned:
		fmt.Fprintln(s.out, renderCamera(s.camera, s.input.State()))
	case canvas.ActionDragMoved:
		s.printNotice(fmt.Sprintf("node would land at (%.1f, %.1f)", action.X, action.Y))
	default:
		s.printNotice("no gesture in progress")
	}
	return nil
}

// canvasRelease ends the gesture; a node drop commits through the engine.
func (s *Shell) canvasRelease(ctx context.Context, args []string) error {
	p, err := parsePoint(args)
	if err != nil {
		return err
	}
	action := s.input.Release(p)
	if action.Kind != canvas.ActionNodeDropped {
		s.printNotice("gesture ended")
		return nil
	}
	mm, err := s.resolveMindmap("")
	if err != nil {
		return err
	}
	found, err := s.mgr.MoveNode(ctx, mm.ID, action.NodeID, action.X, action.Y)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("dragged node no longer exists")
	}
	s.printOK(fmt.Sprintf("dropped node at (%.1f, %.1f)", action.X, action.Y))
	return nil
}

// firstPlacedNode picks the reset focus: the first declared root, else the
// placed node with the lowest id.
func firstPlacedNode(mm *model.Mindmap) *model.NodeData {
	for _, rid := range mm.Data.RootNodeIDs {
		if n, ok := mm.Data.Nodes[rid]; ok && n != nil {
			return n
		}
	}
	ids := make([]string, 0, len(mm.Data.Nodes))
	for id := range mm.Data.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if n := mm.Data.Nodes[id]; n != nil && n.HasPosition() {
			return n
		}
	}
	return nil
}

func parsePoint(args []string) (canvas.Point, error) {
	if len(args) != 2 {
		return canvas.Point{}, fmt.Errorf("expected screen coordinates <x> <y>")
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return canvas.Point{}, fmt.Errorf("x %q is not a number", args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return canvas.Point{}, fmt.Errorf("y %q is not a number", args[1])
	}
	return canvas.Point{X: x, Y: y}, nil
}

func parseAnchor(args []string) (*canvas.Point, error) {
	if len(args) == 0 {
		return nil, nil
	}
	p, err := parsePoint(args)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
