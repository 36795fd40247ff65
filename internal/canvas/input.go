package canvas

import "mindcanvas/internal/model"

// HitKind classifies what sits under a pointer press.
type HitKind int

const (
	HitBackground HitKind = iota
	HitNode
	HitControl
)

// Hit is the result of hit-testing a screen point.
type Hit struct {
	Kind HitKind
	Node *model.NodeData
}

// State is the gesture the machine is currently in.
type State int

const (
	StateIdle State = iota
	StatePanning
	StateDragging
)

func (s State) String() string {
	switch s {
	case StatePanning:
		return "panning"
	case StateDragging:
		return "dragging-node"
	default:
		return "idle"
	}
}

// ActionKind tells the caller what a transition produced.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionPanned
	ActionDragMoved
	ActionNodeDropped
)

// Action reports the observable effect of feeding an input to the machine.
// X and Y are logical coordinates for drag previews and drops.
type Action struct {
	Kind   ActionKind
	NodeID string
	X      float64
	Y      float64
}

// Machine turns press/move/release sequences into camera pans and node drop
// commitments. It mutates only the camera; node position changes are reported
// as actions for the caller to apply.
type Machine struct {
	camera *Camera
	state  State

	start      Point // screen point where the gesture began
	startPanX  float64
	startPanY  float64
	dragNodeID string
	dragOffset Point // pointer-to-card-corner offset in logical units
}

// NewMachine returns an idle machine driving the given camera.
func NewMachine(camera *Camera) *Machine {
	return &Machine{camera: camera}
}

// State returns the current gesture state.
func (m *Machine) State() State {
	return m.state
}

// Press begins a gesture. Presses over interactive controls are suppressed
// entirely; presses over a node start a drag; presses over empty background
// start a pan. Presses while a gesture is active are ignored.
func (m *Machine) Press(p Point, hit Hit) Action {
	if m.state != StateIdle {
		return Action{}
	}
	switch hit.Kind {
	case HitControl:
		return Action{}
	case HitNode:
		if hit.Node == nil || !hit.Node.HasPosition() {
			return Action{}
		}
		logical := m.camera.ToLogical(p)
		m.state = StateDragging
		m.dragNodeID = hit.Node.ID
		m.dragOffset = Point{X: logical.X - hit.Node.X, Y: logical.Y - hit.Node.Y}
		return Action{}
	default:
		m.state = StatePanning
		m.start = p
		m.startPanX = m.camera.PanX
		m.startPanY = m.camera.PanY
		return Action{}
	}
}

// Move advances an active gesture. While panning it updates the camera pan;
// while dragging it reports the node's would-be logical position.
func (m *Machine) Move(p Point) Action {
	switch m.state {
	case StatePanning:
		m.camera.PanX = p.X - m.start.X + m.startPanX
		m.camera.PanY = p.Y - m.start.Y + m.startPanY
		return Action{Kind: ActionPanned}
	case StateDragging:
		logical := m.camera.ToLogical(p)
		return Action{
			Kind:   ActionDragMoved,
			NodeID: m.dragNodeID,
			X:      logical.X - m.dragOffset.X,
			Y:      logical.Y - m.dragOffset.Y,
		}
	default:
		return Action{}
	}
}

// Release ends the gesture. Ending a drag reports the drop position for the
// caller to commit through the engine's move operation.
func (m *Machine) Release(p Point) Action {
	state := m.state
	m.state = StateIdle
	if state != StateDragging {
		return Action{}
	}
	logical := m.camera.ToLogical(p)
	a := Action{
		Kind:   ActionNodeDropped,
		NodeID: m.dragNodeID,
		X:      logical.X - m.dragOffset.X,
		Y:      logical.Y - m.dragOffset.Y,
	}
	m.dragNodeID = ""
	return a
}

// HitTest returns the topmost node whose screen rectangle contains p. Draw
// order follows rootNodeIds and each subtree depth-first, so later subtrees
// sit above earlier ones.
func HitTest(data *model.MindmapData, camera *Camera, p Point) Hit {
	var found *model.NodeData
	var walk func(id string)
	walk = func(id string) {
		n, ok := data.Nodes[id]
		if !ok || n == nil {
			return
		}
		if n.HasPosition() {
			tl := camera.ToScreen(Point{X: n.X, Y: n.Y})
			w := n.Width * camera.Scale
			h := n.Height * camera.Scale
			if p.X >= tl.X && p.X <= tl.X+w && p.Y >= tl.Y && p.Y <= tl.Y+h {
				found = n
			}
		}
		for _, cid := range n.ChildIDs {
			walk(cid)
		}
	}
	for _, rid := range data.RootNodeIDs {
		walk(rid)
	}
	if found != nil {
		return Hit{Kind: HitNode, Node: found}
	}
	return Hit{Kind: HitBackground}
}
