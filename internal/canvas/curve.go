package canvas

import (
	"math"

	"mindcanvas/internal/model"
)

// Control point offsets are proportional to the vertical anchor distance but
// kept inside this range so short and long connectors both read as S-curves.
const (
	minControlOffset = 30.0
	maxControlOffset = 150.0
)

// CubicCurve is a connector in logical coordinates, from a parent's
// bottom-center anchor to a child's top-center anchor.
type CubicCurve struct {
	Start    Point
	Control1 Point
	Control2 Point
	End      Point
}

// ConnectorPath derives the cubic curve joining parent to child.
func ConnectorPath(parent, child *model.NodeData) CubicCurve {
	start := Point{X: parent.X + parent.Width/2, Y: parent.Y + parent.Height}
	end := Point{X: child.X + child.Width/2, Y: child.Y}

	off := math.Abs(end.Y-start.Y) * 0.5
	if off < minControlOffset {
		off = minControlOffset
	}
	if off > maxControlOffset {
		off = maxControlOffset
	}

	return CubicCurve{
		Start:    start,
		Control1: Point{X: start.X, Y: start.Y + off},
		Control2: Point{X: end.X, Y: end.Y - off},
		End:      end,
	}
}

// Connectors builds the curve for every parent-child edge, in draw order
// (rootNodeIds, each subtree depth-first). Edges whose endpoints are not both
// placed are skipped.
func Connectors(data *model.MindmapData) []CubicCurve {
	var out []CubicCurve
	var walk func(n *model.NodeData)
	walk = func(n *model.NodeData) {
		for _, cid := range n.ChildIDs {
			child, ok := data.Nodes[cid]
			if !ok || child == nil {
				continue
			}
			if n.HasPosition() && child.HasPosition() {
				out = append(out, ConnectorPath(n, child))
			}
			walk(child)
		}
	}
	for _, rid := range data.RootNodeIDs {
		if root, ok := data.Nodes[rid]; ok && root != nil {
			walk(root)
		}
	}
	return out
}

// StrokeWidth keeps connector strokes visually constant by dividing the
// nominal width by the current scale.
func StrokeWidth(nominal, scale float64) float64 {
	return nominal / scale
}
