package data

import (
	"math"
	"slices"
	"sort"

	"mindcanvas/internal/layout"
	"mindcanvas/internal/model"
)

// Normalize repairs a mindmap in place so it satisfies every structural
// invariant: parent/child links are bidirectional, rootNodeIds is exactly
// the set of parentless nodes in stable order, and every node carries a
// size, width, height and position. Legacy records written before fields
// existed come out fully populated. The pass is idempotent; it returns
// whether anything changed so the caller can persist once.
//
// Repair trusts the parentId back-reference over childIds wherever the two
// disagree.
func Normalize(mm *model.Mindmap) bool {
	changed := false
	d := &mm.Data

	if d.Nodes == nil {
		d.Nodes = make(map[string]*model.NodeData)
		changed = true
	}
	if d.RootNodeIDs == nil {
		d.RootNodeIDs = []string{}
		changed = true
	}

	// Drop null entries and force ids to match their map keys, which is
	// what every link refers to.
	for id, n := range d.Nodes {
		if n == nil {
			delete(d.Nodes, id)
			changed = true
			continue
		}
		if n.ID != id {
			n.ID = id
			changed = true
		}
		if n.ChildIDs == nil {
			n.ChildIDs = []string{}
			changed = true
		}
	}

	ids := sortedNodeIDs(d)

	// A parentId referencing a missing node, or the node itself, makes the
	// node a root.
	for _, id := range ids {
		n := d.Nodes[id]
		if n.ParentID == nil {
			continue
		}
		if _, ok := d.Nodes[*n.ParentID]; !ok || *n.ParentID == id {
			n.ParentID = nil
			changed = true
		}
	}

	// Break parent cycles: walking an ancestor chain that never reaches a
	// root, the first node revisited loses its parent link.
	for _, id := range ids {
		onPath := make(map[string]bool)
		cur := id
		for d.Nodes[cur].ParentID != nil {
			if onPath[cur] {
				d.Nodes[cur].ParentID = nil
				changed = true
				break
			}
			onPath[cur] = true
			cur = *d.Nodes[cur].ParentID
		}
	}

	// childIds keeps an entry only when the child exists and points back
	// here; duplicates and stale claims from other parents are dropped.
	for _, id := range ids {
		n := d.Nodes[id]
		kept := make([]string, 0, len(n.ChildIDs))
		for _, cid := range n.ChildIDs {
			child, ok := d.Nodes[cid]
			if !ok || child.ParentID == nil || *child.ParentID != id || slices.Contains(kept, cid) {
				continue
			}
			kept = append(kept, cid)
		}
		if !slices.Equal(kept, n.ChildIDs) {
			n.ChildIDs = kept
			changed = true
		}
	}

	// A node whose parent does not list it gets appended; the back-reference
	// wins.
	for _, id := range ids {
		n := d.Nodes[id]
		if n.ParentID == nil {
			continue
		}
		parent := d.Nodes[*n.ParentID]
		if !slices.Contains(parent.ChildIDs, id) {
			parent.ChildIDs = append(parent.ChildIDs, id)
			changed = true
		}
	}

	// Rebuild rootNodeIds to exactly the parentless nodes, preserving the
	// existing order and appending newcomers.
	newRoots := make([]string, 0, len(d.RootNodeIDs))
	seen := make(map[string]bool)
	for _, rid := range d.RootNodeIDs {
		n, ok := d.Nodes[rid]
		if !ok || n.ParentID != nil || seen[rid] {
			continue
		}
		seen[rid] = true
		newRoots = append(newRoots, rid)
	}
	for _, id := range ids {
		if d.Nodes[id].ParentID == nil && !seen[id] {
			seen[id] = true
			newRoots = append(newRoots, id)
		}
	}
	if !slices.Equal(newRoots, d.RootNodeIDs) {
		d.RootNodeIDs = newRoots
		changed = true
	}

	// Walk each root's subtree depth-first filling missing presentation
	// fields. Parents are placed before their children, so a child slot can
	// always be computed.
	visited := make(map[string]bool, len(d.Nodes))
	var place func(id string)
	place = func(id string) {
		n := d.Nodes[id]
		if n == nil || visited[id] {
			return
		}
		visited[id] = true
		if fillPresentation(n) {
			changed = true
		}
		if !n.HasPosition() {
			if n.ParentID == nil {
				n.X, n.Y = layout.NextRootPosition(rootNodes(d))
			} else {
				parent := d.Nodes[*n.ParentID]
				n.X, n.Y = layout.ChildPosition(parent, slices.Index(parent.ChildIDs, id))
			}
			changed = true
		}
		for _, cid := range n.ChildIDs {
			place(cid)
		}
	}
	for _, rid := range d.RootNodeIDs {
		place(rid)
	}

	// Anything the walk could not reach lands in a fallback row to the
	// right of the placed roots so no record is ever invisible on save.
	if len(visited) < len(d.Nodes) {
		x, y := layout.NextRootPosition(rootNodes(d))
		for _, id := range ids {
			if visited[id] {
				continue
			}
			n := d.Nodes[id]
			if fillPresentation(n) {
				changed = true
			}
			if !n.HasPosition() {
				n.X, n.Y = x, y
				changed = true
			}
			x += n.Width + layout.RootGap
		}
	}

	return changed
}

// fillPresentation backfills size, width and height. Heights outside the
// allowed range are clamped.
func fillPresentation(n *model.NodeData) bool {
	changed := false
	if !n.Size.Valid() {
		n.Size = model.SizeStandard
		changed = true
	}
	if math.IsNaN(n.Width) || n.Width <= 0 {
		n.Width = layout.WidthFor(n.Size)
		changed = true
	}
	if math.IsNaN(n.Height) || n.Height <= 0 {
		n.Height = layout.ApproximateHeight(n.Title, n.Description, n.Emoji != "", n.Width, n.Size)
		changed = true
	} else if clamped := layout.ClampHeight(n.Height); clamped != n.Height {
		n.Height = clamped
		changed = true
	}
	return changed
}

func rootNodes(d *model.MindmapData) []*model.NodeData {
	roots := make([]*model.NodeData, 0, len(d.RootNodeIDs))
	for _, rid := range d.RootNodeIDs {
		if n := d.Nodes[rid]; n != nil {
			roots = append(roots, n)
		}
	}
	return roots
}

func sortedNodeIDs(d *model.MindmapData) []string {
	ids := make([]string, 0, len(d.Nodes))
	for id := range d.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
