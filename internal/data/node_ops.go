package data

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"mindcanvas/internal/event"
	"mindcanvas/internal/layout"
	"mindcanvas/internal/model"
)

// NodeContent is the payload for creating a node.
type NodeContent struct {
	Title       string
	Description string
	Emoji       string
	Color       string
}

// NodePatch carries optional field updates for a node. Nil pointers leave a
// field untouched. Supplying a content field without an explicit height
// recomputes the height from the approximation; an explicit height is only
// clamped.
type NodePatch struct {
	Title       *string
	Description *string
	Emoji       *string
	Color       *string
	Size        *model.SizeCategory
	Width       *float64
	Height      *float64
}

// NodeEvent is the payload attached to node-level events.
type NodeEvent struct {
	MindmapID string
	NodeID    string
}

// AddNode creates a node under parentID, or as a root when parentID is
// empty. A non-empty parentID that resolves to nothing falls back to root
// placement. Returns (nil, false, nil) when the mindmap id is unknown.
func (m *Manager) AddNode(ctx context.Context, mindmapID, parentID string, content NodeContent) (*model.NodeData, bool, error) {
	if !model.ValidTitle(content.Title) {
		return nil, false, fmt.Errorf("node title must not be empty")
	}
	if !model.ValidBackgroundColor(content.Color) {
		return nil, false, fmt.Errorf("background color %q is not in the palette", content.Color)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mm := m.findLocked(mindmapID)
	if mm == nil {
		return nil, false, nil
	}

	n := &model.NodeData{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(content.Title),
		Description: strings.TrimSpace(content.Description),
		Emoji:       model.ClampEmoji(content.Emoji),
		Color:       content.Color,
		Size:        model.SizeStandard,
		ChildIDs:    []string{},
	}
	n.Width = layout.WidthFor(n.Size)
	n.Height = layout.ApproximateHeight(n.Title, n.Description, n.Emoji != "", n.Width, n.Size)

	var parent *model.NodeData
	if parentID != "" {
		parent = mm.Data.Nodes[parentID]
	}
	if parent != nil {
		n.X, n.Y = layout.ChildPosition(parent, len(parent.ChildIDs))
		pid := parent.ID
		n.ParentID = &pid
		parent.ChildIDs = append(parent.ChildIDs, n.ID)
	} else {
		n.X, n.Y = layout.NextRootPosition(rootNodes(&mm.Data))
		mm.Data.RootNodeIDs = append(mm.Data.RootNodeIDs, n.ID)
	}
	mm.Data.Nodes[n.ID] = n
	mm.UpdatedAt = time.Now().UTC()

	if err := m.persistLocked(ctx); err != nil {
		return nil, true, err
	}
	m.events.Publish(event.Event{Type: event.NodeAdded, Data: NodeEvent{MindmapID: mindmapID, NodeID: n.ID}})
	return n.Clone(), true, nil
}

// UpdateNode applies a patch to a node. Unknown mindmap or node ids are a
// silent no-op returning (nil, false, nil).
func (m *Manager) UpdateNode(ctx context.Context, mindmapID, nodeID string, patch NodePatch) (*model.NodeData, bool, error) {
	if patch.Title != nil && !model.ValidTitle(*patch.Title) {
		return nil, false, fmt.Errorf("node title must not be empty")
	}
	if patch.Color != nil && !model.ValidBackgroundColor(*patch.Color) {
		return nil, false, fmt.Errorf("background color %q is not in the palette", *patch.Color)
	}
	if patch.Size != nil && !patch.Size.Valid() {
		return nil, false, fmt.Errorf("unknown size category %q (want mini, standard or massive)", *patch.Size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mm := m.findLocked(mindmapID)
	if mm == nil {
		return nil, false, nil
	}
	n := mm.Data.Nodes[nodeID]
	if n == nil {
		return nil, false, nil
	}

	contentChanged := false
	if patch.Title != nil {
		n.Title = strings.TrimSpace(*patch.Title)
		contentChanged = true
	}
	if patch.Description != nil {
		n.Description = strings.TrimSpace(*patch.Description)
		contentChanged = true
	}
	if patch.Emoji != nil {
		n.Emoji = model.ClampEmoji(*patch.Emoji)
		contentChanged = true
	}
	if patch.Color != nil {
		n.Color = *patch.Color
	}
	if patch.Size != nil {
		n.Size = *patch.Size
		n.Width = layout.WidthFor(n.Size)
		contentChanged = true
	}
	if patch.Width != nil {
		n.Width = *patch.Width
		contentChanged = true
	}
	switch {
	case patch.Height != nil:
		n.Height = layout.ClampHeight(*patch.Height)
	case contentChanged:
		n.Height = layout.ApproximateHeight(n.Title, n.Description, n.Emoji != "", n.Width, n.Size)
	}
	mm.UpdatedAt = time.Now().UTC()

	if err := m.persistLocked(ctx); err != nil {
		return nil, true, err
	}
	m.events.Publish(event.Event{Type: event.NodeUpdated, Data: NodeEvent{MindmapID: mindmapID, NodeID: nodeID}})
	return n.Clone(), true, nil
}

// MoveNode overwrites a node's position. Coordinates are not clamped;
// negative values are valid.
func (m *Manager) MoveNode(ctx context.Context, mindmapID, nodeID string, x, y float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mm := m.findLocked(mindmapID)
	if mm == nil {
		return false, nil
	}
	n := mm.Data.Nodes[nodeID]
	if n == nil {
		return false, nil
	}

	n.X, n.Y = x, y
	mm.UpdatedAt = time.Now().UTC()

	if err := m.persistLocked(ctx); err != nil {
		return true, err
	}
	m.events.Publish(event.Event{Type: event.NodeMoved, Data: NodeEvent{MindmapID: mindmapID, NodeID: nodeID}})
	return true, nil
}

// ResizeNode sets the size category, recomputing width from the table and
// height from the approximation seeded with the new width.
func (m *Manager) ResizeNode(ctx context.Context, mindmapID, nodeID string, size model.SizeCategory) (*model.NodeData, bool, error) {
	if !size.Valid() {
		return nil, false, fmt.Errorf("unknown size category %q (want mini, standard or massive)", size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mm := m.findLocked(mindmapID)
	if mm == nil {
		return nil, false, nil
	}
	n := mm.Data.Nodes[nodeID]
	if n == nil {
		return nil, false, nil
	}

	n.Size = size
	n.Width = layout.WidthFor(size)
	n.Height = layout.ApproximateHeight(n.Title, n.Description, n.Emoji != "", n.Width, n.Size)
	mm.UpdatedAt = time.Now().UTC()

	if err := m.persistLocked(ctx); err != nil {
		return nil, true, err
	}
	m.events.Publish(event.Event{Type: event.NodeResized, Data: NodeEvent{MindmapID: mindmapID, NodeID: nodeID}})
	return n.Clone(), true, nil
}

// DeleteNode removes a node and its whole subtree, children before parents,
// and detaches the node from its former parent or the root order.
func (m *Manager) DeleteNode(ctx context.Context, mindmapID, nodeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mm := m.findLocked(mindmapID)
	if mm == nil {
		return false, nil
	}
	target := mm.Data.Nodes[nodeID]
	if target == nil {
		return false, nil
	}

	var remove func(id string)
	remove = func(id string) {
		n := mm.Data.Nodes[id]
		if n == nil {
			return
		}
		for _, cid := range n.ChildIDs {
			remove(cid)
		}
		delete(mm.Data.Nodes, id)
	}
	remove(nodeID)

	if target.ParentID != nil {
		if parent := mm.Data.Nodes[*target.ParentID]; parent != nil {
			parent.ChildIDs = removeID(parent.ChildIDs, nodeID)
		}
	}
	mm.Data.RootNodeIDs = removeID(mm.Data.RootNodeIDs, nodeID)
	mm.UpdatedAt = time.Now().UTC()

	if err := m.persistLocked(ctx); err != nil {
		return true, err
	}
	m.events.Publish(event.Event{Type: event.NodeDeleted, Data: NodeEvent{MindmapID: mindmapID, NodeID: nodeID}})
	return true, nil
}

// FindNodes returns clones of the nodes whose title or description contains
// the query case-insensitively, in depth-first order from the roots. The
// second return is false when the mindmap id is unknown.
func (m *Manager) FindNodes(mindmapID, query string) ([]*model.NodeData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mm := m.findLocked(mindmapID)
	if mm == nil {
		return nil, false
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var out []*model.NodeData
	var walk func(id string)
	walk = func(id string) {
		n := mm.Data.Nodes[id]
		if n == nil {
			return
		}
		if strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Description), q) {
			out = append(out, n.Clone())
		}
		for _, cid := range n.ChildIDs {
			walk(cid)
		}
	}
	for _, rid := range mm.Data.RootNodeIDs {
		walk(rid)
	}
	return out, true
}

// SortChildren reorders a node's children alphabetically by title, or the
// root order when nodeID is empty. Positions are untouched; only the
// ordering arrays change.
func (m *Manager) SortChildren(ctx context.Context, mindmapID, nodeID string, recursive bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mm := m.findLocked(mindmapID)
	if mm == nil {
		return false, nil
	}

	byTitle := func(ids []string) {
		sort.SliceStable(ids, func(i, j int) bool {
			return strings.ToLower(titleOf(mm, ids[i])) < strings.ToLower(titleOf(mm, ids[j]))
		})
	}
	var sortSubtree func(ids []string)
	sortSubtree = func(ids []string) {
		byTitle(ids)
		for _, id := range ids {
			if n := mm.Data.Nodes[id]; n != nil {
				sortSubtree(n.ChildIDs)
			}
		}
	}

	if nodeID == "" {
		if recursive {
			sortSubtree(mm.Data.RootNodeIDs)
		} else {
			byTitle(mm.Data.RootNodeIDs)
		}
	} else {
		n := mm.Data.Nodes[nodeID]
		if n == nil {
			return false, nil
		}
		if recursive {
			sortSubtree(n.ChildIDs)
		} else {
			byTitle(n.ChildIDs)
		}
	}
	mm.UpdatedAt = time.Now().UTC()

	if err := m.persistLocked(ctx); err != nil {
		return true, err
	}
	m.events.Publish(event.Event{Type: event.NodeSorted, Data: NodeEvent{MindmapID: mindmapID, NodeID: nodeID}})
	return true, nil
}

func titleOf(mm *model.Mindmap, id string) string {
	if n := mm.Data.Nodes[id]; n != nil {
		return n.Title
	}
	return ""
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
