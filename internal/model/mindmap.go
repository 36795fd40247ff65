// Package model defines the mindmap and node records shared across the application.
package model

import (
	"strings"
	"time"
)

// Mindmap is one record in the persisted collection. The Data payload owns
// every node; the record itself carries only identity and bookkeeping.
type Mindmap struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Category  string      `json:"category,omitempty" yaml:"category,omitempty"`
	CreatedAt time.Time   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt" yaml:"updatedAt"`
	Data      MindmapData `json:"data" yaml:"data"`
}

// MindmapData holds the node table and the ordered root ids. Node ownership
// lives in ChildIDs; ParentID is only a back-reference.
type MindmapData struct {
	Nodes       map[string]*NodeData `json:"nodes" yaml:"nodes"`
	RootNodeIDs []string             `json:"rootNodeIds" yaml:"rootNodeIds"`
}

// NewMindmap returns an empty mindmap with both timestamps set to now.
func NewMindmap(id, name, category string, now time.Time) *Mindmap {
	return &Mindmap{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Category:  strings.TrimSpace(category),
		CreatedAt: now,
		UpdatedAt: now,
		Data: MindmapData{
			Nodes:       make(map[string]*NodeData),
			RootNodeIDs: []string{},
		},
	}
}

// Clone returns a deep copy safe to hand out without exposing internal state.
func (m *Mindmap) Clone() *Mindmap {
	if m == nil {
		return nil
	}
	out := *m
	out.Data = m.Data.Clone()
	return &out
}

// Clone deep-copies the node table and root order.
func (d MindmapData) Clone() MindmapData {
	out := MindmapData{
		Nodes:       make(map[string]*NodeData, len(d.Nodes)),
		RootNodeIDs: append([]string{}, d.RootNodeIDs...),
	}
	for id, n := range d.Nodes {
		out.Nodes[id] = n.Clone()
	}
	return out
}

// ValidName reports whether a mindmap name is acceptable after trimming.
func ValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}
