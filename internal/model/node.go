package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// SizeCategory selects one of the predefined card presets.
type SizeCategory string

const (
	SizeMini     SizeCategory = "mini"
	SizeStandard SizeCategory = "standard"
	SizeMassive  SizeCategory = "massive"
)

// ParseSizeCategory maps user input to a size category.
func ParseSizeCategory(s string) (SizeCategory, error) {
	switch SizeCategory(strings.ToLower(strings.TrimSpace(s))) {
	case SizeMini:
		return SizeMini, nil
	case SizeStandard:
		return SizeStandard, nil
	case SizeMassive:
		return SizeMassive, nil
	default:
		return "", fmt.Errorf("unknown size category %q (want mini, standard or massive)", s)
	}
}

// Valid reports whether the category is one of the three presets.
func (s SizeCategory) Valid() bool {
	switch s {
	case SizeMini, SizeStandard, SizeMassive:
		return true
	}
	return false
}

// BackgroundPalette lists the selectable card background colors.
var BackgroundPalette = []string{
	"#FDE68A", // amber
	"#FCA5A5", // red
	"#A7F3D0", // emerald
	"#BFDBFE", // blue
	"#DDD6FE", // violet
	"#FBCFE8", // pink
	"#FED7AA", // orange
	"#E5E7EB", // gray
}

// ValidBackgroundColor reports whether c is in the palette. The empty string
// (no custom color) is always valid.
func ValidBackgroundColor(c string) bool {
	if c == "" {
		return true
	}
	for _, p := range BackgroundPalette {
		if strings.EqualFold(c, p) {
			return true
		}
	}
	return false
}

// maxEmojiRunes is the soft cap on the emoji field.
const maxEmojiRunes = 8

// ClampEmoji truncates an emoji string to the soft rune cap.
func ClampEmoji(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= maxEmojiRunes {
		return s
	}
	return string(r[:maxEmojiRunes])
}

// ValidTitle reports whether a node title is acceptable after trimming.
func ValidTitle(title string) bool {
	return strings.TrimSpace(title) != ""
}

// NodeData is one entry in a mindmap's node table. X and Y live in the shared
// logical canvas space; records decoded without coordinates carry NaN until
// the migration pass places them.
type NodeData struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Emoji       string       `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Color       string       `json:"customBackgroundColor,omitempty" yaml:"customBackgroundColor,omitempty"`
	Size        SizeCategory `json:"size,omitempty" yaml:"size,omitempty"`
	Width       float64      `json:"width" yaml:"width"`
	Height      float64      `json:"height" yaml:"height"`
	ParentID    *string      `json:"parentId" yaml:"parentId"`
	ChildIDs    []string     `json:"childIds" yaml:"childIds"`
	X           float64      `json:"x" yaml:"x"`
	Y           float64      `json:"y" yaml:"y"`
}

// UnmarshalJSON decodes with NaN pre-filled so an absent coordinate is
// distinguishable from a node placed at 0.
func (n *NodeData) UnmarshalJSON(b []byte) error {
	type plain NodeData
	p := plain{X: math.NaN(), Y: math.NaN()}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*n = NodeData(p)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for the YAML import path.
func (n *NodeData) UnmarshalYAML(value *yaml.Node) error {
	type plain NodeData
	p := plain{X: math.NaN(), Y: math.NaN()}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*n = NodeData(p)
	return nil
}

// HasPosition reports whether the node has been placed on the canvas.
func (n *NodeData) HasPosition() bool {
	return !math.IsNaN(n.X) && !math.IsNaN(n.Y)
}

// IsRoot reports whether the node has no parent.
func (n *NodeData) IsRoot() bool {
	return n.ParentID == nil
}

// Clone returns a deep copy of the node.
func (n *NodeData) Clone() *NodeData {
	if n == nil {
		return nil
	}
	out := *n
	if n.ParentID != nil {
		pid := *n.ParentID
		out.ParentID = &pid
	}
	out.ChildIDs = append([]string{}, n.ChildIDs...)
	return &out
}
