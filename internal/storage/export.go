package storage

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mindcanvas/internal/model"
)

// Supported interchange formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXML  = "xml"
)

// ParseFormat normalizes a format name, accepting the yml spelling.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatXML:
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json, yaml or xml)", s)
	}
}

// FormatFromPath infers the interchange format from a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer format from %q, pass one explicitly", path)
	}
	return ParseFormat(ext)
}

// ExportFileName derives a filesystem-safe file name from a mindmap's
// display name.
func ExportFileName(name, format string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune('_')
		}
	}
	base := strings.Trim(b.String(), "_")
	if base == "" {
		base = "mindmap"
	}
	return base + "." + format
}

// FileExport writes one mindmap to path in the given format, creating parent
// directories as needed.
func FileExport(m *model.Mindmap, path, format string) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case FormatJSON:
		b, err = json.MarshalIndent(m, "", "  ")
	case FormatYAML:
		b, err = yaml.Marshal(m)
	case FormatXML:
		b, err = xml.MarshalIndent(toXMLMindmap(m), "", "  ")
		if err == nil {
			b = append([]byte(xml.Header), b...)
		}
	default:
		return fmt.Errorf("unsupported format %q (want json, yaml or xml)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal mindmap: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// FileImport reads one mindmap from path. An empty format is inferred from
// the file extension. The caller is expected to run the result through the
// migration pass before admitting it to the collection.
func FileImport(path, format string) (*model.Mindmap, error) {
	if format == "" {
		var err error
		if format, err = FormatFromPath(path); err != nil {
			return nil, err
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var m model.Mindmap
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("failed to parse JSON import: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("failed to parse YAML import: %w", err)
		}
	case FormatXML:
		var doc xmlMindmap
		if err := xml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse XML import: %w", err)
		}
		return fromXMLMindmap(&doc)
	default:
		return nil, fmt.Errorf("unsupported format %q (want json, yaml or xml)", format)
	}

	if m.Data.Nodes == nil {
		m.Data.Nodes = make(map[string]*model.NodeData)
	}
	if m.Data.RootNodeIDs == nil {
		m.Data.RootNodeIDs = []string{}
	}
	return &m, nil
}

// XML cannot express the id-keyed node table, so the XML form nests children
// inside their parent element instead.
type xmlMindmap struct {
	XMLName   xml.Name  `xml:"mindmap"`
	ID        string    `xml:"id"`
	Name      string    `xml:"name"`
	Category  string    `xml:"category,omitempty"`
	CreatedAt string    `xml:"createdAt"`
	UpdatedAt string    `xml:"updatedAt"`
	Nodes     []xmlNode `xml:"nodes>node"`
}

type xmlNode struct {
	ID          string    `xml:"id,attr"`
	Title       string    `xml:"title"`
	Description string    `xml:"description,omitempty"`
	Emoji       string    `xml:"emoji,omitempty"`
	Color       string    `xml:"color,omitempty"`
	Size        string    `xml:"size,omitempty"`
	Width       float64   `xml:"width,attr"`
	Height      float64   `xml:"height,attr"`
	X           float64   `xml:"x,attr"`
	Y           float64   `xml:"y,attr"`
	Children    []xmlNode `xml:"children>node"`
}

func toXMLMindmap(m *model.Mindmap) *xmlMindmap {
	doc := &xmlMindmap{
		ID:        m.ID,
		Name:      m.Name,
		Category:  m.Category,
		CreatedAt: m.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: m.UpdatedAt.Format(time.RFC3339Nano),
	}

	seen := make(map[string]bool, len(m.Data.Nodes))
	var build func(id string) (xmlNode, bool)
	build = func(id string) (xmlNode, bool) {
		n, ok := m.Data.Nodes[id]
		if !ok || seen[id] {
			return xmlNode{}, false
		}
		seen[id] = true
		out := xmlNode{
			ID:          n.ID,
			Title:       n.Title,
			Description: n.Description,
			Emoji:       n.Emoji,
			Color:       n.Color,
			Size:        string(n.Size),
			Width:       n.Width,
			Height:      n.Height,
			X:           n.X,
			Y:           n.Y,
		}
		for _, cid := range n.ChildIDs {
			if child, ok := build(cid); ok {
				out.Children = append(out.Children, child)
			}
		}
		return out, true
	}

	for _, rid := range m.Data.RootNodeIDs {
		if node, ok := build(rid); ok {
			doc.Nodes = append(doc.Nodes, node)
		}
	}
	return doc
}

func fromXMLMindmap(doc *xmlMindmap) (*model.Mindmap, error) {
	created, err := time.Parse(time.RFC3339Nano, doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse createdAt in XML import: %w", err)
	}
	updated, err := time.Parse(time.RFC3339Nano, doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updatedAt in XML import: %w", err)
	}

	m := &model.Mindmap{
		ID:        doc.ID,
		Name:      doc.Name,
		Category:  doc.Category,
		CreatedAt: created,
		UpdatedAt: updated,
		Data: model.MindmapData{
			Nodes:       make(map[string]*model.NodeData),
			RootNodeIDs: []string{},
		},
	}

	var flatten func(xn xmlNode, parentID *string)
	flatten = func(xn xmlNode, parentID *string) {
		n := &model.NodeData{
			ID:          xn.ID,
			Title:       xn.Title,
			Description: xn.Description,
			Emoji:       xn.Emoji,
			Color:       xn.Color,
			Size:        model.SizeCategory(xn.Size),
			Width:       xn.Width,
			Height:      xn.Height,
			ParentID:    parentID,
			ChildIDs:    []string{},
			X:           xn.X,
			Y:           xn.Y,
		}
		m.Data.Nodes[n.ID] = n
		if parentID == nil {
			m.Data.RootNodeIDs = append(m.Data.RootNodeIDs, n.ID)
		}
		for _, child := range xn.Children {
			n.ChildIDs = append(n.ChildIDs, child.ID)
			pid := n.ID
			flatten(child, &pid)
		}
	}
	for _, xn := range doc.Nodes {
		flatten(xn, nil)
	}
	return m, nil
}
