package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mindcanvas/internal/canvas"
	"mindcanvas/internal/model"
)

// RenderMindmapList formats the collection as a table, marking the selected
// row.
func RenderMindmapList(maps []*model.Mindmap, selectedID string) string {
	if len(maps) == 0 {
		return styleMuted.Render("no mindmaps yet; create one with: mindmap new <name>")
	}
	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("  %-28s %-14s %6s  %s", "NAME", "CATEGORY", "NODES", "UPDATED")))
	b.WriteByte('\n')
	for _, m := range maps {
		marker := " "
		category := m.Category
		if category == "" {
			category = "-"
		}
		line := fmt.Sprintf("%-28s %-14s %6d  %s",
			truncate(m.Name, 28),
			truncate(category, 14),
			len(m.Data.Nodes),
			m.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
		if m.ID == selectedID {
			marker = selectionMarker
			line = styleTitle.Render(line)
		}
		b.WriteString(marker + " " + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderTree draws the mindmap as an indented tree following root order and
// each node's child order.
func RenderTree(mm *model.Mindmap) string {
	var b strings.Builder
	heading := styleTitle.Render(mm.Name)
	if mm.Category != "" {
		heading += styleMuted.Render(" · " + mm.Category)
	}
	b.WriteString(heading + "\n")
	if len(mm.Data.RootNodeIDs) == 0 {
		b.WriteString(styleMuted.Render("  (empty)"))
		return b.String()
	}
	for i, rid := range mm.Data.RootNodeIDs {
		renderSubtree(&b, mm.Data, rid, "", i == len(mm.Data.RootNodeIDs)-1)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSubtree(b *strings.Builder, d model.MindmapData, id, prefix string, last bool) {
	n, ok := d.Nodes[id]
	if !ok || n == nil {
		return
	}
	branch, childPrefix := "├─ ", prefix+"│  "
	if last {
		branch, childPrefix = "└─ ", prefix+"   "
	}
	b.WriteString(styleMuted.Render(prefix + branch))
	b.WriteString(nodeLabel(n))
	b.WriteByte('\n')
	for i, cid := range n.ChildIDs {
		renderSubtree(b, d, cid, childPrefix, i == len(n.ChildIDs)-1)
	}
}

// nodeLabel is the one-line form of a node: emoji, title, short id, and a
// truncated description. The short id is what node commands accept.
func nodeLabel(n *model.NodeData) string {
	label := n.Title
	if n.Emoji != "" {
		label = n.Emoji + " " + label
	}
	label += " " + styleMuted.Render("["+shortID(n.ID)+"]")
	if n.Description != "" {
		label += " " + styleMuted.Render(truncate(n.Description, 48))
	}
	return label
}

// renderNodeDetail lists every field of one node, resolving the parent title
// from the surrounding mindmap.
func renderNodeDetail(mm *model.Mindmap, n *model.NodeData) string {
	rows := [][2]string{
		{"id", n.ID},
		{"title", n.Title},
	}
	if n.Description != "" {
		rows = append(rows, [2]string{"description", n.Description})
	}
	if n.Emoji != "" {
		rows = append(rows, [2]string{"emoji", n.Emoji})
	}
	if n.Color != "" {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(n.Color)).Render("  ")
		rows = append(rows, [2]string{"color", swatch + " " + n.Color})
	}
	rows = append(rows,
		[2]string{"size", fmt.Sprintf("%s (%.0f×%.0f)", n.Size, n.Width, n.Height)},
		[2]string{"position", fmt.Sprintf("(%.1f, %.1f)", n.X, n.Y)},
	)
	parent := "(root)"
	if n.ParentID != nil {
		parent = shortID(*n.ParentID)
		if p, ok := mm.Data.Nodes[*n.ParentID]; ok && p != nil {
			parent = fmt.Sprintf("%s [%s]", p.Title, shortID(p.ID))
		}
	}
	rows = append(rows,
		[2]string{"parent", parent},
		[2]string{"children", fmt.Sprintf("%d", len(n.ChildIDs))},
	)

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(styleMuted.Render(fmt.Sprintf("%-12s", row[0])))
		b.WriteString(row[1])
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderFindResults lists matched nodes one per line.
func renderFindResults(query string, nodes []*model.NodeData) string {
	if len(nodes) == 0 {
		return styleMuted.Render(fmt.Sprintf("no nodes match %q", query))
	}
	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("%d match(es) for %q", len(nodes), query)))
	b.WriteByte('\n')
	for _, n := range nodes {
		b.WriteString("  " + nodeLabel(n) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderCamera is the one-line view transform readout.
func renderCamera(cam *canvas.Camera, state canvas.State) string {
	return fmt.Sprintf("scale %.2f  pan (%.1f, %.1f)  viewport %.0f×%.0f  %s",
		cam.Scale, cam.PanX, cam.PanY,
		cam.Viewport.Width, cam.Viewport.Height,
		styleMuted.Render(state.String()))
}

// renderViewport shows the camera plus every placed node's screen rectangle,
// in draw order.
func renderViewport(cam *canvas.Camera, mm *model.Mindmap, state canvas.State) string {
	var b strings.Builder
	b.WriteString(renderCamera(cam, state))
	b.WriteByte('\n')
	curves := canvas.Connectors(&mm.Data)
	b.WriteString(styleMuted.Render(fmt.Sprintf("%s: %d nodes, %d connectors", mm.Name, len(mm.Data.Nodes), len(curves))))
	b.WriteByte('\n')

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n, ok := mm.Data.Nodes[id]
		if !ok || n == nil {
			return
		}
		tl := cam.ToScreen(canvas.Point{X: n.X, Y: n.Y})
		b.WriteString(fmt.Sprintf("  %s%s %s\n",
			strings.Repeat("  ", depth),
			truncate(n.Title, 24),
			styleMuted.Render(fmt.Sprintf("screen (%.0f, %.0f) %.0f×%.0f", tl.X, tl.Y, n.Width*cam.Scale, n.Height*cam.Scale)),
		))
		for _, cid := range n.ChildIDs {
			walk(cid, depth+1)
		}
	}
	for _, rid := range mm.Data.RootNodeIDs {
		walk(rid, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
