// Package layout holds the placement and sizing arithmetic for mindmap cards.
// Everything here is a pure function over node data; nothing measures real
// rendered text. The height formula only has to produce a plausible height so
// cards do not overlap before first paint.
package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	"mindcanvas/internal/model"
)

// Height bounds apply to every card regardless of size category.
const (
	MinNodeHeight = 80.0
	MaxNodeHeight = 400.0
)

// CanvasSize is the edge length of the oversized logical canvas. The origin
// point sits near its center so freshly created maps have room to grow in
// every direction.
const CanvasSize = 10000.0

// Gaps between cards placed automatically.
const (
	SiblingGap  = 40.0
	VerticalGap = 60.0
	RootGap     = 120.0
)

// Text approximation constants. Average character widths are deliberately
// rough; the title renders larger than the body.
const (
	cardPaddingX    = 24.0
	headerPadding   = 16.0
	footerPadding   = 16.0
	bodyGap         = 8.0
	emojiRowHeight  = 28.0
	titleCharWidth  = 9.0
	titleLineHeight = 24.0
	bodyCharWidth   = 7.0
	bodyLineHeight  = 20.0
)

// Origin is where the first root of an empty mindmap lands.
const (
	OriginX = CanvasSize/2 - 250.0/2
	OriginY = 400.0
)

// WidthFor returns the card width dictated by the size category. Unknown or
// empty categories fall back to standard.
func WidthFor(size model.SizeCategory) float64 {
	switch size {
	case model.SizeMini:
		return 180
	case model.SizeMassive:
		return 320
	default:
		return 250
	}
}

// DefaultHeightFor returns the minimum height a category starts from.
func DefaultHeightFor(size model.SizeCategory) float64 {
	switch size {
	case model.SizeMini:
		return 80
	case model.SizeMassive:
		return 160
	default:
		return 120
	}
}

// ClampHeight bounds h to the global height range.
func ClampHeight(h float64) float64 {
	return math.Min(math.Max(h, MinNodeHeight), MaxNodeHeight)
}

// ApproximateHeight estimates a card height from its text content. Wrapped
// line counts come from rune counts against an assumed character width, fixed
// paddings are added for the header, footer and optional emoji row, and the
// sum is raised to the category default before clamping.
func ApproximateHeight(title, description string, hasEmoji bool, width float64, size model.SizeCategory) float64 {
	inner := width - 2*cardPaddingX
	if inner < titleCharWidth {
		inner = titleCharWidth
	}

	h := headerPadding + footerPadding
	h += wrappedLines(title, titleCharWidth, inner) * titleLineHeight
	if strings.TrimSpace(description) != "" {
		h += bodyGap + wrappedLines(description, bodyCharWidth, inner)*bodyLineHeight
	}
	if hasEmoji {
		h += emojiRowHeight
	}

	if min := DefaultHeightFor(size); h < min {
		h = min
	}
	return ClampHeight(h)
}

// wrappedLines estimates how many lines text occupies at the given character
// and line widths. Explicit newlines start fresh lines; empty text still
// occupies one.
func wrappedLines(text string, charWidth, lineWidth float64) float64 {
	perLine := math.Max(1, math.Floor(lineWidth/charWidth))
	total := 0.0
	for _, seg := range strings.Split(strings.TrimSpace(text), "\n") {
		n := utf8.RuneCountInString(strings.TrimSpace(seg))
		if n == 0 {
			total++
			continue
		}
		total += math.Ceil(float64(n) / perLine)
	}
	if total < 1 {
		total = 1
	}
	return total
}

// ChildPosition places a new child directly below its parent, centered among
// the block of existing siblings. The block is siblingCount+1 slots of one
// standard card width; the new child takes the last slot.
func ChildPosition(parent *model.NodeData, siblingCount int) (x, y float64) {
	w := WidthFor(model.SizeStandard)
	slots := float64(siblingCount + 1)
	total := slots*w + float64(siblingCount)*SiblingGap
	centerX := parent.X + parent.Width/2
	x = centerX - total/2 + float64(siblingCount)*(w+SiblingGap)
	y = parent.Y + parent.Height + VerticalGap
	return x, y
}

// NextRootPosition places a new root one gap to the right of the rightmost
// placed root, on that root's row. With no placed roots it returns the origin.
func NextRootPosition(roots []*model.NodeData) (x, y float64) {
	var rightmost *model.NodeData
	for _, r := range roots {
		if r == nil || !r.HasPosition() {
			continue
		}
		if rightmost == nil || r.X+r.Width > rightmost.X+rightmost.Width {
			rightmost = r
		}
	}
	if rightmost == nil {
		return OriginX, OriginY
	}
	return rightmost.X + rightmost.Width + RootGap, rightmost.Y
}
