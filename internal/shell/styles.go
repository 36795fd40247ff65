package shell

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // cyan, headers and accents
	colorAccent  = lipgloss.Color("#FFD700") // gold, notices
	colorSuccess = lipgloss.Color("#00E676") // green, confirmations
	colorDanger  = lipgloss.Color("#FF5252") // red, errors
	colorMuted   = lipgloss.Color("#8C8C8C") // gray, secondary text
)

// Marker prepended to the selected mindmap row.
const selectionMarker = "▸"

var (
	styleHeader = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleTitle = lipgloss.NewStyle().
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleNotice = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleOK = lipgloss.NewStyle().
		Foreground(colorSuccess)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleSummaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1).
			Width(72)
)
