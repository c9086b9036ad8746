package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/planiflow/internal/schedule"
)

// Semantic color palette.
var (
	colorUpcoming   = lipgloss.Color("#8C8C8C") // Gray: not started
	colorInProgress = lipgloss.Color("#00E676") // Green: under way
	colorCompleted  = lipgloss.Color("#5B8DEF") // Blue: done
	colorOverdue    = lipgloss.Color("#FF5252") // Red: past its end date
	colorCritical   = lipgloss.Color("#FFD700") // Gold: zero slack
	colorHeader     = lipgloss.Color("#00BFFF") // Cyan: table headers
	colorMuted      = lipgloss.Color("#636363") // Gray: borders and totals
)

// Palette maps task status to a display color.
type Palette struct {
	Upcoming   lipgloss.Color
	InProgress lipgloss.Color
	Completed  lipgloss.Color
	Overdue    lipgloss.Color
	Critical   lipgloss.Color
}

// DefaultPalette returns the standard status colors.
func DefaultPalette() Palette {
	return Palette{
		Upcoming:   colorUpcoming,
		InProgress: colorInProgress,
		Completed:  colorCompleted,
		Overdue:    colorOverdue,
		Critical:   colorCritical,
	}
}

// Color returns the color of st.
func (p Palette) Color(st schedule.Status) lipgloss.Color {
	switch st {
	case schedule.InProgress:
		return p.InProgress
	case schedule.Completed:
		return p.Completed
	case schedule.Overdue:
		return p.Overdue
	default:
		return p.Upcoming
	}
}

// Label returns the display label of st.
func Label(st schedule.Status) string {
	switch st {
	case schedule.InProgress:
		return "In Progress"
	case schedule.Completed:
		return "Completed"
	case schedule.Overdue:
		return "Overdue"
	default:
		return "Upcoming"
	}
}
