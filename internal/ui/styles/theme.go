package styles

import (
	"github.com/charmbracelet/lipgloss"

	"tasklanes/internal/lanes"
	"tasklanes/internal/task"
)

// Theme is the colour scheme for the board.
type Theme struct {
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Primary       lipgloss.Color
	Error         lipgloss.Color
	Border        lipgloss.Color
	BorderFocus   lipgloss.Color
	Selection     lipgloss.Color
	Match         lipgloss.Color

	Urgent lipgloss.Color
	Soon   lipgloss.Color
	Normal lipgloss.Color

	Todo  lipgloss.Color
	Doing lipgloss.Color
	Done  lipgloss.Color
}

var Default = Theme{
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),
	Primary:       lipgloss.Color("#7aa2f7"),
	Error:         lipgloss.Color("#f7768e"),
	Border:        lipgloss.Color("#3b4261"),
	BorderFocus:   lipgloss.Color("#7aa2f7"),
	Selection:     lipgloss.Color("#33467c"),
	Match:         lipgloss.Color("#e0af68"),

	Urgent: lipgloss.Color("#FFA1F5"),
	Soon:   lipgloss.Color("#D0BFFF"),
	Normal: lipgloss.Color("#A6FF96"),

	Todo:  lipgloss.Color("#7dcfff"),
	Doing: lipgloss.Color("#e0af68"),
	Done:  lipgloss.Color("#9ece6a"),
}

// LaneWidth is the fixed column width of one lane.
const LaneWidth = 32

type Styles struct {
	theme Theme

	Title      lipgloss.Style
	Lane       lipgloss.Style
	LaneFocus  lipgloss.Style
	LaneHeader lipgloss.Style
	Row        lipgloss.Style
	RowCursor  lipgloss.Style
	Dim        lipgloss.Style
	Match      lipgloss.Style
	Form       lipgloss.Style
	Label      lipgloss.Style
	Radio      lipgloss.Style
	RadioOn    lipgloss.Style
	Pending    lipgloss.Style
	Status     lipgloss.Style
	StatusErr  lipgloss.Style
	Help       lipgloss.Style
}

func New(t Theme) *Styles {
	lane := lipgloss.NewStyle().
		Width(LaneWidth).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)

	return &Styles{
		theme: t,

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Lane:      lane,
		LaneFocus: lane.BorderForeground(t.BorderFocus),

		LaneHeader: lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1),

		Row: lipgloss.NewStyle(),

		RowCursor: lipgloss.NewStyle().
			Background(t.Selection).
			Bold(true),

		Dim: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Match: lipgloss.NewStyle().
			Foreground(t.Match).
			Underline(true).
			Bold(true),

		Form: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus),

		Label: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Width(12),

		Radio: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		RadioOn: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Pending: lipgloss.NewStyle().
			Foreground(t.Match).
			Italic(true),

		Status: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		StatusErr: lipgloss.NewStyle().
			Foreground(t.Error),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),
	}
}

// Priority colours a row by its rank class.
func (s *Styles) Priority(p lanes.Priority) lipgloss.Style {
	switch p {
	case lanes.PriorityUrgent:
		return lipgloss.NewStyle().Foreground(s.theme.Urgent)
	case lanes.PrioritySoon:
		return lipgloss.NewStyle().Foreground(s.theme.Soon)
	default:
		return lipgloss.NewStyle().Foreground(s.theme.Normal)
	}
}

func (s *Styles) StatusColor(st task.Status) lipgloss.Style {
	switch st {
	case task.StatusDoing:
		return lipgloss.NewStyle().Foreground(s.theme.Doing)
	case task.StatusDone:
		return lipgloss.NewStyle().Foreground(s.theme.Done)
	default:
		return lipgloss.NewStyle().Foreground(s.theme.Todo)
	}
}
