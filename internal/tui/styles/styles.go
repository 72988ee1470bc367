package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Amber      = lipgloss.Color("#F59E0B")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	SectionStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true).
			Padding(0, 1)
)

// Raw track indicator characters (unstyled)
const (
	PlayingChar = "▶"
	PausedChar  = "⏸"
	StoppedChar = "■"
	SavedChar   = "♥"
)

// Panel styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Padding(0, 1)

	NowPlayingStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(SlateLight).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// Search match highlighting
var (
	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(Amber).
				Bold(true)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Amber)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Progress bar styles
var (
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(Amber)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(DimGray)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(Amber).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Amber)
)

// Input styles
var (
	PromptStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)
)

// Helper functions

// Truncate shortens s to width display cells, ending in an ellipsis when cut
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return "…"
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// Pad pads s with spaces to width display cells
func Pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// RenderProgressBar renders a progress bar for a fraction in [0, 1]
func RenderProgressBar(fraction float64, width int) string {
	if width < 3 {
		return ""
	}

	filled := int(float64(width) * fraction)
	filled = max(0, min(filled, width))

	return ProgressFullStyle.Render(strings.Repeat("━", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("─", width-filled))
}

// RenderListRow renders a complete list row with uniform background when selected.
// Each part is styled on its own so ANSI resets inside one part do not clear
// the row background. A part with a nil Foreground uses the row default.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	bg := SlateLight
	defaultFg := LightGray
	selectedFg := White

	var b strings.Builder
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		switch {
		case part.Highlight:
			style = MatchHighlightStyle
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(selectedFg)
		default:
			style = style.Foreground(defaultFg)
		}
		if part.Bold {
			style = style.Bold(true)
		}
		if selected {
			style = style.Background(bg)
		}
		b.WriteString(style.Render(part.Text))
		visibleLen += lipgloss.Width(part.Text)
	}

	// Fill to width, leaving one cell of margin on each side
	fill := lipgloss.NewStyle()
	if selected {
		fill = fill.Background(bg)
	}
	if padding := width - visibleLen - 2; padding > 0 {
		b.WriteString(fill.Render(strings.Repeat(" ", padding)))
	}

	margin := fill.Render(" ")
	return margin + b.String() + margin
}

// RowPart represents a part of a row with optional foreground color.
// Highlight renders the part as a search match.
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
	Bold       bool
	Highlight  bool
}

// HighlightParts splits text into runs of matched and unmatched runes.
// matched holds rune positions; positions past the end of text are ignored.
func HighlightParts(text string, matched []int, bold bool) []RowPart {
	if len(matched) == 0 {
		return []RowPart{{Text: text, Bold: bold}}
	}

	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	// Batch consecutive runes with the same style
	var (
		parts []RowPart
		run   []rune
		hl    bool
	)
	flush := func() {
		if len(run) > 0 {
			parts = append(parts, RowPart{Text: string(run), Bold: bold, Highlight: hl})
			run = run[:0]
		}
	}
	for i, r := range []rune(text) {
		if set[i] != hl {
			flush()
			hl = set[i]
		}
		run = append(run, r)
	}
	flush()
	return parts
}
