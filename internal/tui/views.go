package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/state"
	"github.com/mmcdole/cadence/internal/tui/styles"
)

// viewFrame is the UI state outside the state tree that shows on screen
type viewFrame struct {
	width, height  int
	cursor, offset int
	mode           InputMode
	input          string
	spinner        string
	status         string
	statusIsErr    bool
	showHelp       bool
	scanning       bool
	scanned        int
}

// renderCache holds the last rendered screen. A new frame is rendered only
// when the state tree or the frame differs from the cached one.
type renderCache struct {
	state   state.State
	frame   viewFrame
	view    string
	valid   bool
	renders int
}

func (m Model) frame() viewFrame {
	f := viewFrame{
		width:       m.Width,
		height:      m.Height,
		cursor:      m.Cursor,
		offset:      m.Offset,
		mode:        m.Mode,
		status:      m.StatusMsg,
		statusIsErr: m.StatusIsErr,
		showHelp:    m.ShowHelp,
		scanning:    m.Scanning,
		scanned:     m.Scanned,
	}
	if m.Mode != InputNone {
		f.input = m.Input.View()
	}
	if m.Scanning || statusFor(m.State).pending {
		f.spinner = m.Spinner.View()
	}
	return f
}

// View renders the UI
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	f := m.frame()
	if c := m.render; c != nil && c.valid && c.frame == f && c.state.Equal(m.State) {
		return c.view
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(f),
		m.renderBody(f),
		m.renderNowPlaying(),
		m.renderFooter(f),
	)

	if m.render != nil {
		m.render.state = m.State
		m.render.frame = f
		m.render.view = view
		m.render.valid = true
		m.render.renders++
	}
	return view
}

// renderHeader renders the breadcrumb line and a blank spacer
func (m Model) renderHeader(f viewFrame) string {
	crumbs := []string{styles.AccentStyle.Bold(true).Render("cadence")}
	m.State.History.Each(func(i int, nav domain.Navigation) bool {
		if m.State.History.Len()-i <= 3 {
			crumbs = append(crumbs, nav.Title)
		}
		return true
	})
	left := strings.Join(crumbs, styles.DimStyle.Render(" › "))

	right := ""
	if f.scanning {
		right = fmt.Sprintf("%s Scanning %d", f.spinner, f.scanned)
	}

	gap := max(f.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	line := styles.HeaderStyle.Render(left + strings.Repeat(" ", gap) + styles.DimStyle.Render(right))
	return line + "\n"
}

// renderBody renders the list, or the help overlay, filling the list area
func (m Model) renderBody(f viewFrame) string {
	height := max(f.height-ChromeHeight, 1)
	var lines []string

	switch {
	case f.showHelp:
		lines = renderHelp()
	default:
		lines = m.renderList(f, height)
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderList(f viewFrame, height int) []string {
	rows := rowsFor(m.State)
	status := statusFor(m.State)

	if len(rows) == 0 {
		switch {
		case status.pending:
			return []string{" " + f.spinner + styles.DimStyle.Render(" Loading...")}
		case status.err != "":
			return []string{" " + styles.ErrorStyle.Render(status.err)}
		default:
			return []string{" " + styles.DimStyle.Render(emptyText(m.State.Route))}
		}
	}

	lines, _ := layoutLines(rows)
	end := min(f.offset+height, len(lines))
	out := make([]string, 0, end-f.offset)
	for _, l := range lines[f.offset:end] {
		if l.row < 0 {
			out = append(out, styles.SectionStyle.Render(l.heading))
			continue
		}
		out = append(out, m.renderRow(rows[l.row], l.row == f.cursor, f.width))
	}
	return out
}

func emptyText(route domain.Route) string {
	switch route {
	case domain.RouteHome:
		return "The queue is empty. Press / to search or L for your library."
	case domain.RouteSearchResults:
		return "No matches."
	case domain.RouteLibrary:
		return "Nothing saved yet. Press s on a track or a on an album."
	default:
		return "Nothing here."
	}
}

// renderRow renders one list row
func (m Model) renderRow(r row, selected bool, width int) string {
	if r.track != nil {
		return m.renderTrackRow(r, selected, width)
	}

	name := r.item.GetTitle()
	avail := width - 6
	title := styles.Truncate(name, avail*2/3)
	desc := styles.Truncate(r.item.GetDescription(), max(avail-lipgloss.Width(title)-3, 0))

	dim := styles.DimGray
	parts := []styles.RowPart{{Text: "  "}}
	parts = append(parts, titleParts(name, title, r.highlight, selected)...)
	parts = append(parts, styles.RowPart{Text: "  " + desc, Foreground: &dim})
	return styles.RenderListRow(parts, selected, width)
}

// titleParts highlights the matched runes of a possibly truncated title.
// The ellipsis that replaced the tail is never highlighted.
func titleParts(full, shown string, matched []int, bold bool) []styles.RowPart {
	visible := len([]rune(shown))
	if shown != full {
		visible--
	}
	var kept []int
	for _, i := range matched {
		if i < visible {
			kept = append(kept, i)
		}
	}
	return styles.HighlightParts(shown, kept, bold)
}

// renderTrackRow renders a track with its playing and saved markers
func (m Model) renderTrackRow(r row, selected bool, width int) string {
	t := r.track
	ctx := m.State.TrackCtx

	marker := styles.RowPart{Text: "  "}
	if ctx.IsPlaying(t) {
		accent := styles.Amber
		marker = styles.RowPart{Text: styles.PlayingChar + " ", Foreground: &accent}
	}
	saved := styles.RowPart{Text: "  "}
	if ctx.IsSaved(t) {
		green := styles.Green
		saved = styles.RowPart{Text: styles.SavedChar + " ", Foreground: &green}
	}

	duration := t.Duration.String()
	avail := width - 8 - lipgloss.Width(duration)
	title := styles.Truncate(t.Name, avail*2/3)
	artist := styles.Truncate(t.ArtistName(), max(avail-lipgloss.Width(title)-2, 0))
	gap := max(avail-lipgloss.Width(title)-lipgloss.Width(artist)-2, 1)

	dim := styles.DimGray
	parts := []styles.RowPart{marker, saved}
	parts = append(parts, titleParts(t.Name, title, r.highlight, selected)...)
	parts = append(parts,
		styles.RowPart{Text: "  " + artist, Foreground: &dim},
		styles.RowPart{Text: strings.Repeat(" ", gap) + duration, Foreground: &dim},
	)
	return styles.RenderListRow(parts, selected, width)
}

// renderNowPlaying renders the playback panel: track, progress and quality
func (m Model) renderNowPlaying() string {
	pb := m.State.Playback
	width := max(m.Width, 20)

	icon := styles.StoppedChar
	switch pb.Status() {
	case state.PlaybackPlaying:
		icon = styles.PlayingChar
	case state.PlaybackPaused:
		icon = styles.PausedChar
	}

	quality := m.State.Config.Audio.Quality
	badge := styles.DimBadgeStyle.Render(fmt.Sprintf("%s · %d kbps", quality, quality.Bitrate()))

	title := styles.DimStyle.Render("Nothing playing")
	if pb.Item != nil {
		title = styles.TitleStyle.Render(pb.Item.Name) +
			styles.SubtitleStyle.Render(" · "+pb.Item.ArtistName())
	}
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(badge)-6, 1)
	first := styles.AccentStyle.Render(icon) + " " + title + strings.Repeat(" ", gap) + badge

	progress, _ := pb.CurrentProgress()
	var total domain.AudioDuration
	if pb.Item != nil {
		total = pb.Item.Duration
	}
	times := fmt.Sprintf("%s / %s", progress, total)
	var fraction float64
	if total > 0 {
		fraction = float64(progress) / float64(total)
	}
	bar := styles.RenderProgressBar(fraction, max(width-lipgloss.Width(times)-5, 3))
	second := bar + " " + styles.DimStyle.Render(times)

	return styles.NowPlayingStyle.Width(width).Render(first + "\n" + second)
}

// renderFooter renders the text input, the status message, or a key hint
func (m Model) renderFooter(f viewFrame) string {
	switch {
	case f.mode != InputNone:
		return styles.FooterStyle.Render(f.input)
	case f.status != "" && f.statusIsErr:
		return styles.FooterStyle.Render(styles.ErrorStyle.Render(f.status))
	case f.status != "":
		return styles.FooterStyle.Render(styles.SuccessStyle.Render(f.status))
	}

	hints := []string{}
	for _, b := range []struct{ k, d string }{
		{"/", "search"}, {"enter", "play"}, {"space", "pause"}, {"L", "library"}, {"?", "help"}, {"q", "quit"},
	} {
		hints = append(hints, styles.HelpKeyStyle.Render(b.k)+" "+styles.HelpDescStyle.Render(b.d))
	}
	return styles.FooterStyle.Render(strings.Join(hints, "  "))
}

// renderHelp lists every key binding
func renderHelp() []string {
	lines := []string{styles.SectionStyle.Render("Keys")}
	for _, group := range Keys.HelpBindings() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, "  "+styles.HelpKeyStyle.Render(styles.Pad(h.Key, 10))+styles.HelpDescStyle.Render(h.Desc))
		}
		lines = append(lines, "")
	}
	return lines
}
