// Package tui is the terminal interface. Model owns the application state
// tree; Update is the only place it changes.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/promise"
	"github.com/mmcdole/cadence/internal/seq"
	"github.com/mmcdole/cadence/internal/service"
	"github.com/mmcdole/cadence/internal/state"
	"github.com/mmcdole/cadence/internal/tui/styles"
)

// InputMode is what the text input is collecting
type InputMode int

const (
	InputNone InputMode = iota
	InputSearch
	InputPlaylistName
)

const (
	progressInterval = time.Second
	statusTimeout    = 4 * time.Second
	restartThreshold = 3 * time.Second

	// Header (2 lines) + now playing (border + 2 lines) + footer (1 line)
	ChromeHeight = 6
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State state.State
	Ready bool

	// Services
	LibrarySvc  *service.LibraryService
	PlaybackSvc *service.PlaybackService
	SearchSvc   *service.SearchService
	PlaylistSvc *service.PlaylistService

	// UI components
	Input    textinput.Model
	Spinner  spinner.Model
	Mode     InputMode
	ShowHelp bool

	// List position. cursors holds the cursor of every page below the
	// current one in the history so Back returns to the same row.
	Cursor  int
	Offset  int
	cursors []int

	// Latest player session; exits of older sessions are ignored
	sessionID uint64

	// Scan state
	Scanning bool
	Scanned  int

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool

	render *renderCache
}

// NewModel creates a new application model
func NewModel(
	st state.State,
	librarySvc *service.LibraryService,
	playbackSvc *service.PlaybackService,
	searchSvc *service.SearchService,
	playlistSvc *service.PlaylistService,
) Model {
	ti := textinput.New()
	ti.CharLimit = 120
	ti.PromptStyle = styles.PromptStyle

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.SpinnerStyle),
	)

	return Model{
		State:       st,
		LibrarySvc:  librarySvc,
		PlaybackSvc: playbackSvc,
		SearchSvc:   searchSvc,
		PlaylistSvc: playlistSvc,
		Input:       ti,
		Spinner:     sp,
		Scanning:    true, // Init starts the first scan
		render:      &renderCache{},
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ScanLibraryCmd(m.LibrarySvc, "", false),
		m.Spinner.Tick,
		TickCmd(progressInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.clampCursor()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Input.Width = max(msg.Width-20, 10)
		return nil

	case tea.KeyMsg:
		if m.Mode != InputNone {
			return m.handleInputKey(msg)
		}
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return cmd

	case TickMsg:
		m.refreshProgress()
		return TickCmd(progressInterval)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return nil

	case ErrMsg:
		return m.setError(msg)

	case ScanProgressMsg:
		return m.handleScanProgress(msg)

	// Slot completions. Each one is dropped by the slot if its key is stale.
	case SearchResultsMsg:
		complete(&m.State.Search.Results, msg.Key, msg.Results, msg.Err)
	case AlbumLoadedMsg:
		complete(&m.State.Album.Album, msg.Key, msg.Album, msg.Err)
	case ArtistLoadedMsg:
		complete(&m.State.Artist.Artist, msg.Key, msg.Artist, msg.Err)
	case ArtistAlbumsLoadedMsg:
		complete(&m.State.Artist.Albums, msg.Key, seq.NewVector(msg.Albums...), msg.Err)
	case ArtistTopTracksLoadedMsg:
		complete(&m.State.Artist.TopTracks, msg.Key, seq.NewVector(msg.Tracks...), msg.Err)
	case PlaylistLoadedMsg:
		complete(&m.State.Playlist.Playlist, msg.Key, msg.Playlist, msg.Err)
	case PlaylistTracksLoadedMsg:
		complete(&m.State.Playlist.Tracks, msg.Key, seq.NewVector(msg.Tracks...), msg.Err)
	case SavedAlbumsLoadedMsg:
		complete(&m.State.Library.SavedAlbums, msg.Key, seq.NewVector(msg.Albums...), msg.Err)
	case PlaylistsLoadedMsg:
		complete(&m.State.Library.Playlists, msg.Key, seq.NewVector(msg.Playlists...), msg.Err)
	case SavedTracksLoadedMsg:
		if msg.Err != nil {
			m.State.Library.SavedTracks.Reject(msg.Key, msg.Err.Error())
		} else {
			m.State.ResolveSavedTracks(msg.Key, seq.NewVector(msg.Tracks...))
		}

	case PlaybackStartedMsg:
		return m.handlePlaybackStarted(msg)

	case PlaybackPausedMsg:
		if msg.SessionID != m.sessionID {
			// A later launch already replaced the paused player
			return nil
		}
		m.State.SetPlaybackPaused()
		m.State.SetPlaybackProgress(msg.Position)

	case TrackEndedMsg:
		return m.handleTrackEnded(msg)

	case TrackSavedMsg:
		if msg.Saved {
			m.State.SaveTrack(msg.Track)
			return m.setStatus("Saved " + msg.Track.Name)
		}
		m.State.UnsaveTrack(msg.Track.ID)
		return m.setStatus("Removed " + msg.Track.Name)

	case AlbumSavedMsg:
		return m.handleAlbumSaved(msg)

	case PlaylistCreatedMsg:
		keys := m.State.Library.Request()
		return tea.Batch(
			m.setStatus(fmt.Sprintf("Saved playlist %q (%s)", msg.Playlist.Name, msg.Playlist.GetDescription())),
			LoadLibraryCmd(m.LibrarySvc, m.PlaylistSvc, keys),
		)
	}
	return nil
}

// complete resolves or rejects a slot with the outcome of its request
func complete[T any](p *promise.Promise[T, string], key promise.Key, value T, err error) bool {
	if err != nil {
		return p.Reject(key, err.Error())
	}
	return p.Resolve(key, value)
}

// === Key handling ===

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.ShowHelp {
		if key.Matches(msg, Keys.Quit) {
			return m.quit()
		}
		m.ShowHelp = false
		return nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m.quit()
	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
	case key.Matches(msg, Keys.Search):
		m.Mode = InputSearch
		m.Input.Prompt = "Search: "
		m.Input.Placeholder = "artist, album or track"
		m.Input.SetValue(m.State.Search.Input)
		m.Input.CursorEnd()
		return m.Input.Focus()
	case key.Matches(msg, Keys.Library):
		return m.navigate(domain.Navigation{Route: domain.RouteLibrary, Title: "Library"})
	case key.Matches(msg, Keys.Back):
		return m.back()

	case key.Matches(msg, Keys.Up):
		m.Cursor--
	case key.Matches(msg, Keys.Down):
		m.Cursor++
	case key.Matches(msg, Keys.PageUp):
		m.Cursor -= m.listHeight()
	case key.Matches(msg, Keys.PageDown):
		m.Cursor += m.listHeight()
	case key.Matches(msg, Keys.Home):
		m.Cursor = 0
	case key.Matches(msg, Keys.End):
		m.Cursor = len(rowsFor(m.State)) - 1
	case key.Matches(msg, Keys.Enter):
		if r, ok := m.selected(); ok {
			return m.activate(r)
		}

	case key.Matches(msg, Keys.PlayPause):
		return m.togglePause()
	case key.Matches(msg, Keys.Stop):
		m.stop()
	case key.Matches(msg, Keys.Next):
		return m.skip(true)
	case key.Matches(msg, Keys.Previous):
		return m.skip(false)
	case key.Matches(msg, Keys.SeekForward):
		return m.seek(seekStep)
	case key.Matches(msg, Keys.SeekBack):
		return m.seek(-seekStep)

	case key.Matches(msg, Keys.SaveTrack):
		return m.toggleSavedTrack()
	case key.Matches(msg, Keys.SaveAlbum):
		return m.toggleSavedAlbum()
	case key.Matches(msg, Keys.SavePlaylist):
		if m.State.Queue.Tracks.IsEmpty() {
			return m.setStatus("The queue is empty")
		}
		m.Mode = InputPlaylistName
		m.Input.Prompt = "Playlist name: "
		m.Input.Placeholder = ""
		m.Input.SetValue("")
		return m.Input.Focus()
	case key.Matches(msg, Keys.Rescan):
		if m.State.Route == domain.RouteAlbumDetail {
			return m.scan(m.State.Album.ID, true)
		}
		return m.scan("", false)
	case key.Matches(msg, Keys.RescanAll):
		return m.scan("", true)
	}
	return nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, Keys.Cancel):
		m.closeInput()
		return nil

	case key.Matches(msg, Keys.Submit):
		mode := m.Mode
		value := strings.TrimSpace(m.Input.Value())
		m.closeInput()
		if value == "" {
			return nil
		}
		if mode == InputPlaylistName {
			return CreatePlaylistCmd(m.PlaylistSvc, value, m.State.Queue.Tracks.Items())
		}
		return m.navigate(domain.Navigation{
			Route:  domain.RouteSearchResults,
			Target: value,
			Title:  fmt.Sprintf("Search %q", value),
		})
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return cmd
}

func (m *Model) closeInput() {
	m.Mode = InputNone
	m.Input.Blur()
}

func (m *Model) quit() tea.Cmd {
	m.PlaybackSvc.Stop()
	return tea.Quit
}

// === Navigation ===

// navigate opens nav on top of the history and starts its fetch
func (m *Model) navigate(nav domain.Navigation) tea.Cmd {
	if m.State.CurrentNavigation() == nav {
		return m.load(nav, true)
	}
	m.cursors = append(m.cursors, m.Cursor)
	m.State.Navigate(nav)
	m.Cursor, m.Offset = 0, 0
	return m.load(nav, false)
}

// back returns to the previous page and its cursor
func (m *Model) back() tea.Cmd {
	nav, ok := m.State.NavigateBack()
	if !ok {
		return nil
	}
	m.Cursor, m.Offset = 0, 0
	if n := len(m.cursors); n > 0 {
		m.Cursor = m.cursors[n-1]
		m.cursors = m.cursors[:n-1]
	}
	return m.load(nav, false)
}

// load starts the fetch behind a page. Without force a page whose slots
// already hold (or are fetching) the same target is left alone.
func (m *Model) load(nav domain.Navigation, force bool) tea.Cmd {
	switch nav.Route {
	case domain.RouteSearchResults:
		s := m.State.Search
		if !force && s.Input == nav.Target && live(s.Results.Status()) {
			return nil
		}
		key := m.State.Search.Request(nav.Target)
		return SearchCmd(m.SearchSvc, key, nav.Target)

	case domain.RouteLibrary:
		if !force && live(m.State.Library.SavedTracks.Status()) &&
			live(m.State.Library.SavedAlbums.Status()) && live(m.State.Library.Playlists.Status()) {
			return nil
		}
		keys := m.State.Library.Request()
		return LoadLibraryCmd(m.LibrarySvc, m.PlaylistSvc, keys)

	case domain.RouteAlbumDetail:
		a := m.State.Album
		if !force && a.ID == nav.Target && live(a.Album.Status()) {
			return nil
		}
		key := m.State.Album.Request(nav.Target)
		return LoadAlbumCmd(m.LibrarySvc, key, nav.Target)

	case domain.RouteArtistDetail:
		a := m.State.Artist
		if !force && a.ID == nav.Target && live(a.Artist.Status()) {
			return nil
		}
		keys := m.State.Artist.Request(nav.Target)
		return LoadArtistCmd(m.LibrarySvc, keys, nav.Target)

	case domain.RoutePlaylistDetail:
		p := m.State.Playlist
		if !force && p.ID == nav.Target && live(p.Tracks.Status()) {
			return nil
		}
		keys := m.State.Playlist.Request(nav.Target)
		return LoadPlaylistCmd(m.PlaylistSvc, keys, nav.Target)
	}
	return nil
}

// live reports whether a slot holds or is fetching a usable result
func live(s promise.Status) bool {
	return s == promise.Pending || s == promise.Resolved
}

// activate plays a track row or opens the page of any other row
func (m *Model) activate(r row) tea.Cmd {
	if r.track != nil {
		m.State.SetQueue(r.tracks, r.index)
		return PlayTrackCmd(m.PlaybackSvc, r.track)
	}
	if !r.item.CanDrillDown() {
		return nil
	}

	nav := domain.Navigation{Target: r.item.GetID(), Title: r.item.GetTitle()}
	switch r.item.GetItemType() {
	case "album":
		nav.Route = domain.RouteAlbumDetail
	case "artist":
		nav.Route = domain.RouteArtistDetail
	case "playlist":
		nav.Route = domain.RoutePlaylistDetail
	default:
		return nil
	}
	return m.navigate(nav)
}

// === Playback ===

func (m *Model) handlePlaybackStarted(msg PlaybackStartedMsg) tea.Cmd {
	sess := msg.Session
	if sess.ID < m.sessionID {
		// A later launch already replaced this player
		return nil
	}
	m.sessionID = sess.ID
	m.State.SetPlaybackPlaying(sess.Track)
	if sess.Offset > 0 {
		m.State.SetPlaybackProgress(sess.Offset)
	}
	return WaitTrackEndCmd(sess)
}

func (m *Model) handleTrackEnded(msg TrackEndedMsg) tea.Cmd {
	if msg.SessionID != m.sessionID || m.State.Playback.Status() != state.PlaybackPlaying {
		return nil
	}
	if msg.Err != nil {
		m.State.SetPlaybackStopped()
		return m.setError(ErrMsg{Err: msg.Err, Context: "player exited"})
	}
	if next, ok := m.State.AdvanceQueue(true); ok {
		return PlayTrackCmd(m.PlaybackSvc, next)
	}
	m.State.SetPlaybackStopped()
	return m.setStatus("End of queue")
}

func (m *Model) togglePause() tea.Cmd {
	switch m.State.Playback.Status() {
	case state.PlaybackPlaying:
		return PauseCmd(m.PlaybackSvc)
	case state.PlaybackPaused:
		return ResumeCmd(m.PlaybackSvc)
	default:
		if r, ok := m.selected(); ok && r.track != nil {
			return m.activate(r)
		}
		if t, ok := m.State.Queue.Current(); ok {
			return PlayTrackCmd(m.PlaybackSvc, t)
		}
		return nil
	}
}

func (m *Model) stop() {
	m.PlaybackSvc.Stop()
	m.State.SetPlaybackStopped()
}

// skip plays the next or previous queue track. Going back more than a few
// seconds into a track restarts it instead.
func (m *Model) skip(forward bool) tea.Cmd {
	if !forward {
		if pos, ok := m.State.Playback.CurrentProgress(); ok && pos.Duration() > restartThreshold {
			if t, ok := m.State.Queue.Current(); ok {
				return PlayTrackCmd(m.PlaybackSvc, t)
			}
		}
	}
	t, ok := m.State.AdvanceQueue(forward)
	if !ok {
		return nil
	}
	return PlayTrackCmd(m.PlaybackSvc, t)
}

func (m *Model) seek(delta time.Duration) tea.Cmd {
	if m.State.Playback.Status() != state.PlaybackPlaying {
		return nil
	}
	return SeekCmd(m.PlaybackSvc, delta)
}

// refreshProgress copies the player position into the state
func (m *Model) refreshProgress() {
	if m.State.Playback.Status() != state.PlaybackPlaying {
		return
	}
	if pos, ok := m.PlaybackSvc.Position(); ok {
		m.State.SetPlaybackProgress(pos)
	}
}

// === Collection ===

// targetTrack is the selected track, or the playing one when the cursor is
// not on a track
func (m *Model) targetTrack() (*domain.Track, bool) {
	if r, ok := m.selected(); ok && r.track != nil {
		return r.track, true
	}
	if t := m.State.Playback.Item; t != nil {
		return t, true
	}
	return nil, false
}

func (m *Model) toggleSavedTrack() tea.Cmd {
	t, ok := m.targetTrack()
	if !ok {
		return nil
	}
	return SaveTrackCmd(m.LibrarySvc, t, !m.State.TrackCtx.IsSaved(t))
}

// targetAlbum is the album page being shown or the selected album row
func (m *Model) targetAlbum() (domain.Album, bool) {
	if m.State.Route == domain.RouteAlbumDetail {
		return m.State.Album.Album.Resolved()
	}
	if r, ok := m.selected(); ok {
		if a, ok := r.item.(domain.Album); ok {
			return a, true
		}
	}
	return domain.Album{}, false
}

func (m *Model) toggleSavedAlbum() tea.Cmd {
	album, ok := m.targetAlbum()
	if !ok {
		return nil
	}
	return SaveAlbumCmd(m.LibrarySvc, album, !m.isAlbumSaved(album.ID))
}

func (m *Model) isAlbumSaved(id string) bool {
	list, ok := m.State.Library.SavedAlbums.Resolved()
	if !ok {
		return false
	}
	saved := false
	list.Each(func(_ int, a domain.Album) bool {
		saved = a.ID == id
		return !saved
	})
	return saved
}

func (m *Model) handleAlbumSaved(msg AlbumSavedMsg) tea.Cmd {
	if msg.Saved {
		m.State.Library.SavedAlbums.Update(func(list state.AlbumList) state.AlbumList {
			return list.Prepend(msg.Album)
		})
		return m.setStatus("Saved album " + msg.Album.Name)
	}
	m.State.Library.SavedAlbums.Update(func(list state.AlbumList) state.AlbumList {
		return list.Filter(func(a domain.Album) bool { return a.ID != msg.Album.ID })
	})
	return m.setStatus("Removed album " + msg.Album.Name)
}

// === Scanning ===

func (m *Model) scan(albumID string, rescan bool) tea.Cmd {
	if m.Scanning {
		return m.setStatus("A scan is already running")
	}
	m.Scanning = true
	m.Scanned = 0
	return ScanLibraryCmd(m.LibrarySvc, albumID, rescan)
}

func (m *Model) handleScanProgress(msg ScanProgressMsg) tea.Cmd {
	m.Scanned = msg.Scanned
	if !msg.Done {
		return msg.NextCmd
	}

	m.Scanning = false
	if msg.Err != nil {
		return m.setError(ErrMsg{Err: msg.Err, Context: "scanning library"})
	}

	// Pages hold handles from the previous catalog; fetch them again
	keys := m.State.Library.Request()
	cmds := []tea.Cmd{
		m.setStatus(fmt.Sprintf("%d tracks, %d albums, %d artists (%d cached)",
			msg.Result.Tracks, msg.Result.Albums, msg.Result.Artists, msg.Result.Cached)),
		LoadLibraryCmd(m.LibrarySvc, m.PlaylistSvc, keys),
	}
	if nav := m.State.CurrentNavigation(); nav.Route != domain.RouteLibrary {
		cmds = append(cmds, m.load(nav, true))
	}
	return tea.Batch(cmds...)
}

// === Status and cursor ===

func (m *Model) setStatus(text string) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = false
	return ClearStatusCmd(statusTimeout)
}

func (m *Model) setError(err ErrMsg) tea.Cmd {
	m.StatusMsg = err.Error()
	m.StatusIsErr = true
	return ClearStatusCmd(statusTimeout)
}

// selected returns the row under the cursor
func (m *Model) selected() (row, bool) {
	rows := rowsFor(m.State)
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return row{}, false
	}
	return rows[m.Cursor], true
}

// listHeight is the number of list lines that fit on screen
func (m *Model) listHeight() int {
	return max(m.Height-ChromeHeight, 1)
}

// clampCursor keeps the cursor on a row and the row on screen
func (m *Model) clampCursor() {
	rows := rowsFor(m.State)
	m.Cursor = max(0, min(m.Cursor, len(rows)-1))
	if len(rows) == 0 {
		m.Offset = 0
		return
	}

	lines, rowLine := layoutLines(rows)
	line := rowLine[m.Cursor]
	height := m.listHeight()
	if line < m.Offset {
		m.Offset = line
		// Keep the section heading above the first row in view
		if line > 0 && lines[line-1].row < 0 {
			m.Offset--
		}
	}
	if line >= m.Offset+height {
		m.Offset = line - height + 1
	}
	m.Offset = max(0, min(m.Offset, len(lines)-1))
}
