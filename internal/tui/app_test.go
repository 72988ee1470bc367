package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-test/deep"
	"github.com/mmcdole/cadence/internal/catalog"
	"github.com/mmcdole/cadence/internal/config"
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/promise"
	"github.com/mmcdole/cadence/internal/service"
	"github.com/mmcdole/cadence/internal/state"
	"github.com/mmcdole/cadence/internal/store"
	"github.com/mmcdole/cadence/internal/tui/styles"
)

type fakeProcess struct {
	exit chan error
	once sync.Once
}

func (p *fakeProcess) Wait() error { return <-p.exit }

func (p *fakeProcess) Kill() error {
	p.once.Do(func() { p.exit <- errors.New("signal: killed") })
	return nil
}

type fakeLauncher struct {
	mu      sync.Mutex
	started []string
}

func (l *fakeLauncher) Launch(path string, offset time.Duration) (domain.PlayerProcess, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, filepath.Base(path))
	return &fakeProcess{exit: make(chan error, 1)}, nil
}

func (l *fakeLauncher) launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.started...)
}

func newTestModel(t *testing.T) (Model, *fakeLauncher) {
	t.Helper()
	root := t.TempDir()
	musicDir := filepath.Join(root, "music")
	for _, f := range []string{
		"Nina Simone/Pastel Blues/01 Be My Husband.mp3",
		"Nina Simone/Pastel Blues/02 Nobody's Fault But Mine.mp3",
		"Nina Simone/Pastel Blues/03 Trouble in Mind.mp3",
		"Bill Evans/Sunday at the Village Vanguard/01 Gloria's Step.mp3",
	} {
		path := filepath.Join(musicDir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	st, err := store.NewLibraryStore("", musicDir)
	if err != nil {
		t.Fatal(err)
	}
	logger := config.NullLogger()
	cat := catalog.New(musicDir, filepath.Join(root, "playlists"), st, logger)
	launcher := &fakeLauncher{}

	m := NewModel(
		state.Default(),
		service.NewLibraryService(cat, st, logger),
		service.NewPlaybackService(launcher, logger),
		service.NewSearchService(cat, logger),
		service.NewPlaylistService(cat, logger),
	)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = pump(t, m, ScanLibraryCmd(m.LibrarySvc, "", false))
	if m.Scanning || m.StatusIsErr {
		t.Fatalf("initial scan did not finish: %q", m.StatusMsg)
	}
	return m, launcher
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// pump runs commands and feeds their messages back into the model until no
// command produces anything within a short window. Timers and messages that
// only drive animation are dropped.
func pump(t *testing.T, m Model, cmds ...tea.Cmd) Model {
	t.Helper()
	for round := 0; round < 20 && len(cmds) > 0; round++ {
		msgs := collect(cmds)
		cmds = nil
		for _, msg := range msgs {
			var cmd tea.Cmd
			m, cmd = update(m, msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	return m
}

func collect(cmds []tea.Cmd) []tea.Msg {
	var (
		mu   sync.Mutex
		msgs []tea.Msg
		wg   sync.WaitGroup
	)

	var run func(tea.Cmd)
	run = func(cmd tea.Cmd) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch msg := cmd().(type) {
			case nil, TickMsg, ClearStatusMsg, spinner.TickMsg:
			case tea.BatchMsg:
				for _, c := range msg {
					if c != nil {
						run(c)
					}
				}
			default:
				mu.Lock()
				msgs = append(msgs, msg)
				mu.Unlock()
			}
		}()
	}
	for _, c := range cmds {
		if c != nil {
			run(c)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(300 * time.Millisecond):
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]tea.Msg(nil), msgs...)
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends keys in order and runs whatever they start
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = update(m, keyPress(k))
		m = pump(t, m, cmd)
	}
	return m
}

func search(t *testing.T, m Model, query string) Model {
	t.Helper()
	return press(t, m, "/", query, "enter")
}

func rowTitles(m Model) []string {
	var titles []string
	for _, r := range rowsFor(m.State) {
		titles = append(titles, r.item.GetTitle())
	}
	return titles
}

// cursorTo moves the cursor onto the first row titled title
func cursorTo(t *testing.T, m Model, title string) Model {
	t.Helper()
	for i, r := range rowsFor(m.State) {
		if r.item.GetTitle() == title {
			m.Cursor = i
			return m
		}
	}
	t.Fatalf("no row %q in %v", title, rowTitles(m))
	return m
}

func TestStartupLoadsLibrary(t *testing.T) {
	m, _ := newTestModel(t)

	if !m.State.Library.SavedTracks.IsResolved() || !m.State.Library.Playlists.IsResolved() {
		t.Fatalf("library not loaded after scan: tracks=%v playlists=%v",
			m.State.Library.SavedTracks, m.State.Library.Playlists)
	}
	if !strings.Contains(m.StatusMsg, "4 tracks") {
		t.Errorf("status = %q", m.StatusMsg)
	}
	if m.State.Route != domain.RouteHome {
		t.Errorf("route = %v, want Home", m.State.Route)
	}
}

func TestSearchAndOpenAlbum(t *testing.T) {
	m, _ := newTestModel(t)

	m = search(t, m, "pastel")
	if m.State.Route != domain.RouteSearchResults || m.State.Search.Input != "pastel" {
		t.Fatalf("route=%v input=%q", m.State.Route, m.State.Search.Input)
	}
	if diff := deep.Equal(rowTitles(m), []string{"Pastel Blues"}); diff != nil {
		t.Fatal(diff)
	}

	m = press(t, m, "enter")
	if m.State.Route != domain.RouteAlbumDetail {
		t.Fatalf("route = %v, want album page", m.State.Route)
	}
	want := []string{"Be My Husband", "Nobody's Fault But Mine", "Trouble in Mind"}
	if diff := deep.Equal(rowTitles(m), want); diff != nil {
		t.Error(diff)
	}

	m = cursorTo(t, m, "Trouble in Mind")
	m = press(t, m, "esc")
	if m.State.Route != domain.RouteSearchResults || m.Cursor != 0 {
		t.Errorf("after back: route=%v cursor=%d", m.State.Route, m.Cursor)
	}
	m = press(t, m, "esc")
	if m.State.Route != domain.RouteHome || m.State.History.Len() != 0 {
		t.Errorf("after second back: route=%v history=%d", m.State.Route, m.State.History.Len())
	}
}

func TestSearchInputCancel(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "/", "nina", "esc")
	if m.Mode != InputNone || m.State.Route != domain.RouteHome {
		t.Fatalf("mode=%v route=%v after cancel", m.Mode, m.State.Route)
	}
	m = press(t, m, "/", "enter")
	if m.State.Route != domain.RouteHome {
		t.Error("blank search navigated away")
	}
}

func TestStaleSearchResultsDropped(t *testing.T) {
	m, _ := newTestModel(t)

	m.State.Navigate(domain.Navigation{Route: domain.RouteSearchResults, Target: "nina"})
	oldKey := m.State.Search.Request("nina")
	newKey := m.State.Search.Request("bill")

	fresh := domain.SearchResults{}
	m, _ = update(m, SearchResultsMsg{Key: newKey, Query: "bill", Results: fresh})
	m, _ = update(m, SearchResultsMsg{Key: oldKey, Query: "nina", Err: errors.New("late")})

	if !m.State.Search.Results.IsResolved() || m.State.Search.Input != "bill" {
		t.Fatalf("results = %v, input = %q", m.State.Search.Results, m.State.Search.Input)
	}

	// A newer request leaves the slot pending on its own key
	pending := m.State.Search.Request("evans")
	m, _ = update(m, SearchResultsMsg{Key: newKey, Query: "bill", Results: fresh})
	if key, ok := m.State.Search.Results.PendingKey(); !ok || key != pending {
		t.Errorf("slot = %v, want pending on key %d", m.State.Search.Results, pending)
	}
}

func TestRejectedPageShowsError(t *testing.T) {
	m, _ := newTestModel(t)

	m.State.Navigate(domain.Navigation{Route: domain.RouteAlbumDetail, Target: "missing", Title: "Missing"})
	cmd := m.load(m.State.CurrentNavigation(), true)
	m = pump(t, m, cmd)

	if !m.State.Album.Album.IsRejected() {
		t.Fatalf("album slot = %v, want rejected", m.State.Album.Album)
	}
	if status := statusFor(m.State); status.err == "" || status.pending {
		t.Errorf("page status = %+v", status)
	}
	if !strings.Contains(m.View(), "not found") {
		t.Error("view does not show the error")
	}
}

func TestPlayAdvancesThroughQueue(t *testing.T) {
	m, launcher := newTestModel(t)

	m = search(t, m, "pastel")
	m = press(t, m, "enter")
	m = press(t, m, "enter")

	if m.State.Playback.Status() != state.PlaybackPlaying {
		t.Fatalf("status = %v, want playing", m.State.Playback.Status())
	}
	first := m.State.Playback.Item
	if first.Name != "Be My Husband" || m.State.TrackCtx.PlaybackItem != first {
		t.Fatalf("playing %q, ctx %v", first.Name, m.State.TrackCtx.PlaybackItem)
	}
	if m.State.Queue.Tracks.Len() != 3 || m.State.Queue.Position != 0 {
		t.Fatalf("queue = %d tracks at %d", m.State.Queue.Tracks.Len(), m.State.Queue.Position)
	}

	firstSession := m.sessionID
	var cmd tea.Cmd
	m, cmd = update(m, TrackEndedMsg{SessionID: firstSession})
	m = pump(t, m, cmd)
	if m.State.Playback.Item.Name != "Nobody's Fault But Mine" || m.State.Queue.Position != 1 {
		t.Fatalf("after track end: playing %q at %d", m.State.Playback.Item.Name, m.State.Queue.Position)
	}

	// The exit of a replaced player changes nothing
	m, cmd = update(m, TrackEndedMsg{SessionID: firstSession})
	if cmd != nil || m.State.Queue.Position != 1 {
		t.Fatal("stale track end advanced the queue")
	}

	m = press(t, m, "n")
	m, cmd = update(m, TrackEndedMsg{SessionID: m.sessionID})
	m = pump(t, m, cmd)
	if m.State.Playback.Status() != state.PlaybackStopped || m.State.TrackCtx.PlaybackItem != nil {
		t.Errorf("end of queue: status=%v", m.State.Playback.Status())
	}

	want := []string{"01 Be My Husband.mp3", "02 Nobody's Fault But Mine.mp3", "03 Trouble in Mind.mp3"}
	if diff := deep.Equal(launcher.launched(), want); diff != nil {
		t.Error(diff)
	}
}

func TestStalePlaybackStartIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	a := &domain.Track{ID: "a", Name: "A"}
	b := &domain.Track{ID: "b", Name: "B"}

	m, _ = update(m, PlaybackStartedMsg{Session: domain.PlaybackSession{ID: 7, Track: b}})
	m, _ = update(m, PlaybackStartedMsg{Session: domain.PlaybackSession{ID: 6, Track: a}})
	if m.State.Playback.Item != b {
		t.Errorf("playing %v, want the later session's track", m.State.Playback.Item.Name)
	}
}

func TestPauseResumeAndStop(t *testing.T) {
	m, launcher := newTestModel(t)

	m = search(t, m, "gloria")
	m = press(t, m, "enter")
	m = press(t, m, " ")
	if m.State.Playback.Status() != state.PlaybackPaused || m.State.Playback.Item == nil {
		t.Fatalf("after pause: status=%v", m.State.Playback.Status())
	}
	if _, ok := m.State.Playback.CurrentProgress(); !ok {
		t.Error("paused without a position")
	}

	m = press(t, m, " ")
	if m.State.Playback.Status() != state.PlaybackPlaying {
		t.Fatalf("after resume: status=%v", m.State.Playback.Status())
	}
	if n := len(launcher.launched()); n != 2 {
		t.Errorf("player launched %d times, want 2", n)
	}

	m = press(t, m, "x")
	if m.State.Playback.Status() != state.PlaybackStopped {
		t.Errorf("after stop: status=%v", m.State.Playback.Status())
	}
	if _, ok := m.State.Playback.CurrentProgress(); ok {
		t.Error("stopped player still has a position")
	}
}

func TestSaveTrackUpdatesLibraryAndRows(t *testing.T) {
	m, _ := newTestModel(t)

	m = search(t, m, "trouble")
	m = cursorTo(t, m, "Trouble in Mind")
	m = press(t, m, "s")

	r, _ := m.selected()
	if !m.State.TrackCtx.IsSaved(r.track) {
		t.Fatal("track not marked saved")
	}
	saved, _ := m.State.Library.SavedTracks.Resolved()
	if saved.Len() != 1 || saved.At(0) != r.track {
		t.Fatalf("library saved tracks = %d", saved.Len())
	}

	m = press(t, m, "L")
	if diff := deep.Equal(rowTitles(m), []string{"Trouble in Mind"}); diff != nil {
		t.Fatal(diff)
	}

	m = press(t, m, "s")
	if m.State.TrackCtx.IsSaved(r.track) {
		t.Error("track still saved after toggling")
	}
	if len(rowTitles(m)) != 0 {
		t.Errorf("library rows = %v", rowTitles(m))
	}
}

func TestSaveAlbum(t *testing.T) {
	m, _ := newTestModel(t)

	m = search(t, m, "vanguard")
	m = press(t, m, "enter", "a", "L")
	if diff := deep.Equal(rowTitles(m), []string{"Sunday at the Village Vanguard"}); diff != nil {
		t.Fatal(diff)
	}
	if !m.LibrarySvc.IsAlbumSaved(m.State.Album.ID) {
		t.Error("album not saved in the store")
	}
}

func TestSaveQueueAsPlaylist(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "W")
	if m.Mode != InputNone || m.StatusMsg != "The queue is empty" {
		t.Fatalf("mode=%v status=%q", m.Mode, m.StatusMsg)
	}

	m = search(t, m, "pastel")
	m = press(t, m, "enter", "enter", "W", "Sunday Mix", "enter", "L")

	if diff := deep.Equal(rowTitles(m), []string{"Sunday Mix"}); diff != nil {
		t.Fatal(diff)
	}
	m = press(t, m, "enter")
	if m.State.Route != domain.RoutePlaylistDetail || len(rowTitles(m)) != 3 {
		t.Errorf("playlist page: route=%v rows=%v", m.State.Route, rowTitles(m))
	}
}

func TestRescanAlbum(t *testing.T) {
	m, _ := newTestModel(t)

	m = search(t, m, "pastel")
	m = press(t, m, "enter")
	album := m.State.Album.ID

	m = press(t, m, "r")
	if m.Scanning || m.StatusIsErr {
		t.Fatalf("rescan did not finish: %q", m.StatusMsg)
	}
	if !strings.Contains(m.StatusMsg, "(1 cached)") {
		t.Errorf("status = %q, want only the other album cached", m.StatusMsg)
	}
	if m.State.Album.ID != album || !m.State.Album.Album.IsResolved() {
		t.Errorf("album page not reloaded: %v", m.State.Album.Album)
	}
}

func TestViewRendersOnlyOnChange(t *testing.T) {
	m, _ := newTestModel(t)
	m.StatusMsg = ""

	first := m.View()
	renders := m.render.renders
	if again := m.View(); again != first || m.render.renders != renders {
		t.Fatal("unchanged model rendered again")
	}

	m.State.SetPlaybackPlaying(&domain.Track{ID: "t", Name: "Naima", Duration: domain.AudioDuration(4 * time.Minute)})
	view := m.View()
	if m.render.renders != renders+1 || !strings.Contains(view, "Naima") {
		t.Errorf("state change not rendered (renders=%d)", m.render.renders)
	}
}

func TestNowPlayingShowsQuality(t *testing.T) {
	m, _ := newTestModel(t)
	cfg := m.State.Config
	cfg.Audio.Quality = config.AudioQualityHigh
	m.State.Config = cfg

	if view := m.View(); !strings.Contains(view, "high · 320 kbps") {
		t.Error("quality badge missing from view")
	}
}

func TestLayoutLines(t *testing.T) {
	rows := []row{
		{section: "Albums"}, {section: "Albums"}, {section: "Tracks"},
	}
	lines, rowLine := layoutLines(rows)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	if diff := deep.Equal(rowLine, []int{1, 2, 4}); diff != nil {
		t.Error(diff)
	}
	if lines[3].heading != "Tracks" {
		t.Errorf("line 3 = %+v", lines[3])
	}
}

func TestCompleteIgnoresUnrequestedSlot(t *testing.T) {
	var p promise.Promise[string, string]
	if complete(&p, 1, "x", nil) || !p.IsEmpty() {
		t.Error("completion applied to an empty slot")
	}
}

func TestSearchRowsCarryHighlights(t *testing.T) {
	m, _ := newTestModel(t)

	m = search(t, m, "pastel")
	rows := rowsFor(m.State)
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rowTitles(m))
	}
	if diff := deep.Equal(rows[0].highlight, []int{0, 1, 2, 3, 4, 5}); diff != nil {
		t.Error(diff)
	}

	// Pages other than search results draw no highlights
	m = press(t, m, "enter")
	for _, r := range rowsFor(m.State) {
		if r.highlight != nil {
			t.Errorf("album row %q has highlight %v", r.item.GetTitle(), r.highlight)
		}
	}
}

func TestTitlePartsSkipEllipsis(t *testing.T) {
	got := titleParts("Pastel Blues", "Paste…", []int{0, 1, 2, 3, 4, 5}, false)
	want := []styles.RowPart{
		{Text: "Paste", Highlight: true},
		{Text: "…"},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestStalePauseIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	b := &domain.Track{ID: "b", Name: "B"}

	m, _ = update(m, PlaybackStartedMsg{Session: domain.PlaybackSession{ID: 3, Track: b}})
	m, _ = update(m, PlaybackPausedMsg{SessionID: 2, Position: domain.AudioDuration(10 * time.Second)})
	if m.State.Playback.Status() != state.PlaybackPlaying {
		t.Fatalf("pause of a replaced player applied: status=%v", m.State.Playback.Status())
	}

	m, _ = update(m, PlaybackPausedMsg{SessionID: 3, Position: domain.AudioDuration(10 * time.Second)})
	if m.State.Playback.Status() != state.PlaybackPaused {
		t.Errorf("status = %v, want paused", m.State.Playback.Status())
	}
	if pos, ok := m.State.Playback.CurrentProgress(); !ok || pos != domain.AudioDuration(10*time.Second) {
		t.Errorf("progress = %v, %v", pos, ok)
	}
}
