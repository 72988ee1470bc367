package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/promise"
	"github.com/mmcdole/cadence/internal/service"
	"github.com/mmcdole/cadence/internal/state"
)

// Command factories for async operations

const (
	loadTimeout = 30 * time.Second
	scanTimeout = 10 * time.Minute
	seekStep    = 10 * time.Second
)

// SearchCmd searches the catalog for query
func SearchCmd(svc *service.SearchService, key promise.Key, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		results, err := svc.Search(ctx, query)
		return SearchResultsMsg{Key: key, Query: query, Results: results, Err: err}
	}
}

// LoadAlbumCmd loads an album page
func LoadAlbumCmd(svc *service.LibraryService, key promise.Key, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		album, err := svc.GetAlbum(ctx, id)
		return AlbumLoadedMsg{Key: key, Album: album, Err: err}
	}
}

// LoadArtistCmd loads the three parts of an artist page in parallel
func LoadArtistCmd(svc *service.LibraryService, keys state.ArtistKeys, id string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			artist, err := svc.GetArtist(ctx, id)
			return ArtistLoadedMsg{Key: keys.Artist, Artist: artist, Err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			albums, err := svc.GetArtistAlbums(ctx, id)
			return ArtistAlbumsLoadedMsg{Key: keys.Albums, Albums: albums, Err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			tracks, err := svc.GetArtistTopTracks(ctx, id)
			return ArtistTopTracksLoadedMsg{Key: keys.TopTracks, Tracks: tracks, Err: err}
		},
	)
}

// LoadPlaylistCmd loads a playlist page
func LoadPlaylistCmd(svc *service.PlaylistService, keys state.PlaylistKeys, id string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			p, err := svc.GetPlaylist(ctx, id)
			return PlaylistLoadedMsg{Key: keys.Playlist, Playlist: p, Err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			tracks, err := svc.GetPlaylistTracks(ctx, id)
			return PlaylistTracksLoadedMsg{Key: keys.Tracks, Tracks: tracks, Err: err}
		},
	)
}

// LoadLibraryCmd loads the saved collection and the playlists
func LoadLibraryCmd(libSvc *service.LibraryService, playlistSvc *service.PlaylistService, keys state.LibraryKeys) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			tracks, err := libSvc.GetSavedTracks(ctx)
			return SavedTracksLoadedMsg{Key: keys.SavedTracks, Tracks: tracks, Err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			albums, err := libSvc.GetSavedAlbums(ctx)
			return SavedAlbumsLoadedMsg{Key: keys.SavedAlbums, Albums: albums, Err: err}
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			playlists, err := playlistSvc.GetPlaylists(ctx)
			return PlaylistsLoadedMsg{Key: keys.Playlists, Playlists: playlists, Err: err}
		},
	)
}

// ScanLibraryCmd scans the library with streaming progress updates. With
// rescan set it first drops the cached tag reads of albumID, or of the whole
// library when albumID is empty.
func ScanLibraryCmd(svc *service.LibraryService, albumID string, rescan bool) tea.Cmd {
	return func() tea.Msg {
		progressCh := make(chan ScanProgressMsg, 1)

		go func() {
			defer close(progressCh)
			ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
			defer cancel()

			onProgress := func(scanned int) {
				// Drop updates while the UI is behind; only the latest count matters
				select {
				case progressCh <- ScanProgressMsg{Scanned: scanned}:
				default:
				}
			}

			var (
				result domain.ScanResult
				err    error
			)
			if rescan {
				result, err = svc.Rescan(ctx, albumID, onProgress)
			} else {
				result, err = svc.Scan(ctx, onProgress)
			}
			progressCh <- ScanProgressMsg{Done: true, Scanned: result.Tracks, Result: result, Err: err}
		}()

		return readScanProgress(progressCh)
	}
}

// readScanProgress reads one message from the channel and attaches the
// command that reads the next one
func readScanProgress(progressCh <-chan ScanProgressMsg) tea.Msg {
	msg, ok := <-progressCh
	if !ok {
		return ScanProgressMsg{Done: true, Err: fmt.Errorf("scan cancelled")}
	}
	if !msg.Done {
		msg.NextCmd = func() tea.Msg {
			return readScanProgress(progressCh)
		}
	}
	return msg
}

// PlayTrackCmd starts playback of a track from the beginning
func PlayTrackCmd(svc *service.PlaybackService, track *domain.Track) tea.Cmd {
	return func() tea.Msg {
		sess, err := svc.Play(context.Background(), track)
		if err != nil {
			return ErrMsg{Err: err, Context: "starting playback"}
		}
		return PlaybackStartedMsg{Session: sess}
	}
}

// ResumeCmd restarts the paused track where it stopped
func ResumeCmd(svc *service.PlaybackService) tea.Cmd {
	return func() tea.Msg {
		sess, err := svc.Resume(context.Background())
		if err != nil {
			return ErrMsg{Err: err, Context: "resuming playback"}
		}
		return PlaybackStartedMsg{Session: sess}
	}
}

// SeekCmd restarts the current track delta away from its position
func SeekCmd(svc *service.PlaybackService, delta time.Duration) tea.Cmd {
	return func() tea.Msg {
		sess, err := svc.Seek(context.Background(), delta)
		if err != nil {
			return ErrMsg{Err: err, Context: "seeking"}
		}
		return PlaybackStartedMsg{Session: sess}
	}
}

// PauseCmd stops the player and keeps its position
func PauseCmd(svc *service.PlaybackService) tea.Cmd {
	return func() tea.Msg {
		sess, err := svc.Pause()
		if err != nil {
			return ErrMsg{Err: err, Context: "pausing playback"}
		}
		return PlaybackPausedMsg{SessionID: sess.ID, Position: sess.Offset}
	}
}

// WaitTrackEndCmd waits for a session's player to exit by itself. A session
// that is paused, stopped or replaced produces no message.
func WaitTrackEndCmd(sess domain.PlaybackSession) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-sess.Done
		if !ok {
			return nil
		}
		return TrackEndedMsg{SessionID: sess.ID, Err: err}
	}
}

// SaveTrackCmd saves or unsaves a track
func SaveTrackCmd(svc *service.LibraryService, track *domain.Track, save bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var err error
		if save {
			err = svc.SaveTrack(ctx, track.ID)
		} else {
			err = svc.UnsaveTrack(ctx, track.ID)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "updating saved tracks"}
		}
		return TrackSavedMsg{Track: track, Saved: save}
	}
}

// SaveAlbumCmd saves or unsaves an album
func SaveAlbumCmd(svc *service.LibraryService, album domain.Album, save bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var err error
		if save {
			err = svc.SaveAlbum(ctx, album.ID)
		} else {
			err = svc.UnsaveAlbum(ctx, album.ID)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "updating saved albums"}
		}
		return AlbumSavedMsg{Album: album, Saved: save}
	}
}

// CreatePlaylistCmd writes tracks to a new playlist
func CreatePlaylistCmd(svc *service.PlaylistService, title string, tracks []*domain.Track) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		p, err := svc.CreatePlaylist(ctx, title, tracks)
		if err != nil {
			return ErrMsg{Err: err, Context: "creating playlist"}
		}
		return PlaylistCreatedMsg{Playlist: p}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
