package tui

import (
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/promise"
	"github.com/mmcdole/cadence/internal/seq"
	"github.com/mmcdole/cadence/internal/state"
)

// row is one selectable line of the current page
type row struct {
	section string
	item    domain.ListItem

	// Set for track rows: the list the track plays from and its position
	track  *domain.Track
	tracks state.TrackList
	index  int

	// Rune positions of the title that matched the search query
	highlight []int
}

// pageStatus summarizes the slots behind a page
type pageStatus struct {
	pending bool
	err     string
}

func (p *pageStatus) add(status promise.Status, err string) {
	switch status {
	case promise.Pending:
		p.pending = true
	case promise.Rejected:
		if p.err == "" {
			p.err = err
		}
	}
}

func slotStatus[T any](p promise.Promise[T, string]) (promise.Status, string) {
	err, _ := p.Rejected()
	return p.Status(), err
}

// rowsFor lists the selectable rows of the page the state is on
func rowsFor(s state.State) []row {
	var rows []row
	switch s.Route {
	case domain.RouteHome:
		rows = appendTracks(rows, "Queue", s.Queue.Tracks)

	case domain.RouteSearchResults:
		if res, ok := s.Search.Results.Resolved(); ok {
			rows = appendArtists(rows, "Artists", res.Artists)
			rows = appendAlbums(rows, "Albums", res.Albums)
			rows = appendTracks(rows, "Tracks", res.Tracks)
			for i := range rows {
				rows[i].highlight = res.Highlight(rows[i].item.GetID())
			}
		}

	case domain.RouteLibrary:
		if list, ok := s.Library.Playlists.Resolved(); ok {
			list.Each(func(_ int, p domain.Playlist) bool {
				rows = append(rows, row{section: "Playlists", item: p})
				return true
			})
		}
		if list, ok := s.Library.SavedAlbums.Resolved(); ok {
			rows = appendAlbums(rows, "Saved Albums", list)
		}
		if list, ok := s.Library.SavedTracks.Resolved(); ok {
			rows = appendTracks(rows, "Saved Tracks", list)
		}

	case domain.RouteAlbumDetail:
		if album, ok := s.Album.Album.Resolved(); ok {
			rows = appendTracks(rows, "", album.Tracks)
		}

	case domain.RouteArtistDetail:
		if list, ok := s.Artist.TopTracks.Resolved(); ok {
			rows = appendTracks(rows, "Top Tracks", list)
		}
		if list, ok := s.Artist.Albums.Resolved(); ok {
			rows = appendAlbums(rows, "Albums", list)
		}

	case domain.RoutePlaylistDetail:
		if list, ok := s.Playlist.Tracks.Resolved(); ok {
			rows = appendTracks(rows, "", list)
		}
	}
	return rows
}

// statusFor reports whether the page is still loading or failed
func statusFor(s state.State) pageStatus {
	var p pageStatus
	switch s.Route {
	case domain.RouteSearchResults:
		p.add(slotStatus(s.Search.Results))
	case domain.RouteLibrary:
		p.add(slotStatus(s.Library.Playlists))
		p.add(slotStatus(s.Library.SavedAlbums))
		p.add(slotStatus(s.Library.SavedTracks))
	case domain.RouteAlbumDetail:
		p.add(slotStatus(s.Album.Album))
	case domain.RouteArtistDetail:
		p.add(slotStatus(s.Artist.Artist))
		p.add(slotStatus(s.Artist.TopTracks))
		p.add(slotStatus(s.Artist.Albums))
	case domain.RoutePlaylistDetail:
		p.add(slotStatus(s.Playlist.Playlist))
		p.add(slotStatus(s.Playlist.Tracks))
	}
	return p
}

func appendTracks(rows []row, section string, tracks state.TrackList) []row {
	tracks.Each(func(i int, t *domain.Track) bool {
		rows = append(rows, row{section: section, item: t, track: t, tracks: tracks, index: i})
		return true
	})
	return rows
}

func appendAlbums(rows []row, section string, albums seq.Vector[domain.Album]) []row {
	albums.Each(func(_ int, a domain.Album) bool {
		rows = append(rows, row{section: section, item: a})
		return true
	})
	return rows
}

func appendArtists(rows []row, section string, artists seq.Vector[domain.Artist]) []row {
	artists.Each(func(_ int, a domain.Artist) bool {
		rows = append(rows, row{section: section, item: a})
		return true
	})
	return rows
}

// listLine is one rendered line of the list: a section heading or a row
type listLine struct {
	heading string
	row     int // index into rows, -1 for headings
}

// layoutLines interleaves section headings with the rows. rowLine maps each
// row index to its line.
func layoutLines(rows []row) (lines []listLine, rowLine []int) {
	rowLine = make([]int, len(rows))
	section := ""
	for i, r := range rows {
		if r.section != "" && (i == 0 || r.section != section) {
			lines = append(lines, listLine{heading: r.section, row: -1})
		}
		section = r.section
		rowLine[i] = len(lines)
		lines = append(lines, listLine{row: i})
	}
	return lines, rowLine
}
