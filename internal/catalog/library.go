package catalog

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/search"
	"github.com/mmcdole/cadence/internal/seq"
)

const (
	searchArtistLimit = 10
	searchAlbumLimit  = 20
	searchTrackLimit  = 50
	topTrackLimit     = 10
)

var coverFiles = []string{"cover.jpg", "cover.png", "folder.jpg", "folder.png", "front.jpg"}

// library is an immutable snapshot of the scanned catalog. A rescan builds a
// new one and swaps it in; readers keep whichever snapshot they started with.
type library struct {
	tracks         map[domain.TrackID]*domain.Track
	byPath         map[string]*domain.Track
	albums         map[string]domain.Album
	albumDirs      map[string]string
	artists        map[string]domain.Artist
	artistAlbums   map[string][]domain.Album
	artistTracks   map[string][]*domain.Track
	playlists      []domain.Playlist
	playlistTracks map[string][]*domain.Track

	trackIndex  *search.Index[*domain.Track]
	albumIndex  *search.Index[string]
	artistIndex *search.Index[string]
}

func emptyLibrary() *library {
	return buildLibrary(nil, nil, slog.Default())
}

// hashID derives a stable identifier so ids survive rescans
func hashID(kind string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(strings.ToLower(p)))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

type albumBuilder struct {
	id          string
	name        string
	artist      domain.ArtistLink
	year        int
	genre       string
	dir         string
	hasPicture  string // path of a track carrying embedded art
	tracks      []*domain.Track
	artistNames map[string]bool
}

func buildLibrary(records []domain.ScannedTrack, playlists []playlistFile, logger *slog.Logger) *library {
	lib := &library{
		tracks:         make(map[domain.TrackID]*domain.Track, len(records)),
		byPath:         make(map[string]*domain.Track, len(records)),
		albums:         make(map[string]domain.Album),
		albumDirs:      make(map[string]string),
		artists:        make(map[string]domain.Artist),
		artistAlbums:   make(map[string][]domain.Album),
		artistTracks:   make(map[string][]*domain.Track),
		playlistTracks: make(map[string][]*domain.Track),
	}

	// Playlists may carry lengths the tags did not
	lengths := make(map[string]domain.AudioDuration)
	for _, pf := range playlists {
		for _, e := range pf.entries {
			if e.Duration > 0 {
				lengths[e.Path] = e.Duration
			}
		}
	}

	records = slices.Clone(records)
	slices.SortFunc(records, func(a, b domain.ScannedTrack) int { return cmp.Compare(a.Path, b.Path) })

	builders := make(map[string]*albumBuilder)
	var albumOrder []string
	artistNames := make(map[string]string)

	link := func(name string) domain.ArtistLink {
		id := hashID("artist", name)
		if _, ok := artistNames[id]; !ok {
			artistNames[id] = name
		}
		return domain.ArtistLink{ID: id, Name: artistNames[id]}
	}

	for _, rec := range records {
		albumArtist := link(stringOr(rec.AlbumArtist, "Unknown Artist"))
		albumName := stringOr(rec.Album, "Unknown Album")
		albumID := hashID("album", albumArtist.Name, albumName)

		b, ok := builders[albumID]
		if !ok {
			b = &albumBuilder{
				id:          albumID,
				name:        albumName,
				artist:      albumArtist,
				dir:         filepath.Dir(rec.Path),
				artistNames: make(map[string]bool),
			}
			builders[albumID] = b
			albumOrder = append(albumOrder, albumID)
		}
		b.year = max(b.year, rec.Year)
		if b.genre == "" {
			b.genre = rec.Genre
		}
		if rec.HasPicture && b.hasPicture == "" {
			b.hasPicture = rec.Path
		}

		names := rec.Artists
		if len(names) == 0 {
			names = []string{albumArtist.Name}
		}
		artists := make([]domain.ArtistLink, len(names))
		for i, n := range names {
			artists[i] = link(n)
			b.artistNames[artists[i].ID] = true
		}

		duration := domain.AudioDuration(time.Duration(rec.DurationSec) * time.Second)
		if duration == 0 {
			duration = lengths[rec.Path]
		}

		t := &domain.Track{
			ID:          domain.TrackID(hashID("track", rec.Path)),
			Name:        stringOr(rec.Title, filepath.Base(rec.Path)),
			Album:       domain.AlbumLink{ID: albumID, Name: albumName},
			Artists:     seq.NewVector(artists...),
			Duration:    duration,
			TrackNumber: rec.TrackNumber,
			DiscNumber:  rec.DiscNumber,
			Path:        rec.Path,
		}
		b.tracks = append(b.tracks, t)
		lib.tracks[t.ID] = t
		lib.byPath[t.Path] = t
	}

	lib.albumIndex = search.NewIndex[string](len(builders))
	for _, id := range albumOrder {
		b := builders[id]
		slices.SortStableFunc(b.tracks, compareTracks)

		album := domain.Album{
			ID:          b.id,
			Name:        b.name,
			AlbumType:   albumType(b),
			Artists:     seq.NewVector(b.artist),
			Images:      albumImages(b),
			ReleaseYear: b.year,
			Genre:       b.genre,
			Tracks:      seq.NewVector(b.tracks...),
		}
		lib.albums[id] = album
		lib.albumDirs[id] = b.dir
		lib.artistAlbums[b.artist.ID] = append(lib.artistAlbums[b.artist.ID], album)
		lib.albumIndex.Add(id, album.Name+" "+b.artist.Name)

		for _, t := range b.tracks {
			seen := make(map[string]bool)
			t.Artists.Each(func(_ int, a domain.ArtistLink) bool {
				if !seen[a.ID] {
					lib.artistTracks[a.ID] = append(lib.artistTracks[a.ID], t)
					seen[a.ID] = true
				}
				return true
			})
			if !seen[b.artist.ID] {
				lib.artistTracks[b.artist.ID] = append(lib.artistTracks[b.artist.ID], t)
			}
		}
	}

	ids := make([]string, 0, len(artistNames))
	for id := range artistNames {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Compare(strings.ToLower(artistNames[a]), strings.ToLower(artistNames[b]))
	})

	lib.artistIndex = search.NewIndex[string](len(ids))
	for _, id := range ids {
		albums := lib.artistAlbums[id]
		slices.SortStableFunc(albums, func(a, b domain.Album) int {
			if c := cmp.Compare(b.ReleaseYear, a.ReleaseYear); c != 0 {
				return c
			}
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})

		artist := domain.Artist{ID: id, Name: artistNames[id]}
		for _, a := range albums {
			if !a.Images.IsEmpty() {
				artist.Images = a.Images
				break
			}
		}
		lib.artists[id] = artist
		lib.artistIndex.Add(id, artist.Name)
	}

	lib.trackIndex = search.NewIndex[*domain.Track](len(records))
	for _, id := range albumOrder {
		for _, t := range builders[id].tracks {
			lib.trackIndex.Add(t, t.Name+" "+t.ArtistName())
		}
	}

	for _, pf := range playlists {
		lib.addPlaylist(pf, logger)
	}

	return lib
}

// addPlaylist matches the playlist entries against the library. Entries for
// files outside the library are dropped.
func (lib *library) addPlaylist(pf playlistFile, logger *slog.Logger) {
	tracks := make([]*domain.Track, 0, len(pf.entries))
	for _, e := range pf.entries {
		if t, ok := lib.byPath[e.Path]; ok {
			tracks = append(tracks, t)
		}
	}
	if missing := len(pf.entries) - len(tracks); missing > 0 {
		logger.Debug("playlist references files outside the library", "playlist", pf.path, "missing", missing)
	}

	p := pf.playlist
	p.TrackCount = len(tracks)
	lib.playlists = append(lib.playlists, p)
	lib.playlistTracks[p.ID] = tracks
}

// withPlaylist returns a copy of lib with pf added or replaced
func (lib *library) withPlaylist(pf playlistFile, logger *slog.Logger) *library {
	next := *lib
	next.playlists = slices.DeleteFunc(slices.Clone(lib.playlists), func(p domain.Playlist) bool {
		return p.ID == pf.playlist.ID
	})
	next.playlistTracks = make(map[string][]*domain.Track, len(lib.playlistTracks)+1)
	for id, tracks := range lib.playlistTracks {
		next.playlistTracks[id] = tracks
	}
	next.addPlaylist(pf, logger)
	slices.SortStableFunc(next.playlists, func(a, b domain.Playlist) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return &next
}

func (lib *library) topTracks(artistID string) []*domain.Track {
	tracks := slices.Clone(lib.artistTracks[artistID])
	year := func(t *domain.Track) int { return lib.albums[t.Album.ID].ReleaseYear }
	slices.SortStableFunc(tracks, func(a, b *domain.Track) int {
		return cmp.Compare(year(b), year(a))
	})
	if len(tracks) > topTrackLimit {
		tracks = tracks[:topTrackLimit]
	}
	return tracks
}

func (lib *library) search(query string) domain.SearchResults {
	var (
		artists    []domain.Artist
		albums     []domain.Album
		tracks     []*domain.Track
		highlights = make(map[string][]int)
	)
	// Album and track titles are indexed with the artist appended; positions
	// past the name fall outside what a row highlights.
	highlight := func(id string, idx []int) {
		if len(idx) > 0 {
			highlights[id] = idx
		}
	}
	for _, r := range lib.artistIndex.Search(query, searchArtistLimit) {
		artists = append(artists, lib.artists[r.Item])
		highlight(r.Item, r.MatchedIndexes)
	}
	for _, r := range lib.albumIndex.Search(query, searchAlbumLimit) {
		albums = append(albums, lib.albums[r.Item])
		highlight(r.Item, r.MatchedIndexes)
	}
	for _, r := range lib.trackIndex.Search(query, searchTrackLimit) {
		tracks = append(tracks, r.Item)
		highlight(string(r.Item.ID), r.MatchedIndexes)
	}
	return domain.SearchResults{
		Artists:    seq.NewVector(artists...),
		Albums:     seq.NewVector(albums...),
		Tracks:     seq.NewVector(tracks...),
		Highlights: highlights,
	}
}

func compareTracks(a, b *domain.Track) int {
	if c := cmp.Compare(a.DiscNumber, b.DiscNumber); c != 0 {
		return c
	}
	if c := cmp.Compare(a.TrackNumber, b.TrackNumber); c != 0 {
		return c
	}
	return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

func albumType(b *albumBuilder) domain.AlbumType {
	switch name := strings.ToLower(b.artist.Name); {
	case name == "various artists" || name == "various" || len(b.artistNames) > 3:
		return domain.AlbumTypeCompilation
	case len(b.tracks) <= 3:
		return domain.AlbumTypeSingle
	default:
		return domain.AlbumTypeAlbum
	}
}

func albumImages(b *albumBuilder) seq.Vector[domain.Image] {
	for _, name := range coverFiles {
		path := filepath.Join(b.dir, name)
		if _, err := os.Stat(path); err == nil {
			return seq.NewVector(domain.Image{URL: "file://" + filepath.ToSlash(path)})
		}
	}
	if b.hasPicture != "" {
		return seq.NewVector(domain.Image{URL: "embedded://" + filepath.ToSlash(b.hasPicture)})
	}
	return seq.NewVector[domain.Image]()
}
