package catalog

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/cadence/internal/domain"
	"github.com/ushis/m3u"
)

type playlistFile struct {
	playlist domain.Playlist
	path     string
	entries  []domain.PlaylistEntry
}

// readPlaylists loads every .m3u/.m3u8 file directly inside dir
func (c *Catalog) readPlaylists(dir string) []playlistFile {
	if dir == "" {
		return nil
	}
	names, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("failed to read playlist directory", "dir", dir, "error", err)
		}
		return nil
	}

	var out []playlistFile
	for _, e := range names {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".m3u" && ext != ".m3u8") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		entries, err := parsePlaylist(path)
		if err != nil {
			c.logger.Warn("skipping unreadable playlist", "path", path, "error", err)
			continue
		}
		out = append(out, playlistFile{
			playlist: domain.Playlist{
				ID:   hashID("playlist", path),
				Name: playlistName(path),
			},
			path:    path,
			entries: entries,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].playlist.Name) < strings.ToLower(out[j].playlist.Name)
	})
	return out
}

// parsePlaylist reads one playlist file. Relative entries are resolved
// against the playlist's own directory.
func parsePlaylist(path string) ([]domain.PlaylistEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := m3u.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	entries := make([]domain.PlaylistEntry, 0, len(p))
	for _, t := range p {
		if t.Path == "" || strings.Contains(t.Path, "://") {
			continue
		}
		entryPath := filepath.FromSlash(t.Path)
		if !filepath.IsAbs(entryPath) {
			entryPath = filepath.Join(base, entryPath)
		}
		entries = append(entries, domain.PlaylistEntry{
			Path:     filepath.Clean(entryPath),
			Title:    t.Title,
			Duration: domain.AudioDuration(time.Duration(t.Time) * time.Second),
		})
	}
	return entries, nil
}

// writePlaylist writes tracks to path as an extended m3u file
func writePlaylist(path string, tracks []*domain.Track) error {
	list := make(m3u.Playlist, len(tracks))
	for i, t := range tracks {
		title := t.Name
		if artist := t.ArtistName(); artist != "" {
			title = artist + " - " + t.Name
		}
		list[i] = m3u.Track{
			Path:  t.Path,
			Title: title,
			Time:  int64(t.Duration.Duration().Seconds()),
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create playlist file: %w", err)
	}
	if _, err := list.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	return f.Close()
}

func playlistName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if u, err := url.PathUnescape(name); err == nil {
		return u
	}
	return name
}

var unsafeNameChars = strings.NewReplacer("/", "-", `\`, "-", ":", "-")

func playlistFileName(name string) string {
	return unsafeNameChars.Replace(strings.TrimSpace(name)) + ".m3u"
}
