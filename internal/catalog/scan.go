package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/mmcdole/cadence/internal/domain"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
}

// leadingNumber matches "01 ", "01. ", "1 - " style track prefixes
var leadingNumber = regexp.MustCompile(`^(\d{1,3})\s*[-._]?\s+`)

// scanFiles walks root and returns one record per audio file, reusing
// cached records whose mod time still matches. The second result counts the
// reused records.
func (c *Catalog) scanFiles(ctx context.Context, root string, onProgress domain.ProgressFunc) ([]domain.ScannedTrack, int, error) {
	var (
		records []domain.ScannedTrack
		cached  int
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !audioExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			c.logger.Warn("failed to stat file", "path", path, "error", err)
			return nil
		}
		modTime := info.ModTime().Unix()

		if c.store != nil && c.store.IsValid(path, modTime) {
			if rec, ok := c.store.GetScanned(path); ok {
				records = append(records, rec)
				cached++
				c.progress(onProgress, len(records))
				return nil
			}
		}

		rec := readRecord(root, path, modTime)
		if c.store != nil {
			if err := c.store.SaveScanned(rec); err != nil {
				c.logger.Error("failed to cache scan record", "error", err, "path", path)
			}
		}
		records = append(records, rec)
		c.progress(onProgress, len(records))
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	c.logger.Debug("scanned music directory", "root", root, "files", len(records), "cached", cached)
	return records, cached, nil
}

func (c *Catalog) progress(onProgress domain.ProgressFunc, n int) {
	if onProgress != nil {
		onProgress(n)
	}
}

// readRecord reads tags from path. Files without readable tags fall back to
// the Artist/Album/NN Title layout of the path.
func readRecord(root, path string, modTime int64) domain.ScannedTrack {
	rec := recordFromPath(root, path)
	rec.ModTime = modTime

	f, err := os.Open(path)
	if err != nil {
		return rec
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return rec
	}

	rec.Title = stringOr(m.Title(), rec.Title)
	rec.Album = stringOr(m.Album(), rec.Album)
	rec.AlbumArtist = stringOr(m.AlbumArtist(), stringOr(m.Artist(), rec.AlbumArtist))
	if artist := strings.TrimSpace(m.Artist()); artist != "" {
		rec.Artists = splitArtists(artist)
	}
	rec.Genre = m.Genre()
	rec.Year = m.Year()
	if n, _ := m.Track(); n > 0 {
		rec.TrackNumber = n
	}
	if n, _ := m.Disc(); n > 0 {
		rec.DiscNumber = n
	}
	rec.HasPicture = m.Picture() != nil

	return rec
}

func recordFromPath(root, path string) domain.ScannedTrack {
	rec := domain.ScannedTrack{
		Path:        path,
		Album:       "Unknown Album",
		AlbumArtist: "Unknown Artist",
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if m := leadingNumber.FindStringSubmatch(name); m != nil {
		rec.TrackNumber, _ = strconv.Atoi(m[1])
		name = name[len(m[0]):]
	}
	rec.Title = name

	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err == nil && rel != "." {
		parts := strings.Split(rel, string(filepath.Separator))
		rec.Album = parts[len(parts)-1]
		if len(parts) >= 2 {
			rec.AlbumArtist = parts[len(parts)-2]
		}
	}
	rec.Artists = []string{rec.AlbumArtist}
	return rec
}

func splitArtists(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func stringOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}
