package domain

// ScannedTrack is the cached result of reading one audio file's tags.
// ModTime is the file modification time the record was read at.
type ScannedTrack struct {
	Path        string   `json:"path"`
	ModTime     int64    `json:"mod_time"`
	Title       string   `json:"title"`
	Album       string   `json:"album"`
	AlbumArtist string   `json:"album_artist"`
	Artists     []string `json:"artists"`
	Genre       string   `json:"genre"`
	Year        int      `json:"year"`
	TrackNumber int      `json:"track_number"`
	DiscNumber  int      `json:"disc_number"`
	DurationSec int64    `json:"duration_sec"`
	HasPicture  bool     `json:"has_picture"`
}

// LibraryStore handles the BoltDB cache.
// Scan records are keyed by path so a directory prefix invalidates a subtree.
type LibraryStore interface {
	// === Scan cache ===
	GetScanned(path string) (ScannedTrack, bool)
	SaveScanned(rec ScannedTrack) error

	// IsValid checks if the stored record for path was read at modTime
	IsValid(path string, modTime int64) bool

	// === Saved items ===
	SavedTrackIDs() []TrackID
	SaveSavedTrackIDs(ids []TrackID) error
	SavedAlbumIDs() []string
	SaveSavedAlbumIDs(ids []string) error

	// === Invalidation ===
	InvalidateDir(dir string) // Wipes scan records under dir
	InvalidateAll()           // Wipes entire cache

	// === Lifecycle ===
	Close() error
}
