package domain

// ProgressFunc reports scan progress to the TUI.
// Called repeatedly while walking the music directory: (50), (100), ...
type ProgressFunc func(scanned int)

// ScanResult summarizes what happened during a library scan.
type ScanResult struct {
	Tracks    int // total tracks after the scan
	Cached    int // tracks served from the scan cache
	Albums    int
	Artists   int
	Playlists int
}
