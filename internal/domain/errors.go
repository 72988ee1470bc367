package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested catalog entry does not exist
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured indicates the music library location is unset
	ErrNotConfigured = errors.New("music library not configured")

	// ErrNoPlayer indicates no audio player could be started
	ErrNoPlayer = errors.New("no audio player available")

	// ErrNothingPlaying indicates a playback command needs a current track
	ErrNothingPlaying = errors.New("nothing is playing")
)
