package domain

// PlaybackSession is one run of the external player. Done yields once when
// the player exits: nil when the track finished, the exit error otherwise.
// A session that is stopped or paused on purpose closes Done without a value.
type PlaybackSession struct {
	ID     uint64
	Track  *Track
	Offset AudioDuration // Position the player was started at
	Done   <-chan error
}

// PlayerProcess is a running external player
type PlayerProcess interface {
	// Wait blocks until the player exits and returns its exit error
	Wait() error

	// Kill ends the player. Killing an exited player is not an error.
	Kill() error
}
