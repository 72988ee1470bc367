package state

import (
	"github.com/mmcdole/cadence/internal/domain"
	"github.com/mmcdole/cadence/internal/seq"
)

// PlaybackStatus is derived from Playback.IsPlaying and Playback.Item
type PlaybackStatus int

const (
	PlaybackStopped PlaybackStatus = iota
	PlaybackPlaying
	PlaybackPaused
)

// String returns a human-readable representation of the status
func (s PlaybackStatus) String() string {
	switch s {
	case PlaybackStopped:
		return "Stopped"
	case PlaybackPlaying:
		return "Playing"
	case PlaybackPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Playback is the player state. Mutate it only through the State
// transition methods; they keep TrackCtx in step.
type Playback struct {
	IsPlaying   bool
	Progress    domain.AudioDuration // valid only when HasProgress
	HasProgress bool
	Item        *domain.Track
}

// Status derives the playback state machine position
func (p Playback) Status() PlaybackStatus {
	switch {
	case p.Item == nil:
		return PlaybackStopped
	case p.IsPlaying:
		return PlaybackPlaying
	default:
		return PlaybackPaused
	}
}

// CurrentProgress returns the progress if known
func (p Playback) CurrentProgress() (domain.AudioDuration, bool) {
	return p.Progress, p.HasProgress
}

// Equal compares two playback states; the item is compared by handle first
func (p Playback) Equal(other Playback) bool {
	return p.IsPlaying == other.IsPlaying &&
		p.HasProgress == other.HasProgress &&
		p.Progress == other.Progress &&
		domain.SameTrack(p.Item, other.Item)
}

// PlaybackCtx is the play queue: the list a track was started from and the
// position of the current track in it.
type PlaybackCtx struct {
	Tracks   seq.Vector[*domain.Track]
	Position int
}

// Current returns the track at Position
func (c PlaybackCtx) Current() (*domain.Track, bool) {
	if c.Position < 0 || c.Position >= c.Tracks.Len() {
		return nil, false
	}
	return c.Tracks.At(c.Position), true
}

// Next returns the queue advanced by one, if there is a following track
func (c PlaybackCtx) Next() (PlaybackCtx, bool) {
	if c.Position+1 >= c.Tracks.Len() {
		return c, false
	}
	c.Position++
	return c, true
}

// Previous returns the queue moved back by one, if possible
func (c PlaybackCtx) Previous() (PlaybackCtx, bool) {
	if c.Position <= 0 || c.Tracks.IsEmpty() {
		return c, false
	}
	c.Position--
	return c, true
}

// Equal compares two queues
func (c PlaybackCtx) Equal(other PlaybackCtx) bool {
	return c.Position == other.Position &&
		c.Tracks.Equal(other.Tracks, domain.SameTrack)
}
