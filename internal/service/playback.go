package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/cadence/internal/domain"
)

// launcher abstracts media player launching (consumer-defined interface)
type launcher interface {
	Launch(path string, startOffset time.Duration) (domain.PlayerProcess, error)
}

type session struct {
	id      uint64
	track   *domain.Track
	offset  time.Duration
	started time.Time
	proc    domain.PlayerProcess
	ended   bool // killed on purpose; guarded by PlaybackService.mu
}

// PlaybackService drives the external player. Pausing stops the player and
// remembers the position; resuming starts it again from there.
type PlaybackService struct {
	launcher launcher
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	nextID  uint64
	current *session // running player
	paused  *session // stopped player waiting for Resume
}

// NewPlaybackService creates a new playback service
func NewPlaybackService(launcher launcher, logger *slog.Logger) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackService{
		launcher: launcher,
		logger:   logger,
		now:      time.Now,
	}
}

// Play starts a track from the beginning, replacing whatever is playing
func (s *PlaybackService) Play(ctx context.Context, track *domain.Track) (domain.PlaybackSession, error) {
	return s.start(ctx, track, 0)
}

// Resume restarts the paused track where it was paused
func (s *PlaybackService) Resume(ctx context.Context) (domain.PlaybackSession, error) {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()

	if paused == nil {
		return domain.PlaybackSession{}, domain.ErrNothingPlaying
	}
	return s.start(ctx, paused.track, paused.offset)
}

// Seek restarts the current track delta away from the current position
func (s *PlaybackService) Seek(ctx context.Context, delta time.Duration) (domain.PlaybackSession, error) {
	s.mu.Lock()
	sess := s.current
	var pos time.Duration
	if sess != nil {
		pos = s.position(sess)
	}
	s.mu.Unlock()

	if sess == nil {
		return domain.PlaybackSession{}, domain.ErrNothingPlaying
	}
	return s.start(ctx, sess.track, max(pos+delta, 0))
}

// Pause stops the player. The returned session is the one that was paused,
// with Offset set to the position it was stopped at and no Done channel.
func (s *PlaybackService) Pause() (domain.PlaybackSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.current
	if sess == nil {
		return domain.PlaybackSession{}, domain.ErrNothingPlaying
	}
	pos := s.position(sess)
	s.kill(sess)
	s.current = nil
	s.paused = &session{id: sess.id, track: sess.track, offset: pos}

	s.logger.Info("paused playback", "trackID", sess.track.ID, "position", pos)
	return domain.PlaybackSession{ID: sess.id, Track: sess.track, Offset: domain.AudioDuration(pos)}, nil
}

// Stop ends playback and forgets any paused track
func (s *PlaybackService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.kill(s.current)
		s.logger.Info("stopped playback", "trackID", s.current.track.ID)
	}
	s.current = nil
	s.paused = nil
}

// Position returns the estimated position of the running or paused track
func (s *PlaybackService) Position() (domain.AudioDuration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.current != nil:
		return domain.AudioDuration(s.position(s.current)), true
	case s.paused != nil:
		return domain.AudioDuration(s.paused.offset), true
	default:
		return 0, false
	}
}

// position must be called with mu held
func (s *PlaybackService) position(sess *session) time.Duration {
	pos := sess.offset + s.now().Sub(sess.started)
	if d := sess.track.Duration.Duration(); d > 0 && pos > d {
		pos = d
	}
	return pos
}

// kill must be called with mu held
func (s *PlaybackService) kill(sess *session) {
	sess.ended = true
	if err := sess.proc.Kill(); err != nil {
		s.logger.Warn("failed to stop player", "error", err, "trackID", sess.track.ID)
	}
}

func (s *PlaybackService) start(ctx context.Context, track *domain.Track, offset time.Duration) (domain.PlaybackSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlaybackSession{}, err
	}
	if track == nil || track.Path == "" {
		return domain.PlaybackSession{}, fmt.Errorf("track has no file to play")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.kill(s.current)
		s.current = nil
	}

	s.logger.Info("launching playback", "title", track.Name, "trackID", track.ID, "offset", offset)
	proc, err := s.launcher.Launch(track.Path, offset)
	if err != nil {
		s.logger.Error("failed to launch player", "error", err, "trackID", track.ID)
		return domain.PlaybackSession{}, err
	}

	s.nextID++
	sess := &session{
		id:      s.nextID,
		track:   track,
		offset:  offset,
		started: s.now(),
		proc:    proc,
	}
	s.current = sess
	s.paused = nil

	done := make(chan error, 1)
	go s.watch(sess, done)

	return domain.PlaybackSession{
		ID:     sess.id,
		Track:  track,
		Offset: domain.AudioDuration(offset),
		Done:   done,
	}, nil
}

// watch reports the player's exit unless it was killed on purpose
func (s *PlaybackService) watch(sess *session, done chan<- error) {
	err := sess.proc.Wait()

	s.mu.Lock()
	intended := sess.ended
	if s.current == sess {
		s.current = nil
	}
	s.mu.Unlock()

	if !intended {
		if err != nil {
			s.logger.Warn("player exited with error", "error", err, "trackID", sess.track.ID)
		}
		done <- err
	}
	close(done)
}
