package playback

import (
	"log/slog"
	"math"
	"sync"
)

// DriftThreshold is how far, in seconds, a playing audio track may wander
// from the video before it is snapped back. Smaller corrections stutter.
const DriftThreshold = 0.05

// Synchronizer keeps sidecar audio aligned with a video element.
//
// Play and Pause drive the video only. Audio mirrors the video through
// HandleVideoEvent, and a per-frame loop corrects drift until Close.
type Synchronizer struct {
	logger *slog.Logger
	frames FrameScheduler
	video  Element

	mu          sync.Mutex
	audio       [numTracks]Element
	volume      float64
	muted       bool
	closed      bool
	cancelFrame func()
}

// NewSynchronizer silences the video's own audio and starts the drift loop.
func NewSynchronizer(video Element, frames FrameScheduler, logger *slog.Logger) *Synchronizer {
	s := &Synchronizer{
		logger: logger,
		frames: frames,
		video:  video,
		volume: 1,
	}
	video.SetVolume(0)
	s.schedule()
	return s
}

func (s *Synchronizer) Play() error { return s.video.Play() }

func (s *Synchronizer) Pause() { s.video.Pause() }

// Toggle plays a paused video and pauses a playing one.
func (s *Synchronizer) Toggle() error {
	if s.video.Paused() {
		return s.video.Play()
	}
	s.video.Pause()
	return nil
}

// HandleVideoEvent mirrors the video's play state onto the audio tracks.
func (s *Synchronizer) HandleVideoEvent(ev VideoEvent) {
	for track, a := range s.tracks() {
		if a == nil {
			continue
		}
		switch ev {
		case EventPlay:
			if err := a.Play(); err != nil {
				s.logger.Warn("audio track failed to play", "track", Track(track), "error", err)
			}
		case EventPause, EventEnded:
			a.Pause()
		}
	}
}

// Seek moves video and every audio track to t in one step. t is clamped to
// the video's duration when it is known.
func (s *Synchronizer) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	if d := s.video.Duration(); d > 0 && t > d {
		t = d
	}

	s.video.SetCurrentTime(t)
	for _, a := range s.tracks() {
		if a != nil {
			a.SetCurrentTime(t)
		}
	}
}

// SetVolume sets the level of both audio tracks. The video stays silent.
func (s *Synchronizer) SetVolume(v float64) {
	s.mu.Lock()
	s.volume = math.Max(0, math.Min(1, v))
	s.mu.Unlock()
	s.applyVolume()
}

func (s *Synchronizer) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
	s.applyVolume()
}

// AttachAudio adds a track once its media has loaded. If the video is
// already playing the track joins at the video's position.
func (s *Synchronizer) AttachAudio(track Track, el Element) {
	if track < 0 || track >= numTracks {
		return
	}

	s.mu.Lock()
	s.audio[track] = el
	vol := s.effectiveVolume()
	s.mu.Unlock()

	if el == nil {
		return
	}
	el.SetVolume(vol)
	el.SetCurrentTime(s.video.CurrentTime())
	if !s.video.Paused() {
		if err := el.Play(); err != nil {
			s.logger.Warn("late audio track failed to play", "track", track, "error", err)
		}
	}
}

// Close stops the drift loop. Elements are left as they are.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.closed = true
	cancel := s.cancelFrame
	s.cancelFrame = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Synchronizer) tracks() [numTracks]Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio
}

func (s *Synchronizer) effectiveVolume() float64 {
	if s.muted {
		return 0
	}
	return s.volume
}

func (s *Synchronizer) applyVolume() {
	s.mu.Lock()
	vol := s.effectiveVolume()
	audio := s.audio
	s.mu.Unlock()

	for _, a := range audio {
		if a != nil {
			a.SetVolume(vol)
		}
	}
}

func (s *Synchronizer) schedule() {
	cancel := s.frames.RequestFrame(s.tick)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		cancel()
		return
	}
	s.cancelFrame = cancel
}

func (s *Synchronizer) tick() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	audio := s.audio
	s.mu.Unlock()

	s.correct(audio)
	s.schedule()
}

// correct snaps playing audio tracks that drifted past DriftThreshold.
// Paused tracks are left alone.
func (s *Synchronizer) correct(audio [numTracks]Element) {
	vt := s.video.CurrentTime()
	for _, a := range audio {
		if a == nil || a.Paused() {
			continue
		}
		if math.Abs(a.CurrentTime()-vt) > DriftThreshold {
			a.SetCurrentTime(vt)
		}
	}
}
