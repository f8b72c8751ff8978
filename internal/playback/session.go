package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"launchpad/internal/manifest"
)

// element targets used in commands and reports
const (
	TargetVideo   = "video"
	TargetDesktop = "desktop"
	TargetMic     = "mic"
)

var ErrNoClipOpen = errors.New("no clip is open")

// Session is the player window's backend: the loaded clip's blobs, the
// remote elements that mirror the webview and the Synchronizer between
// them. One clip is open at a time.
type Session struct {
	player *Player
	emit   Emitter
	logger *slog.Logger

	mu       sync.Mutex
	relay    *FrameRelay
	syncer   *Synchronizer
	elements map[string]*RemoteElement
	attached map[string]bool
}

func NewSession(registry *Registry, emit Emitter, logger *slog.Logger) *Session {
	return &Session{
		player: NewPlayer(registry, logger),
		emit:   emit,
		logger: logger,
	}
}

// Open replaces the current clip with entry. Audio tracks join the
// Synchronizer when the webview first reports them.
func (s *Session) Open(entry manifest.Entry) (Sources, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()

	src, err := s.player.Load(entry)
	if err != nil {
		return Sources{}, err
	}

	s.relay = NewFrameRelay()
	video := NewRemoteElement(TargetVideo, s.emit)
	s.elements = map[string]*RemoteElement{TargetVideo: video}
	s.attached = make(map[string]bool)
	if src.Desktop != nil {
		s.elements[TargetDesktop] = NewRemoteElement(TargetDesktop, s.emit)
	}
	if src.Mic != nil {
		s.elements[TargetMic] = NewRemoteElement(TargetMic, s.emit)
	}
	s.syncer = NewSynchronizer(video, s.relay, s.logger)

	s.logger.Info("clip opened", "name", entry.Name, "tracks", len(s.elements)-1)
	return src, nil
}

// Close stops synchronization and revokes the clip's blobs.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.syncer != nil {
		s.syncer.Close()
	}
	s.player.Close()
	s.syncer = nil
	s.relay = nil
	s.elements = nil
	s.attached = nil
}

func (s *Session) synchronizer() (*Synchronizer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncer == nil {
		return nil, ErrNoClipOpen
	}
	return s.syncer, nil
}

func (s *Session) Play() error {
	sy, err := s.synchronizer()
	if err != nil {
		return err
	}
	return sy.Play()
}

func (s *Session) Pause() error {
	sy, err := s.synchronizer()
	if err != nil {
		return err
	}
	sy.Pause()
	return nil
}

func (s *Session) Toggle() error {
	sy, err := s.synchronizer()
	if err != nil {
		return err
	}
	return sy.Toggle()
}

func (s *Session) Seek(t float64) error {
	sy, err := s.synchronizer()
	if err != nil {
		return err
	}
	sy.Seek(t)
	return nil
}

func (s *Session) SetVolume(v float64) error {
	sy, err := s.synchronizer()
	if err != nil {
		return err
	}
	sy.SetVolume(v)
	return nil
}

func (s *Session) SetMuted(muted bool) error {
	sy, err := s.synchronizer()
	if err != nil {
		return err
	}
	sy.SetMuted(muted)
	return nil
}

// VideoEvent forwards a DOM media event fired by the video element.
func (s *Session) VideoEvent(name string) error {
	ev, err := ParseVideoEvent(name)
	if err != nil {
		return err
	}
	sy, err := s.synchronizer()
	if err != nil {
		return err
	}
	sy.HandleVideoEvent(ev)
	return nil
}

// Report records an element's observed state. The first report from an
// audio element means its media has loaded and attaches it.
func (s *Session) Report(target string, st ElementState) error {
	s.mu.Lock()
	if s.syncer == nil {
		s.mu.Unlock()
		return ErrNoClipOpen
	}
	el, ok := s.elements[target]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown element %q", target)
	}
	el.Report(st)

	attach := target != TargetVideo && !s.attached[target]
	if attach {
		s.attached[target] = true
	}
	sy := s.syncer
	s.mu.Unlock()

	if attach {
		track := TrackDesktop
		if target == TargetMic {
			track = TrackMic
		}
		sy.AttachAudio(track, el)
	}
	return nil
}

// Frame is called once per webview animation frame.
func (s *Session) Frame() {
	s.mu.Lock()
	relay := s.relay
	s.mu.Unlock()
	if relay != nil {
		relay.Pump()
	}
}
