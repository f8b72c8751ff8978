package app

import (
	"launchpad/internal/manifest"
	"launchpad/internal/playback"
)

// OpenClip loads entry into the player and returns the blob URLs its
// video and audio elements should use.
func (s *Service) OpenClip(entry manifest.Entry) (playback.Sources, error) {
	return s.player.Open(entry)
}

// ClosePlayer releases the open clip's blobs.
func (s *Service) ClosePlayer() {
	s.player.Close()
}

func (s *Service) PlayerPlay() error               { return s.player.Play() }
func (s *Service) PlayerPause() error              { return s.player.Pause() }
func (s *Service) PlayerToggle() error             { return s.player.Toggle() }
func (s *Service) PlayerSeek(t float64) error      { return s.player.Seek(t) }
func (s *Service) PlayerSetVolume(v float64) error { return s.player.SetVolume(v) }
func (s *Service) PlayerSetMuted(m bool) error     { return s.player.SetMuted(m) }

// PlayerVideoEvent forwards the video element's play, pause and ended
// events.
func (s *Service) PlayerVideoEvent(name string) error {
	return s.player.VideoEvent(name)
}

// PlayerReport records what the webview observed on one element.
func (s *Service) PlayerReport(target string, st playback.ElementState) error {
	return s.player.Report(target, st)
}

// PlayerFrame is called from the player's requestAnimationFrame loop.
func (s *Service) PlayerFrame() {
	s.player.Frame()
}
