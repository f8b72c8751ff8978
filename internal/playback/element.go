// Package playback presents a saved clip, one video and up to two sidecar
// audio tracks, as a single seekable unit.
//
// The video clock is authoritative. Audio elements follow the video's
// play/pause events and are pulled back onto its position once per frame.
package playback

import "fmt"

// Element is one media element with its own clock.
type Element interface {
	CurrentTime() float64
	SetCurrentTime(t float64)
	Paused() bool
	Play() error
	Pause()
	SetVolume(v float64)
	Duration() float64
}

// FrameScheduler runs fn once on the next display refresh. The returned
// func cancels the request. fn must not be run synchronously.
type FrameScheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// Track identifies a sidecar audio track.
type Track int

const (
	TrackDesktop Track = iota
	TrackMic
	numTracks
)

func (t Track) String() string {
	switch t {
	case TrackDesktop:
		return "desktop"
	case TrackMic:
		return "mic"
	default:
		return fmt.Sprintf("track(%d)", int(t))
	}
}

// VideoEvent is a state change fired by the video element.
type VideoEvent int

const (
	EventPlay VideoEvent = iota
	EventPause
	EventEnded
)

// ParseVideoEvent maps DOM media event names onto VideoEvent.
func ParseVideoEvent(name string) (VideoEvent, error) {
	switch name {
	case "play", "playing":
		return EventPlay, nil
	case "pause":
		return EventPause, nil
	case "ended":
		return EventEnded, nil
	}
	return 0, fmt.Errorf("unknown video event %q", name)
}
