package capture

import (
	"fmt"
	"strconv"

	"launchpad/internal/bridge"
)

// Config is the resolved capture configuration of one session.
type Config struct {
	MonitorIndex int
	Encoder      string

	FPS        int
	Bitrate    string
	ClipLength int
	OutputDir  string
	FFmpegPath string
	DrawMouse  bool

	AudioMode          string
	DesktopVolume      float64
	CaptureMicrophone  bool
	MicrophoneVolume   float64
	MicrophoneDeviceID string
	NoiseSuppression   bool
}

func DefaultConfig() Config {
	return Config{
		FPS:        60,
		Bitrate:    "15M",
		ClipLength: 30,
		FFmpegPath: "ffmpeg",
		DrawMouse:  true,
		AudioMode:  bridge.AudioModeDesktop,
	}
}

// Apply overlays a bridge configuration on c.
func (c Config) Apply(in bridge.CaptureConfig) (Config, error) {
	idx, err := parseMonitorID(in.MonitorDeviceID)
	if err != nil {
		return c, err
	}

	c.MonitorIndex = idx
	c.FPS = in.FPS
	c.ClipLength = in.ClipLength
	c.OutputDir = in.ClipsDirectory
	c.AudioMode = in.AudioMode
	c.DesktopVolume = in.AudioVolume
	c.CaptureMicrophone = in.CaptureMicrophone
	c.MicrophoneVolume = in.MicrophoneVolume
	c.MicrophoneDeviceID = in.MicrophoneDeviceID
	c.NoiseSuppression = in.NoiseSuppression
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("FPS must be between 1 and 240")
	}
	if c.ClipLength <= 0 {
		return fmt.Errorf("clip length must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("clips directory is required")
	}
	switch c.AudioMode {
	case bridge.AudioModeNone, bridge.AudioModeDesktop, bridge.AudioModeGame, bridge.AudioModeGameAndDiscord:
	default:
		return fmt.Errorf("unknown audio mode %q", c.AudioMode)
	}
	return nil
}

// DesktopAudio reports whether a desktop track is recorded. Game and
// GameAndDiscord have no per-process capture and record all desktop audio.
func (c Config) DesktopAudio() bool {
	return c.AudioMode != bridge.AudioModeNone
}

// parseMonitorID maps a monitor device id onto a ddagrab output index.
func parseMonitorID(id string) (int, error) {
	if id == "" || id == "default" {
		return 0, nil
	}
	idx, err := strconv.Atoi(id)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("unknown monitor %q", id)
	}
	return idx, nil
}
