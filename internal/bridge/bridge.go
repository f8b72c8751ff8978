// Package bridge defines the contract between the clip coordinator and the
// native capture backend.
package bridge

import "context"

// CaptureConfig is the configuration shape the capture backend understands.
// It deliberately carries no hotkey or enabled flag.
type CaptureConfig struct {
	FPS                int     `json:"fps"`
	ClipLength         int     `json:"clip_length"`
	AudioVolume        float64 `json:"audio_volume"`
	MicrophoneVolume   float64 `json:"microphone_volume"`
	AudioMode          string  `json:"audio_mode"`
	CaptureMicrophone  bool    `json:"capture_microphone"`
	NoiseSuppression   bool    `json:"noise_suppression"`
	ClipsDirectory     string  `json:"clips_directory"`
	MonitorDeviceID    string  `json:"monitor_device_id"`
	MicrophoneDeviceID string  `json:"microphone_device_id"`
}

// Audio mode names accepted in CaptureConfig.AudioMode.
const (
	AudioModeNone           = "None"
	AudioModeDesktop        = "Desktop"
	AudioModeGame           = "Game"
	AudioModeGameAndDiscord = "GameAndDiscord"
)

// Device is an enumerated capture device.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Bridge is the native desktop capture session.
//
// StartRecording and StopRecording are idempotent. SaveClip blocks until the
// video file is finished and returns its absolute path.
type Bridge interface {
	InitializeCapture(ctx context.Context, cfg CaptureConfig) error
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) error
	IsRecording(ctx context.Context) (bool, error)
	SaveClip(ctx context.Context) (string, error)
}

// DeviceLister enumerates devices for the settings UI.
type DeviceLister interface {
	Microphones() ([]Device, error)
	Monitors() ([]Device, error)
}
