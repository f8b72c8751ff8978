// Package settings owns the application settings document: typed defaults,
// schema-driven merging of the file on disk, debounced persistence and
// change broadcasting.
package settings

import (
	"path/filepath"

	"launchpad/internal/utils"
)

// AudioMode selects which desktop audio the capture backend records.
type AudioMode int

const (
	AudioNone AudioMode = iota
	AudioDesktop
	AudioGame
	AudioGameAndDiscord
)

var audioModeNames = [...]string{"None", "Desktop", "Game", "GameAndDiscord"}

// String returns the named form the capture backend expects.
func (m AudioMode) String() string {
	if m < 0 || int(m) >= len(audioModeNames) {
		return audioModeNames[AudioNone]
	}
	return audioModeNames[m]
}

// Settings is the whole settings document.
type Settings struct {
	DiscordRPC     bool          `json:"discord_rpc"`
	AutoLaunch     bool          `json:"auto_launch"`
	AutoUpdate     bool          `json:"auto_update"`
	Hour24Clock    bool          `json:"hour24_clock"`
	MinimizeToTray bool          `json:"minimize_to_tray"`
	DefaultSort    string        `json:"defaultSort"`
	Notifications  Notifications `json:"notifications"`
	Crosshair      Crosshair     `json:"crosshair"`
	Overlay        Overlay       `json:"overlay"`
	Audio          Audio         `json:"audio"`
	Clips          Clips         `json:"clips"`
}

type Notifications struct {
	FriendRequest bool `json:"friend_request"`
	FriendAccept  bool `json:"friend_accept"`
	FriendOnline  bool `json:"friend_online"`
	Message       bool `json:"message"`
}

type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Crosshair struct {
	Enabled      bool     `json:"enabled"`
	Selected     string   `json:"selected"`
	Color        string   `json:"color"`
	Size         int      `json:"size"`
	Offset       Offset   `json:"offset"`
	IgnoredGames []string `json:"ignoredGames"`
}

type Overlay struct {
	Enabled bool   `json:"enabled"`
	Display string `json:"display"`
}

type Audio struct {
	Notification bool    `json:"notification"`
	OutputDevice *string `json:"outputDevice"`
	Volume       int     `json:"volume"`
}

// Clips is the clip recording configuration. Consumers receive it by value.
type Clips struct {
	Enabled            bool      `json:"enabled"`
	Hotkey             string    `json:"hotkey"`
	FPS                int       `json:"fps"`
	ClipLength         int       `json:"clip_length"`
	AudioVolume        float64   `json:"audio_volume"`
	MicrophoneVolume   float64   `json:"microphone_volume"`
	AudioMode          AudioMode `json:"audio_mode"`
	CaptureMicrophone  bool      `json:"capture_microphone"`
	NoiseSuppression   bool      `json:"noise_suppression"`
	ClipsDirectory     string    `json:"clips_directory"`
	MonitorDeviceID    string    `json:"monitor_device_id"`
	MicrophoneDeviceID string    `json:"microphone_device_id"`
}

// Defaults returns the settings used for any key missing on disk.
func Defaults() Settings {
	return Settings{
		DiscordRPC:  true,
		AutoLaunch:  false,
		AutoUpdate:  true,
		Hour24Clock: false,
		DefaultSort: "last-played",
		Notifications: Notifications{
			FriendRequest: true,
			FriendAccept:  true,
			FriendOnline:  false,
			Message:       true,
		},
		Crosshair: Crosshair{
			Selected:     "svg1",
			Color:        "#000000",
			Size:         20,
			Offset:       Offset{X: 0, Y: 48},
			IgnoredGames: []string{},
		},
		Overlay: Overlay{Enabled: true},
		Audio:   Audio{Notification: true, Volume: 100},
		Clips: Clips{
			Enabled:          false,
			Hotkey:           "F12",
			FPS:              60,
			ClipLength:       30,
			AudioVolume:      1,
			MicrophoneVolume: 1,
			AudioMode:        AudioDesktop,
			ClipsDirectory:   defaultClipsDir(),
			MonitorDeviceID:  "default",
		},
	}
}

func defaultClipsDir() string {
	appData, err := utils.GetAppDataDir()
	if err != nil {
		return "clips"
	}
	return filepath.Join(appData, "clips")
}

// Normalize clamps values the capture backend cannot use back into range.
func (c Clips) Normalize() Clips {
	def := Defaults().Clips
	if c.FPS <= 0 || c.FPS > 240 {
		c.FPS = def.FPS
	}
	if c.ClipLength <= 0 {
		c.ClipLength = def.ClipLength
	}
	c.AudioVolume = clampUnit(c.AudioVolume)
	c.MicrophoneVolume = clampUnit(c.MicrophoneVolume)
	if c.AudioMode < AudioNone || c.AudioMode > AudioGameAndDiscord {
		c.AudioMode = AudioNone
	}
	if c.ClipsDirectory == "" {
		c.ClipsDirectory = def.ClipsDirectory
	}
	if c.Hotkey == "" {
		c.Hotkey = def.Hotkey
	}
	return c
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
