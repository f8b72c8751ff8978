// Package capture is the native capture backend: an ffmpeg desktop grab
// feeding a video replay buffer, malgo audio feeding per-track buffers, and
// a saver that writes the last clip_length seconds to disk on request.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"launchpad/internal/audio"
	"launchpad/internal/bridge"
	"launchpad/internal/buffer"
)

var (
	ErrNotInitialized = errors.New("capture not initialized")
	ErrNotRecording   = errors.New("not recording")
)

// audioRecorder is the subset of *audio.Recorder the backend uses.
type audioRecorder interface {
	Start(sources []audio.SourceConfig, seconds int) error
	Stop()
	Snapshot(src audio.Source) []byte
	Close()
}

// Backend implements bridge.Bridge and bridge.DeviceLister.
type Backend struct {
	logger   *slog.Logger
	defaults Config
	now      func() time.Time

	mu          sync.Mutex
	cfg         Config
	initialized bool
	recording   bool
	capturer    *Capturer
	video       *buffer.Buffer
	audio       audioRecorder
	encoderOnce sync.Once
	encoder     string

	// save serializes clip writes; the buffers stay live meanwhile
	save sync.Mutex
}

var (
	_ bridge.Bridge       = (*Backend)(nil)
	_ bridge.DeviceLister = (*Backend)(nil)
)

// NewBackend creates a backend that runs ffmpeg from ffmpegPath. Audio is
// optional: without a working audio context clips are video-only.
func NewBackend(ffmpegPath string, logger *slog.Logger) *Backend {
	defaults := DefaultConfig()
	defaults.FFmpegPath = ffmpegPath

	b := &Backend{
		logger:   logger,
		defaults: defaults,
		now:      time.Now,
	}
	rec, err := audio.NewRecorder(logger)
	if err != nil {
		logger.Warn("audio capture unavailable", "error", err)
	} else {
		b.audio = rec
	}
	return b
}

// InitializeCapture stores cfg for the next session. An active session is
// restarted with it.
func (b *Backend) InitializeCapture(ctx context.Context, in bridge.CaptureConfig) error {
	cfg, err := b.defaults.Apply(in)
	if err != nil {
		return fmt.Errorf("invalid capture config: %w", err)
	}
	cfg.Encoder = b.detectEncoder(ctx)

	if cfg.AudioMode == bridge.AudioModeGame || cfg.AudioMode == bridge.AudioModeGameAndDiscord {
		b.logger.Info("per-application audio is not supported, recording all desktop audio", "audio_mode", cfg.AudioMode)
	}

	b.mu.Lock()
	b.cfg = cfg
	b.initialized = true
	wasRecording := b.recording
	b.mu.Unlock()

	b.logger.Info("capture initialized",
		"fps", cfg.FPS,
		"clip_length", cfg.ClipLength,
		"monitor", cfg.MonitorIndex,
		"encoder", cfg.Encoder,
		"audio_mode", cfg.AudioMode,
		"microphone", cfg.CaptureMicrophone,
	)

	if wasRecording {
		if err := b.StopRecording(ctx); err != nil {
			return err
		}
		return b.StartRecording(ctx)
	}
	return nil
}

func (b *Backend) detectEncoder(ctx context.Context) string {
	b.encoderOnce.Do(func() {
		b.encoder = DetectEncoder(ctx, b.defaults.FFmpegPath)
	})
	return b.encoder
}

// StartRecording is a no-op when already recording.
func (b *Backend) StartRecording(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return ErrNotInitialized
	}
	if b.recording && b.capturer != nil && b.capturer.IsRunning() {
		return nil
	}

	cfg := b.cfg
	capturer, err := NewCapturer(cfg, b.logger)
	if err != nil {
		return err
	}
	video := buffer.New(CalculateBufferSize(cfg.Bitrate, cfg.ClipLength))
	capturer.OnData = func(data []byte) { video.Write(data) }
	if err := capturer.Start(); err != nil {
		return err
	}

	b.capturer = capturer
	b.video = video
	b.recording = true

	if b.audio != nil {
		if sources := audioSources(cfg); len(sources) > 0 {
			if err := b.audio.Start(sources, cfg.ClipLength); err != nil {
				b.logger.Error("audio capture failed, recording video only", "error", err)
			}
		}
	}

	b.logger.Info("recording started", "buffer_bytes", video.Size())
	return nil
}

func audioSources(cfg Config) []audio.SourceConfig {
	var sources []audio.SourceConfig
	if cfg.DesktopAudio() {
		sources = append(sources, audio.SourceConfig{
			Source: audio.SourceDesktop,
			Gain:   float32(cfg.DesktopVolume),
		})
	}
	if cfg.CaptureMicrophone {
		sources = append(sources, audio.SourceConfig{
			Source:    audio.SourceMic,
			DeviceID:  cfg.MicrophoneDeviceID,
			Gain:      float32(cfg.MicrophoneVolume),
			NoiseGate: cfg.NoiseSuppression,
		})
	}
	return sources
}

// StopRecording is a no-op when idle.
func (b *Backend) StopRecording(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.recording {
		return nil
	}
	b.recording = false

	if b.audio != nil {
		b.audio.Stop()
	}
	if b.capturer != nil {
		if err := b.capturer.Stop(); err != nil {
			return err
		}
	}
	b.logger.Info("recording stopped")
	return nil
}

// IsRecording reports whether the ffmpeg grab is alive.
func (b *Backend) IsRecording(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording && b.capturer != nil && b.capturer.IsRunning(), nil
}

// SaveClip writes the replay window to <clips_directory>/clip_<ts>.mp4 and
// returns the absolute path.
func (b *Backend) SaveClip(ctx context.Context) (string, error) {
	b.mu.Lock()
	if !b.recording {
		b.mu.Unlock()
		return "", ErrNotRecording
	}
	cfg := b.cfg
	req := SaveRequest{
		Name:        ClipName(b.now()),
		Video:       b.video.Snapshot(),
		DurationSec: cfg.ClipLength,
	}
	if b.audio != nil {
		req.Desktop = b.audio.Snapshot(audio.SourceDesktop)
		req.Mic = b.audio.Snapshot(audio.SourceMic)
	}
	b.mu.Unlock()

	b.save.Lock()
	defer b.save.Unlock()
	return NewSaver(cfg.FFmpegPath, cfg.OutputDir, b.logger).Save(ctx, req)
}

func (b *Backend) Microphones() ([]bridge.Device, error) {
	return audio.Microphones()
}

func (b *Backend) Monitors() ([]bridge.Device, error) {
	devices := []bridge.Device{}
	for _, m := range DetectMonitors(context.Background(), b.defaults.FFmpegPath) {
		devices = append(devices, m.Device())
	}
	return devices, nil
}

// Close stops recording and releases the audio context.
func (b *Backend) Close() {
	_ = b.StopRecording(context.Background())
	if b.audio != nil {
		b.audio.Close()
	}
}
