// Package coordinator ties game activity, the clip hotkey and the capture
// session together, and turns finished saves into manifest entries.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"launchpad/internal/bridge"
	"launchpad/internal/input"
	"launchpad/internal/manifest"
	"launchpad/internal/settings"
	"launchpad/internal/utils"
)

// State is the coordinator's belief about the capture session. It is
// re-checked against the bridge before anything is acted on.
type State int

const (
	Disabled State = iota
	Armed
	Recording
)

func (s State) String() string {
	switch s {
	case Armed:
		return "Armed"
	case Recording:
		return "Recording"
	default:
		return "Disabled"
	}
}

// Hotkeys registers the global clip accelerator.
type Hotkeys interface {
	Register(accel string, fn func(input.KeyState)) error
	Unregister(accel string) error
}

// Notifier surfaces save outcomes to the user.
type Notifier interface {
	ClipSaved(entry manifest.Entry)
	ClipFailed(err error)
}

type Config struct {
	Bridge   bridge.Bridge
	Hotkeys  Hotkeys
	Notifier Notifier
	Logger   *slog.Logger
	// Now stamps created_at. Defaults to time.Now.
	Now func() time.Time
}

var ErrNoClipsDirectory = errors.New("clips directory is not configured")

type Coordinator struct {
	bridge   bridge.Bridge
	hotkeys  Hotkeys
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	// serializes arming so unregister/register pairs never interleave
	armMu sync.Mutex

	mu         sync.Mutex
	state      State
	cfg        settings.Clips
	armed      bool // last arming succeeded with clips enabled
	registered string
	baseCtx    context.Context

	storesMu sync.Mutex
	stores   map[string]*manifest.Store
}

func New(cfg Config) *Coordinator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	return &Coordinator{
		bridge:   cfg.Bridge,
		hotkeys:  cfg.Hotkeys,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		now:      cfg.Now,
		baseCtx:  context.Background(),
		stores:   make(map[string]*manifest.Store),
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// active returns the configuration and whether capture actions are allowed.
// A failed arming leaves the coordinator inactive even if clips are enabled.
func (c *Coordinator) active() (settings.Clips, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg, c.armed && c.cfg.Enabled
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()
	if prev != s {
		c.logger.Debug("clip state changed", "from", prev, "to", s)
	}
}

// Start arms the coordinator at application startup. ctx also backs the
// hotkey callbacks, so it should live as long as the application.
func (c *Coordinator) Start(ctx context.Context, cfg settings.Clips) error {
	c.mu.Lock()
	c.baseCtx = ctx
	c.mu.Unlock()
	return c.arm(ctx, cfg)
}

// UpdateConfig re-arms from scratch with the new configuration. The old
// hotkey is always unregistered first, even when unchanged.
func (c *Coordinator) UpdateConfig(ctx context.Context, cfg settings.Clips) error {
	return c.arm(ctx, cfg)
}

// Shutdown releases the hotkey. The capture process cleans up on exit.
func (c *Coordinator) Shutdown() {
	c.armMu.Lock()
	defer c.armMu.Unlock()
	c.unregister()
	c.mu.Lock()
	c.armed = false
	c.mu.Unlock()
	c.setState(Disabled)
}

func (c *Coordinator) arm(ctx context.Context, cfg settings.Clips) error {
	c.armMu.Lock()
	defer c.armMu.Unlock()

	c.unregister()

	c.mu.Lock()
	c.cfg = cfg
	c.armed = false
	c.mu.Unlock()

	if !cfg.Enabled {
		c.setState(Disabled)
		c.logger.Info("clips disabled")
		return nil
	}

	if err := c.armEnabled(ctx, cfg); err != nil {
		c.setState(Disabled)
		c.logger.Error("failed to arm clip recording", "error", err)
		return err
	}
	return nil
}

func (c *Coordinator) armEnabled(ctx context.Context, cfg settings.Clips) error {
	store, err := c.storeFor(cfg.ClipsDirectory)
	if err != nil {
		return err
	}
	if err := store.EnsureLayout(); err != nil {
		return fmt.Errorf("failed to prepare clips directory: %w", err)
	}

	if err := c.bridge.InitializeCapture(ctx, captureConfigFrom(cfg, store.MediaDir())); err != nil {
		return fmt.Errorf("failed to initialize capture: %w", err)
	}

	if err := c.hotkeys.Register(cfg.Hotkey, c.onHotkey); err != nil {
		return fmt.Errorf("failed to register hotkey %q: %w", cfg.Hotkey, err)
	}
	c.mu.Lock()
	c.registered = cfg.Hotkey
	c.armed = true
	c.mu.Unlock()

	next := Armed
	if recording, err := c.bridge.IsRecording(ctx); err != nil {
		c.logger.Warn("failed to query recording state", "error", err)
	} else if recording {
		next = Recording
	}
	c.setState(next)

	c.logger.Info("clips armed",
		"hotkey", cfg.Hotkey,
		"directory", store.Dir(),
		"audio_mode", cfg.AudioMode.String(),
	)
	return nil
}

// unregister must be called with armMu held.
func (c *Coordinator) unregister() {
	c.mu.Lock()
	accel := c.registered
	c.registered = ""
	c.mu.Unlock()

	if accel == "" {
		return
	}
	if err := c.hotkeys.Unregister(accel); err != nil {
		c.logger.Warn("failed to unregister hotkey", "hotkey", accel, "error", err)
	}
}

// HandleGameStart begins recording when clips are enabled. A session that
// is already recording is left alone.
func (c *Coordinator) HandleGameStart(ctx context.Context) {
	if _, ok := c.active(); !ok {
		return
	}

	recording, err := c.bridge.IsRecording(ctx)
	if err != nil {
		c.logger.Error("failed to query recording state", "error", err)
		return
	}
	if !recording {
		if err := c.bridge.StartRecording(ctx); err != nil {
			c.logger.Error("failed to start recording", "error", err)
			return
		}
		c.logger.Info("recording started")
	}
	c.setState(Recording)
}

// HandleGameStop stops recording. Stopping an idle session is harmless.
func (c *Coordinator) HandleGameStop(ctx context.Context) {
	if err := c.bridge.StopRecording(ctx); err != nil {
		c.logger.Error("failed to stop recording", "error", err)
		return
	}

	if _, ok := c.active(); ok {
		c.setState(Armed)
	} else {
		c.setState(Disabled)
	}
	c.logger.Info("recording stopped")
}

func (c *Coordinator) onHotkey(state input.KeyState) {
	c.mu.Lock()
	ctx := c.baseCtx
	c.mu.Unlock()
	c.HandleHotkey(ctx, state)
}

// HandleHotkey saves a clip on the pressed edge. Nothing is returned: a
// failed save is logged and sent to the Notifier.
func (c *Coordinator) HandleHotkey(ctx context.Context, state input.KeyState) {
	if state != input.Pressed {
		return
	}
	if _, ok := c.active(); !ok {
		return
	}

	recording, err := c.bridge.IsRecording(ctx)
	if err != nil {
		c.logger.Error("failed to query recording state", "error", err)
		return
	}
	if !recording {
		c.logger.Debug("clip hotkey ignored, not recording")
		return
	}

	if _, err := c.SaveClip(ctx); err != nil {
		c.logger.Error("failed to save clip", "error", err)
		c.notifier.ClipFailed(err)
	}
}

func (c *Coordinator) storeFor(dir string) (*manifest.Store, error) {
	if dir == "" {
		return nil, ErrNoClipsDirectory
	}
	key, err := utils.ResolveAbsPath(filepath.Clean(dir), "")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve clips directory: %w", err)
	}

	c.storesMu.Lock()
	defer c.storesMu.Unlock()
	if s, ok := c.stores[key]; ok {
		return s, nil
	}
	s := manifest.NewStore(key)
	c.stores[key] = s
	return s, nil
}

// Clips lists the manifest in dir through the same store used for saving,
// newest first. A directory without a manifest has no clips.
func (c *Coordinator) Clips(dir string) ([]manifest.Entry, error) {
	store, err := c.storeFor(dir)
	if err != nil {
		return nil, err
	}
	entries, err := store.List()
	if errors.Is(err, fs.ErrNotExist) {
		return []manifest.Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	manifest.SortNewestFirst(entries)
	return entries, nil
}

// captureConfigFrom drops hotkey and enabled, names the audio mode and
// points the backend at the media directory.
func captureConfigFrom(cfg settings.Clips, mediaDir string) bridge.CaptureConfig {
	return bridge.CaptureConfig{
		FPS:                cfg.FPS,
		ClipLength:         cfg.ClipLength,
		AudioVolume:        cfg.AudioVolume,
		MicrophoneVolume:   cfg.MicrophoneVolume,
		AudioMode:          cfg.AudioMode.String(),
		CaptureMicrophone:  cfg.CaptureMicrophone,
		NoiseSuppression:   cfg.NoiseSuppression,
		ClipsDirectory:     mediaDir,
		MonitorDeviceID:    cfg.MonitorDeviceID,
		MicrophoneDeviceID: cfg.MicrophoneDeviceID,
	}
}

type nopNotifier struct{}

func (nopNotifier) ClipSaved(manifest.Entry) {}
func (nopNotifier) ClipFailed(error)         {}
