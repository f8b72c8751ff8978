// Package app is the launcher's wails service. It wires settings, hotkeys,
// the game watcher, the capture backend and the clip coordinator together
// and exposes the methods the frontend binds to.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"launchpad/internal/bridge"
	"launchpad/internal/capture"
	"launchpad/internal/coordinator"
	"launchpad/internal/games"
	"launchpad/internal/input"
	"launchpad/internal/logging"
	"launchpad/internal/manifest"
	"launchpad/internal/playback"
	"launchpad/internal/settings"

	"github.com/wailsapp/wails/v3/pkg/application"
)

// Events emitted to the frontend.
const (
	EventClipCreated     = "clip:created"
	EventClipFailed      = "clip:failed"
	EventSettingsUpdated = "settings-updated"
	EventGameStart       = "game:start"
	EventGameStop        = "game:stop"
	EventPlayerCommand   = "player:command"
)

// Backend is a capture session that can also list devices.
type Backend interface {
	bridge.Bridge
	bridge.DeviceLister
}

// Hotkeys is the global hotkey hook.
type Hotkeys interface {
	coordinator.Hotkeys
	Start()
	Stop()
}

// EmitFunc sends an event to the frontend.
type EmitFunc func(name string, data ...any)

type Options struct {
	SettingsPath string
	FFmpegPath   string
	Logger       *slog.Logger

	// Backend and Hotkeys default to the native implementations.
	Backend Backend
	Hotkeys Hotkeys
}

// Service is bound to the frontend.
type Service struct {
	logger   *slog.Logger
	settings *settings.Store
	backend  Backend
	hotkeys  Hotkeys
	games    *games.Watcher
	registry *playback.Registry
	player   *playback.Session
	coord    *coordinator.Coordinator

	mu     sync.RWMutex
	app    *application.App
	emit   EmitFunc
	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()
	wg     sync.WaitGroup
}

func New(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SettingsPath == "" {
		opts.SettingsPath = DefaultSettingsPath()
	}
	if opts.Backend == nil {
		opts.Backend = capture.NewBackend(opts.FFmpegPath, logging.WithComponent(opts.Logger, "capture"))
	}
	if opts.Hotkeys == nil {
		opts.Hotkeys = input.NewManager(logging.WithComponent(opts.Logger, "hotkeys"))
	}

	s := &Service{
		logger:   opts.Logger,
		settings: settings.NewStore(opts.SettingsPath, logging.WithComponent(opts.Logger, "settings"), settings.DefaultWriteDelay),
		backend:  opts.Backend,
		hotkeys:  opts.Hotkeys,
		games:    games.NewWatcher(logging.WithComponent(opts.Logger, "games")),
		registry: playback.NewRegistry(),
		ctx:      context.Background(),
	}
	s.player = playback.NewSession(s.registry, func(cmd playback.Command) {
		s.emitEvent(EventPlayerCommand, cmd)
	}, logging.WithComponent(opts.Logger, "player"))
	s.coord = coordinator.New(coordinator.Config{
		Bridge:   opts.Backend,
		Hotkeys:  opts.Hotkeys,
		Notifier: eventNotifier{s},
		Logger:   logging.WithComponent(opts.Logger, "clips"),
	})
	return s
}

// SetApp stores the wails application for events and dialogs.
func (s *Service) SetApp(app *application.App) {
	s.mu.Lock()
	s.app = app
	s.emit = func(name string, data ...any) { app.Event.Emit(name, data...) }
	s.mu.Unlock()
}

// SetEmitter replaces the event sink.
func (s *Service) SetEmitter(emit EmitFunc) {
	s.mu.Lock()
	s.emit = emit
	s.mu.Unlock()
}

func (s *Service) emitEvent(name string, data ...any) {
	s.mu.RLock()
	emit := s.emit
	s.mu.RUnlock()
	if emit != nil {
		emit(name, data...)
	}
}

func (s *Service) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Registry serves the player's blobs; main mounts it in the asset handler.
func (s *Service) Registry() *playback.Registry {
	return s.registry
}

// ServiceStartup is called when the wails app starts.
func (s *Service) ServiceStartup(ctx context.Context, options application.ServiceOptions) error {
	s.logger.Info("launchpad service starting up")

	if err := s.settings.Load(); err != nil {
		s.logger.Warn("failed to load settings, using defaults", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.ctx = ctx
	s.cancel = cancel
	s.mu.Unlock()

	s.hotkeys.Start()

	s.games.OnStart = func(g games.Game) {
		s.emitEvent(EventGameStart, g)
		s.coord.HandleGameStart(ctx)
	}
	s.games.OnStop = func() {
		s.emitEvent(EventGameStop)
		s.coord.HandleGameStop(ctx)
	}

	// every broadcast re-arms, even when the clip section is unchanged
	s.unsub = s.settings.Subscribe(func(next settings.Settings) {
		s.emitEvent(EventSettingsUpdated, next)
		if err := s.coord.UpdateConfig(ctx, next.Clips); err != nil {
			s.logger.Error("failed to apply clip settings", "error", err)
		}
	})

	if err := s.coord.Start(ctx, s.settings.Get().Clips.Normalize()); err != nil {
		s.logger.Error("clip recording unavailable", "error", err)
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.games.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		if err := s.settings.Watch(ctx); err != nil {
			s.logger.Warn("settings watcher stopped", "error", err)
		}
	}()

	s.logger.Info("launchpad service started", "clips", s.coord.State())
	return nil
}

// ServiceShutdown is called when the wails app is closing.
func (s *Service) ServiceShutdown() error {
	s.logger.Info("launchpad service shutting down")

	s.mu.Lock()
	cancel := s.cancel
	unsub := s.unsub
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.coord.Shutdown()
	s.hotkeys.Stop()

	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := s.backend.StopRecording(ctx); err != nil {
		s.logger.Warn("failed to stop recording", "error", err)
	}
	if c, ok := s.backend.(interface{ Close() }); ok {
		c.Close()
	}

	s.player.Close()
	s.settings.Flush()
	return nil
}

func (s *Service) GetSettings() settings.Settings {
	return s.settings.Get()
}

// UpdateSettings applies next right away; the file is written shortly after.
func (s *Service) UpdateSettings(next settings.Settings) {
	s.settings.Update(next)
}

// ClipState reports Disabled, Armed or Recording.
func (s *Service) ClipState() string {
	return s.coord.State().String()
}

// GetClips returns the clips of the configured directory, newest first.
func (s *Service) GetClips() ([]manifest.Entry, error) {
	return s.coord.Clips(s.settings.Get().Clips.ClipsDirectory)
}

// SaveClip saves a clip now, as the hotkey would. A nil entry means
// recording is not active.
func (s *Service) SaveClip() (*manifest.Entry, error) {
	return s.coord.SaveClip(s.context())
}

func (s *Service) GetMicrophones() ([]bridge.Device, error) {
	return s.backend.Microphones()
}

func (s *Service) GetMonitors() ([]bridge.Device, error) {
	return s.backend.Monitors()
}

// AddGame tracks a game launched from the library.
func (s *Service) AddGame(g games.Game) bool {
	return s.games.Add(g)
}

func (s *Service) GetGames() []games.Game {
	return s.games.Running()
}

// SelectDirectory asks the user for a clips directory.
func (s *Service) SelectDirectory() (string, error) {
	s.mu.RLock()
	app := s.app
	s.mu.RUnlock()
	if app == nil {
		return "", fmt.Errorf("application not initialized")
	}

	return app.Dialog.OpenFile().
		SetTitle("Select Clips Directory").
		SetDirectory(s.settings.Get().Clips.ClipsDirectory).
		CanChooseDirectories(true).
		CanChooseFiles(false).
		PromptForSingleSelection()
}

// eventNotifier reports save outcomes to the frontend.
type eventNotifier struct {
	s *Service
}

func (n eventNotifier) ClipSaved(entry manifest.Entry) {
	n.s.emitEvent(EventClipCreated, entry)
}

func (n eventNotifier) ClipFailed(err error) {
	n.s.emitEvent(EventClipFailed, err.Error())
}
