package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	FileName = "settings.json"

	// DefaultWriteDelay is how long Update waits before persisting.
	DefaultWriteDelay = 500 * time.Millisecond
)

// Store holds the live settings. Update applies changes in memory and
// notifies subscribers right away; the file write trails behind.
type Store struct {
	path   string
	logger *slog.Logger
	writer *Debouncer

	mu      sync.RWMutex
	current Settings

	subMu  sync.Mutex
	subs   map[int]func(Settings)
	nextID int

	// last bytes written by us, so Watch can ignore its own echo
	fileMu      sync.Mutex
	lastWritten []byte
}

func NewStore(path string, logger *slog.Logger, writeDelay time.Duration) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:    path,
		logger:  logger,
		writer:  NewDebouncer(writeDelay),
		current: Defaults(),
		subs:    make(map[int]func(Settings)),
	}
}

func (s *Store) Path() string { return s.path }

// Load reads the settings file. A missing or malformed file leaves defaults
// in place and is not rewritten.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no settings file found, using defaults", "path", s.path)
			return nil
		}
		return fmt.Errorf("failed to read settings: %w", err)
	}

	loaded, warnings, err := Parse(data)
	for _, w := range warnings {
		s.logger.Warn("settings validation", "warning", w)
	}
	if err != nil {
		s.logger.Warn("failed to parse settings file, using defaults", "error", err)
		return nil
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	s.logger.Info("settings loaded", "path", s.path)
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the settings, broadcasts them and schedules a write.
func (s *Store) Update(next Settings) {
	next.Clips = next.Clips.Normalize()

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.broadcast(next)

	s.writer.Schedule(func() {
		if err := s.save(next); err != nil {
			s.logger.Error("failed to save settings", "error", err)
		}
	})
}

// Subscribe registers fn for every change. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Settings)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Flush writes any pending change now.
func (s *Store) Flush() {
	s.writer.Flush()
}

// PendingWrite reports whether a write is scheduled.
func (s *Store) PendingWrite() bool {
	return s.writer.Pending()
}

func (s *Store) broadcast(next Settings) {
	s.subMu.Lock()
	subs := make([]func(Settings), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

func (s *Store) save(cfg Settings) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	s.lastWritten = data

	s.logger.Info("settings saved", "path", s.path)
	return nil
}

func (s *Store) isOwnWrite(data []byte) bool {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	return s.lastWritten != nil && bytes.Equal(data, s.lastWritten)
}
