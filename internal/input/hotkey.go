// Package input registers global hotkeys and reports their pressed and
// released edges.
package input

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// KeyState is the edge reported to a hotkey callback.
type KeyState int

const (
	Pressed KeyState = iota
	Released
)

func (s KeyState) String() string {
	if s == Pressed {
		return "Pressed"
	}
	return "Released"
}

var (
	ErrAlreadyRegistered = errors.New("hotkey already registered")
	ErrNotRegistered     = errors.New("hotkey not registered")
)

type binding struct {
	accel string
	fn    func(KeyState)
	down  bool
}

// Manager owns the global keyboard hook. Callbacks run on their own
// goroutine, so a slow callback never blocks the hook.
type Manager struct {
	logger *slog.Logger

	mu       sync.Mutex
	bindings map[Chord]*binding
	running  bool
	quit     chan struct{}

	// swapped in tests
	startHook func() chan hook.Event
	endHook   func()
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:    logger,
		bindings:  make(map[Chord]*binding),
		startHook: hook.Start,
		endHook:   hook.End,
	}
}

// Start installs the keyboard hook. Calling Start twice is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.quit = make(chan struct{})
	quit := m.quit
	m.mu.Unlock()

	events := m.startHook()
	go m.loop(events, quit)
	m.logger.Info("keyboard hook started")
}

// Stop removes the keyboard hook. Registrations are kept.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.quit)
	m.mu.Unlock()

	m.endHook()
	m.logger.Info("keyboard hook stopped")
}

// Register binds fn to accel.
func (m *Manager) Register(accel string, fn func(KeyState)) error {
	chord, err := ParseAccelerator(accel)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bindings[chord]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, accel)
	}
	m.bindings[chord] = &binding{accel: accel, fn: fn}
	m.logger.Info("registered global hotkey", "accelerator", accel)
	return nil
}

// Unregister removes the binding for accel.
func (m *Manager) Unregister(accel string) error {
	chord, err := ParseAccelerator(accel)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bindings[chord]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, accel)
	}
	delete(m.bindings, chord)
	m.logger.Info("unregistered global hotkey", "accelerator", accel)
	return nil
}

func (m *Manager) IsRegistered(accel string) bool {
	chord, err := ParseAccelerator(accel)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.bindings[chord]
	return ok
}

func (m *Manager) loop(events chan hook.Event, quit chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.dispatch(ev)
		}
	}
}

type call struct {
	fn    func(KeyState)
	state KeyState
}

// dispatch turns raw key events into edges. Auto-repeat arrives as repeated
// key-down events while the key is held and only the first one counts.
// Releases match on the key alone since modifiers are often let go first.
func (m *Manager) dispatch(ev hook.Event) {
	var calls []call

	m.mu.Lock()
	switch ev.Kind {
	case hook.KeyHold:
		mods := modifiers(ev.Mask)
		for chord, b := range m.bindings {
			if chord.Keycode == ev.Keycode && chord.Mask == mods && !b.down {
				b.down = true
				calls = append(calls, call{b.fn, Pressed})
			}
		}
	case hook.KeyUp:
		for chord, b := range m.bindings {
			if chord.Keycode == ev.Keycode && b.down {
				b.down = false
				calls = append(calls, call{b.fn, Released})
			}
		}
	}
	m.mu.Unlock()

	for _, c := range calls {
		go c.fn(c.state)
	}
}
