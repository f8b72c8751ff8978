package input

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	hook "github.com/robotn/gohook"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseAccelerator(t *testing.T) {
	tests := []struct {
		accel    string
		key      string
		mask     uint16
		wantErr  error
		anyError bool
	}{
		{accel: "F12", key: "f12"},
		{accel: "f12", key: "f12"},
		{accel: "Ctrl+Shift+F12", key: "f12", mask: ModCtrl | ModShift},
		{accel: "CmdOrCtrl+S", key: "s", mask: ModCtrl},
		{accel: " Alt + F9 ", key: "f9", mask: ModAlt},
		{accel: "Super+Escape", key: "esc", mask: ModMeta},
		{accel: "", wantErr: ErrEmptyAccelerator},
		{accel: "Ctrl+Banana", wantErr: ErrUnknownKey},
		{accel: "Ctrl+Shift", wantErr: ErrUnknownKey},
		{accel: "Ctrl++", wantErr: ErrUnknownKey},
		{accel: "F11+F12", anyError: true},
	}

	for _, tt := range tests {
		t.Run(tt.accel, func(t *testing.T) {
			chord, err := ParseAccelerator(tt.accel)
			if tt.wantErr != nil || tt.anyError {
				if err == nil {
					t.Fatalf("ParseAccelerator(%q) succeeded, want error", tt.accel)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAccelerator(%q) error = %v", tt.accel, err)
			}
			if chord.Keycode != hook.Keycode[tt.key] {
				t.Errorf("Keycode = %d, want %d", chord.Keycode, hook.Keycode[tt.key])
			}
			if chord.Mask != tt.mask {
				t.Errorf("Mask = %b, want %b", chord.Mask, tt.mask)
			}
		})
	}
}

func TestModifiersFoldsLeftAndRight(t *testing.T) {
	if got := modifiers(1 << 5); got != ModCtrl {
		t.Errorf("right ctrl = %b, want %b", got, ModCtrl)
	}
	if got := modifiers(1<<0 | 1<<7); got != ModShift|ModAlt {
		t.Errorf("lshift+ralt = %b", got)
	}
	if got := modifiers(0); got != 0 {
		t.Errorf("no modifiers = %b", got)
	}
}

func collect(t *testing.T, ch <-chan KeyState, n int) []KeyState {
	t.Helper()
	var got []KeyState
	for len(got) < n {
		select {
		case s := <-ch:
			got = append(got, s)
		case <-time.After(time.Second):
			t.Fatalf("got %d callbacks, want %d", len(got), n)
		}
	}
	return got
}

func expectNone(t *testing.T, ch <-chan KeyState) {
	t.Helper()
	select {
	case s := <-ch:
		t.Fatalf("unexpected callback %v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatch_CollapsesAutoRepeat(t *testing.T) {
	m := NewManager(testLogger())
	states := make(chan KeyState, 16)
	if err := m.Register("F12", func(s KeyState) { states <- s }); err != nil {
		t.Fatal(err)
	}

	f12 := hook.Keycode["f12"]
	for _, ev := range []hook.Event{
		{Kind: hook.KeyHold, Keycode: f12},
		{Kind: hook.KeyHold, Keycode: f12},
		{Kind: hook.KeyHold, Keycode: f12},
		{Kind: hook.KeyUp, Keycode: f12},
		{Kind: hook.KeyUp, Keycode: f12},
		{Kind: hook.KeyHold, Keycode: f12},
	} {
		m.dispatch(ev)
	}

	got := collect(t, states, 3)
	pressed, released := 0, 0
	for _, s := range got {
		if s == Pressed {
			pressed++
		} else {
			released++
		}
	}
	if pressed != 2 || released != 1 {
		t.Errorf("pressed=%d released=%d, want 2 and 1", pressed, released)
	}
	expectNone(t, states)
}

func TestDispatch_RequiresExactModifiers(t *testing.T) {
	m := NewManager(testLogger())
	states := make(chan KeyState, 4)
	if err := m.Register("Ctrl+F9", func(s KeyState) { states <- s }); err != nil {
		t.Fatal(err)
	}
	f9 := hook.Keycode["f9"]

	m.dispatch(hook.Event{Kind: hook.KeyHold, Keycode: f9})
	m.dispatch(hook.Event{Kind: hook.KeyHold, Keycode: f9, Mask: 1<<1 | 1<<0})
	expectNone(t, states)

	// typed events are not edges
	m.dispatch(hook.Event{Kind: hook.KeyDown, Keycode: f9, Mask: 1 << 1})
	expectNone(t, states)

	m.dispatch(hook.Event{Kind: hook.KeyHold, Keycode: f9, Mask: 1 << 5})
	if got := collect(t, states, 1); got[0] != Pressed {
		t.Errorf("state = %v, want Pressed", got[0])
	}

	// modifier released before the key
	m.dispatch(hook.Event{Kind: hook.KeyUp, Keycode: f9})
	if got := collect(t, states, 1); got[0] != Released {
		t.Errorf("state = %v, want Released", got[0])
	}
}

func TestRegisterUnregister(t *testing.T) {
	m := NewManager(testLogger())
	noop := func(KeyState) {}

	if err := m.Register("F12", noop); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := m.Register("f12", noop); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate Register() error = %v", err)
	}
	if !m.IsRegistered("F12") {
		t.Error("IsRegistered(F12) = false")
	}
	if err := m.Unregister("F12"); err != nil {
		t.Errorf("Unregister() error = %v", err)
	}
	if m.IsRegistered("F12") {
		t.Error("IsRegistered(F12) = true after Unregister")
	}
	if err := m.Unregister("F12"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("second Unregister() error = %v", err)
	}
	if err := m.Register("Nope+Nope", noop); err == nil {
		t.Error("Register() accepted an unknown key")
	}
}

func TestStartStop_UsesHook(t *testing.T) {
	m := NewManager(testLogger())
	events := make(chan hook.Event, 4)
	ended := make(chan struct{}, 1)
	starts := 0
	m.startHook = func() chan hook.Event { starts++; return events }
	m.endHook = func() { ended <- struct{}{} }

	states := make(chan KeyState, 4)
	if err := m.Register("F10", func(s KeyState) { states <- s }); err != nil {
		t.Fatal(err)
	}

	m.Start()
	m.Start()
	if starts != 1 {
		t.Errorf("hook started %d times, want 1", starts)
	}

	events <- hook.Event{Kind: hook.KeyHold, Keycode: hook.Keycode["f10"]}
	if got := collect(t, states, 1); got[0] != Pressed {
		t.Errorf("state = %v, want Pressed", got[0])
	}

	m.Stop()
	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("Stop() did not end the hook")
	}
	m.Stop()
}
