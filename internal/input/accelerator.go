package input

import (
	"errors"
	"fmt"
	"strings"

	hook "github.com/robotn/gohook"
)

// Modifier bits of a Chord. Left and right variants collapse to one bit.
const (
	ModShift uint16 = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// raw modifier masks reported by the hook
const (
	rawShift = 1<<0 | 1<<4
	rawCtrl  = 1<<1 | 1<<5
	rawMeta  = 1<<2 | 1<<6
	rawAlt   = 1<<3 | 1<<7
)

var (
	ErrUnknownKey       = errors.New("unknown key")
	ErrEmptyAccelerator = errors.New("empty accelerator")
)

// Chord is a parsed accelerator: one key plus the modifiers held with it.
type Chord struct {
	Keycode uint16
	Mask    uint16
}

var modifierNames = map[string]uint16{
	"shift":            ModShift,
	"ctrl":             ModCtrl,
	"control":          ModCtrl,
	"cmdorctrl":        ModCtrl,
	"cmdorcontrol":     ModCtrl,
	"commandorcontrol": ModCtrl,
	"commandorctrl":    ModCtrl,
	"alt":              ModAlt,
	"option":           ModAlt,
	"altgr":            ModAlt,
	"super":            ModMeta,
	"meta":             ModMeta,
	"cmd":              ModMeta,
	"command":          ModMeta,
	"win":              ModMeta,
}

// accelerator names that differ from the hook's key table
var keyAliases = map[string]string{
	"escape":     "esc",
	"return":     "enter",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"backspace":  "delete",
	"spacebar":   "space",
	"plus":       "=",
}

// ParseAccelerator parses strings such as "F12" or "CmdOrCtrl+Shift+S".
// Modifier names are case-insensitive; exactly one non-modifier key is
// required.
func ParseAccelerator(accel string) (Chord, error) {
	accel = strings.TrimSpace(accel)
	if accel == "" {
		return Chord{}, ErrEmptyAccelerator
	}

	var chord Chord
	key := ""
	for _, part := range strings.Split(accel, "+") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			return Chord{}, fmt.Errorf("%w: empty segment in %q", ErrUnknownKey, accel)
		}
		if mod, ok := modifierNames[name]; ok {
			chord.Mask |= mod
			continue
		}
		if key != "" {
			return Chord{}, fmt.Errorf("accelerator %q has more than one key", accel)
		}
		key = name
	}
	if key == "" {
		return Chord{}, fmt.Errorf("%w: %q has no key", ErrUnknownKey, accel)
	}

	if alias, ok := keyAliases[key]; ok {
		key = alias
	}
	code, ok := hook.Keycode[key]
	if !ok {
		return Chord{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	chord.Keycode = code
	return chord, nil
}

// modifiers folds a raw hook mask into Chord modifier bits.
func modifiers(raw uint16) uint16 {
	var m uint16
	if raw&rawShift != 0 {
		m |= ModShift
	}
	if raw&rawCtrl != 0 {
		m |= ModCtrl
	}
	if raw&rawAlt != 0 {
		m |= ModAlt
	}
	if raw&rawMeta != 0 {
		m |= ModMeta
	}
	return m
}
