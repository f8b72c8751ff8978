package playback

import (
	"sync"
)

// Command is an instruction for a media element living in the webview.
type Command struct {
	Target string  `json:"target"`
	Op     string  `json:"op"`
	Value  float64 `json:"value"`
}

// Command ops.
const (
	OpPlay   = "play"
	OpPause  = "pause"
	OpSeek   = "seek"
	OpVolume = "volume"
)

// Emitter delivers commands to the webview.
type Emitter func(Command)

// ElementState is what the webview reports about an element.
type ElementState struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	Paused      bool    `json:"paused"`
}

// RemoteElement is an Element backed by a media element in the webview.
// Commands are emitted immediately; reads return the last reported state
// with local commands applied on top.
type RemoteElement struct {
	target string
	emit   Emitter

	mu    sync.Mutex
	state ElementState
}

func NewRemoteElement(target string, emit Emitter) *RemoteElement {
	return &RemoteElement{
		target: target,
		emit:   emit,
		state:  ElementState{Paused: true},
	}
}

func (e *RemoteElement) Target() string { return e.target }

// Report replaces the element's state with what the webview observed.
func (e *RemoteElement) Report(st ElementState) {
	e.mu.Lock()
	e.state = st
	e.mu.Unlock()
}

func (e *RemoteElement) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentTime
}

func (e *RemoteElement) SetCurrentTime(t float64) {
	e.mu.Lock()
	e.state.CurrentTime = t
	e.mu.Unlock()
	e.emit(Command{Target: e.target, Op: OpSeek, Value: t})
}

func (e *RemoteElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Paused
}

func (e *RemoteElement) Play() error {
	e.mu.Lock()
	e.state.Paused = false
	e.mu.Unlock()
	e.emit(Command{Target: e.target, Op: OpPlay})
	return nil
}

func (e *RemoteElement) Pause() {
	e.mu.Lock()
	e.state.Paused = true
	e.mu.Unlock()
	e.emit(Command{Target: e.target, Op: OpPause})
}

func (e *RemoteElement) SetVolume(v float64) {
	e.emit(Command{Target: e.target, Op: OpVolume, Value: v})
}

func (e *RemoteElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Duration
}

// FrameRelay is a FrameScheduler driven by the webview's animation frame
// callback. Each Pump runs the callbacks requested before it.
type FrameRelay struct {
	mu      sync.Mutex
	seq     uint64
	pending map[uint64]func()
}

func NewFrameRelay() *FrameRelay {
	return &FrameRelay{pending: make(map[uint64]func())}
}

func (f *FrameRelay) RequestFrame(fn func()) func() {
	f.mu.Lock()
	f.seq++
	id := f.seq
	f.pending[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.pending, id)
		f.mu.Unlock()
	}
}

// Pump runs one frame. Callbacks requested during Pump wait for the next.
func (f *FrameRelay) Pump() {
	f.mu.Lock()
	due := f.pending
	f.pending = make(map[uint64]func())
	f.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

// Pending returns the number of callbacks waiting for a frame.
func (f *FrameRelay) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
