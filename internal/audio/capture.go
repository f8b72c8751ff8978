// Package audio captures desktop loopback and microphone audio into
// separate rolling buffers, one per sidecar track.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"launchpad/internal/buffer"
)

const (
	SampleRate     = 48000
	Channels       = 2
	Format         = malgo.FormatF32
	BytesPerSample = 4
	BytesPerFrame  = BytesPerSample * Channels

	// PCMFormat is the ffmpeg input format of snapshots.
	PCMFormat = "f32le"
)

// Source is one captured track.
type Source int

const (
	SourceDesktop Source = iota
	SourceMic
)

func (s Source) String() string {
	if s == SourceMic {
		return "mic"
	}
	return "desktop"
}

// SourceConfig selects a device for one source. An empty DeviceID or
// "default" uses the system default device.
type SourceConfig struct {
	Source    Source
	DeviceID  string
	Gain      float32
	NoiseGate bool
}

var ErrNoSources = errors.New("no audio sources started")

type stream struct {
	source SourceConfig
	device *malgo.Device
	raw    *buffer.Buffer // filled by the device callback
	ring   *buffer.Buffer // processed replay window
	gate   *NoiseGate
}

// Recorder runs one malgo device per source.
type Recorder struct {
	logger *slog.Logger
	ctx    *malgo.AllocatedContext

	mu      sync.Mutex
	streams map[Source]*stream
	running bool
	quit    chan struct{}
	done    chan struct{}
}

func NewRecorder(logger *slog.Logger) (*Recorder, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	return &Recorder{
		logger:  logger,
		ctx:     ctx,
		streams: make(map[Source]*stream),
	}, nil
}

// Start opens every source and keeps the last seconds of each. Sources
// that fail to open are logged and skipped.
func (r *Recorder) Start(sources []SourceConfig, seconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("audio recorder already running")
	}

	r.streams = make(map[Source]*stream)
	for _, src := range sources {
		st, err := r.openStream(src, seconds)
		if err != nil {
			r.logger.Error("failed to open audio source", "source", src.Source, "device", src.DeviceID, "error", err)
			continue
		}
		r.streams[src.Source] = st
		r.logger.Info("audio stream started", "source", src.Source, "gain", src.Gain, "noise_gate", src.NoiseGate)
	}
	if len(r.streams) == 0 {
		return ErrNoSources
	}

	r.running = true
	r.quit = make(chan struct{})
	r.done = make(chan struct{})
	go r.processLoop(r.streams, r.quit, r.done)
	return nil
}

func (r *Recorder) openStream(src SourceConfig, seconds int) (*stream, error) {
	st := &stream{
		source: src,
		raw:    buffer.New(BufferSize(2)),
		ring:   buffer.New(BufferSize(seconds)),
	}
	if src.NoiseGate {
		st.gate = DefaultNoiseGate()
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = Format
	cfg.Capture.Channels = Channels
	cfg.SampleRate = SampleRate

	var id malgo.DeviceID
	hasID := src.DeviceID != "" && src.DeviceID != "default"
	if hasID {
		parsed, err := ParseDeviceID(src.DeviceID)
		if err != nil {
			return nil, fmt.Errorf("invalid device id: %w", err)
		}
		id = parsed
	}

	if src.Source == SourceDesktop {
		cfg.DeviceType = malgo.Loopback
		if hasID {
			cfg.Playback.DeviceID = id.Pointer()
		}
	} else if hasID {
		cfg.Capture.DeviceID = id.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			st.raw.Write(input)
		},
	}

	device, err := malgo.InitDevice(r.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("failed to start device: %w", err)
	}
	st.device = device
	return st, nil
}

// Stop closes all devices and clears the replay windows.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.quit)
	done := r.done
	streams := r.streams
	r.mu.Unlock()

	<-done
	for _, st := range streams {
		st.device.Uninit()
	}
	r.logger.Info("audio capture stopped")
}

func (r *Recorder) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Has reports whether src is being recorded.
func (r *Recorder) Has(src Source) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.streams[src]
	return r.running && ok
}

// Snapshot copies the replay window of src as f32le PCM. It returns nil when
// the source is not recorded.
func (r *Recorder) Snapshot(src Source) []byte {
	r.mu.Lock()
	st, ok := r.streams[src]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return st.ring.Snapshot()
}

func (r *Recorder) Close() {
	r.Stop()
	if r.ctx != nil {
		_ = r.ctx.Uninit()
		r.ctx.Free()
		r.ctx = nil
	}
}

// processLoop moves 20ms chunks from each device buffer through gain and
// the optional gate into the replay window.
func (r *Recorder) processLoop(streams map[Source]*stream, quit, done chan struct{}) {
	defer close(done)

	const framesPerChunk = SampleRate / 50
	raw := make([]byte, framesPerChunk*BytesPerFrame)
	samples := make([]float32, framesPerChunk*Channels)

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			for _, st := range streams {
				for {
					n, _ := st.raw.Read(raw)
					if n == 0 {
						break
					}
					count := decodeF32(raw[:n], samples)
					chunk := samples[:count]
					applyGain(chunk, st.source.Gain)
					if st.gate != nil {
						st.gate.Process(chunk)
					}
					st.ring.Write(raw[:encodeF32(chunk, raw)])
				}
			}
		}
	}
}
