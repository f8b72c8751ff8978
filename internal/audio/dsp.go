package audio

import (
	"encoding/binary"
	"math"
)

// BufferSize returns the bytes needed to hold seconds of PCM in the capture
// format.
func BufferSize(seconds int) int {
	return SampleRate * BytesPerFrame * seconds
}

// decodeF32 reads little-endian float32 samples from b into dst and returns
// the number of samples read.
func decodeF32(b []byte, dst []float32) int {
	n := min(len(b)/BytesPerSample, len(dst))
	for i := 0; i < n; i++ {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*BytesPerSample:]))
	}
	return n
}

func encodeF32(samples []float32, dst []byte) int {
	n := min(len(samples), len(dst)/BytesPerSample)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(dst[i*BytesPerSample:], math.Float32bits(samples[i]))
	}
	return n * BytesPerSample
}

// applyGain scales samples and hard-clips them to [-1, 1].
func applyGain(samples []float32, gain float32) {
	for i, s := range samples {
		s *= gain
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		samples[i] = s
	}
}

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// NoiseGate silences chunks whose level stays under Threshold. Once open it
// stays open for Hold chunks so word endings are not clipped.
type NoiseGate struct {
	Threshold float64
	Hold      int

	remaining int
}

// DefaultNoiseGate is tuned for 20ms chunks: about -40 dBFS, 200ms hold.
func DefaultNoiseGate() *NoiseGate {
	return &NoiseGate{Threshold: 0.01, Hold: 10}
}

// Process gates one chunk in place and reports whether it passed.
func (g *NoiseGate) Process(samples []float32) bool {
	if rms(samples) >= g.Threshold {
		g.remaining = g.Hold
		return true
	}
	if g.remaining > 0 {
		g.remaining--
		return true
	}
	clear(samples)
	return false
}
