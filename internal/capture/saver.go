package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	stdruntime "runtime"
	"runtime/debug"
	"time"

	"launchpad/internal/audio"
	"launchpad/internal/utils"
)

var ErrBufferEmpty = errors.New("replay buffer is empty")

// SaveRequest is one snapshot of the replay buffers.
type SaveRequest struct {
	Name        string
	Video       []byte
	Desktop     []byte
	Mic         []byte
	DurationSec int
}

// Saver turns replay snapshots into an mp4 with wav sidecars.
type Saver struct {
	ffmpegPath string
	outputDir  string
	logger     *slog.Logger

	// swapped in tests
	run func(ctx context.Context, name string, args ...string) error
}

func NewSaver(ffmpegPath, outputDir string, logger *slog.Logger) *Saver {
	return &Saver{
		ffmpegPath: ffmpegPath,
		outputDir:  outputDir,
		logger:     logger,
		run:        runFFmpeg,
	}
}

func runFFmpeg(ctx context.Context, name string, args ...string) error {
	out, err := utils.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, out)
	}
	return nil
}

// ClipName returns the file stem for a clip saved at t.
func ClipName(t time.Time) string {
	return fmt.Sprintf("clip_%s_%03d", t.Format("20060102_150405"), t.Nanosecond()/int(time.Millisecond))
}

// Save writes req and returns the absolute mp4 path once ffmpeg is done.
// Sidecars that fail are logged and skipped; the video is what matters.
func (s *Saver) Save(ctx context.Context, req SaveRequest) (string, error) {
	if len(req.Video) == 0 {
		return "", ErrBufferEmpty
	}
	if err := os.MkdirAll(s.outputDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create clips directory: %w", err)
	}

	base, err := filepath.Abs(filepath.Join(s.outputDir, req.Name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve clip path: %w", err)
	}
	mp4Path := base + ".mp4"

	tsPath := base + ".ts"
	if err := writeData(tsPath, req.Video); err != nil {
		return "", fmt.Errorf("failed to write video temp file: %w", err)
	}
	defer os.Remove(tsPath)

	req.Video = nil
	freeMemory()

	if err := s.run(ctx, s.ffmpegPath, remuxArgs(tsPath, mp4Path, req.DurationSec)...); err != nil {
		return "", fmt.Errorf("failed to remux clip: %w", err)
	}

	for _, track := range []struct {
		suffix string
		pcm    []byte
	}{
		{"_desktop", req.Desktop},
		{"_mic", req.Mic},
	} {
		if len(track.pcm) == 0 {
			continue
		}
		if err := s.writeSidecar(ctx, base, track.suffix, track.pcm); err != nil {
			s.logger.Error("failed to save audio sidecar", "track", track.suffix, "error", err)
		}
	}

	s.logger.Info("clip saved", "path", mp4Path)
	return mp4Path, nil
}

func (s *Saver) writeSidecar(ctx context.Context, base, suffix string, pcm []byte) error {
	pcmPath := base + suffix + ".pcm"
	if err := writeData(pcmPath, pcm); err != nil {
		return err
	}
	defer os.Remove(pcmPath)

	wavPath := base + suffix + ".wav"
	args := wavArgs(pcmPath, wavPath, audio.SampleRate, audio.Channels, audio.PCMFormat)
	if err := s.run(ctx, s.ffmpegPath, args...); err != nil {
		os.Remove(wavPath)
		return err
	}
	return nil
}

func writeData(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 8*1024*1024)
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Flush()
}

// freeMemory hands large snapshot allocations back to the OS.
func freeMemory() {
	stdruntime.GC()
	debug.FreeOSMemory()
}
