package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"launchpad/internal/bridge"
	"launchpad/internal/utils"
)

const maxMonitors = 16

var resolutionRe = regexp.MustCompile(`(\d{2,5})x(\d{2,5})`)

// Monitor is a desktop output ddagrab can capture.
type Monitor struct {
	Index  int
	Width  int
	Height int
}

func (m Monitor) Device() bridge.Device {
	return bridge.Device{
		ID:   strconv.Itoa(m.Index),
		Name: fmt.Sprintf("Display %d (%dx%d)", m.Index+1, m.Width, m.Height),
	}
}

// DetectMonitors probes ddagrab output indexes until one fails.
func DetectMonitors(ctx context.Context, ffmpegPath string) []Monitor {
	var monitors []Monitor
	for idx := 0; idx < maxMonitors; idx++ {
		m, ok := probeOutput(ctx, ffmpegPath, idx)
		if !ok {
			break
		}
		monitors = append(monitors, m)
	}
	return monitors
}

func probeOutput(ctx context.Context, ffmpegPath string, idx int) (Monitor, bool) {
	cmd := utils.CommandContext(ctx, ffmpegPath,
		"-hide_banner",
		"-f", "lavfi",
		"-i", "ddagrab=output_idx="+strconv.Itoa(idx)+":framerate=1",
		"-frames:v", "1",
		"-f", "null",
		"-",
	)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Monitor{}, false
	}
	if err := cmd.Start(); err != nil {
		return Monitor{}, false
	}

	w, h := parseProbeResolution(stderr)
	io.Copy(io.Discard, stderr)
	cmd.Wait()

	if w == 0 || h == 0 {
		return Monitor{}, false
	}
	return Monitor{Index: idx, Width: w, Height: h}, true
}

// parseProbeResolution finds the d3d11 video stream line in ffmpeg's probe
// output.
func parseProbeResolution(r io.Reader) (int, int) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "Video:") || !strings.Contains(line, "d3d11") {
			continue
		}
		m := resolutionRe.FindStringSubmatch(line)
		if len(m) < 3 {
			continue
		}
		w, _ := strconv.Atoi(m[1])
		h, _ := strconv.Atoi(m[2])
		return w, h
	}
	return 0, 0
}
