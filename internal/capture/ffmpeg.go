package capture

import (
	"fmt"
	"strconv"
	"strings"
)

type FFmpegCommandBuilder struct {
	config Config
}

func NewFFmpegCommandBuilder(cfg Config) *FFmpegCommandBuilder {
	return &FFmpegCommandBuilder{config: cfg}
}

// BuildArgs returns the arguments of the long-running capture process. It
// writes MPEG-TS to stdout.
func (b *FFmpegCommandBuilder) BuildArgs() []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, b.hwDeviceArgs()...)
	args = append(args, b.inputArgs()...)
	args = append(args, EncoderArgs(b.config.Encoder)...)
	args = append(args, b.outputArgs()...)
	return args
}

func (b *FFmpegCommandBuilder) hwDeviceArgs() []string {
	if b.config.Encoder == "" || b.config.Encoder == CPUEncoder {
		return nil
	}
	return []string{
		"-init_hw_device", "d3d11va=d3d11",
		"-filter_hw_device", "d3d11",
	}
}

func (b *FFmpegCommandBuilder) inputArgs() []string {
	drawMouse := 0
	if b.config.DrawMouse {
		drawMouse = 1
	}
	return []string{
		"-f", "lavfi",
		"-rtbufsize", "100M",
		"-i", fmt.Sprintf("ddagrab=output_idx=%d:framerate=%d:draw_mouse=%d",
			b.config.MonitorIndex, b.config.FPS, drawMouse),
	}
}

func (b *FFmpegCommandBuilder) outputArgs() []string {
	return []string{
		"-b:v", b.config.Bitrate,
		"-maxrate", b.config.Bitrate,
		"-bufsize", b.config.Bitrate,
		"-g", strconv.Itoa(b.config.FPS),
		"-f", "mpegts",
		"-",
	}
}

// ParseBitrate converts "15M" or "800k" into bytes per second.
func ParseBitrate(br string) int {
	br = strings.ToLower(strings.TrimSpace(br))
	mul := 1
	switch {
	case strings.HasSuffix(br, "m"):
		mul = 1_000_000
		br = strings.TrimSuffix(br, "m")
	case strings.HasSuffix(br, "k"):
		mul = 1_000
		br = strings.TrimSuffix(br, "k")
	}
	val, _ := strconv.Atoi(br)
	return val * mul / 8
}

// CalculateBufferSize sizes the video replay window with headroom for
// bitrate overshoot.
func CalculateBufferSize(bitrate string, seconds int) int {
	return int(float64(ParseBitrate(bitrate)*seconds) * 1.5)
}

// remuxArgs trims the last seconds of a transport stream into an mp4.
func remuxArgs(tsPath, mp4Path string, seconds int) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if seconds > 0 {
		args = append(args, "-sseof", fmt.Sprintf("-%d", seconds))
	}
	return append(args, "-i", tsPath, "-c", "copy", "-movflags", "+faststart", mp4Path)
}

// wavArgs converts raw capture PCM into a 16-bit wav sidecar.
func wavArgs(pcmPath, wavPath string, sampleRate, channels int, format string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", format,
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-i", pcmPath,
		"-c:a", "pcm_s16le",
		wavPath,
	}
}
