package capture

import (
	"context"
	"log/slog"
	"strings"

	"launchpad/internal/utils"
)

// CPUEncoder is used when no hardware encoder is available.
const CPUEncoder = "libx264"

// hardware encoders in order of preference
var hardwareEncoders = []string{"h264_nvenc", "h264_amf", "h264_qsv"}

// DetectEncoder asks ffmpeg which hardware encoders it was built with and
// returns the preferred one, or CPUEncoder.
func DetectEncoder(ctx context.Context, ffmpegPath string) string {
	out, err := utils.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		slog.Warn("ffmpeg encoder detection failed", "error", err)
		return CPUEncoder
	}
	enc := pickEncoder(string(out))
	slog.Info("selected video encoder", "encoder", enc)
	return enc
}

func pickEncoder(listing string) string {
	available := make(map[string]bool)
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			available[fields[1]] = true
		}
	}
	for _, enc := range hardwareEncoders {
		if available[enc] {
			return enc
		}
	}
	return CPUEncoder
}

// EncoderArgs returns the filter and codec arguments for enc. ddagrab
// yields d3d11 frames, so every path converts to nv12 first.
func EncoderArgs(enc string) []string {
	switch enc {
	case "h264_amf":
		return []string{
			"-vf", "scale_d3d11=format=nv12",
			"-c:v", enc,
			"-usage", "lowlatency",
			"-rc", "cbr",
			"-quality", "speed",
		}
	case "h264_nvenc":
		return []string{
			"-vf", "hwdownload,format=bgra,hwupload_cuda,scale_cuda=format=nv12",
			"-c:v", enc,
			"-preset", "p1",
			"-rc", "cbr",
			"-delay", "0",
			"-zerolatency", "1",
		}
	case "h264_qsv":
		return []string{
			"-vf", "hwmap=derive_device=qsv,format=qsv,scale_qsv=format=nv12",
			"-c:v", enc,
			"-preset", "veryfast",
			"-look_ahead", "0",
		}
	}
	return []string{
		"-vf", "hwdownload,format=bgra,format=nv12",
		"-c:v", CPUEncoder,
		"-preset", "ultrafast",
		"-tune", "zerolatency",
	}
}
