package coordinator

import (
	"context"
	"fmt"
	"os"

	"launchpad/internal/manifest"
	"launchpad/internal/utils"
)

// SaveClip asks the bridge for a clip and appends it to the manifest.
//
// It returns (nil, nil) when clips are disabled, arming failed or nothing
// is recording.
// The entry goes to the manifest of the directory configured when the save
// began, even if the configuration changes while the bridge is busy.
func (c *Coordinator) SaveClip(ctx context.Context) (*manifest.Entry, error) {
	cfg, ok := c.active()
	if !ok {
		return nil, nil
	}

	recording, err := c.bridge.IsRecording(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query recording state: %w", err)
	}
	if !recording {
		return nil, nil
	}

	store, err := c.storeFor(cfg.ClipsDirectory)
	if err != nil {
		return nil, err
	}

	videoPath, err := c.bridge.SaveClip(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture backend failed to save clip: %w", err)
	}

	info, err := os.Stat(videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat saved clip: %w", err)
	}

	entry := manifest.Entry{
		Name: clipName(videoPath),
		Path: videoPath,
		Src:  utils.FileURL(videoPath),
		Metadata: manifest.Metadata{
			CreatedAt: c.now(),
			SizeBytes: info.Size(),
		},
	}

	desktop, mic := manifest.SidecarPaths(videoPath)
	var audio manifest.AudioPaths
	if utils.Exists(desktop) {
		audio.Desktop = desktop
	}
	if utils.Exists(mic) {
		audio.Mic = mic
	}
	if audio != (manifest.AudioPaths{}) {
		entry.AudioPaths = &audio
	}

	if err := store.Append(entry); err != nil {
		return nil, fmt.Errorf("failed to record clip in manifest: %w", err)
	}

	c.logger.Info("clip saved",
		"path", videoPath,
		"size", info.Size(),
		"desktop_audio", entry.HasDesktopAudio(),
		"mic_audio", entry.HasMicAudio(),
	)
	c.notifier.ClipSaved(entry)
	return &entry, nil
}

func clipName(path string) string {
	if name := utils.BaseName(path); name != "" {
		return name
	}
	return manifest.UnnamedClip
}
