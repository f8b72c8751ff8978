package playback

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"launchpad/internal/manifest"
)

// Sources are the blobs for one loaded clip. Desktop and Mic are nil when
// the clip has no such sidecar or it could not be read.
type Sources struct {
	Video   Blob  `json:"video"`
	Desktop *Blob `json:"desktop,omitempty"`
	Mic     *Blob `json:"mic,omitempty"`
}

// Player loads clips into the registry and owns their blobs. Loading a new
// clip revokes the previous clip's blobs first.
type Player struct {
	registry *Registry
	logger   *slog.Logger
	readFile func(string) ([]byte, error)

	mu   sync.Mutex
	held []string
}

func NewPlayer(registry *Registry, logger *slog.Logger) *Player {
	return &Player{
		registry: registry,
		logger:   logger,
		readFile: os.ReadFile,
	}
}

func (p *Player) Load(entry manifest.Entry) (Sources, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.revokeLocked()

	video, err := p.readFile(entry.Path)
	if err != nil {
		return Sources{}, fmt.Errorf("failed to read clip %s: %w", entry.Name, err)
	}
	src := Sources{Video: p.hold(video, "video/mp4")}

	if entry.HasDesktopAudio() {
		src.Desktop = p.loadAudio(entry.AudioPaths.Desktop, TrackDesktop)
	}
	if entry.HasMicAudio() {
		src.Mic = p.loadAudio(entry.AudioPaths.Mic, TrackMic)
	}

	p.logger.Debug("clip loaded", "name", entry.Name, "blobs", len(p.held))
	return src, nil
}

// Close revokes every blob the player holds.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revokeLocked()
}

// loadAudio returns nil when the sidecar cannot be read. The clip still
// plays without it.
func (p *Player) loadAudio(path string, track Track) *Blob {
	data, err := p.readFile(path)
	if err != nil {
		p.logger.Warn("failed to read audio track", "track", track, "path", path, "error", err)
		return nil
	}
	b := p.hold(data, "audio/wav")
	return &b
}

func (p *Player) hold(data []byte, contentType string) Blob {
	b := p.registry.Create(data, contentType)
	p.held = append(p.held, b.ID)
	return b
}

func (p *Player) revokeLocked() {
	for _, id := range p.held {
		p.registry.Revoke(id)
	}
	p.held = p.held[:0]
}
