// Package manifest persists the clip list in <clips_directory>/clips.json.
//
// The manifest is the only record of which clips exist. Entries are appended
// explicitly after a successful save and are never derived from a directory
// listing, since sidecar files cannot be matched back to clips reliably.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	FileName = "clips.json"
	MediaDir = "media"

	// UnnamedClip is used when a path has no final segment.
	UnnamedClip = "Unnamed Clip"
)

// ErrCorruptManifest is returned when clips.json cannot be parsed. The file
// is never overwritten in that case.
var ErrCorruptManifest = errors.New("clip manifest is corrupt")

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Metadata describes a saved clip. Resolution and Duration are written as
// zero until something fills them in.
type Metadata struct {
	CreatedAt       time.Time  `json:"created_at"`
	SizeBytes       int64      `json:"size"`
	Resolution      Resolution `json:"resolution"`
	DurationSeconds float64    `json:"duration"`
}

// AudioPaths holds sidecar tracks that existed when the entry was written.
type AudioPaths struct {
	Desktop string `json:"desktop,omitempty"`
	Mic     string `json:"mic,omitempty"`
}

// Entry is one clip in the manifest. It is immutable once written.
type Entry struct {
	Name       string      `json:"name"`
	Path       string      `json:"path"`
	AudioPaths *AudioPaths `json:"audioPaths,omitempty"`
	Src        string      `json:"src,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// HasDesktopAudio reports whether a desktop sidecar was recorded.
func (e Entry) HasDesktopAudio() bool { return e.AudioPaths != nil && e.AudioPaths.Desktop != "" }

// HasMicAudio reports whether a microphone sidecar was recorded.
func (e Entry) HasMicAudio() bool { return e.AudioPaths != nil && e.AudioPaths.Mic != "" }

// SidecarPaths returns where the capture backend writes the desktop and
// microphone tracks for videoPath.
func SidecarPaths(videoPath string) (desktop, mic string) {
	stem := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	return stem + "_desktop.wav", stem + "_mic.wav"
}

// SortNewestFirst orders entries by creation time, most recent first.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Metadata.CreatedAt.After(entries[j].Metadata.CreatedAt)
	})
}

// Store reads and appends to one clips directory's manifest. Appends are
// serialized; use one Store per directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string      { return s.dir }
func (s *Store) Path() string     { return filepath.Join(s.dir, FileName) }
func (s *Store) MediaDir() string { return filepath.Join(s.dir, MediaDir) }

// EnsureLayout creates the media directory and an empty manifest when they
// are missing. An existing manifest is left untouched.
func (s *Store) EnsureLayout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.MediaDir(), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	_, err := os.Stat(s.Path())
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat manifest: %w", err)
	}

	return writeDocument(s.Path(), document{"clips": json.RawMessage("[]")})
}

// Append adds entry to the end of the manifest.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, clips, err := readDocument(s.Path())
	if err != nil {
		return err
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode clip entry: %w", err)
	}
	clips = append(clips, raw)

	encoded, err := json.Marshal(clips)
	if err != nil {
		return fmt.Errorf("failed to encode clip list: %w", err)
	}
	doc["clips"] = encoded

	return writeDocument(s.Path(), doc)
}

// List returns every entry in file order.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, clips, err := readDocument(s.Path())
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(clips))
	for i, raw := range clips {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptManifest, i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
