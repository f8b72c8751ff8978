package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"launchpad/internal/manifest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitAndList(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, "init", "--dir", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	store := manifest.NewStore(dir)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"old.mp4", "new.mp4"} {
		entry := manifest.Entry{
			Name:     name,
			Path:     dir + "/media/" + name,
			Metadata: manifest.Metadata{CreatedAt: base.Add(time.Duration(i) * time.Minute), SizeBytes: 10},
		}
		if i == 1 {
			entry.AudioPaths = &manifest.AudioPaths{Desktop: "d.wav", Mic: "m.wav"}
		}
		if err := store.Append(entry); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, "list", "-d", dir)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("list printed %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "new.mp4") || !strings.Contains(lines[1], "desktop+mic") {
		t.Errorf("first row = %q, want the newest clip with both tracks", lines[1])
	}

	out, err = run(t, "list", "-d", dir, "--json")
	if err != nil {
		t.Fatalf("list --json error = %v", err)
	}
	var entries []manifest.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("list --json output is not JSON: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "new.mp4" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestListMissingManifest(t *testing.T) {
	if _, err := run(t, "list", "--dir", t.TempDir()); err == nil {
		t.Error("list on an empty directory error = nil")
	}
}

func TestAudioTracks(t *testing.T) {
	tests := []struct {
		paths *manifest.AudioPaths
		want  string
	}{
		{nil, "-"},
		{&manifest.AudioPaths{Desktop: "d"}, "desktop"},
		{&manifest.AudioPaths{Mic: "m"}, "mic"},
		{&manifest.AudioPaths{Desktop: "d", Mic: "m"}, "desktop+mic"},
	}
	for _, tt := range tests {
		if got := audioTracks(manifest.Entry{AudioPaths: tt.paths}); got != tt.want {
			t.Errorf("audioTracks(%+v) = %q, want %q", tt.paths, got, tt.want)
		}
	}
}
