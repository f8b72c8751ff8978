package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`C:\Clips\media\clip1.mp4`, "clip1.mp4"},
		{"/home/user/clips/media/clip2.mp4", "clip2.mp4"},
		{`C:/mixed\path/clip3.mp4`, "clip3.mp4"},
		{"clip4.mp4", "clip4.mp4"},
		{`C:\Clips\`, "Clips"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileURL(t *testing.T) {
	got := FileURL(`C:\Clips\media\clip1.mp4`)
	want := "file://C:/Clips/media/clip1.mp4"
	if got != want {
		t.Errorf("FileURL() = %q, want %q", got, want)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if Exists(p) {
		t.Fatal("Exists() = true before file was created")
	}
	if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(p) {
		t.Fatal("Exists() = false after file was created")
	}
}

func TestResolveAbsPath(t *testing.T) {
	base := t.TempDir()
	got, err := ResolveAbsPath("clips", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(base, "clips") {
		t.Errorf("ResolveAbsPath() = %q", got)
	}

	abs := filepath.Join(base, "x")
	got, _ = ResolveAbsPath(abs, "/elsewhere")
	if got != abs {
		t.Errorf("ResolveAbsPath(abs) = %q, want %q", got, abs)
	}
}
