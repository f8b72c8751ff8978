package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func testEntry(name string, created time.Time) Entry {
	return Entry{
		Name: name,
		Path: filepath.Join("C:", "Clips", "media", name),
		Metadata: Metadata{
			CreatedAt: created,
			SizeBytes: 1024,
		},
	}
}

func TestEnsureLayout_CreatesMediaAndManifest(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout() error = %v", err)
	}

	info, err := os.Stat(store.MediaDir())
	if err != nil || !info.IsDir() {
		t.Fatalf("media dir missing: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestEnsureLayout_IdempotentKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.EnsureLayout(); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(testEntry("a.mp4", time.Now())); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(store.Path())

	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("second EnsureLayout() error = %v", err)
	}

	after, _ := os.ReadFile(store.Path())
	if string(before) != string(after) {
		t.Error("EnsureLayout rewrote an existing manifest")
	}

	files, _ := os.ReadDir(dir)
	if len(files) != 2 {
		t.Errorf("dir has %d entries, want clips.json and media", len(files))
	}
}

func TestAppend_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.UTC)
	var want []Entry
	for i := 0; i < 5; i++ {
		e := testEntry(fmt.Sprintf("clip%d.mp4", i), base.Add(time.Duration(i)*time.Minute))
		if i%2 == 0 {
			e.AudioPaths = &AudioPaths{Desktop: "d.wav"}
		}
		want = append(want, e)
		if err := store.Append(e); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	got, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name || got[i].Path != want[i].Path {
			t.Errorf("entry %d = %s/%s, want %s/%s", i, got[i].Name, got[i].Path, want[i].Name, want[i].Path)
		}
		if !got[i].Metadata.CreatedAt.Equal(want[i].Metadata.CreatedAt) {
			t.Errorf("entry %d created_at = %v, want %v", i, got[i].Metadata.CreatedAt, want[i].Metadata.CreatedAt)
		}
		if got[i].Metadata.SizeBytes != want[i].Metadata.SizeBytes {
			t.Errorf("entry %d size = %d", i, got[i].Metadata.SizeBytes)
		}
		if got[i].HasDesktopAudio() != want[i].HasDesktopAudio() {
			t.Errorf("entry %d desktop audio mismatch", i)
		}
	}
}

func TestAppend_FourSpaceIndent(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(testEntry("a.mp4", time.Now())); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(store.Path())
	if !strings.Contains(string(data), "\n    \"clips\": [\n        {") {
		t.Errorf("manifest not indented with four spaces:\n%s", data)
	}
}

func TestAppend_CorruptManifestIsNotOverwritten(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatal(err)
	}

	corrupt := `{"clips": [{"name": "keep-me"`
	if err := os.WriteFile(store.Path(), []byte(corrupt), 0644); err != nil {
		t.Fatal(err)
	}

	err := store.Append(testEntry("new.mp4", time.Now()))
	if !errors.Is(err, ErrCorruptManifest) {
		t.Fatalf("Append() error = %v, want ErrCorruptManifest", err)
	}

	data, _ := os.ReadFile(store.Path())
	if string(data) != corrupt {
		t.Error("corrupt manifest was modified")
	}

	if _, err := store.List(); !errors.Is(err, ErrCorruptManifest) {
		t.Errorf("List() error = %v, want ErrCorruptManifest", err)
	}
}

func TestManifest_ClipsNotAnArray(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"object", `{"clips": {}}`},
		{"null", `{"clips": null, "other": 1}`},
		{"missing key", `{"other": 1}`},
		{"string", `{"clips": "a.mp4"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(t.TempDir())
			if err := os.WriteFile(store.Path(), []byte(tt.doc), 0644); err != nil {
				t.Fatal(err)
			}

			if err := store.Append(testEntry("a.mp4", time.Now())); !errors.Is(err, ErrCorruptManifest) {
				t.Errorf("Append() error = %v, want ErrCorruptManifest", err)
			}
			if _, err := store.List(); !errors.Is(err, ErrCorruptManifest) {
				t.Errorf("List() error = %v, want ErrCorruptManifest", err)
			}

			got, err := os.ReadFile(store.Path())
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.doc {
				t.Errorf("manifest rewritten to %s", got)
			}
		})
	}
}

func TestEnsureLayout_KeepsManifestWithoutClips(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := os.MkdirAll(store.MediaDir(), 0755); err != nil {
		t.Fatal(err)
	}
	doc := `{"clips": null}`
	if err := os.WriteFile(store.Path(), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	if err := store.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout() error = %v", err)
	}
	got, _ := os.ReadFile(store.Path())
	if string(got) != doc {
		t.Errorf("EnsureLayout rewrote an existing manifest: %s", got)
	}
}

func TestAppend_MissingManifestFails(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Append(testEntry("a.mp4", time.Now())); err == nil {
		t.Fatal("Append() without a manifest should fail")
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("Append created a manifest instead of failing")
	}
}

func TestAppend_PreservesUnknownFields(t *testing.T) {
	store := NewStore(t.TempDir())
	legacy := `{"version": 2, "clips": [{"name": "old.mp4", "path": "C:/old.mp4", "thumbnail": "x.jpg", "metadata": {"created_at": "2024-01-01T00:00:00Z", "size": 1, "resolution": {"width": 0, "height": 0}, "duration": 0}}]}`
	if err := os.WriteFile(store.Path(), []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	if err := store.Append(testEntry("new.mp4", time.Now())); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, _ := os.ReadFile(store.Path())
	for _, want := range []string{`"version": 2`, `"thumbnail": "x.jpg"`, `"new.mp4"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("manifest missing %s:\n%s", want, data)
		}
	}
}

func TestAppend_ConcurrentAppendsKeepEveryEntry(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatal(err)
	}

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Append(testEntry(fmt.Sprintf("c%d.mp4", i), time.Now()))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != n {
		t.Errorf("len(entries) = %d, want %d", len(entries), n)
	}
}

func TestSidecarPaths(t *testing.T) {
	desktop, mic := SidecarPaths(`C:\Clips\media\clip1.mp4`)
	if desktop != `C:\Clips\media\clip1_desktop.wav` {
		t.Errorf("desktop = %q", desktop)
	}
	if mic != `C:\Clips\media\clip1_mic.wav` {
		t.Errorf("mic = %q", mic)
	}
}

func TestSortNewestFirst(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		testEntry("old", now.Add(-2*time.Hour)),
		testEntry("new", now),
		testEntry("mid", now.Add(-time.Hour)),
	}

	SortNewestFirst(entries)

	got := []string{entries[0].Name, entries[1].Name, entries[2].Name}
	want := []string{"new", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
