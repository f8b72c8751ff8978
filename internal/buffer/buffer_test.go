package buffer

import (
	"bytes"
	"sync"
	"testing"
)

func TestBuffer_WriteAndSnapshot(t *testing.T) {
	b := New(8)
	b.Write([]byte("abc"))
	b.Write([]byte("de"))

	if got := string(b.Snapshot()); got != "abcde" {
		t.Errorf("Snapshot() = %q, want abcde", got)
	}
	if b.Len() != 5 {
		t.Errorf("Len() = %d, want 5", b.Len())
	}
	if got := string(b.Snapshot()); got != "abcde" {
		t.Error("Snapshot consumed data")
	}
}

func TestBuffer_WrapDropsOldest(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		writes []string
		want   string
	}{
		{"exact fill", 4, []string{"ab", "cd"}, "abcd"},
		{"wrap by one", 4, []string{"abcd", "e"}, "bcde"},
		{"wrap many", 4, []string{"abc", "def", "gh"}, "efgh"},
		{"oversized write", 4, []string{"ab", "0123456789"}, "6789"},
		{"straddles end", 5, []string{"abcd", "efg"}, "cdefg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.size)
			for _, w := range tt.writes {
				n, err := b.Write([]byte(w))
				if err != nil || n != len(w) {
					t.Fatalf("Write(%q) = %d, %v", w, n, err)
				}
			}
			if got := string(b.Snapshot()); got != tt.want {
				t.Errorf("Snapshot() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuffer_ReadConsumes(t *testing.T) {
	b := New(6)
	b.Write([]byte("abcdef"))
	b.Write([]byte("gh"))

	p := make([]byte, 4)
	n, _ := b.Read(p)
	if string(p[:n]) != "cdef" {
		t.Errorf("Read() = %q, want cdef", p[:n])
	}
	n, _ = b.Read(p)
	if string(p[:n]) != "gh" {
		t.Errorf("second Read() = %q, want gh", p[:n])
	}
	if n, _ := b.Read(p); n != 0 {
		t.Errorf("Read() on empty = %d", n)
	}
}

func TestBuffer_ClearAndZeroSize(t *testing.T) {
	b := New(4)
	b.Write([]byte("xy"))
	b.Clear()
	if b.Snapshot() != nil || b.Len() != 0 {
		t.Error("Clear left data behind")
	}

	z := New(0)
	if n, err := z.Write([]byte("abc")); n != 3 || err != nil {
		t.Errorf("zero-size Write() = %d, %v", n, err)
	}
	if z.Snapshot() != nil {
		t.Error("zero-size buffer kept data")
	}
}

func TestBuffer_ConcurrentWritersKeepWindow(t *testing.T) {
	b := New(1024)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chunk := bytes.Repeat([]byte{'z'}, 100)
			for j := 0; j < 50; j++ {
				b.Write(chunk)
				b.Snapshot()
			}
		}()
	}
	wg.Wait()

	if b.Len() != 1024 {
		t.Errorf("Len() = %d, want 1024", b.Len())
	}
}
