// Package buffer holds the rolling replay window for captured streams.
package buffer

import "sync"

// Buffer is a fixed-size circular byte buffer safe for one writer and any
// number of readers. When full, writes overwrite the oldest bytes.
type Buffer struct {
	mu   sync.Mutex
	buf  []byte
	head int // absolute write position
	tail int // absolute read position
	size int
}

func New(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	return &Buffer{
		buf:  make([]byte, size),
		size: size,
	}
}

// Write appends p, dropping the oldest data if needed. Only the last Size()
// bytes of an oversized p are kept. Write never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	written := len(p)
	if b.size == 0 {
		return written, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(p) > b.size {
		p = p[len(p)-b.size:]
	}
	n := len(p)

	if free := b.size - (b.head - b.tail); free < n {
		b.tail += n - free
	}

	at := b.head % b.size
	c := copy(b.buf[at:], p)
	copy(b.buf, p[c:])
	b.head += n
	return written, nil
}

// Read consumes up to len(p) of the oldest bytes.
func (b *Buffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := min(len(p), b.head-b.tail)
	if n <= 0 {
		return 0, nil
	}
	b.copyOut(p[:n])
	b.tail += n
	return n, nil
}

// Snapshot returns a copy of the buffered bytes, oldest first, without
// consuming them.
func (b *Buffer) Snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.head - b.tail
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	b.copyOut(out)
	return out
}

// copyOut fills dst from tail. Caller holds mu.
func (b *Buffer) copyOut(dst []byte) {
	at := b.tail % b.size
	c := copy(dst, b.buf[at:])
	copy(dst[c:], b.buf)
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.tail = 0
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.head - b.tail
}

func (b *Buffer) Size() int {
	return b.size
}
