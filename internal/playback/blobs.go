package playback

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BlobPrefix is where Handler is expected to be mounted.
const BlobPrefix = "/blob"

// Blob is a transient in-memory media reference the webview can load.
type Blob struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type blobData struct {
	data        []byte
	contentType string
}

// Registry holds blob bytes until they are revoked. Every Create must be
// paired with a Revoke or the bytes stay in memory.
type Registry struct {
	mu    sync.RWMutex
	blobs map[string]blobData
}

func NewRegistry() *Registry {
	return &Registry{blobs: make(map[string]blobData)}
}

func (r *Registry) Create(data []byte, contentType string) Blob {
	id := uuid.NewString()

	r.mu.Lock()
	r.blobs[id] = blobData{data: data, contentType: contentType}
	r.mu.Unlock()

	return Blob{
		ID:          id,
		URL:         BlobPrefix + "/" + id,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
}

// Revoke releases id. It reports whether the blob existed.
func (r *Registry) Revoke(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.blobs[id]
	delete(r.blobs, id)
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

func (r *Registry) get(id string) (blobData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[id]
	return b, ok
}

// Handler serves blobs at /{id} with byte-range support, so media
// elements can seek without fetching the whole clip.
func (r *Registry) Handler() http.Handler {
	router := chi.NewRouter()
	router.Get("/{id}", r.serve)
	router.Head("/{id}", r.serve)
	return router
}

func (r *Registry) serve(w http.ResponseWriter, req *http.Request) {
	blob, ok := r.get(chi.URLParam(req, "id"))
	if !ok {
		http.Error(w, "blob not found", http.StatusNotFound)
		return
	}

	size := int64(len(blob.data))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", blob.contentType)
	w.Header().Set("Cache-Control", "no-store")

	rng, err := ParseRange(req.Header.Get("Range"), size)
	switch {
	case err == ErrUnsatisfiable:
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	case err != nil || rng == nil:
		// malformed ranges fall back to the whole body
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if req.Method != http.MethodHead {
			bytes.NewReader(blob.data).WriteTo(w)
		}
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(rng.ContentLength(), 10))
	w.Header().Set("Content-Range", rng.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)
	if req.Method != http.MethodHead {
		w.Write(blob.data[rng.Start : rng.End+1])
	}
}
