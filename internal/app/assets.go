package app

import (
	"io/fs"
	"net/http"

	"launchpad/internal/playback"

	"github.com/go-chi/chi/v5"
	"github.com/wailsapp/wails/v3/pkg/application"
)

// NewAssetHandler serves player blobs under /blob and the frontend bundle
// everywhere else.
func NewAssetHandler(assets fs.FS, registry *playback.Registry) http.Handler {
	return newAssetRouter(application.AssetFileServerFS(assets), registry)
}

func newAssetRouter(frontend http.Handler, registry *playback.Registry) http.Handler {
	r := chi.NewRouter()
	r.Mount(playback.BlobPrefix, registry.Handler())
	r.Handle("/*", frontend)
	return r
}
