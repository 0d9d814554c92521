// Package site serves the embedded scoreboard page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the scoreboard routes to mux. The page itself is served
// at the root; its assets live under /board/.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("GET /board/", http.StripPrefix("/board", files))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, staticFS, "static/index.html")
	})
}
