package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Served for any missing asset, so profiles without an uploaded avatar still render.
const defaultAvatarSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><rect width="200" height="200" fill="#fde7d9"/><circle cx="100" cy="80" r="36" fill="#f4a261"/><path d="M40 180c0-33 27-60 60-60s60 27 60 60z" fill="#f4a261"/></svg>`

// StaticFileServer serves files under dir and falls back to the default avatar.
func StaticFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean("/" + strings.TrimPrefix(r.URL.Path, "/"))
		path := filepath.Join(dir, clean)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "public, max-age=2592000")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write([]byte(defaultAvatarSVG))
	})
}
