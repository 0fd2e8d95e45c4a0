// Package web embeds the static assets of the HTML dashboard.
//
// Usage in the API server:
//
//	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS())))
package web

import (
	"embed"
	"io/fs"

	log "github.com/sirupsen/logrus"
)

//go:embed static
var static embed.FS

// StaticFS returns a filesystem rooted at the embedded static/ directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		log.Fatalf("web.StaticFS: %v", err)
	}
	return sub
}
