// Package web serves the embedded front-end bundle.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

// Prefix is the URL path the bundle is mounted under.
const Prefix = "/static/"

//go:embed static
var assets embed.FS

// Assets returns the bundle rooted at the static directory.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Handler serves the bundle; mount it at Prefix.
func Handler() http.Handler {
	return http.StripPrefix(Prefix, http.FileServerFS(Assets()))
}
