// Package client embeds the livefolio browser runtime.
package client

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed src/*.js
var assets embed.FS

// Script is the file name of the runtime.
const Script = "livefolio.js"

// Assets returns the embedded filesystem containing JavaScript files.
func Assets() fs.FS {
	fsys, err := fs.Sub(assets, "src")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Handler returns an HTTP handler that serves the embedded assets.
func Handler() http.Handler {
	return http.FileServer(http.FS(Assets()))
}

// ScriptHandler serves the runtime at any path, for mounting at a fixed URL.
func ScriptHandler() http.Handler {
	data := MustGetFile(Script)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(data)
	})
}

// MustGetFile returns the contents of an embedded file.
// Panics if the file doesn't exist.
func MustGetFile(name string) []byte {
	data, err := assets.ReadFile("src/" + name)
	if err != nil {
		panic(err)
	}
	return data
}

// GetFile returns the contents of an embedded file.
func GetFile(name string) ([]byte, error) {
	return assets.ReadFile("src/" + name)
}
