// Package assets embeds the shaders and models the renderer ships with, so the binary runs from
// any directory.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed shaders/*.wgsl models/*.obj models/*.mtl
var files embed.FS

// Shaders returns the embedded shader directory. Names are relative to it, e.g. "terrain.wgsl".
func Shaders() fs.FS {
	return sub("shaders")
}

// Models returns the embedded model directory.
func Models() fs.FS {
	return sub("models")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		panic("assets: " + err.Error())
	}
	return f
}
