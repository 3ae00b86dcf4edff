package web

import (
	"embed"
	"io/fs"
)

//go:embed static/* templates/*
var assets embed.FS

// subFS roots assets at dir. dir is a literal embedded above, so a failure
// is a build defect.
func subFS(dir string) fs.FS {
	sub, err := fs.Sub(assets, dir)
	if err != nil {
		panic(err)
	}

	return sub
}
