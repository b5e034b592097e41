package main

import (
	"embed"
	"io/fs"
)

//go:embed assets
var embedded embed.FS

// assets contains the default configuration, scene and scripts.
var assets, _ = fs.Sub(embedded, "assets")
