//go:build dev

package assets

import (
	"io/fs"
	"os"
)

// DistFS reads assets from disk so edits show up without a rebuild.
func DistFS() fs.FS {
	dir := "components/assets/dist"
	if env := os.Getenv("GEOBRIDGE_ASSETS_DIR"); env != "" {
		dir = env
	}
	return os.DirFS(dir)
}

func init() {
	Global = NewResolver(DistFS(), "/assets/")
	Global.SetDev()
}
