package assets

import (
	"hash/fnv"
	"io/fs"
	"strconv"
	"sync"
)

// Resolver maps asset names to cache-busting URLs.
type Resolver struct {
	mu     sync.Mutex
	hashes map[string]string
	fs     fs.FS
	prefix string
	dev    bool
}

var Global *Resolver

func NewResolver(fsys fs.FS, prefix string) *Resolver {
	return &Resolver{fs: fsys, prefix: prefix, hashes: make(map[string]string)}
}

func (r *Resolver) SetDev() {
	r.dev = true
}

func (r *Resolver) IsDev() bool {
	return r.dev
}

func (r *Resolver) FS() fs.FS {
	return r.fs
}

// JS returns the URL for a script. Outside dev mode the URL carries a
// content hash so browsers and webviews pick up new builds.
func (r *Resolver) JS(name string) string {
	if r.dev {
		return r.prefix + name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hashes[name]
	if !ok {
		data, err := fs.ReadFile(r.fs, name)
		if err != nil {
			return r.prefix + name
		}
		h = contentHash(data)
		r.hashes[name] = h
	}
	return r.prefix + name + "?v=" + h
}

// contentHash is the FNV-64a digest of data in hex.
func contentHash(data []byte) string {
	h := fnv.New64a()
	h.Write(data)
	return strconv.FormatUint(h.Sum64(), 16)
}

func JS(name string) string { return Global.JS(name) }
func IsDev() bool           { return Global.IsDev() }
