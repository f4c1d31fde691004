package tools

import (
	"io/fs"
	"os"
)

// DataProvider reads generated artifacts. Names are slash-separated and
// relative to the provider root (e.g. "main-indexer/default/swagger.index").
//
// Implementations:
//   - dirDataProvider: a directory on disk
//   - MockDataProvider: in-memory files for tests
type DataProvider interface {
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// dirDataProvider serves files below a root directory. Names escaping the
// root are rejected by fs.ValidPath.
type dirDataProvider struct {
	root string
	fsys fs.FS
}

// NewDirDataProvider returns a provider rooted at dir.
func NewDirDataProvider(dir string) DataProvider {
	return &dirDataProvider{root: dir, fsys: os.DirFS(dir)}
}

func (p *dirDataProvider) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(p.fsys, name)
}

func (p *dirDataProvider) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(p.fsys, name)
}
