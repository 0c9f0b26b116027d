package catalog

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// Locator finds the workspace root for a starting directory.
type Locator interface {
	// Root returns the workspace root, or false when start is not inside a workspace.
	Root(start string) (string, bool)
}

// FileLocator treats the nearest ancestor directory containing FileName as
// the workspace root.
type FileLocator struct {
	Fs       afero.Fs
	FileName string
}

// NewFileLocator returns a FileLocator for fileName on fs.
func NewFileLocator(fs afero.Fs, fileName string) *FileLocator {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &FileLocator{Fs: fs, FileName: fileName}
}

// Root walks up from start until a directory holding the catalog file is found.
func (l *FileLocator) Root(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		dir = filepath.Clean(start)
	}
	for {
		info, err := l.Fs.Stat(filepath.Join(dir, l.FileName))
		if err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
