package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSource loads a defaults document from a file system.
type FileSource struct {
	fsys fs.FS
	name string
}

// NewFileSource creates an OS-backed file source for the given path.
func NewFileSource(path string) *FileSource {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return &FileSource{fsys: os.DirFS(dir), name: name}
}

// NewFSSource creates a file source over an arbitrary fs.FS.
func NewFSSource(fsys fs.FS, name string) *FileSource {
	return &FileSource{fsys: fsys, name: name}
}

// Load reads the document.
func (s *FileSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, s.name)
	if err != nil {
		return nil, fmt.Errorf("read defaults %s: %w", s.name, err)
	}
	return data, nil
}

// Stat reports on the underlying file.
func (s *FileSource) Stat() (fs.FileInfo, error) {
	return fs.Stat(s.fsys, s.name)
}
