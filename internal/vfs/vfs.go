// Package vfs abstracts the file operations used by the build driver so
// that builds can run against memory in tests, and watches files for
// changes.
package vfs

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// File represents an open file handle within a FileSystem.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Stat() (fs.FileInfo, error)
}

// FileSystem abstracts basic filesystem operations.
type FileSystem interface {
	Open(name string) (File, error)
	Create(name string) (File, error)
	MkdirAll(name string, perm fs.FileMode) error
	Stat(name string) (fs.FileInfo, error)
}

// ReadFile reads the whole named file.
func ReadFile(fsys FileSystem, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// WriteFile creates or truncates the named file and writes data to it.
func WriteFile(fsys FileSystem, name string, data []byte) error {
	f, err := fsys.Create(name)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// WatchOp indicates a change operation in the filesystem.
type WatchOp uint32

const (
	OpCreate WatchOp = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Has reports whether op includes other.
func (op WatchOp) Has(other WatchOp) bool { return op&other != 0 }

func (op WatchOp) String() string {
	var parts []string
	for _, x := range []struct {
		op   WatchOp
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	} {
		if op.Has(x.op) {
			parts = append(parts, x.name)
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Event describes a filesystem change event.
type Event struct {
	Path string
	Op   WatchOp
	Time time.Time
}

// Watcher provides a platform-independent file watching API.
type Watcher interface {
	Events() <-chan Event
	Errors() <-chan error
	Add(name string) error
	Remove(name string) error
	Close() error
}

// ErrClosed is returned when adding to a closed watcher.
var ErrClosed = errors.New("vfs: watcher closed")

// Clean returns the shortest slash-separated path equivalent to p.
func Clean(p string) string { return path.Clean(filepath.ToSlash(p)) }
