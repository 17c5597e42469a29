package vfs

import (
	"bytes"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"
)

type fileInfo struct {
	name string
	size int64
	mode fs.FileMode
	mod  time.Time
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi fileInfo) ModTime() time.Time { return fi.mod }
func (fi fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fileInfo) Sys() any           { return nil }

// MemFS is an in-memory FileSystem. Parent directories are created
// implicitly. Modification times strictly increase on every write.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memEntry
	dirs  map[string]struct{}
	clock time.Time
}

type memEntry struct {
	data []byte
	mod  time.Time
}

func NewMem() *MemFS {
	return &MemFS{
		files: make(map[string]*memEntry),
		dirs:  map[string]struct{}{"": {}},
	}
}

func norm(p string) string {
	q := Clean(p)
	q = strings.TrimPrefix(q, "/")
	if q == "." {
		return ""
	}
	return q
}

// tick returns a timestamp after every previously returned one.
// Callers hold m.mu.
func (m *MemFS) tick() time.Time {
	now := time.Now()
	if !now.After(m.clock) {
		now = m.clock.Add(time.Nanosecond)
	}
	m.clock = now
	return now
}

func (m *MemFS) ensureDir(p string) {
	cur := ""
	for _, part := range strings.Split(norm(p), "/") {
		if part == "" {
			continue
		}
		cur = path.Join(cur, part)
		m.dirs[cur] = struct{}{}
	}
}

// Open returns a read handle over a snapshot of the file contents.
func (m *MemFS) Open(name string) (File, error) {
	key := norm(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	e := m.files[key]
	if e == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memHandle{
		fs:   m,
		key:  key,
		info: fileInfo{name: path.Base(key), size: int64(len(e.data)), mod: e.mod},
		r:    bytes.NewReader(e.data),
	}, nil
}

// Create truncates or creates the file and returns a write handle.
func (m *MemFS) Create(name string) (File, error) {
	key := norm(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, isDir := m.dirs[key]; isDir {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
	}
	m.ensureDir(path.Dir(key))
	e := &memEntry{mod: m.tick()}
	m.files[key] = e
	return &memHandle{fs: m, key: key, info: fileInfo{name: path.Base(key), mod: e.mod}}, nil
}

func (m *MemFS) MkdirAll(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, isFile := m.files[norm(name)]; isFile {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	m.ensureDir(name)
	return nil
}

func (m *MemFS) Stat(name string) (fs.FileInfo, error) {
	key := norm(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e := m.files[key]; e != nil {
		return fileInfo{name: path.Base(key), size: int64(len(e.data)), mod: e.mod}, nil
	}
	if _, ok := m.dirs[key]; ok {
		return fileInfo{name: path.Base(key), mode: fs.ModeDir | 0755}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// Remove deletes a file.
func (m *MemFS) Remove(name string) error {
	key := norm(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(m.files, key)
	return nil
}

func (m *MemFS) write(key string, p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.files[key]
	if e == nil {
		// removed while open
		e = &memEntry{}
		m.files[key] = e
	}
	e.data = append(e.data, p...)
	e.mod = m.tick()
}

// memHandle is an open MemFS file. Handles from Open only read, handles
// from Create only write.
type memHandle struct {
	fs     *MemFS
	key    string
	info   fileInfo
	r      *bytes.Reader
	closed bool
}

func (h *memHandle) Read(p []byte) (int, error) {
	if h.closed {
		return 0, fs.ErrClosed
	}
	if h.r == nil {
		return 0, &fs.PathError{Op: "read", Path: h.key, Err: fs.ErrPermission}
	}
	return h.r.Read(p)
}

func (h *memHandle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, fs.ErrClosed
	}
	if h.r != nil {
		return 0, &fs.PathError{Op: "write", Path: h.key, Err: fs.ErrPermission}
	}
	h.fs.write(h.key, p)
	h.info.size += int64(len(p))
	return len(p), nil
}

func (h *memHandle) Close() error {
	if h.closed {
		return fs.ErrClosed
	}
	h.closed = true
	return nil
}

func (h *memHandle) Stat() (fs.FileInfo, error) { return h.info, nil }
