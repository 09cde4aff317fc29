package fsys

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// MemFS implements FS in memory. Paths are slash separated and rooted at
// "/". It is used in tests.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
	now   time.Time
}

var _ FS = (*MemFS)(nil)

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
		now:   time.Now(),
	}
}

// AddFile adds a file, creating its parent directories.
func (m *MemFS) AddFile(p, content string) {
	p = clean(p)
	_ = m.MkdirAll(path.Dir(p), 0o755)
	m.mu.Lock()
	m.files[p] = []byte(content)
	m.mu.Unlock()
}

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = clean(p)
	data, ok := m.files[p]
	if !ok {
		if m.dirs[p] {
			return nil, &fs.PathError{Op: "read", Path: p, Err: syscall.EISDIR}
		}
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteFile writes data to a file. The parent directory must exist.
func (m *MemFS) WriteFile(p string, data []byte, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	if err := m.checkParent("write", p); err != nil {
		return err
	}
	m.files[p] = append([]byte(nil), data...)
	return nil
}

// AppendFile appends data to a file, creating it if necessary.
func (m *MemFS) AppendFile(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	if err := m.checkParent("append", p); err != nil {
		return err
	}
	m.files[p] = append(m.files[p], data...)
	return nil
}

func (m *MemFS) checkParent(op, p string) error {
	if m.dirs[p] {
		return &fs.PathError{Op: op, Path: p, Err: syscall.EISDIR}
	}
	dir := path.Dir(p)
	if _, ok := m.files[dir]; ok {
		return &fs.PathError{Op: op, Path: p, Err: syscall.ENOTDIR}
	}
	if !m.dirs[dir] {
		return &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
	}
	return nil
}

// MkdirAll creates a directory and all parent directories.
func (m *MemFS) MkdirAll(p string, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	var todo []string
	for d := p; d != "/"; d = path.Dir(d) {
		if _, ok := m.files[d]; ok {
			return &fs.PathError{Op: "mkdir", Path: d, Err: syscall.ENOTDIR}
		}
		todo = append(todo, d)
	}
	for _, d := range todo {
		m.dirs[d] = true
	}
	return nil
}

// Stat returns file information.
func (m *MemFS) Stat(p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stat(clean(p))
}

func (m *MemFS) stat(p string) (FileInfo, error) {
	if data, ok := m.files[p]; ok {
		return NewFileInfo(p, path.Base(p), int64(len(data)), 0o644, m.now), nil
	}
	if m.dirs[p] {
		return NewFileInfo(p, path.Base(p), 0, fs.ModeDir|0o755, m.now), nil
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
}

// Abs returns the cleaned rooted path.
func (m *MemFS) Abs(p string) (string, error) {
	return clean(p), nil
}

// WalkDir walks the file tree rooted at root.
func (m *MemFS) WalkDir(root string, fn WalkDirFunc) error {
	root = clean(root)
	info, err := m.Stat(root)
	if err != nil {
		return fn(root, FileInfo{}, err)
	}
	err = m.walk(root, info, fn)
	if err == SkipDir || err == SkipAll {
		return nil
	}
	return err
}

func (m *MemFS) walk(p string, info FileInfo, fn WalkDirFunc) error {
	if err := fn(p, info, nil); err != nil {
		if err == SkipDir && info.IsDir() {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}
	for _, child := range m.children(p) {
		if err := m.walk(child.Path(), child, fn); err != nil {
			return err
		}
	}
	return nil
}

// children returns the direct entries of dir sorted by name.
func (m *MemFS) children(dir string) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	var out []FileInfo
	add := func(p string) {
		rest := strings.TrimPrefix(p, prefix)
		if p == dir || !strings.HasPrefix(p, prefix) || strings.Contains(rest, "/") {
			return
		}
		info, _ := m.stat(p)
		out = append(out, info)
	}
	for p := range m.files {
		add(p)
	}
	for p := range m.dirs {
		add(p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func clean(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return p
}
