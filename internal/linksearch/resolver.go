package linksearch

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dshills/plaintasks/internal/fsys"
)

var (
	// ErrNotFound is returned when no root holds the link target.
	ErrNotFound = errors.New("file was not found")

	// ErrStopped is returned by a search that was stopped before it ended.
	ErrStopped = errors.New("search stopped")
)

// Match is a candidate target of a link.
type Match struct {
	Path   string
	Dir    bool
	Line   int
	Column int
}

// DoneFunc receives the outcome of a search. It runs on the search
// goroutine and must not call back into the Resolver.
type DoneFunc func(matches []Match, err error)

// Resolver runs at most one link search at a time.
type Resolver struct {
	fs fsys.FS

	mu     sync.Mutex
	cur    *search
	ignore *Ignore
}

type search struct {
	stop   atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}
	dir    atomic.Value
}

// NewResolver creates a resolver searching fs.
func NewResolver(fs fsys.FS) *Resolver {
	if fs == nil {
		fs = fsys.OS
	}
	return &Resolver{fs: fs, ignore: defaultIgnore}
}

// defaultIgnore skips version control directories.
var defaultIgnore = NewIgnore(".git/", ".hg/", ".svn/")

// SetIgnore sets the patterns of directories later searches skip. A nil
// Ignore restores the default.
func (r *Resolver) SetIgnore(ig *Ignore) {
	if ig == nil {
		ig = defaultIgnore
	}
	r.mu.Lock()
	r.ignore = ig
	r.mu.Unlock()
}

// Start stops and joins the running search, if any, then looks for link
// below every root in a new goroutine. onDone is called exactly once with
// the matches in discovery order.
func (r *Resolver) Start(ctx context.Context, roots []string, link Link, onDone DoneFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	s := &search{cancel: cancel, done: make(chan struct{})}
	s.dir.Store("")
	r.cur = s
	ig := r.ignore

	go func() {
		defer close(s.done)
		defer cancel()
		matches, err := r.run(ctx, s, ig, roots, link)
		if onDone != nil {
			onDone(matches, err)
		}
	}()
}

// Stop stops the running search and waits for it to return.
func (r *Resolver) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Resolver) stopLocked() {
	if r.cur == nil {
		return
	}
	r.cur.stop.Store(true)
	r.cur.cancel()
	<-r.cur.done
	r.cur = nil
}

// Wait blocks until the running search returns.
func (r *Resolver) Wait() {
	r.mu.Lock()
	s := r.cur
	r.mu.Unlock()
	if s != nil {
		<-s.done
	}
}

// Status returns the directory being searched, "" when idle.
func (r *Resolver) Status() string {
	r.mu.Lock()
	s := r.cur
	r.mu.Unlock()
	if s == nil {
		return ""
	}
	select {
	case <-s.done:
		return ""
	default:
		return s.dir.Load().(string)
	}
}

func (r *Resolver) run(ctx context.Context, s *search, ig *Ignore, roots []string, link Link) ([]Match, error) {
	target := filepath.FromSlash(link.Path)
	var matches []Match
	found := make(map[string]bool)
	add := func(p string) {
		info, err := r.fs.Stat(p)
		if err != nil || found[p] {
			return
		}
		found[p] = true
		m := Match{Path: p, Dir: info.IsDir()}
		if !m.Dir {
			m.Line, m.Column = link.Line, link.Column
		}
		matches = append(matches, m)
	}

	if filepath.IsAbs(target) {
		add(filepath.Clean(target))
	}

	roots = append([]string(nil), roots...)
	sort.Strings(roots)
	seen := make(map[string]bool)
	for _, root := range roots {
		err := r.fs.WalkDir(root, func(p string, info fsys.FileInfo, err error) error {
			if s.stop.Load() {
				return ErrStopped
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err != nil {
				// unreadable directory
				return nil
			}
			if !info.IsDir() {
				return nil
			}
			if seen[p] || (p != root && ignored(ig, root, p)) {
				return fsys.SkipDir
			}
			seen[p] = true
			s.dir.Store(p)
			add(filepath.Join(p, target))
			return nil
		})
		if s.stop.Load() || errors.Is(err, ErrStopped) {
			return nil, ErrStopped
		}
		if err != nil {
			return nil, err
		}
	}

	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return matches, nil
}

func ignored(ig *Ignore, root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return ig.Match(filepath.ToSlash(rel), true)
}
