package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/plaintasks/internal/config/notify"
	"github.com/dshills/plaintasks/internal/config/watcher"
)

// Store owns the current Settings of one session.
type Store struct {
	mu       sync.RWMutex
	paths    []string
	settings Settings

	notifier *notify.Notifier
	watcher  *watcher.Watcher
}

// NewStore loads the settings layers in paths and returns a store holding
// the result.
func NewStore(paths ...string) (*Store, error) {
	s, err := Load(paths...)
	if err != nil {
		return nil, err
	}
	return &Store{
		paths:    paths,
		settings: s,
		notifier: notify.New(),
	}, nil
}

// NewStaticStore returns a store holding s that never reloads.
func NewStaticStore(s Settings) *Store {
	return &Store{settings: s, notifier: notify.New()}
}

// Settings returns the current settings value.
func (st *Store) Settings() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings
}

// Paths returns the settings layers the store reads.
func (st *Store) Paths() []string {
	return st.paths
}

// Reload reads the settings layers again. On failure the current settings
// are kept, observers receive a ChangeError and the error is returned.
func (st *Store) Reload(source string) error {
	next, err := Load(st.paths...)
	if err != nil {
		st.notifier.Notify(notify.Change{Type: notify.ChangeError, Source: source, Err: err})
		return err
	}

	st.mu.Lock()
	keys := st.settings.Diff(next)
	st.settings = next
	st.mu.Unlock()

	change := notify.Change{Keys: keys, Type: notify.ChangeSet, Source: source}
	if len(keys) == 0 {
		change.Type = notify.ChangeReload
	}
	st.notifier.Notify(change)
	return nil
}

// Subscribe registers fn to run after every reload.
func (st *Store) Subscribe(fn notify.Observer) *notify.Subscription {
	return st.notifier.Subscribe(fn)
}

// SubscribeKey registers fn to run when the named setting changes.
func (st *Store) SubscribeKey(key string, fn notify.Observer) *notify.Subscription {
	return st.notifier.SubscribeKey(key, fn)
}

// Watch starts reloading whenever one of the settings files changes.
func (st *Store) Watch(opts ...watcher.Option) error {
	w, err := watcher.New(opts...)
	if err != nil {
		return err
	}
	for _, p := range st.paths {
		if _, err := os.Stat(filepath.Dir(p)); err != nil {
			continue
		}
		if err := w.Watch(p); err != nil {
			w.Close()
			return err
		}
	}
	w.OnChange(func(e watcher.Event) {
		_ = st.Reload(e.Path)
	})
	w.Start()

	st.mu.Lock()
	st.watcher = w
	st.mu.Unlock()
	return nil
}

// Close stops the watcher and the notifier.
func (st *Store) Close() error {
	st.mu.Lock()
	w := st.watcher
	st.watcher = nil
	st.mu.Unlock()

	var err error
	if w != nil {
		err = w.Close()
	}
	st.notifier.Close()
	return err
}
