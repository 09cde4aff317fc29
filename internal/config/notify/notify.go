// Package notify delivers settings change notifications to observers.
//
// A session subscribes once when a document is opened and receives a
// Change every time the settings files are reloaded.
package notify

import (
	"slices"
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates one or more settings changed value.
	ChangeSet ChangeType = iota

	// ChangeReload indicates the settings were reloaded with no visible change.
	ChangeReload

	// ChangeError indicates a reload failed and the previous settings stay in effect.
	ChangeError
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	case ChangeError:
		return "error"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change struct {
	// Keys lists the settings keys whose value changed.
	Keys []string

	// Type is the type of change.
	Type ChangeType

	// Source identifies where the change came from (usually a file path).
	Source string

	// Err is set for ChangeError.
	Err error
}

// Has reports whether key is among the changed keys.
func (c Change) Has(key string) bool {
	return slices.Contains(c.Keys, key)
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages configuration change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// observers receiving every change
	global map[uint64]Observer

	// observers keyed by the setting they watch
	keyed map[string]map[uint64]Observer

	nextID uint64

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous notification delivery.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		global: make(map[uint64]Observer),
		keyed:  make(map[string]map[uint64]Observer),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}
	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.global[id] = observer
	return &Subscription{id: id, notifier: n}
}

// SubscribeKey registers an observer that only fires when key changed.
func (n *Notifier) SubscribeKey(key string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.keyed[key] == nil {
		n.keyed[key] = make(map[uint64]Observer)
	}
	n.keyed[key][id] = observer
	return &Subscription{id: id, notifier: n}
}

// Notify sends a change notification to all relevant observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}
	n.deliver(change)
}

// Close shuts down the notifier. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.global, id)
	for key, observers := range n.keyed {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.keyed, key)
		}
	}
}

func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	var observers []Observer
	for _, obs := range n.global {
		observers = append(observers, obs)
	}
	seen := make(map[uint64]bool)
	for _, key := range change.Keys {
		for id, obs := range n.keyed[key] {
			if !seen[id] {
				seen[id] = true
				observers = append(observers, obs)
			}
		}
	}
	n.mu.RUnlock()

	// outside the lock so observers may subscribe
	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliver(change)
		case <-n.done:
			for {
				select {
				case change := <-n.buffer:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}
