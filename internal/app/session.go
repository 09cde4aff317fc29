package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dshills/plaintasks/internal/archive"
	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/config/notify"
	"github.com/dshills/plaintasks/internal/config/watcher"
	"github.com/dshills/plaintasks/internal/datesort"
	"github.com/dshills/plaintasks/internal/fsys"
	"github.com/dshills/plaintasks/internal/linksearch"
	"github.com/dshills/plaintasks/internal/mover"
	"github.com/dshills/plaintasks/internal/mutate"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/stats"
)

// Session runs commands against open documents with the current settings.
//
// Every editing command is one compound edit: it either applies completely
// or leaves the document as it was. Commands with nothing to do end with a
// Notice instead of an error.
type Session struct {
	fs       fsys.FS
	store    *config.Store
	docs     *DocumentManager
	logger   *Logger
	metrics  *Metrics
	resolver *linksearch.Resolver
	clock    func() time.Time
	sub      *notify.Subscription
	watching bool

	// cmdMu serializes commands with settings updates from the watcher.
	cmdMu sync.Mutex

	mu       sync.Mutex
	notices  []Notice
	onNotice func(Notice)
}

// Option configures a Session.
type Option func(*Session)

// WithFS sets the file system documents and archives live on.
func WithFS(fs fsys.FS) Option {
	return func(s *Session) { s.fs = fs }
}

// WithStore sets the settings store.
func WithStore(st *config.Store) Option {
	return func(s *Session) { s.store = st }
}

// WithLogger sets the logger.
func WithLogger(l *Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the time source used for date tags.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.clock = now }
}

// WithNoticeHandler sets a function called for every notice.
func WithNoticeHandler(fn func(Notice)) Option {
	return func(s *Session) { s.onNotice = fn }
}

// NewSession creates a session. Without options it uses the OS file system,
// default settings and a silent logger.
func NewSession(opts ...Option) *Session {
	s := &Session{
		fs:      fsys.OS,
		logger:  NullLogger,
		metrics: NewMetrics(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = config.NewStaticStore(config.Default())
	}
	s.docs = NewDocumentManager(s.fs)
	s.resolver = linksearch.NewResolver(s.fs)
	s.sub = s.store.Subscribe(s.settingsChanged)
	return s
}

// Close stops the link search, the settings subscription and the settings
// watcher started by WatchSettings.
func (s *Session) Close() {
	s.resolver.Stop()
	s.sub.Unsubscribe()
	if s.watching {
		if err := s.store.Close(); err != nil {
			s.logger.WithComponent("config").Warn("closing watcher: %v", err)
		}
	}
}

// WatchSettings reloads the settings files whenever they change on disk,
// until Close.
func (s *Session) WatchSettings(opts ...watcher.Option) error {
	if err := s.store.Watch(opts...); err != nil {
		return NewOperationError("watch", "settings", err)
	}
	s.watching = true
	return nil
}

// SubscribeSettings registers fn for every settings change, failed reloads
// included.
func (s *Session) SubscribeSettings(fn notify.Observer) *notify.Subscription {
	return s.store.Subscribe(fn)
}

// Settings returns the current settings.
func (s *Session) Settings() config.Settings {
	return s.store.Settings()
}

// Metrics returns the command metrics.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Documents returns the open documents.
func (s *Session) Documents() *DocumentManager {
	return s.docs
}

// Open opens the task file at path.
func (s *Session) Open(path string) (*Document, error) {
	doc, err := s.docs.Open(path, s.Settings().Grammar())
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	s.logger.WithComponent("session").Debug("opened %s", doc.Path)
	return doc, nil
}

// Reload reads doc from disk again, dropping unsaved changes, and returns
// the new document.
func (s *Session) Reload(doc *Document) (*Document, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	fresh, err := s.docs.Reload(doc.Path, s.Settings().Grammar())
	if err != nil {
		return nil, NewOperationError("reload", doc.Path, err)
	}
	s.logger.WithComponent("session").Debug("reloaded %s", fresh.Path)
	return fresh, nil
}

// Save writes every modified document.
func (s *Session) Save() error {
	for _, doc := range s.docs.DirtyDocuments() {
		if _, err := doc.Save(s.fs); err != nil {
			return NewOperationError("save", doc.Path, err)
		}
		s.logger.WithComponent("session").Info("saved %s", doc.Path)
	}
	return nil
}

// Notices returns and clears the pending notices.
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

func (s *Session) notify(n Notice) {
	s.mu.Lock()
	s.notices = append(s.notices, n)
	fn := s.onNotice
	s.mu.Unlock()
	if fn != nil {
		fn(n)
	}
}

func (s *Session) settingsChanged(c notify.Change) {
	log := s.logger.WithComponent("config").WithField("source", c.Source)
	if c.Type == notify.ChangeError {
		log.Warn("keeping previous settings: %v", c.Err)
		s.notify(Notice{Op: "config", Level: NoticeWarn, Message: c.Err.Error(), Err: c.Err})
		return
	}
	g := s.Settings().Grammar()
	s.cmdMu.Lock()
	for _, doc := range s.docs.All() {
		doc.Outline.SetGrammar(g)
	}
	s.cmdMu.Unlock()
	log.Info("settings %s: %v", c.Type, c.Keys)
}

// Report describes one command run.
type Report struct {
	Op string
	// Tx is the compound edit, nil when nothing changed.
	Tx *buffer.Transaction
	// Notice is set when the command had nothing to do.
	Notice *Notice
	// Detail is a short human readable summary.
	Detail string
}

// Changed reports whether the command edited the document.
func (r Report) Changed() bool {
	return r.Tx != nil && !r.Tx.Empty()
}

type command func(cfg config.Settings) (*buffer.Transaction, string, error)

// run executes one command, turning benign errors into notices.
func (s *Session) run(op string, doc *Document, fn command) (Report, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	timer := StartTimer()
	log := s.logger.WithComponent("session").WithFields(map[string]any{"op": op, "doc": doc.Name})

	tx, detail, err := fn(s.Settings())
	if err != nil {
		if n, ok := noticeFor(op, err); ok {
			s.notify(n)
			s.metrics.Record(op, timer.Elapsed(), OutcomeNotice)
			log.Info("%s", n.Message)
			return Report{Op: op, Notice: &n, Detail: n.Message}, nil
		}
		s.metrics.Record(op, timer.Elapsed(), OutcomeFailure)
		log.Error("failed: %v", err)
		return Report{Op: op}, NewOperationError(op, doc.Path, err)
	}

	rep := Report{Op: op, Detail: detail}
	if tx != nil && !tx.Empty() {
		rep.Tx = tx
		s.metrics.Record(op, timer.Elapsed(), OutcomeEdit)
		log.WithField("tx", tx.ID).Info("%s (%d changes)", detail, len(tx.Changes))
	} else {
		s.metrics.Record(op, timer.Elapsed(), OutcomeNoop)
		log.Debug("no change")
	}
	return rep, nil
}

func (s *Session) engine(doc *Document, cfg config.Settings) *mutate.Engine {
	return mutate.New(doc.Outline, cfg).WithClock(s.clock)
}

// tasksOn returns the tasks on the 1-based lines.
func tasksOn(doc *Document, lines []int) ([]*outline.Task, error) {
	regions, err := doc.Lines(lines...)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var tasks []*outline.Task
	for _, r := range regions {
		for _, t := range doc.Outline.TasksIn(r) {
			if !seen[t.Region().Begin] {
				seen[t.Region().Begin] = true
				tasks = append(tasks, t)
			}
		}
	}
	if len(tasks) == 0 {
		return nil, ErrNoTask
	}
	return tasks, nil
}

// Complete toggles completion of the tasks on lines.
func (s *Session) Complete(doc *Document, lines []int) (Report, error) {
	return s.run("complete", doc, func(cfg config.Settings) (*buffer.Transaction, string, error) {
		tasks, err := tasksOn(doc, lines)
		if err != nil {
			return nil, "", err
		}
		res, err := s.engine(doc, cfg).Complete(tasks)
		return res.Tx, transitions(res), err
	})
}

// Cancel toggles cancellation of the tasks on lines.
func (s *Session) Cancel(doc *Document, lines []int) (Report, error) {
	return s.run("cancel", doc, func(cfg config.Settings) (*buffer.Transaction, string, error) {
		tasks, err := tasksOn(doc, lines)
		if err != nil {
			return nil, "", err
		}
		res, err := s.engine(doc, cfg).Cancel(tasks)
		return res.Tx, transitions(res), err
	})
}

func transitions(res mutate.Result) string {
	counts := map[string]int{}
	for _, t := range res.Transitions {
		counts[t.To.String()]++
	}
	return fmt.Sprintf("%d task(s) changed %v", len(res.Transitions), counts)
}

// NewTask adds a task below or on each of lines.
func (s *Session) NewTask(doc *Document, lines []int) (Report, error) {
	return s.run("new", doc, func(cfg config.Settings) (*buffer.Transaction, string, error) {
		regions, err := doc.Lines(lines...)
		if err != nil {
			return nil, "", err
		}
		res, err := s.engine(doc, cfg).NewTask(regions)
		return res.Tx, fmt.Sprintf("%d task(s) added", len(res.Carets)), err
	})
}

// Archive moves finished tasks to the archive section, only those on lines
// when lines is not empty.
func (s *Session) Archive(doc *Document, lines []int) (Report, error) {
	return s.run("archive", doc, func(cfg config.Settings) (*buffer.Transaction, string, error) {
		var sel []region.Region
		if len(lines) > 0 {
			var err error
			if sel, err = doc.Lines(lines...); err != nil {
				return nil, "", err
			}
		}
		res, err := archive.Archive(doc.Outline, cfg, sel)
		return res.Tx, fmt.Sprintf("%d task(s) archived", res.Archived), err
	})
}

// Sort orders the archive by date.
func (s *Session) Sort(doc *Document) (Report, error) {
	return s.run("sort", doc, func(cfg config.Settings) (*buffer.Transaction, string, error) {
		res, err := datesort.Sort(doc.Outline, cfg)
		return res.Tx, fmt.Sprintf("%d archived task(s) sorted", res.Entries), err
	})
}

// Move relocates the tasks on lines under path in the section titled
// section.
func (s *Session) Move(doc *Document, lines []int, section string, path []string) (Report, error) {
	return s.run("move", doc, func(cfg config.Settings) (*buffer.Transaction, string, error) {
		tasks, err := tasksOn(doc, lines)
		if err != nil {
			return nil, "", err
		}
		res, err := mover.Move(doc.Outline, cfg, tasks, section, path)
		detail := fmt.Sprintf("%d task(s) moved", res.Moved)
		if len(res.Destination.Created) > 0 {
			detail += fmt.Sprintf(", created %v", res.Destination.Created)
		}
		return res.Tx, detail, err
	})
}

// ArchiveFile appends the subtree at line to the archive file.
func (s *Session) ArchiveFile(doc *Document, line int) (Report, error) {
	return s.run("archive-file", doc, func(cfg config.Settings) (*buffer.Transaction, string, error) {
		regions, err := doc.Lines(line)
		if err != nil {
			return nil, "", err
		}
		res, err := archive.ToFile(s.fs, doc.Outline, cfg, doc.Path, regions[0].Begin, s.clock())
		if res.Notice != nil {
			if n, ok := noticeFor("archive-file", res.Notice); ok {
				s.notify(n)
			}
		}
		return res.Tx, "archived to " + res.Path, err
	})
}

// Stats renders the statistics line of doc.
func (s *Session) Stats(doc *Document) string {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	return stats.Format(doc.Outline, s.Settings())
}

// Tree returns the section, project and task hierarchy of doc.
func (s *Session) Tree(doc *Document) []outline.SectionTree {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	return doc.Outline.Tree()
}

// OpenLink looks for the target of the link on line below roots and the
// document directory, skipping the link_ignore paths. It blocks until the
// search ends or ctx is done.
func (s *Session) OpenLink(ctx context.Context, doc *Document, line int, roots []string) ([]linksearch.Match, Report, error) {
	var matches []linksearch.Match
	rep, err := s.run("open-link", doc, func(cfg config.Settings) (*buffer.Transaction, string, error) {
		regions, err := doc.Lines(line)
		if err != nil {
			return nil, "", err
		}
		link, err := linksearch.ParseLink(doc.Buffer().Substr(regions[0]))
		if err != nil {
			return nil, "", err
		}

		type outcome struct {
			matches []linksearch.Match
			err     error
		}
		done := make(chan outcome, 1)
		all := append([]string{filepath.Dir(doc.Path)}, roots...)
		s.resolver.SetIgnore(linksearch.NewIgnore(cfg.LinkIgnore...))
		s.resolver.Start(ctx, all, link, func(m []linksearch.Match, err error) {
			done <- outcome{m, err}
		})
		select {
		case o := <-done:
			matches = o.matches
			return nil, fmt.Sprintf("%d match(es) for %s", len(o.matches), link.Path), o.err
		case <-ctx.Done():
			s.resolver.Stop()
			return nil, "", ctx.Err()
		}
	})
	return matches, rep, err
}
