package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/plaintasks/internal/archive"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/config/notify"
	"github.com/dshills/plaintasks/internal/config/watcher"
	"github.com/dshills/plaintasks/internal/fsys"
	"github.com/dshills/plaintasks/internal/linksearch"
)

var fixedNow = func() time.Time { return time.Date(2020, 1, 2, 15, 4, 0, 0, time.UTC) }

func newTestSession(t *testing.T, files map[string]string, opts ...Option) (*Session, *fsys.MemFS) {
	t.Helper()
	m := fsys.NewMemFS()
	for p, content := range files {
		m.AddFile(p, content)
	}
	s := NewSession(append([]Option{WithFS(m), WithClock(fixedNow)}, opts...)...)
	t.Cleanup(s.Close)
	return s, m
}

func open(t *testing.T, s *Session, path string) *Document {
	t.Helper()
	doc, err := s.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return doc
}

func TestSessionCompleteAndSave(t *testing.T) {
	s, m := newTestSession(t, map[string]string{"/w/todo.todo": "Work:\n\t☐ a\n\t☐ b\n"})
	doc := open(t, s, "/w/todo.todo")

	rep, err := s.Complete(doc, []int{2})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !rep.Changed() || rep.Notice != nil {
		t.Errorf("unexpected report %+v", rep)
	}
	if !doc.IsModified() {
		t.Error("document should be modified")
	}

	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := m.ReadFile("/w/todo.todo")
	want := "Work:\n\t✔ a @done(20-01-02 15:04)\n\t☐ b\n"
	if string(data) != want {
		t.Errorf("saved %q, want %q", data, want)
	}
	if doc.IsModified() {
		t.Error("document still modified after save")
	}

	if got := s.Metrics().Snapshot()["complete"]; got.Runs != 1 || got.Edits != 1 {
		t.Errorf("metrics = %+v", got)
	}
}

func TestSessionOpenReturnsSameDocument(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{"/w/a.todo": "☐ a\n"})
	first := open(t, s, "/w/a.todo")
	second := open(t, s, "/w/../w/a.todo")
	if first != second {
		t.Error("opening the same path twice gave two documents")
	}
	if _, err := s.Open("/w/missing.todo"); err == nil {
		t.Error("expected an error opening a missing file")
	}
}

func TestSessionNotices(t *testing.T) {
	var handled []Notice
	s, _ := newTestSession(t, map[string]string{"/w/todo.todo": "Work:\n\t☐ a\n"},
		WithNoticeHandler(func(n Notice) { handled = append(handled, n) }))
	doc := open(t, s, "/w/todo.todo")

	tests := []struct {
		name string
		run  func() (Report, error)
		want error
	}{
		{"complete a project line", func() (Report, error) { return s.Complete(doc, []int{1}) }, ErrNoTask},
		{"archive without finished tasks", func() (Report, error) { return s.Archive(doc, nil) }, nil},
		{"sort without archive", func() (Report, error) { return s.Sort(doc) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := tt.run()
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if rep.Notice == nil || rep.Changed() {
				t.Fatalf("expected a notice, got %+v", rep)
			}
			if tt.want != nil && !errors.Is(rep.Notice.Err, tt.want) {
				t.Errorf("notice error = %v, want %v", rep.Notice.Err, tt.want)
			}
		})
	}

	if doc.IsModified() {
		t.Error("notices modified the document")
	}
	if got := len(s.Notices()); got != len(tests) {
		t.Errorf("%d notices queued, want %d", got, len(tests))
	}
	if len(s.Notices()) != 0 {
		t.Error("Notices did not clear the queue")
	}
	if len(handled) != len(tests) {
		t.Errorf("handler saw %d notices", len(handled))
	}
}

func TestSessionLineOutOfRange(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{"/w/todo.todo": "☐ a\n"})
	doc := open(t, s, "/w/todo.todo")

	_, err := s.Cancel(doc, []int{5})
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "cancel" || !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("expected a cancel OperationError, got %v", err)
	}
	if got := s.Metrics().Snapshot()["cancel"]; got.Failures != 1 {
		t.Errorf("metrics = %+v", got)
	}
}

func TestSessionCommands(t *testing.T) {
	text := "Inbox:\n\t☐ a\n\t✔ b @done(20-01-01 10:00)\n"
	tests := []struct {
		name string
		run  func(s *Session, doc *Document) (Report, error)
		want string
	}{
		{
			name: "new task",
			run:  func(s *Session, doc *Document) (Report, error) { return s.NewTask(doc, []int{2}) },
			want: "Inbox:\n\t☐ a\n\t☐ \n\t✔ b @done(20-01-01 10:00)\n",
		},
		{
			name: "archive",
			run:  func(s *Session, doc *Document) (Report, error) { return s.Archive(doc, nil) },
			want: "Inbox:\n\t☐ a\n\n\n" + archive.Separator + "\nArchive:\n\t✔ b @done(20-01-01 10:00) @project(Inbox)\n",
		},
		{
			name: "move",
			run: func(s *Session, doc *Document) (Report, error) {
				return s.Move(doc, []int{2}, "Inbox", []string{"Later"})
			},
			want: "Inbox:\n\t✔ b @done(20-01-01 10:00)\nLater:\n\t☐ a\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, map[string]string{"/w/todo.todo": text})
			doc := open(t, s, "/w/todo.todo")
			rep, err := tt.run(s, doc)
			if err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if !rep.Changed() {
				t.Fatalf("command did not edit: %+v", rep)
			}
			if diff := cmp.Diff(tt.want, doc.Buffer().Text()); diff != "" {
				t.Errorf("text mismatch (-want +got):\n%s", diff)
			}
			if !doc.Buffer().Undo() || doc.Buffer().Text() != text {
				t.Error("the command was not a single undoable edit")
			}
		})
	}
}

func TestSessionArchiveFileMaskNotice(t *testing.T) {
	cfg := config.Default()
	cfg.ArchiveFileMask = "{bogus}"
	s, m := newTestSession(t, map[string]string{"/w/x.todo": "Done:\n\t✔ b\nKeep:\n"},
		WithStore(config.NewStaticStore(cfg)))
	doc := open(t, s, "/w/x.todo")

	rep, err := s.ArchiveFile(doc, 1)
	if err != nil {
		t.Fatalf("ArchiveFile: %v", err)
	}
	if !rep.Changed() || doc.Buffer().Text() != "Keep:\n" {
		t.Errorf("document = %q", doc.Buffer().Text())
	}
	if _, err := m.ReadFile("/w/x_archive.todo"); err != nil {
		t.Errorf("archive file not written: %v", err)
	}
	notices := s.Notices()
	if len(notices) != 1 || notices[0].Level != NoticeWarn {
		t.Errorf("notices = %+v", notices)
	}
}

func TestSessionStatsAndTree(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{"/w/x.todo": "P:\n\t☐ a\n\t✔ b @done(20-01-01 10:00)\n"})
	doc := open(t, s, "/w/x.todo")

	if got, want := s.Stats(doc), "1/2 done (50%) ■■■■■□□□□□ Last task @done (20-01-01 10:00)"; got != want {
		t.Errorf("stats = %q, want %q", got, want)
	}
	tree := s.Tree(doc)
	if len(tree) != 1 || len(tree[0].Nodes) != 1 || len(tree[0].Nodes[0].Children) != 2 {
		t.Errorf("unexpected tree %+v", tree)
	}
}

func TestSessionOpenLink(t *testing.T) {
	s, _ := newTestSession(t, map[string]string{
		"/w/todo.todo":      "☐ read ./docs/readme.md:3\n☐ nothing here\n",
		"/w/docs/readme.md": "",
	})
	doc := open(t, s, "/w/todo.todo")

	matches, rep, err := s.OpenLink(context.Background(), doc, 1, nil)
	if err != nil {
		t.Fatalf("OpenLink: %v", err)
	}
	want := []linksearch.Match{{Path: "/w/docs/readme.md", Line: 3}}
	if diff := cmp.Diff(want, matches); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
	if rep.Notice != nil {
		t.Errorf("unexpected notice %+v", rep.Notice)
	}

	_, rep, err = s.OpenLink(context.Background(), doc, 2, nil)
	if err != nil || rep.Notice == nil || !errors.Is(rep.Notice.Err, linksearch.ErrNoLink) {
		t.Errorf("expected a no-link notice, got %+v, %v", rep, err)
	}
}

func TestSessionFollowsSettings(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".plaintasks.toml")
	if err := os.WriteFile(p, []byte("archive_name = \"Archive:\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := config.NewStore(p)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s, _ := newTestSession(t, map[string]string{"/w/x.todo": "☐ a\nDone:\n\t✔ b @done(20-01-01 10:00)\n"},
		WithStore(store))
	doc := open(t, s, "/w/x.todo")
	if _, ok := doc.Outline.ArchiveMarker(); ok {
		t.Fatal("no archive heading expected yet")
	}

	if err := os.WriteFile(p, []byte("archive_name = \"Done:\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(p); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, ok := doc.Outline.ArchiveMarker(); !ok {
		t.Error("document did not pick up the new archive name")
	}

	if err := os.WriteFile(p, []byte("archive_name = [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(p); err == nil {
		t.Fatal("expected a parse error")
	}
	if s.Settings().ArchiveName != "Done:" {
		t.Error("a failed reload replaced the settings")
	}
	if n := s.Notices(); len(n) != 1 || n[0].Level != NoticeWarn {
		t.Errorf("notices = %+v", n)
	}
}

func TestSessionReload(t *testing.T) {
	s, m := newTestSession(t, map[string]string{"/w/todo.todo": "☐ a\n"})
	doc := open(t, s, "/w/todo.todo")
	if _, err := s.Complete(doc, []int{1}); err != nil {
		t.Fatal(err)
	}

	m.AddFile("/w/todo.todo", "☐ a\n☐ b\n")
	fresh, err := s.Reload(doc)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if fresh.IsModified() {
		t.Error("a reloaded document should be unmodified")
	}
	if got := fresh.Outline.Buffer().Text(); got != "☐ a\n☐ b\n" {
		t.Errorf("text = %q", got)
	}
	if again := open(t, s, "/w/todo.todo"); again != fresh {
		t.Error("Open should return the reloaded document")
	}

	if _, err := s.Reload(&Document{Path: "/w/gone.todo"}); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSessionWatchSettings(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".plaintasks.toml")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := config.NewStore(p)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s, _ := newTestSession(t, nil, WithStore(store))

	changed := make(chan struct{}, 1)
	sub := s.SubscribeSettings(func(notify.Change) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	if err := s.WatchSettings(watcher.WithDebounce(10 * time.Millisecond)); err != nil {
		t.Fatalf("WatchSettings: %v", err)
	}
	if err := os.WriteFile(p, []byte("archive_name = \"Done:\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no settings change observed")
	}
	if got := s.Settings().ArchiveName; got != "Done:" {
		t.Errorf("ArchiveName = %q", got)
	}
}
