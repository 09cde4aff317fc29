package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/plaintasks/internal/config/notify"
	"github.com/dshills/plaintasks/internal/config/watcher"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default settings invalid: %v", err)
	}
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	user := writeFile(t, dir, "user.toml", "pending_task = \"[ ]\"\nnew_on_top = false\n")
	project := writeFile(t, dir, "project.yaml", "new_on_top: true\nindent: \"  \"\n")

	s, err := Load(user, filepath.Join(dir, "missing.toml"), project)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Default()
	want.PendingTask = "[ ]"
	want.NewOnTop = true
	want.Indent = "  "
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	bad := writeFile(t, dir, "bad.toml", "pending_task = \n")
	_, err := Load(bad)
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Path != bad {
		t.Errorf("expected ParseError for %s, got %v", bad, err)
	}

	ini := writeFile(t, dir, "settings.ini", "x=1")
	if _, err := Load(ini); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	invalid := writeFile(t, dir, "invalid.yaml", "indent: \"x\"\ncompleted_task: \"☐\"\n")
	if _, err := Load(invalid); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		key    string
	}{
		{"empty glyph", func(s *Settings) { s.PendingTask = "" }, "pending_task"},
		{"padded glyph", func(s *Settings) { s.CancelledTask = " ✘" }, "cancelled_task"},
		{"empty date", func(s *Settings) { s.DateFormat = "" }, "date_format"},
		{"tag with paren", func(s *Settings) { s.DoneTag = "done(" }, "done_tag"},
		{"indent", func(s *Settings) { s.Indent = "--" }, "indent"},
		{"margin", func(s *Settings) { s.BeforeTasksBulletMargin = -1 }, "before_tasks_bullet_margin"},
		{"archive name", func(s *Settings) { s.ArchiveName = " " }, "archive_name"},
		{"wide bar", func(s *Settings) { s.BarEmpty = "[]" }, "bar_empty"},
		{"empty bar", func(s *Settings) { s.BarFull = "" }, "bar_full"},
		{"bad ignore pattern", func(s *Settings) { s.LinkIgnore = []string{"[a-"} }, "link_ignore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(&s)
			err := s.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Key != tt.key {
				t.Errorf("expected validation error on %s, got %v", tt.key, err)
			}
		})
	}
}

func TestGrammarAndMargin(t *testing.T) {
	s := Default()
	s.PendingTask = "❍"
	g := s.Grammar()
	if g.PendingBullets[0] != "❍" || g.ArchiveName != "Archive:" {
		t.Errorf("unexpected grammar %+v", g)
	}
	if s.Margin() != "\t" {
		t.Errorf("Margin() with tab indent = %q", s.Margin())
	}
	s.Indent = "    "
	s.BeforeTasksBulletMargin = 2
	if s.Margin() != "  " {
		t.Errorf("Margin() = %q, want two spaces", s.Margin())
	}
}

func TestDiff(t *testing.T) {
	a := Default()
	b := a
	b.NewOnTop = false
	b.Indent = "  "
	b.LinkIgnore = []string{"node_modules/"}
	if diff := cmp.Diff([]string{"new_on_top", "indent", "link_ignore"}, a.Diff(b)); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreReloadNotifies(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.toml", "new_on_top = true\n")

	st, err := NewStore(p)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	defer st.Close()

	var got []notify.Change
	st.Subscribe(func(c notify.Change) { got = append(got, c) })

	writeFile(t, dir, "config.toml", "new_on_top = false\n")
	if err := st.Reload(p); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if st.Settings().NewOnTop {
		t.Error("reload did not apply new_on_top")
	}

	writeFile(t, dir, "config.toml", "indent = \"x\"\n")
	if err := st.Reload(p); err == nil {
		t.Error("expected reload of invalid settings to fail")
	}
	if st.Settings().Indent != "\t" {
		t.Error("failed reload must keep previous settings")
	}

	if len(got) != 2 || !got[0].Has("new_on_top") || got[1].Type != notify.ChangeError {
		t.Errorf("unexpected notifications %+v", got)
	}
}

func TestStoreWatch(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, ".plaintasks.toml", "bar_full = \"#\"\n")

	st, err := NewStore(p)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	defer st.Close()

	changed := make(chan notify.Change, 4)
	st.SubscribeKey("bar_full", func(c notify.Change) { changed <- c })
	if err := st.Watch(watcher.WithDebounce(10 * time.Millisecond)); err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	writeFile(t, dir, ".plaintasks.toml", "bar_full = \"=\"\n")
	select {
	case <-changed:
		if st.Settings().BarFull != "=" {
			t.Errorf("BarFull = %q after reload", st.Settings().BarFull)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
