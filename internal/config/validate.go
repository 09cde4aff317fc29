package config

import (
	"errors"
	"path"
	"strings"

	"github.com/rivo/uniseg"
)

// Validate checks every setting and returns all failures joined.
func (s Settings) Validate() error {
	var errs []error
	fail := func(key, msg string, v any) {
		errs = append(errs, &ValidationError{Key: key, Message: msg, Value: v})
	}

	glyphs := map[string]string{
		"pending_task":   s.PendingTask,
		"completed_task": s.CompletedTask,
		"cancelled_task": s.CancelledTask,
	}
	for _, key := range []string{"pending_task", "completed_task", "cancelled_task"} {
		g := glyphs[key]
		if g == "" || strings.TrimSpace(g) != g || strings.ContainsAny(g, "\t\n") {
			fail(key, "must be a non-empty glyph without surrounding whitespace", g)
		}
	}
	if s.PendingTask == s.CompletedTask || s.PendingTask == s.CancelledTask || s.CompletedTask == s.CancelledTask {
		fail("pending_task", "status glyphs must differ", s.PendingTask)
	}

	if s.DateFormat == "" {
		fail("date_format", "must not be empty", s.DateFormat)
	}
	for key, tag := range map[string]string{"done_tag": s.DoneTag, "cancelled_tag": s.CancelledTag} {
		if tag == "" || strings.ContainsAny(tag, " \t\n@()") {
			fail(key, "must be a bare tag name", tag)
		}
	}
	if strings.TrimSpace(s.ArchiveName) == "" || strings.Contains(s.ArchiveName, "\n") {
		fail("archive_name", "must be a single non-empty line", s.ArchiveName)
	}
	if s.Indent == "" || strings.Trim(s.Indent, " \t") != "" {
		fail("indent", "must be spaces or tabs", s.Indent)
	}
	if s.BeforeTasksBulletMargin < 0 {
		fail("before_tasks_bullet_margin", "must not be negative", s.BeforeTasksBulletMargin)
	}
	if strings.Contains(s.TasksBulletSpace, "\n") {
		fail("tasks_bullet_space", "must not contain a newline", s.TasksBulletSpace)
	}
	for key, bar := range map[string]string{"bar_full": s.BarFull, "bar_empty": s.BarEmpty} {
		if uniseg.GraphemeClusterCount(bar) != 1 {
			fail(key, "must be a single character", bar)
		}
	}
	for _, pat := range s.LinkIgnore {
		if _, err := path.Match(strings.Trim(pat, "!/"), ""); err != nil {
			fail("link_ignore", "must be valid glob patterns", pat)
		}
	}
	return errors.Join(errs...)
}
