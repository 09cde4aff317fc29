// Package config holds the settings that drive every task command.
//
// Settings is an immutable value: a session loads it once per document and
// passes it explicitly to each operation. A Store owns the current value,
// reloads it from layered TOML or YAML files and notifies observers when
// it changes.
package config

import (
	"reflect"
	"strings"

	"github.com/dshills/plaintasks/internal/scope"
)

// Settings is the complete configuration surface.
type Settings struct {
	// PendingTask is the bullet written for new and reopened tasks.
	PendingTask string `toml:"pending_task" yaml:"pending_task"`
	// CompletedTask is the bullet written when a task is completed.
	CompletedTask string `toml:"completed_task" yaml:"completed_task"`
	// CancelledTask is the bullet written when a task is cancelled.
	CancelledTask string `toml:"cancelled_task" yaml:"cancelled_task"`

	// DateFormat is a strftime format used for @done and @cancelled values.
	DateFormat string `toml:"date_format" yaml:"date_format"`
	// DoneTag and CancelledTag are the tag names written by status commands.
	DoneTag      string `toml:"done_tag" yaml:"done_tag"`
	CancelledTag string `toml:"cancelled_tag" yaml:"cancelled_tag"`
	// CompletedDate and CancelledDate control whether the tags carry a date.
	CompletedDate bool `toml:"completed_date" yaml:"completed_date"`
	CancelledDate bool `toml:"cancelled_date" yaml:"cancelled_date"`

	// ArchiveName is the literal archive heading line.
	ArchiveName string `toml:"archive_name" yaml:"archive_name"`
	// ArchiveCancelledTasks includes cancelled tasks in the default archive.
	ArchiveCancelledTasks bool `toml:"archive_cancelled_tasks" yaml:"archive_cancelled_tasks"`
	// NewOnTop sorts archived entries newest first.
	NewOnTop bool `toml:"new_on_top" yaml:"new_on_top"`
	// ProjectPostfix appends @project(...) to archived tasks instead of
	// prefixing the project path.
	ProjectPostfix bool `toml:"project_postfix" yaml:"project_postfix"`
	// ArchiveFileMask builds the archive file name from {dir} {base} {ext} {sep}.
	ArchiveFileMask string `toml:"archive_file_mask" yaml:"archive_file_mask"`

	// BeforeTasksBulletMargin is the number of spaces before bullets of
	// archived tasks when Indent is not a tab.
	BeforeTasksBulletMargin int `toml:"before_tasks_bullet_margin" yaml:"before_tasks_bullet_margin"`
	// TasksBulletSpace separates the bullet from the task text.
	TasksBulletSpace string `toml:"tasks_bullet_space" yaml:"tasks_bullet_space"`
	// Indent is one nesting unit.
	Indent string `toml:"indent" yaml:"indent"`

	// StatsFormat is the statistics template.
	StatsFormat string `toml:"stats_format" yaml:"stats_format"`
	// StatsIgnoreArchive leaves the archive section out of the statistics.
	StatsIgnoreArchive bool `toml:"stats_ignore_archive" yaml:"stats_ignore_archive"`
	// BarFull and BarEmpty draw the progress bar.
	BarFull  string `toml:"bar_full" yaml:"bar_full"`
	BarEmpty string `toml:"bar_empty" yaml:"bar_empty"`

	// LinkIgnore lists gitignore-style patterns of paths the link search
	// does not descend into.
	LinkIgnore []string `toml:"link_ignore" yaml:"link_ignore"`
}

// DefaultArchiveFileMask is used when the configured mask is unusable.
const DefaultArchiveFileMask = "{dir}{sep}{base}_archive{ext}"

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		PendingTask:             "☐",
		CompletedTask:           "✔",
		CancelledTask:           "✘",
		DateFormat:              "%y-%m-%d %H:%M",
		DoneTag:                 "done",
		CancelledTag:            "cancelled",
		CompletedDate:           true,
		CancelledDate:           true,
		ArchiveName:             "Archive:",
		ArchiveCancelledTasks:   true,
		NewOnTop:                true,
		ProjectPostfix:          true,
		ArchiveFileMask:         DefaultArchiveFileMask,
		BeforeTasksBulletMargin: 1,
		TasksBulletSpace:        " ",
		Indent:                  "\t",
		StatsFormat:             "$n/$a done ($percent%) $progress Last task @done $last",
		BarFull:                 "■",
		BarEmpty:                "□",
		LinkIgnore:              []string{".git/", ".hg/", ".svn/"},
	}
}

// Grammar returns the annotation grammar matching these settings.
func (s Settings) Grammar() scope.Grammar {
	g := scope.DefaultGrammar().WithGlyphs(s.PendingTask, s.CompletedTask, s.CancelledTask)
	g.DoneTag = s.DoneTag
	g.CancelledTag = s.CancelledTag
	g.ArchiveName = s.ArchiveName
	return g
}

// Margin returns the whitespace written before archived task bullets.
func (s Settings) Margin() string {
	if strings.Contains(s.Indent, "\t") {
		return "\t"
	}
	return strings.Repeat(" ", s.BeforeTasksBulletMargin)
}

// Diff returns the keys whose value differs between s and other.
func (s Settings) Diff(other Settings) []string {
	var keys []string
	a, b := reflect.ValueOf(s), reflect.ValueOf(other)
	t := a.Type()
	for i := 0; i < t.NumField(); i++ {
		if !reflect.DeepEqual(a.Field(i).Interface(), b.Field(i).Interface()) {
			keys = append(keys, Key(t.Field(i)))
		}
	}
	return keys
}

// Key returns the settings-file key of a Settings field.
func Key(f reflect.StructField) string {
	if k, _, _ := strings.Cut(f.Tag.Get("toml"), ","); k != "" {
		return k
	}
	return f.Name
}
