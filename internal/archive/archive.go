// Package archive moves finished tasks into the archive section of the
// document, or appends a subtree to a separate archive file.
package archive

import (
	"errors"
	"sort"
	"strings"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/datesort"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

// ErrNothingToArchive is returned when no task qualifies.
var ErrNothingToArchive = errors.New("nothing to archive")

// Separator is written above a newly created archive heading.
const Separator = "＿＿＿＿＿＿＿＿＿＿＿＿＿＿＿＿＿＿＿"

// Result describes an archive run.
type Result struct {
	Tx       *buffer.Transaction
	Archived int
	// Created is set when the archive heading had to be added.
	Created bool
	// Sorted is false when the date format prevented sorting.
	Sorted bool
}

// Archive moves finished tasks, with their notes, below the archive heading.
//
// With no selection every completed task before the heading qualifies, and
// cancelled ones too when s.ArchiveCancelledTasks is set. With a selection
// only the finished tasks on the selected lines do. Each task is annotated
// with its project path, the source lines are erased and the archive is
// sorted by date, all in one compound edit.
func Archive(doc *outline.Document, s config.Settings, sel []region.Region) (Result, error) {
	tasks := qualifying(doc, s, sel)
	if len(tasks) == 0 {
		return Result{}, ErrNothingToArchive
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Region().Begin < tasks[j].Region().Begin })

	buf := doc.Buffer()
	var rendered []string
	var blocks []region.Region
	for _, t := range tasks {
		rendered = append(rendered, render(buf, t, s)...)
		blocks = append(blocks, region.New(t.Line().Begin, blockEnd(t)))
	}

	res := Result{Archived: len(tasks)}
	tx, err := buf.Edit("archive", func() error {
		marker, ok := doc.ArchiveMarker()
		if !ok {
			if _, err := buf.Insert(buf.Size(), "\n\n"+Separator+"\n"+s.ArchiveName+"\n"); err != nil {
				return err
			}
			res.Created = true
			if marker, ok = doc.ArchiveMarker(); !ok {
				return errors.New("archive heading not found after insertion")
			}
		}

		if _, err := buf.Insert(marker.End, "\n"+strings.Join(rendered, "\n")); err != nil {
			return err
		}

		// Every insertion so far landed after the blocks.
		for i := len(blocks) - 1; i >= 0; i-- {
			if err := buf.Erase(buf.FullLine(blocks[i])); err != nil {
				return err
			}
		}

		_, err := datesort.Sort(doc, s)
		switch {
		case err == nil:
			res.Sorted = true
		case errors.Is(err, datesort.ErrUnsupportedFormat):
		default:
			return err
		}
		return nil
	})
	res.Tx = tx
	return res, err
}

func qualifying(doc *outline.Document, s config.Settings, sel []region.Region) []*outline.Task {
	limit := doc.ArchiveStart()
	finished := func(t *outline.Task, cancelled bool) bool {
		if t.Line().Begin >= limit {
			return false
		}
		switch t.Status() {
		case scope.StatusCompleted:
			return true
		case scope.StatusCancelled:
			return cancelled
		}
		return false
	}

	var out []*outline.Task
	if len(sel) == 0 {
		for _, t := range doc.Tasks() {
			if finished(t, s.ArchiveCancelledTasks) {
				out = append(out, t)
			}
		}
		return out
	}

	seen := make(map[region.Region]bool)
	for _, r := range sel {
		for _, t := range doc.TasksIn(r) {
			if !seen[t.Region()] && finished(t, true) {
				seen[t.Region()] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func blockEnd(t *outline.Task) int {
	if notes := t.Notes(); len(notes) > 0 {
		return notes[len(notes)-1].End
	}
	return t.Region().End
}

// render returns the archive lines of t: the task line annotated with its
// project path, then its notes indented twice.
func render(buf *buffer.Buffer, t *outline.Task, s config.Settings) []string {
	margin := s.Margin()
	line := buf.Substr(t.Line())
	path := strings.Join(t.ProjectNames(), " / ")

	var out string
	switch {
	case path == "":
		out = margin + strings.TrimSpace(line)
	case s.ProjectPostfix:
		out = margin + strings.TrimSpace(line) + " @project(" + path + ")"
	default:
		rest := strings.TrimSpace(buf.Substr(region.New(t.Bullet().End, t.Region().End)))
		out = margin + buf.Substr(t.Bullet()) + s.TasksBulletSpace + path + ": " + rest
	}
	if strings.HasSuffix(line, "  ") {
		out += "  "
	}

	lines := []string{out}
	for _, n := range t.Notes() {
		lines = append(lines, margin+margin+strings.TrimLeft(buf.Substr(n), " \t"))
	}
	return lines
}
