// Package mover relocates tasks under a project path of a section,
// creating the missing project headings on the way.
package mover

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

var (
	// ErrSectionNotFound is returned when no section has the requested title.
	ErrSectionNotFound = errors.New("section not found")

	// ErrEmptyPath is returned when no project path was given.
	ErrEmptyPath = errors.New("empty project path")

	// ErrNothingToMove is returned when no task was selected.
	ErrNothingToMove = errors.New("nothing to move")
)

// Destination is the project that receives moved tasks.
type Destination struct {
	// Heading is the heading line of the deepest project of the path.
	Heading region.Region
	// Indent is the indentation of the project's children.
	Indent string
	// Created lists the project names that had to be added.
	Created []string
	// Deltas are the insertions made to create them.
	Deltas []region.Region
}

// EnsurePath finds path in sec, creating what is missing.
//
// Projects are walked with a depth-ordered stack: a project pops every
// stacked project at its depth or deeper, then is pushed. A stack whose
// names are a prefix of path is a match. Missing levels are added after the
// block of the deepest matched project, each one indent unit deeper, or at
// the end of the section when nothing matched.
func EnsurePath(doc *outline.Document, s config.Settings, sec outline.Section, path []string) (Destination, error) {
	if len(path) == 0 {
		return Destination{}, ErrEmptyPath
	}

	var stack, best []*outline.Project
	for _, p := range doc.ProjectsIn(sec.Region) {
		for len(stack) > 0 && stack[len(stack)-1].Depth() >= p.Depth() {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, p)
		if len(stack) > len(best) && isPrefix(stack, path) {
			best = append([]*outline.Project(nil), stack...)
			if len(best) == len(path) {
				break
			}
		}
	}

	if len(best) == len(path) {
		last := best[len(best)-1]
		return Destination{Heading: last.Region(), Indent: last.Indent() + s.Indent}, nil
	}

	buf := doc.Buffer()
	var pos int
	var indent string
	if len(best) > 0 {
		parent := best[len(best)-1]
		pos = parent.LastContent()
		indent = parent.Indent() + s.Indent
	} else {
		pos = sectionEnd(doc, sec)
	}

	dest := Destination{}
	for _, name := range path[len(best):] {
		line := indent + name + ":"
		text := "\n" + line
		at := pos
		if pos == 0 {
			text = line + "\n"
		}
		n, err := buf.Insert(pos, text)
		if err != nil {
			return Destination{}, fmt.Errorf("creating project %q: %w", name, err)
		}
		dest.Deltas = append(dest.Deltas, region.Insertion(at, n))
		if pos == 0 {
			dest.Heading = region.New(0, len(line))
		} else {
			dest.Heading = region.New(pos+1, pos+n)
		}
		dest.Created = append(dest.Created, name)
		pos = dest.Heading.End
		indent += s.Indent
	}
	dest.Indent = indent
	return dest, nil
}

func isPrefix(stack []*outline.Project, path []string) bool {
	if len(stack) > len(path) {
		return false
	}
	for i, p := range stack {
		if p.Name() != path[i] {
			return false
		}
	}
	return true
}

// sectionEnd returns the end of the last content line of sec, or the end
// of its separator line when the section is empty.
func sectionEnd(doc *outline.Document, sec outline.Section) int {
	end := sec.Separator.End
	for _, l := range doc.Index().Lines() {
		if !sec.Region.Covers(l.Region) {
			continue
		}
		if l.Kind != scope.KindBlank && l.Kind != scope.KindSeparator {
			end = l.Region.End
		}
	}
	return end
}

// Result describes a move.
type Result struct {
	Tx          *buffer.Transaction
	Moved       int
	Destination Destination
}

// Move relocates tasks, with their notes, under path in the section titled
// title. The tasks keep their relative order and are indented one unit
// below the destination project.
//
// Every region still waiting to be processed is tracked in one batch, so
// each one reflects the net effect of all edits made before it, wherever
// they happened.
func Move(doc *outline.Document, s config.Settings, tasks []*outline.Task, title string, path []string) (Result, error) {
	if len(tasks) == 0 {
		return Result{}, ErrNothingToMove
	}
	sec, ok := doc.FindSection(title)
	if !ok {
		return Result{}, fmt.Errorf("%q: %w", title, ErrSectionNotFound)
	}

	type pending struct {
		h      region.Handle
		indent string
	}
	batch := region.NewBatch()
	var queue []pending
	for _, t := range tasks {
		queue = append(queue, pending{h: batch.Track(t.Block()), indent: t.Indent()})
	}

	buf := doc.Buffer()
	var res Result
	tx, err := buf.Edit("move", func() error {
		dest, err := EnsurePath(doc, s, sec, path)
		if err != nil {
			return err
		}
		for _, d := range dest.Deltas {
			batch.Apply(d)
		}
		anchor := batch.Track(dest.Heading)

		for _, p := range queue {
			block := batch.Get(p.h)
			batch.Release(p.h)
			text := strings.TrimSuffix(buf.Substr(block), "\n")

			erase := block
			if !strings.HasSuffix(buf.Substr(block), "\n") && erase.Begin > 0 {
				erase.Begin--
			}
			if err := buf.Erase(erase); err != nil {
				return err
			}
			batch.Apply(region.Deletion(erase.Begin, erase.Size()))

			heading := batch.Get(anchor)
			pos := heading.End
			if body := buf.IndentedRegion(heading.Begin); !body.Empty() {
				pos = body.End
			}
			n, err := buf.Insert(pos, "\n"+reindent(text, p.indent, dest.Indent))
			if err != nil {
				return err
			}
			batch.Apply(region.Insertion(pos, n))
			res.Moved++
		}
		res.Destination = dest
		res.Destination.Heading = batch.Get(anchor)
		return nil
	})
	res.Tx = tx
	return res, err
}

// reindent replaces the from prefix of every line with to.
func reindent(text, from, to string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, from) {
			lines[i] = to + l[len(from):]
		} else {
			lines[i] = to + strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
