// Package outline derives the task/project hierarchy of a document.
//
// Entities are views over the current annotation of the buffer. They are
// computed on demand and are only valid until the next mutation, unless the
// command that mutates keeps their regions adjusted.
package outline

import (
	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

// Document couples a buffer with its annotation.
type Document struct {
	buf     *buffer.Buffer
	grammar scope.Grammar

	rev buffer.RevisionID
	ann *scope.Annotation
}

// New returns a document over buf.
func New(buf *buffer.Buffer, g scope.Grammar) *Document {
	return &Document{buf: buf, grammar: g}
}

// Buffer returns the underlying buffer.
func (d *Document) Buffer() *buffer.Buffer {
	return d.buf
}

// Grammar returns the annotation grammar.
func (d *Document) Grammar() scope.Grammar {
	return d.grammar
}

// SetGrammar replaces the grammar; the next query re-annotates.
func (d *Document) SetGrammar(g scope.Grammar) {
	d.grammar = g
	d.ann = nil
}

// Index returns the annotation of the current buffer revision, parsing the
// text again if it changed since the last call.
func (d *Document) Index() *scope.Annotation {
	rev := d.buf.Revision()
	if d.ann == nil || rev != d.rev {
		d.ann = scope.Annotate(d.buf.Text(), d.grammar)
		d.rev = rev
	}
	return d.ann
}

// Tasks returns every task in document order.
func (d *Document) Tasks() []*Task {
	var out []*Task
	for _, l := range d.Index().Lines() {
		if l.Kind == scope.KindTask {
			out = append(out, d.newTask(l))
		}
	}
	return out
}

// TasksIn returns the tasks whose line intersects r.
func (d *Document) TasksIn(r region.Region) []*Task {
	var out []*Task
	for _, l := range d.Index().Lines() {
		if l.Kind != scope.KindTask {
			continue
		}
		line := l.Span()
		if line.Intersects(r) || (r.Empty() && line.Begin <= r.Begin && r.Begin <= line.End) {
			out = append(out, d.newTask(l))
		}
	}
	return out
}

// TaskAt returns the task on the line containing p.
func (d *Document) TaskAt(p int) (*Task, bool) {
	l, ok := d.Index().LineAt(p)
	if !ok || l.Kind != scope.KindTask {
		return nil, false
	}
	return d.newTask(l), true
}

// Projects returns every project heading in document order.
func (d *Document) Projects() []*Project {
	var out []*Project
	for _, l := range d.Index().Lines() {
		if l.Kind == scope.KindProject {
			out = append(out, d.newProject(l))
		}
	}
	return out
}

// ProjectsIn returns the project headings fully inside r.
func (d *Document) ProjectsIn(r region.Region) []*Project {
	var out []*Project
	for _, pr := range d.Index().Query(scope.TagProject, r) {
		if l, ok := d.Index().LineAt(pr.Begin); ok {
			out = append(out, d.newProject(l))
		}
	}
	return out
}

// ArchiveMarker returns the archive heading line.
func (d *Document) ArchiveMarker() (region.Region, bool) {
	return scope.First(d.Index(), scope.TagArchive, region.New(0, d.buf.Size()))
}

// ArchiveStart returns the offset where the archive section begins, or the
// end of the document when there is none.
func (d *Document) ArchiveStart() int {
	if m, ok := d.ArchiveMarker(); ok {
		return m.Begin
	}
	return d.buf.Size()
}

