// Package mutate implements the structural edits applied to single tasks:
// inline tag add/remove, status transitions and new task insertion.
package mutate

import (
	"errors"
	"time"

	"github.com/ncruces/go-strftime"
	"golang.org/x/text/cases"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/region"
)

// ErrTagNotFound is returned when RemoveTag finds no matching tag.
var ErrTagNotFound = errors.New("tag not found")

// Engine applies mutations to one document with one settings value.
type Engine struct {
	doc      *outline.Document
	settings config.Settings
	now      func() time.Time
	fold     cases.Caser
}

// New returns an engine for doc.
func New(doc *outline.Document, s config.Settings) *Engine {
	return &Engine{doc: doc, settings: s, now: time.Now, fold: cases.Fold()}
}

// WithClock replaces the timestamp source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Timestamp formats the current time with the configured date format.
func (e *Engine) Timestamp() string {
	return strftime.Format(e.settings.DateFormat, e.now())
}

func (e *Engine) buf() *buffer.Buffer {
	return e.doc.Buffer()
}

// AddTag appends " @name" or " @name(attr)" to the task heading, before
// any trailing whitespace, and returns the insertion delta. The task region
// grows by the inserted length.
func (e *Engine) AddTag(t *outline.Task, name, attr string) (region.Region, error) {
	text := " @" + name
	if attr != "" {
		text += "(" + attr + ")"
	}

	pos := t.Region().End
	for pos > t.Bullet().End+1 && isBlank(e.buf().ByteAt(pos-1)) {
		pos--
	}
	n, err := e.buf().Insert(pos, text)
	if err != nil {
		return region.Region{}, err
	}
	t.Resize(n)
	return region.Insertion(pos, n), nil
}

// RemoveTag erases every tag named name, compared with Unicode case
// folding, together with the whitespace before it. Tags are erased last
// first. It returns a deletion delta for the total erased length, anchored
// at the first erased byte.
func (e *Engine) RemoveTag(t *outline.Task, name string) (region.Region, error) {
	want := e.fold.String(name)
	var spans []region.Region
	for _, tag := range t.Tags() {
		if e.fold.String(tag.Name) != want {
			continue
		}
		r := tag.Region
		for r.Begin > t.Bullet().End && isBlank(e.buf().ByteAt(r.Begin-1)) {
			r.Begin--
		}
		spans = append(spans, r)
	}
	if len(spans) == 0 {
		return region.Region{}, ErrTagNotFound
	}

	region.SortDescending(spans)
	total := 0
	for _, r := range spans {
		if err := e.buf().Erase(r); err != nil {
			return region.Region{}, err
		}
		total += r.Size()
	}
	t.Resize(-total)
	return region.Deletion(spans[len(spans)-1].Begin, total), nil
}

// setBullet replaces the status glyph and returns the net delta.
func (e *Engine) setBullet(t *outline.Task, glyph string) (region.Region, error) {
	b := t.Bullet()
	if e.buf().Substr(b) == glyph {
		return region.Region{}, nil
	}
	n, err := e.buf().Replace(b, glyph)
	if err != nil {
		return region.Region{}, err
	}
	t.SetBullet(region.New(b.Begin, b.Begin+len(glyph)))
	t.Resize(n)
	switch {
	case n > 0:
		return region.Insertion(b.Begin, n), nil
	case n < 0:
		return region.Deletion(b.Begin, -n), nil
	}
	return region.Region{}, nil
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}
