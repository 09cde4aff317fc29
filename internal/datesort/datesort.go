// Package datesort reorders the archive section by the dates of the
// @done and @cancelled tags.
package datesort

import (
	"errors"
	"regexp"
	"sort"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/region"
	"github.com/dshills/plaintasks/internal/scope"
)

var (
	// ErrNothingToSort is returned when the document has no archive section.
	ErrNothingToSort = errors.New("nothing to sort")

	// ErrUnsupportedFormat is returned when the date format does not start
	// with year, month, day and time, so literal dates do not sort.
	ErrUnsupportedFormat = errors.New("date format does not sort chronologically")
)

var sortableFormat = regexp.MustCompile(`%[Yy][-./ ]*%m[-./ ]*%d\s*%H.*%M`)

// Supported reports whether dates written with format sort as text.
func Supported(format string) bool {
	return sortableFormat.MatchString(format)
}

// Result describes a sort.
type Result struct {
	Tx      *buffer.Transaction
	Entries int
}

type entry struct {
	key  string
	text string
	// whole lines, trailing newline excluded
	span region.Region
}

// Sort moves every dated entry of the archive section directly below the
// archive heading, newest first unless s.NewOnTop is false. Notes move with
// the task they follow.
func Sort(doc *outline.Document, s config.Settings) (Result, error) {
	if !Supported(s.DateFormat) {
		return Result{}, ErrUnsupportedFormat
	}
	marker, ok := doc.ArchiveMarker()
	if !ok {
		return Result{}, ErrNothingToSort
	}

	entries := collect(doc, marker, s)
	buf := doc.Buffer()
	tx, err := buf.Edit("sort", func() error {
		if len(entries) == 0 {
			return nil
		}
		for i := len(entries) - 1; i >= 0; i-- {
			if err := buf.Erase(lineSpan(buf, entries[i].span)); err != nil {
				return err
			}
		}

		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.key != b.key {
				if s.NewOnTop {
					return a.key > b.key
				}
				return a.key < b.key
			}
			return false
		})

		pos := marker.End
		for _, e := range entries {
			n, err := buf.Insert(pos, "\n"+e.text)
			if err != nil {
				return err
			}
			pos += n
		}
		return nil
	})
	return Result{Tx: tx, Entries: len(entries)}, err
}

func collect(doc *outline.Document, marker region.Region, s config.Settings) []entry {
	tags := regexp.QuoteMeta(s.DoneTag) + "|" + regexp.QuoteMeta(s.CancelledTag)
	dated := regexp.MustCompile(`^\s*.*?\s@(?:` + tags + `)\s*(\([\d\w,.:\-/ ]*\))`)

	buf := doc.Buffer()
	lines := doc.Index().Lines()
	var out []entry
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if l.Region.Begin <= marker.End || l.Kind != scope.KindTask {
			continue
		}
		span := l.Span()
		m := dated.FindStringSubmatch(buf.Substr(span))
		if m == nil {
			continue
		}
		for i+1 < len(lines) && lines[i+1].Kind == scope.KindNote {
			i++
			span.End = lines[i].Region.End
		}
		out = append(out, entry{key: m[1], text: buf.Substr(span), span: span})
	}
	return out
}

// lineSpan extends a span of whole lines to swallow one line break so that
// erasing it leaves no blank line behind.
func lineSpan(buf *buffer.Buffer, span region.Region) region.Region {
	if span.End < buf.Size() {
		return region.New(span.Begin, span.End+1)
	}
	if span.Begin > 0 {
		return region.New(span.Begin-1, span.End)
	}
	return span
}
