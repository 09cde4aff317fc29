package buffer

import (
	"strings"

	"github.com/dshills/plaintasks/internal/region"
)

// Line returns the region of the line containing p, newline excluded.
func (b *Buffer) Line(p int) region.Region {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lineAt(b.text, p)
}

// FullLine returns the lines covered by r including the trailing newline of
// the last one, when there is one.
func (b *Buffer) FullLine(r region.Region) region.Region {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r = r.Normalize()
	first := lineAt(b.text, r.Begin)
	last := first
	if r.End > r.Begin {
		last = lineAt(b.text, r.End-1)
	}
	end := last.End
	if end < len(b.text) {
		end++
	}
	return region.New(first.Begin, end)
}

// Lines returns the region of every line intersecting r, newline excluded.
func (b *Buffer) Lines(r region.Region) []region.Region {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r = r.Normalize()
	var out []region.Region
	p := r.Begin
	for {
		l := lineAt(b.text, p)
		out = append(out, l)
		if l.End >= r.End || l.End+1 == r.End || l.End >= len(b.text) {
			break
		}
		p = l.End + 1
	}
	return out
}

// Find returns the first occurrence of the literal needle at or after from.
func (b *Buffer) Find(needle string, from int) (region.Region, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if needle == "" || from < 0 || from > len(b.text) {
		return region.Region{}, false
	}
	i := strings.Index(b.text[from:], needle)
	if i < 0 {
		return region.Region{}, false
	}
	return region.New(from+i, from+i+len(needle)), true
}

// IndentedRegion returns the lines following the line at p that are indented
// deeper than it, up to the last such non-blank line. Blank lines inside the
// block are kept. The result is empty when no deeper line follows.
func (b *Buffer) IndentedRegion(p int) region.Region {
	b.mu.RLock()
	defer b.mu.RUnlock()

	head := lineAt(b.text, p)
	depth := len(leadingSpace(b.text[head.Begin:head.End]))
	end := head.End
	pos := head.End + 1
	for pos <= len(b.text) && head.End < len(b.text) {
		l := lineAt(b.text, pos)
		s := b.text[l.Begin:l.End]
		if strings.TrimSpace(s) != "" {
			if len(leadingSpace(s)) <= depth {
				break
			}
			end = l.End
		}
		if l.End >= len(b.text) {
			break
		}
		pos = l.End + 1
	}
	if end == head.End {
		return region.Point(head.End)
	}
	return region.New(head.End+1, end)
}

func lineAt(text string, p int) region.Region {
	if p < 0 {
		p = 0
	}
	if p > len(text) {
		p = len(text)
	}
	begin := strings.LastIndexByte(text[:p], '\n') + 1
	end := strings.IndexByte(text[p:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += p
	}
	return region.New(begin, end)
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
