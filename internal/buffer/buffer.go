// Package buffer provides the mutable text buffer that every structural
// command edits, together with compound edits that apply atomically.
package buffer

import (
	"errors"
	"strings"
	"sync"

	"github.com/dshills/plaintasks/internal/region"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRegionInvalid    = errors.New("invalid region")
)

// LineEnding specifies the line ending style of the source text.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
)

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// Buffer holds the document text. Internally all line endings are "\n";
// the original style is remembered so Save can restore it.
//
// A Buffer is owned by one command at a time. The mutex only guards against
// readers on other goroutines observing a half-applied edit.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	revision   RevisionID
	lineEnding LineEnding

	// current compound edit, nil outside Edit
	tx      *Transaction
	journal []*Transaction
}

// New creates a buffer holding s.
func New(s string) *Buffer {
	le := LineEndingLF
	if strings.Contains(s, "\r\n") {
		le = LineEndingCRLF
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return &Buffer{
		text:       s,
		revision:   NewRevisionID(),
		lineEnding: le,
	}
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Save returns the content with the original line endings restored.
func (b *Buffer) Save() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.lineEnding == LineEndingCRLF {
		return strings.ReplaceAll(b.text, "\n", "\r\n")
	}
	return b.text
}

// Size returns the byte length of the buffer.
func (b *Buffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// Revision returns the current revision id. It changes on every mutation.
func (b *Buffer) Revision() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Substr returns the text covered by r, clamped to the buffer.
func (b *Buffer) Substr(r region.Region) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r = b.clamp(r.Normalize())
	return b.text[r.Begin:r.End]
}

// ByteAt returns the byte at p, or 0 when p is outside the buffer.
func (b *Buffer) ByteAt(p int) byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if p < 0 || p >= len(b.text) {
		return 0
	}
	return b.text[p]
}

func (b *Buffer) clamp(r region.Region) region.Region {
	if r.Begin < 0 {
		r.Begin = 0
	}
	if r.End > len(b.text) {
		r.End = len(b.text)
	}
	if r.Begin > r.End {
		r.Begin = r.End
	}
	return r
}

// Insert inserts text at pos and returns the number of bytes inserted.
func (b *Buffer) Insert(pos int, text string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pos < 0 || pos > len(b.text) {
		return 0, ErrOffsetOutOfRange
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return 0, nil
	}
	b.text = b.text[:pos] + text + b.text[pos:]
	b.record(NewInsertChange(pos, text))
	return len(text), nil
}

// Erase removes the text covered by r.
func (b *Buffer) Erase(r region.Region) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r = r.Normalize()
	if r.Begin < 0 || r.End > len(b.text) {
		return ErrRegionInvalid
	}
	if r.Empty() {
		return nil
	}
	old := b.text[r.Begin:r.End]
	b.text = b.text[:r.Begin] + b.text[r.End:]
	b.record(NewDeleteChange(r.Begin, old))
	return nil
}

// Replace replaces the text covered by r and returns the signed size change.
func (b *Buffer) Replace(r region.Region, text string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r = r.Normalize()
	if r.Begin < 0 || r.End > len(b.text) {
		return 0, ErrRegionInvalid
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	old := b.text[r.Begin:r.End]
	if old == text {
		return 0, nil
	}
	b.text = b.text[:r.Begin] + text + b.text[r.End:]
	b.record(NewReplaceChange(r.Begin, old, text))
	return len(text) - len(old), nil
}

// record must be called with the write lock held.
func (b *Buffer) record(c Change) {
	b.revision = NewRevisionID()
	c.Revision = b.revision
	if b.tx != nil {
		b.tx.Changes = append(b.tx.Changes, c)
	}
}
