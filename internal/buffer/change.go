package buffer

import (
	"fmt"
	"sync/atomic"

	"github.com/dshills/plaintasks/internal/region"
)

// RevisionID identifies a buffer state. Every mutation produces a new one.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}

// ChangeType categorizes a single buffer change.
type ChangeType uint8

const (
	// ChangeInsert indicates text was inserted (OldText is empty).
	ChangeInsert ChangeType = iota

	// ChangeDelete indicates text was deleted (NewText is empty).
	ChangeDelete

	// ChangeReplace indicates text was replaced.
	ChangeReplace
)

// String returns a human-readable representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change is one primitive edit applied to the buffer.
type Change struct {
	Type     ChangeType
	Pos      int
	OldText  string
	NewText  string
	Revision RevisionID
}

// NewInsertChange creates a change representing an insertion.
func NewInsertChange(pos int, text string) Change {
	return Change{Type: ChangeInsert, Pos: pos, NewText: text}
}

// NewDeleteChange creates a change representing a deletion.
func NewDeleteChange(pos int, old string) Change {
	return Change{Type: ChangeDelete, Pos: pos, OldText: old}
}

// NewReplaceChange creates a change representing a replacement.
func NewReplaceChange(pos int, old, text string) Change {
	return Change{Type: ChangeReplace, Pos: pos, OldText: old, NewText: text}
}

// Delta returns the signed size change.
func (c Change) Delta() int {
	return len(c.NewText) - len(c.OldText)
}

// Adjustments returns the region deltas that translate other regions across
// this change: a deletion of the old text followed by an insertion of the new.
func (c Change) Adjustments() []region.Region {
	var out []region.Region
	if c.OldText != "" {
		out = append(out, region.Deletion(c.Pos, len(c.OldText)))
	}
	if c.NewText != "" {
		out = append(out, region.Insertion(c.Pos, len(c.NewText)))
	}
	return out
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert %q at %d", clip(c.NewText, 20), c.Pos)
	case ChangeDelete:
		return fmt.Sprintf("Delete %q at %d", clip(c.OldText, 20), c.Pos)
	default:
		return fmt.Sprintf("Replace %q with %q at %d", clip(c.OldText, 10), clip(c.NewText, 10), c.Pos)
	}
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
