package buffer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// maxJournal bounds the number of committed compound edits kept for Undo.
const maxJournal = 100

// Transaction is one compound edit: every change a command made, applied as
// a single unit.
type Transaction struct {
	ID        string
	Name      string
	Changes   []Change
	Before    string
	Timestamp time.Time
}

// Delta returns the net size change of the transaction.
func (t *Transaction) Delta() int {
	n := 0
	for _, c := range t.Changes {
		n += c.Delta()
	}
	return n
}

// Empty reports whether the transaction changed nothing.
func (t *Transaction) Empty() bool {
	return len(t.Changes) == 0
}

// Edit runs fn as one compound edit named name.
//
// If fn returns an error every change it made is rolled back and the buffer
// is left byte-identical to its state before the call. Edits nest: an Edit
// started inside another joins the outer transaction.
func (b *Buffer) Edit(name string, fn func() error) (tx *Transaction, err error) {
	b.mu.Lock()
	if b.tx != nil {
		outer := b.tx
		b.mu.Unlock()
		return outer, fn()
	}
	tx = &Transaction{
		ID:        uuid.NewString(),
		Name:      name,
		Before:    b.text,
		Timestamp: time.Now(),
	}
	b.tx = tx
	before := b.revision
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.tx = nil
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
		if err != nil {
			b.text = tx.Before
			b.revision = before
			tx.Changes = nil
			return
		}
		if !tx.Empty() {
			b.journal = append(b.journal, tx)
			if len(b.journal) > maxJournal {
				b.journal = b.journal[len(b.journal)-maxJournal:]
			}
		}
	}()

	err = fn()
	return tx, err
}

// LastEdit returns the most recent committed compound edit, or nil.
func (b *Buffer) LastEdit() *Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.journal) == 0 {
		return nil
	}
	return b.journal[len(b.journal)-1]
}

// Undo reverts the most recent committed compound edit.
func (b *Buffer) Undo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tx != nil || len(b.journal) == 0 {
		return false
	}
	last := b.journal[len(b.journal)-1]
	b.journal = b.journal[:len(b.journal)-1]
	b.text = last.Before
	b.revision = NewRevisionID()
	return true
}
