package mutate

import (
	"errors"
	"slices"
	"sort"
	"strings"

	"github.com/dshills/plaintasks/internal/buffer"
	"github.com/dshills/plaintasks/internal/outline"
	"github.com/dshills/plaintasks/internal/scope"
)

// Transition records one status change.
type Transition struct {
	Offset int
	From   scope.Status
	To     scope.Status
}

// Result describes a committed mutation.
type Result struct {
	Tx          *buffer.Transaction
	Transitions []Transition
	// Carets are the offsets where new tasks expect their text.
	Carets []int
}

// Changed reports whether the mutation edited the buffer.
func (r Result) Changed() bool {
	return r.Tx != nil && !r.Tx.Empty()
}

// Complete toggles the completion of every task:
// pending becomes completed, completed becomes pending and cancelled
// becomes completed.
func (e *Engine) Complete(tasks []*outline.Task) (Result, error) {
	return e.transition("complete", tasks, func(t *outline.Task) (scope.Status, error) {
		switch t.Status() {
		case scope.StatusPending:
			return scope.StatusCompleted, e.toCompleted(t)
		case scope.StatusCompleted:
			return scope.StatusPending, e.toPending(t, e.settings.DoneTag)
		case scope.StatusCancelled:
			if _, err := e.RemoveTag(t, e.settings.CancelledTag); err != nil && !errors.Is(err, ErrTagNotFound) {
				return t.Status(), err
			}
			return scope.StatusCompleted, e.toCompleted(t)
		}
		return t.Status(), nil
	})
}

// Cancel toggles the cancellation of every task: pending becomes cancelled
// and cancelled becomes pending. Completed tasks are left alone.
func (e *Engine) Cancel(tasks []*outline.Task) (Result, error) {
	return e.transition("cancel", tasks, func(t *outline.Task) (scope.Status, error) {
		switch t.Status() {
		case scope.StatusPending:
			if _, err := e.setBullet(t, e.glyph(t, scope.StatusCancelled)); err != nil {
				return t.Status(), err
			}
			_, err := e.AddTag(t, e.settings.CancelledTag, e.stamp(e.settings.CancelledDate))
			return scope.StatusCancelled, err
		case scope.StatusCancelled:
			return scope.StatusPending, e.toPending(t, e.settings.CancelledTag)
		}
		return t.Status(), nil
	})
}

func (e *Engine) toCompleted(t *outline.Task) error {
	if _, err := e.setBullet(t, e.glyph(t, scope.StatusCompleted)); err != nil {
		return err
	}
	_, err := e.AddTag(t, e.settings.DoneTag, e.stamp(e.settings.CompletedDate))
	return err
}

func (e *Engine) toPending(t *outline.Task, tag string) error {
	if _, err := e.RemoveTag(t, tag); err != nil && !errors.Is(err, ErrTagNotFound) {
		return err
	}
	if e.isPendingBullet(t) {
		return nil
	}
	_, err := e.setBullet(t, e.glyph(t, scope.StatusPending))
	return err
}

// transition applies fn to every task inside one compound edit, highest
// offset first so that no edit moves a task still waiting its turn.
func (e *Engine) transition(name string, tasks []*outline.Task, fn func(*outline.Task) (scope.Status, error)) (Result, error) {
	ordered := slices.Clone(tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Region().Begin > ordered[j].Region().Begin
	})

	var res Result
	tx, err := e.buf().Edit(name, func() error {
		for _, t := range ordered {
			from := t.Status()
			to, err := fn(t)
			if err != nil {
				return err
			}
			t.SetStatus(to)
			if to != from {
				res.Transitions = append(res.Transitions, Transition{Offset: t.Region().Begin, From: from, To: to})
			}
		}
		return nil
	})
	res.Tx = tx
	return res, err
}

func (e *Engine) stamp(enabled bool) string {
	if !enabled {
		return ""
	}
	return e.Timestamp()
}

// glyph picks the bullet for status to. Bracketed check boxes keep their
// style; every other bullet becomes the configured glyph.
func (e *Engine) glyph(t *outline.Task, to scope.Status) string {
	if strings.HasPrefix(e.buf().Substr(t.Bullet()), "[") {
		switch to {
		case scope.StatusCompleted:
			return "[x]"
		case scope.StatusCancelled:
			return "[-]"
		default:
			return "[ ]"
		}
	}
	switch to {
	case scope.StatusCompleted:
		return e.settings.CompletedTask
	case scope.StatusCancelled:
		return e.settings.CancelledTask
	default:
		return e.settings.PendingTask
	}
}

func (e *Engine) isPendingBullet(t *outline.Task) bool {
	return slices.Contains(e.doc.Grammar().PendingBullets, e.buf().Substr(t.Bullet()))
}
