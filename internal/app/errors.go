package app

import (
	"errors"
	"fmt"

	"github.com/dshills/plaintasks/internal/archive"
	"github.com/dshills/plaintasks/internal/config"
	"github.com/dshills/plaintasks/internal/datesort"
	"github.com/dshills/plaintasks/internal/linksearch"
	"github.com/dshills/plaintasks/internal/mover"
	"github.com/dshills/plaintasks/internal/mutate"
)

// Session errors.
var (
	// ErrLineOutOfRange indicates a line number outside the document.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrNoTask indicates that no task is on the selected lines.
	ErrNoTask = errors.New("no task on the selected lines")
)

// OperationError represents an error that occurred during a command.
type OperationError struct {
	Op     string // Command name (e.g., "archive", "move")
	Target string // Document path
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NoticeLevel grades a notice.
type NoticeLevel int

const (
	// NoticeInfo reports a command that had nothing to do.
	NoticeInfo NoticeLevel = iota
	// NoticeWarn reports a fallback, such as an unusable setting.
	NoticeWarn
)

// String returns the name of the level.
func (l NoticeLevel) String() string {
	if l == NoticeWarn {
		return "warning"
	}
	return "info"
}

// Notice is a transient status message shown to the user.
type Notice struct {
	Op      string
	Level   NoticeLevel
	Message string
	Err     error
}

// benign lists the errors that leave the document untouched and are only
// worth a status message.
var benign = []error{
	ErrNoTask,
	archive.ErrNothingToArchive,
	archive.ErrNoSubtree,
	datesort.ErrNothingToSort,
	datesort.ErrUnsupportedFormat,
	linksearch.ErrNoLink,
	linksearch.ErrNotFound,
	mover.ErrNothingToMove,
	mutate.ErrTagNotFound,
}

// IsBenign reports whether err only warrants a notice.
func IsBenign(err error) bool {
	for _, b := range benign {
		if errors.Is(err, b) {
			return true
		}
	}
	return false
}

// noticeFor converts err to a notice. ok is false when err is a failure.
func noticeFor(op string, err error) (Notice, bool) {
	var ce *config.ConfigError
	switch {
	case errors.As(err, &ce):
		return Notice{Op: op, Level: NoticeWarn, Message: ce.Error(), Err: err}, true
	case IsBenign(err):
		return Notice{Op: op, Level: NoticeInfo, Message: err.Error(), Err: err}, true
	}
	return Notice{}, false
}
