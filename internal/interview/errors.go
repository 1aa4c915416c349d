package interview

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced by the orchestrator.
type Kind int

const (
	// KindValidation means the request was rejected before any adapter was called.
	KindValidation Kind = iota + 1
	// KindAdapter means question or narrative generation failed.
	KindAdapter
	// KindScoring means answer assessment failed. It is recovered with a neutral score.
	KindScoring
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAdapter:
		return "adapter"
	case KindScoring:
		return "scoring"
	default:
		return "unknown"
	}
}

var (
	ErrNoSession     = errors.New("no active interview session")
	ErrFinished      = errors.New("interview already finished")
	ErrNotFinished   = errors.New("interview is still in progress")
	ErrEmptyQuestion = errors.New("question source returned an empty question")
)

// Error is returned by every orchestrator operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func adapterError(op string, err error) error {
	return &Error{Kind: KindAdapter, Op: op, Err: err}
}

// KindOf reports the kind of an orchestrator error, or 0 for foreign errors.
func KindOf(err error) Kind {
	var ierr *Error
	if errors.As(err, &ierr) {
		return ierr.Kind
	}
	return 0
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }

func IsAdapter(err error) bool { return KindOf(err) == KindAdapter }
