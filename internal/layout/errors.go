package layout

import "github.com/pkg/errors"

var (
	ErrNoUser          = errors.New("layout: no user loaded")
	ErrEmptyType       = errors.New("layout: empty section type")
	ErrSectionNotFound = errors.New("layout: section not found")
	ErrIndexOutOfRange = errors.New("layout: index out of range")
	ErrValueKind       = errors.New("layout: value does not match section type")
	ErrInvalidDrag     = errors.New("layout: invalid drag event")
	ErrNotSocial       = errors.New("layout: only social sections belong on the social bar")

	// ErrLoad and ErrSave wrap persistence failures recorded in the error field.
	ErrLoad = errors.New("layout: load failed")
	ErrSave = errors.New("layout: save failed")
)

type wrapped struct {
	kind  error
	cause error
}

func (w *wrapped) Error() string { return w.kind.Error() + ": " + w.cause.Error() }

func (w *wrapped) Is(target error) bool { return target == w.kind }

func (w *wrapped) Unwrap() error { return w.cause }

func wrapKind(kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &wrapped{kind: kind, cause: cause}
}
