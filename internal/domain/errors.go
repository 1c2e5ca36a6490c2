package domain

import "errors"

// Closed taxonomy assigned at the store boundary.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("store unavailable")
	ErrInvalid     = errors.New("invalid input")
)

// StoreError wraps a failed store operation. Kind is one of the sentinels
// above, or nil when the cause could not be classified.
type StoreError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + KindLabel(e.Kind)
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// KindOf returns the taxonomy sentinel err matches, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrConflict, ErrUnavailable, ErrInvalid} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// KindLabel is a short metric/log label for a kind.
func KindLabel(kind error) string {
	switch kind {
	case ErrNotFound:
		return "not_found"
	case ErrConflict:
		return "conflict"
	case ErrUnavailable:
		return "unavailable"
	case ErrInvalid:
		return "invalid"
	}
	return "internal"
}
