package multierr

import (
	"errors"
	"fmt"
	"strings"
)

// Error collects the failures from a validation pass so a user sees every
// configuration problem at once instead of fixing them one rerun at a time.
type Error []error

func (e Error) Error() string {
	switch len(e) {
	case 0:
		return "<nil>"

	case 1:
		return e[0].Error()

	default:
		sb := new(strings.Builder)
		fmt.Fprintf(sb, "%d errors occurred:", len(e))
		for _, err := range e {
			fmt.Fprintf(sb, "\n\t* %v", err)
		}
		return sb.String()
	}
}

// Append adds err to e, ignoring nil errors. Use via auto-referencing:
//
//	var e multierr.Error
//	e.Append(err)
func (e *Error) Append(err error) {
	switch {
	case e == nil:
		// nothing to do without a target; callers hold Error by value

	case err == nil:
		// skip

	case *e == nil:
		*e = Error{err}

	default:
		*e = append(*e, err)
	}
}

// ErrOrNil converts e into a plain error, returning nil for an empty
// collection and unwrapping a single member. Returning a typed nil Error
// directly would compare non-nil as an error interface, so always go through
// this at function exits.
func (e Error) ErrOrNil() error {
	switch len(e) {
	case 0:
		return nil

	case 1:
		return e[0]

	default:
		return e
	}
}

// Unwrap implements the interface used by errors.Unwrap.
func (e Error) Unwrap() error {
	switch len(e) {
	case 0:
		return nil

	case 1:
		return e[0]

	default:
		return e[1:]
	}
}

// Is implements the interface used by errors.Is, matching any member.
func (e Error) Is(target error) bool {
	for _, err := range e {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// As implements the interface used by errors.As, matching the first member.
func (e Error) As(target any) bool {
	for _, err := range e {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}
