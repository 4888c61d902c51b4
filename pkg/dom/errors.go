package dom

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a strict lookup matched no element.
	ErrNotFound = errors.New("dom: element not found")
	// ErrAmbiguous reports that a strict lookup matched more than one element.
	ErrAmbiguous = errors.New("dom: ambiguous match")
	// ErrUnsupported reports an operation the element cannot perform, such as
	// checking a text input.
	ErrUnsupported = errors.New("dom: unsupported operation")
)

// QueryError carries the locator that was attempted and how many elements it
// matched. It unwraps to ErrNotFound or ErrAmbiguous.
type QueryError struct {
	Locator Locator
	Count   int
	Err     error
}

func (e *QueryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if errors.Is(e.Err, ErrAmbiguous) {
		return fmt.Sprintf("%v: %s matched %d elements", e.Err, e.Locator, e.Count)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Locator)
}

func (e *QueryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Unsupported builds an ErrUnsupported error naming the operation and element.
func Unsupported(op, element string) error {
	return fmt.Errorf("%w: %s on <%s>", ErrUnsupported, op, element)
}
