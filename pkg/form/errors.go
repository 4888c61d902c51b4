package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration matches every *ConfigError.
	ErrConfiguration = errors.New("form: configuration error")
	// ErrStale reports an operation on a Form whose page was submitted or
	// replaced.
	ErrStale = errors.New("form: stale form")
)

// ConfigError describes a declaration or usage mistake: missing selector,
// duplicate or unknown field names, unknown field type tags.
type ConfigError struct {
	Form   string
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConfiguration.Error())
	if e.Form != "" {
		fmt.Fprintf(&b, ": form %q", e.Form)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
