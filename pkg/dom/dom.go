package dom

import (
	"context"
)

// Scope is a searchable region of a page: a whole document or one element.
// Searches only consider descendants of the scope, except for Self locators
// which are evaluated against the scope itself.
type Scope interface {
	// FindOne returns the single element matching loc. Zero matches yield
	// ErrNotFound and more than one yield ErrAmbiguous, both wrapped in a
	// *QueryError.
	FindOne(ctx context.Context, loc Locator) (Node, error)

	// FindFirst returns the first match in document order without waiting.
	// A nil Node with a nil error means nothing matched.
	FindFirst(ctx context.Context, loc Locator) (Node, error)

	// FindAll returns every match in document order without waiting.
	FindAll(ctx context.Context, loc Locator) ([]Node, error)
}

// Node is a single element. For <option> elements Checked and SetChecked
// report and change selectedness.
type Node interface {
	Scope

	// Text returns the rendered text content with surrounding whitespace
	// trimmed.
	Text(ctx context.Context) (string, error)
	// Value returns the current form value of an input, textarea, select or
	// option element.
	Value(ctx context.Context) (string, error)
	SetValue(ctx context.Context, value string) error

	Checked(ctx context.Context) (bool, error)
	SetChecked(ctx context.Context, checked bool) error

	HasClass(ctx context.Context, class string) (bool, error)
	SetClass(ctx context.Context, class string, present bool) error

	// Attribute returns the attribute value and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)
	SetAttribute(ctx context.Context, name, value string) error
	RemoveAttribute(ctx context.Context, name string) error

	// Matches reports whether the element itself satisfies a CSS selector.
	Matches(ctx context.Context, selector string) (bool, error)

	Click(ctx context.Context) error
}

// Detacher is implemented by nodes that can tell when the page they belong to
// has been replaced, for example after a form submission navigated away.
type Detacher interface {
	Detached() bool
}

// IsDetached reports whether node implements Detacher and is detached.
func IsDetached(node Node) bool {
	if node == nil {
		return true
	}
	if d, ok := node.(Detacher); ok {
		return d.Detached()
	}
	return false
}

// Select narrows matches to the FindOne/FindFirst contract. Implementations
// collect candidates and delegate here so the error shape stays identical
// across engines.
func Select(loc Locator, matches []Node, strict bool) (Node, error) {
	switch {
	case len(matches) == 0 && strict:
		return nil, &QueryError{Locator: loc, Count: 0, Err: ErrNotFound}
	case len(matches) == 0:
		return nil, nil
	case len(matches) > 1 && strict:
		return nil, &QueryError{Locator: loc, Count: len(matches), Err: ErrAmbiguous}
	default:
		return matches[0], nil
	}
}
