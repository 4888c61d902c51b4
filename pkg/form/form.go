package form

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/goliatone/go-domino/pkg/dom"
)

// State of a Form instance.
type State int

const (
	// Bound forms have a located root and can be read and written.
	Bound State = iota
	// Stale forms were saved or their page was replaced. Only a new Find
	// produces a Bound form again.
	Stale
)

func (s State) String() string {
	switch s {
	case Bound:
		return "bound"
	case Stale:
		return "stale"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Form is a Definition bound to one root element.
type Form struct {
	def   *Definition
	root  dom.Node
	stale atomic.Bool
}

func (f *Form) Definition() *Definition { return f.def }

// Root returns the bound root element.
func (f *Form) Root() dom.Node { return f.root }

// State reports Stale after Save, or once the root element reports that its
// page was replaced.
func (f *Form) State() State {
	if f.stale.Load() {
		return Stale
	}
	if dom.IsDetached(f.root) {
		f.stale.Store(true)
		return Stale
	}
	return Bound
}

func (f *Form) ensureBound() error {
	if f.State() == Stale {
		return fmt.Errorf("%w: %s", ErrStale, f.def.name)
	}
	return nil
}

// Get reads one field.
func (f *Form) Get(ctx context.Context, name string) (any, error) {
	field, err := f.def.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := f.ensureBound(); err != nil {
		return nil, err
	}
	return field.Read(ctx, f.root)
}

// SetField writes one field.
func (f *Form) SetField(ctx context.Context, name string, value any) error {
	field, err := f.def.lookup(name)
	if err != nil {
		return err
	}
	if err := f.ensureBound(); err != nil {
		return err
	}
	f.def.logger.Debug("set field", zap.String("field", name), zap.Any("value", value))
	return field.Write(ctx, f.root, value)
}

// Fields reads every declared field in declaration order.
func (f *Form) Fields(ctx context.Context) (Values, error) {
	if err := f.ensureBound(); err != nil {
		return Values{}, err
	}
	values := newValues(len(f.def.fields))
	for _, field := range f.def.fields {
		value, err := field.Read(ctx, f.root)
		if err != nil {
			return Values{}, err
		}
		values.add(field.name, value)
	}
	return values, nil
}

// Set writes every given field. Names are checked before anything is written,
// so an unknown name leaves the page untouched. Writes happen in declaration
// order; fields not mentioned are left alone.
func (f *Form) Set(ctx context.Context, values map[string]any) error {
	var unknown []string
	for name := range values {
		if _, ok := f.def.index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &ConfigError{Form: f.def.name, Field: unknown[0], Reason: fmt.Sprintf("unknown field (unknown: %v)", unknown)}
	}
	if err := f.ensureBound(); err != nil {
		return err
	}
	for _, field := range f.def.fields {
		value, ok := values[field.name]
		if !ok {
			continue
		}
		f.def.logger.Debug("set field", zap.String("field", field.name), zap.Any("value", value))
		if err := field.Write(ctx, f.root, value); err != nil {
			return err
		}
	}
	return nil
}

// Save clicks the submit control inside the root. A missing control fails
// with the engine's not found error. The form is Stale once the click
// succeeds.
func (f *Form) Save(ctx context.Context) error {
	if err := f.ensureBound(); err != nil {
		return err
	}
	submit, err := f.root.FindOne(ctx, dom.CSS(f.def.submit))
	if err != nil {
		return err
	}
	f.def.logger.Debug("submit", zap.String("selector", f.def.submit))
	if err := submit.Click(ctx); err != nil {
		return err
	}
	f.stale.Store(true)
	return nil
}

// String reads a field expected to hold a string.
func (f *Form) String(ctx context.Context, name string) (string, error) {
	return ValueOf[string](ctx, f, name)
}

// Int reads a field whose converter produces an int.
func (f *Form) Int(ctx context.Context, name string) (int, error) {
	return ValueOf[int](ctx, f, name)
}

// Bool reads a boolean field.
func (f *Form) Bool(ctx context.Context, name string) (bool, error) {
	return ValueOf[bool](ctx, f, name)
}

// Strings reads a multi-value field.
func (f *Form) Strings(ctx context.Context, name string) ([]string, error) {
	return ValueOf[[]string](ctx, f, name)
}

// ValueOf reads a field and asserts its type.
func ValueOf[T any](ctx context.Context, f *Form, name string) (T, error) {
	var zero T
	raw, err := f.Get(ctx, name)
	if err != nil {
		return zero, err
	}
	value, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("form: field %q holds %T, not %T", name, raw, zero)
	}
	return value, nil
}

// Accessor is a typed handle on one field of a Definition, the equivalent of
// a generated reader/writer pair.
type Accessor[T any] struct {
	name string
}

// Typed returns an Accessor for name. It panics when def has no such field,
// so accessors can be declared next to the definition as package variables.
func Typed[T any](def *Definition, name string) Accessor[T] {
	if _, ok := def.index[name]; !ok {
		panic(&ConfigError{Form: def.name, Field: name, Reason: "unknown field"})
	}
	return Accessor[T]{name: name}
}

func (a Accessor[T]) Name() string { return a.name }

func (a Accessor[T]) Get(ctx context.Context, f *Form) (T, error) {
	return ValueOf[T](ctx, f, a.name)
}

func (a Accessor[T]) Set(ctx context.Context, f *Form, value T) error {
	return f.SetField(ctx, a.name, value)
}
