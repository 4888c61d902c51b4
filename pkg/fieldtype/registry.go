package fieldtype

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Built-in field type tags exposed by the registry.
const (
	TagText       = "text"
	TagSelect     = "select"
	TagBoolean    = "boolean"
	TagCheckboxes = "checkboxes"
)

var (
	// ErrUnknownType reports a tag with no registered factory.
	ErrUnknownType = errors.New("fieldtype: unknown field type")
	// ErrNotMultiple reports Options.Multiple on a type with no multi-value
	// variant.
	ErrNotMultiple = errors.New("fieldtype: type has no multi-value variant")
)

// Options carries declaration-time settings a factory may honour.
type Options struct {
	// Multiple asks for the multi-value variant (multi-select).
	Multiple bool
}

// Factory builds a Type for one field declaration.
type Factory func(opts Options) (Type, error)

// Registry maps symbolic tags to field type factories. Lookups happen while a
// form is defined, so an unknown tag fails at declaration time.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry holding the built-in tags. Tags
// registered here are visible to every form defined afterwards.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewRegistry creates a registry with the built-in tags registered.
func NewRegistry() *Registry {
	reg := New()
	reg.registerBuiltins()
	return reg
}

// Clone returns a copy so callers can add tags without touching the source.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for tag, factory := range r.factories {
		cloned.factories[tag] = factory
	}
	return cloned
}

// Register associates a factory with a tag. Registering a tag twice is an
// error.
func (r *Registry) Register(tag string, factory Factory) error {
	if tag = Normalize(tag); tag == "" {
		return fmt.Errorf("fieldtype: tag is required")
	}
	if factory == nil {
		return fmt.Errorf("fieldtype: factory for %q is nil", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[tag]; exists {
		return fmt.Errorf("fieldtype: tag %q already registered", tag)
	}
	r.factories[tag] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(tag string, factory Factory) {
	if err := r.Register(tag, factory); err != nil {
		panic(err)
	}
}

// Lookup builds the Type for tag. An empty tag selects the text type.
func (r *Registry) Lookup(tag string, opts Options) (Type, error) {
	name := Normalize(tag)
	if name == "" {
		name = TagText
	}

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, tag)
	}
	return factory(opts)
}

// Has reports whether a tag is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[Normalize(tag)]
	return ok
}

// Tags returns the registered tags sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Normalize lower-cases a tag and drops a leading colon, so ":select" and
// "Select" name the same type.
func Normalize(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), ":"))
}

func (r *Registry) registerBuiltins() {
	r.MustRegister(TagText, func(opts Options) (Type, error) {
		if opts.Multiple {
			return nil, fmt.Errorf("%w: %q", ErrNotMultiple, TagText)
		}
		return Text{}, nil
	})
	r.MustRegister(TagSelect, func(opts Options) (Type, error) {
		if opts.Multiple {
			return MultiSelect{}, nil
		}
		return Select{}, nil
	})
	r.MustRegister(TagBoolean, func(opts Options) (Type, error) {
		if opts.Multiple {
			return nil, fmt.Errorf("%w: %q", ErrNotMultiple, TagBoolean)
		}
		return Boolean{}, nil
	})
	// A checkbox group is multi-valued either way.
	r.MustRegister(TagCheckboxes, func(Options) (Type, error) {
		return CheckboxGroup{}, nil
	})
}
