package testsupport

import (
	"net/http"

	"go.uber.org/zap"
)

// Choice is one option of a select or checkbox group rendered by the people
// app.
type Choice struct {
	Value string
	Label string
}

// GuardFunc may reject a request before the people app handles it.
type GuardFunc func(r *http.Request) error

// Options configures the people app.
type Options struct {
	BasePath string
	Colors   []Choice
	Vehicles []Choice
	Tags     []Choice
	Store    *Store
	Guard    GuardFunc
	Logger   *zap.Logger
}

type OptionFn func(*Options)

func DefaultColors() []Choice {
	return []Choice{
		{Value: "red", Label: "Red"},
		{Value: "green", Label: "Green"},
		{Value: "blue", Label: "Blue"},
	}
}

func DefaultVehicles() []Choice {
	return []Choice{
		{Value: "bike", Label: "Bike"},
		{Value: "car", Label: "Car"},
		{Value: "plane", Label: "Plane"},
	}
}

func DefaultTags() []Choice {
	return []Choice{
		{Value: "musician", Label: "Musician"},
		{Value: "actor", Label: "Actor"},
		{Value: "golfer", Label: "Golfer"},
	}
}

func DefaultOptions() Options {
	return Options{
		Colors:   DefaultColors(),
		Vehicles: DefaultVehicles(),
		Tags:     DefaultTags(),
	}
}

// NewOptions applies fns over DefaultOptions. A missing store is seeded with
// Alice.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if len(opts.Colors) == 0 {
		opts.Colors = DefaultColors()
	}
	if len(opts.Vehicles) == 0 {
		opts.Vehicles = DefaultVehicles()
	}
	if len(opts.Tags) == 0 {
		opts.Tags = DefaultTags()
	}
	if opts.Store == nil {
		opts.Store = NewStore(Alice())
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.BasePath = normalizeBasePath(opts.BasePath)
	return opts
}

func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithStore(store *Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = store
	}
}

// WithPeople seeds a fresh store with people.
func WithPeople(people ...Person) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = NewStore(people...)
	}
}

func WithColors(choices []Choice) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Colors = append([]Choice(nil), choices...)
	}
}

func WithVehicles(choices []Choice) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Vehicles = append([]Choice(nil), choices...)
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
