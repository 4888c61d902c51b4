package form

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-domino/pkg/dom"
	"github.com/goliatone/go-domino/pkg/fieldtype"
	"github.com/goliatone/go-domino/pkg/locator"
)

// DefaultSubmitSelector locates the submit control when SubmitWith is not
// used.
const DefaultSubmitSelector = "input[type='submit']"

// Option configures a Definition.
type Option func(*builder)

// FieldOption configures one field declaration.
type FieldOption func(*fieldDecl)

type fieldDecl struct {
	name     string
	at       string
	tag      string
	custom   fieldtype.Type
	multiple bool
	convert  Converter
}

type builder struct {
	name     string
	selector string
	key      string
	submit   string
	fields   []fieldDecl
	registry *fieldtype.Registry
	logger   *zap.Logger
}

// Name labels the definition in errors and logs.
func Name(name string) Option {
	return func(b *builder) {
		b.name = strings.TrimSpace(name)
	}
}

// Selector sets the CSS selector of the form root. Required.
func Selector(css string) Option {
	return func(b *builder) {
		b.selector = strings.TrimSpace(css)
	}
}

// Key sets the prefix used to derive field names: key "person" and field
// "age" locate person[age].
func Key(key string) Option {
	return func(b *builder) {
		b.key = strings.TrimSpace(key)
	}
}

// SubmitWith overrides DefaultSubmitSelector.
func SubmitWith(css string) Option {
	return func(b *builder) {
		b.submit = strings.TrimSpace(css)
	}
}

// Field declares a field. Declaration order is the order Fields reports.
func Field(name string, options ...FieldOption) Option {
	return func(b *builder) {
		decl := fieldDecl{name: strings.TrimSpace(name)}
		for _, opt := range options {
			if opt == nil {
				continue
			}
			opt(&decl)
		}
		b.fields = append(b.fields, decl)
	}
}

// WithRegistry resolves field type tags against reg instead of
// fieldtype.Default().
func WithRegistry(reg *fieldtype.Registry) Option {
	return func(b *builder) {
		if reg != nil {
			b.registry = reg
		}
	}
}

// WithLogger sets the logger used for debug output. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// At sets an explicit locator: label text, a control id or name, a CSS
// selector, a prefixed locator (css:, xpath:, label:, id:, name:) or a
// combination selector starting with "&".
func At(loc string) FieldOption {
	return func(d *fieldDecl) {
		d.at = loc
	}
}

// As selects a registered field type by tag.
func As(tag string) FieldOption {
	return func(d *fieldDecl) {
		d.tag = tag
	}
}

// AsType uses a caller supplied field type directly.
func AsType(typ fieldtype.Type) FieldOption {
	return func(d *fieldDecl) {
		d.custom = typ
	}
}

// Multiple asks for the multi-value variant of the field type.
func Multiple() FieldOption {
	return func(d *fieldDecl) {
		d.multiple = true
	}
}

// Convert sets the read-side converter.
func Convert(fn Converter) FieldOption {
	return func(d *fieldDecl) {
		d.convert = fn
	}
}

// Definition is the immutable description of a kind of form. It is safe to
// share between goroutines and between any number of Form instances.
type Definition struct {
	name     string
	selector string
	key      string
	submit   string
	fields   []*FieldSpec
	index    map[string]*FieldSpec
	logger   *zap.Logger
}

// Define builds a Definition, resolving every field's locator and type.
func Define(options ...Option) (*Definition, error) {
	b := &builder{
		submit:   DefaultSubmitSelector,
		registry: fieldtype.Default(),
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b.build()
}

// MustDefine panics when the definition is invalid. Intended for package-level
// variables.
func MustDefine(options ...Option) *Definition {
	def, err := Define(options...)
	if err != nil {
		panic(err)
	}
	return def
}

func (b *builder) build() (*Definition, error) {
	name := b.name
	if name == "" {
		name = b.selector
	}
	if b.selector == "" {
		return nil, &ConfigError{Form: b.name, Reason: "selector is required"}
	}
	if b.submit == "" {
		b.submit = DefaultSubmitSelector
	}

	def := &Definition{
		name:     name,
		selector: b.selector,
		key:      b.key,
		submit:   b.submit,
		fields:   make([]*FieldSpec, 0, len(b.fields)),
		index:    make(map[string]*FieldSpec, len(b.fields)),
		logger:   b.logger.With(zap.String("form", name)),
	}

	for _, decl := range b.fields {
		if decl.name == "" {
			return nil, &ConfigError{Form: name, Reason: "field name is required"}
		}
		if _, exists := def.index[decl.name]; exists {
			return nil, &ConfigError{Form: name, Field: decl.name, Reason: "duplicate field name"}
		}
		typ, err := b.resolveType(decl)
		if err != nil {
			return nil, &ConfigError{Form: name, Field: decl.name, Err: err}
		}
		field := NewFieldSpec(decl.name, locator.Resolve(decl.name, decl.at, b.key), typ, decl.convert)
		def.fields = append(def.fields, field)
		def.index[decl.name] = field
	}
	return def, nil
}

func (b *builder) resolveType(decl fieldDecl) (fieldtype.Type, error) {
	if decl.custom != nil {
		if strings.TrimSpace(decl.tag) != "" {
			return nil, errors.New("both a type tag and a custom type are set")
		}
		if decl.multiple {
			return nil, errors.New("multiple requires a type tag")
		}
		return decl.custom, nil
	}
	return b.registry.Lookup(decl.tag, fieldtype.Options{Multiple: decl.multiple})
}

func (d *Definition) Name() string { return d.name }

func (d *Definition) Selector() string { return d.selector }

func (d *Definition) Key() string { return d.key }

func (d *Definition) SubmitSelector() string { return d.submit }

// Fields returns the declared fields in declaration order.
func (d *Definition) Fields() []*FieldSpec {
	return append([]*FieldSpec(nil), d.fields...)
}

// Names returns the declared field names in declaration order.
func (d *Definition) Names() []string {
	names := make([]string, len(d.fields))
	for idx, field := range d.fields {
		names[idx] = field.name
	}
	return names
}

// Field returns the named field.
func (d *Definition) Field(name string) (*FieldSpec, bool) {
	field, ok := d.index[name]
	return field, ok
}

func (d *Definition) lookup(name string) (*FieldSpec, error) {
	field, ok := d.index[name]
	if !ok {
		return nil, &ConfigError{Form: d.name, Field: name, Reason: "unknown field"}
	}
	return field, nil
}

var errNilScope = errors.New("form: scope is required")

// Find locates exactly one root element in scope. Zero or several matches
// return the engine's error unchanged (dom.ErrNotFound, dom.ErrAmbiguous).
func (d *Definition) Find(ctx context.Context, scope dom.Scope) (*Form, error) {
	if scope == nil {
		return nil, errNilScope
	}
	node, err := scope.FindOne(ctx, dom.CSS(d.selector))
	if err != nil {
		return nil, err
	}
	d.logger.Debug("form located", zap.String("selector", d.selector))
	return d.Bind(node), nil
}

// First returns the first root element in scope without failing when there
// is none: a nil Form and nil error mean the form is absent.
func (d *Definition) First(ctx context.Context, scope dom.Scope) (*Form, error) {
	if scope == nil {
		return nil, errNilScope
	}
	node, err := scope.FindFirst(ctx, dom.CSS(d.selector))
	if err != nil || node == nil {
		return nil, err
	}
	return d.Bind(node), nil
}

// All returns a Form for every root element in scope, in document order.
func (d *Definition) All(ctx context.Context, scope dom.Scope) ([]*Form, error) {
	if scope == nil {
		return nil, errNilScope
	}
	nodes, err := scope.FindAll(ctx, dom.CSS(d.selector))
	if err != nil {
		return nil, err
	}
	forms := make([]*Form, len(nodes))
	for idx, node := range nodes {
		forms[idx] = d.Bind(node)
	}
	return forms, nil
}

// Bind wraps an already located root element.
func (d *Definition) Bind(root dom.Node) *Form {
	return &Form{def: d, root: root}
}
