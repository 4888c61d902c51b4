package form

import (
	"context"
	"fmt"

	"github.com/goliatone/go-domino/pkg/dom"
	"github.com/goliatone/go-domino/pkg/fieldtype"
)

// FieldSpec is one declared attribute of a form: a resolved locator, the field
// type that reads and writes it, and an optional read-side converter.
type FieldSpec struct {
	name    string
	locator dom.Locator
	typ     fieldtype.Type
	convert Converter
}

// NewFieldSpec assembles a FieldSpec from already resolved parts. Most
// callers declare fields through Define instead.
func NewFieldSpec(name string, loc dom.Locator, typ fieldtype.Type, convert Converter) *FieldSpec {
	if typ == nil {
		typ = fieldtype.Text{}
	}
	return &FieldSpec{name: name, locator: loc, typ: typ, convert: convert}
}

func (f *FieldSpec) Name() string { return f.name }

func (f *FieldSpec) Locator() dom.Locator { return f.locator }

func (f *FieldSpec) Type() fieldtype.Type { return f.typ }

// Read returns the field's value below root, passed through the converter
// when one is declared.
func (f *FieldSpec) Read(ctx context.Context, root dom.Node) (any, error) {
	raw, err := f.typ.Read(ctx, root, f.locator)
	if err != nil {
		return nil, err
	}
	if f.convert == nil {
		return raw, nil
	}
	value, err := f.convert(raw)
	if err != nil {
		return nil, fmt.Errorf("form: convert field %q: %w", f.name, err)
	}
	return value, nil
}

// Write hands value to the field type unchanged. Converters only apply to
// reads, so callers pass values already in the form the control expects
// (an int for a text field is formatted, not converted back).
func (f *FieldSpec) Write(ctx context.Context, root dom.Node, value any) error {
	return f.typ.Write(ctx, root, f.locator, value)
}
