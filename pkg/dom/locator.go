package dom

import (
	"fmt"
	"strings"
)

// Kind identifies how a Locator value is interpreted.
type Kind string

const (
	// KindField matches a form control (input, select, textarea) by id, name,
	// placeholder or associated label text.
	KindField Kind = "field"
	// KindCSS matches descendants by CSS selector.
	KindCSS Kind = "css"
	// KindXPath matches by XPath expression evaluated relative to the scope.
	KindXPath Kind = "xpath"
	// KindLabel matches the control associated with a label's text, either
	// through the label's for attribute or by nesting.
	KindLabel Kind = "label"
	// KindID matches an element by id.
	KindID Kind = "id"
	// KindName matches an element by name attribute.
	KindName Kind = "name"
	// KindSelf tests a CSS predicate against the scope element itself instead
	// of searching its descendants.
	KindSelf Kind = "self"
)

// Locator is an opaque description of how to find an element. It is comparable
// and safe to use as a map key.
type Locator struct {
	Kind  Kind
	Value string
}

// CSS builds a CSS selector locator.
func CSS(selector string) Locator { return Locator{Kind: KindCSS, Value: selector} }

// XPath builds an XPath locator.
func XPath(expr string) Locator { return Locator{Kind: KindXPath, Value: expr} }

// Field builds a form control locator.
func Field(value string) Locator { return Locator{Kind: KindField, Value: value} }

// Label builds a label text locator.
func Label(text string) Locator { return Locator{Kind: KindLabel, Value: text} }

// ID builds an id locator.
func ID(id string) Locator { return Locator{Kind: KindID, Value: id} }

// Name builds a name attribute locator.
func Name(name string) Locator { return Locator{Kind: KindName, Value: name} }

// Self builds a locator that tests predicate against the scope itself. The
// predicate is a CSS compound selector such as ".active" or "[data-on]".
func Self(predicate string) Locator { return Locator{Kind: KindSelf, Value: predicate} }

// IsSelf reports whether the locator targets the scope element itself.
func (l Locator) IsSelf() bool { return l.Kind == KindSelf }

// IsZero reports whether the locator was never set.
func (l Locator) IsZero() bool { return l.Kind == "" && l.Value == "" }

func (l Locator) String() string {
	if l.Kind == KindSelf {
		return fmt.Sprintf("self %q", "&"+l.Value)
	}
	return fmt.Sprintf("%s %q", l.Kind, l.Value)
}

const controlTest = "self::input[not(@type='submit' or @type='image' or @type='hidden' or @type='button' or @type='reset')] or self::select or self::textarea"

// Literal quotes value as an XPath string literal, falling back to concat()
// when the value contains both quote characters.
func Literal(value string) string {
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	if !strings.Contains(value, `"`) {
		return `"` + value + `"`
	}
	parts := strings.Split(value, "'")
	quoted := make([]string, 0, len(parts)*2)
	for idx, part := range parts {
		if idx > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// ControlXPath matches form controls whose id, name or placeholder equals value.
func ControlXPath(value string) string {
	lit := Literal(value)
	return ".//*[" + controlTest + "][@id=" + lit + " or @name=" + lit + " or @placeholder=" + lit + "]"
}

// LabeledControlXPath matches controls associated with a label, either via the
// label's for attribute or by being nested inside it.
func LabeledControlXPath(text string) string {
	test := labelTest(text)
	return ".//*[" + controlTest + "][@id=//label[" + test + "]/@for]" +
		" | .//label[" + test + "]//*[" + controlTest + "]"
}

// labelTest compares the label's whole text, or its leading text node for
// labels wrapping their control, with text.
func labelTest(text string) string {
	lit := Literal(strings.Join(strings.Fields(text), " "))
	return "normalize-space(.)=" + lit + " or normalize-space(text())=" + lit
}

// FieldXPath is the single-expression form of a KindField lookup, for engines
// that evaluate XPath natively.
func FieldXPath(value string) string {
	return ControlXPath(value) + " | " + LabeledControlXPath(value)
}

// IDXPath matches elements by id.
func IDXPath(id string) string {
	return ".//*[@id=" + Literal(id) + "]"
}

// NameXPath matches elements by name attribute.
func NameXPath(name string) string {
	return ".//*[@name=" + Literal(name) + "]"
}
