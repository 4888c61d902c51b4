// Package locator turns a declared field name and an optional explicit locator
// into the dom.Locator used to find the field's element.
package locator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/goliatone/go-domino/pkg/dom"
)

// CombinatorMarker prefixes predicates evaluated against the form root itself.
const CombinatorMarker = "&"

var (
	nameShape  = regexp.MustCompile(`^[A-Za-z_][\w-]*(\[[\w-]*\])*$`)
	cssSignals = ".#[]:>+~*="

	// Text with spaces is only a selector when it also has structure.
	structuralSignals = ".#[>+~"

	prefixes = []struct {
		prefix string
		kind   dom.Kind
	}{
		{"css:", dom.KindCSS},
		{"xpath:", dom.KindXPath},
		{"label:", dom.KindLabel},
		{"id:", dom.KindID},
		{"name:", dom.KindName},
	}
)

// Resolve computes the locator for a field. The result depends only on its
// arguments.
//
// An explicit locator starting with "&" becomes a Self locator. A "css:",
// "xpath:", "label:", "id:" or "name:" prefix forces that kind. Name shaped
// values (age, person_age, person[age]) become Field locators, values that parse
// as CSS selectors become CSS locators and anything else is treated as label
// text.
// Without an explicit locator the field name is used, bracketed under key when
// one is set.
func Resolve(name, explicit, key string) dom.Locator {
	explicit = strings.TrimSpace(explicit)
	if explicit == "" {
		return dom.Field(DefaultName(name, key))
	}
	return Classify(explicit)
}

// DefaultName returns key[name] when key is set, otherwise name.
func DefaultName(name, key string) string {
	name = strings.TrimSpace(name)
	key = strings.TrimSpace(key)
	if key == "" {
		return name
	}
	return key + "[" + name + "]"
}

// Classify interprets an explicit locator string.
func Classify(raw string) dom.Locator {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, CombinatorMarker) {
		return dom.Self(strings.TrimSpace(strings.TrimPrefix(raw, CombinatorMarker)))
	}
	for _, entry := range prefixes {
		if strings.HasPrefix(raw, entry.prefix) {
			return dom.Locator{Kind: entry.kind, Value: strings.TrimSpace(raw[len(entry.prefix):])}
		}
	}
	if nameShape.MatchString(raw) {
		return dom.Field(raw)
	}
	if strings.ContainsAny(raw, cssSignals) && selectorShaped(raw) {
		return dom.CSS(raw)
	}
	return dom.Label(raw)
}

// selectorShaped rejects label text that merely contains selector
// punctuation, such as "E-mail:" or "Password *".
func selectorShaped(raw string) bool {
	if strings.ContainsAny(raw, " \t\n") && !strings.ContainsAny(raw, structuralSignals) {
		return false
	}
	_, err := cascadia.Compile(raw)
	return err == nil
}

// Predicate is a Self locator split into the single class or attribute it
// tests, so it can be written back onto the root element.
type Predicate struct {
	Class     string
	Attribute string
	// Value is the attribute value required by the predicate. HasValue is
	// false for a bare presence test such as [data-on].
	Value    string
	HasValue bool
}

var (
	classPredicate = regexp.MustCompile(`^\.([A-Za-z_-][\w-]*)$`)
	attrPredicate  = regexp.MustCompile(`^\[\s*([A-Za-z_:][\w:.-]*)\s*(?:=\s*(?:"([^"]*)"|'([^']*)'|([^\]\s'"]+))\s*)?\]$`)
)

// ParsePredicate splits a Self predicate (".human", "[data-human]",
// "[data-state='on']") into its parts. Compound predicates cannot be written
// back and return an error.
func ParsePredicate(predicate string) (Predicate, error) {
	predicate = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(predicate), CombinatorMarker))
	if m := classPredicate.FindStringSubmatch(predicate); m != nil {
		return Predicate{Class: m[1]}, nil
	}
	if m := attrPredicate.FindStringSubmatch(predicate); m != nil {
		p := Predicate{Attribute: m[1]}
		for _, candidate := range m[2:] {
			if candidate != "" {
				p.Value = candidate
				p.HasValue = true
				break
			}
		}
		if !p.HasValue && strings.Contains(predicate, "=") {
			p.HasValue = true
		}
		return p, nil
	}
	return Predicate{}, fmt.Errorf("locator: predicate %q must be a single class or attribute test", predicate)
}
