// Package domino models HTML forms as reusable definitions for acceptance
// tests. A definition names a form's fields and how to find them once; tests
// then locate the form on a page and read, write and submit it by field name.
//
// The subpackages hold the pieces: pkg/form (definitions and bound forms),
// pkg/fieldtype (control kinds), pkg/dom with its htmldom and roddom drivers,
// pkg/browser (an in-process session) and pkg/definition (YAML/JSON loading).
package domino

import (
	"net/http"

	"github.com/goliatone/go-domino/pkg/browser"
	"github.com/goliatone/go-domino/pkg/definition"
	"github.com/goliatone/go-domino/pkg/dom"
	"github.com/goliatone/go-domino/pkg/form"
)

type (
	// Definition aliases form.Definition.
	Definition = form.Definition
	// Form aliases form.Form, a definition bound to a located root.
	Form = form.Form
	// Values aliases form.Values.
	Values      = form.Values
	Option      = form.Option
	FieldOption = form.FieldOption
	Converter   = form.Converter
	Session     = browser.Session
	Scope       = dom.Scope
	ConfigError = form.ConfigError
	QueryError  = dom.QueryError
)

var (
	ErrConfiguration = form.ErrConfiguration
	ErrStale         = form.ErrStale
	ErrNotFound      = dom.ErrNotFound
	ErrAmbiguous     = dom.ErrAmbiguous
)

// Define builds a form definition. See form.Define.
func Define(options ...Option) (*Definition, error) {
	return form.Define(options...)
}

// MustDefine is like Define but panics on configuration errors. It suits
// package-level definitions.
func MustDefine(options ...Option) *Definition {
	return form.MustDefine(options...)
}

// LoadDefinitions reads every YAML/JSON definition file below dir.
func LoadDefinitions(dir string, options ...definition.Option) (*definition.Store, error) {
	return definition.LoadDir(dir, options...)
}

// NewSession starts an in-process browser session against handler.
func NewSession(handler http.Handler, options ...browser.Option) (*Session, error) {
	return browser.New(handler, options...)
}
