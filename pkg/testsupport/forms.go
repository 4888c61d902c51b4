package testsupport

import (
	"testing"

	"github.com/goliatone/go-domino/pkg/browser"
	"github.com/goliatone/go-domino/pkg/dom/htmldom"
	"github.com/goliatone/go-domino/pkg/fieldtype"
	"github.com/goliatone/go-domino/pkg/form"
)

// PersonForm describes the edit form rendered by the people app. Its fields
// use every locator style: label text, derived key names, ids and the
// default text type.
var PersonForm = form.MustDefine(
	form.Name("person"),
	form.Selector("form.person"),
	form.Key("person"),
	form.SubmitWith("input[type='submit'][name='commit']"),
	form.Field("name", form.At("First Name")),
	form.Field("last_name"),
	form.Field("biography"),
	form.Field("favorite_color", form.As(fieldtype.TagSelect)),
	form.Field("age", form.At("person_age"), form.Convert(form.Int)),
	form.Field("vehicles", form.At("Vehicles"), form.As(fieldtype.TagSelect), form.Multiple()),
	form.Field("is_human", form.As(fieldtype.TagBoolean)),
)

// NewPeopleSession starts a browser session on the people app and opens the
// edit form of the seeded person. The app is returned so tests can inspect
// the store.
func NewPeopleSession(t *testing.T, fns ...OptionFn) (*browser.Session, *PeopleApp) {
	t.Helper()

	app := NewPeopleApp(fns...)
	session, err := browser.New(app.Handler())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := session.Visit(Context(), app.EditPath(1)); err != nil {
		t.Fatalf("visit edit page: %v", err)
	}
	return session, app
}

// MustParse parses markup into a document, failing the test on error.
func MustParse(t *testing.T, markup string, options ...htmldom.Option) *htmldom.Document {
	t.Helper()

	doc, err := htmldom.ParseString(markup, options...)
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}
	return doc
}
