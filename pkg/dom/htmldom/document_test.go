package htmldom_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-domino/pkg/dom"
	"github.com/goliatone/go-domino/pkg/dom/htmldom"
)

const personMarkup = `<!doctype html>
<html><head><title> People </title></head>
<body>
<form class="person" action="/people/1" method="post" data-human>
  <label for="person_name">First Name</label>
  <input id="person_name" name="person[name]" value="Alice">
  <input id="person_last_name" name="person[last_name]" value="Cooper" placeholder="Surname">
  <label>Biography <textarea name="person[biography]">Alice is fun</textarea></label>
  <label for="person_favorite_color">Favorite Color</label>
  <select id="person_favorite_color" name="person[favorite_color]">
    <option value="red">Red</option>
    <option value="blue" selected>Blue</option>
  </select>
  <select id="person_tags" name="person[tags][]" multiple>
    <option>Bike</option>
    <option>Car</option>
    <option>Boat</option>
  </select>
  <input type="hidden" name="token" value="t0k">
  <input type="checkbox" id="person_is_human" name="person[is_human]" value="1">
  <input type="radio" name="person[size]" value="s" checked>
  <input type="radio" name="person[size]" value="m">
  <input type="submit" name="commit" value="Save">
</form>
<div class="card"></div><div class="card"></div>
</body></html>`

func parse(t *testing.T, options ...htmldom.Option) *htmldom.Document {
	t.Helper()
	doc, err := htmldom.ParseString(personMarkup, options...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestFindOneStrictness(t *testing.T) {
	ctx := context.Background()
	doc := parse(t)

	if _, err := doc.FindOne(ctx, dom.CSS("form.person")); err != nil {
		t.Fatalf("find form: %v", err)
	}

	_, err := doc.FindOne(ctx, dom.CSS("form.missing"))
	if !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = doc.FindOne(ctx, dom.CSS("div.card"))
	if !errors.Is(err, dom.ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}

	node, err := doc.FindFirst(ctx, dom.CSS("form.missing"))
	if err != nil || node != nil {
		t.Fatalf("lenient lookup: want nil,nil got %v,%v", node, err)
	}

	all, err := doc.FindAll(ctx, dom.CSS("div.card"))
	if err != nil || len(all) != 2 {
		t.Fatalf("find all: want 2 got %d (%v)", len(all), err)
	}
}

func TestFieldLocatorMatchesIDNamePlaceholderAndLabel(t *testing.T) {
	ctx := context.Background()
	form := mustFind(t, parse(t), dom.CSS("form.person"))

	cases := []struct {
		loc  dom.Locator
		want string
	}{
		{loc: dom.Field("person[name]"), want: "Alice"},
		{loc: dom.Field("person_name"), want: "Alice"},
		{loc: dom.Field("First Name"), want: "Alice"},
		{loc: dom.Field("Surname"), want: "Cooper"},
		{loc: dom.Label("Biography"), want: "Alice is fun"},
		{loc: dom.Label("Favorite  Color"), want: "blue"},
		{loc: dom.ID("person_last_name"), want: "Cooper"},
		{loc: dom.Name("person[last_name]"), want: "Cooper"},
		{loc: dom.XPath(".//input[@id='person_name']"), want: "Alice"},
	}
	for _, tc := range cases {
		node, err := form.FindOne(ctx, tc.loc)
		if err != nil {
			t.Fatalf("%v: %v", tc.loc, err)
		}
		got, err := node.Value(ctx)
		if err != nil {
			t.Fatalf("%v value: %v", tc.loc, err)
		}
		if got != tc.want {
			t.Fatalf("%v: want %q got %q", tc.loc, tc.want, got)
		}
	}

	if _, err := form.FindOne(ctx, dom.Field("token")); !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("hidden inputs are not fields, got %v", err)
	}
}

func TestSelfLocator(t *testing.T) {
	ctx := context.Background()
	form := mustFind(t, parse(t), dom.CSS("form.person"))

	self, err := form.FindOne(ctx, dom.Self("[data-human]"))
	if err != nil {
		t.Fatalf("self locator: %v", err)
	}
	if ok, _ := self.Matches(ctx, "form.person"); !ok {
		t.Fatalf("self locator should return the scope element")
	}
	if _, err := form.FindOne(ctx, dom.Self(".robot")); !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unmatched predicate, got %v", err)
	}
}

func TestMutations(t *testing.T) {
	ctx := context.Background()
	form := mustFind(t, parse(t), dom.CSS("form.person"))

	bio := mustFindIn(t, form, dom.Field("person[biography]"))
	if err := bio.SetValue(ctx, "Now serious"); err != nil {
		t.Fatalf("set textarea: %v", err)
	}
	if got, _ := bio.Value(ctx); got != "Now serious" {
		t.Fatalf("textarea value: %q", got)
	}

	color := mustFindIn(t, form, dom.Field("person_favorite_color"))
	if err := color.SetValue(ctx, "red"); err != nil {
		t.Fatalf("set select: %v", err)
	}
	if got, _ := color.Value(ctx); got != "red" {
		t.Fatalf("select value: %q", got)
	}
	if err := color.SetValue(ctx, "green"); err == nil {
		t.Fatalf("expected unknown option to fail")
	}

	human := mustFindIn(t, form, dom.Field("person_is_human"))
	if err := human.Click(ctx); err != nil {
		t.Fatalf("click checkbox: %v", err)
	}
	if ok, _ := human.Checked(ctx); !ok {
		t.Fatalf("checkbox should be checked after click")
	}

	radios, _ := form.FindAll(ctx, dom.CSS("input[type=radio]"))
	if err := radios[1].SetChecked(ctx, true); err != nil {
		t.Fatalf("check radio: %v", err)
	}
	if ok, _ := radios[0].Checked(ctx); ok {
		t.Fatalf("checking one radio should uncheck the group")
	}

	if err := form.SetClass(ctx, "human", true); err != nil {
		t.Fatalf("set class: %v", err)
	}
	if ok, _ := form.HasClass(ctx, "human"); !ok {
		t.Fatalf("class not applied")
	}
	if ok, _ := form.Matches(ctx, ".person.human"); !ok {
		t.Fatalf("matches should see new class")
	}
	if err := form.SetClass(ctx, "human", false); err != nil {
		t.Fatalf("remove class: %v", err)
	}
	if ok, _ := form.HasClass(ctx, "human"); ok {
		t.Fatalf("class not removed")
	}
}

func TestSubmitBuildsFormDataSet(t *testing.T) {
	ctx := context.Background()
	var got htmldom.Submission
	doc := parse(t, htmldom.WithSubmitHandler(func(_ context.Context, sub htmldom.Submission) error {
		got = sub
		return nil
	}))
	form := mustFind(t, doc, dom.CSS("form.person"))

	tags, _ := form.FindAll(ctx, dom.CSS("#person_tags option"))
	_ = tags[0].SetChecked(ctx, true)
	_ = tags[2].SetChecked(ctx, true)

	submit := mustFindIn(t, form, dom.CSS("input[type='submit']"))
	if err := submit.Click(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got.Method != "POST" || got.Action != "/people/1" {
		t.Fatalf("submission target: %s %s", got.Method, got.Action)
	}
	want := url.Values{
		"person[name]":           {"Alice"},
		"person[last_name]":      {"Cooper"},
		"person[biography]":      {"Alice is fun"},
		"person[favorite_color]": {"blue"},
		"person[tags][]":         {"Bike", "Boat"},
		"token":                  {"t0k"},
		"person[size]":           {"s"},
		"commit":                 {"Save"},
	}
	if diff := cmp.Diff(want, got.Values); diff != "" {
		t.Fatalf("form values mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitWithoutHandler(t *testing.T) {
	ctx := context.Background()
	form := mustFind(t, parse(t), dom.CSS("form.person"))
	submit := mustFindIn(t, form, dom.CSS("input[type='submit']"))
	if err := submit.Click(ctx); !errors.Is(err, htmldom.ErrNoSubmitHandler) {
		t.Fatalf("expected ErrNoSubmitHandler, got %v", err)
	}
}

func TestDetach(t *testing.T) {
	doc := parse(t)
	form := mustFind(t, doc, dom.CSS("form.person"))
	if dom.IsDetached(form) {
		t.Fatalf("fresh element should be attached")
	}
	doc.Detach()
	if !dom.IsDetached(form) {
		t.Fatalf("element should report detached after document detach")
	}
}

func TestTitleAndSanitize(t *testing.T) {
	doc := parse(t)
	if got := doc.Title(); got != "People" {
		t.Fatalf("title: %q", got)
	}

	clean := htmldom.Sanitize(`<form class="person" onsubmit="evil()"><script>alert(1)</script><input name="a" value="b" onclick="x()"></form>`)
	if strings.Contains(clean, "script") || strings.Contains(clean, "onclick") || strings.Contains(clean, "onsubmit") {
		t.Fatalf("sanitize kept unsafe markup: %s", clean)
	}
	if !strings.Contains(clean, `name="a"`) {
		t.Fatalf("sanitize dropped form attributes: %s", clean)
	}
}

func mustFind(t *testing.T, scope dom.Scope, loc dom.Locator) *htmldom.Element {
	t.Helper()
	node, err := scope.FindOne(context.Background(), loc)
	if err != nil {
		t.Fatalf("find %v: %v", loc, err)
	}
	return node.(*htmldom.Element)
}

func mustFindIn(t *testing.T, scope dom.Scope, loc dom.Locator) dom.Node {
	t.Helper()
	return mustFind(t, scope, loc)
}

func TestFormValues(t *testing.T) {
	ctx := context.Background()
	doc := htmldom.MustParseString(personMarkup)

	root, err := doc.FindOne(ctx, dom.CSS("form.person"))
	if err != nil {
		t.Fatalf("find form: %v", err)
	}
	submit, err := root.FindOne(ctx, dom.CSS("input[type=submit]"))
	if err != nil {
		t.Fatalf("find submit: %v", err)
	}
	formEl := root.(*htmldom.Element)

	want := url.Values{
		"person[name]":           {"Alice"},
		"person[last_name]":      {"Cooper"},
		"person[biography]":      {"Alice is fun"},
		"person[favorite_color]": {"blue"},
		"token":                  {"t0k"},
		"person[size]":           {"s"},
	}
	if diff := cmp.Diff(want, htmldom.FormValues(formEl, nil)); diff != "" {
		t.Fatalf("values without submitter mismatch (-want +got):\n%s", diff)
	}

	want.Set("commit", "Save")
	if diff := cmp.Diff(want, htmldom.FormValues(formEl, submit.(*htmldom.Element))); diff != "" {
		t.Fatalf("values with submitter mismatch (-want +got):\n%s", diff)
	}
}
