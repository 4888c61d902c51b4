package form_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-domino/pkg/dom"
	"github.com/goliatone/go-domino/pkg/dom/htmldom"
	"github.com/goliatone/go-domino/pkg/fieldtype"
	"github.com/goliatone/go-domino/pkg/form"
	"github.com/goliatone/go-domino/pkg/testsupport"
)

func alice() map[string]any {
	return map[string]any{
		"name":           "Alice",
		"last_name":      "Cooper",
		"biography":      "Alice is fun",
		"favorite_color": "Blue",
		"age":            23,
		"vehicles":       []string{},
		"is_human":       false,
	}
}

func findPerson(t *testing.T, scope dom.Scope) *form.Form {
	t.Helper()
	person, err := testsupport.PersonForm.Find(testsupport.Context(), scope)
	if err != nil {
		t.Fatalf("find person form: %v", err)
	}
	return person
}

func readAll(t *testing.T, f *form.Form) form.Values {
	t.Helper()
	values, err := f.Fields(testsupport.Context())
	if err != nil {
		t.Fatalf("read fields: %v", err)
	}
	return values
}

func TestPersonForm_InitialFields(t *testing.T) {
	session, _ := testsupport.NewPeopleSession(t)
	values := readAll(t, findPerson(t, session))

	wantNames := []string{"name", "last_name", "biography", "favorite_color", "age", "vehicles", "is_human"}
	if diff := cmp.Diff(wantNames, values.Names()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(alice(), values.Map()); diff != "" {
		t.Fatalf("initial values mismatch (-want +got):\n%s", diff)
	}
}

func TestPersonForm_SetThenRead(t *testing.T) {
	ctx := testsupport.Context()
	session, _ := testsupport.NewPeopleSession(t)
	person := findPerson(t, session)

	if err := person.Set(ctx, map[string]any{"name": "Marie", "age": 25, "is_human": true}); err != nil {
		t.Fatalf("set: %v", err)
	}

	want := alice()
	want["name"] = "Marie"
	want["age"] = 25
	want["is_human"] = true
	if diff := cmp.Diff(want, readAll(t, person).Map()); diff != "" {
		t.Fatalf("values after set mismatch (-want +got):\n%s", diff)
	}
}

func TestPersonForm_SaveRoundTrip(t *testing.T) {
	ctx := testsupport.Context()
	session, app := testsupport.NewPeopleSession(t)
	person := findPerson(t, session)

	err := person.Set(ctx, map[string]any{
		"name":     "Marie",
		"age":      25,
		"is_human": true,
		"vehicles": []string{"Bike", "Car"},
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := person.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if person.State() != form.Stale {
		t.Fatalf("expected stale form after save, got %s", person.State())
	}
	if _, err := person.Get(ctx, "name"); !errors.Is(err, form.ErrStale) {
		t.Fatalf("expected ErrStale reading a saved form, got %v", err)
	}

	if got := session.URL().Path; got != app.EditPath(1) {
		t.Fatalf("expected redirect to %s, got %s", app.EditPath(1), got)
	}
	flash, err := session.FindOne(ctx, dom.CSS("p.flash"))
	if err != nil {
		t.Fatalf("find flash: %v", err)
	}
	if text, _ := flash.Text(ctx); text != "Person updated" {
		t.Fatalf("unexpected flash %q", text)
	}

	want := alice()
	want["name"] = "Marie"
	want["age"] = 25
	want["is_human"] = true
	want["vehicles"] = []string{"Bike", "Car"}
	if diff := cmp.Diff(want, readAll(t, findPerson(t, session)).Map()); diff != "" {
		t.Fatalf("values after save mismatch (-want +got):\n%s", diff)
	}

	stored, err := app.Store().Get(1)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if stored.Name != "Marie" || stored.Age != 25 || !stored.IsHuman {
		t.Fatalf("store not updated: %+v", stored)
	}
}

func TestPersonForm_MultiSelectKeepsDocumentOrder(t *testing.T) {
	ctx := testsupport.Context()
	session, _ := testsupport.NewPeopleSession(t)
	person := findPerson(t, session)

	if err := person.SetField(ctx, "vehicles", []string{"Car", "Bike"}); err != nil {
		t.Fatalf("set vehicles: %v", err)
	}
	got, err := person.Strings(ctx, "vehicles")
	if err != nil {
		t.Fatalf("read vehicles: %v", err)
	}
	if diff := cmp.Diff([]string{"Bike", "Car"}, got); diff != "" {
		t.Fatalf("vehicles mismatch (-want +got):\n%s", diff)
	}

	if err := person.SetField(ctx, "vehicles", []string{"Plane"}); err != nil {
		t.Fatalf("replace vehicles: %v", err)
	}
	got, _ = person.Strings(ctx, "vehicles")
	if diff := cmp.Diff([]string{"Plane"}, got); diff != "" {
		t.Fatalf("selection not replaced (-want +got):\n%s", diff)
	}

	err = person.SetField(ctx, "vehicles", []string{"Boat"})
	if !errors.Is(err, fieldtype.ErrNoSuchOption) {
		t.Fatalf("expected ErrNoSuchOption, got %v", err)
	}
}

func TestPersonForm_SaveReportsValidationErrors(t *testing.T) {
	ctx := testsupport.Context()
	session, _ := testsupport.NewPeopleSession(t)
	person := findPerson(t, session)

	if err := person.SetField(ctx, "name", nil); err != nil {
		t.Fatalf("clear name: %v", err)
	}
	if err := person.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if session.Status() != 422 {
		t.Fatalf("expected 422, got %d", session.Status())
	}
	message, err := session.FindOne(ctx, dom.CSS("ul.errors li"))
	if err != nil {
		t.Fatalf("find error message: %v", err)
	}
	if text, _ := message.Text(ctx); text != "First name can't be blank" {
		t.Fatalf("unexpected error message %q", text)
	}
}

func TestDefine_Errors(t *testing.T) {
	tests := []struct {
		name    string
		options []form.Option
		wrapped error
	}{
		{
			name:    "missing selector",
			options: []form.Option{form.Field("name")},
		},
		{
			name: "duplicate field",
			options: []form.Option{
				form.Selector("form"),
				form.Field("name"),
				form.Field("name", form.At("Other Name")),
			},
		},
		{
			name:    "empty field name",
			options: []form.Option{form.Selector("form"), form.Field("  ")},
		},
		{
			name:    "unknown type tag",
			options: []form.Option{form.Selector("form"), form.Field("rating", form.As("stars"))},
			wrapped: fieldtype.ErrUnknownType,
		},
		{
			name: "tag and custom type",
			options: []form.Option{
				form.Selector("form"),
				form.Field("rating", form.As("text"), form.AsType(fieldtype.Text{})),
			},
		},
		{
			name:    "multiple text",
			options: []form.Option{form.Selector("form"), form.Field("nickname", form.Multiple())},
			wrapped: fieldtype.ErrNotMultiple,
		},
		{
			name:    "multiple boolean",
			options: []form.Option{form.Selector("form"), form.Field("is_human", form.As(fieldtype.TagBoolean), form.Multiple())},
			wrapped: fieldtype.ErrNotMultiple,
		},
		{
			name: "multiple custom type",
			options: []form.Option{
				form.Selector("form"),
				form.Field("rating", form.AsType(fieldtype.Text{}), form.Multiple()),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := form.Define(tt.options...)
			if !errors.Is(err, form.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			var cfgErr *form.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if tt.wrapped != nil && !errors.Is(err, tt.wrapped) {
				t.Fatalf("expected %v to wrap %v", err, tt.wrapped)
			}
		})
	}
}

func TestDefinition_FieldSpecs(t *testing.T) {
	ctx := context.Background()
	session, _ := testsupport.NewPeopleSession(t)
	person := findPerson(t, session)

	spec, ok := testsupport.PersonForm.Field("vehicles")
	if !ok {
		t.Fatalf("expected a vehicles field")
	}
	if spec.Name() != "vehicles" || spec.Locator() != dom.Field("Vehicles") {
		t.Fatalf("unexpected spec %s %v", spec.Name(), spec.Locator())
	}
	if _, ok := spec.Type().(fieldtype.MultiSelect); !ok {
		t.Fatalf("expected MultiSelect, got %T", spec.Type())
	}
	if err := spec.Write(ctx, person.Root(), []string{"Car"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := spec.Read(ctx, person.Root())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff([]string{"Car"}, got); diff != "" {
		t.Fatalf("vehicles mismatch (-want +got):\n%s", diff)
	}

	specs := testsupport.PersonForm.Fields()
	if len(specs) != len(testsupport.PersonForm.Names()) {
		t.Fatalf("expected one spec per name, got %d", len(specs))
	}
	if _, ok := testsupport.PersonForm.Field("missing"); ok {
		t.Fatalf("unexpected spec for an undeclared field")
	}
}

func TestLabelLocators_WithPunctuation(t *testing.T) {
	ctx := context.Background()
	signup := form.MustDefine(
		form.Selector("form.signup"),
		form.Field("email", form.At("E-mail:")),
		form.Field("password", form.At("Password *")),
	)
	doc := testsupport.MustParse(t, `<form class="signup">
  <label for="email">E-mail:</label><input id="email" name="email" value="ann@example.com">
  <label for="pw">Password *</label><input id="pw" type="password" name="pw" value="secret">
</form>`)

	f, err := signup.Find(ctx, doc)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := map[string]any{"email": "ann@example.com", "password": "secret"}
	if diff := cmp.Diff(want, readAll(t, f).Map()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestMustDefine_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	form.MustDefine(form.Field("name"))
}

func TestDefine_ResolvesLocators(t *testing.T) {
	keyed := form.MustDefine(
		form.Selector("form.person"),
		form.Key("person"),
		form.Field("last_name"),
		form.Field("name", form.At("First Name")),
		form.Field("age", form.At("person_age")),
		form.Field("human", form.At("&.human"), form.As(fieldtype.TagBoolean)),
		form.Field("notes", form.At("textarea.notes")),
	)
	unkeyed := form.MustDefine(form.Selector("form"), form.Field("last_name"))

	tests := []struct {
		def   *form.Definition
		field string
		want  dom.Locator
	}{
		{keyed, "last_name", dom.Field("person[last_name]")},
		{keyed, "name", dom.Label("First Name")},
		{keyed, "age", dom.Field("person_age")},
		{keyed, "human", dom.Self(".human")},
		{keyed, "notes", dom.CSS("textarea.notes")},
		{unkeyed, "last_name", dom.Field("last_name")},
	}
	for _, tt := range tests {
		field, ok := tt.def.Field(tt.field)
		if !ok {
			t.Fatalf("field %q not declared", tt.field)
		}
		if diff := cmp.Diff(tt.want, field.Locator()); diff != "" {
			t.Fatalf("locator for %q mismatch (-want +got):\n%s", tt.field, diff)
		}
	}

	if keyed.SubmitSelector() != form.DefaultSubmitSelector {
		t.Fatalf("unexpected submit selector %q", keyed.SubmitSelector())
	}
	if diff := cmp.Diff([]string{"last_name", "name", "age", "human", "notes"}, keyed.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

const twoForms = `<!DOCTYPE html><html><body>
<form class="person" id="first"><input name="person[name]" value="Ann"><input type="submit"></form>
<form class="person" id="second"><input name="person[name]" value="Bob"><input type="submit"></form>
</body></html>`

var nameOnly = form.MustDefine(
	form.Selector("form.person"),
	form.Key("person"),
	form.Field("name"),
)

func TestFind_Strictness(t *testing.T) {
	ctx := context.Background()
	doc := testsupport.MustParse(t, twoForms)
	empty := testsupport.MustParse(t, `<p>nothing here</p>`)

	if _, err := nameOnly.Find(ctx, empty); !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err := nameOnly.Find(ctx, doc)
	if !errors.Is(err, dom.ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
	var queryErr *dom.QueryError
	if !errors.As(err, &queryErr) || queryErr.Count != 2 {
		t.Fatalf("expected query error with two matches, got %v", err)
	}
	if !strings.Contains(err.Error(), "form.person") {
		t.Fatalf("error should name the selector: %v", err)
	}

	first, err := nameOnly.First(ctx, empty)
	if err != nil || first != nil {
		t.Fatalf("expected nil form without error, got %v, %v", first, err)
	}

	first, err = nameOnly.First(ctx, doc)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if name, _ := first.String(ctx, "name"); name != "Ann" {
		t.Fatalf("first form should be Ann, got %q", name)
	}

	all, err := nameOnly.All(ctx, doc)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	var names []string
	for _, f := range all {
		name, err := f.String(ctx, "name")
		if err != nil {
			t.Fatalf("read name: %v", err)
		}
		names = append(names, name)
	}
	if diff := cmp.Diff([]string{"Ann", "Bob"}, names); diff != "" {
		t.Fatalf("all mismatch (-want +got):\n%s", diff)
	}
}

func TestFields_ScopedToRoot(t *testing.T) {
	ctx := context.Background()
	doc := testsupport.MustParse(t, twoForms)
	second, err := doc.FindOne(ctx, dom.CSS("#second"))
	if err != nil {
		t.Fatalf("find second: %v", err)
	}
	f := nameOnly.Bind(second)
	if err := f.SetField(ctx, "name", "Rob"); err != nil {
		t.Fatalf("set: %v", err)
	}

	all, _ := nameOnly.All(ctx, doc)
	first, _ := all[0].String(ctx, "name")
	if first != "Ann" {
		t.Fatalf("write leaked outside the bound root: %q", first)
	}
}

func TestBoolean_CombinationSelector(t *testing.T) {
	ctx := context.Background()
	doc := testsupport.MustParse(t, `<form class="account" data-verified>
		<input type="checkbox" class="human" name="human">
	</form>`)
	def := form.MustDefine(
		form.Selector("form.account"),
		form.Field("human", form.At("&.human"), form.As(fieldtype.TagBoolean)),
		form.Field("verified", form.At("&[data-verified]"), form.As(fieldtype.TagBoolean)),
	)
	account, err := def.Find(ctx, doc)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	human, err := account.Bool(ctx, "human")
	if err != nil || human {
		t.Fatalf("expected root without .human to read false, got %v, %v", human, err)
	}
	verified, err := account.Bool(ctx, "verified")
	if err != nil || !verified {
		t.Fatalf("expected data-verified to read true, got %v, %v", verified, err)
	}

	if err := account.Set(ctx, map[string]any{"human": true, "verified": false}); err != nil {
		t.Fatalf("set: %v", err)
	}
	root := account.Root()
	if ok, _ := root.HasClass(ctx, "human"); !ok {
		t.Fatalf("expected .human on the form root")
	}
	if _, ok, _ := root.Attribute(ctx, "data-verified"); ok {
		t.Fatalf("expected data-verified to be removed")
	}
	box, _ := doc.FindOne(ctx, dom.CSS("input.human"))
	if checked, _ := box.Checked(ctx); checked {
		t.Fatalf("descendant checkbox must not be touched")
	}
}

func TestSet_UnknownFieldWritesNothing(t *testing.T) {
	ctx := context.Background()
	doc := testsupport.MustParse(t, twoForms)
	f, _ := nameOnly.First(ctx, doc)

	err := f.Set(ctx, map[string]any{"name": "Zed", "nickname": "Z"})
	if !errors.Is(err, form.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if name, _ := f.String(ctx, "name"); name != "Ann" {
		t.Fatalf("no field should be written, got %q", name)
	}
	if _, err := f.Get(ctx, "nickname"); !errors.Is(err, form.ErrConfiguration) {
		t.Fatalf("expected configuration error for Get, got %v", err)
	}
}

func TestText_NilClears(t *testing.T) {
	ctx := context.Background()
	doc := testsupport.MustParse(t, twoForms)
	f, _ := nameOnly.First(ctx, doc)

	if err := f.SetField(ctx, "name", nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if name, _ := f.String(ctx, "name"); name != "" {
		t.Fatalf("expected empty name, got %q", name)
	}
}

// Converters only apply on reads: writes take the typed value the control
// expects, and nothing converts it back. A value the converter cannot parse
// is accepted by the write and only fails on the next read.
func TestConverter_IsReadOnly(t *testing.T) {
	ctx := context.Background()
	doc := testsupport.MustParse(t, `<form><input id="age" name="age" value="23"></form>`)
	def := form.MustDefine(form.Selector("form"), form.Field("age", form.Convert(form.Int)))
	f, _ := def.Find(ctx, doc)

	age, err := f.Int(ctx, "age")
	if err != nil || age != 23 {
		t.Fatalf("expected 23, got %v, %v", age, err)
	}

	if err := f.SetField(ctx, "age", 30); err != nil {
		t.Fatalf("write int: %v", err)
	}
	if age, _ := f.Int(ctx, "age"); age != 30 {
		t.Fatalf("expected 30, got %d", age)
	}

	if err := f.SetField(ctx, "age", "thirty"); err != nil {
		t.Fatalf("write bypasses the converter, got %v", err)
	}
	if _, err := f.Get(ctx, "age"); err == nil || !strings.Contains(err.Error(), `convert field "age"`) {
		t.Fatalf("expected convert error on read, got %v", err)
	}
}

func TestSave_MissingSubmitControl(t *testing.T) {
	ctx := context.Background()
	doc := testsupport.MustParse(t, `<form class="person"><input name="person[name]" value="Ann"></form>`)
	f, err := nameOnly.Find(ctx, doc)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := f.Save(ctx); !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if f.State() != form.Bound {
		t.Fatalf("failed save must keep the form bound, got %s", f.State())
	}
}

func TestSave_SubmitsThroughHandler(t *testing.T) {
	ctx := context.Background()
	var got htmldom.Submission
	doc := testsupport.MustParse(t,
		`<form class="person" action="/people/1" method="post">
			<input name="person[name]" value="Ann">
			<input type="submit" name="commit" value="Save">
		</form>`,
		htmldom.WithSubmitHandler(func(_ context.Context, sub htmldom.Submission) error {
			got = sub
			return nil
		}),
	)
	f, _ := nameOnly.Find(ctx, doc)
	if err := f.SetField(ctx, "name", "Marie"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := f.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got.Method != "POST" || got.Action != "/people/1" {
		t.Fatalf("unexpected submission %s %s", got.Method, got.Action)
	}
	if diff := cmp.Diff([]string{"Marie"}, got.Values["person[name]"]); diff != "" {
		t.Fatalf("submitted name mismatch (-want +got):\n%s", diff)
	}
	if err := f.SetField(ctx, "name", "Again"); !errors.Is(err, form.ErrStale) {
		t.Fatalf("expected ErrStale after save, got %v", err)
	}
}

func TestState_DetachedRoot(t *testing.T) {
	ctx := context.Background()
	doc := testsupport.MustParse(t, twoForms)
	f, _ := nameOnly.First(ctx, doc)
	if f.State() != form.Bound {
		t.Fatalf("expected bound, got %s", f.State())
	}
	doc.Detach()
	if f.State() != form.Stale {
		t.Fatalf("expected stale after detach, got %s", f.State())
	}
	if _, err := f.Fields(ctx); !errors.Is(err, form.ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
}

func TestTypedAccessor(t *testing.T) {
	ctx := context.Background()
	session, _ := testsupport.NewPeopleSession(t)
	person := findPerson(t, session)

	age := form.Typed[int](testsupport.PersonForm, "age")
	human := form.Typed[bool](testsupport.PersonForm, "is_human")

	if got, err := age.Get(ctx, person); err != nil || got != 23 {
		t.Fatalf("expected age 23, got %v, %v", got, err)
	}
	if err := human.Set(ctx, person, true); err != nil {
		t.Fatalf("set human: %v", err)
	}
	if got, _ := human.Get(ctx, person); !got {
		t.Fatalf("expected human after set")
	}
	if _, err := form.ValueOf[string](ctx, person, "age"); err == nil {
		t.Fatalf("expected type mismatch error")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown field")
		}
	}()
	form.Typed[string](testsupport.PersonForm, "nickname")
}

func TestCustomFieldType(t *testing.T) {
	ctx := context.Background()
	doc := testsupport.MustParse(t, `<form class="person">
		<fieldset class="tags">
			<input type="checkbox" value="musician" checked>
			<input type="checkbox" value="actor">
			<input type="checkbox" value="golfer" checked>
		</fieldset>
	</form>`)
	reg := fieldtype.NewRegistry()
	reg.MustRegister("tags", func(fieldtype.Options) (fieldtype.Type, error) {
		return fieldtype.CheckboxGroup{}, nil
	})
	def := form.MustDefine(
		form.Selector("form.person"),
		form.WithRegistry(reg),
		form.Field("tags", form.At("fieldset.tags"), form.As("tags")),
		form.Field("groups", form.At("fieldset.tags"), form.AsType(fieldtype.CheckboxGroup{})),
	)
	f, _ := def.Find(ctx, doc)

	got, err := f.Strings(ctx, "tags")
	if err != nil {
		t.Fatalf("read tags: %v", err)
	}
	if diff := cmp.Diff([]string{"musician", "golfer"}, got); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if err := f.SetField(ctx, "groups", []string{"actor"}); err != nil {
		t.Fatalf("write groups: %v", err)
	}
	got, _ = f.Strings(ctx, "tags")
	if diff := cmp.Diff([]string{"actor"}, got); diff != "" {
		t.Fatalf("tags after write mismatch (-want +got):\n%s", diff)
	}
}
