// Package form implements view objects for HTML forms. A Definition is built
// once from options naming the root selector, an optional key used to derive
// bracketed field names, the submit control and an ordered list of fields.
// Each field resolves its locator (pkg/locator) and field type
// (pkg/fieldtype) while the Definition is built, so configuration mistakes
// fail before any page is touched.
//
// At test time Definition.Find binds the definition to one root element and
// returns a Form whose fields can be read, written and submitted:
//
//	var PersonForm = form.MustDefine(
//		form.Selector("form.person"),
//		form.Key("person"),
//		form.Field("name", form.At("First Name")),
//		form.Field("age", form.At("person_age"), form.Convert(form.Int)),
//		form.Field("is_human", form.As(fieldtype.TagBoolean)),
//	)
//
//	person, err := PersonForm.Find(ctx, page)
//	err = person.Set(ctx, map[string]any{"name": "Marie", "age": 25})
//	err = person.Save(ctx)
//
// After Save the Form is stale; find it again to read what the server
// rendered. Errors from the DOM engine (dom.ErrNotFound, dom.ErrAmbiguous)
// are returned unwrapped.
package form
