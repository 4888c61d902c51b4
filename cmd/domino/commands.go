package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/goliatone/go-domino/pkg/browser"
	"github.com/goliatone/go-domino/pkg/definition"
	"github.com/goliatone/go-domino/pkg/dom"
	"github.com/goliatone/go-domino/pkg/dom/htmldom"
	"github.com/goliatone/go-domino/pkg/fieldtype"
	"github.com/goliatone/go-domino/pkg/form"
)

func (c *cli) store() (*definition.Store, error) {
	store, err := definition.LoadDir(c.defs, definition.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	if store.Empty() {
		return nil, fmt.Errorf("domino: no form definitions in %s", c.defs)
	}
	return store, nil
}

func (c *cli) definition() (*form.Definition, error) {
	store, err := c.store()
	if err != nil {
		return nil, err
	}
	def, ok := store.Definition(c.formName)
	if !ok {
		return nil, fmt.Errorf("domino: unknown form %q (known: %v)", c.formName, store.Names())
	}
	return def, nil
}

// open loads the page named by --page or --url. The session is nil for saved
// pages, which cannot be submitted.
func (c *cli) open(ctx context.Context) (dom.Scope, *browser.Session, error) {
	if c.url != "" {
		session, err := browser.Dial(c.url, browser.WithLogger(c.logger))
		if err != nil {
			return nil, nil, err
		}
		if err := session.Visit(ctx, c.url); err != nil {
			return nil, nil, err
		}
		return session, session, nil
	}

	file, err := os.Open(c.page)
	if err != nil {
		return nil, nil, fmt.Errorf("domino: %w", err)
	}
	defer file.Close()

	abs, err := filepath.Abs(c.page)
	if err != nil {
		return nil, nil, fmt.Errorf("domino: %w", err)
	}
	doc, err := htmldom.Parse(file, htmldom.WithURL(&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}))
	if err != nil {
		return nil, nil, err
	}
	return doc, nil, nil
}

func (c *cli) locate(ctx context.Context) (*form.Form, *browser.Session, error) {
	def, err := c.definition()
	if err != nil {
		return nil, nil, err
	}
	scope, session, err := c.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	f, err := def.Find(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	c.logger.Debug("form located", zap.String("form", def.Name()))
	return f, session, nil
}

func (c *cli) runForms() error {
	store, err := c.store()
	if err != nil {
		return err
	}
	for _, name := range store.Names() {
		def, _ := store.Definition(name)
		source, _ := store.Source(name)
		fmt.Fprintf(c.out, "%s\t%s\t%d fields\t%s\n", name, def.Selector(), len(def.Fields()), source)
	}
	return nil
}

func (c *cli) runInspect(ctx context.Context) error {
	f, _, err := c.locate(ctx)
	if err != nil {
		return err
	}
	values, err := f.Fields(ctx)
	if err != nil {
		return err
	}
	return c.print(values)
}

func (c *cli) runDump(ctx context.Context) error {
	f, _, err := c.locate(ctx)
	if err != nil {
		return err
	}
	el, ok := f.Root().(*htmldom.Element)
	if !ok {
		return fmt.Errorf("domino: cannot dump %T", f.Root())
	}
	markup, err := el.OuterHTML()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, htmldom.Sanitize(markup))
	return nil
}

func (c *cli) runFill(ctx context.Context) error {
	if c.submit && c.url == "" {
		return errors.New("domino: --submit requires --url")
	}
	f, session, err := c.locate(ctx)
	if err != nil {
		return err
	}

	answers := make(map[string]any)
	for _, field := range f.Definition().Fields() {
		answer, ok, err := c.ask(ctx, f.Root(), field)
		if err != nil {
			return fmt.Errorf("domino: field %q: %w", field.Name(), err)
		}
		if ok {
			answers[field.Name()] = answer
		}
	}
	if err := f.Set(ctx, answers); err != nil {
		return err
	}

	if !c.submit {
		values, err := f.Fields(ctx)
		if err != nil {
			return err
		}
		return c.print(values)
	}

	if err := f.Save(ctx); err != nil {
		return err
	}
	c.logger.Debug("form submitted", zap.Int("status", session.Status()))
	fmt.Fprintf(c.out, "submitted: %d %s\n", session.Status(), session.URL())

	reloaded, err := f.Definition().First(ctx, session)
	if err != nil || reloaded == nil {
		return err
	}
	values, err := reloaded.Fields(ctx)
	if err != nil {
		return err
	}
	return c.print(values)
}

// ask prompts for one field according to its type, offering the current
// value as the default. Custom types are not prompted.
func (c *cli) ask(ctx context.Context, root dom.Node, field *form.FieldSpec) (any, bool, error) {
	loc := field.Locator()
	current, err := field.Type().Read(ctx, root, loc)
	if err != nil {
		return nil, false, err
	}
	message := field.Name()

	switch field.Type().(type) {
	case fieldtype.Boolean:
		on, _ := current.(bool)
		answer, err := c.prompter.Confirm(ctx, message, on)
		return answer, err == nil, err
	case fieldtype.Select:
		options, err := optionLabels(ctx, root, loc)
		if err != nil {
			return nil, false, err
		}
		answer, err := c.prompter.Select(ctx, message, options, fieldtype.ToString(current))
		return answer, err == nil, err
	case fieldtype.MultiSelect:
		options, err := optionLabels(ctx, root, loc)
		if err != nil {
			return nil, false, err
		}
		selected, _ := current.([]string)
		answer, err := c.prompter.MultiSelect(ctx, message, options, selected)
		return answer, err == nil, err
	case fieldtype.CheckboxGroup:
		options, err := checkboxValues(ctx, root, loc)
		if err != nil {
			return nil, false, err
		}
		selected, _ := current.([]string)
		answer, err := c.prompter.MultiSelect(ctx, message, options, selected)
		return answer, err == nil, err
	case fieldtype.Text:
		answer, err := c.prompter.Input(ctx, message, fieldtype.ToString(current))
		return answer, err == nil, err
	}
	c.logger.Debug("skipping custom field", zap.String("field", field.Name()))
	return nil, false, nil
}

func optionLabels(ctx context.Context, root dom.Node, loc dom.Locator) ([]string, error) {
	sel, err := fieldtype.Target(ctx, root, loc)
	if err != nil {
		return nil, err
	}
	options, err := sel.FindAll(ctx, dom.CSS("option"))
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(options))
	for _, option := range options {
		label, err := option.Text(ctx)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func checkboxValues(ctx context.Context, root dom.Node, loc dom.Locator) ([]string, error) {
	container, err := fieldtype.Target(ctx, root, loc)
	if err != nil {
		return nil, err
	}
	boxes, err := container.FindAll(ctx, dom.CSS("input[type=checkbox]"))
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(boxes))
	for _, box := range boxes {
		value, err := box.Value(ctx)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

type namedValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (c *cli) print(values form.Values) error {
	if c.asJSON {
		out := make([]namedValue, 0, values.Len())
		values.Each(func(name string, value any) bool {
			out = append(out, namedValue{Name: name, Value: value})
			return true
		})
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	values.Each(func(name string, value any) bool {
		fmt.Fprintf(c.out, "%s: %v\n", name, value)
		return true
	})
	return nil
}
