// Package fieldtype holds the strategies that read and write one kind of form
// control, and the registry mapping symbolic tags to them.
package fieldtype

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-domino/pkg/dom"
	"github.com/goliatone/go-domino/pkg/locator"
)

var (
	// ErrInvalidValue reports a written value the type cannot coerce.
	ErrInvalidValue = errors.New("fieldtype: invalid value")
	// ErrNoSuchOption reports a select option or checkbox value that does not
	// exist in the page.
	ErrNoSuchOption = errors.New("fieldtype: no such option")
)

// Type reads and writes one kind of control found through loc relative to the
// form root. Implementations hold no per-form state and may be shared.
type Type interface {
	Read(ctx context.Context, root dom.Node, loc dom.Locator) (any, error)
	Write(ctx context.Context, root dom.Node, loc dom.Locator, value any) error
}

// Target resolves the element a field operates on. Self locators resolve to
// the root itself; a non-empty predicate must match it.
func Target(ctx context.Context, root dom.Node, loc dom.Locator) (dom.Node, error) {
	if loc.IsSelf() && strings.TrimSpace(loc.Value) == "" {
		return root, nil
	}
	return root.FindOne(ctx, loc)
}

// Text reads the trimmed value of an input or textarea, falling back to the
// element's text for non-form elements. Written values are formatted with
// fmt.Sprint; nil clears the control.
type Text struct{}

func (Text) Read(ctx context.Context, root dom.Node, loc dom.Locator) (any, error) {
	node, err := Target(ctx, root, loc)
	if err != nil {
		return nil, err
	}
	value, err := node.Value(ctx)
	if errors.Is(err, dom.ErrUnsupported) {
		return node.Text(ctx)
	}
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(value), nil
}

func (Text) Write(ctx context.Context, root dom.Node, loc dom.Locator, value any) error {
	node, err := Target(ctx, root, loc)
	if err != nil {
		return err
	}
	if err := node.SetValue(ctx, ""); err != nil {
		return err
	}
	text := ToString(value)
	if text == "" {
		return nil
	}
	return node.SetValue(ctx, text)
}

// Select reads the visible label of the selected option and selects the
// option whose label (or, failing that, value) equals the written string.
type Select struct{}

func (Select) Read(ctx context.Context, root dom.Node, loc dom.Locator) (any, error) {
	opts, err := selectOptions(ctx, root, loc)
	if err != nil {
		return nil, err
	}
	for _, option := range opts {
		checked, err := option.Checked(ctx)
		if err != nil {
			return nil, err
		}
		if checked {
			return option.Text(ctx)
		}
	}
	return "", nil
}

func (Select) Write(ctx context.Context, root dom.Node, loc dom.Locator, value any) error {
	opts, err := selectOptions(ctx, root, loc)
	if err != nil {
		return err
	}
	if value == nil {
		for _, option := range opts {
			if err := option.SetChecked(ctx, false); err != nil {
				return err
			}
		}
		return nil
	}
	want := ToString(value)
	option, err := matchOption(ctx, opts, want)
	if err != nil {
		return err
	}
	if option == nil {
		return fmt.Errorf("%w: %q in %s", ErrNoSuchOption, want, loc)
	}
	return option.SetChecked(ctx, true)
}

// MultiSelect reads the labels of every selected option in document order and
// writes by selecting exactly the given labels.
type MultiSelect struct{}

func (MultiSelect) Read(ctx context.Context, root dom.Node, loc dom.Locator) (any, error) {
	opts, err := selectOptions(ctx, root, loc)
	if err != nil {
		return nil, err
	}
	selected := []string{}
	for _, option := range opts {
		checked, err := option.Checked(ctx)
		if err != nil {
			return nil, err
		}
		if !checked {
			continue
		}
		label, err := option.Text(ctx)
		if err != nil {
			return nil, err
		}
		selected = append(selected, label)
	}
	return selected, nil
}

func (MultiSelect) Write(ctx context.Context, root dom.Node, loc dom.Locator, value any) error {
	want, err := ToStrings(value)
	if err != nil {
		return err
	}
	sel, err := Target(ctx, root, loc)
	if err != nil {
		return err
	}
	if len(want) > 1 {
		_, multiple, err := sel.Attribute(ctx, "multiple")
		if err != nil {
			return err
		}
		if !multiple {
			return fmt.Errorf("%w: %d values for single-value %s", ErrInvalidValue, len(want), loc)
		}
	}
	opts, err := sel.FindAll(ctx, optionLocator)
	if err != nil {
		return err
	}
	chosen := make(map[dom.Node]bool, len(want))
	for _, label := range want {
		option, err := matchOption(ctx, opts, label)
		if err != nil {
			return err
		}
		if option == nil {
			return fmt.Errorf("%w: %q in %s", ErrNoSuchOption, label, loc)
		}
		chosen[option] = true
	}
	for _, option := range opts {
		if err := option.SetChecked(ctx, chosen[option]); err != nil {
			return err
		}
	}
	return nil
}

// Boolean reads and writes the checked state of a checkbox. With a Self
// locator it tests and toggles the class or attribute named by the predicate
// on the form root instead.
type Boolean struct{}

func (Boolean) Read(ctx context.Context, root dom.Node, loc dom.Locator) (any, error) {
	if loc.IsSelf() {
		return root.Matches(ctx, loc.Value)
	}
	node, err := root.FindOne(ctx, loc)
	if err != nil {
		return nil, err
	}
	return node.Checked(ctx)
}

func (Boolean) Write(ctx context.Context, root dom.Node, loc dom.Locator, value any) error {
	on, err := ToBool(value)
	if err != nil {
		return err
	}
	if loc.IsSelf() {
		return writePredicate(ctx, root, loc.Value, on)
	}
	node, err := root.FindOne(ctx, loc)
	if err != nil {
		return err
	}
	return node.SetChecked(ctx, on)
}

func writePredicate(ctx context.Context, root dom.Node, predicate string, on bool) error {
	p, err := locator.ParsePredicate(predicate)
	if err != nil {
		return err
	}
	if p.Class != "" {
		return root.SetClass(ctx, p.Class, on)
	}
	if !on {
		return root.RemoveAttribute(ctx, p.Attribute)
	}
	return root.SetAttribute(ctx, p.Attribute, p.Value)
}

// CheckboxGroup reads the values of the checked checkboxes inside the
// container found by the locator, and writes by checking exactly the given
// values.
type CheckboxGroup struct{}

var checkboxes = dom.CSS("input[type=checkbox]")

func (CheckboxGroup) Read(ctx context.Context, root dom.Node, loc dom.Locator) (any, error) {
	boxes, err := groupBoxes(ctx, root, loc)
	if err != nil {
		return nil, err
	}
	values := []string{}
	for _, box := range boxes {
		checked, err := box.Checked(ctx)
		if err != nil {
			return nil, err
		}
		if !checked {
			continue
		}
		value, err := box.Value(ctx)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func (CheckboxGroup) Write(ctx context.Context, root dom.Node, loc dom.Locator, value any) error {
	want, err := ToStrings(value)
	if err != nil {
		return err
	}
	boxes, err := groupBoxes(ctx, root, loc)
	if err != nil {
		return err
	}
	byValue := make(map[string]dom.Node, len(boxes))
	order := make([]string, 0, len(boxes))
	for _, box := range boxes {
		v, err := box.Value(ctx)
		if err != nil {
			return err
		}
		byValue[v] = box
		order = append(order, v)
	}
	for _, v := range want {
		if _, ok := byValue[v]; !ok {
			return fmt.Errorf("%w: %q in %s", ErrNoSuchOption, v, loc)
		}
	}
	for _, v := range order {
		if err := byValue[v].SetChecked(ctx, slices.Contains(want, v)); err != nil {
			return err
		}
	}
	return nil
}

func groupBoxes(ctx context.Context, root dom.Node, loc dom.Locator) ([]dom.Node, error) {
	container, err := Target(ctx, root, loc)
	if err != nil {
		return nil, err
	}
	return container.FindAll(ctx, checkboxes)
}

var optionLocator = dom.CSS("option")

func selectOptions(ctx context.Context, root dom.Node, loc dom.Locator) ([]dom.Node, error) {
	sel, err := Target(ctx, root, loc)
	if err != nil {
		return nil, err
	}
	return sel.FindAll(ctx, optionLocator)
}

// matchOption prefers an exact label match and falls back to the option value.
func matchOption(ctx context.Context, opts []dom.Node, want string) (dom.Node, error) {
	for _, option := range opts {
		label, err := option.Text(ctx)
		if err != nil {
			return nil, err
		}
		if label == want {
			return option, nil
		}
	}
	for _, option := range opts {
		value, err := option.Value(ctx)
		if err != nil {
			return nil, err
		}
		if value == want {
			return option, nil
		}
	}
	return nil, nil
}
