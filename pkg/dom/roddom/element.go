package roddom

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/goliatone/go-domino/pkg/dom"
)

// Element adapts a rod element to dom.Node.
type Element struct {
	page *Page
	el   *rod.Element
}

var (
	_ dom.Node     = (*Element)(nil)
	_ dom.Detacher = (*Element)(nil)
)

// Rod returns the wrapped element.
func (e *Element) Rod() *rod.Element { return e.el }

// Detached reports whether the element is no longer connected to the page,
// which is the case after a navigation.
func (e *Element) Detached() bool {
	res, err := e.el.Eval(`() => this.isConnected`)
	if err != nil {
		return true
	}
	return !res.Value.Bool()
}

func (e *Element) FindOne(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	return e.page.wrapOne(loc, e.page.poll(ctx, loc, func(ctx context.Context) ([]*rod.Element, error) {
		return e.query(ctx, loc)
	}))
}

func (e *Element) FindFirst(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	elements, err := e.query(ctx, loc)
	if err != nil {
		return nil, err
	}
	return dom.Select(loc, e.page.wrap(elements), false)
}

func (e *Element) FindAll(ctx context.Context, loc dom.Locator) ([]dom.Node, error) {
	elements, err := e.query(ctx, loc)
	if err != nil {
		return nil, err
	}
	return e.page.wrap(elements), nil
}

func (e *Element) query(ctx context.Context, loc dom.Locator) ([]*rod.Element, error) {
	el := e.el.Context(ctx)
	var (
		elements rod.Elements
		err      error
	)
	switch loc.Kind {
	case dom.KindCSS:
		elements, err = el.Elements(loc.Value)
	case dom.KindSelf:
		ok, merr := el.Matches(loc.Value)
		if merr != nil {
			return nil, fmt.Errorf("roddom: match %s: %w", loc, merr)
		}
		if ok {
			return []*rod.Element{e.el}, nil
		}
		return nil, nil
	default:
		expr, xerr := xpathFor(loc)
		if xerr != nil {
			return nil, xerr
		}
		elements, err = el.ElementsX(expr)
	}
	if err != nil {
		return nil, fmt.Errorf("roddom: query %s: %w", loc, err)
	}
	return elements, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

const valueJS = `() => {
	switch (this.tagName) {
	case 'INPUT': case 'TEXTAREA': case 'SELECT': case 'OPTION': case 'BUTTON':
		return this.value;
	}
	return null;
}`

func (e *Element) Value(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(valueJS)
	if err != nil {
		return "", err
	}
	if res.Value.Nil() {
		return "", dom.Unsupported("value", e.tag(ctx))
	}
	return res.Value.Str(), nil
}

const setValueJS = `(value) => {
	if (!['INPUT', 'TEXTAREA', 'SELECT'].includes(this.tagName)) return 'unsupported';
	if (this.disabled) return 'disabled';
	if (this.readOnly) return 'readonly';
	this.value = value;
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
	return '';
}`

func (e *Element) SetValue(ctx context.Context, value string) error {
	return e.mutate(ctx, "set value", setValueJS, value)
}

const checkedJS = `() => {
	if (this.tagName === 'OPTION') return this.selected;
	if (this.tagName === 'INPUT' && (this.type === 'checkbox' || this.type === 'radio')) return this.checked;
	return null;
}`

func (e *Element) Checked(ctx context.Context) (bool, error) {
	res, err := e.el.Context(ctx).Eval(checkedJS)
	if err != nil {
		return false, err
	}
	if res.Value.Nil() {
		return false, dom.Unsupported("checked", e.tag(ctx))
	}
	return res.Value.Bool(), nil
}

const setCheckedJS = `(checked) => {
	let target = this;
	if (this.tagName === 'OPTION') {
		if (this.disabled) return 'disabled';
		this.selected = checked;
		target = this.closest('select') || this;
	} else if (this.tagName === 'INPUT' && (this.type === 'checkbox' || this.type === 'radio')) {
		if (this.disabled) return 'disabled';
		this.checked = checked;
	} else {
		return 'unsupported';
	}
	target.dispatchEvent(new Event('input', { bubbles: true }));
	target.dispatchEvent(new Event('change', { bubbles: true }));
	return '';
}`

func (e *Element) SetChecked(ctx context.Context, checked bool) error {
	return e.mutate(ctx, "set checked", setCheckedJS, checked)
}

func (e *Element) HasClass(ctx context.Context, class string) (bool, error) {
	res, err := e.el.Context(ctx).Eval(`(c) => this.classList.contains(c)`, class)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (e *Element) SetClass(ctx context.Context, class string, present bool) error {
	_, err := e.el.Context(ctx).Eval(`(c, on) => { this.classList.toggle(c, on) }`, class, present)
	return err
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	value, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (e *Element) SetAttribute(ctx context.Context, name, value string) error {
	_, err := e.el.Context(ctx).Eval(`(n, v) => { this.setAttribute(n, v) }`, name, value)
	return err
}

func (e *Element) RemoveAttribute(ctx context.Context, name string) error {
	_, err := e.el.Context(ctx).Eval(`(n) => { this.removeAttribute(n) }`, name)
	return err
}

func (e *Element) Matches(ctx context.Context, selector string) (bool, error) {
	return e.el.Context(ctx).Matches(selector)
}

// Click dispatches a real mouse click. Options are selected directly since
// browsers render them outside the page.
func (e *Element) Click(ctx context.Context) error {
	if e.tag(ctx) == "option" {
		return e.SetChecked(ctx, true)
	}
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *Element) mutate(ctx context.Context, op, js string, params ...any) error {
	res, err := e.el.Context(ctx).Eval(js, params...)
	if err != nil {
		return err
	}
	switch outcome := res.Value.Str(); outcome {
	case "":
		return nil
	case "unsupported":
		return dom.Unsupported(op, e.tag(ctx))
	default:
		return fmt.Errorf("roddom: %s on %s <%s>", op, outcome, e.tag(ctx))
	}
}

func (e *Element) tag(ctx context.Context) string {
	res, err := e.el.Context(ctx).Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return "unknown"
	}
	return res.Value.Str()
}
