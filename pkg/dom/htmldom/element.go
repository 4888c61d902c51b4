package htmldom

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/goliatone/go-domino/pkg/dom"
)

// Element is one element of a Document. Mutations change the in-memory tree
// directly; attributes double as the live state (value, checked, selected).
type Element struct {
	doc  *Document
	node *html.Node
}

var (
	_ dom.Node     = (*Element)(nil)
	_ dom.Detacher = (*Element)(nil)
)

// Tag returns the lower-case element name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Detached reports whether the owning document was replaced.
func (e *Element) Detached() bool {
	return e.doc.Detached()
}

// OuterHTML renders the element and its subtree.
func (e *Element) OuterHTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return "", fmt.Errorf("htmldom: render: %w", err)
	}
	return buf.String(), nil
}

func (e *Element) FindOne(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	return e.doc.find(ctx, e.node, loc, true)
}

func (e *Element) FindFirst(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	return e.doc.find(ctx, e.node, loc, false)
}

func (e *Element) FindAll(ctx context.Context, loc dom.Locator) ([]dom.Node, error) {
	return e.doc.findAll(ctx, e.node, loc)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(innerText(e.node)), nil
}

func (e *Element) Value(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch e.node.Data {
	case "input":
		value, ok := attrOK(e.node, "value")
		if !ok && isCheckable(e.node) {
			return "on", nil
		}
		return value, nil
	case "textarea":
		return innerText(e.node), nil
	case "select":
		selected := selectedOptions(e.node)
		if len(selected) == 0 {
			return "", nil
		}
		return optionValue(selected[0]), nil
	case "option":
		return optionValue(e.node), nil
	case "button":
		return attr(e.node, "value"), nil
	default:
		return "", dom.Unsupported("value", e.node.Data)
	}
}

func (e *Element) SetValue(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if hasAttr(e.node, "disabled") || hasAttr(e.node, "readonly") {
		return fmt.Errorf("htmldom: <%s> is not editable", e.node.Data)
	}
	switch e.node.Data {
	case "input":
		setAttr(e.node, "value", value)
		return nil
	case "textarea":
		for child := e.node.FirstChild; child != nil; {
			next := child.NextSibling
			e.node.RemoveChild(child)
			child = next
		}
		if value != "" {
			e.node.AppendChild(&html.Node{Type: html.TextNode, Data: value})
		}
		return nil
	case "select":
		for _, option := range options(e.node) {
			if optionValue(option) == value {
				return e.doc.wrap(option).SetChecked(ctx, true)
			}
		}
		return fmt.Errorf("htmldom: select has no option with value %q", value)
	default:
		return dom.Unsupported("set value", e.node.Data)
	}
}

func (e *Element) Checked(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	switch {
	case isCheckable(e.node):
		return hasAttr(e.node, "checked"), nil
	case e.node.Data == "option":
		sel := owningSelect(e.node)
		if sel == nil {
			return hasAttr(e.node, "selected"), nil
		}
		for _, option := range selectedOptions(sel) {
			if option == e.node {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, dom.Unsupported("checked", e.node.Data)
	}
}

func (e *Element) SetChecked(ctx context.Context, checked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if hasAttr(e.node, "disabled") {
		return fmt.Errorf("htmldom: <%s> is disabled", e.node.Data)
	}
	switch {
	case isCheckable(e.node):
		if checked && inputType(e.node) == "radio" {
			e.uncheckRadioGroup()
		}
		toggleAttr(e.node, "checked", checked)
		return nil
	case e.node.Data == "option":
		if sel := owningSelect(e.node); checked && sel != nil && !hasAttr(sel, "multiple") {
			for _, option := range options(sel) {
				removeAttr(option, "selected")
			}
		}
		toggleAttr(e.node, "selected", checked)
		return nil
	default:
		return dom.Unsupported("set checked", e.node.Data)
	}
}

func (e *Element) uncheckRadioGroup() {
	name := attr(e.node, "name")
	if name == "" {
		return
	}
	scope := ancestor(e.node, "form")
	if scope == nil {
		scope = e.doc.root
	}
	walk(scope, func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.Data == "input" && inputType(node) == "radio" && attr(node, "name") == name {
			removeAttr(node, "checked")
		}
		return true
	})
}

func (e *Element) HasClass(ctx context.Context, class string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for _, existing := range strings.Fields(attr(e.node, "class")) {
		if existing == class {
			return true, nil
		}
	}
	return false, nil
}

func (e *Element) SetClass(ctx context.Context, class string, present bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	class = strings.TrimSpace(class)
	if class == "" {
		return fmt.Errorf("htmldom: class name is required")
	}
	var kept []string
	for _, existing := range strings.Fields(attr(e.node, "class")) {
		if existing != class {
			kept = append(kept, existing)
		}
	}
	if present {
		kept = append(kept, class)
	}
	if len(kept) == 0 {
		removeAttr(e.node, "class")
		return nil
	}
	setAttr(e.node, "class", strings.Join(kept, " "))
	return nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	value, ok := attrOK(e.node, name)
	return value, ok, nil
}

func (e *Element) SetAttribute(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	setAttr(e.node, name, value)
	return nil
}

func (e *Element) RemoveAttribute(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	removeAttr(e.node, name)
	return nil
}

func (e *Element) Matches(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	sel, err := compileSelector(selector)
	if err != nil {
		return false, err
	}
	return sel.Match(e.node), nil
}

// Click toggles checkboxes, checks radios, selects options, follows links and
// submits forms through the document's SubmitFunc. Clicks on other elements
// are no-ops.
func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if hasAttr(e.node, "disabled") {
		return fmt.Errorf("htmldom: <%s> is disabled", e.node.Data)
	}
	switch {
	case isCheckable(e.node):
		if inputType(e.node) == "radio" {
			return e.SetChecked(ctx, true)
		}
		return e.SetChecked(ctx, !hasAttr(e.node, "checked"))
	case e.node.Data == "option":
		return e.SetChecked(ctx, true)
	case isSubmitControl(e.node):
		form := ancestor(e.node, "form")
		if form == nil {
			return nil
		}
		return e.doc.submitForm(ctx, form, e.node)
	case e.node.Data == "a" && hasAttr(e.node, "href"):
		return e.doc.navigate(ctx, Submission{
			Method:    "GET",
			Action:    attr(e.node, "href"),
			Submitter: e,
		})
	}
	return nil
}

func innerText(node *html.Node) string {
	return htmlquery.InnerText(node)
}

func inputType(node *html.Node) string {
	value := strings.ToLower(strings.TrimSpace(attr(node, "type")))
	if value == "" {
		return "text"
	}
	return value
}

func isCheckable(node *html.Node) bool {
	if node.Data != "input" {
		return false
	}
	switch inputType(node) {
	case "checkbox", "radio":
		return true
	}
	return false
}

func isSubmitControl(node *html.Node) bool {
	switch node.Data {
	case "input":
		switch inputType(node) {
		case "submit", "image":
			return true
		}
	case "button":
		value := strings.ToLower(strings.TrimSpace(attr(node, "type")))
		return value == "" || value == "submit"
	}
	return false
}

func ancestor(node *html.Node, tag string) *html.Node {
	for parent := node.Parent; parent != nil; parent = parent.Parent {
		if parent.Type == html.ElementNode && parent.Data == tag {
			return parent
		}
	}
	return nil
}

func owningSelect(option *html.Node) *html.Node {
	return ancestor(option, "select")
}

func options(sel *html.Node) []*html.Node {
	if sel == nil {
		return nil
	}
	var out []*html.Node
	walk(sel, func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.Data == "option" {
			out = append(out, node)
		}
		return true
	})
	return out
}

// selectedOptions mirrors the browser's selectedOptions: a single select with
// no explicit selection reports its first option.
func selectedOptions(sel *html.Node) []*html.Node {
	all := options(sel)
	var out []*html.Node
	for _, option := range all {
		if hasAttr(option, "selected") {
			out = append(out, option)
		}
	}
	if sel == nil || hasAttr(sel, "multiple") {
		return out
	}
	if len(out) == 0 && len(all) > 0 {
		return all[:1]
	}
	if len(out) > 1 {
		return out[len(out)-1:]
	}
	return out
}

func optionValue(option *html.Node) string {
	if value, ok := attrOK(option, "value"); ok {
		return value
	}
	return strings.Join(strings.Fields(innerText(option)), " ")
}

func attr(node *html.Node, name string) string {
	value, _ := attrOK(node, name)
	return value
}

func attrOK(node *html.Node, name string) (string, bool) {
	if node == nil {
		return "", false
	}
	for _, a := range node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(node *html.Node, name string) bool {
	_, ok := attrOK(node, name)
	return ok
}

func setAttr(node *html.Node, name, value string) {
	for idx, a := range node.Attr {
		if a.Namespace == "" && a.Key == name {
			node.Attr[idx].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(node *html.Node, name string) {
	kept := node.Attr[:0]
	for _, a := range node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		kept = append(kept, a)
	}
	node.Attr = kept
}

func toggleAttr(node *html.Node, name string, present bool) {
	if present {
		if !hasAttr(node, name) {
			setAttr(node, name, "")
		}
		return
	}
	removeAttr(node, name)
}
