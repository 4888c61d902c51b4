package htmldom

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/goliatone/go-domino/pkg/dom"
)

var selectorCache sync.Map

func compileSelector(raw string) (cascadia.Selector, error) {
	if cached, ok := selectorCache.Load(raw); ok {
		return cached.(cascadia.Selector), nil
	}
	sel, err := cascadia.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("htmldom: invalid css selector %q: %w", raw, err)
	}
	selectorCache.Store(raw, sel)
	return sel, nil
}

func (d *Document) query(ctx context.Context, scope *html.Node, loc dom.Locator) ([]*html.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch loc.Kind {
	case dom.KindCSS:
		sel, err := compileSelector(loc.Value)
		if err != nil {
			return nil, err
		}
		return cascadia.QueryAll(scope, sel), nil
	case dom.KindXPath:
		return xpathAll(scope, loc.Value)
	case dom.KindID:
		return xpathAll(scope, dom.IDXPath(loc.Value))
	case dom.KindName:
		return xpathAll(scope, dom.NameXPath(loc.Value))
	case dom.KindLabel:
		return d.labeledControls(scope, loc.Value)
	case dom.KindField:
		lit := dom.Literal(loc.Value)
		candidates, err := xpathAll(scope, ".//*[@id="+lit+" or @name="+lit+" or @placeholder="+lit+"]")
		if err != nil {
			return nil, err
		}
		direct := controlsOnly(candidates)
		labeled, err := d.labeledControls(scope, loc.Value)
		if err != nil {
			return nil, err
		}
		return d.inDocumentOrder(append(direct, labeled...)), nil
	case dom.KindSelf:
		if scope.Type != html.ElementNode {
			return nil, nil
		}
		sel, err := compileSelector(loc.Value)
		if err != nil {
			return nil, err
		}
		if sel.Match(scope) {
			return []*html.Node{scope}, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("htmldom: unsupported locator kind %q", loc.Kind)
	}
}

func xpathAll(scope *html.Node, expr string) ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(scope, expr)
	if err != nil {
		return nil, fmt.Errorf("htmldom: invalid xpath %q: %w", expr, err)
	}
	return nodes, nil
}

// labeledControls resolves label text to controls. A label's for attribute is
// looked up across the whole document, like the browser's label.control.
func (d *Document) labeledControls(scope *html.Node, text string) ([]*html.Node, error) {
	labels, err := xpathAll(scope, ".//label")
	if err != nil {
		return nil, err
	}
	want := normalizeSpace(text)
	var out []*html.Node
	for _, label := range labels {
		if labelText(label) != want && normalizeSpace(innerText(label)) != want {
			continue
		}
		if target := strings.TrimSpace(attr(label, "for")); target != "" {
			byID, err := xpathAll(d.root, dom.IDXPath(target))
			if err != nil {
				return nil, err
			}
			for _, node := range byID {
				if isControl(node) {
					out = append(out, node)
				}
			}
			continue
		}
		nested, err := xpathAll(label, ".//input | .//select | .//textarea")
		if err != nil {
			return nil, err
		}
		out = append(out, controlsOnly(nested)...)
	}
	return d.inDocumentOrder(out), nil
}

// inDocumentOrder removes duplicates and sorts nodes by their position in the
// tree.
func (d *Document) inDocumentOrder(nodes []*html.Node) []*html.Node {
	if len(nodes) < 2 {
		return nodes
	}
	wanted := make(map[*html.Node]struct{}, len(nodes))
	for _, node := range nodes {
		wanted[node] = struct{}{}
	}
	out := make([]*html.Node, 0, len(wanted))
	walk(d.root, func(node *html.Node) bool {
		if _, ok := wanted[node]; ok {
			out = append(out, node)
			delete(wanted, node)
		}
		return len(wanted) > 0
	})
	return out
}

// walk visits nodes depth first in document order until visit returns false.
func walk(node *html.Node, visit func(*html.Node) bool) bool {
	if !visit(node) {
		return false
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !walk(child, visit) {
			return false
		}
	}
	return true
}

func controlsOnly(nodes []*html.Node) []*html.Node {
	out := nodes[:0]
	for _, node := range nodes {
		if isControl(node) {
			out = append(out, node)
		}
	}
	return out
}

func isControl(node *html.Node) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}
	switch node.Data {
	case "select", "textarea":
		return true
	case "input":
		switch inputType(node) {
		case "submit", "image", "hidden", "button", "reset":
			return false
		}
		return true
	}
	return false
}

// labelText is the label's own text, ignoring the content of nested controls
// such as a wrapped textarea or select.
func labelText(label *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			switch {
			case child.Type == html.TextNode:
				b.WriteString(child.Data)
				b.WriteByte(' ')
			case child.Type == html.ElementNode && (child.Data == "select" || child.Data == "textarea"):
			default:
				collect(child)
			}
		}
	}
	collect(label)
	return normalizeSpace(b.String())
}

func normalizeSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
