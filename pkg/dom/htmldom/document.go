// Package htmldom implements the dom contract over an in-memory HTML tree
// parsed with golang.org/x/net/html. CSS locators are evaluated with cascadia,
// XPath, label and field locators with htmlquery. Lookups never wait: the tree
// is fully built when Parse returns.
//
// Form submission is delegated to a SubmitFunc so a caller (usually
// pkg/browser) can perform the request and replace the document.
package htmldom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync/atomic"

	"golang.org/x/net/html"

	"github.com/goliatone/go-domino/pkg/dom"
)

// ErrNoSubmitHandler reports a submit or link click on a document that was
// parsed without a SubmitFunc.
var ErrNoSubmitHandler = errors.New("htmldom: document has no submit handler")

// Submission describes a navigation triggered from the document: a form
// submission or a followed link.
type Submission struct {
	// Method is the upper-cased HTTP method (GET or POST).
	Method string
	// Action is the raw action or href, unresolved.
	Action string
	// Enctype of the submitting form, empty for links.
	Enctype string
	// Values holds the form data set. Nil for links.
	Values url.Values
	// Form is the submitted form element, nil for links.
	Form *Element
	// Submitter is the clicked control.
	Submitter *Element
}

// SubmitFunc performs a Submission. It usually replaces the document, which
// detaches every Element obtained from it.
type SubmitFunc func(ctx context.Context, sub Submission) error

// Option configures a Document.
type Option func(*Document)

// WithURL records the address the document was loaded from.
func WithURL(u *url.URL) Option {
	return func(d *Document) {
		d.url = u
	}
}

// WithSubmitHandler installs the function invoked when a submit control or a
// link is clicked.
func WithSubmitHandler(fn SubmitFunc) Option {
	return func(d *Document) {
		d.submit = fn
	}
}

// Document is a parsed HTML page. It satisfies dom.Scope.
type Document struct {
	root     *html.Node
	url      *url.URL
	submit   SubmitFunc
	detached atomic.Bool
}

var _ dom.Scope = (*Document)(nil)

// Parse reads an HTML document.
func Parse(r io.Reader, options ...Option) (*Document, error) {
	if r == nil {
		return nil, errors.New("htmldom: reader is required")
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldom: parse: %w", err)
	}
	doc := &Document{root: root}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(doc)
	}
	return doc, nil
}

// ParseString parses markup held in memory.
func ParseString(markup string, options ...Option) (*Document, error) {
	return Parse(strings.NewReader(markup), options...)
}

// MustParseString panics when markup cannot be parsed. Intended for tests.
func MustParseString(markup string, options ...Option) *Document {
	doc, err := ParseString(markup, options...)
	if err != nil {
		panic(err)
	}
	return doc
}

// URL returns the address recorded with WithURL, or nil.
func (d *Document) URL() *url.URL {
	return d.url
}

// Detach marks the document as replaced. Elements obtained from it report
// Detached afterwards.
func (d *Document) Detach() {
	d.detached.Store(true)
}

// Detached reports whether Detach was called.
func (d *Document) Detached() bool {
	return d.detached.Load()
}

// HTML renders the current state of the whole document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("htmldom: render: %w", err)
	}
	return buf.String(), nil
}

// Title returns the trimmed text of the <title> element.
func (d *Document) Title() string {
	nodes, err := d.query(context.Background(), d.root, dom.CSS("title"))
	if err != nil || len(nodes) == 0 {
		return ""
	}
	return strings.TrimSpace(innerText(nodes[0]))
}

func (d *Document) FindOne(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	return d.find(ctx, d.root, loc, true)
}

func (d *Document) FindFirst(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	return d.find(ctx, d.root, loc, false)
}

func (d *Document) FindAll(ctx context.Context, loc dom.Locator) ([]dom.Node, error) {
	return d.findAll(ctx, d.root, loc)
}

func (d *Document) find(ctx context.Context, scope *html.Node, loc dom.Locator, strict bool) (dom.Node, error) {
	matches, err := d.findAll(ctx, scope, loc)
	if err != nil {
		return nil, err
	}
	return dom.Select(loc, matches, strict)
}

func (d *Document) findAll(ctx context.Context, scope *html.Node, loc dom.Locator) ([]dom.Node, error) {
	nodes, err := d.query(ctx, scope, loc)
	if err != nil {
		return nil, err
	}
	out := make([]dom.Node, len(nodes))
	for idx, node := range nodes {
		out[idx] = d.wrap(node)
	}
	return out, nil
}

func (d *Document) wrap(node *html.Node) *Element {
	return &Element{doc: d, node: node}
}
