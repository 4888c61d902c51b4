// Package roddom implements the dom contract on a live Chromium page driven by
// go-rod. Strict lookups poll until something matches or the timeout passes,
// which covers pages that render asynchronously. Label and field locators are
// evaluated as XPath inside the browser.
package roddom

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"github.com/goliatone/go-domino/pkg/dom"
)

const (
	defaultTimeout  = 2 * time.Second
	defaultInterval = 50 * time.Millisecond
)

// Option configures a Page.
type Option func(*config)

type config struct {
	timeout  time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// WithTimeout bounds how long FindOne waits for a first match.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithInterval sets the polling interval of FindOne.
func WithInterval(interval time.Duration) Option {
	return func(c *config) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Page adapts a rod page to dom.Scope.
type Page struct {
	page *rod.Page
	cfg  config
}

var _ dom.Scope = (*Page)(nil)

// New wraps page.
func New(page *rod.Page, options ...Option) *Page {
	cfg := config{
		timeout:  defaultTimeout,
		interval: defaultInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Page{page: page, cfg: cfg}
}

// Rod returns the wrapped page.
func (p *Page) Rod() *rod.Page { return p.page }

// Navigate loads url and waits for the load event.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("roddom: navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("roddom: wait load %s: %w", url, err)
	}
	p.cfg.logger.Debug("navigated", zap.String("url", url))
	return nil
}

func (p *Page) FindOne(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	return p.wrapOne(loc, p.poll(ctx, loc, func(ctx context.Context) ([]*rod.Element, error) {
		return queryPage(p.page.Context(ctx), loc)
	}))
}

func (p *Page) FindFirst(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	elements, err := queryPage(p.page.Context(ctx), loc)
	if err != nil {
		return nil, err
	}
	return dom.Select(loc, p.wrap(elements), false)
}

func (p *Page) FindAll(ctx context.Context, loc dom.Locator) ([]dom.Node, error) {
	elements, err := queryPage(p.page.Context(ctx), loc)
	if err != nil {
		return nil, err
	}
	return p.wrap(elements), nil
}

type polled struct {
	elements []*rod.Element
	err      error
}

// poll repeats query until it returns at least one element, the timeout
// passes or ctx is done.
func (p *Page) poll(ctx context.Context, loc dom.Locator, query func(context.Context) ([]*rod.Element, error)) polled {
	deadline := time.Now().Add(p.cfg.timeout)
	for {
		elements, err := query(ctx)
		if err != nil || len(elements) > 0 || !time.Now().Before(deadline) {
			return polled{elements: elements, err: err}
		}
		select {
		case <-ctx.Done():
			return polled{err: ctx.Err()}
		case <-time.After(p.cfg.interval):
		}
		p.cfg.logger.Debug("waiting for element", zap.Stringer("locator", loc))
	}
}

func (p *Page) wrapOne(loc dom.Locator, result polled) (dom.Node, error) {
	if result.err != nil {
		return nil, result.err
	}
	return dom.Select(loc, p.wrap(result.elements), true)
}

func (p *Page) wrap(elements []*rod.Element) []dom.Node {
	out := make([]dom.Node, len(elements))
	for idx, el := range elements {
		out[idx] = &Element{page: p, el: el}
	}
	return out
}

func queryPage(page *rod.Page, loc dom.Locator) ([]*rod.Element, error) {
	var (
		elements rod.Elements
		err      error
	)
	switch loc.Kind {
	case dom.KindCSS:
		elements, err = page.Elements(loc.Value)
	case dom.KindSelf:
		return nil, nil
	default:
		expr, xerr := xpathFor(loc)
		if xerr != nil {
			return nil, xerr
		}
		elements, err = page.ElementsX(expr)
	}
	if err != nil {
		return nil, fmt.Errorf("roddom: query %s: %w", loc, err)
	}
	return elements, nil
}

func xpathFor(loc dom.Locator) (string, error) {
	switch loc.Kind {
	case dom.KindXPath:
		return loc.Value, nil
	case dom.KindField:
		return dom.FieldXPath(loc.Value), nil
	case dom.KindLabel:
		return dom.LabeledControlXPath(loc.Value), nil
	case dom.KindID:
		return dom.IDXPath(loc.Value), nil
	case dom.KindName:
		return dom.NameXPath(loc.Value), nil
	}
	return "", fmt.Errorf("roddom: unsupported locator kind %q", loc.Kind)
}
