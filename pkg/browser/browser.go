// Package browser is a small in-process browser for integration tests. A
// Session loads pages from an http.Handler (or a real server through any
// http.Client), parses them with htmldom, keeps cookies, follows redirects and
// performs form submissions and link clicks. The current page is exposed as a
// dom.Scope, so form definitions can be located on it directly.
//
// Navigating replaces the page and detaches the previous one: elements found
// before a submission report Detached and forms bound to them turn Stale.
package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-domino/pkg/dom"
	"github.com/goliatone/go-domino/pkg/dom/htmldom"
)

const defaultBaseURL = "http://domino.test"

// ErrNoPage reports a lookup on a session that has not visited anything.
var ErrNoPage = errors.New("browser: no page loaded")

// Option configures a Session.
type Option func(*config)

type config struct {
	baseURL string
	client  *http.Client
	handler http.Handler
	logger  *zap.Logger
	headers http.Header
}

// WithBaseURL sets the address relative paths are resolved against.
func WithBaseURL(raw string) Option {
	return func(c *config) {
		c.baseURL = strings.TrimSpace(raw)
	}
}

// WithClient sends requests through client instead of an in-process handler.
// A cookie jar is added when the client has none.
func WithClient(client *http.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *config) {
		c.headers.Add(key, value)
	}
}

// Session holds the current page and the cookie state of one simulated
// browser tab.
type Session struct {
	mu      sync.Mutex
	base    *url.URL
	client  *http.Client
	logger  *zap.Logger
	headers http.Header

	page   *htmldom.Document
	status int
}

var _ dom.Scope = (*Session)(nil)

// New returns a session serving requests from handler in process.
func New(handler http.Handler, options ...Option) (*Session, error) {
	return newSession(append([]Option{func(c *config) { c.handler = handler }}, options...)...)
}

// Dial returns a session talking to a running server at baseURL.
func Dial(baseURL string, options ...Option) (*Session, error) {
	return newSession(append([]Option{WithBaseURL(baseURL)}, options...)...)
}

func newSession(options ...Option) (*Session, error) {
	cfg := config{
		baseURL: defaultBaseURL,
		logger:  zap.NewNop(),
		headers: http.Header{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	base, err := url.Parse(cfg.baseURL)
	if err != nil {
		return nil, fmt.Errorf("browser: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("browser: base url %q must be absolute", cfg.baseURL)
	}

	client := cfg.client
	switch {
	case client != nil:
		copied := *client
		client = &copied
	case cfg.handler != nil:
		client = &http.Client{Transport: handlerTransport{handler: cfg.handler}}
	default:
		client = &http.Client{}
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("browser: cookie jar: %w", err)
		}
		client.Jar = jar
	}

	return &Session{
		base:    base,
		client:  client,
		logger:  cfg.logger,
		headers: cfg.headers,
	}, nil
}

// MustNew panics when the session cannot be created. Intended for tests.
func MustNew(handler http.Handler, options ...Option) *Session {
	s, err := New(handler, options...)
	if err != nil {
		panic(err)
	}
	return s
}

// Visit loads path (absolute or relative to the current page) with GET.
func (s *Session) Visit(ctx context.Context, path string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("browser: build request: %w", err)
	}
	return s.load(req)
}

// Reload requests the current page again.
func (s *Session) Reload(ctx context.Context) error {
	page, err := s.Page()
	if err != nil {
		return err
	}
	return s.Visit(ctx, page.URL().String())
}

// Page returns the current document.
func (s *Session) Page() (*htmldom.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return nil, ErrNoPage
	}
	return s.page, nil
}

// Status returns the HTTP status of the last response, 0 before the first
// visit.
func (s *Session) Status() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// URL returns the address of the current page, nil before the first visit.
func (s *Session) URL() *url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return nil
	}
	return s.page.URL()
}

func (s *Session) FindOne(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	page, err := s.Page()
	if err != nil {
		return nil, err
	}
	return page.FindOne(ctx, loc)
}

func (s *Session) FindFirst(ctx context.Context, loc dom.Locator) (dom.Node, error) {
	page, err := s.Page()
	if err != nil {
		return nil, err
	}
	return page.FindFirst(ctx, loc)
}

func (s *Session) FindAll(ctx context.Context, loc dom.Locator) ([]dom.Node, error) {
	page, err := s.Page()
	if err != nil {
		return nil, err
	}
	return page.FindAll(ctx, loc)
}

func (s *Session) resolve(ref string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("browser: parse url %q: %w", ref, err)
	}
	base := s.base
	s.mu.Lock()
	if s.page != nil && s.page.URL() != nil {
		base = s.page.URL()
	}
	s.mu.Unlock()
	return base.ResolveReference(parsed), nil
}

// submit performs a navigation requested by the current document.
func (s *Session) submit(ctx context.Context, sub htmldom.Submission) error {
	target, err := s.resolve(sub.Action)
	if err != nil {
		return err
	}
	target.Fragment = ""

	var req *http.Request
	switch sub.Method {
	case http.MethodPost:
		body, contentType, err := encodeBody(sub)
		if err != nil {
			return err
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
		if err != nil {
			return fmt.Errorf("browser: build request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
	default:
		if sub.Values != nil {
			target.RawQuery = sub.Values.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return fmt.Errorf("browser: build request: %w", err)
		}
	}
	return s.load(req)
}

func encodeBody(sub htmldom.Submission) (io.Reader, string, error) {
	if !strings.EqualFold(strings.TrimSpace(sub.Enctype), "multipart/form-data") {
		return strings.NewReader(sub.Values.Encode()), "application/x-www-form-urlencoded", nil
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, values := range sub.Values {
		for _, value := range values {
			if err := writer.WriteField(name, value); err != nil {
				return nil, "", fmt.Errorf("browser: encode multipart: %w", err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("browser: encode multipart: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

// load performs req, follows redirects through the client and replaces the
// current page with the response body.
func (s *Session) load(req *http.Request) error {
	for key, values := range s.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	s.logger.Debug("request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("browser: %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	doc, err := htmldom.Parse(resp.Body,
		htmldom.WithURL(resp.Request.URL),
		htmldom.WithSubmitHandler(s.submit),
	)
	if err != nil {
		return fmt.Errorf("browser: %s %s: %w", req.Method, req.URL, err)
	}

	s.mu.Lock()
	previous := s.page
	s.page = doc
	s.status = resp.StatusCode
	s.mu.Unlock()

	if previous != nil {
		previous.Detach()
	}
	s.logger.Debug("page loaded",
		zap.Int("status", resp.StatusCode),
		zap.String("url", resp.Request.URL.String()),
		zap.String("title", doc.Title()),
	)
	return nil
}
