package roddom

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BinEnv names the environment variable holding a browser binary to launch
// instead of the one rod downloads.
const BinEnv = "DOMINO_ROD_BIN"

// LaunchConfig controls Launch.
type LaunchConfig struct {
	// ControlURL connects to an already running browser when set.
	ControlURL string
	// Bin overrides the browser binary. Defaults to $DOMINO_ROD_BIN.
	Bin      string
	Headless bool
}

// Launch starts (or connects to) a browser. The returned function closes it.
func Launch(ctx context.Context, cfg LaunchConfig) (*rod.Browser, func(), error) {
	controlURL := strings.TrimSpace(cfg.ControlURL)
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().Headless(cfg.Headless)
		bin := strings.TrimSpace(cfg.Bin)
		if bin == "" {
			bin = strings.TrimSpace(os.Getenv(BinEnv))
		}
		if bin != "" {
			l = l.Bin(bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, nil, fmt.Errorf("roddom: launch browser: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, nil, fmt.Errorf("roddom: connect to browser: %w", err)
	}
	closer := func() {
		_ = browser.Close()
		if l != nil {
			l.Kill()
		}
	}
	return browser, closer, nil
}

// Open creates a blank page in browser and wraps it.
func Open(browser *rod.Browser, options ...Option) (*Page, error) {
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("roddom: open page: %w", err)
	}
	return New(page, options...), nil
}
