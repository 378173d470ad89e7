package scraper

import (
	"context"
	"fmt"
	"time"

	"pricetrack/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Renderer returns the HTML of a page after client-side scripts have run
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
}

// BrowserRenderer drives a headless Chromium per call. Each call gets its own
// browser process and throwaway profile, released on every return path.
type BrowserRenderer struct {
	headless       bool
	bin            string
	userAgent      string
	acceptLanguage string
	waitTimeout    time.Duration
	settleDelay    time.Duration
	metrics        *Metrics
}

// NewBrowserRenderer creates a renderer from the tracker configuration
func NewBrowserRenderer(cfg *config.TrackerConfig, metrics *Metrics) *BrowserRenderer {
	return &BrowserRenderer{
		headless:       cfg.BrowserHeadless,
		bin:            cfg.BrowserBin,
		userAgent:      cfg.UserAgent,
		acceptLanguage: cfg.AcceptLanguage,
		waitTimeout:    cfg.RenderWaitTimeout,
		settleDelay:    cfg.RenderSettleDelay,
		metrics:        metrics,
	}
}

// Render navigates to pageURL, waits for waitSelector and returns the page HTML
func (b *BrowserRenderer) Render(ctx context.Context, pageURL, waitSelector string) (string, error) {
	b.metrics.IncFetch("rendered")

	l := launcher.New().
		Context(ctx).
		Headless(b.headless).
		NoSandbox(true).
		Leakless(true).
		Set("disable-dev-shm-usage", "true").
		Set("disable-gpu", "true")
	if b.bin != "" {
		l = l.Bin(b.bin)
	}
	defer func() {
		l.Kill()
		l.Cleanup()
	}()

	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("failed to open stealth page: %w", err)
	}
	defer page.Close()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      b.userAgent,
		AcceptLanguage: b.acceptLanguage,
	}); err != nil {
		return "", fmt.Errorf("failed to set user agent: %w", err)
	}

	if err := page.Navigate(normalizeURL(pageURL)); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
	}

	if waitSelector != "" {
		if _, err := page.Timeout(b.waitTimeout).Element(waitSelector); err != nil {
			b.metrics.IncFetchError(KindRenderWait)
			return "", fmt.Errorf("%w: %q on %s: %v", ErrRenderWaitTimeout, waitSelector, pageURL, err)
		}
	}

	if b.settleDelay > 0 {
		select {
		case <-time.After(b.settleDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read rendered html: %w", err)
	}
	return html, nil
}
