package distance

import (
	"context"
	"errors"
	"fmt"
	"km-report-service/internal/config"
	"km-report-service/internal/domain"
	"km-report-service/internal/platform/obs"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const defaultPageLoadTimeout = 30 * time.Second

// GoogleMapsProvider implements DistanceSession by driving a headless
// Chrome to the Google Maps directions page and reading the distances it
// renders. There is no API key and no routing API: the page is scraped.
//
// A single tab is reused for every lookup, so the provider must not be
// used from more than one goroutine.
type GoogleMapsProvider struct {
	cfg      config.MappingConfig
	execPath string
	limiter  *rate.Limiter
	log      logrus.FieldLogger

	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewGoogleMapsProvider creates an unstarted provider. execPath may be
// empty to let chromedp locate Chrome.
func NewGoogleMapsProvider(cfg config.MappingConfig, execPath string, log logrus.FieldLogger) *GoogleMapsProvider {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &GoogleMapsProvider{
		cfg:      cfg,
		execPath: execPath,
		limiter:  rate.NewLimiter(limit, 1),
		log:      log.WithField("component", "gmaps"),
	}
}

// Start launches the browser.
func (g *GoogleMapsProvider) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", g.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(g.cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	if g.execPath != "" {
		opts = append(opts, chromedp.ExecPath(g.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("start browser: %w", err)
	}

	g.browserCtx = browserCtx
	g.browserCancel = browserCancel
	g.allocCancel = allocCancel
	g.log.Info("browser started")
	return nil
}

// Close shuts the browser down. Safe to call on an unstarted provider.
func (g *GoogleMapsProvider) Close() error {
	if g.browserCancel != nil {
		g.browserCancel()
	}
	if g.allocCancel != nil {
		g.allocCancel()
	}
	g.browserCtx = nil
	g.log.Info("browser closed")
	return nil
}

// pageLoadTimeout bounds a page navigation. It reuses the results timeout.
func (g *GoogleMapsProvider) pageLoadTimeout() time.Duration {
	if d := g.cfg.ResultsTimeout.Duration; d > 0 {
		return d
	}
	return defaultPageLoadTimeout
}

// GetDistance loads the directions page for the pair and returns the
// longest distance shown. It returns domain.ErrAddressNotFound when the
// page reports that either address could not be resolved.
func (g *GoogleMapsProvider) GetDistance(
	ctx context.Context,
	origin string,
	destination string,
) (_ domain.Distance, err error) {
	defer obs.Time(ctx, g.log, "gmaps.GetDistance")(&err)

	if g.browserCtx == nil {
		return domain.Distance{}, errors.New("get gmaps distance: browser not started")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Distance{}, fmt.Errorf("get gmaps distance: rate limiter: %w", err)
	}

	target := DirectionsURL(g.cfg.BaseURL, origin, destination)
	g.log.WithField("url", target).Info("loading directions")

	navCtx, cancel := context.WithTimeout(g.browserCtx, g.pageLoadTimeout())
	err = chromedp.Run(navCtx, chromedp.Navigate(target))
	cancel()
	if err != nil {
		return domain.Distance{}, fmt.Errorf("get gmaps distance: navigate: %w", err)
	}

	g.acceptCookies(g.browserCtx)
	g.waitForResults(g.browserCtx)

	var scan scanResult
	err = chromedp.Run(g.browserCtx,
		chromedp.Sleep(g.cfg.ExtraWait.Duration),
		chromedp.Evaluate(scanDistancesJS, &scan),
	)
	if err != nil {
		return domain.Distance{}, fmt.Errorf("get gmaps distance: scan page: %w", err)
	}

	if scan.NotFound {
		return domain.Distance{}, fmt.Errorf("get gmaps distance %q -> %q: %w", origin, destination, domain.ErrAddressNotFound)
	}

	best := SelectLongest(scan.Distances)
	g.log.WithFields(logrus.Fields{
		"candidates": len(scan.Distances),
		"selected":   best,
	}).Info("longest distance detected")

	return domain.ParseDistance(best), nil
}
