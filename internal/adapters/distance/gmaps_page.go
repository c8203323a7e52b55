package distance

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	consentButtonXPath = `//button[.//text()[contains(.,'Accept all') or contains(.,'Aceptar todo')]]`
	consentFrameQuery  = `iframe[src*='consent']`
	resultsPanelXPath  = `//*[contains(@class,'section-directions') or contains(@id,'pane') or contains(@class,'widget-directions')]`
)

// clickConsentJS clicks the consent button of the top-level document only.
const clickConsentJS = `(function() {
  const r = document.evaluate(
    "//button[.//text()[contains(.,'Accept all') or contains(.,'Aceptar todo')]]",
    document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
  const btn = r.singleNodeValue;
  if (!btn) return false;
  btn.click();
  return true;
})()`

// scanDistancesJS walks visible text nodes for "<n> km" / "<n> m" snippets.
// Texts longer than 80 characters are skipped as prose.
const scanDistancesJS = `(function() {
  const body = document.body;
  if (!body) return {notFound: false, distances: []};

  const page = (body.innerText || '').toLowerCase();
  const failures = [
    "google maps can't find",
    "no results found",
    "google maps no encuentra",
    "no se han encontrado resultados",
    "could not calculate directions",
    "we could not calculate directions"
  ];
  if (failures.some(f => page.includes(f))) return {notFound: true, distances: []};

  const visible = (el) => {
    if (!el) return false;
    const st = window.getComputedStyle(el);
    if (!st || st.visibility === 'hidden' || st.display === 'none') return false;
    const box = el.getBoundingClientRect();
    return box.width > 0 && box.height > 0;
  };

  const re = /\b\d+(?:[.,]\d+)?\s*(?:km|m)\b/;
  const walker = document.createTreeWalker(body, NodeFilter.SHOW_TEXT);
  const found = [];
  let node;
  while ((node = walker.nextNode())) {
    const text = (node.textContent || '').trim();
    if (!text || text.length > 80) continue;
    const m = text.match(re);
    if (m && visible(node.parentElement)) found.push(m[0]);
  }
  return {notFound: false, distances: found};
})()`

type scanResult struct {
	NotFound  bool     `json:"notFound"`
	Distances []string `json:"distances"`
}

// acceptCookies dismisses the consent dialog if one appears. It tries the
// main document first, then the consent iframe. Failing both is not an error.
func (g *GoogleMapsProvider) acceptCookies(ctx context.Context) {
	wait := g.cfg.ConsentTimeout.Duration

	mainCtx, cancel := context.WithTimeout(ctx, wait)
	var clicked bool
	err := chromedp.Run(mainCtx, chromedp.Poll(clickConsentJS, &clicked,
		chromedp.WithPollingInterval(250*time.Millisecond),
		chromedp.WithPollingTimeout(wait),
	))
	cancel()
	if err == nil && clicked {
		g.log.Info("cookies accepted (main page)")
		return
	}

	frameCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := chromedp.Run(frameCtx, chromedp.WaitReady(consentFrameQuery, chromedp.ByQuery)); err != nil {
		g.log.Info("no consent iframe shown")
		return
	}

	// performSearch also descends into frame documents.
	if err := chromedp.Run(frameCtx, chromedp.Click(consentButtonXPath, chromedp.BySearch, chromedp.NodeVisible)); err != nil {
		g.log.Info("no cookie button found in iframe")
		return
	}
	g.log.Info("cookies accepted (iframe)")
}

// waitForResults waits for the directions panel. A timeout is tolerated
// because the scan afterwards detects empty or failed pages.
func (g *GoogleMapsProvider) waitForResults(ctx context.Context) {
	wctx, cancel := context.WithTimeout(ctx, g.cfg.ResultsTimeout.Duration)
	defer cancel()

	if err := chromedp.Run(wctx, chromedp.WaitReady(resultsPanelXPath, chromedp.BySearch)); err != nil {
		g.log.WithError(err).Debug("directions panel not detected")
	}
}
