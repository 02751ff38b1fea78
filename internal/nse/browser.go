package nse

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserCookies loads homeURL in a Chrome instance and returns the cookies
// it was given. Used when the plain HTTP bootstrap is refused by the
// exchange's bot protection.
func BrowserCookies(ctx context.Context, homeURL string, headless bool, logger *slog.Logger) ([]*http.Cookie, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	var cdpCookies []*network.Cookie
	start := time.Now()
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(homeURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cdpCookies, err = network.GetCookies().WithUrls([]string{homeURL}).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser session for %s: %w", homeURL, err)
	}

	logger.InfoContext(ctx, "browser session established",
		"url", homeURL,
		"cookies", len(cdpCookies),
		"duration", time.Since(start).String(),
	)
	return convertCookies(cdpCookies), nil
}

func convertCookies(in []*network.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(in))
	for _, c := range in {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}
