// Package scraper pulls product photos out of marketplace listing pages.
package scraper

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/headstock/internal/domain"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type ListingScraper struct {
	client *resty.Client
}

func NewListingScraper(timeout time.Duration) *ListingScraper {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &ListingScraper{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
			SetHeader("Accept-Language", "uk-UA,uk;q=0.9,en;q=0.8"),
	}
}

// FindImages returns up to max absolute image URLs from the page, Open Graph
// images first, then gallery <img> tags.
func (s *ListingScraper) FindImages(ctx context.Context, pageURL string, max int) ([]string, error) {
	if max <= 0 {
		max = 6
	}
	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, domain.BadRequestf("invalid listing url %q", pageURL)
	}

	resp, err := s.client.R().SetContext(ctx).Get(base.String())
	if err != nil {
		return nil, pkgerrors.Wrapf(domain.ErrUpstream, "fetch listing: %v", err)
	}
	if resp.IsError() {
		return nil, pkgerrors.Wrapf(domain.ErrUpstream, "fetch listing: status %d", resp.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, pkgerrors.Wrapf(domain.ErrUpstream, "parse listing: %v", err)
	}

	images := []string{}
	seen := map[string]bool{}
	add := func(raw string) {
		if len(images) >= max {
			return
		}
		u := resolve(base, raw)
		if u == "" || seen[u] || !looksLikePhoto(u) {
			return
		}
		seen[u] = true
		images = append(images, u)
	}

	doc.Find(`meta[property="og:image"], meta[name="twitter:image"]`).Each(func(_ int, sel *goquery.Selection) {
		if v, ok := sel.Attr("content"); ok {
			add(v)
		}
	})
	doc.Find("img[data-src], img[src]").Each(func(_ int, sel *goquery.Selection) {
		if v, ok := sel.Attr("data-src"); ok && v != "" {
			add(v)
			return
		}
		if v, ok := sel.Attr("src"); ok {
			add(v)
		}
	})

	log.Debug().Str("url", base.String()).Int("found", len(images)).Msg("listing images")
	return images, nil
}

func resolve(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return ""
	}
	u, err := base.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}

// looksLikePhoto drops logos, icons and vector sprites.
func looksLikePhoto(u string) bool {
	l := strings.ToLower(u)
	for _, bad := range []string{"logo", "icon", "sprite", "favicon", ".svg", "placeholder"} {
		if strings.Contains(l, bad) {
			return false
		}
	}
	return true
}
