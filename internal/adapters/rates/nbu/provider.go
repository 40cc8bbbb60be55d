// Package nbu reads the official hryvnia exchange rate published by the
// National Bank of Ukraine.
package nbu

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const DefaultURL = "https://bank.gov.ua/NBUStatService/v1/statdirectory/exchange"

type Config struct {
	URL      string
	Currency string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type quote struct {
	Currency string  `json:"cc"`
	Rate     float64 `json:"rate"`
	Date     string  `json:"exchangedate"`
}

// Provider caches the last good rate for CacheTTL. A failed lookup is never
// cached and reports rate 1. Concurrent lookups share one upstream request.
type Provider struct {
	client   *resty.Client
	url      string
	currency string
	ttl      time.Duration
	now      func() time.Time
	group    singleflight.Group

	mu      sync.Mutex
	rate    float64
	fetched time.Time
}

func New(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Currency == "" {
		cfg.Currency = "CNY"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheTTL < 0 {
		cfg.CacheTTL = 0
	}
	return &Provider{
		client:   resty.New().SetTimeout(cfg.Timeout).SetHeader("Accept", "application/json"),
		url:      cfg.URL,
		currency: strings.ToUpper(cfg.Currency),
		ttl:      cfg.CacheTTL,
		now:      time.Now,
	}
}

func (p *Provider) Currency() string { return p.currency }

// Rate returns the local-currency price of one unit of the configured
// currency and whether it came from the bank.
func (p *Provider) Rate(ctx context.Context) (float64, bool) {
	if rate, ok := p.cached(); ok {
		return rate, true
	}
	// the shared request outlives any single caller; the client timeout bounds it
	v, err, _ := p.group.Do(p.currency, func() (any, error) {
		rate, err := p.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return 0.0, err
		}
		p.mu.Lock()
		p.rate, p.fetched = rate, p.now()
		p.mu.Unlock()
		return rate, nil
	})
	if err != nil {
		log.Warn().Err(err).Str("currency", p.currency).Msg("exchange rate unavailable, using 1")
		return 1, false
	}
	return v.(float64), true
}

func (p *Provider) cached() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rate > 0 && p.ttl > 0 && p.now().Sub(p.fetched) < p.ttl {
		return p.rate, true
	}
	return 0, false
}

func (p *Provider) fetch(ctx context.Context) (float64, error) {
	var quotes []quote
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryString("valcode=" + p.currency + "&json").
		SetResult(&quotes).
		Get(p.url)
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, &statusError{code: resp.StatusCode()}
	}
	if len(quotes) == 0 || quotes[0].Rate <= 0 {
		return 0, errNoQuote
	}
	return quotes[0].Rate, nil
}
