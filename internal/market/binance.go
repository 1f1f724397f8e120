package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://api.binance.com/api/v3"
	QuoteSuffix    = "USDT"
)

// Quote is the current price of one trading pair.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// Ticker is one record of the 24h rolling statistics endpoint.
type Ticker struct {
	Symbol             string          `json:"symbol"`
	LastPrice          decimal.Decimal `json:"lastPrice"`
	PriceChangePercent decimal.Decimal `json:"priceChangePercent"`
	QuoteVolume        decimal.Decimal `json:"quoteVolume"`
}

// Client reads Binance public market data. Failures are logged and reported
// as missing data; no method returns an error.
type Client struct {
	client *resty.Client
	log    zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &Client{
		client: client,
		log:    log.With().Str("component", "market").Logger(),
	}
}

// GetPrice returns the latest price for symbol, or false when it could not
// be fetched.
func (c *Client) GetPrice(ctx context.Context, symbol string) (Quote, bool) {
	var quote Quote
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&quote).
		Get("/ticker/price")
	if err != nil {
		c.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to fetch price")
		return Quote{}, false
	}
	if resp.IsError() {
		c.log.Error().Int("status", resp.StatusCode()).Str("symbol", symbol).Msg("Failed to fetch price")
		return Quote{}, false
	}
	if !quote.Price.IsPositive() {
		c.log.Error().Str("symbol", symbol).Str("price", quote.Price.String()).Msg("Invalid price in response")
		return Quote{}, false
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	return quote, true
}

// GetTopSymbols returns up to limit symbols ordered by 24h quote volume.
func (c *Client) GetTopSymbols(ctx context.Context, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	tickers, err := c.tickers24h(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to fetch top symbols")
		return []string{}
	}

	sort.SliceStable(tickers, func(i, j int) bool {
		return tickers[i].QuoteVolume.GreaterThan(tickers[j].QuoteVolume)
	})

	return lo.Map(firstN(tickers, limit), func(t Ticker, _ int) string {
		return t.Symbol
	})
}

// GetTopGainers returns up to limit USDT pairs ordered by 24h percentage
// change.
func (c *Client) GetTopGainers(ctx context.Context, limit int) []Ticker {
	if limit <= 0 {
		return []Ticker{}
	}
	tickers, err := c.tickers24h(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to fetch 24hr gainers")
		return []Ticker{}
	}

	pairs := lo.Filter(tickers, func(t Ticker, _ int) bool {
		return strings.HasSuffix(t.Symbol, QuoteSuffix)
	})
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].PriceChangePercent.GreaterThan(pairs[j].PriceChangePercent)
	})

	return firstN(pairs, limit)
}

func (c *Client) tickers24h(ctx context.Context) ([]Ticker, error) {
	var tickers []Ticker
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&tickers).
		Get("/ticker/24hr")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ticker/24hr returned status %d", resp.StatusCode())
	}
	return tickers, nil
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
