// Package market wraps the token market-data API used by the market tool and
// as the price source for portfolio valuation.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/suimate-ai/server/internal/adapters/httpx"
	"github.com/suimate-ai/server/internal/agent/model"
	errx "github.com/suimate-ai/server/internal/core/error"
	"github.com/suimate-ai/server/pkg/cache"
	logx "github.com/suimate-ai/server/pkg/logger"
)

const (
	trendingTTL = time.Minute
	priceTTL    = 30 * time.Second
)

type Config struct {
	APIKey  string `envconfig:"MARKET_API_KEY"`
	BaseURL string `envconfig:"MARKET_BASE_URL" default:"https://api.suimetrics.io/v2"`
	Limit   int    `envconfig:"MARKET_TRENDING_LIMIT" default:"10"`
}

type Client struct {
	cfg   Config
	http  *httpx.Client
	cache cache.Cache
}

func New(cfg Config, hc *http.Client, c cache.Cache) *Client {
	return &Client{cfg: cfg, http: httpx.New(hc), cache: c}
}

func (c *Client) header() http.Header {
	return http.Header{"X-API-Key": {c.cfg.APIKey}}
}

type trendingResponse struct {
	Tokens []model.Token `json:"tokens"`
}

// Trending returns ranked tokens matching the query (empty query means the
// network-wide trending list).
func (c *Client) Trending(ctx context.Context, query string) ([]model.Token, error) {
	if c.cfg.APIKey == "" {
		return nil, errx.ErrNotConfigured
	}

	key := "market:trending:" + query
	if c.cache != nil {
		if b, err := c.cache.Get(ctx, key); err == nil {
			var tokens []model.Token
			if json.Unmarshal(b, &tokens) == nil {
				return tokens, nil
			}
		}
	}

	u := fmt.Sprintf("%s/tokens/trending?q=%s&limit=%d", c.cfg.BaseURL, url.QueryEscape(query), c.cfg.Limit)
	var resp trendingResponse
	if err := c.http.GetJSON(ctx, u, c.header(), &resp); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if b, err := json.Marshal(resp.Tokens); err == nil {
			if err := c.cache.Set(ctx, key, b, trendingTTL); err != nil {
				logx.Warn().Err(err).Str("key", key).Msg("failed to cache trending tokens")
			}
		}
	}

	return resp.Tokens, nil
}

type priceResponse struct {
	Price float64 `json:"price"`
}

// Price returns the spot USD price for a fully qualified coin type. It
// satisfies the chain package's PriceSource.
func (c *Client) Price(ctx context.Context, coinType string) (float64, error) {
	if c.cfg.APIKey == "" {
		return 0, errx.ErrNotConfigured
	}

	key := "market:price:" + coinType
	if c.cache != nil {
		if b, err := c.cache.Get(ctx, key); err == nil {
			var p float64
			if json.Unmarshal(b, &p) == nil {
				return p, nil
			}
		}
	}

	u := fmt.Sprintf("%s/tokens/price?coinType=%s", c.cfg.BaseURL, url.QueryEscape(coinType))
	var resp priceResponse
	if err := c.http.GetJSON(ctx, u, c.header(), &resp); err != nil {
		return 0, err
	}

	if c.cache != nil {
		if b, err := json.Marshal(resp.Price); err == nil {
			if err := c.cache.Set(ctx, key, b, priceTTL); err != nil {
				logx.Warn().Err(err).Str("key", key).Msg("failed to cache token price")
			}
		}
	}

	return resp.Price, nil
}
