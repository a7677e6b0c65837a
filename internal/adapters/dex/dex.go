// Package dex wraps the swap aggregator API: token symbol resolution and
// swap quotes. Quotes are preparation only; signing and execution belong to
// the wallet bridge.
package dex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/suimate-ai/server/internal/adapters/httpx"
	"github.com/suimate-ai/server/internal/agent/model"
	errx "github.com/suimate-ai/server/internal/core/error"
)

type Config struct {
	BaseURL     string  `envconfig:"DEX_AGGREGATOR_URL" default:"https://aggregator.suiswap.io/v1"`
	SlippagePct float64 `envconfig:"DEX_SLIPPAGE_PCT" default:"0.5"`
}

type Client struct {
	cfg  Config
	http *httpx.Client
}

func New(cfg Config, hc *http.Client) *Client {
	return &Client{cfg: cfg, http: httpx.New(hc)}
}

// wellKnownTokens maps common Sui token symbols to their coin types so the
// frequent pairs resolve without a network round-trip.
var wellKnownTokens = map[string]string{
	"SUI":   "0x2::sui::SUI",
	"USDC":  "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC",
	"USDT":  "0xc060006111016b8a020ad5b33834984a437aaa7d3c74c18e09a95d48aceab08c::coin::COIN",
	"WETH":  "0xaf8cd5edc19c4512f4259f0bee101a40d41ebed738ade5874359610ef8eeced5::coin::COIN",
	"CETUS": "0x06864a6f921804860930db6ddbe2e16acdf8504495ea7481637a1c8b9a8fe54b::cetus::CETUS",
	"DEEP":  "0xdeeb7a4662eec9f2f3def03fb937a663dddaa2e215b8078a284d026b7946c270::deep::DEEP",
	"NAVX":  "0xa99b8952d4f7d947ea77fe0ecdcc9e5fc0bcab2841d6e2a5aa00c3044e5544b5::navx::NAVX",
}

type resolveResponse struct {
	CoinType string `json:"coinType"`
}

// ResolveToken maps a user-facing symbol to its on-chain coin type. Unknown
// symbols are looked up through the aggregator before failing.
func (c *Client) ResolveToken(ctx context.Context, symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", errx.ErrTokenResolution
	}
	if ct, ok := wellKnownTokens[s]; ok {
		return ct, nil
	}

	u := fmt.Sprintf("%s/tokens/resolve?symbol=%s", c.cfg.BaseURL, url.QueryEscape(s))
	var resp resolveResponse
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return "", fmt.Errorf("%w: %s", errx.ErrTokenResolution, s)
	}
	if resp.CoinType == "" {
		return "", fmt.Errorf("%w: %s", errx.ErrTokenResolution, s)
	}
	return resp.CoinType, nil
}

type quoteRequest struct {
	FromCoinType string  `json:"fromCoinType"`
	ToCoinType   string  `json:"toCoinType"`
	AmountIn     float64 `json:"amountIn"`
	SlippagePct  float64 `json:"slippagePct"`
}

type quoteResponse struct {
	ExpectedOut    float64 `json:"expectedOut"`
	MinReceived    float64 `json:"minReceived"`
	PriceImpactPct float64 `json:"priceImpactPct"`
}

// Quote fetches a swap quote for the resolved pair. A zero expected output
// means no route had liquidity and maps to ErrQuoteUnavailable.
func (c *Client) Quote(ctx context.Context, fromCoinType, toCoinType string, amount float64) (*model.SwapQuote, error) {
	req := quoteRequest{
		FromCoinType: fromCoinType,
		ToCoinType:   toCoinType,
		AmountIn:     amount,
		SlippagePct:  c.cfg.SlippagePct,
	}

	var resp quoteResponse
	if err := c.http.PostJSON(ctx, c.cfg.BaseURL+"/quote", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", errx.ErrQuoteUnavailable, err)
	}
	if resp.ExpectedOut <= 0 {
		return nil, errx.ErrQuoteUnavailable
	}

	return &model.SwapQuote{
		FromCoinType:   fromCoinType,
		ToCoinType:     toCoinType,
		AmountIn:       amount,
		ExpectedOut:    resp.ExpectedOut,
		MinReceived:    resp.MinReceived,
		PriceImpactPct: resp.PriceImpactPct,
		SlippagePct:    c.cfg.SlippagePct,
	}, nil
}
