// Package chain wraps the Sui fullnode JSON-RPC API for wallet balance and
// coin metadata queries, and assembles priced portfolios from them.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/suimate-ai/server/internal/adapters/httpx"
	"github.com/suimate-ai/server/internal/agent/model"
	errx "github.com/suimate-ai/server/internal/core/error"
	logx "github.com/suimate-ai/server/pkg/logger"
)

type Config struct {
	RPCURL string `envconfig:"SUI_RPC_URL" default:"https://fullnode.mainnet.sui.io:443"`
}

// PriceSource provides spot USD prices for coin types. Implemented by the
// market adapter; injected so portfolio valuation stays testable offline.
type PriceSource interface {
	Price(ctx context.Context, coinType string) (float64, error)
}

type Client struct {
	cfg    Config
	http   *httpx.Client
	prices PriceSource
	reqID  atomic.Int64
}

func New(cfg Config, hc *http.Client, prices PriceSource) *Client {
	return &Client{cfg: cfg, http: httpx.New(hc), prices: prices}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.reqID.Add(1),
		Method:  method,
		Params:  params,
	}

	var resp rpcResponse
	if err := c.http.PostJSON(ctx, c.cfg.RPCURL, nil, req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return errx.WrapUpstream(resp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return errx.WrapUpstream(fmt.Errorf("decode %s result: %w", method, err))
	}
	return nil
}

// Balance is one coin balance as reported by suix_getAllBalances.
type Balance struct {
	CoinType     string `json:"coinType"`
	TotalBalance string `json:"totalBalance"`
}

// CoinMetadata is the subset of suix_getCoinMetadata this service needs.
type CoinMetadata struct {
	Decimals int    `json:"decimals"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
}

// AllBalances returns every coin balance held by the address.
func (c *Client) AllBalances(ctx context.Context, address string) ([]Balance, error) {
	var out []Balance
	if err := c.call(ctx, "suix_getAllBalances", []any{address}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Metadata returns decimals/name/symbol for a coin type.
func (c *Client) Metadata(ctx context.Context, coinType string) (*CoinMetadata, error) {
	var out *CoinMetadata
	if err := c.call(ctx, "suix_getCoinMetadata", []any{coinType}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errx.WrapUpstream(fmt.Errorf("no metadata for %s", coinType))
	}
	return out, nil
}

// Portfolio assembles the priced holdings of a wallet. Coins whose metadata
// or price cannot be resolved are kept with zero value rather than dropped,
// so the caller still sees the full holding list.
func (c *Client) Portfolio(ctx context.Context, address string) (*model.Portfolio, error) {
	balances, err := c.AllBalances(ctx, address)
	if err != nil {
		return nil, err
	}

	p := &model.Portfolio{WalletAddress: address}
	for _, b := range balances {
		h := model.Holding{CoinType: b.CoinType}

		meta, err := c.Metadata(ctx, b.CoinType)
		if err != nil {
			logx.Warn().Err(err).Str("coin_type", b.CoinType).Msg("coin metadata lookup failed")
			h.Symbol = shortCoinType(b.CoinType)
		} else {
			h.Symbol = meta.Symbol
			h.Name = meta.Name
			h.Balance = scaleBalance(b.TotalBalance, meta.Decimals)
		}

		if c.prices != nil && h.Balance > 0 {
			price, err := c.prices.Price(ctx, b.CoinType)
			if err != nil && !errors.Is(err, errx.ErrNotConfigured) {
				logx.Warn().Err(err).Str("coin_type", b.CoinType).Msg("price lookup failed")
			} else if err == nil {
				h.Price = price
				h.ValueUSD = h.Balance * price
			}
		}

		p.Holdings = append(p.Holdings, h)
		p.NetWorthUSD += h.ValueUSD
	}

	return p, nil
}

// scaleBalance converts an integer base-unit balance string to a float using
// the coin's decimals.
func scaleBalance(raw string, decimals int) float64 {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return n / math.Pow10(decimals)
}

// shortCoinType falls back to the struct name of a coin type, e.g.
// "0x2::sui::SUI" -> "SUI".
func shortCoinType(coinType string) string {
	for i := len(coinType) - 1; i >= 0; i-- {
		if coinType[i] == ':' {
			return coinType[i+1:]
		}
	}
	return coinType
}
