// Package vault wraps the liquidity-vault API: the deposit-vault catalog,
// deposit quotes and per-wallet position queries.
package vault

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
	BaseURL string `envconfig:"VAULT_API_URL" default:"https://api.suivaults.io/v1"`
}

type Client struct {
	cfg  Config
	http *httpx.Client
}

func New(cfg Config, hc *http.Client) *Client {
	return &Client{cfg: cfg, http: httpx.New(hc)}
}

// catalog is the fixed set of deposit vaults this deployment supports. APY
// and TVL figures come from the quote endpoint at request time; the catalog
// only anchors symbols and addresses.
var catalog = []model.Vault{
	{Symbol: "SUI-VAULT", Name: "SUI Yield Vault", Address: "0x7f1e3a9c2b5d8e4f6a0c9b7d5e3f1a8c6b4d2e0f9a7c5b3d1e8f6a4c2b0d9e7f"},
	{Symbol: "USDC-VAULT", Name: "USDC Stable Vault", Address: "0x3c5a7e9b1d4f6a8c0e2b5d7f9a1c3e5b7d9f1a3c5e7b9d1f3a5c7e9b1d3f5a7c"},
	{Symbol: "DEEP-VAULT", Name: "DEEP Liquidity Vault", Address: "0x9b1d3f5a7c9e1b3d5f7a9c1e3b5d7f9a1c3e5b7d9f1a3c5e7b9d1f3a5c7e9b1d"},
}

// Find looks a vault up by symbol, case-insensitively.
func Find(symbol string) (model.Vault, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, v := range catalog {
		if v.Symbol == s {
			return v, nil
		}
	}
	return model.Vault{}, fmt.Errorf("%w: %s", errx.ErrVaultNotFound, symbol)
}

// Symbols lists the supported vault symbols, for "vault not found" replies.
func Symbols() []string {
	out := make([]string, 0, len(catalog))
	for _, v := range catalog {
		out = append(out, v.Symbol)
	}
	return out
}

type depositQuoteRequest struct {
	VaultAddress string  `json:"vaultAddress"`
	AmountIn     float64 `json:"amountIn"`
}

type depositQuoteResponse struct {
	ExpectedLPOut  float64 `json:"expectedLpOut"`
	APY            float64 `json:"apy"`
	RewardAPY      float64 `json:"rewardApy"`
	DepositSymbol  string  `json:"depositSymbol"`
	DepositAddress string  `json:"depositAddress"`
}

// DepositQuote fetches the expected LP-token output and current yield for a
// deposit into the vault.
func (c *Client) DepositQuote(ctx context.Context, v model.Vault, amount float64) (*model.DepositQuote, error) {
	req := depositQuoteRequest{VaultAddress: v.Address, AmountIn: amount}

	var resp depositQuoteResponse
	if err := c.http.PostJSON(ctx, c.cfg.BaseURL+"/deposit/quote", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", errx.ErrQuoteUnavailable, err)
	}
	if resp.ExpectedLPOut <= 0 {
		return nil, errx.ErrQuoteUnavailable
	}

	return &model.DepositQuote{
		VaultSymbol:    v.Symbol,
		VaultAddress:   v.Address,
		AmountIn:       amount,
		ExpectedLPOut:  resp.ExpectedLPOut,
		APY:            resp.APY,
		RewardAPY:      resp.RewardAPY,
		DepositSymbol:  resp.DepositSymbol,
		DepositAddress: resp.DepositAddress,
	}, nil
}

type positionsResponse struct {
	Positions []model.LiquidityPosition `json:"positions"`
}

// Positions returns the wallet's active vault positions.
func (c *Client) Positions(ctx context.Context, address string) ([]model.LiquidityPosition, error) {
	u := fmt.Sprintf("%s/positions?address=%s", c.cfg.BaseURL, url.QueryEscape(address))
	var resp positionsResponse
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Positions, nil
}
