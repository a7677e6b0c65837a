package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suimate-ai/server/internal/agent/model"
	errx "github.com/suimate-ai/server/internal/core/error"
	"github.com/suimate-ai/server/internal/payload"
)

// fakeDex records calls so tests can assert that validation happens before
// any adapter I/O.
type fakeDex struct {
	resolveCalls int
	quoteCalls   int
	quote        *model.SwapQuote
	quoteErr     error
}

func (f *fakeDex) ResolveToken(_ context.Context, symbol string) (string, error) {
	f.resolveCalls++
	switch symbol {
	case "SUI":
		return "0x2::sui::SUI", nil
	case "USDC":
		return "0xusdc::usdc::USDC", nil
	}
	return "", errx.ErrTokenResolution
}

func (f *fakeDex) Quote(_ context.Context, fromCoinType, toCoinType string, amount float64) (*model.SwapQuote, error) {
	f.quoteCalls++
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q := *f.quote
	q.FromCoinType = fromCoinType
	q.ToCoinType = toCoinType
	q.AmountIn = amount
	return &q, nil
}

type fakeVaults struct {
	quoteCalls    int
	positionCalls int
	quote         *model.DepositQuote
	quoteErr      error
	positions     []model.LiquidityPosition
	positionsErr  error
}

func (f *fakeVaults) DepositQuote(_ context.Context, v model.Vault, amount float64) (*model.DepositQuote, error) {
	f.quoteCalls++
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q := *f.quote
	q.VaultSymbol = v.Symbol
	q.VaultAddress = v.Address
	q.AmountIn = amount
	return &q, nil
}

func (f *fakeVaults) Positions(_ context.Context, _ string) ([]model.LiquidityPosition, error) {
	f.positionCalls++
	return f.positions, f.positionsErr
}

type fakeChain struct {
	calls     int
	portfolio *model.Portfolio
	err       error
}

func (f *fakeChain) Portfolio(_ context.Context, _ string) (*model.Portfolio, error) {
	f.calls++
	return f.portfolio, f.err
}

type fakeSocial struct {
	posts []model.SocialPost
	err   error
}

func (f *fakeSocial) Search(_ context.Context, _ string) ([]model.SocialPost, error) {
	return f.posts, f.err
}

type fakeMarket struct {
	tokens []model.Token
	err    error
}

func (f *fakeMarket) Trending(_ context.Context, _ string) ([]model.Token, error) {
	return f.tokens, f.err
}

// invoke runs a tool the way the tools node does and returns the reply text.
func invoke(t *testing.T, bt tool.BaseTool, args string) string {
	t.Helper()
	inv, ok := bt.(tool.InvokableTool)
	require.True(t, ok)

	out, err := inv.InvokableRun(context.Background(), args)
	require.NoError(t, err)

	var r Reply
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	return r.Text
}

func TestPrepareSwapValidatesBeforeIO(t *testing.T) {
	cases := []struct {
		name string
		args string
	}{
		{"zero amount", `{"from_token":"SUI","to_token":"USDC","amount":0}`},
		{"negative amount", `{"from_token":"SUI","to_token":"USDC","amount":-3}`},
		{"non-numeric amount", `{"from_token":"SUI","to_token":"USDC","amount":"lots"}`},
		{"missing amount", `{"from_token":"SUI","to_token":"USDC"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dex := &fakeDex{}
			text := invoke(t, newPrepareSwapTool(dex), tc.args)

			assert.Contains(t, text, "positive number")
			assert.Zero(t, dex.resolveCalls)
			assert.Zero(t, dex.quoteCalls)
		})
	}
}

func TestPrepareSwapMissingTokens(t *testing.T) {
	dex := &fakeDex{}
	text := invoke(t, newPrepareSwapTool(dex), `{"from_token":"","to_token":"USDC","amount":5}`)

	assert.Contains(t, text, "both tokens")
	assert.Zero(t, dex.resolveCalls)
}

func TestPrepareSwapUnknownToken(t *testing.T) {
	dex := &fakeDex{}
	text := invoke(t, newPrepareSwapTool(dex), `{"from_token":"NOPE","to_token":"USDC","amount":5}`)

	assert.Contains(t, text, `"NOPE"`)
	assert.Zero(t, dex.quoteCalls)
}

func TestPrepareSwapSuccessEmbedsPayload(t *testing.T) {
	dex := &fakeDex{quote: &model.SwapQuote{ExpectedOut: 17.5, MinReceived: 17.4, SlippagePct: 0.5}}
	text := invoke(t, newPrepareSwapTool(dex), `{"from_token":"sui","to_token":"usdc","amount":5}`)

	assert.Contains(t, text, SwapReadyAck)
	assert.Equal(t, 1, dex.quoteCalls)

	p, ok := payload.Extract(text)
	require.True(t, ok)
	assert.Equal(t, payload.KindSwapAction, p.Kind)

	var q model.SwapQuote
	require.NoError(t, p.Decode(&q))
	assert.Equal(t, "SUI", q.FromSymbol)
	assert.Equal(t, "USDC", q.ToSymbol)
	assert.Equal(t, 5.0, q.AmountIn)
	assert.Equal(t, SwapReadyAck, payload.Strip(text))
}

func TestPrepareSwapAmountAsNumericString(t *testing.T) {
	dex := &fakeDex{quote: &model.SwapQuote{ExpectedOut: 1}}
	text := invoke(t, newPrepareSwapTool(dex), `{"from_token":"SUI","to_token":"USDC","amount":"2.5"}`)

	assert.Contains(t, text, SwapReadyAck)
	assert.Equal(t, 1, dex.quoteCalls)
}

func TestPrepareSwapNoLiquidity(t *testing.T) {
	dex := &fakeDex{quoteErr: errx.ErrQuoteUnavailable}
	text := invoke(t, newPrepareSwapTool(dex), `{"from_token":"SUI","to_token":"USDC","amount":5}`)

	assert.Contains(t, text, "no liquidity")
	_, ok := payload.Extract(text)
	assert.False(t, ok)
}

func TestPrepareSwapAggregatorDown(t *testing.T) {
	dex := &fakeDex{quoteErr: errors.New("connection refused")}
	text := invoke(t, newPrepareSwapTool(dex), `{"from_token":"SUI","to_token":"USDC","amount":5}`)

	assert.Contains(t, text, "try again")
}

func TestPrepareVaultDepositValidatesBeforeIO(t *testing.T) {
	vaults := &fakeVaults{}
	text := invoke(t, newPrepareVaultDepositTool(vaults), `{"vault_symbol":"SUI-VAULT","amount":0}`)

	assert.Contains(t, text, "positive number")
	assert.Zero(t, vaults.quoteCalls)
}

func TestPrepareVaultDepositUnknownVaultListsOptions(t *testing.T) {
	vaults := &fakeVaults{}
	text := invoke(t, newPrepareVaultDepositTool(vaults), `{"vault_symbol":"MOON-VAULT","amount":10}`)

	assert.Contains(t, text, `"MOON-VAULT"`)
	assert.Contains(t, text, "SUI-VAULT")
	assert.Contains(t, text, "USDC-VAULT")
	assert.Zero(t, vaults.quoteCalls)
}

func TestPrepareVaultDepositSuccess(t *testing.T) {
	vaults := &fakeVaults{quote: &model.DepositQuote{ExpectedLPOut: 9.9, APY: 12.3, DepositSymbol: "SUI"}}
	text := invoke(t, newPrepareVaultDepositTool(vaults), `{"vault_symbol":"sui-vault","amount":10}`)

	assert.Contains(t, text, DepositReadyAck)
	require.Equal(t, 1, vaults.quoteCalls)

	p, ok := payload.Extract(text)
	require.True(t, ok)
	assert.Equal(t, payload.KindLPDepositAction, p.Kind)

	var q model.DepositQuote
	require.NoError(t, p.Decode(&q))
	assert.Equal(t, "SUI-VAULT", q.VaultSymbol)
	assert.NotEmpty(t, q.VaultAddress)
	assert.Equal(t, 10.0, q.AmountIn)
}

func TestGetVaultPositions(t *testing.T) {
	vaults := &fakeVaults{positions: []model.LiquidityPosition{
		{VaultSymbol: "SUI-VAULT", EquityUSD: 120.5, LPBalance: 100.2, APY: 12.3},
	}}
	text := invoke(t, newGetVaultPositionsTool(vaults), `{"wallet_address":"0xabc"}`)

	assert.Contains(t, text, "SUI-VAULT")
	assert.Contains(t, text, "$120.50")
}

func TestGetVaultPositionsNoWallet(t *testing.T) {
	vaults := &fakeVaults{}
	text := invoke(t, newGetVaultPositionsTool(vaults), `{}`)

	assert.Contains(t, text, "Connect your wallet")
	assert.Zero(t, vaults.positionCalls)
}

func TestGetVaultPositionsEmpty(t *testing.T) {
	vaults := &fakeVaults{}
	text := invoke(t, newGetVaultPositionsTool(vaults), `{"wallet_address":"0xabc"}`)

	assert.Contains(t, text, "don't have any active vault positions")
}

func TestAnalyzePortfolioNoWallet(t *testing.T) {
	chain := &fakeChain{}
	text := invoke(t, newAnalyzePortfolioTool(chain), `{}`)

	assert.Contains(t, text, "Connect your wallet")
	assert.Zero(t, chain.calls)
}

func TestAnalyzePortfolioSuccess(t *testing.T) {
	chain := &fakeChain{portfolio: &model.Portfolio{
		WalletAddress: "0xabc",
		NetWorthUSD:   42.5,
		Holdings: []model.Holding{
			{Symbol: "SUI", Balance: 10, Price: 4.25, ValueUSD: 42.5},
		},
	}}
	text := invoke(t, newAnalyzePortfolioTool(chain), `{"wallet_address":"0xabc"}`)

	assert.Contains(t, text, PortfolioReadyAck)

	p, ok := payload.Extract(text)
	require.True(t, ok)
	assert.Equal(t, payload.KindPortfolioUI, p.Kind)
}

func TestAnalyzePortfolioChainDown(t *testing.T) {
	chain := &fakeChain{err: errors.New("rpc timeout")}
	text := invoke(t, newAnalyzePortfolioTool(chain), `{"wallet_address":"0xabc"}`)

	assert.Contains(t, text, "try again")
	_, ok := payload.Extract(text)
	assert.False(t, ok)
}

func TestAnalyzeMarketEmbedsTrendingPayload(t *testing.T) {
	market := &fakeMarket{tokens: []model.Token{
		{Symbol: "SUI", Name: "Sui", Price: 4.25, Change24h: 3.1},
		{Symbol: "DEEP", Name: "DeepBook", Price: 0.21, Change24h: -1.2},
	}}
	text := invoke(t, newAnalyzeMarketTool(market), `{}`)

	assert.Contains(t, text, "Trending on Sui")
	assert.Contains(t, text, "SUI")

	p, ok := payload.Extract(text)
	require.True(t, ok)
	assert.Equal(t, payload.KindTrendingTokensUI, p.Kind)
}

func TestAnalyzeMarketNotConfigured(t *testing.T) {
	market := &fakeMarket{err: errx.ErrNotConfigured}
	text := invoke(t, newAnalyzeMarketTool(market), `{}`)

	assert.Contains(t, text, "not configured")
}

func TestAnalyzeSentiment(t *testing.T) {
	social := &fakeSocial{posts: []model.SocialPost{
		{Author: "alice", Text: "DEEP is on fire", URL: "https://x.com/1", Likes: 12, Sentiment: 0.8},
		{Author: "bob", Text: "loving the orderbook", URL: "https://x.com/2", Likes: 4, Sentiment: 0.6},
	}}
	text := invoke(t, newAnalyzeSentimentTool(social), `{"topic":"DEEP"}`)

	assert.Contains(t, text, "positive")
	assert.Contains(t, text, "@alice")
	assert.Contains(t, text, "https://x.com/1")
}

func TestAnalyzeSentimentEmptyTopic(t *testing.T) {
	social := &fakeSocial{}
	text := invoke(t, newAnalyzeSentimentTool(social), `{"topic":"  "}`)

	assert.Contains(t, text, "Which token or protocol")
}

func TestAnalyzeSentimentNoPosts(t *testing.T) {
	social := &fakeSocial{}
	text := invoke(t, newAnalyzeSentimentTool(social), `{"topic":"GHOSTCOIN"}`)

	assert.Contains(t, text, "enough signal")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	require.NoError(t, r.Register(ctx, newAnalyzeMarketTool(&fakeMarket{})))
	err := r.Register(ctx, newAnalyzeMarketTool(&fakeMarket{}))
	assert.ErrorIs(t, err, errx.ErrDuplicateTool)
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("no_such_tool")
	assert.ErrorIs(t, err, errx.ErrToolNotFound)
}

func TestDefaultRegistryOrder(t *testing.T) {
	ctx := context.Background()
	r, err := DefaultRegistry(ctx, Deps{
		Social: &fakeSocial{},
		Market: &fakeMarket{},
		Chain:  &fakeChain{},
		Dex:    &fakeDex{},
		Vaults: &fakeVaults{},
	})
	require.NoError(t, err)

	infos, err := r.Infos(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 6)

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	assert.Equal(t, []string{
		ToolAnalyzeSentiment,
		ToolAnalyzeMarket,
		ToolAnalyzePortfolio,
		ToolPrepareSwap,
		ToolPrepareVaultDeposit,
		ToolGetVaultPositions,
	}, names)
}

func TestShortCircuitSet(t *testing.T) {
	assert.True(t, ShortCircuit(ToolPrepareSwap))
	assert.True(t, ShortCircuit(ToolPrepareVaultDeposit))
	assert.True(t, ShortCircuit(ToolAnalyzePortfolio))
	assert.False(t, ShortCircuit(ToolAnalyzeSentiment))
	assert.False(t, ShortCircuit(ToolAnalyzeMarket))
	assert.False(t, ShortCircuit(ToolGetVaultPositions))
}
