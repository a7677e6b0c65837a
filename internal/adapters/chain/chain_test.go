package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcStub answers Sui JSON-RPC calls from a fixed script.
func rpcStub(t *testing.T, balances []Balance, metadata map[string]*CoinMetadata) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)

		var result any
		switch req.Method {
		case "suix_getAllBalances":
			result = balances
		case "suix_getCoinMetadata":
			coinType, _ := req.Params[0].(string)
			result = metadata[coinType] // nil for unknown coins
		default:
			t.Fatalf("unexpected rpc method %s", req.Method)
		}

		raw, err := json.Marshal(result)
		require.NoError(t, err)
		json.NewEncoder(w).Encode(rpcResponse{Result: raw})
	}))
}

type stubPrices map[string]float64

func (s stubPrices) Price(_ context.Context, coinType string) (float64, error) {
	return s[coinType], nil
}

func TestPortfolio(t *testing.T) {
	srv := rpcStub(t,
		[]Balance{
			{CoinType: "0x2::sui::SUI", TotalBalance: "10000000000"},
			{CoinType: "0xdeeb::deep::DEEP", TotalBalance: "5000000"},
		},
		map[string]*CoinMetadata{
			"0x2::sui::SUI":      {Decimals: 9, Name: "Sui", Symbol: "SUI"},
			"0xdeeb::deep::DEEP": {Decimals: 6, Name: "DeepBook", Symbol: "DEEP"},
		})
	defer srv.Close()

	prices := stubPrices{"0x2::sui::SUI": 4.0, "0xdeeb::deep::DEEP": 0.2}
	c := New(Config{RPCURL: srv.URL}, srv.Client(), prices)

	p, err := c.Portfolio(context.Background(), "0xabc")
	require.NoError(t, err)

	assert.Equal(t, "0xabc", p.WalletAddress)
	require.Len(t, p.Holdings, 2)

	sui := p.Holdings[0]
	assert.Equal(t, "SUI", sui.Symbol)
	assert.InDelta(t, 10.0, sui.Balance, 1e-9)
	assert.InDelta(t, 40.0, sui.ValueUSD, 1e-9)

	deep := p.Holdings[1]
	assert.Equal(t, "DEEP", deep.Symbol)
	assert.InDelta(t, 5.0, deep.Balance, 1e-9)
	assert.InDelta(t, 1.0, deep.ValueUSD, 1e-9)

	assert.InDelta(t, 41.0, p.NetWorthUSD, 1e-9)
}

func TestPortfolioKeepsUnresolvableCoins(t *testing.T) {
	srv := rpcStub(t,
		[]Balance{{CoinType: "0xdead::mystery::MYST", TotalBalance: "123"}},
		map[string]*CoinMetadata{})
	defer srv.Close()

	c := New(Config{RPCURL: srv.URL}, srv.Client(), stubPrices{})

	p, err := c.Portfolio(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, p.Holdings, 1)

	// Metadata lookup failed: symbol falls back to the struct name and the
	// holding carries zero value instead of vanishing.
	assert.Equal(t, "MYST", p.Holdings[0].Symbol)
	assert.Zero(t, p.Holdings[0].Balance)
	assert.Zero(t, p.Holdings[0].ValueUSD)
	assert.Zero(t, p.NetWorthUSD)
}

func TestPortfolioEmptyWallet(t *testing.T) {
	srv := rpcStub(t, []Balance{}, nil)
	defer srv.Close()

	c := New(Config{RPCURL: srv.URL}, srv.Client(), nil)
	p, err := c.Portfolio(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Empty(t, p.Holdings)
	assert.Zero(t, p.NetWorthUSD)
}

func TestCallSurfacesRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(rpcResponse{Error: &rpcError{Code: -32602, Message: "invalid address"}})
	}))
	defer srv.Close()

	c := New(Config{RPCURL: srv.URL}, srv.Client(), nil)
	_, err := c.AllBalances(context.Background(), "not-an-address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address")
}

func TestScaleBalance(t *testing.T) {
	assert.InDelta(t, 1.0, scaleBalance("1000000000", 9), 1e-12)
	assert.InDelta(t, 0.5, scaleBalance("500000", 6), 1e-12)
	assert.Zero(t, scaleBalance("not-a-number", 9))
}

func TestShortCoinType(t *testing.T) {
	assert.Equal(t, "SUI", shortCoinType("0x2::sui::SUI"))
	assert.Equal(t, "plain", shortCoinType("plain"))
}
