package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suimate-ai/server/internal/agent/graph/tools"
	"github.com/suimate-ai/server/internal/agent/model"
)

func TestResolveIntents(t *testing.T) {
	cases := []struct {
		name    string
		message string
		intent  model.Intent
		tool    string
	}{
		{"swap verb", "swap 10 SUI to USDC", model.IntentSwap, tools.ToolPrepareSwap},
		{"exchange verb", "can you exchange my DEEP for SUI?", model.IntentSwap, tools.ToolPrepareSwap},
		{"trade verb", "I want to trade 5 CETUS for USDT", model.IntentSwap, tools.ToolPrepareSwap},
		{"convert verb", "convert 100 USDC to SUI please", model.IntentSwap, tools.ToolPrepareSwap},
		{"deposit then vault", "deposit 50 SUI into the vault", model.IntentDeposit, tools.ToolPrepareVaultDeposit},
		{"vault then deposit", "which vault should I deposit into?", model.IntentDeposit, tools.ToolPrepareVaultDeposit},
		{"lp deposit", "I'd like an LP deposit of 20 USDC", model.IntentDeposit, tools.ToolPrepareVaultDeposit},
		{"pool deposit", "put a deposit in the SUI pool", model.IntentDeposit, tools.ToolPrepareVaultDeposit},
		{"my portfolio", "show me my portfolio", model.IntentPortfolio, tools.ToolAnalyzePortfolio},
		{"my wallet", "what's in my wallet?", model.IntentPortfolio, tools.ToolAnalyzePortfolio},
		{"my holdings", "list my holdings", model.IntentPortfolio, tools.ToolAnalyzePortfolio},
		{"my net worth", "what is my net worth right now", model.IntentPortfolio, tools.ToolAnalyzePortfolio},
		{"what do i have", "what do I have?", model.IntentPortfolio, tools.ToolAnalyzePortfolio},
		{"what do i own", "what do i own on Sui", model.IntentPortfolio, tools.ToolAnalyzePortfolio},
		{"how much do i hold", "how much SUI do I hold?", model.IntentPortfolio, tools.ToolAnalyzePortfolio},
		{"balance of my", "check the balance of my account", model.IntentPortfolio, tools.ToolAnalyzePortfolio},
		{"trending", "what's trending on Sui?", model.IntentMarket, tools.ToolAnalyzeMarket},
		{"market", "give me a market overview", model.IntentMarket, tools.ToolAnalyzeMarket},
		{"top tokens", "top tokens today", model.IntentMarket, tools.ToolAnalyzeMarket},
		{"gainers", "biggest gainers this week", model.IntentMarket, tools.ToolAnalyzeMarket},
		{"greeting", "hey, how are you?", model.IntentGeneral, ""},
		{"sentiment question", "what are people saying about DEEP?", model.IntentGeneral, ""},
		{"vault question without deposit", "what vaults are available?", model.IntentGeneral, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Resolve(tc.message)
			assert.Equal(t, tc.intent, d.Intent)
			assert.Equal(t, tc.tool, d.Tool)
		})
	}
}

func TestResolvePriorityOrder(t *testing.T) {
	// Swap wins over market even when market vocabulary is present.
	d := Resolve("swap the top trending token for SUI")
	assert.Equal(t, model.IntentSwap, d.Intent)

	// Swap wins over portfolio.
	d = Resolve("swap half of my portfolio to USDC")
	assert.Equal(t, model.IntentSwap, d.Intent)

	// Deposit wins over portfolio.
	d = Resolve("deposit my tokens into a vault")
	assert.Equal(t, model.IntentDeposit, d.Intent)

	// Portfolio wins over market.
	d = Resolve("how do my tokens compare to the market?")
	assert.Equal(t, model.IntentPortfolio, d.Intent)
}

func TestResolveOverrideOnlyForPortfolio(t *testing.T) {
	assert.True(t, Resolve("show my portfolio").OverrideApplied)
	assert.False(t, Resolve("swap 1 SUI for USDC").OverrideApplied)
	assert.False(t, Resolve("deposit into a vault").OverrideApplied)
	assert.False(t, Resolve("trending tokens").OverrideApplied)
	assert.False(t, Resolve("hello").OverrideApplied)
}
