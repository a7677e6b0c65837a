package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suimate-ai/server/internal/agent/graph/tools"
	"github.com/suimate-ai/server/internal/agent/model"
)

var testPromptCfg = model.PromptConfig{AssistantName: "SuiMate", Network: "Sui"}

func TestRenderDirectiveBase(t *testing.T) {
	out, err := RenderDirective(context.Background(), testPromptCfg, model.RoutingDecision{Intent: model.IntentGeneral}, false)
	require.NoError(t, err)

	assert.Contains(t, out, "SuiMate")
	for _, name := range []string{
		tools.ToolAnalyzeSentiment,
		tools.ToolAnalyzeMarket,
		tools.ToolAnalyzePortfolio,
		tools.ToolPrepareSwap,
		tools.ToolPrepareVaultDeposit,
		tools.ToolGetVaultPositions,
	} {
		assert.Contains(t, out, name)
	}
	assert.NotContains(t, out, "ROUTING NOTE")
	assert.NotContains(t, out, "WALLET NOTE")
	assert.NotContains(t, out, "{{")
}

func TestRenderDirectiveRoutingNote(t *testing.T) {
	decision := model.RoutingDecision{Intent: model.IntentSwap, Tool: tools.ToolPrepareSwap}
	out, err := RenderDirective(context.Background(), testPromptCfg, decision, true)
	require.NoError(t, err)

	assert.Contains(t, out, "ROUTING NOTE")
	assert.Contains(t, out, tools.ToolPrepareSwap)
}

func TestRenderDirectiveWalletNote(t *testing.T) {
	decision := model.RoutingDecision{
		Intent:          model.IntentPortfolio,
		Tool:            tools.ToolAnalyzePortfolio,
		OverrideApplied: true,
	}

	out, err := RenderDirective(context.Background(), testPromptCfg, decision, false)
	require.NoError(t, err)
	assert.Contains(t, out, "WALLET NOTE")

	// Connected wallet: no note needed.
	out, err = RenderDirective(context.Background(), testPromptCfg, decision, true)
	require.NoError(t, err)
	assert.NotContains(t, out, "WALLET NOTE")
}
