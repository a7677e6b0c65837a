package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/suimate-ai/server/internal/agent/graph/tools"
	"github.com/suimate-ai/server/internal/agent/model"
)

//go:embed template/directive_prompt.txt
var directivePrompt string

// RenderDirective renders the system instruction for one turn via the Eino
// prompt component (which also emits prompt callbacks). The directive encodes
// the tool priority rules; the pre-route decision and wallet state are folded
// in as structured notes rather than spliced into the user's message.
func RenderDirective(ctx context.Context, cfg model.PromptConfig, decision model.RoutingDecision, walletConnected bool) (string, error) {
	routingNote := ""
	if decision.Tool != "" {
		routingNote = fmt.Sprintf(
			"\nROUTING NOTE: this message deterministically matches the %s intent. Call %s for this turn.",
			decision.Intent, decision.Tool,
		)
	}

	walletNote := ""
	if decision.OverrideApplied && !walletConnected {
		walletNote = "\nWALLET NOTE: no wallet is connected for this session. Decline the portfolio request gracefully and invite the user to connect a wallet. Do not invent portfolio data."
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(directivePrompt),
	)
	vars := map[string]any{
		"AssistantName": cfg.AssistantName,
		"Network":       cfg.Network,
		"SwapTool":      tools.ToolPrepareSwap,
		"DepositTool":   tools.ToolPrepareVaultDeposit,
		"PortfolioTool": tools.ToolAnalyzePortfolio,
		"MarketTool":    tools.ToolAnalyzeMarket,
		"SentimentTool": tools.ToolAnalyzeSentiment,
		"PositionsTool": tools.ToolGetVaultPositions,
		"RoutingNote":   routingNote,
		"WalletNote":    walletNote,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("directive prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("directive prompt render: empty result")
	}
	return msgs[0].Content, nil
}
