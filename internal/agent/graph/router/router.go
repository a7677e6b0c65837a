// Package router implements the deterministic pre-routing pass that runs
// before the model is asked to choose a tool. Several tools share trigger
// vocabulary ("token" appears in both swap and market requests), so the
// matchers are evaluated in a fixed priority order, first match wins:
// swap > deposit > portfolio > market > general.
package router

import (
	"regexp"

	"github.com/suimate-ai/server/internal/agent/graph/tools"
	"github.com/suimate-ai/server/internal/agent/model"
)

type matcher struct {
	intent model.Intent
	tool   string
	re     *regexp.Regexp
}

// matchers in priority order. The portfolio matcher is the safety-sensitive
// override: personal-portfolio requests must always fetch live data, never be
// answered from conversation memory.
var matchers = []matcher{
	{
		intent: model.IntentSwap,
		tool:   tools.ToolPrepareSwap,
		re:     regexp.MustCompile(`(?i)\b(swap|exchange|trade|convert)\b`),
	},
	{
		intent: model.IntentDeposit,
		tool:   tools.ToolPrepareVaultDeposit,
		re:     regexp.MustCompile(`(?i)\bdeposit\b[\s\S]*\b(lp|vaults?|pools?)\b|\b(lp|vaults?|pools?)\b[\s\S]*\bdeposit\b`),
	},
	{
		intent: model.IntentPortfolio,
		tool:   tools.ToolAnalyzePortfolio,
		re: regexp.MustCompile(`(?i)` +
			`\bmy\b[\s\S]*\b(wallet|holdings?|balances?|portfolio|net\s*worth|assets|positions?|tokens?|coins?)\b` +
			`|\b(wallet|holdings?|balances?|portfolio|net\s*worth)\b[\s\S]*\bmy\b` +
			`|what\s+(do\s+i|i)\s+(have|hold|own)` +
			`|how\s+much\b[\s\S]*\bdo\s+i\s+(have|hold|own)`),
	},
	{
		intent: model.IntentMarket,
		tool:   tools.ToolAnalyzeMarket,
		re:     regexp.MustCompile(`(?i)\b(trending|market|top\s+(tokens?|coins?)|token\s+list|movers|gainers|losers)\b`),
	},
}

// Resolve classifies a message into a routing decision. Messages matching no
// pattern are general turns left entirely to model discretion.
func Resolve(message string) model.RoutingDecision {
	for _, m := range matchers {
		if m.re.MatchString(message) {
			return model.RoutingDecision{
				Intent:          m.intent,
				Tool:            m.tool,
				OverrideApplied: m.intent == model.IntentPortfolio,
			}
		}
	}
	return model.RoutingDecision{Intent: model.IntentGeneral}
}
