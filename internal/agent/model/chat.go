package model

import (
	"github.com/cloudwego/eino/schema"
)

// ChatInput represents one inbound conversation turn.
type ChatInput struct {
	SessionID     string `json:"session_id"`
	Message       string `json:"message"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

// Intent is the coarse routing bucket resolved before the model is consulted.
type Intent string

const (
	IntentSwap      Intent = "swap"
	IntentDeposit   Intent = "deposit"
	IntentPortfolio Intent = "portfolio"
	IntentMarket    Intent = "market"
	IntentGeneral   Intent = "general"
)

// RoutingDecision records the pre-route outcome for one turn. It is
// recomputed per turn and never persisted.
type RoutingDecision struct {
	Intent          Intent
	Tool            string // expected tool name, empty for general turns
	OverrideApplied bool   // true when the deterministic portfolio override fired
}

// AppState stores per-invocation state for the Eino graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex is required as long as state is never touched outside handlers.
type AppState struct {
	SessionID     string
	WalletAddress string          // session-bound wallet, injected into tool args
	Decision      RoutingDecision // set by the context builder pre-handler

	History []*schema.Message // mutated only inside Eino state handlers

	ToolExecuted  bool              // single-tool-call contract: set after the first execution
	ExecutedTool  string            // name of the tool that ran this turn
	ToolMessages  []*schema.Message // tool results captured for the acknowledge node
	ToolCallIDSeq int               // synthesizes tool_call_id when the provider omits it

	// Accumulated total LLM cost (USD) across model invocations for this turn.
	TotalCostUSD float64
}
