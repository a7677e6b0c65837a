package tools

// Tool names are the identifiers the model must emit verbatim to invoke a
// capability; they never change without a prompt update.
const (
	ToolAnalyzeSentiment    = "analyze_sentiment"
	ToolAnalyzeMarket       = "analyze_market"
	ToolAnalyzePortfolio    = "analyze_portfolio"
	ToolPrepareSwap         = "prepare_swap"
	ToolPrepareVaultDeposit = "prepare_vault_deposit"
	ToolGetVaultPositions   = "get_vault_positions"
)

// ShortCircuit reports whether a successful invocation of the named tool ends
// the turn with its fixed acknowledgement, with no further model commentary.
func ShortCircuit(name string) bool {
	switch name {
	case ToolPrepareSwap, ToolPrepareVaultDeposit, ToolAnalyzePortfolio:
		return true
	}
	return false
}
