package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/suimate-ai/server/internal/agent/graph/tools"
	"github.com/suimate-ai/server/internal/agent/model"
	logx "github.com/suimate-ai/server/pkg/logger"
)

// walletTools accept an optional wallet_address argument that falls back to
// the session-bound wallet.
var walletTools = map[string]bool{
	tools.ToolAnalyzePortfolio:    true,
	tools.ToolPrepareSwap:         true,
	tools.ToolPrepareVaultDeposit: true,
	tools.ToolGetVaultPositions:   true,
}

// NewToolArgumentsHandler sanitizes model-produced tool arguments and injects
// the session wallet address as a structured side-channel. The wallet is
// never spliced into the natural-language prompt, so unusual message phrasing
// cannot spoof it. Best effort only; this never fails hard.
func NewToolArgumentsHandler() func(ctx context.Context, name, arguments string) (string, error) {
	return func(ctx context.Context, name, arguments string) (string, error) {
		var m map[string]any
		if err := json.Unmarshal([]byte(arguments), &m); err != nil {
			// keep original if not JSON
			return arguments, nil
		}

		for _, key := range []string{"topic", "query", "from_token", "to_token", "vault_symbol", "wallet_address"} {
			if v, ok := m[key]; ok {
				switch vv := v.(type) {
				case string:
					m[key] = strings.TrimSpace(vv)
				default:
					m[key] = strings.TrimSpace(fmt.Sprint(v))
				}
			}
		}

		// amount: number (models occasionally emit it as a string)
		if v, ok := m["amount"]; ok {
			if s, isStr := v.(string); isStr {
				if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
					m["amount"] = n
				}
			}
		}

		if walletTools[name] {
			addr, _ := m["wallet_address"].(string)
			if addr == "" {
				var sessionWallet string
				if err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
					sessionWallet = state.WalletAddress
					return nil
				}); err != nil {
					logx.Warn().Err(err).Str("tool", name).Msg("failed to read session wallet from state")
				}
				if sessionWallet != "" {
					m["wallet_address"] = sessionWallet
				}
			}
		}

		b, err := json.Marshal(m)
		if err != nil {
			return arguments, nil
		}
		return string(b), nil
	}
}
