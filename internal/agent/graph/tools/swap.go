package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	errx "github.com/suimate-ai/server/internal/core/error"
	"github.com/suimate-ai/server/internal/payload"
	logx "github.com/suimate-ai/server/pkg/logger"
)

type PrepareSwapInput struct {
	FromToken     string `json:"from_token"`
	ToToken       string `json:"to_token"`
	Amount        Amount `json:"amount"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

func newPrepareSwapTool(dex SwapService) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolPrepareSwap,
			Desc: "Prepare a token swap transaction: resolve both tokens, fetch a quote and return the prepared swap for the user to sign. Call this whenever the user wants to swap, exchange, trade or convert one token for another.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"from_token": {
					Type:     "string",
					Desc:     "Symbol of the token to sell, e.g. SUI.",
					Required: true,
				},
				"to_token": {
					Type:     "string",
					Desc:     "Symbol of the token to buy, e.g. USDC.",
					Required: true,
				},
				"amount": {
					Type:     "number",
					Desc:     "Amount of from_token to swap. Must be positive.",
					Required: true,
				},
				"wallet_address": {
					Type: "string",
					Desc: "Wallet executing the swap. Omit to use the wallet connected to this session.",
				},
			}),
		},
		func(ctx context.Context, in *PrepareSwapInput) (*Reply, error) {
			// Validation happens before any network call.
			amount := float64(in.Amount)
			if amount <= 0 {
				return textReply("The swap amount has to be a positive number. How much would you like to swap?"), nil
			}
			from := strings.TrimSpace(in.FromToken)
			to := strings.TrimSpace(in.ToToken)
			if from == "" || to == "" {
				return textReply("I need both tokens to prepare a swap: which token are you selling, and which one do you want?"), nil
			}

			fromType, err := dex.ResolveToken(ctx, from)
			if err != nil {
				return textReply(fmt.Sprintf("I couldn't find a token called %q on Sui. Double-check the symbol and try again.", from)), nil
			}
			toType, err := dex.ResolveToken(ctx, to)
			if err != nil {
				return textReply(fmt.Sprintf("I couldn't find a token called %q on Sui. Double-check the symbol and try again.", to)), nil
			}

			quote, err := dex.Quote(ctx, fromType, toType, amount)
			if err != nil {
				if errors.Is(err, errx.ErrQuoteUnavailable) {
					return textReply(fmt.Sprintf("There's no liquidity for %s → %s right now, so I can't quote that swap.", from, to)), nil
				}
				logx.Warn().Err(err).Str("from", from).Str("to", to).Msg("swap quote failed")
				return textReply("The swap aggregator didn't respond. Please try again in a moment."), nil
			}

			quote.FromSymbol = strings.ToUpper(from)
			quote.ToSymbol = strings.ToUpper(to)

			marker, err := payload.Embed(payload.KindSwapAction, quote)
			if err != nil {
				logx.Error().Err(err).Msg("failed to embed swap payload")
				return textReply("I fetched a quote but couldn't prepare the swap action. Please try again."), nil
			}
			return textReply(SwapReadyAck + marker), nil
		},
	)
}
