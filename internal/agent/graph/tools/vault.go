package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/suimate-ai/server/internal/adapters/vault"
	errx "github.com/suimate-ai/server/internal/core/error"
	"github.com/suimate-ai/server/internal/payload"
	logx "github.com/suimate-ai/server/pkg/logger"
)

type PrepareVaultDepositInput struct {
	VaultSymbol   string `json:"vault_symbol"`
	Amount        Amount `json:"amount"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

func newPrepareVaultDepositTool(vaults VaultService) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolPrepareVaultDeposit,
			Desc: "Prepare a deposit into a liquidity vault: validate the vault, quote the expected LP tokens and current yield, and return the prepared deposit for the user to sign. Call this when the user wants to deposit into an LP, vault or pool.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"vault_symbol": {
					Type:     "string",
					Desc:     "Symbol of the target vault, e.g. SUI-VAULT or USDC-VAULT.",
					Required: true,
				},
				"amount": {
					Type:     "number",
					Desc:     "Amount of the vault's deposit token to supply. Must be positive.",
					Required: true,
				},
				"wallet_address": {
					Type: "string",
					Desc: "Wallet making the deposit. Omit to use the wallet connected to this session.",
				},
			}),
		},
		func(ctx context.Context, in *PrepareVaultDepositInput) (*Reply, error) {
			// Validation happens before any network call.
			amount := float64(in.Amount)
			if amount <= 0 {
				return textReply("The deposit amount has to be a positive number. How much would you like to deposit?"), nil
			}

			v, err := vault.Find(in.VaultSymbol)
			if err != nil {
				return textReply(fmt.Sprintf(
					"I don't know a vault called %q. Available vaults: %s.",
					strings.TrimSpace(in.VaultSymbol), strings.Join(vault.Symbols(), ", "))), nil
			}

			quote, err := vaults.DepositQuote(ctx, v, amount)
			if err != nil {
				if errors.Is(err, errx.ErrQuoteUnavailable) {
					return textReply(fmt.Sprintf("The %s vault isn't accepting deposits right now, so I can't quote that.", v.Symbol)), nil
				}
				logx.Warn().Err(err).Str("vault", v.Symbol).Msg("deposit quote failed")
				return textReply("The vault service didn't respond. Please try again in a moment."), nil
			}

			marker, err := payload.Embed(payload.KindLPDepositAction, quote)
			if err != nil {
				logx.Error().Err(err).Msg("failed to embed deposit payload")
				return textReply("I fetched a quote but couldn't prepare the deposit action. Please try again."), nil
			}
			return textReply(DepositReadyAck + marker), nil
		},
	)
}

type GetVaultPositionsInput struct {
	WalletAddress string `json:"wallet_address,omitempty"`
}

func newGetVaultPositionsTool(vaults VaultService) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetVaultPositions,
			Desc: "List the user's active liquidity-vault positions with equity, LP balance and current yield. Call this when the user asks about their vault or LP positions specifically.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"wallet_address": {
					Type: "string",
					Desc: "Wallet to inspect. Omit to use the wallet connected to this session.",
				},
			}),
		},
		func(ctx context.Context, in *GetVaultPositionsInput) (*Reply, error) {
			address := strings.TrimSpace(in.WalletAddress)
			if address == "" {
				return textReply("I can't see a connected wallet for this session. Connect your wallet and I'll look up your vault positions."), nil
			}

			positions, err := vaults.Positions(ctx, address)
			if err != nil {
				logx.Warn().Err(err).Str("wallet", address).Msg("vault positions query failed")
				return textReply("I couldn't reach the vault service right now. Please try again in a moment."), nil
			}
			if len(positions) == 0 {
				return textReply("You don't have any active vault positions."), nil
			}

			var b strings.Builder
			b.WriteString("Your active vault positions:\n")
			for _, p := range positions {
				fmt.Fprintf(&b, "- %s: equity $%.2f, LP balance %.4f, APY %.2f%%\n",
					p.VaultSymbol, p.EquityUSD, p.LPBalance, p.APY)
			}
			return textReply(b.String()), nil
		},
	)
}
