package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/suimate-ai/server/internal/payload"
	logx "github.com/suimate-ai/server/pkg/logger"
)

type AnalyzePortfolioInput struct {
	WalletAddress string `json:"wallet_address,omitempty"`
}

func newAnalyzePortfolioTool(chain PortfolioSource) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolAnalyzePortfolio,
			Desc: "Fetch the live on-chain portfolio of the user's wallet: net worth, per-token holdings and liquidity positions. Always call this for any question about the user's own wallet, balance, holdings, portfolio or net worth; never answer those from memory.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"wallet_address": {
					Type: "string",
					Desc: "The wallet to inspect. Omit to use the wallet connected to this session.",
				},
			}),
		},
		func(ctx context.Context, in *AnalyzePortfolioInput) (*Reply, error) {
			address := strings.TrimSpace(in.WalletAddress)
			if address == "" {
				return textReply("I can't see a connected wallet for this session. Connect your wallet and I'll pull up your portfolio right away."), nil
			}

			p, err := chain.Portfolio(ctx, address)
			if err != nil {
				logx.Warn().Err(err).Str("wallet", address).Msg("portfolio query failed")
				return textReply("I couldn't read your wallet from the chain right now. Please try again in a moment."), nil
			}
			if len(p.Holdings) == 0 {
				return textReply("Your wallet doesn't hold any coins yet, so there's no portfolio to show."), nil
			}

			marker, err := payload.Embed(payload.KindPortfolioUI, p)
			if err != nil {
				logx.Error().Err(err).Str("wallet", address).Msg("failed to embed portfolio payload")
				return textReply("I fetched your portfolio but couldn't prepare the view. Please try again."), nil
			}
			return textReply(PortfolioReadyAck + marker), nil
		},
	)
}
