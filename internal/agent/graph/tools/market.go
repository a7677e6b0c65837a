package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/suimate-ai/server/internal/agent/model"
	errx "github.com/suimate-ai/server/internal/core/error"
	"github.com/suimate-ai/server/internal/payload"
	logx "github.com/suimate-ai/server/pkg/logger"
)

type AnalyzeMarketInput struct {
	Query string `json:"query,omitempty"`
}

type trendingTokensUI struct {
	Tokens []model.Token `json:"tokens"`
}

func newAnalyzeMarketTool(market MarketData) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolAnalyzeMarket,
			Desc: "Fetch live market data for trending Sui tokens: price, 24h change, 24h volume and market cap, ranked. Use when the user asks about trending tokens, market movers, token lists, or what is hot on Sui right now.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type: "string",
					Desc: "Optional filter, e.g. a narrative or category like memecoins, DeFi, AI. Leave empty for the network-wide trending list.",
				},
			}),
		},
		func(ctx context.Context, in *AnalyzeMarketInput) (*Reply, error) {
			tokens, err := market.Trending(ctx, strings.TrimSpace(in.Query))
			if err != nil {
				if errors.Is(err, errx.ErrNotConfigured) {
					return textReply("Market data is not available right now because the market data source is not configured."), nil
				}
				logx.Warn().Err(err).Str("query", in.Query).Msg("trending lookup failed")
				return textReply("I couldn't reach the market data source right now. Please try again in a moment."), nil
			}
			if len(tokens) == 0 {
				return textReply("No trending tokens matched that query right now."), nil
			}

			marker, err := payload.Embed(payload.KindTrendingTokensUI, trendingTokensUI{Tokens: tokens})
			if err != nil {
				logx.Error().Err(err).Msg("failed to embed trending tokens payload")
				return textReply(formatTrending(tokens)), nil
			}
			return textReply(formatTrending(tokens) + marker), nil
		},
	)
}

func formatTrending(tokens []model.Token) string {
	var b strings.Builder
	b.WriteString("Trending on Sui right now:\n")
	for i, t := range tokens {
		fmt.Fprintf(&b, "%d. %s (%s) — $%.4f, %+.2f%% 24h, vol $%.0f, mcap $%.0f\n",
			i+1, t.Name, t.Symbol, t.Price, t.Change24h, t.Volume24h, t.MarketCap)
	}
	return b.String()
}
