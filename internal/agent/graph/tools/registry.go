package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/suimate-ai/server/internal/agent/model"
	errx "github.com/suimate-ai/server/internal/core/error"
)

// Deps are the capability adapters the tools delegate their real work to.
// Each tool calls exactly one of them.
type Deps struct {
	Social SocialSearcher
	Market MarketData
	Chain  PortfolioSource
	Dex    SwapService
	Vaults VaultService
}

// SocialSearcher queries scored social posts about a topic.
type SocialSearcher interface {
	Search(ctx context.Context, topic string) ([]model.SocialPost, error)
}

// MarketData returns ranked trending tokens and spot prices.
type MarketData interface {
	Trending(ctx context.Context, query string) ([]model.Token, error)
}

// PortfolioSource assembles a wallet's priced holdings.
type PortfolioSource interface {
	Portfolio(ctx context.Context, address string) (*model.Portfolio, error)
}

// SwapService resolves token symbols and fetches swap quotes.
type SwapService interface {
	ResolveToken(ctx context.Context, symbol string) (string, error)
	Quote(ctx context.Context, fromCoinType, toCoinType string, amount float64) (*model.SwapQuote, error)
}

// VaultService fetches vault deposit quotes and wallet positions.
type VaultService interface {
	DepositQuote(ctx context.Context, v model.Vault, amount float64) (*model.DepositQuote, error)
	Positions(ctx context.Context, address string) ([]model.LiquidityPosition, error)
}

// Registry is the static catalog of invocable capabilities. It is populated
// once at boot and read-only afterwards, so it is safe to share across
// concurrent turns.
type Registry struct {
	order  []string
	byName map[string]tool.BaseTool
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]tool.BaseTool)}
}

// Register adds a tool under its declared name. A colliding name is a
// configuration error caught here rather than at call time.
func (r *Registry) Register(ctx context.Context, t tool.BaseTool) error {
	info, err := t.Info(ctx)
	if err != nil {
		return fmt.Errorf("tool info: %w", err)
	}
	if _, exists := r.byName[info.Name]; exists {
		return fmt.Errorf("%w: %s", errx.ErrDuplicateTool, info.Name)
	}
	r.byName[info.Name] = t
	r.order = append(r.order, info.Name)
	return nil
}

// Resolve returns the tool registered under name.
func (r *Registry) Resolve(name string) (tool.BaseTool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errx.ErrToolNotFound, name)
	}
	return t, nil
}

// List returns all tools in registration order, for binding to the tools node.
func (r *Registry) List() []tool.BaseTool {
	out := make([]tool.BaseTool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Infos returns the ToolInfo of every registered tool, for binding to the
// chat model.
func (r *Registry) Infos(ctx context.Context) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		info, err := r.byName[name].Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info for %s: %w", name, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// DefaultRegistry registers the full capability set against the given
// adapters.
func DefaultRegistry(ctx context.Context, deps Deps) (*Registry, error) {
	r := NewRegistry()
	all := []tool.BaseTool{
		newAnalyzeSentimentTool(deps.Social),
		newAnalyzeMarketTool(deps.Market),
		newAnalyzePortfolioTool(deps.Chain),
		newPrepareSwapTool(deps.Dex),
		newPrepareVaultDepositTool(deps.Vaults),
		newGetVaultPositionsTool(deps.Vaults),
	}
	for _, t := range all {
		if err := r.Register(ctx, t); err != nil {
			return nil, err
		}
	}
	return r, nil
}
