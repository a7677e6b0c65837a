package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/suimate-ai/server/internal/agent/graph/conversations"
	"github.com/suimate-ai/server/internal/agent/graph/nodes"
	"github.com/suimate-ai/server/internal/agent/graph/observers"
	"github.com/suimate-ai/server/internal/agent/graph/tools"
	"github.com/suimate-ai/server/internal/agent/model"
	logx "github.com/suimate-ai/server/pkg/logger"
)

// Fixed fallback messages. A missing credential is an operator problem and a
// protocol violation has no caller remedy, so both surface as plain apologies
// instead of raw faults.
const (
	ApologyNotConfigured = "I'm not fully set up yet — my language model credentials are missing. Please try again once the operator has finished configuring me."
	ApologyInternal      = "Something went wrong on my side while handling that. Please try again."
)

// Config holds everything needed to compose the assistant end-to-end.
type Config struct {
	APIKey           string
	BaseURL          string
	ChatModel        model.ChatModelConfig
	Prompt           model.PromptConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	Tools            tools.Deps
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	ChatModels   *nodes.ChatModels
	Manager      *conversations.Manager
	Registry     *tools.Registry
	PromptConfig *model.PromptConfig
}

// GraphBuilder handles the construction of the assistant conversation graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.ChatInput, *schema.Message]
}

// Assistant executes the compiled graph for one turn at a time. The compiled
// runnable and the tool registry are read-only and safe to share across
// concurrent turns; per-turn state lives in graph local state.
type Assistant struct {
	runnable   compose.Runnable[model.ChatInput, *schema.Message]
	mm         *conversations.Manager
	configured bool
}

// BuildAssistant composes chat model, tool registry, conversation manager and
// graph into a ready Assistant. A missing model credential yields a degraded
// Assistant that answers every turn with a fixed apology instead of failing
// the process.
func BuildAssistant(ctx context.Context, cfg Config) (*Assistant, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}

	mm := conversations.NewManager(cfg.ConversationRepo, cfg.Conversation)

	if strings.TrimSpace(cfg.APIKey) == "" {
		logx.Warn().Msg("Model API key missing; assistant starts unconfigured")
		return &Assistant{mm: mm, configured: false}, nil
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Chat:    &cfg.ChatModel,
	})
	if err != nil {
		return nil, err
	}

	registry, err := tools.DefaultRegistry(ctx, cfg.Tools)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:   cms,
		Manager:      mm,
		Registry:     registry,
		PromptConfig: &cfg.Prompt,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Assistant graph built successfully")
	return &Assistant{runnable: runnable, mm: mm, configured: true}, nil
}

// IsConfigured reports whether the assistant can reach its language model.
func (a *Assistant) IsConfigured() bool {
	return a.configured
}

// Invoke processes one turn synchronously and returns the final response
// text. The assistant turn is appended to the conversation after completion,
// so concurrent sessions never observe a half-finished turn.
func (a *Assistant) Invoke(ctx context.Context, in model.ChatInput) (string, error) {
	if !a.configured {
		return ApologyNotConfigured, nil
	}

	out, err := a.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", err
	}

	content := a.finalContent(out)
	if err := a.mm.AppendAssistant(ctx, in.SessionID, content); err != nil {
		logx.Error().Err(err).Str("session_id", in.SessionID).Msg("Failed to save assistant turn")
	}
	return content, nil
}

// Stream processes one turn and returns the token stream. The caller is
// responsible for draining the reader and calling CompleteTurn with the
// concatenated text once the stream ends cleanly.
func (a *Assistant) Stream(ctx context.Context, in model.ChatInput) (*schema.StreamReader[*schema.Message], error) {
	if !a.configured {
		return schema.StreamReaderFromArray([]*schema.Message{
			schema.AssistantMessage(ApologyNotConfigured, nil),
		}), nil
	}

	return a.runnable.Stream(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// CompleteTurn appends the streamed assistant response to the conversation.
// Called only after a stream terminated without error, keeping turn append
// order equal to turn completion order.
func (a *Assistant) CompleteTurn(ctx context.Context, sessionID, content string) error {
	if !a.configured {
		return nil
	}
	return a.mm.AppendAssistant(ctx, sessionID, content)
}

// finalContent downgrades protocol violations to a fixed apology. A final
// message still carrying tool calls means the model requested a second tool
// in one turn; the caller has no actionable remedy, so no raw fault leaks.
func (a *Assistant) finalContent(out *schema.Message) string {
	if out == nil {
		return ApologyInternal
	}
	if len(out.ToolCalls) > 0 {
		logx.Warn().
			Str("tool", out.ToolCalls[0].Function.Name).
			Msg("Turn ended with a pending tool request; downgrading to apology")
		return ApologyInternal
	}
	return out.Content
}

// BuildGraph constructs and returns the compiled assistant graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.ChatInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Chat == nil {
		return nil, fmt.Errorf("chat model is not properly initialized")
	}
	if config.Manager == nil {
		return nil, fmt.Errorf("conversation manager is nil")
	}
	if config.Registry == nil || config.PromptConfig == nil {
		return nil, fmt.Errorf("registry/prompt config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.ChatInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools binds the registry to the chat model and adds the tools node.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	toolInfos, err := b.config.Registry.Infos(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.ChatModels.BindTools(ctx, toolInfos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to chat model")
		return fmt.Errorf("failed to bind tools to chat model: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               b.config.Registry.List(),
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// A hallucinated tool name is an orchestration error, not a
			// reason to abort the turn; the model gets a structured note.
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown tool requested; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name), nil
		},
		ToolArgumentsHandler: nodes.NewToolArgumentsHandler(),
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler()),
		compose.WithStatePostHandler(nodes.NewToolExecutorPostHandler()),
	)

	return nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeContextBuilder,
		nodes.NewContextBuilderNode(b.config.Manager, b.config.PromptConfig),
		compose.WithStatePreHandler(nodes.NewContextBuilderPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeChatModel,
		nodes.NewChatModelNode(b.config.ChatModels.Chat),
		compose.WithStatePreHandler(nodes.NewChatModelPreHandler()),
		compose.WithStatePostHandler(nodes.NewChatModelPostHandler(b.config.ChatModels.ChatModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeAcknowledge,
		nodes.NewAcknowledgeNode(),
	)
}

// addEdges creates the unconditional flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeContextBuilder},
		{nodes.NodeContextBuilder, nodes.NodeChatModel},
		{nodes.NodeAcknowledge, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the conditional routing branches.
func (b *GraphBuilder) addBranches() error {
	toolBranch := compose.NewGraphBranch(
		nodes.NewToolDecisionCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeChatModel, toolBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding tool decision branch")
		return fmt.Errorf("error adding tool decision branch: %w", err)
	}

	ackBranch := compose.NewGraphBranch(
		nodes.NewAcknowledgeCondition(),
		map[string]bool{
			nodes.NodeAcknowledge: true,
			nodes.NodeChatModel:   true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeToolExecutor, ackBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding acknowledge branch")
		return fmt.Errorf("error adding acknowledge branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.ChatInput, *schema.Message], error) {
	// One tool call per turn keeps the step count small; the cap only guards
	// against wiring mistakes.
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(12))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
