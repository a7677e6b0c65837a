package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/suimate-ai/server/internal/agent/graph/conversations"
	"github.com/suimate-ai/server/internal/agent/graph/prompts"
	"github.com/suimate-ai/server/internal/agent/graph/router"
	"github.com/suimate-ai/server/internal/agent/graph/tools"
	"github.com/suimate-ai/server/internal/agent/model"
	logx "github.com/suimate-ai/server/pkg/logger"
)

// synthesisOnlyNotice constrains the final model pass once the turn's single
// tool call has been spent.
const synthesisOnlyNotice = "SYSTEM NOTICE: your one tool call for this turn has been used. Synthesize the final answer from the tool result above. Do not request another tool."

// NewContextBuilderPreHandler resets per-turn state and records the
// pre-routing decision before the context builder runs.
func NewContextBuilderPreHandler() func(context.Context, model.ChatInput, *model.AppState) (model.ChatInput, error) {
	return func(ctx context.Context, in model.ChatInput, s *model.AppState) (model.ChatInput, error) {
		s.SessionID = in.SessionID
		s.WalletAddress = strings.TrimSpace(in.WalletAddress)
		s.History = nil
		s.ToolExecuted = false
		s.ExecutedTool = ""
		s.ToolMessages = nil
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0

		s.Decision = router.Resolve(in.Message)
		logx.Debug().
			Str("session_id", s.SessionID).
			Str("intent", string(s.Decision.Intent)).
			Str("routed_tool", s.Decision.Tool).
			Bool("override", s.Decision.OverrideApplied).
			Msg("Pre-route decision")

		return in, nil
	}
}

// NewContextBuilderNode creates the node that appends the user turn, loads
// the trimmed conversation window and prepends the rendered directive.
func NewContextBuilderNode(
	mm *conversations.Manager,
	promptCfg *model.PromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.ChatInput) ([]*schema.Message, error) {
		var decision model.RoutingDecision
		var walletConnected bool
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			decision = state.Decision
			walletConnected = state.WalletAddress != ""
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		if err := mm.AppendUser(ctx, input.SessionID, input.Message); err != nil {
			return nil, fmt.Errorf("append user turn: %w", err)
		}

		window, err := mm.Window(ctx, input.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load conversation window: %w", err)
		}

		directive, err := prompts.RenderDirective(ctx, *promptCfg, decision, walletConnected)
		if err != nil {
			return nil, fmt.Errorf("render directive: %w", err)
		}

		messages := make([]*schema.Message, 0, len(window)+1)
		messages = append(messages, schema.SystemMessage(directive))
		messages = append(messages, window...)
		return messages, nil
	})
}

// NewChatModelPreHandler folds incoming messages into the turn history and,
// once the single tool call has been spent, appends the synthesis-only
// notice. It also backfills a tool_call_id when the provider omitted one.
func NewChatModelPreHandler() func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					if id := strings.TrimSpace(msg.ToolCalls[0].ID); id != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if state.ToolExecuted {
			state.History = append(state.History, schema.SystemMessage(synthesisOnlyNotice))
		}

		return state.History, nil
	}
}

// NewChatModelPostHandler records usage cost, normalizes tool call IDs and
// appends the model output to the turn history.
func NewChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if model.CostEnabled() && out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			state.TotalCostUSD += totalC
			logx.Debug().
				Str("session_id", state.SessionID).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("turn_cost_usd", state.TotalCostUSD).
				Msg("LLM usage")
		}

		// Some providers omit tool_call IDs; synthesize them locally.
		if out != nil && len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
				}
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().
				Str("session_id", state.SessionID).
				Str("tool", out.ToolCalls[0].Function.Name).
				Msg("Model requested tool call")
		} else {
			logx.Debug().Str("session_id", state.SessionID).Msg("Model response ready")
		}

		return out, nil
	}
}

// NewToolDecisionCondition routes the model output either to the tool
// executor or to the end of the turn. A second tool request after the single
// call has been spent is a protocol violation: the turn ends and the runner
// downgrades the response to a generic apology.
func NewToolDecisionCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var spent bool
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			spent = state.ToolExecuted
			return nil
		})

		if len(input.ToolCalls) == 0 {
			return compose.END, nil
		}
		if spent {
			logx.Warn().
				Str("tool", input.ToolCalls[0].Function.Name).
				Msg("Model requested a second tool call in one turn; ending turn")
			return compose.END, nil
		}
		return NodeToolExecutor, nil
	}
}

// NewToolExecutorPreHandler enforces the single-tool-call contract: only
// the first requested call is executed, and the turn's call is marked spent.
func NewToolExecutorPreHandler() func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		if len(in.ToolCalls) > 1 {
			logx.Warn().
				Int("requested", len(in.ToolCalls)).
				Str("session_id", state.SessionID).
				Msg("Model requested multiple tool calls; executing only the first")
			in.ToolCalls = in.ToolCalls[:1]
		}

		state.ToolExecuted = true
		if len(in.ToolCalls) > 0 {
			state.ExecutedTool = in.ToolCalls[0].Function.Name
		}

		logx.Debug().
			Str("session_id", state.SessionID).
			Str("tool", state.ExecutedTool).
			Msg("Executing tool")

		return in, nil
	}
}

// NewToolExecutorPostHandler captures the tool results for the acknowledge
// node and folds them into the turn history.
func NewToolExecutorPostHandler() func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, out []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		state.ToolMessages = out
		return out, nil
	}
}

// NewAcknowledgeCondition routes tool results: short-circuit tools end the
// turn through the acknowledge node, everything else goes back to the model
// for synthesis.
func NewAcknowledgeCondition() func(context.Context, []*schema.Message) (string, error) {
	return func(ctx context.Context, _ []*schema.Message) (string, error) {
		var executed string
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			executed = state.ExecutedTool
			return nil
		})

		if tools.ShortCircuit(executed) {
			return NodeAcknowledge, nil
		}
		return NodeChatModel, nil
	}
}

// NewAcknowledgeNode builds the final assistant message for short-circuit
// tools directly from the tool result. The model gets no final pass here, so
// extra commentary cannot leak past the fixed acknowledgement.
func NewAcknowledgeNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in []*schema.Message) (*schema.Message, error) {
		if len(in) == 0 || in[0] == nil {
			return nil, fmt.Errorf("tool executor returned no result")
		}

		text := extractReplyText(in[0].Content)
		return schema.AssistantMessage(text, nil), nil
	})
}

// extractReplyText unwraps the tools.Reply JSON envelope; raw content is
// passed through unchanged when it is not an envelope.
func extractReplyText(content string) string {
	var reply tools.Reply
	if err := json.Unmarshal([]byte(content), &reply); err == nil && reply.Text != "" {
		return reply.Text
	}
	return content
}
