package conversations

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/suimate-ai/server/internal/agent/model"
)

// Manager owns the bounded conversation window handed to the router: it
// appends turns to the repository and trims loaded history to the most recent
// N turns, drop-oldest, no summarization.
type Manager struct {
	repo     model.ConversationRepository
	maxTurns int
}

func NewManager(repo model.ConversationRepository, cfg model.ConversationConfig) *Manager {
	return &Manager{
		repo:     repo,
		maxTurns: cfg.Window.MaxTurns,
	}
}

// AppendUser stores one user turn. Empty user turns are rejected.
func (m *Manager) AppendUser(ctx context.Context, sessionID, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("empty user message")
	}
	return m.repo.AddMessage(ctx, sessionID, schema.UserMessage(content))
}

// AppendAssistant stores one assistant turn. Empty assistant turns are
// permitted (short-circuit acknowledgements can be terse).
func (m *Manager) AppendAssistant(ctx context.Context, sessionID, content string) error {
	return m.repo.AddMessage(ctx, sessionID, schema.AssistantMessage(content, nil))
}

// Window returns the most recent turns in original order, at most the
// configured window size.
func (m *Manager) Window(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	history, err := m.repo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return TrimTail(history.Messages, m.maxTurns), nil
}

// Clear drops the stored history for a session.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	return m.repo.ClearHistory(ctx, sessionID)
}

// Count returns the number of stored messages for a session.
func (m *Manager) Count(ctx context.Context, sessionID string) (int, error) {
	return m.repo.MessageCount(ctx, sessionID)
}

// TrimTail returns a copy of the last maxTurns messages in original order;
// fewer messages are returned whole. Pure, no side effects.
func TrimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 {
		return []*schema.Message{}
	}
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
