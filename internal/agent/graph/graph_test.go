package graph

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suimate-ai/server/internal/agent/model"
	"github.com/suimate-ai/server/internal/agent/repo"
)

func TestBuildAssistantRequiresRepo(t *testing.T) {
	_, err := BuildAssistant(context.Background(), Config{})
	assert.Error(t, err)
}

func TestUnconfiguredAssistantApologizes(t *testing.T) {
	ctx := context.Background()
	a, err := BuildAssistant(ctx, Config{ConversationRepo: repo.NewMemoryConversationRepository()})
	require.NoError(t, err)
	assert.False(t, a.IsConfigured())

	content, err := a.Invoke(ctx, model.ChatInput{SessionID: "s1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, ApologyNotConfigured, content)
}

func TestUnconfiguredAssistantStreamsApology(t *testing.T) {
	ctx := context.Background()
	a, err := BuildAssistant(ctx, Config{ConversationRepo: repo.NewMemoryConversationRepository()})
	require.NoError(t, err)

	reader, err := a.Stream(ctx, model.ChatInput{SessionID: "s1", Message: "hi"})
	require.NoError(t, err)
	defer reader.Close()

	var full string
	for {
		msg, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		full += msg.Content
	}
	assert.Equal(t, ApologyNotConfigured, full)
}

func TestFinalContentDowngradesPendingToolCalls(t *testing.T) {
	a := &Assistant{}

	assert.Equal(t, ApologyInternal, a.finalContent(nil))

	pending := &schema.Message{Role: schema.Assistant, ToolCalls: []schema.ToolCall{
		{Function: schema.FunctionCall{Name: "analyze_market"}},
	}}
	assert.Equal(t, ApologyInternal, a.finalContent(pending))

	assert.Equal(t, "all good", a.finalContent(schema.AssistantMessage("all good", nil)))
}

func TestUnconfiguredCompleteTurnSkipsPersistence(t *testing.T) {
	ctx := context.Background()
	r := repo.NewMemoryConversationRepository()
	a, err := BuildAssistant(ctx, Config{ConversationRepo: r})
	require.NoError(t, err)

	// The canned apology is not a real turn; nothing is stored.
	require.NoError(t, a.CompleteTurn(ctx, "s1", ApologyNotConfigured))

	count, err := r.MessageCount(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, count)
}
