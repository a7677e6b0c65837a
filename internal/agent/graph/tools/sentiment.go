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
	logx "github.com/suimate-ai/server/pkg/logger"
)

type AnalyzeSentimentInput struct {
	Topic string `json:"topic"`
}

func newAnalyzeSentimentTool(social SocialSearcher) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolAnalyzeSentiment,
			Desc: "Analyze community sentiment about a Sui token, protocol, or topic from recent social posts. Returns highlighted posts with citation URLs and an overall sentiment read. Use when the user asks what people are saying, how the community feels, or about hype/FUD around a topic.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"topic": {
					Type:     "string",
					Desc:     "The token, protocol, or topic to analyze, e.g. SUI, Cetus, DeepBook.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *AnalyzeSentimentInput) (*Reply, error) {
			topic := strings.TrimSpace(in.Topic)
			if topic == "" {
				return textReply("I need a topic to analyze sentiment for. Which token or protocol are you curious about?"), nil
			}

			posts, err := social.Search(ctx, topic)
			if err != nil {
				if errors.Is(err, errx.ErrNotConfigured) {
					return textReply("Social sentiment analysis is not available right now because the social data source is not configured."), nil
				}
				logx.Warn().Err(err).Str("topic", topic).Msg("social search failed")
				return textReply(fmt.Sprintf("I couldn't reach the social data source to analyze %s right now. Please try again in a moment.", topic)), nil
			}
			if len(posts) == 0 {
				return textReply(fmt.Sprintf("I didn't find any recent posts about %s, so there isn't enough signal for a sentiment read.", topic)), nil
			}

			return textReply(formatSentiment(topic, posts)), nil
		},
	)
}

func formatSentiment(topic string, posts []model.SocialPost) string {
	var avg float64
	for _, p := range posts {
		avg += p.Sentiment
	}
	avg /= float64(len(posts))

	label := "mixed"
	switch {
	case avg > 0.25:
		label = "positive"
	case avg < -0.25:
		label = "negative"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Community sentiment on %s looks %s across %d recent posts (avg score %.2f).\n\nHighlights:\n", topic, label, len(posts), avg)

	n := len(posts)
	if n > 5 {
		n = 5
	}
	for _, p := range posts[:n] {
		fmt.Fprintf(&b, "- @%s (%d likes): %s\n  Source: %s\n", p.Author, p.Likes, trimPost(p.Text), p.URL)
	}
	return b.String()
}

func trimPost(s string) string {
	const max = 200
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
