// Package social wraps the social-post search API used by the sentiment tool.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/suimate-ai/server/internal/adapters/httpx"
	"github.com/suimate-ai/server/internal/agent/model"
	errx "github.com/suimate-ai/server/internal/core/error"
	"github.com/suimate-ai/server/pkg/cache"
	logx "github.com/suimate-ai/server/pkg/logger"
)

const cacheTTL = 5 * time.Minute

type Config struct {
	APIKey  string `envconfig:"SOCIAL_API_KEY"`
	BaseURL string `envconfig:"SOCIAL_BASE_URL" default:"https://api.suipulse.io/v1"`
	Limit   int    `envconfig:"SOCIAL_SEARCH_LIMIT" default:"20"`
}

type Client struct {
	cfg   Config
	http  *httpx.Client
	cache cache.Cache
}

func New(cfg Config, hc *http.Client, c cache.Cache) *Client {
	return &Client{cfg: cfg, http: httpx.New(hc), cache: c}
}

type searchResponse struct {
	Posts []model.SocialPost `json:"posts"`
}

// Search returns recent scored posts about the topic. Results are cached
// briefly so repeated questions in one conversation do not re-hit upstream.
func (c *Client) Search(ctx context.Context, topic string) ([]model.SocialPost, error) {
	if c.cfg.APIKey == "" {
		return nil, errx.ErrNotConfigured
	}

	key := "social:" + topic
	if c.cache != nil {
		if b, err := c.cache.Get(ctx, key); err == nil {
			var posts []model.SocialPost
			if json.Unmarshal(b, &posts) == nil {
				return posts, nil
			}
		}
	}

	u := fmt.Sprintf("%s/posts/search?q=%s&limit=%d", c.cfg.BaseURL, url.QueryEscape(topic), c.cfg.Limit)
	header := http.Header{"X-API-Key": {c.cfg.APIKey}}

	var resp searchResponse
	if err := c.http.GetJSON(ctx, u, header, &resp); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if b, err := json.Marshal(resp.Posts); err == nil {
			if err := c.cache.Set(ctx, key, b, cacheTTL); err != nil {
				logx.Warn().Err(err).Str("key", key).Msg("failed to cache social search result")
			}
		}
	}

	return resp.Posts, nil
}
