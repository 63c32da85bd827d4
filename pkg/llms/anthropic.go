package llms

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kadirpekel/deepresearch/pkg/httpclient"
	"github.com/kadirpekel/deepresearch/pkg/ratelimit"
)

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	cfg        *ProviderConfig
	httpClient *httpclient.Client
	limiter    ratelimit.RateLimiter
}

// NewAnthropicClient builds an Anthropic client. All HTTP calls route
// through pkg/httpclient for retry/backoff; a per-client rate limiter
// guards against bursting the provider.
func NewAnthropicClient(cfg *ProviderConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llms: anthropic API key is required")
	}
	if cfg.Host == "" {
		cfg.Host = "https://api.anthropic.com"
	}
	if cfg.TimeoutSecs == 0 {
		cfg.TimeoutSecs = 120
	}

	limiter, err := ratelimit.NewRateLimiter(&ratelimit.Config{
		Enabled: true,
		Limits: []ratelimit.LimitRule{
			{Type: ratelimit.LimitTypeCount, Window: ratelimit.WindowMinute, Limit: 50},
		},
	}, ratelimit.NewMemoryStore())
	if err != nil {
		return nil, fmt.Errorf("llms: building anthropic rate limiter: %w", err)
	}

	return &AnthropicClient{
		cfg: cfg,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}),
			httpclient.WithMaxRetries(cfg.MaxRetries),
			httpclient.WithBaseDelay(time.Duration(cfg.RetryDelay)*time.Second),
			httpclient.WithHeaderParser(httpclient.ParseAnthropicRateLimitHeaders),
		),
		limiter: limiter,
	}, nil
}

func (c *AnthropicClient) ModelName() string { return c.cfg.Model }

// GenerateRequest assembles the static interface text, rendered history,
// and node path into a provider-agnostic Request. Anthropic-specific
// encoding happens later, in SendRequest.
func (c *AnthropicClient) GenerateRequest(staticText string, historyMessages []Message, nodePath []string) (*Request, error) {
	if staticText == "" {
		return nil, fmt.Errorf("llms: static interface text cannot be empty")
	}
	return &Request{StaticText: staticText, Messages: historyMessages, NodePath: nodePath}, nil
}

type anthropicRequestBody struct {
	Model     string              `json:"model"`
	System    string              `json:"system,omitempty"`
	Messages  []anthropicMessage  `json:"messages"`
	MaxTokens int                 `json:"max_tokens"`
	Stream    bool                `json:"stream"`
	Thinking  *anthropicThinking  `json:"thinking,omitempty"`
}

type anthropicThinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicStreamEvent struct {
	Type  string           `json:"type"`
	Delta *anthropicDelta  `json:"delta,omitempty"`
	Error *anthropicAPIErr `json:"error,omitempty"`
}

type anthropicDelta struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
}

type anthropicAPIErr struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SendRequest submits req to Anthropic and streams back text/thinking
// chunks parsed from the provider's SSE stream.
func (c *AnthropicClient) SendRequest(ctx context.Context, req *Request) (<-chan StreamChunk, error) {
	if result, err := c.limiter.Check(ctx, ratelimit.ScopeSession, c.cfg.Model); err != nil {
		return nil, fmt.Errorf("llms: rate limit check failed: %w", err)
	} else if !result.Allowed {
		return nil, fmt.Errorf("llms: rate limited, retry after %v", result.RetryAfter)
	}

	body := anthropicRequestBody{
		Model:     c.cfg.Model,
		System:    req.StaticText + nodePathSuffix(req.NodePath),
		Messages:  toAnthropicMessages(req.Messages),
		MaxTokens: orDefault(c.cfg.MaxTokens, 4096),
		Stream:    true,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llms: marshaling anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Host+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llms: building anthropic request: %w", err)
	}
	httpReq.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(payload)), nil }
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llms: anthropic request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("llms: anthropic returned status %d: %s", resp.StatusCode, string(b))
	}

	out := make(chan StreamChunk, 64)
	go func() {
		defer resp.Body.Close()
		defer close(out)

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, "data: ") {
				continue
			}
			raw := strings.TrimPrefix(line, "data: ")

			var event anthropicStreamEvent
			if err := json.Unmarshal([]byte(raw), &event); err != nil {
				out <- StreamChunk{Type: ChunkError, Err: fmt.Errorf("llms: decoding anthropic stream event: %w", err)}
				return
			}

			switch event.Type {
			case "content_block_delta":
				if event.Delta == nil {
					continue
				}
				switch event.Delta.Type {
				case "text_delta":
					out <- StreamChunk{Type: ChunkText, Text: event.Delta.Text}
				case "thinking_delta":
					out <- StreamChunk{Type: ChunkThinking, Text: event.Delta.Thinking}
				}
			case "message_stop":
				out <- StreamChunk{Type: ChunkDone}
			case "error":
				if event.Error != nil {
					out <- StreamChunk{Type: ChunkError, Err: fmt.Errorf("llms: anthropic error: %s", event.Error.Message)}
				}
			}
		}
		if err := scanner.Err(); err != nil {
			out <- StreamChunk{Type: ChunkError, Err: fmt.Errorf("llms: reading anthropic stream: %w", err)}
		}
	}()

	return out, nil
}

func toAnthropicMessages(msgs []Message) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, anthropicMessage{Role: string(m.Role), Content: m.Text})
	}
	return out
}

func nodePathSuffix(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return "\n\n[Active problem path: " + strings.Join(path, " > ") + "]"
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
