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

// OpenAIClient implements Client against the OpenAI Chat Completions API.
type OpenAIClient struct {
	cfg        *ProviderConfig
	httpClient *httpclient.Client
	limiter    ratelimit.RateLimiter
}

// NewOpenAIClient builds an OpenAI client, routing all HTTP calls
// through pkg/httpclient and gating bursts with pkg/ratelimit.
func NewOpenAIClient(cfg *ProviderConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llms: openai API key is required")
	}
	if cfg.Host == "" {
		cfg.Host = "https://api.openai.com"
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
		return nil, fmt.Errorf("llms: building openai rate limiter: %w", err)
	}

	return &OpenAIClient{
		cfg: cfg,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}),
			httpclient.WithMaxRetries(cfg.MaxRetries),
			httpclient.WithBaseDelay(time.Duration(cfg.RetryDelay)*time.Second),
			httpclient.WithHeaderParser(httpclient.ParseOpenAIRateLimitHeaders),
		),
		limiter: limiter,
	}, nil
}

func (c *OpenAIClient) ModelName() string { return c.cfg.Model }

func (c *OpenAIClient) GenerateRequest(staticText string, historyMessages []Message, nodePath []string) (*Request, error) {
	if staticText == "" {
		return nil, fmt.Errorf("llms: static interface text cannot be empty")
	}
	return &Request{StaticText: staticText, Messages: historyMessages, NodePath: nodePath}, nil
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIChatMsg `json:"messages"`
	Stream   bool            `json:"stream"`
	MaxTok   int             `json:"max_completion_tokens,omitempty"`
}

type openAIChatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content          string `json:"content,omitempty"`
			ReasoningContent string `json:"reasoning_content,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// SendRequest submits req to OpenAI and streams back text/thinking
// chunks. Reasoning-capable models surface their summary as thinking
// chunks via the reasoning_content delta field.
func (c *OpenAIClient) SendRequest(ctx context.Context, req *Request) (<-chan StreamChunk, error) {
	if result, err := c.limiter.Check(ctx, ratelimit.ScopeSession, c.cfg.Model); err != nil {
		return nil, fmt.Errorf("llms: rate limit check failed: %w", err)
	} else if !result.Allowed {
		return nil, fmt.Errorf("llms: rate limited, retry after %v", result.RetryAfter)
	}

	messages := make([]openAIChatMsg, 0, len(req.Messages)+1)
	messages = append(messages, openAIChatMsg{Role: "system", Content: req.StaticText + nodePathSuffix(req.NodePath)})
	for _, m := range req.Messages {
		messages = append(messages, openAIChatMsg{Role: string(m.Role), Content: m.Text})
	}

	body := openAIChatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   true,
		MaxTok:   c.cfg.MaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llms: marshaling openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Host+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llms: building openai request: %w", err)
	}
	httpReq.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(payload)), nil }
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llms: openai request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("llms: openai returned status %d: %s", resp.StatusCode, string(b))
	}

	out := make(chan StreamChunk, 64)
	go func() {
		defer resp.Body.Close()
		defer close(out)

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}
			raw := strings.TrimPrefix(line, "data: ")
			if raw == "[DONE]" {
				out <- StreamChunk{Type: ChunkDone}
				return
			}

			var chunk openAIStreamChunk
			if err := json.Unmarshal([]byte(raw), &chunk); err != nil {
				out <- StreamChunk{Type: ChunkError, Err: fmt.Errorf("llms: decoding openai stream chunk: %w", err)}
				return
			}
			if chunk.Error != nil {
				out <- StreamChunk{Type: ChunkError, Err: fmt.Errorf("llms: openai error: %s", chunk.Error.Message)}
				return
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.ReasoningContent != "" {
					out <- StreamChunk{Type: ChunkThinking, Text: choice.Delta.ReasoningContent}
				}
				if choice.Delta.Content != "" {
					out <- StreamChunk{Type: ChunkText, Text: choice.Delta.Content}
				}
			}
		}
		if err := scanner.Err(); err != nil {
			out <- StreamChunk{Type: ChunkError, Err: fmt.Errorf("llms: reading openai stream: %w", err)}
		}
	}()

	return out, nil
}
