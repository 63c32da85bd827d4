package llms

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequestRejectsEmptyStaticText(t *testing.T) {
	c, err := NewAnthropicClient(&ProviderConfig{APIKey: "key", Model: "claude"})
	require.NoError(t, err)

	_, err = c.GenerateRequest("", nil, nil)
	assert.Error(t, err)
}

func TestGenerateRequestCarriesNodePath(t *testing.T) {
	c, err := NewAnthropicClient(&ProviderConfig{APIKey: "key", Model: "claude"})
	require.NoError(t, err)

	req, err := c.GenerateRequest("interface text", []Message{{Role: RoleUser, Text: "hi"}}, []string{"root", "child"})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "child"}, req.NodePath)
	assert.Equal(t, "hi", req.Messages[0].Text)
}

func TestAnthropicSendRequestStreamsTextAndThinking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"thinking_delta\",\"thinking\":\"pondering\"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"hello\"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"message_stop\"}\n\n")
	}))
	defer server.Close()

	c, err := NewAnthropicClient(&ProviderConfig{APIKey: "key", Model: "claude", Host: server.URL})
	require.NoError(t, err)

	req, err := c.GenerateRequest("static", []Message{{Role: RoleUser, Text: "hi"}}, nil)
	require.NoError(t, err)

	chunks, err := c.SendRequest(context.Background(), req)
	require.NoError(t, err)

	var got []StreamChunk
	for ch := range chunks {
		got = append(got, ch)
	}

	require.Len(t, got, 3)
	assert.Equal(t, ChunkThinking, got[0].Type)
	assert.Equal(t, "pondering", got[0].Text)
	assert.Equal(t, ChunkText, got[1].Type)
	assert.Equal(t, "hello", got[1].Text)
	assert.Equal(t, ChunkDone, got[2].Type)
}

func TestOpenAISendRequestStreamsTextAndDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"reasoning_content\":\"thinking...\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hi there\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	c, err := NewOpenAIClient(&ProviderConfig{APIKey: "key", Model: "gpt", Host: server.URL})
	require.NoError(t, err)

	req, err := c.GenerateRequest("static", nil, nil)
	require.NoError(t, err)

	chunks, err := c.SendRequest(context.Background(), req)
	require.NoError(t, err)

	var got []StreamChunk
	for ch := range chunks {
		got = append(got, ch)
	}

	require.Len(t, got, 3)
	assert.Equal(t, ChunkThinking, got[0].Type)
	assert.Equal(t, ChunkText, got[1].Type)
	assert.Equal(t, "hi there", got[1].Text)
	assert.Equal(t, ChunkDone, got[2].Type)
}

func TestNewClientFromConfigUnsupportedType(t *testing.T) {
	_, err := NewClientFromConfig(&ProviderConfig{Type: "gemini"})
	assert.Error(t, err)
}
