package llms

import "context"

// Client is the LLM Gateway's provider-facing interface: assemble a
// request from the turn's static interface text and rendered history,
// then send it and stream back tagged chunks.
type Client interface {
	// GenerateRequest builds a Request from the static interface text,
	// the rendered history messages for this turn, and the active
	// node's title path (root-to-active).
	GenerateRequest(staticText string, historyMessages []Message, nodePath []string) (*Request, error)

	// SendRequest submits req and streams back chunks tagged text or
	// thinking, terminated by a ChunkDone (or ChunkError on failure).
	SendRequest(ctx context.Context, req *Request) (<-chan StreamChunk, error)

	// ModelName returns the model identifier this client talks to, for
	// logging and the NodeLogger's request/response file names.
	ModelName() string
}
