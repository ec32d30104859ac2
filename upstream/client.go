// Package upstream specifies the provider collaborator spec.md §1 treats
// as out of scope: an abstract client with generate / stream-generate /
// embed / count-tokens / list-models / generate-image operations.
package upstream

import (
	"context"
	"net/http"

	"github.com/vaultgate/gemini-gateway/nativeapi"
)

// Response wraps a raw upstream HTTP response alongside its decoded
// status, for callers that need to inspect status codes (e.g.
// gateway.KeySelector's 2xx check) without re-parsing.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// StreamHandle yields native chunks from a streaming generate call. Close
// must be called on every exit path (success, error, or cancellation) to
// release the underlying connection, per spec.md §5's resource-cleanup
// requirement.
type StreamHandle interface {
	// Next blocks for the next chunk. It returns io.EOF when the stream
	// is exhausted normally.
	Next(ctx context.Context) (*nativeapi.StreamChunk, error)
	Close() error
}

// Client is the abstract upstream provider collaborator. One Client talks
// to the provider using a single credential string.
type Client interface {
	Generate(ctx context.Context, credential, model string, req *nativeapi.GenerateRequest) (*nativeapi.GenerateResponse, *Response, error)
	StreamGenerate(ctx context.Context, credential, model string, req *nativeapi.GenerateRequest) (StreamHandle, *Response, error)
	Embed(ctx context.Context, credential, model string, req *nativeapi.EmbedRequest) (*nativeapi.EmbedResponse, *Response, error)
	CountTokens(ctx context.Context, credential, model string, req *nativeapi.GenerateRequest) (*Response, error)
	ListModels(ctx context.Context, credential string) (*Response, error)
	GetModel(ctx context.Context, credential, model string) (*Response, error)
	GenerateImageImagen(ctx context.Context, credential, model string, req *nativeapi.ImageGenRequest) (*nativeapi.ImageGenResponse, *Response, error)
}
