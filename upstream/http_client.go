package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/vaultgate/gemini-gateway/internal/env"
	"github.com/vaultgate/gemini-gateway/nativeapi"
)

// DefaultBaseURL is the provider's public REST surface. Overridable for
// testing via NewRESTClient's baseURL argument.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// restClient is a thin, unadorned net/http client against the provider's
// REST surface, grounded on the teacher's general preference for
// hand-rolled HTTP adaptors over vendored provider SDKs.
type restClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTClient builds the default upstream Client implementation. An
// empty baseURL falls back to DefaultBaseURL.
func NewRESTClient(baseURL string) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &restClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: env.Duration("UPSTREAM_HTTP_TIMEOUT", 120*time.Second),
		},
	}
}

func (c *restClient) doJSON(ctx context.Context, method, path, credential string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal upstream request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build upstream request")
	}
	req.Header.Set("x-goog-api-key", credential)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "upstream request failed: %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read upstream response body")
	}

	return &Response{StatusCode: resp.StatusCode, Body: data, Header: resp.Header}, nil
}

func (c *restClient) Generate(ctx context.Context, credential, model string, req *nativeapi.GenerateRequest) (*nativeapi.GenerateResponse, *Response, error) {
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", model)
	resp, err := c.doJSON(ctx, http.MethodPost, path, credential, req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, errors.Errorf("upstream generateContent returned status %d", resp.StatusCode)
	}
	var out nativeapi.GenerateResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, resp, errors.Wrap(err, "decode generateContent response")
	}
	return &out, resp, nil
}

func (c *restClient) Embed(ctx context.Context, credential, model string, req *nativeapi.EmbedRequest) (*nativeapi.EmbedResponse, *Response, error) {
	path := fmt.Sprintf("/v1beta/models/%s:embedContent", model)
	resp, err := c.doJSON(ctx, http.MethodPost, path, credential, req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, errors.Errorf("upstream embedContent returned status %d", resp.StatusCode)
	}
	var out nativeapi.EmbedResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, resp, errors.Wrap(err, "decode embedContent response")
	}
	return &out, resp, nil
}

func (c *restClient) CountTokens(ctx context.Context, credential, model string, req *nativeapi.GenerateRequest) (*Response, error) {
	path := fmt.Sprintf("/v1beta/models/%s:countTokens", model)
	return c.doJSON(ctx, http.MethodPost, path, credential, req)
}

func (c *restClient) ListModels(ctx context.Context, credential string) (*Response, error) {
	return c.doJSON(ctx, http.MethodGet, "/v1beta/models", credential, nil)
}

func (c *restClient) GetModel(ctx context.Context, credential, model string) (*Response, error) {
	path := fmt.Sprintf("/v1beta/models/%s", model)
	return c.doJSON(ctx, http.MethodGet, path, credential, nil)
}

func (c *restClient) GenerateImageImagen(ctx context.Context, credential, model string, req *nativeapi.ImageGenRequest) (*nativeapi.ImageGenResponse, *Response, error) {
	path := fmt.Sprintf("/v1beta/models/%s:generateImageWithImagen", model)
	resp, err := c.doJSON(ctx, http.MethodPost, path, credential, req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, errors.Errorf("upstream generateImageWithImagen returned status %d", resp.StatusCode)
	}
	var out nativeapi.ImageGenResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, resp, errors.Wrap(err, "decode generateImageWithImagen response")
	}
	return &out, resp, nil
}

func (c *restClient) StreamGenerate(ctx context.Context, credential, model string, req *nativeapi.GenerateRequest) (StreamHandle, *Response, error) {
	path := fmt.Sprintf("/v1beta/models/%s:streamGenerateContent?alt=sse", model)
	b, err := json.Marshal(req)
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshal stream request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, nil, errors.Wrap(err, "build stream request")
	}
	httpReq.Header.Set("x-goog-api-key", credential)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, errors.Wrap(err, "upstream stream request failed")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &Response{StatusCode: resp.StatusCode, Body: data, Header: resp.Header},
			errors.Errorf("upstream streamGenerateContent returned status %d", resp.StatusCode)
	}

	return newSSEStreamHandle(resp.Body), &Response{StatusCode: resp.StatusCode, Header: resp.Header}, nil
}
