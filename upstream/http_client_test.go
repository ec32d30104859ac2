package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultgate/gemini-gateway/nativeapi"
)

func TestRESTClientGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"index":0,"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	out, resp, err := c.Generate(context.Background(), "test-key", "gemini-2.5-flash", &nativeapi.GenerateRequest{})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out.Candidates, 1)
	require.Equal(t, "STOP", out.Candidates[0].FinishReason)
}

func TestRESTClientGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	out, resp, err := c.Generate(context.Background(), "test-key", "gemini-2.5-flash", &nativeapi.GenerateRequest{})
	require.Error(t, err)
	require.Nil(t, out)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Contains(t, string(resp.Body), "rate limited")
}

func TestRESTClientEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/text-embedding-004:embedContent", r.URL.Path)
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.1,0.2]}}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	out, _, err := c.Embed(context.Background(), "k", "text-embedding-004", &nativeapi.EmbedRequest{})
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.2}, out.Embedding.Values)
}

func TestRESTClientCountTokensPassesThroughRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-2.5-flash:countTokens", r.URL.Path)
		_, _ = w.Write([]byte(`{"totalTokens":42}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	resp, err := c.CountTokens(context.Background(), "k", "gemini-2.5-flash", &nativeapi.GenerateRequest{})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"totalTokens":42}`, string(resp.Body))
}

func TestRESTClientListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1beta/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	resp, err := c.ListModels(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRESTClientGetModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-2.5-flash", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"models/gemini-2.5-flash"}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	resp, err := c.GetModel(context.Background(), "k", "gemini-2.5-flash")
	require.NoError(t, err)
	require.Contains(t, string(resp.Body), "gemini-2.5-flash")
}

func TestRESTClientGenerateImageImagen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/imagen-3:generateImageWithImagen", r.URL.Path)
		_, _ = w.Write([]byte(`{"generatedImages":[{"imageBytes":"abc","mimeType":"image/png"}]}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	out, _, err := c.GenerateImageImagen(context.Background(), "k", "imagen-3", &nativeapi.ImageGenRequest{Prompt: "a cat"})
	require.NoError(t, err)
	require.Len(t, out.GeneratedImages, 1)
	require.Equal(t, "image/png", out.GeneratedImages[0].MimeType)
}

func TestRESTClientStreamGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-2.5-flash:streamGenerateContent", r.URL.Path)
		require.Equal(t, "sse", r.URL.Query().Get("alt"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"candidates\":[{\"index\":0}]}\n\n"))
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	handle, resp, err := c.StreamGenerate(context.Background(), "k", "gemini-2.5-flash", &nativeapi.GenerateRequest{})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	chunk, err := handle.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, chunk.Candidates, 1)

	_, err = handle.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, handle.Close())
}

func TestRESTClientStreamGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	handle, resp, err := c.StreamGenerate(context.Background(), "k", "gemini-2.5-flash", &nativeapi.GenerateRequest{})
	require.Error(t, err)
	require.Nil(t, handle)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewRESTClientDefaultsBaseURL(t *testing.T) {
	c := NewRESTClient("")
	rc, ok := c.(*restClient)
	require.True(t, ok)
	require.Equal(t, DefaultBaseURL, rc.baseURL)
}
