package handlers

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vaultgate/gemini-gateway/configstore"
	"github.com/vaultgate/gemini-gateway/nativeapi"
	"github.com/vaultgate/gemini-gateway/upstream"
)

// fakeStore is a minimal in-memory configstore.Store for handler-level
// HTTP tests, avoiding a real database dependency.
type fakeStore struct {
	triggerKey     string
	pool           []configstore.PoolEntry
	retryBudget    int
	fallbackKey    string
	fallbackModels []string
	cursor         int64
}

func (f *fakeStore) GetAdminHash(ctx context.Context) (string, error)   { return "", nil }
func (f *fakeStore) SetAdminHash(ctx context.Context, hash string) error { return nil }

func (f *fakeStore) GetTriggerKey(ctx context.Context) (string, error) { return f.triggerKey, nil }
func (f *fakeStore) SetTriggerKey(ctx context.Context, key *string) error {
	if key != nil {
		f.triggerKey = *key
	}
	return nil
}
func (f *fakeStore) IsValidTriggerKey(ctx context.Context, presented string) (bool, error) {
	return f.triggerKey != "" && presented == f.triggerKey, nil
}

func (f *fakeStore) GetPrimaryPool(ctx context.Context) ([]configstore.PoolEntry, error) {
	return f.pool, nil
}
func (f *fakeStore) AddPrimaryEntries(ctx context.Context, entries map[string]string) error {
	for id, cred := range entries {
		f.pool = append(f.pool, configstore.PoolEntry{ID: id, Credential: cred})
	}
	return nil
}
func (f *fakeStore) RemovePrimaryEntry(ctx context.Context, id string) error { return nil }
func (f *fakeStore) ClearPrimary(ctx context.Context) error                 { f.pool = nil; return nil }

func (f *fakeStore) RotateCursorAtomic(ctx context.Context, poolSize int) (string, int64, error) {
	if poolSize == 0 {
		return "", 0, nil
	}
	idx := int(f.cursor % int64(poolSize))
	f.cursor++
	return f.pool[idx].Credential, f.cursor, nil
}

func (f *fakeStore) GetFallbackKey(ctx context.Context) (string, error) { return f.fallbackKey, nil }
func (f *fakeStore) SetFallbackKey(ctx context.Context, key *string) error {
	if key != nil {
		f.fallbackKey = *key
	}
	return nil
}

func (f *fakeStore) GetFallbackModelSet(ctx context.Context) ([]string, error) {
	return f.fallbackModels, nil
}
func (f *fakeStore) SetFallbackModelSet(ctx context.Context, models []string) error {
	f.fallbackModels = models
	return nil
}
func (f *fakeStore) AddFallbackModels(ctx context.Context, models []string) error {
	f.fallbackModels = append(f.fallbackModels, models...)
	return nil
}
func (f *fakeStore) ClearFallbackModels(ctx context.Context) error { f.fallbackModels = nil; return nil }

func (f *fakeStore) GetRetryBudget(ctx context.Context) (int, error) { return f.retryBudget, nil }
func (f *fakeStore) SetRetryBudget(ctx context.Context, n int) error { f.retryBudget = n; return nil }

// fakeClient is a scriptable upstream.Client stub for handler tests.
type fakeClient struct {
	generateResp    *nativeapi.GenerateResponse
	embedResp       *nativeapi.EmbedResponse
	imagenResp      *nativeapi.ImageGenResponse
	listModelsBody  []byte
	getModelBody    []byte
	countTokensBody []byte
	streamHandle    upstream.StreamHandle
	err             error
}

func (f *fakeClient) Generate(ctx context.Context, credential, model string, req *nativeapi.GenerateRequest) (*nativeapi.GenerateResponse, *upstream.Response, error) {
	if f.err != nil {
		return nil, &upstream.Response{StatusCode: 500}, f.err
	}
	return f.generateResp, &upstream.Response{StatusCode: 200}, nil
}

func (f *fakeClient) StreamGenerate(ctx context.Context, credential, model string, req *nativeapi.GenerateRequest) (upstream.StreamHandle, *upstream.Response, error) {
	if f.err != nil {
		return nil, &upstream.Response{StatusCode: 500}, f.err
	}
	return f.streamHandle, &upstream.Response{StatusCode: 200}, nil
}

func (f *fakeClient) Embed(ctx context.Context, credential, model string, req *nativeapi.EmbedRequest) (*nativeapi.EmbedResponse, *upstream.Response, error) {
	if f.err != nil {
		return nil, &upstream.Response{StatusCode: 500}, f.err
	}
	return f.embedResp, &upstream.Response{StatusCode: 200}, nil
}

func (f *fakeClient) CountTokens(ctx context.Context, credential, model string, req *nativeapi.GenerateRequest) (*upstream.Response, error) {
	if f.err != nil {
		return &upstream.Response{StatusCode: 500}, f.err
	}
	return &upstream.Response{StatusCode: 200, Body: f.countTokensBody}, nil
}

func (f *fakeClient) ListModels(ctx context.Context, credential string) (*upstream.Response, error) {
	if f.err != nil {
		return &upstream.Response{StatusCode: 500}, f.err
	}
	return &upstream.Response{StatusCode: 200, Body: f.listModelsBody}, nil
}

func (f *fakeClient) GetModel(ctx context.Context, credential, model string) (*upstream.Response, error) {
	if f.err != nil {
		return &upstream.Response{StatusCode: 500}, f.err
	}
	return &upstream.Response{StatusCode: 200, Body: f.getModelBody}, nil
}

func (f *fakeClient) GenerateImageImagen(ctx context.Context, credential, model string, req *nativeapi.ImageGenRequest) (*nativeapi.ImageGenResponse, *upstream.Response, error) {
	if f.err != nil {
		return nil, &upstream.Response{StatusCode: 500}, f.err
	}
	return f.imagenResp, &upstream.Response{StatusCode: 200}, nil
}

// newTestContext builds a gin.Context/ResponseRecorder pair for a JSON
// request, with gin in test mode.
func newTestContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer trigger-key")
	c.Request = req
	return c, w
}
