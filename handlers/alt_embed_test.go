package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultgate/gemini-gateway/altapi"
	"github.com/vaultgate/gemini-gateway/gateway"
	"github.com/vaultgate/gemini-gateway/nativeapi"
)

func TestAltEmbeddingsSingleInput(t *testing.T) {
	client := &fakeClient{embedResp: &nativeapi.EmbedResponse{Embedding: nativeapi.Embedding{Values: []float64{0.1, 0.2, 0.3}}}}
	h := New(gateway.Deps{Store: &fakeStore{}, Client: client})

	body := `{"model":"text-embedding-004","input":"hello world"}`
	c, w := newTestContext(http.MethodPost, "/api/v1/embeddings", body)
	h.AltEmbeddings(c)

	require.Equal(t, http.StatusOK, w.Code)
	var out altapi.EmbedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, []float64{0.1, 0.2, 0.3}, out.Data[0].Embedding)
}

func TestAltEmbeddingsMultipleInputs(t *testing.T) {
	client := &fakeClient{embedResp: &nativeapi.EmbedResponse{Embedding: nativeapi.Embedding{Values: []float64{1, 2}}}}
	h := New(gateway.Deps{Store: &fakeStore{}, Client: client})

	body := `{"model":"text-embedding-004","input":["a","b","c"]}`
	c, w := newTestContext(http.MethodPost, "/api/v1/embeddings", body)
	h.AltEmbeddings(c)

	require.Equal(t, http.StatusOK, w.Code)
	var out altapi.EmbedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Data, 3)
}

func TestAltEmbeddingsMissingModelRejected(t *testing.T) {
	h := New(gateway.Deps{Store: &fakeStore{}, Client: &fakeClient{}})
	c, w := newTestContext(http.MethodPost, "/api/v1/embeddings", `{"input":"hi"}`)
	h.AltEmbeddings(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
