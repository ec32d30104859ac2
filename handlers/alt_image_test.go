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

func TestAltImagesRoutesImagenModelToImagenPath(t *testing.T) {
	client := &fakeClient{imagenResp: &nativeapi.ImageGenResponse{
		GeneratedImages: []nativeapi.GeneratedImage{{ImageBytes: "b64data", MimeType: "image/png"}},
	}}
	h := New(gateway.Deps{Store: &fakeStore{}, Client: client})

	body := `{"model":"imagen-3","prompt":"a cat riding a bike"}`
	c, w := newTestContext(http.MethodPost, "/api/v1/images/generations", body)
	h.AltImages(c)

	require.Equal(t, http.StatusOK, w.Code)
	var out altapi.ImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, "b64data", out.Data[0].B64JSON)
}

func TestAltImagesRoutesNonImagenModelToGeneratePath(t *testing.T) {
	client := &fakeClient{generateResp: &nativeapi.GenerateResponse{
		Candidates: []nativeapi.Candidate{{
			Content: nativeapi.Content{Parts: []nativeapi.Part{
				{InlineData: &nativeapi.InlineData{MimeType: "image/png", Data: "inline-b64"}},
			}},
		}},
	}}
	h := New(gateway.Deps{Store: &fakeStore{}, Client: client})

	body := `{"model":"gemini-2.5-flash-image","prompt":"a dog"}`
	c, w := newTestContext(http.MethodPost, "/api/v1/images/generations", body)
	h.AltImages(c)

	require.Equal(t, http.StatusOK, w.Code)
	var out altapi.ImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, "inline-b64", out.Data[0].B64JSON)
}

func TestAltImagesURLResponseFormatRejected(t *testing.T) {
	h := New(gateway.Deps{Store: &fakeStore{}, Client: &fakeClient{}})
	body := `{"model":"gemini-2.5-flash-image","prompt":"a dog","response_format":"url"}`
	c, w := newTestContext(http.MethodPost, "/api/v1/images/generations", body)
	h.AltImages(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
