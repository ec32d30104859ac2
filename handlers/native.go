package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vaultgate/gemini-gateway/gateway"
	"github.com/vaultgate/gemini-gateway/internal/gwerr"
	"github.com/vaultgate/gemini-gateway/nativeapi"
	"github.com/vaultgate/gemini-gateway/upstream"
)

// NativeListModels serves GET /api/v1beta/models, per spec.md §4.4/§6.
func (h *Handlers) NativeListModels(c *gin.Context) {
	prepared, err := gateway.Prepare(c)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	mode, err := gateway.Authenticate(c.Request.Context(), h.deps.Store, prepared.Presented)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	gateway.SetRequestContext(c, prepared.Classification, mode, prepared.Presented, prepared.Model)

	ctx := c.Request.Context()
	var body []byte
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		raw, err := gateway.ForwardListModels(ctx, h.deps.Client, credential)
		a := attemptFromRaw(raw, err)
		body = a.Body
		return a
	}
	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, "", invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}
	c.Data(200, "application/json", body)
}

// NativeGetModel serves GET /api/v1beta/models/{id}, per spec.md §4.4/§6.
func (h *Handlers) NativeGetModel(c *gin.Context) {
	model := c.Param("id")

	prepared, err := gateway.Prepare(c)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	mode, err := gateway.Authenticate(c.Request.Context(), h.deps.Store, prepared.Presented)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	gateway.SetRequestContext(c, prepared.Classification, mode, prepared.Presented, model)

	ctx := c.Request.Context()
	var body []byte
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		raw, err := gateway.ForwardGetModel(ctx, h.deps.Client, credential, model)
		a := attemptFromRaw(raw, err)
		body = a.Body
		return a
	}
	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}
	c.Data(200, "application/json", body)
}

// NativeAction serves the POST family of native actions: generateContent,
// streamGenerateContent, embedContent, batchEmbedContents, countTokens,
// generateImageWithGemini, generateImageWithImagen, per spec.md §4.4/§6.
// The gin path param carries "model:action" as a single segment.
func (h *Handlers) NativeAction(c *gin.Context) {
	segment := c.Param("action")
	path := "/v1beta/models/" + segment
	model := gateway.NativeModelFromPath(path)
	action := gateway.NativeAction(path)

	prepared, err := gateway.Prepare(c)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	mode, err := gateway.Authenticate(c.Request.Context(), h.deps.Store, prepared.Presented)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	prepared.Model = model
	gateway.SetRequestContext(c, prepared.Classification, mode, prepared.Presented, model)

	switch action {
	case "generateContent":
		h.nativeGenerateContent(c, mode, prepared, model)
	case "streamGenerateContent":
		h.nativeStreamGenerateContent(c, mode, prepared, model)
	case "embedContent":
		h.nativeEmbedContent(c, mode, prepared, model)
	case "batchEmbedContents":
		h.nativeBatchEmbedContents(c, mode, prepared, model)
	case "countTokens":
		h.nativeCountTokens(c, mode, prepared, model)
	case "generateImageWithGemini":
		h.nativeGenerateImageWithGemini(c, mode, prepared, model)
	case "generateImageWithImagen":
		h.nativeGenerateImageWithImagen(c, mode, prepared, model)
	default:
		gateway.WriteError(c, gwerr.ClientMalformed(404, "unknown native action"))
	}
}

// attemptFromRaw adapts a *upstream.Response/error pair into a
// gateway.Attempt for actions that forward the upstream body verbatim.
func attemptFromRaw(raw *upstream.Response, err error) gateway.Attempt {
	if err != nil {
		status := 0
		if raw != nil {
			status = raw.StatusCode
		}
		return gateway.Attempt{StatusCode: status, Err: err}
	}
	return gateway.Attempt{StatusCode: raw.StatusCode, Body: raw.Body}
}

func (h *Handlers) nativeGenerateContent(c *gin.Context, mode gateway.AuthMode, prepared *gateway.PreparedRequest, model string) {
	req, err := gateway.BuildGenerateRequest(prepared.Body)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	ctx := c.Request.Context()
	var body []byte
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		_, raw, err := h.deps.Client.Generate(ctx, credential, model, req)
		a := attemptFromRaw(raw, err)
		body = a.Body
		return a
	}
	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}
	c.Data(200, "application/json", body)
}

func (h *Handlers) nativeStreamGenerateContent(c *gin.Context, mode gateway.AuthMode, prepared *gateway.PreparedRequest, model string) {
	req, err := gateway.BuildGenerateRequest(prepared.Body)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	ctx := c.Request.Context()
	var handle upstream.StreamHandle
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		hdl, raw, err := h.deps.Client.StreamGenerate(ctx, credential, model, req)
		if err != nil {
			status := 0
			if raw != nil {
				status = raw.StatusCode
			}
			return gateway.Attempt{StatusCode: status, Err: err}
		}
		handle = hdl
		return gateway.Attempt{StatusCode: raw.StatusCode}
	}
	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}
	gateway.SetEventStreamHeaders(c)
	_ = gateway.StreamNative(ctx, c, handle)
}

func (h *Handlers) nativeEmbedContent(c *gin.Context, mode gateway.AuthMode, prepared *gateway.PreparedRequest, model string) {
	var req nativeapi.EmbedRequest
	if err := bindJSON(prepared.Body, &req); err != nil {
		gateway.WriteError(c, gwerr.ClientMalformed(400, "invalid embedContent body"))
		return
	}
	ctx := c.Request.Context()
	var body []byte
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		_, raw, err := h.deps.Client.Embed(ctx, credential, model, &req)
		a := attemptFromRaw(raw, err)
		body = a.Body
		return a
	}
	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}
	c.Data(200, "application/json", body)
}

func (h *Handlers) nativeBatchEmbedContents(c *gin.Context, mode gateway.AuthMode, prepared *gateway.PreparedRequest, model string) {
	var req struct {
		Requests []nativeapi.EmbedRequest `json:"requests"`
	}
	if err := bindJSON(prepared.Body, &req); err != nil {
		gateway.WriteError(c, gwerr.ClientMalformed(400, "invalid batchEmbedContents body"))
		return
	}

	ctx := c.Request.Context()
	type result struct {
		Embedding nativeapi.Embedding `json:"embedding"`
	}
	embeddings := make([]result, 0, len(req.Requests))
	for i := range req.Requests {
		item := req.Requests[i]
		var got *nativeapi.EmbedResponse
		invoke := func(ctx context.Context, credential string) gateway.Attempt {
			resp, raw, err := h.deps.Client.Embed(ctx, credential, model, &item)
			if err != nil {
				status := 0
				if raw != nil {
					status = raw.StatusCode
				}
				return gateway.Attempt{StatusCode: status, Err: err}
			}
			got = resp
			return gateway.Attempt{StatusCode: raw.StatusCode}
		}
		if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke); err != nil {
			gateway.WriteError(c, err)
			return
		}
		embeddings = append(embeddings, result{Embedding: got.Embedding})
	}
	c.JSON(200, gin.H{"embeddings": embeddings})
}

func (h *Handlers) nativeCountTokens(c *gin.Context, mode gateway.AuthMode, prepared *gateway.PreparedRequest, model string) {
	req, err := gateway.BuildGenerateRequest(prepared.Body)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	ctx := c.Request.Context()
	var body []byte
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		raw, err := h.deps.Client.CountTokens(ctx, credential, model, req)
		a := attemptFromRaw(raw, err)
		body = a.Body
		return a
	}
	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}
	c.Data(200, "application/json", body)
}

func (h *Handlers) nativeGenerateImageWithGemini(c *gin.Context, mode gateway.AuthMode, prepared *gateway.PreparedRequest, model string) {
	req, err := gateway.BuildGenerateRequest(prepared.Body)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	if err := gateway.ValidateGenerateImageWithGemini(req); err != nil {
		gateway.WriteError(c, err)
		return
	}
	ctx := c.Request.Context()
	var body []byte
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		_, raw, err := h.deps.Client.Generate(ctx, credential, model, req)
		a := attemptFromRaw(raw, err)
		body = a.Body
		return a
	}
	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}
	c.Data(200, "application/json", body)
}

func (h *Handlers) nativeGenerateImageWithImagen(c *gin.Context, mode gateway.AuthMode, prepared *gateway.PreparedRequest, model string) {
	req, err := gateway.BuildImagenRequest(prepared.Body)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}
	ctx := c.Request.Context()
	var body []byte
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		_, raw, err := h.deps.Client.GenerateImageImagen(ctx, credential, model, req)
		a := attemptFromRaw(raw, err)
		body = a.Body
		return a
	}
	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}
	c.Data(200, "application/json", body)
}
