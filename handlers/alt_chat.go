package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaultgate/gemini-gateway/altapi"
	"github.com/vaultgate/gemini-gateway/gateway"
	"github.com/vaultgate/gemini-gateway/internal/gwerr"
	"github.com/vaultgate/gemini-gateway/nativeapi"
	"github.com/vaultgate/gemini-gateway/upstream"
)

// AltChatCompletions serves POST /api/v1/chat/completions, streaming or
// not depending on body.stream, per spec.md §4.5/§4.6.
func (h *Handlers) AltChatCompletions(c *gin.Context) {
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

	var req altapi.ChatRequest
	if err := bindJSON(prepared.Body, &req); err != nil {
		gateway.WriteError(c, gwerr.ClientMalformed(400, "invalid chat completion request: "+err.Error()))
		return
	}

	nativeReq, err := altapi.ChatToNative(&req)
	if err != nil {
		gateway.WriteError(c, gwerr.ClientMalformed(400, err.Error()))
		return
	}

	reasoningEffort := ""
	if req.Reasoning != nil {
		reasoningEffort = req.Reasoning.Effort
	}

	if req.Stream {
		h.streamChat(c, mode, prepared, nativeReq, req.Model, reasoningEffort)
		return
	}
	h.nonStreamChat(c, mode, prepared, nativeReq, req.Model, reasoningEffort)
}

func (h *Handlers) nonStreamChat(c *gin.Context, mode gateway.AuthMode, prepared *gateway.PreparedRequest, nativeReq *nativeapi.GenerateRequest, model, reasoningEffort string) {
	ctx := c.Request.Context()

	var resp *nativeapi.GenerateResponse
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		out, raw, err := h.deps.Client.Generate(ctx, credential, model, nativeReq)
		if err != nil {
			status := 0
			if raw != nil {
				status = raw.StatusCode
			}
			body := []byte{}
			if raw != nil {
				body = raw.Body
			}
			return gateway.Attempt{StatusCode: status, Body: body, Err: err}
		}
		resp = out
		return gateway.Attempt{StatusCode: raw.StatusCode, Body: raw.Body}
	}

	_, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}

	out := altapi.ChatFromNative(resp, newResponseID("chatcmpl-"), time.Now().Unix(), model, reasoningEffort)
	c.JSON(200, out)
}

func (h *Handlers) streamChat(c *gin.Context, mode gateway.AuthMode, prepared *gateway.PreparedRequest, nativeReq *nativeapi.GenerateRequest, model, reasoningEffort string) {
	ctx := c.Request.Context()

	var handle upstream.StreamHandle
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		h2, raw, err := h.deps.Client.StreamGenerate(ctx, credential, model, nativeReq)
		if err != nil {
			status := 0
			body := []byte{}
			if raw != nil {
				status = raw.StatusCode
				body = raw.Body
			}
			return gateway.Attempt{StatusCode: status, Body: body, Err: err}
		}
		handle = h2
		return gateway.Attempt{StatusCode: raw.StatusCode}
	}

	_, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, model, invoke)
	if err != nil {
		gateway.WriteError(c, err)
		return
	}

	gateway.SetEventStreamHeaders(c)
	// include_usage is always forced true for alt-chat streams, per the
	// Open Question decision in spec.md §9.
	transformer := altapi.NewStreamTransformer(newResponseID("chatcmpl-"), time.Now().Unix(), model, true)
	_ = reasoningEffort // reasoning is not echoed in the streaming response shape
	_ = gateway.StreamAltChat(ctx, c, handle, transformer)
}
