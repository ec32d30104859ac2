package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vaultgate/gemini-gateway/altapi"
	"github.com/vaultgate/gemini-gateway/gateway"
	"github.com/vaultgate/gemini-gateway/internal/gwerr"
)

// AltEmbeddings serves POST /api/v1/embeddings, per spec.md §4.5.
func (h *Handlers) AltEmbeddings(c *gin.Context) {
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

	var req altapi.EmbedRequest
	if err := bindJSON(prepared.Body, &req); err != nil {
		gateway.WriteError(c, gwerr.ClientMalformed(400, "invalid embeddings request: "+err.Error()))
		return
	}

	inputs := req.ParseInputs()
	results := make([]altapi.EmbedItemResult, len(inputs))

	ctx := c.Request.Context()
	for i, input := range inputs {
		nativeReq := altapi.EmbedItemToNative(input, req.Dimensions)

		var values []float64
		invoke := func(ctx context.Context, credential string) gateway.Attempt {
			resp, raw, err := h.deps.Client.Embed(ctx, credential, req.Model, nativeReq)
			if err != nil {
				status := 0
				body := []byte{}
				if raw != nil {
					status = raw.StatusCode
					body = raw.Body
				}
				return gateway.Attempt{StatusCode: status, Body: body, Err: err}
			}
			if len(resp.Embedding.Values) > 0 {
				values = resp.Embedding.Values
			}
			return gateway.Attempt{StatusCode: raw.StatusCode}
		}

		_, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, req.Model, invoke)
		results[i] = altapi.EmbedItemResult{Values: values, Err: err}
	}

	out := altapi.EmbedFromNative(req.Model, results)
	c.JSON(200, out)
}
