package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vaultgate/gemini-gateway/altapi"
	"github.com/vaultgate/gemini-gateway/gateway"
	"github.com/vaultgate/gemini-gateway/internal/gwerr"
)

// AltImages serves POST /api/v1/images/generations, per spec.md §4.5.
func (h *Handlers) AltImages(c *gin.Context) {
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

	var req altapi.ImageRequest
	if err := bindJSON(prepared.Body, &req); err != nil {
		gateway.WriteError(c, gwerr.ClientMalformed(400, "invalid image request: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	created := time.Now().Unix()

	if altapi.ImageRequestIsImagen(req.Model) {
		nativeReq := altapi.ImageToNativeImagen(&req)
		var resp *altapi.ImageResponse
		invoke := func(ctx context.Context, credential string) gateway.Attempt {
			out, raw, err := h.deps.Client.GenerateImageImagen(ctx, credential, req.Model, nativeReq)
			if err != nil {
				status := 0
				body := []byte{}
				if raw != nil {
					status = raw.StatusCode
					body = raw.Body
				}
				return gateway.Attempt{StatusCode: status, Body: body, Err: err}
			}
			resp = altapi.ImageFromNativeImagen(out, created)
			return gateway.Attempt{StatusCode: raw.StatusCode}
		}

		if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, req.Model, invoke); err != nil {
			gateway.WriteError(c, err)
			return
		}
		c.JSON(200, resp)
		return
	}

	nativeReq, err := altapi.ImageToNativeGenerate(&req)
	if err != nil {
		gateway.WriteError(c, gwerr.ClientMalformed(400, err.Error()))
		return
	}

	var resp *altapi.ImageResponse
	invoke := func(ctx context.Context, credential string) gateway.Attempt {
		out, raw, err := h.deps.Client.Generate(ctx, credential, req.Model, nativeReq)
		if err != nil {
			status := 0
			body := []byte{}
			if raw != nil {
				status = raw.StatusCode
				body = raw.Body
			}
			return gateway.Attempt{StatusCode: status, Body: body, Err: err}
		}
		resp = altapi.ImageFromNativeGenerate(out, created)
		return gateway.Attempt{StatusCode: raw.StatusCode}
	}

	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, req.Model, invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}
	c.JSON(200, resp)
}
