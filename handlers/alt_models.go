package handlers

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/vaultgate/gemini-gateway/altapi"
	"github.com/vaultgate/gemini-gateway/gateway"
)

// nativeModelList is the subset of the provider's model-listing shape
// needed to re-key it into the alt-models response shape.
type nativeModelList struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// AltListModels serves GET /api/v1/models, per spec.md §6.
func (h *Handlers) AltListModels(c *gin.Context) {
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
		resp, err := h.deps.Client.ListModels(ctx, credential)
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			return gateway.Attempt{StatusCode: status, Err: err}
		}
		body = resp.Body
		return gateway.Attempt{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	if _, err := gateway.RunPoolOrPassthrough(ctx, h.deps, mode, prepared.Presented, "", invoke); err != nil {
		gateway.WriteError(c, err)
		return
	}

	var parsed nativeModelList
	_ = json.Unmarshal(body, &parsed)

	out := altapi.ModelsResponse{Object: "list"}
	for _, m := range parsed.Models {
		out.Data = append(out.Data, altapi.ModelInfo{ID: m.Name, Object: "model", OwnedBy: "google"})
	}
	c.JSON(200, out)
}
