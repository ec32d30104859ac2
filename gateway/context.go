package gateway

import (
	"github.com/gin-gonic/gin"

	"github.com/vaultgate/gemini-gateway/common/ctxkey"
)

// SetRequestContext stashes the per-request classification, auth mode,
// presented key, and model name onto the gin context so downstream
// handlers and logging can read them without re-deriving. Set by every
// handler entrypoint right after AuthGate resolves the mode; read by
// WriteError to enrich the failure log line.
func SetRequestContext(c *gin.Context, class Classification, mode AuthMode, presented, model string) {
	c.Set(ctxkey.Classification, string(class))
	c.Set(ctxkey.AuthMode, string(mode))
	c.Set(ctxkey.PresentedKey, presented)
	c.Set(ctxkey.RequestModel, model)
}

// RequestContext is the read side of SetRequestContext.
type RequestContext struct {
	Classification Classification
	AuthMode       AuthMode
	PresentedKey   string
	Model          string
}

func GetRequestContext(c *gin.Context) RequestContext {
	return RequestContext{
		Classification: Classification(c.GetString(ctxkey.Classification)),
		AuthMode:       AuthMode(c.GetString(ctxkey.AuthMode)),
		PresentedKey:   c.GetString(ctxkey.PresentedKey),
		Model:          c.GetString(ctxkey.RequestModel),
	}
}
