// Package ctxkey names the gin context keys shared across middleware,
// the gateway pipeline, and the translators.
package ctxkey

const (
	// RequestId is the per-request correlation id, set by the request-id
	// middleware in main.go, which also returns it in the X-Request-Id
	// response header. Nothing else reads it.
	RequestId = "request_id"

	// PresentedKey is the bearer/x-goog-api-key credential the caller sent.
	// Set in: gateway.SetRequestContext, called by every handler after
	// AuthGate resolves the mode. Read in: gateway.WriteError for logging.
	PresentedKey = "presented_key"

	// AuthMode is either "pool" or "passthrough". Set in:
	// gateway.SetRequestContext. Read in: gateway.WriteError.
	AuthMode = "auth_mode"

	// Classification is the RequestClassifier result. Set in:
	// gateway.SetRequestContext. Read in: gateway.WriteError.
	Classification = "classification"

	// RequestModel is the model name extracted by the classifier or
	// request body. Set in: gateway.SetRequestContext. Read in:
	// gateway.WriteError.
	RequestModel = "request_model"
)
