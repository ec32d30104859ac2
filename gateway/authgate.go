package gateway

import (
	"context"
	"strings"

	"github.com/vaultgate/gemini-gateway/configstore"
	"github.com/vaultgate/gemini-gateway/internal/gwerr"
)

// AuthMode is which credential-resolution strategy AuthGate chose for
// one request, per spec.md §4.2.
type AuthMode string

const (
	ModePool        AuthMode = "pool"
	ModePassthrough AuthMode = "passthrough"
)

// PresentedKey extracts the caller's presented credential from either
// the OpenAI-style Authorization header or the provider-style
// x-goog-api-key header, per spec.md §4.2.
func PresentedKey(authorizationHeader, googAPIKeyHeader string) string {
	if authorizationHeader != "" {
		return strings.TrimPrefix(authorizationHeader, "Bearer ")
	}
	return googAPIKeyHeader
}

// Authenticate implements AuthGate: it resolves the presented key to
// an operating mode. A missing key is Unauthorized; an empty trigger
// key configuration with a non-empty presented key degrades to
// passthrough (there is no trigger to compare against).
func Authenticate(ctx context.Context, store configstore.Store, presented string) (AuthMode, error) {
	if presented == "" {
		return "", gwerr.Unauthorized(401, "missing credential")
	}

	isTrigger, err := store.IsValidTriggerKey(ctx, presented)
	if err != nil {
		return "", err
	}
	if isTrigger {
		return ModePool, nil
	}
	return ModePassthrough, nil
}
