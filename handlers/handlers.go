// Package handlers wires gin endpoints to the gateway pipeline (every
// handler classifies its request from the full path through
// gateway.Prepare; the router does no classification).
package handlers

import (
	"github.com/vaultgate/gemini-gateway/gateway"
)

// Handlers holds the collaborators every endpoint needs.
type Handlers struct {
	deps gateway.Deps
}

func New(deps gateway.Deps) *Handlers {
	return &Handlers{deps: deps}
}
