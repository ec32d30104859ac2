// Package router registers the HTTP surface spec.md §6 lists, wiring
// CORS and gzip the way the teacher's main.go call site configures
// them (gzip deliberately excluded from streaming routes, per the
// teacher's own "this will cause SSE not to work" warning).
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaultgate/gemini-gateway/gateway"
	"github.com/vaultgate/gemini-gateway/handlers"
)

// Options configures metrics exposure; CORS is always on with a fixed
// allow-all-origins policy.
type Options struct {
	EnableMetrics bool
}

// SetRouter registers every route spec.md §6 names under the gateway
// prefix /api, plus an optional /metrics endpoint.
func SetRouter(server *gin.Engine, deps gateway.Deps, opts Options) {
	server.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "x-goog-api-key"},
	}))

	if opts.EnableMetrics {
		server.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	h := handlers.New(deps)

	api := server.Group("/api")
	{
		// gzip only on the non-streaming group; SSE responses must not
		// be buffered/compressed.
		plain := api.Group("/")
		plain.Use(gzip.Gzip(gzip.DefaultCompression))

		plain.GET("/v1/models", h.AltListModels)
		plain.POST("/v1/embeddings", h.AltEmbeddings)
		plain.POST("/v1/images/generations", h.AltImages)
		plain.GET("/v1beta/models", h.NativeListModels)
		plain.GET("/v1beta/models/:id", h.NativeGetModel)

		// alt-chat can be streaming or not; the handler itself decides.
		api.POST("/v1/chat/completions", h.AltChatCompletions)
		// native actions include streamGenerateContent, so this route
		// also stays outside the gzip group.
		api.POST("/v1beta/models/:action", h.NativeAction)
	}
}
