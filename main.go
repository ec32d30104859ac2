package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"github.com/vaultgate/gemini-gateway/common/ctxkey"
	"github.com/vaultgate/gemini-gateway/configstore"
	"github.com/vaultgate/gemini-gateway/gateway"
	"github.com/vaultgate/gemini-gateway/internal/env"
	"github.com/vaultgate/gemini-gateway/internal/logging"
	"github.com/vaultgate/gemini-gateway/router"
	"github.com/vaultgate/gemini-gateway/upstream"
)

func main() {
	debug := env.Bool("GATEWAY_DEBUG", false)
	logging.Setup(debug)
	lg := logging.Logger

	store, err := configstore.Open(env.String("GATEWAY_DSN", ""))
	if err != nil {
		lg.Fatal("failed to open config store", zap.Error(err))
	}

	if redisAddr := env.String("GATEWAY_REDIS_ADDR", ""); redisAddr != "" {
		rdb := newRedisClient(redisAddr, env.String("GATEWAY_REDIS_PASSWORD", ""), env.Int("GATEWAY_REDIS_DB", 0))
		store = configstore.WithRedisCursor(store, rdb)
		lg.Info("redis cursor rotation enabled", zap.String("addr", redisAddr))
	}

	if ttl := env.Duration("GATEWAY_CACHE_TTL", 5*time.Second); ttl > 0 {
		store = configstore.WithSnapshotCache(store, ttl)
	}

	client := upstream.NewRESTClient(env.String("GATEWAY_UPSTREAM_BASE_URL", upstream.DefaultBaseURL))

	if os.Getenv("GIN_MODE") != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		gin.Recovery(),
		requestID(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLogger(lg.Named("gin")),
		),
	)
	// gzip is deliberately NOT applied globally: it would buffer the
	// SSE streaming routes and break them.

	deps := gateway.Deps{Store: store, Client: client}
	router.SetRouter(server, deps, router.Options{
		EnableMetrics: env.Bool("GATEWAY_ENABLE_METRICS", true),
	})

	port := env.String("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server started", zap.String("address", "http://localhost:"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}

// requestID stamps every request with a correlation id, mirroring the
// teacher's middleware.RequestId.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ctxkey.RequestId, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}
