package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/session"
)

const readHeaderTimeout = 5 * time.Second

// Relay is the part of the hub the admin surface needs.
type Relay interface {
	core.Sink
	Peers(ctx context.Context) ([]core.PeerInfo, error)
}

// NewServer builds the admin HTTP server: health, peer listing, metrics and
// a WebSocket entry point into the relay. /ws bypasses gin so the upgrade can
// hijack an untouched response writer.
func NewServer(relay Relay, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	handlers := NewAdminHandlers(relay, logger)
	router.GET("/health", handlers.Health)
	router.GET("/peers", handlers.Peers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ws := NewWSHandler(relay, session.Options{
		ReadBufferSize: cfg.ReadBufferSize,
		OutboundBuffer: cfg.OutboundBuffer,
		WriteTimeout:   cfg.WriteTimeout,
	}, logger)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", ws)
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.AdminAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
