package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	applog "github.com/vovakirdan/wirechat-relay/internal/log"
	"github.com/vovakirdan/wirechat-relay/internal/session"
	transporthttp "github.com/vovakirdan/wirechat-relay/internal/transport/http"
	"github.com/vovakirdan/wirechat-relay/internal/transport/tcp"
)

// App wires together core and transport layers.
type App struct {
	hub             *core.Hub
	listener        *tcp.Listener
	admin           *stdhttp.Server
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	hub := core.NewHub(core.Options{
		EventBuffer:  cfg.EventBuffer,
		PrefixSender: cfg.PrefixSender,
	}, logger)

	listener := tcp.NewListener(cfg.Addr, hub, tcp.Options{
		AcceptRate:  cfg.AcceptRate,
		AcceptBurst: cfg.AcceptBurst,
		Session: session.Options{
			ReadBufferSize: cfg.ReadBufferSize,
			OutboundBuffer: cfg.OutboundBuffer,
			WriteTimeout:   cfg.WriteTimeout,
		},
	}, logger)

	var admin *stdhttp.Server
	if cfg.AdminAddr != "" {
		admin = transporthttp.NewServer(hub, cfg, logger)
	}

	return &App{
		hub:             hub,
		listener:        listener,
		admin:           admin,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// Hub exposes the broadcast core, mainly for tests and diagnostics.
func (a *App) Hub() *core.Hub {
	return a.hub
}

// RelayAddr blocks until the TCP listener is bound and returns its address.
func (a *App) RelayAddr(ctx context.Context) (net.Addr, error) {
	return a.listener.Addr(ctx)
}

// Run starts the hub, the TCP listener and the admin server, and blocks until
// ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		a.hub.Run(hubCtx)
	}()

	g.Go(func() error {
		return a.listener.Serve(ctx)
	})

	if a.admin != nil {
		a.admin.BaseContext = func(net.Listener) context.Context { return ctx }

		g.Go(func() error {
			a.log.Info().Str("addr", applog.Sensitive(a.admin.Addr)).Msg("admin server listening")
			if err := a.admin.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
			defer cancel()

			a.log.Info().Msg("shutting down admin server")
			if err := a.admin.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("admin shutdown: %w", err)
			}
			return nil
		})
	}

	err := g.Wait()

	// Sessions have returned by now; stop the hub last so their final
	// disconnects are still consumed.
	stopHub()
	<-hubDone
	a.log.Info().Msg("relay stopped")
	return err
}
