package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	applog "github.com/vovakirdan/wirechat-relay/internal/log"
	"github.com/vovakirdan/wirechat-relay/internal/metrics"
	"github.com/vovakirdan/wirechat-relay/internal/session"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Options tune a Listener.
type Options struct {
	// AcceptRate limits accepted connections per second. Zero disables the limit.
	AcceptRate  float64
	AcceptBurst int
	Session     session.Options
}

// Listener accepts TCP connections and runs a session for each one.
type Listener struct {
	addr    string
	sink    core.Sink
	opts    Options
	limiter *rate.Limiter
	log     *zerolog.Logger

	mu    sync.Mutex
	bound net.Addr
	ready chan struct{}
}

// NewListener builds a listener that feeds sessions into sink.
func NewListener(addr string, sink core.Sink, opts Options, logger *zerolog.Logger) *Listener {
	if logger == nil {
		logger = applog.Nop()
	}
	l := &Listener{
		addr:  addr,
		sink:  sink,
		opts:  opts,
		log:   logger,
		ready: make(chan struct{}),
	}
	if opts.AcceptRate > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(opts.AcceptRate), max(opts.AcceptBurst, 1))
	}
	return l
}

// Addr blocks until the listener is bound and returns its address.
func (l *Listener) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-l.ready:
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.bound, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Serve binds and accepts until ctx is cancelled. Accept failures are logged
// and retried; only a bind failure is returned.
func (l *Listener) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		l.log.Error().Str("addr", applog.Sensitive(l.addr)).Str("error", applog.SensitiveErr(err)).Msg("could not bind")
		return fmt.Errorf("listen: %w", err)
	}

	l.mu.Lock()
	l.bound = ln.Addr()
	l.mu.Unlock()
	close(l.ready)

	l.log.Info().Str("addr", applog.Sensitive(ln.Addr().String())).Msg("listening")

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var sessions sync.WaitGroup
	defer sessions.Wait()

	backoff := time.Duration(0)
	for {
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			metrics.ConnectionErrors.WithLabelValues("accept").Inc()
			l.log.Warn().Str("error", applog.SensitiveErr(err)).Msg("could not accept connection")

			backoff = nextBackoff(backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		backoff = 0

		sessions.Add(1)
		go func() {
			defer sessions.Done()
			l.handle(ctx, conn)
		}()
	}
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	addr, err := session.PeerAddr(conn)
	if err != nil {
		metrics.ConnectionErrors.WithLabelValues("peer_identity").Inc()
		l.log.Warn().Str("error", applog.SensitiveErr(err)).Msg("dropping connection")
		_ = conn.Close()
		return
	}

	s, err := session.New(conn, addr, l.sink, l.opts.Session, l.log)
	if err != nil {
		metrics.ConnectionErrors.WithLabelValues("peer_identity").Inc()
		l.log.Warn().Str("error", applog.SensitiveErr(err)).Msg("dropping connection")
		_ = conn.Close()
		return
	}
	metrics.ConnectionsTotal.WithLabelValues("tcp").Inc()
	s.Run(ctx)
}

func nextBackoff(cur time.Duration) time.Duration {
	if cur == 0 {
		return minAcceptBackoff
	}
	cur *= 2
	if cur > maxAcceptBackoff {
		return maxAcceptBackoff
	}
	return cur
}
