package session

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	applog "github.com/vovakirdan/wirechat-relay/internal/log"
	"github.com/vovakirdan/wirechat-relay/internal/metrics"
)

// Options tune a Session.
type Options struct {
	ReadBufferSize int
	OutboundBuffer int
	WriteTimeout   time.Duration
}

// DefaultOptions mirrors the relay defaults.
func DefaultOptions() Options {
	return Options{
		ReadBufferSize: 1024,
		OutboundBuffer: 64,
		WriteTimeout:   5 * time.Second,
	}
}

// Session adapts one connection into hub events and writes back whatever the
// hub pushes to its handle.
type Session struct {
	conn   net.Conn
	handle *core.ClientHandle
	sink   core.Sink
	opts   Options
	log    zerolog.Logger
}

// PeerAddr reports the remote address of conn.
func PeerAddr(conn net.Conn) (string, error) {
	addr := conn.RemoteAddr()
	if addr == nil || addr.String() == "" {
		return "", &ConnectionError{Op: "peer address", Err: ErrNoPeerAddr}
	}
	return addr.String(), nil
}

// New builds a session for conn identified by addr.
func New(conn net.Conn, addr string, sink core.Sink, opts Options, logger *zerolog.Logger) (*Session, error) {
	if addr == "" {
		return nil, &ConnectionError{Op: "new session", Err: ErrNoPeerAddr}
	}
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = DefaultOptions().ReadBufferSize
	}
	if logger == nil {
		logger = applog.Nop()
	}

	id := core.NewPeerID()
	return &Session{
		conn:   conn,
		handle: core.NewClientHandle(id, addr, opts.OutboundBuffer),
		sink:   sink,
		opts:   opts,
		log:    logger.With().Str("peer_id", string(id)).Logger(),
	}, nil
}

// ID returns the peer id assigned to this session.
func (s *Session) ID() core.PeerID {
	return s.handle.ID
}

// Run announces the peer, relays reads to the sink until the connection ends,
// then emits a single Disconnected. The connection is closed on return.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	// Unblocks a pending Read when the caller cancels.
	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop(ctx)
	}()
	defer func() {
		cancel()
		wg.Wait()
		stop()
		_ = s.conn.Close()
	}()

	if err := s.sink.Publish(ctx, core.Connected(s.handle)); err != nil {
		s.log.Warn().Err(err).Msg("publish connected")
		return
	}

	err := s.readLoop(ctx)
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		s.log.Debug().Msg("connection closed")
	default:
		s.log.Warn().Str("error", applog.SensitiveErr(err)).Msg("read failed")
	}

	if err := s.sink.Publish(ctx, core.Disconnected(s.handle.ID)); err != nil {
		s.log.Warn().Err(err).Msg("publish disconnected")
	}
}

func (s *Session) readLoop(ctx context.Context) error {
	buf := make([]byte, s.opts.ReadBufferSize)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if pubErr := s.sink.Publish(ctx, core.Data(s.handle.ID, chunk)); pubErr != nil {
				return pubErr
			}
		}
		if err != nil {
			return err
		}
	}
}

// writeLoop drains the outbound queue. Failed writes are dropped; only the
// read side decides when the peer is gone.
func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case chunk, ok := <-s.handle.Outbound:
			if !ok {
				return
			}
			if s.opts.WriteTimeout > 0 {
				_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			}
			if _, err := s.conn.Write(chunk); err != nil {
				metrics.WriteErrors.Inc()
				s.log.Debug().Str("error", applog.SensitiveErr(err)).Msg("write dropped")
			}
		case <-ctx.Done():
			return
		}
	}
}
