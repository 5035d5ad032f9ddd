package http

import (
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	applog "github.com/vovakirdan/wirechat-relay/internal/log"
	"github.com/vovakirdan/wirechat-relay/internal/metrics"
	"github.com/vovakirdan/wirechat-relay/internal/session"
)

// WSHandler upgrades HTTP connections and runs them as relay sessions. Each
// binary message is one chunk; there is no further framing.
type WSHandler struct {
	sink core.Sink
	opts session.Options
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(sink core.Sink, opts session.Options, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{sink: sink, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	if r.RemoteAddr == "" {
		metrics.ConnectionErrors.WithLabelValues("peer_identity").Inc()
		h.log.Warn().Msg("ws request without remote address")
		stdhttp.Error(w, "peer address unavailable", stdhttp.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		metrics.ConnectionErrors.WithLabelValues("upgrade").Inc()
		h.log.Error().Str("error", applog.SensitiveErr(err)).Msg("ws accept error")
		return
	}

	netConn := websocket.NetConn(ctx, conn, websocket.MessageBinary)
	s, err := session.New(netConn, r.RemoteAddr, h.sink, h.opts, h.log)
	if err != nil {
		metrics.ConnectionErrors.WithLabelValues("peer_identity").Inc()
		h.log.Warn().Str("error", applog.SensitiveErr(err)).Msg("dropping ws connection")
		conn.Close(websocket.StatusInternalError, "internal error")
		return
	}
	metrics.ConnectionsTotal.WithLabelValues("ws").Inc()

	// Run closes netConn, which sends a normal closure frame.
	s.Run(ctx)
}
