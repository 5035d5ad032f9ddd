package http

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	applog "github.com/vovakirdan/wirechat-relay/internal/log"
)

// AdminHandlers serves read-only views of the relay.
type AdminHandlers struct {
	relay Relay
	log   *zerolog.Logger
}

// NewAdminHandlers creates a new admin handlers instance.
func NewAdminHandlers(relay Relay, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{
		relay: relay,
		log:   logger,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PeersResponse lists the registered peers.
type PeersResponse struct {
	Count int             `json:"count"`
	Peers []core.PeerInfo `json:"peers"`
}

// Health reports liveness.
// GET /health
func (h *AdminHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Peers returns the hub registry. Addresses follow the redaction setting.
// GET /peers
func (h *AdminHandlers) Peers(c *gin.Context) {
	peers, err := h.relay.Peers(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("list peers")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "relay unavailable"})
		return
	}

	for i := range peers {
		peers[i].Addr = applog.Sensitive(peers[i].Addr)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].ID < peers[j].ID })

	c.JSON(http.StatusOK, PeersResponse{Count: len(peers), Peers: peers})
}
