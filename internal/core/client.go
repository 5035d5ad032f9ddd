package core

import "github.com/google/uuid"

// PeerID identifies one connection for its whole lifetime. IDs are random and
// never reused, so a removed peer can not be registered again.
type PeerID string

// NewPeerID returns a fresh peer identifier.
func NewPeerID() PeerID {
	return PeerID(uuid.NewString())
}

// ClientHandle is the hub's view of a connected peer. Once registered the hub
// is the only writer to Outbound and the one that closes it.
type ClientHandle struct {
	ID       PeerID
	Addr     string
	Outbound chan []byte
}

// NewClientHandle constructs a handle with an outbound queue of the given size.
func NewClientHandle(id PeerID, addr string, buffer int) *ClientHandle {
	if buffer <= 0 {
		buffer = 1
	}
	return &ClientHandle{
		ID:       id,
		Addr:     addr,
		Outbound: make(chan []byte, buffer),
	}
}

// PeerInfo is a read-only snapshot of a registered peer.
type PeerInfo struct {
	ID   PeerID `json:"id"`
	Addr string `json:"addr"`
}
