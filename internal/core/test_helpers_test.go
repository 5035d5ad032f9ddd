package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, opts Options) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(opts, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func newTestHandle(addr string) *ClientHandle {
	return NewClientHandle(NewPeerID(), addr, 16)
}

func publish(t *testing.T, hub *Hub, events ...Event) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, ev := range events {
		require.NoError(t, hub.Publish(ctx, ev))
	}
}

// settle waits until the hub applied everything published so far and returns
// the registry snapshot.
func settle(t *testing.T, hub *Hub) []PeerInfo {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	peers, err := hub.Peers(ctx)
	require.NoError(t, err)
	return peers
}

// received drains whatever is queued on the handle without blocking.
func received(h *ClientHandle) []string {
	var out []string
	for {
		select {
		case chunk, ok := <-h.Outbound:
			if !ok {
				return out
			}
			out = append(out, string(chunk))
		default:
			return out
		}
	}
}

func peerIDs(peers []PeerInfo) []PeerID {
	ids := make([]PeerID, 0, len(peers))
	for _, p := range peers {
		ids = append(ids, p.ID)
	}
	return ids
}
