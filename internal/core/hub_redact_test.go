package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "github.com/vovakirdan/wirechat-relay/internal/log"
)

// Redaction covers diagnostics only; what peers receive keeps real addresses.
func TestHubOutputIgnoresRedaction(t *testing.T) {
	applog.SetRedact(true)
	require.Equal(t, applog.Redacted, applog.Sensitive("10.0.0.1:5001"), "redaction must be on for this test")

	hub := startHub(t, Options{PrefixSender: true})

	a := newTestHandle("10.0.0.1:5001")
	b := newTestHandle("10.0.0.2:5002")
	publish(t, hub, Connected(a), Connected(b))
	settle(t, hub)

	publish(t, hub, Data(b.ID, []byte("hi")), Disconnected(b.ID))
	settle(t, hub)

	assert.Equal(t, []string{
		"Client Connected @ 10.0.0.2:5002",
		"[10.0.0.2:5002] hi",
		"Client Disconnected @ 10.0.0.2:5002",
	}, received(a))
}
