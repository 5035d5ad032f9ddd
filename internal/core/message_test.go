package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRendererNotices(t *testing.T) {
	r := Renderer{}
	assert.Equal(t, "Client Connected @ 127.0.0.1:4000", string(r.Joined("127.0.0.1:4000")))
	assert.Equal(t, "Client Disconnected @ 127.0.0.1:4000", string(r.Left("127.0.0.1:4000")))
}

func TestRendererPayload(t *testing.T) {
	data := []byte("hi\n")

	assert.Equal(t, "hi\n", string(Renderer{}.Payload("a:1", data)))
	assert.Equal(t, "[a:1] hi\n", string(Renderer{PrefixSender: true}.Payload("a:1", data)))
	assert.Equal(t, "hi\n", string(data), "payload must not be modified in place")
}
