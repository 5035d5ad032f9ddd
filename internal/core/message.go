package core

import "fmt"

// Renderer turns hub events into the bytes peers receive. Notices are plain
// text injected into the same stream as payload data.
type Renderer struct {
	PrefixSender bool
}

// Joined renders the notice sent to existing peers when addr connects.
func (r Renderer) Joined(addr string) []byte {
	return fmt.Appendf(nil, "Client Connected @ %s", addr)
}

// Left renders the notice sent to remaining peers when addr disconnects.
func (r Renderer) Left(addr string) []byte {
	return fmt.Appendf(nil, "Client Disconnected @ %s", addr)
}

// Payload renders a data chunk from addr. Without a sender prefix the chunk
// is returned as is.
func (r Renderer) Payload(addr string, data []byte) []byte {
	if !r.PrefixSender {
		return data
	}
	out := make([]byte, 0, len(addr)+3+len(data))
	out = append(out, '[')
	out = append(out, addr...)
	out = append(out, "] "...)
	return append(out, data...)
}
