package session

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-relay/internal/core"
)

type recordingSink struct {
	events chan core.Event
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(chan core.Event, 64)}
}

func (s *recordingSink) Publish(ctx context.Context, ev core.Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *recordingSink) next(t *testing.T) core.Event {
	t.Helper()
	select {
	case ev := <-s.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return core.Event{}
	}
}

func (s *recordingSink) expectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-s.events:
		t.Fatalf("unexpected event %s", ev.Kind)
	case <-time.After(wait):
	}
}

// failingWriter is a connection whose writes always fail.
type failingWriter struct {
	net.Conn
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func runSession(t *testing.T, conn net.Conn, sink core.Sink) (*Session, <-chan struct{}) {
	t.Helper()

	s, err := New(conn, "127.0.0.1:5555", sink, Options{ReadBufferSize: 16, OutboundBuffer: 4, WriteTimeout: time.Second}, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(context.Background())
	}()
	return s, done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}
}

func TestSessionEmitsLifecycle(t *testing.T) {
	server, client := net.Pipe()
	sink := newRecordingSink()
	s, done := runSession(t, server, sink)

	connected := sink.next(t)
	require.Equal(t, core.EventConnected, connected.Kind)
	require.NotNil(t, connected.Handle)
	assert.Equal(t, s.ID(), connected.Peer)
	assert.Equal(t, "127.0.0.1:5555", connected.Handle.Addr)

	_, err := client.Write([]byte("hello"))
	require.NoError(t, err)

	data := sink.next(t)
	assert.Equal(t, core.EventData, data.Kind)
	assert.Equal(t, s.ID(), data.Peer)
	assert.Equal(t, "hello", string(data.Data))

	require.NoError(t, client.Close())

	disconnected := sink.next(t)
	assert.Equal(t, core.EventDisconnected, disconnected.Kind)
	assert.Equal(t, s.ID(), disconnected.Peer)

	waitDone(t, done)
	sink.expectNone(t, 50*time.Millisecond)
}

func TestSessionSplitsLargeReads(t *testing.T) {
	server, client := net.Pipe()
	sink := newRecordingSink()
	_, done := runSession(t, server, sink)
	sink.next(t)

	payload := []byte("0123456789abcdefXYZ")
	go func() {
		_, _ = client.Write(payload)
	}()

	var got []byte
	for len(got) < len(payload) {
		ev := sink.next(t)
		require.Equal(t, core.EventData, ev.Kind)
		assert.LessOrEqual(t, len(ev.Data), 16)
		got = append(got, ev.Data...)
	}
	assert.Equal(t, payload, got)

	client.Close()
	assert.Equal(t, core.EventDisconnected, sink.next(t).Kind)
	waitDone(t, done)
}

func TestSessionWritesOutbound(t *testing.T) {
	server, client := net.Pipe()
	sink := newRecordingSink()
	_, done := runSession(t, server, sink)

	handle := sink.next(t).Handle
	handle.Outbound <- []byte("from hub")

	buf := make([]byte, 32)
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "from hub", string(buf[:n]))

	client.Close()
	sink.next(t)
	waitDone(t, done)
}

func TestSessionWriteFailureDoesNotDisconnect(t *testing.T) {
	server, client := net.Pipe()
	sink := newRecordingSink()
	_, done := runSession(t, failingWriter{Conn: server}, sink)

	handle := sink.next(t).Handle
	handle.Outbound <- []byte("lost")
	handle.Outbound <- []byte("lost again")

	sink.expectNone(t, 100*time.Millisecond)

	// The read side still works after failed writes.
	_, err := client.Write([]byte("still here"))
	require.NoError(t, err)
	assert.Equal(t, "still here", string(sink.next(t).Data))

	client.Close()
	assert.Equal(t, core.EventDisconnected, sink.next(t).Kind)
	waitDone(t, done)
}

func TestSessionStopsOnCancel(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	sink := newRecordingSink()

	s, err := New(server, "pipe", sink, DefaultOptions(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	sink.next(t)

	cancel()
	waitDone(t, done)

	_, err = client.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF, "connection must be closed when the session ends")
}

func TestNewRejectsMissingPeerAddr(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	_, err := New(server, "", newRecordingSink(), DefaultOptions(), nil)
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, ErrNoPeerAddr)
}

type noAddrConn struct {
	net.Conn
}

func (noAddrConn) RemoteAddr() net.Addr { return nil }

func TestPeerAddr(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	addr, err := PeerAddr(server)
	require.NoError(t, err)
	assert.Equal(t, "pipe", addr)

	_, err = PeerAddr(noAddrConn{Conn: server})
	assert.ErrorIs(t, err, ErrNoPeerAddr)
}
