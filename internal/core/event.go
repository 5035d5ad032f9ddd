package core

// EventKind describes what a session observed on its connection.
type EventKind int

const (
	// EventConnected announces a new peer together with its outbound handle.
	EventConnected EventKind = iota
	// EventData carries a chunk of bytes read from a peer.
	EventData
	// EventDisconnected is the last event a session emits for its peer.
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventData:
		return "data"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is produced by exactly one session and consumed once by the hub.
type Event struct {
	Kind   EventKind
	Peer   PeerID
	Handle *ClientHandle // set for EventConnected only
	Data   []byte        // set for EventData only
}

// Connected builds the event that registers handle with the hub.
func Connected(handle *ClientHandle) Event {
	return Event{Kind: EventConnected, Peer: handle.ID, Handle: handle}
}

// Data builds a payload event. The hub takes ownership of data.
func Data(peer PeerID, data []byte) Event {
	return Event{Kind: EventData, Peer: peer, Data: data}
}

// Disconnected builds the terminal event for peer.
func Disconnected(peer PeerID) Event {
	return Event{Kind: EventDisconnected, Peer: peer}
}
