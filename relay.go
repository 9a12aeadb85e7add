package main

// RelayEventType enumerates inbound signaling events as seen by the
// coordinator. The wire names differ on the emit side (see relayclient.go);
// the relay client translates between the two.
type RelayEventType string

const (
	EventIncomingCall RelayEventType = "incoming-call"
	EventCallAnswered RelayEventType = "call-answered"
	EventCallRejected RelayEventType = "call-rejected"
	EventCallEnded    RelayEventType = "call-ended"
	EventCallFailed   RelayEventType = "call-failed"
)

// RelayEvent is one inbound signaling event delivered by the relay.
type RelayEvent struct {
	Type      RelayEventType
	SessionID string
	PeerID    string
	PeerName  string
	Reason    string
}

// Relay is the emit side of the signaling channel. Implementations send
// point-to-point control events to the named peer; delivery is best effort
// and the coordinator never waits on it.
type Relay interface {
	Initiate(sessionID, peerID, callerName string) error
	Answer(sessionID, peerID string) error
	Reject(sessionID, peerID string) error
	End(sessionID, peerID string) error
}
