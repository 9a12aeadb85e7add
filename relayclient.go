package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

// Wire-level event types, as emitted onto the relay. Inbound envelopes carry
// the same vocabulary plus call-failed; the client translates them into the
// coordinator's view of events (a call-initiate addressed to us arrives as
// an incoming call, a call-answer as call-answered, and so on).
const (
	wireCallInitiate = "call-initiate"
	wireCallAnswer   = "call-answer"
	wireCallReject   = "call-reject"
	wireCallEnd      = "call-end"
	wireCallFailed   = "call-failed"
)

// envelope is one newline-delimited JSON frame on the relay connection.
type envelope struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	From      string `json:"from"`
	FromName  string `json:"from_name,omitempty"`
	To        string `json:"to"`
	Reason    string `json:"reason,omitempty"`
}

// RelayClient speaks the relay's JSON-lines protocol over a single TCP
// connection. It implements Relay for the emit side and pushes inbound
// events into the coordinator's handler.
type RelayClient struct {
	selfID string

	mu   sync.Mutex
	conn net.Conn
	w    *bufio.Writer
}

var _ Relay = (*RelayClient)(nil)

// DialRelay connects to the relay at addr and registers this client under
// selfID. The relay routes envelopes by their "to" field.
func DialRelay(addr, selfID string) (*RelayClient, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	c := &RelayClient{selfID: selfID, conn: conn, w: bufio.NewWriter(conn)}
	if err := c.send(envelope{Type: "hello", From: selfID}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("relay hello: %w", err)
	}
	relayLog.Infof("connected to relay at %s as %s", addr, selfID)
	return c, nil
}

// ReadLoop decodes inbound envelopes and dispatches them until the
// connection closes or ctx is canceled. Malformed frames are skipped.
func (c *RelayClient) ReadLoop(ctx context.Context, handle func(RelayEvent)) error {
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		var env envelope
		if err := json.Unmarshal(scanner.Bytes(), &env); err != nil {
			relayLog.Warnf("skipping malformed relay frame: %v", err)
			continue
		}
		relayLog.Debugf("received relay event: %s", scanner.Text())
		ev, ok := translate(env)
		if !ok {
			continue
		}
		handle(ev)
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("relay read: %w", err)
	}
	return nil
}

// translate maps a wire envelope onto the coordinator's event vocabulary.
func translate(env envelope) (RelayEvent, bool) {
	ev := RelayEvent{
		SessionID: env.SessionID,
		PeerID:    env.From,
		PeerName:  env.FromName,
		Reason:    env.Reason,
	}
	switch env.Type {
	case wireCallInitiate:
		ev.Type = EventIncomingCall
	case wireCallAnswer:
		ev.Type = EventCallAnswered
	case wireCallReject:
		ev.Type = EventCallRejected
	case wireCallEnd:
		ev.Type = EventCallEnded
	case wireCallFailed:
		ev.Type = EventCallFailed
	default:
		return RelayEvent{}, false
	}
	return ev, true
}

// Initiate sends a call invitation to the peer.
func (c *RelayClient) Initiate(sessionID, peerID, callerName string) error {
	return c.send(envelope{Type: wireCallInitiate, SessionID: sessionID, From: c.selfID, FromName: callerName, To: peerID})
}

// Answer notifies the caller that the call was accepted.
func (c *RelayClient) Answer(sessionID, peerID string) error {
	return c.send(envelope{Type: wireCallAnswer, SessionID: sessionID, From: c.selfID, To: peerID})
}

// Reject notifies the caller that the call was declined.
func (c *RelayClient) Reject(sessionID, peerID string) error {
	return c.send(envelope{Type: wireCallReject, SessionID: sessionID, From: c.selfID, To: peerID})
}

// End notifies the peer that the call is over.
func (c *RelayClient) End(sessionID, peerID string) error {
	return c.send(envelope{Type: wireCallEnd, SessionID: sessionID, From: c.selfID, To: peerID})
}

func (c *RelayClient) send(env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("relay connection closed")
	}
	if _, err := c.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("flush envelope: %w", err)
	}
	return nil
}

// Close shuts the relay connection down.
func (c *RelayClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
