package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateEnvelopes(t *testing.T) {
	tests := []struct {
		name     string
		env      envelope
		want     RelayEvent
		wantDrop bool
	}{
		{
			name: "initiate becomes incoming call",
			env:  envelope{Type: "call-initiate", SessionID: "s1", From: "bob", FromName: "Bob"},
			want: RelayEvent{Type: EventIncomingCall, SessionID: "s1", PeerID: "bob", PeerName: "Bob"},
		},
		{
			name: "answer becomes answered",
			env:  envelope{Type: "call-answer", SessionID: "s1", From: "bob"},
			want: RelayEvent{Type: EventCallAnswered, SessionID: "s1", PeerID: "bob"},
		},
		{
			name: "reject becomes rejected",
			env:  envelope{Type: "call-reject", SessionID: "s1", From: "bob"},
			want: RelayEvent{Type: EventCallRejected, SessionID: "s1", PeerID: "bob"},
		},
		{
			name: "end becomes ended",
			env:  envelope{Type: "call-end", SessionID: "s1", From: "bob"},
			want: RelayEvent{Type: EventCallEnded, SessionID: "s1", PeerID: "bob"},
		},
		{
			name: "failed carries reason",
			env:  envelope{Type: "call-failed", SessionID: "s1", Reason: "peer offline"},
			want: RelayEvent{Type: EventCallFailed, SessionID: "s1", Reason: "peer offline"},
		},
		{
			name:     "unknown type dropped",
			env:      envelope{Type: "presence", SessionID: "s1"},
			wantDrop: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := translate(tt.env)
			if tt.wantDrop {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestRelayClientOverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverFrames := make(chan envelope, 4)
	serverConn := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		serverConn <- conn
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			var env envelope
			if json.Unmarshal(scanner.Bytes(), &env) == nil {
				serverFrames <- env
			}
		}
	}()

	client, err := DialRelay(ln.Addr().String(), "alice")
	require.NoError(t, err)
	defer client.Close()

	// the hello frame registers the client
	select {
	case env := <-serverFrames:
		assert.Equal(t, "hello", env.Type)
		assert.Equal(t, "alice", env.From)
	case <-time.After(time.Second):
		t.Fatal("no hello frame received")
	}

	require.NoError(t, client.Initiate("s1", "bob", "Alice"))
	select {
	case env := <-serverFrames:
		assert.Equal(t, "call-initiate", env.Type)
		assert.Equal(t, "s1", env.SessionID)
		assert.Equal(t, "alice", env.From)
		assert.Equal(t, "Alice", env.FromName)
		assert.Equal(t, "bob", env.To)
	case <-time.After(time.Second):
		t.Fatal("no call-initiate frame received")
	}

	// inbound frames reach the handler translated
	events := make(chan RelayEvent, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.ReadLoop(ctx, func(ev RelayEvent) { events <- ev })

	conn := <-serverConn
	frame, _ := json.Marshal(envelope{Type: "call-answer", SessionID: "s1", From: "bob"})
	_, err = conn.Write(append(frame, '\n'))
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, EventCallAnswered, ev.Type)
		assert.Equal(t, "s1", ev.SessionID)
		assert.Equal(t, "bob", ev.PeerID)
	case <-time.After(time.Second):
		t.Fatal("no event delivered to handler")
	}
}

func TestRelayClientSendAfterClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			if _, err := ln.Accept(); err != nil {
				return
			}
		}
	}()

	client, err := DialRelay(ln.Addr().String(), "alice")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	assert.Error(t, client.End("s1", "bob"))
}
