package main

import "sync"

// PeerDirectory caches peer display names learned from incoming calls and
// placed calls, so history rows and transcript labels stay readable when an
// intent supplies only a peer id.
type PeerDirectory struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewPeerDirectory creates an empty PeerDirectory.
func NewPeerDirectory() *PeerDirectory {
	return &PeerDirectory{names: make(map[string]string)}
}

// Update stores the display name for a peer. Empty names are ignored so a
// later event without a name cannot erase a known one.
func (d *PeerDirectory) Update(peerID, name string) {
	if peerID == "" || name == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[peerID] = name
}

// Resolve returns the cached display name for a peer.
func (d *PeerDirectory) Resolve(peerID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[peerID]
	return name, ok
}
