package tones

import "sync"

// driver tracks what is currently playing. Headless builds stop here; a
// platform build layers real tone and vibration playback on top of the same
// state tracking.
type driver struct {
	mu      sync.Mutex
	playing bool
	mode    Mode
}

func newDriver() Driver { return &driver{} }

func (d *driver) Play(mode Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = true
	d.mode = mode
}

func (d *driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
}

// Active reports whether feedback is currently playing and in which mode.
func (d *driver) Active() (Mode, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode, d.playing
}
