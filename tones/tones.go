// Package tones drives the local call feedback: the ring tone and vibration
// for incoming calls and the dial tone while an outgoing call waits to be
// answered. Actual playback is delegated to the platform; this package owns
// the start/stop discipline.
package tones

// Mode selects which feedback pattern to play.
type Mode int

const (
	// ModeRing is the incoming-call pattern: ring tone plus vibration.
	ModeRing Mode = iota
	// ModeDial is the outgoing-call pattern: dial tone only.
	ModeDial
)

func (m Mode) String() string {
	switch m {
	case ModeRing:
		return "ring"
	case ModeDial:
		return "dial"
	default:
		return "unknown"
	}
}

// Driver starts and stops call feedback. Stop is idempotent: stopping an
// idle driver is a no-op, never an error.
type Driver interface {
	Play(mode Mode)
	Stop()
}

// NewDriver creates the platform feedback driver.
func NewDriver() Driver {
	return newDriver()
}
