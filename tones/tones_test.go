package tones

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriverPlayAndStop(t *testing.T) {
	d := NewDriver().(*driver)

	mode, active := d.Active()
	assert.False(t, active)

	d.Play(ModeRing)
	mode, active = d.Active()
	assert.True(t, active)
	assert.Equal(t, ModeRing, mode)

	d.Play(ModeDial)
	mode, active = d.Active()
	assert.True(t, active)
	assert.Equal(t, ModeDial, mode)

	d.Stop()
	_, active = d.Active()
	assert.False(t, active)
}

func TestStopIsIdempotent(t *testing.T) {
	d := NewDriver().(*driver)

	// stopping an idle driver, and stopping twice, must both be no-ops
	d.Stop()
	d.Play(ModeRing)
	d.Stop()
	d.Stop()

	_, active := d.Active()
	assert.False(t, active)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "ring", ModeRing.String())
	assert.Equal(t, "dial", ModeDial.String())
}
