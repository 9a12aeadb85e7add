package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCallDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0s"},
		{"seconds only", 45 * time.Second, "45s"},
		{"minutes and seconds", 72 * time.Second, "1m 12s"},
		{"exact minute", 2 * time.Minute, "2m 0s"},
		{"sub-second rounds", 1500 * time.Millisecond, "2s"},
		{"negative clamps", -5 * time.Second, "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCallDuration(tt.d))
		})
	}
}

func TestTranscriptLine(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		duration time.Duration
		want     string
	}{
		{OutcomeCompleted, 72 * time.Second, "Call Ended (1m 12s)"},
		{OutcomeMissed, 0, "Missed Call"},
		{OutcomeNoAnswer, 0, "No Answer"},
		{OutcomeDeclined, 0, "Call Declined"},
		{OutcomeCancelled, 0, "Call Cancelled"},
	}
	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			s := &CallSession{Outcome: tt.outcome, Duration: tt.duration}
			assert.Equal(t, tt.want, s.transcriptLine())
		})
	}
}

func TestCallStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "ringing", StateRinging.String())
	assert.Equal(t, "calling", StateCalling.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "terminating", StateTerminating.String())
}
