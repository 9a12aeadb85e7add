package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureStore struct {
	mu      sync.Mutex
	records []CallRecord
	lines   []string
	fail    bool
}

func (s *captureStore) AppendCallRecord(ctx context.Context, rec CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return assert.AnError
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *captureStore) AppendTranscriptLine(ctx context.Context, peerID, body string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return assert.AnError
	}
	s.lines = append(s.lines, body)
	return nil
}

func (s *captureStore) snapshot() ([]CallRecord, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CallRecord(nil), s.records...), append([]string(nil), s.lines...)
}

func TestRecorderWritesBothStores(t *testing.T) {
	store := &captureStore{}
	r := NewRecorder(store, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	r.Record(CallSession{
		ID:       "s1",
		PeerID:   "bob",
		PeerName: "Bob",
		Role:     RoleCaller,
		Outcome:  OutcomeCompleted,
		Duration: 72 * time.Second,
	})

	require.Eventually(t, func() bool {
		recs, lines := store.snapshot()
		return len(recs) == 1 && len(lines) == 1
	}, time.Second, 5*time.Millisecond)

	recs, lines := store.snapshot()
	assert.Equal(t, "s1", recs[0].SessionID)
	assert.Equal(t, OutcomeCompleted, recs[0].Outcome)
	assert.Equal(t, "Call Ended (1m 12s)", lines[0])
	assert.False(t, recs[0].OccurredAt.IsZero())
}

func TestRecorderSwallowsWriteFailures(t *testing.T) {
	history := &captureStore{fail: true}
	transcript := &captureStore{}
	r := NewRecorder(history, transcript)

	// a failing history write must not stop the transcript write
	r.write(context.Background(), CallSession{ID: "s1", PeerID: "bob", Outcome: OutcomeMissed})

	_, lines := transcript.snapshot()
	require.Len(t, lines, 1)
	assert.Equal(t, "Missed Call", lines[0])
}

func TestRecorderFullQueueDrops(t *testing.T) {
	r := NewRecorder(nil, nil)

	// no worker running; overfilling must not block the caller
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(r.queue)+5; i++ {
			r.Record(CallSession{ID: "s", Outcome: OutcomeCompleted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}
}
