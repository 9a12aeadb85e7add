package main

import (
	"context"
	"time"
)

// CallRecord is one structured entry in the call history store.
type CallRecord struct {
	SessionID  string
	PeerID     string
	PeerName   string
	Role       CallRole
	Outcome    Outcome
	Duration   time.Duration
	OccurredAt time.Time
}

// HistoryAppender appends call records to the call history store.
type HistoryAppender interface {
	AppendCallRecord(ctx context.Context, rec CallRecord) error
}

// TranscriptAppender appends call-outcome lines to the chat transcript
// shared with a peer.
type TranscriptAppender interface {
	AppendTranscriptLine(ctx context.Context, peerID, body string, at time.Time) error
}

// Recorder turns terminal call sessions into durable history and transcript
// entries. The coordinator enqueues a snapshot and moves on; a worker
// goroutine performs the writes so their latency or failure never reaches
// the state machine. Both writes are best effort.
type Recorder struct {
	history    HistoryAppender
	transcript TranscriptAppender
	queue      chan CallSession
	now        func() time.Time
}

// NewRecorder creates a Recorder writing to the given stores.
func NewRecorder(history HistoryAppender, transcript TranscriptAppender) *Recorder {
	return &Recorder{
		history:    history,
		transcript: transcript,
		queue:      make(chan CallSession, 16),
		now:        time.Now,
	}
}

// Start runs the write loop until ctx is canceled.
func (r *Recorder) Start(ctx context.Context) {
	for {
		select {
		case s := <-r.queue:
			r.write(ctx, s)
		case <-ctx.Done():
			return
		}
	}
}

// Record enqueues one finished session. The coordinator guarantees at most
// one call per session id; a full queue drops the entry rather than block.
func (r *Recorder) Record(s CallSession) {
	select {
	case r.queue <- s:
	default:
		coreLog.Warnf("recorder queue full, dropping entry for session %s", s.ID)
	}
}

func (r *Recorder) write(ctx context.Context, s CallSession) {
	rec := CallRecord{
		SessionID:  s.ID,
		PeerID:     s.PeerID,
		PeerName:   s.PeerName,
		Role:       s.Role,
		Outcome:    s.Outcome,
		Duration:   s.Duration,
		OccurredAt: r.now(),
	}
	if r.history != nil {
		if err := r.history.AppendCallRecord(ctx, rec); err != nil {
			coreLog.Warnf("history write failed for session %s: %v", s.ID, err)
		}
	}
	if r.transcript != nil {
		if err := r.transcript.AppendTranscriptLine(ctx, s.PeerID, s.transcriptLine(), rec.OccurredAt); err != nil {
			coreLog.Warnf("transcript write failed for session %s: %v", s.ID, err)
		}
	}
}
