package main

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"foundcall/tones"
)

var (
	ErrCallInProgress = errors.New("another call is already in progress")
	ErrNoIncomingCall = errors.New("no incoming call to answer")
	ErrNotInCall      = errors.New("no active call")
)

const (
	defaultRingTimeout  = 30 * time.Second
	defaultNoticeWindow = 2 * time.Second
)

// CoordinatorConfig carries the tunables for a Coordinator.
type CoordinatorConfig struct {
	// SelfName is the display name sent with outgoing call invitations.
	SelfName string
	// RingTimeout bounds how long an unanswered call rings on either side.
	RingTimeout time.Duration
	// NoticeWindow is how long a finished session lingers in terminating
	// state before the slot is cleared.
	NoticeWindow time.Duration
	// OnNotice, when set, receives the short status line produced by every
	// terminal transition ("No Answer", "Line Busy", ...).
	OnNotice func(text string)
}

// Coordinator owns the single active call session and drives its state
// machine. Local intents, relay events and timer expiries are serialized by
// an internal mutex; every transition runs to completion before the next one
// is admitted.
type Coordinator struct {
	relay    Relay
	feedback tones.Driver
	recorder *Recorder
	peers    *PeerDirectory

	selfName     string
	ringTimeout  time.Duration
	noticeWindow time.Duration
	onNotice     func(string)

	// now is swappable so scenario tests can pin the clock.
	now func() time.Time

	mu      sync.Mutex
	session *CallSession
	timer   *time.Timer
}

// NewCoordinator creates a Coordinator wired to the given collaborators.
func NewCoordinator(cfg CoordinatorConfig, relay Relay, feedback tones.Driver, recorder *Recorder, peers *PeerDirectory) *Coordinator {
	if cfg.RingTimeout <= 0 {
		cfg.RingTimeout = defaultRingTimeout
	}
	if cfg.NoticeWindow <= 0 {
		cfg.NoticeWindow = defaultNoticeWindow
	}
	return &Coordinator{
		relay:        relay,
		feedback:     feedback,
		recorder:     recorder,
		peers:        peers,
		selfName:     cfg.SelfName,
		ringTimeout:  cfg.RingTimeout,
		noticeWindow: cfg.NoticeWindow,
		onNotice:     cfg.OnNotice,
		now:          time.Now,
	}
}

// PlaceCall starts an outgoing call to the given peer and returns the minted
// session id. The local transition applies even when the relay emit fails;
// the peer is simply never notified and the ring timeout resolves the call.
func (c *Coordinator) PlaceCall(peerID, peerName string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return "", ErrCallInProgress
	}
	if peerName == "" && c.peers != nil {
		if name, ok := c.peers.Resolve(peerID); ok {
			peerName = name
		}
	}

	s := &CallSession{
		ID:        uuid.NewString(),
		PeerID:    peerID,
		PeerName:  peerName,
		Role:      RoleCaller,
		State:     StateCalling,
		StartedAt: c.now(),
	}
	c.session = s
	if c.peers != nil {
		c.peers.Update(peerID, peerName)
	}

	callLog.Infof("placing call %s to %s", s.ID, peerID)
	if err := c.relay.Initiate(s.ID, peerID, c.selfName); err != nil {
		callLog.Warnf("call-initiate emit failed for %s: %v", s.ID, err)
	}
	c.armTimerLocked(s.ID)
	c.feedback.Play(tones.ModeDial)
	return s.ID, nil
}

// AcceptIncoming answers the currently ringing incoming call.
func (c *Coordinator) AcceptIncoming() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.State != StateRinging {
		return ErrNoIncomingCall
	}
	c.cancelTimerLocked()
	s.State = StateConnected
	if s.ConnectedAt.IsZero() {
		s.ConnectedAt = c.now()
	}
	callLog.Infof("answered call %s from %s", s.ID, s.PeerID)
	if err := c.relay.Answer(s.ID, s.PeerID); err != nil {
		callLog.Warnf("call-answer emit failed for %s: %v", s.ID, err)
	}
	c.feedback.Stop()
	return nil
}

// RejectIncoming declines the currently ringing incoming call. The rejecting
// side writes no history entry; the caller records the declined call on its
// own device when call-rejected arrives there.
func (c *Coordinator) RejectIncoming() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.State != StateRinging {
		return ErrNoIncomingCall
	}
	c.cancelTimerLocked()
	callLog.Infof("rejected call %s from %s", s.ID, s.PeerID)
	if err := c.relay.Reject(s.ID, s.PeerID); err != nil {
		callLog.Warnf("call-reject emit failed for %s: %v", s.ID, err)
	}
	c.finishLocked(s, OutcomeDeclined, false, "Call Declined")
	return nil
}

// HangUp terminates the active call: cancelled while still dialing,
// completed once connected.
func (c *Coordinator) HangUp() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return ErrNotInCall
	}
	switch s.State {
	case StateCalling:
		if err := c.relay.End(s.ID, s.PeerID); err != nil {
			callLog.Warnf("call-end emit failed for %s: %v", s.ID, err)
		}
		c.finishLocked(s, OutcomeCancelled, true, "Call Cancelled")
	case StateConnected:
		if err := c.relay.End(s.ID, s.PeerID); err != nil {
			callLog.Warnf("call-end emit failed for %s: %v", s.ID, err)
		}
		c.finishLocked(s, OutcomeCompleted, true, "Call Ended")
	default:
		return ErrNotInCall
	}
	return nil
}

// HandleRelayEvent feeds one inbound signaling event into the state machine.
// Events whose session id does not match the active session are dropped.
func (c *Coordinator) HandleRelayEvent(ev RelayEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Type == EventIncomingCall {
		c.handleIncomingLocked(ev)
		return
	}

	s := c.session
	if s == nil || s.ID != ev.SessionID {
		callLog.Debugf("dropping stray relay event %s for session %s", ev.Type, ev.SessionID)
		return
	}

	switch ev.Type {
	case EventCallAnswered:
		if s.State != StateCalling {
			return
		}
		c.cancelTimerLocked()
		s.State = StateConnected
		if s.ConnectedAt.IsZero() {
			s.ConnectedAt = c.now()
		}
		c.feedback.Stop()
		callLog.Infof("call %s answered by %s", s.ID, s.PeerID)

	case EventCallRejected:
		if s.State != StateCalling {
			return
		}
		c.finishLocked(s, OutcomeDeclined, true, "Line Busy")

	case EventCallEnded:
		switch s.State {
		case StateConnected:
			c.finishLocked(s, OutcomeCompleted, true, "Call Ended")
		case StateRinging:
			// The caller gave up before we answered.
			c.finishLocked(s, OutcomeMissed, true, "Missed Call")
		}

	case EventCallFailed:
		if s.State == StateTerminating {
			return
		}
		notice := ev.Reason
		if notice == "" {
			notice = "Call Failed"
		}
		c.finishLocked(s, OutcomeFailed, false, notice)
	}
}

func (c *Coordinator) handleIncomingLocked(ev RelayEvent) {
	if c.session != nil {
		// Concurrent calls are not modeled; the caller's own ring timeout
		// resolves the attempt.
		callLog.Warnf("ignoring incoming call %s from %s: session %s is active", ev.SessionID, ev.PeerID, c.session.ID)
		return
	}
	s := &CallSession{
		ID:        ev.SessionID,
		PeerID:    ev.PeerID,
		PeerName:  ev.PeerName,
		Role:      RoleCallee,
		State:     StateRinging,
		StartedAt: c.now(),
	}
	c.session = s
	if c.peers != nil {
		c.peers.Update(ev.PeerID, ev.PeerName)
	}
	c.armTimerLocked(s.ID)
	c.feedback.Play(tones.ModeRing)
	callLog.Infof("incoming call %s from %s (%s)", s.ID, s.PeerID, s.PeerName)
}

// handleTimeout fires when a ringing or dialing session goes unanswered.
// The session id check drops expiries that were already in flight when the
// timer was cancelled.
func (c *Coordinator) handleTimeout(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || s.ID != sessionID {
		return
	}
	switch s.State {
	case StateRinging:
		c.finishLocked(s, OutcomeMissed, true, "Missed Call")
	case StateCalling:
		if err := c.relay.End(s.ID, s.PeerID); err != nil {
			callLog.Warnf("call-end emit failed for %s: %v", s.ID, err)
		}
		c.finishLocked(s, OutcomeNoAnswer, true, "No Answer")
	}
}

// finishLocked moves the session into terminating state, records it at most
// once, and schedules the slot to be cleared after the notice window.
func (c *Coordinator) finishLocked(s *CallSession, outcome Outcome, writeLog bool, notice string) {
	c.cancelTimerLocked()
	s.State = StateTerminating
	s.Outcome = outcome
	if !s.ConnectedAt.IsZero() {
		s.Duration = c.now().Sub(s.ConnectedAt)
	}
	c.feedback.Stop()
	if writeLog && !s.logged {
		s.logged = true
		if c.recorder != nil {
			c.recorder.Record(*s)
		}
	}
	if notice != "" && c.onNotice != nil {
		go c.onNotice(notice)
	}
	callLog.Infof("call %s finished: %s", s.ID, outcome)

	sessionID := s.ID
	time.AfterFunc(c.noticeWindow, func() { c.clearSession(sessionID) })
}

func (c *Coordinator) clearSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.ID == sessionID {
		callLog.Debugf("clearing session %s", sessionID)
		c.session = nil
	}
}

func (c *Coordinator) armTimerLocked(sessionID string) {
	c.cancelTimerLocked()
	c.timer = time.AfterFunc(c.ringTimeout, func() { c.handleTimeout(sessionID) })
}

func (c *Coordinator) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// State reports the current call state, StateIdle when no session exists.
func (c *Coordinator) State() CallState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return StateIdle
	}
	return c.session.State
}

// ActiveSession returns a copy of the current session, if any.
func (c *Coordinator) ActiveSession() (CallSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return CallSession{}, false
	}
	return *c.session, true
}
