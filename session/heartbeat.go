package session

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
)

const (
	// HeartbeatMaxPulses caps one activation: a sender never emits more
	// than this many data signals before forcing itself back to idle.
	HeartbeatMaxPulses = 10

	// HeartbeatPeriod is the gap between pulses.
	HeartbeatPeriod = time.Second
)

// HeartbeatState is the machine's local activation state.
type HeartbeatState uint8

const (
	HeartbeatIdle HeartbeatState = iota
	HeartbeatActive
)

// Heartbeat sends a capped train of pulse signals, one per period, each
// felt locally and mirrored to the peer. The peer's own train is tracked
// only as a remote-active flag; neither side is authoritative over the
// other.
type Heartbeat struct {
	env Env

	period time.Duration
	state  HeartbeatState
	count  int
	timer  *time.Timer

	remoteActive bool
}

// NewHeartbeat creates an idle heartbeat machine.
func NewHeartbeat(env Env) *Heartbeat {
	return &Heartbeat{env: env, period: HeartbeatPeriod}
}

// State returns the local activation state.
func (h *Heartbeat) State() HeartbeatState { return h.state }

// RemoteActive reports whether the peer's train is currently mirrored as
// running.
func (h *Heartbeat) RemoteActive() bool { return h.remoteActive }

// Start begins a pulse train, inviting the peer into heartbeat mode
// first. The first pulse fires immediately; the train self-terminates
// after HeartbeatMaxPulses with a stop signal. Starting while already
// active is a no-op.
func (h *Heartbeat) Start() {
	if h.state == HeartbeatActive {
		return
	}
	h.state = HeartbeatActive
	h.count = 0

	logrus.WithFields(logrus.Fields{
		"function": "Start",
		"machine":  "heartbeat",
	}).Debug("Heartbeat train started")

	h.env.emit(signal.CategoryHeartbeat, signal.ActionInvite, nil)
	h.beat()
}

// Stop ends the local train, telling the peer so.
func (h *Heartbeat) Stop() {
	if h.state == HeartbeatIdle {
		return
	}
	h.cancel()
	h.env.emit(signal.CategoryHeartbeat, signal.ActionStop, nil)
}

// Handle processes an inbound heartbeat signal.
func (h *Heartbeat) Handle(sig *signal.Signal) {
	switch sig.Action {
	case signal.ActionInvite, signal.ActionData:
		// The pulse's haptic is the gatekeeper whitelist's business; the
		// machine only mirrors that the peer is pulsing.
		h.remoteActive = true
	case signal.ActionStop:
		h.remoteActive = false
		// A remote stop also forces the local side back to idle without
		// echoing another stop, so the exchange cannot ping-pong.
		if h.state == HeartbeatActive {
			h.cancel()
		}
	}
}

// beat emits one pulse and schedules the next. Runs on the event queue.
func (h *Heartbeat) beat() {
	if h.state != HeartbeatActive {
		return
	}

	h.count++
	if h.count > HeartbeatMaxPulses {
		h.state = HeartbeatIdle
		h.env.emit(signal.CategoryHeartbeat, signal.ActionStop, nil)
		return
	}

	h.env.emit(signal.CategoryHeartbeat, signal.ActionData, &signal.HeartbeatPayload{Count: h.count})
	h.env.feedback(haptic.HeartbeatPulse())

	h.timer = time.AfterFunc(h.period, func() {
		h.env.post(h.beat)
	})
}

// cancel drops back to idle without notifying the peer. Clearing the
// state here matters: a tick already posted to the event queue re-checks
// the state and becomes a no-op instead of reviving the train.
func (h *Heartbeat) cancel() {
	h.state = HeartbeatIdle
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

// reset returns the machine to its initial state, used when the mode is
// exited.
func (h *Heartbeat) reset() {
	h.cancel()
	h.count = 0
	h.remoteActive = false
}
