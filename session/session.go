// Package session implements the per-mode state machines that ride on top
// of the signal protocol: Heartbeat, Breathe, Draw, Telepathy-Match, and
// the shared board game. Each machine has local authority over its own
// haptic output and keeps only a mirrored, non-authoritative copy of the
// remote side's state; the two peers stay loosely synchronized and each
// tolerates the other joining, leaving, or restarting at any point.
//
// Machines never touch the transport or the clock directly. Outbound
// signals go through the injected Emitter, feedback through the haptic
// sink, and every timer fires back through Post so all state mutation
// stays serialized on the device's event queue.
package session

import (
	"github.com/sirupsen/logrus"

	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
)

// Emitter publishes one outbound signal of the active session to the
// paired contact. Delivery is fire-and-forget; failures surface to the
// local caller elsewhere and are never retried here.
type Emitter func(category signal.Category, action signal.Action, payload signal.Payload)

// Env is the collaborator set injected into every machine.
type Env struct {
	Emit     Emitter
	Feedback haptic.Sink

	// Post serializes a timer-driven step onto the owning device's event
	// queue. Machines schedule wall-clock timers freely but only mutate
	// state from inside a posted function.
	Post func(fn func())
}

func (e Env) emit(category signal.Category, action signal.Action, payload signal.Payload) {
	if e.Emit != nil {
		e.Emit(category, action, payload)
	}
}

func (e Env) feedback(p haptic.Pattern) {
	if e.Feedback != nil {
		e.Feedback.Emit(p)
	}
}

func (e Env) post(fn func()) {
	if e.Post != nil {
		e.Post(fn)
	} else {
		fn()
	}
}

// Mode is the explicitly tracked active session machine. Exactly one mode
// is active per session; entering a mode resets the previous mode's
// machine so no state or background activity leaks across an exit.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeHeartbeat
	ModeDraw
	ModeBreathe
	ModeMatch
	ModeTicTacToe
)

// String returns the mode name for logging.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeHeartbeat:
		return "heartbeat"
	case ModeDraw:
		return "draw"
	case ModeBreathe:
		return "breathe"
	case ModeMatch:
		return "match"
	case ModeTicTacToe:
		return "tictactoe"
	}
	return "unknown"
}

// modeFor maps an inbound category to the mode that owns it.
func modeFor(category signal.Category) (Mode, bool) {
	switch category {
	case signal.CategoryHeartbeat:
		return ModeHeartbeat, true
	case signal.CategoryDraw:
		return ModeDraw, true
	case signal.CategoryBreathe:
		return ModeBreathe, true
	case signal.CategoryMatch:
		return ModeMatch, true
	case signal.CategoryTicTacToe:
		return ModeTicTacToe, true
	}
	return ModeNone, false
}

// Controller owns the machines for one paired session and the explicit
// active-mode state. Inbound signals for a mode other than the active one
// switch modes only on invite-class actions; anything else for an
// inactive mode is ignored, mirroring how a peer cannot yank this device
// into a session it never joined.
type Controller struct {
	env  Env
	mode Mode

	Heartbeat *Heartbeat
	Breathe   *Breathe
	Draw      *Draw
	Match     *Match
	TicTacToe *TicTacToe
}

// NewController builds the machine set for a session between the local
// device and one contact. myCode and theirCode fix the deterministic
// board-game role assignment.
func NewController(env Env, myCode, theirCode string) *Controller {
	return &Controller{
		env:       env,
		Heartbeat: NewHeartbeat(env),
		Breathe:   NewBreathe(env),
		Draw:      NewDraw(env),
		Match:     NewMatch(env),
		TicTacToe: NewTicTacToe(env, myCode, theirCode),
	}
}

// ActiveMode returns the currently active mode.
func (c *Controller) ActiveMode() Mode { return c.mode }

// EnterMode activates a mode, resetting the previous mode's machine and
// cancelling its pending timers. Entering the already-active mode is a
// no-op. EnterMode only switches; announcing the switch to the peer is
// the job of the machine's entry point (Heartbeat.Start, Draw.Start,
// Breathe.Start, Match.StartRound, TicTacToe.Start), which emits the
// invite that flips the peer into the same mode.
func (c *Controller) EnterMode(mode Mode) {
	if mode == c.mode {
		return
	}

	c.resetMachine(c.mode)
	prev := c.mode
	c.mode = mode

	logrus.WithFields(logrus.Fields{
		"function": "EnterMode",
		"from":     prev.String(),
		"to":       mode.String(),
	}).Debug("Session mode changed")
}

// Close exits the session entirely, cancelling all pending timers.
func (c *Controller) Close() {
	c.EnterMode(ModeNone)
}

// resetMachine returns the exited mode's machine to its initial state.
// Timers must die with the mode, and re-entering later starts fresh
// instead of resuming a stale round or board.
func (c *Controller) resetMachine(mode Mode) {
	switch mode {
	case ModeHeartbeat:
		c.Heartbeat.reset()
	case ModeBreathe:
		c.Breathe.reset()
	case ModeDraw:
		c.Draw.reset()
	case ModeMatch:
		c.Match.reset()
	case ModeTicTacToe:
		c.TicTacToe.clear()
	}
}

// HandleSignal routes one validated, authorized inbound signal to its
// machine. Signals for inactive modes are only honored when they carry an
// invite (which switches the controller into that mode first); the rest
// are silently ignored. Wrong-category signals never error: these are
// best-effort conveniences, not transactions.
func (c *Controller) HandleSignal(sig *signal.Signal) {
	mode, ok := modeFor(sig.Category)
	if !ok {
		return
	}

	if c.mode != mode {
		if !sig.Action.IsInvite() {
			return
		}
		c.EnterMode(mode)
	}

	switch mode {
	case ModeHeartbeat:
		c.Heartbeat.Handle(sig)
	case ModeBreathe:
		c.Breathe.Handle(sig)
	case ModeDraw:
		c.Draw.Handle(sig)
	case ModeMatch:
		c.Match.Handle(sig)
	case ModeTicTacToe:
		c.TicTacToe.Handle(sig)
	}
}
