// Package gatekeeper implements the single entry point for every inbound
// decoded signal. Each gate is hard: a signal that fails one is dropped
// and never reaches a session handler. The order is fixed: self-echo
// suppression, contact allowlist, invite flood control, category dispatch,
// and finally the feedback whitelist.
package gatekeeper

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
)

// DefaultInviteGap is the minimum time between invite-class signals
// accepted from the same contact for the same category.
const DefaultInviteGap = 2 * time.Second

// Drop reasons. Callers treat any of these as "discard silently"; the
// sentinels exist so behavior is assertable, not so anyone surfaces them.
var (
	// ErrSelfEcho marks a device receiving its own published signal back
	// through shared-channel semantics.
	ErrSelfEcho = errors.New("gatekeeper: own signal echoed back")

	// ErrUnauthorizedSender marks a sender absent from the contact list.
	ErrUnauthorizedSender = errors.New("gatekeeper: sender not in contacts")

	// ErrInviteFlood marks a repeat invite inside the per-contact window.
	ErrInviteFlood = errors.New("gatekeeper: invite repeated too quickly")

	// ErrNoHandler marks a category nothing is registered for.
	ErrNoHandler = errors.New("gatekeeper: no handler for category")
)

// Handler consumes a signal that passed every gate for its category.
type Handler func(sig *signal.Signal)

// Config wires a Gatekeeper.
type Config struct {
	// SelfUID and SelfCode identify the local device. SelfUID is
	// authoritative for echo suppression; SelfCode is the fallback for
	// peers that omit the unique id.
	SelfUID  string
	SelfCode string

	// Allow is the contact allowlist check, keyed by pairing code.
	Allow func(pairCode string) bool

	// Feedback receives the haptic patterns the whitelist permits.
	Feedback haptic.Sink

	InviteGap time.Duration

	// Now is injectable for flood-window tests.
	Now func() time.Time
}

// Gatekeeper validates and routes inbound signals.
type Gatekeeper struct {
	cfg      Config
	mu       sync.Mutex
	handlers map[signal.Category]Handler

	// lastInvite tracks the most recent accepted invite per sender and
	// category for flood control.
	lastInvite map[string]time.Time
}

// New creates a Gatekeeper.
func New(cfg Config) *Gatekeeper {
	if cfg.InviteGap <= 0 {
		cfg.InviteGap = DefaultInviteGap
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Feedback == nil {
		cfg.Feedback = haptic.Discard
	}
	if cfg.Allow == nil {
		cfg.Allow = func(string) bool { return false }
	}
	return &Gatekeeper{
		cfg:        cfg,
		handlers:   make(map[signal.Category]Handler),
		lastInvite: make(map[string]time.Time),
	}
}

// Register installs the handler for a category, replacing any previous
// one.
func (g *Gatekeeper) Register(category signal.Category, handler Handler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[category] = handler
}

// Process runs a decoded signal through every gate in order. A nil return
// means the signal was dispatched; any error means it was dropped and
// reports why.
func (g *Gatekeeper) Process(sig *signal.Signal) error {
	if g.isSelfEcho(sig) {
		return ErrSelfEcho
	}

	if sig.SenderCode != signal.SystemSender && !g.cfg.Allow(sig.SenderCode) {
		logrus.WithFields(logrus.Fields{
			"function":    "Process",
			"sender_code": sig.SenderCode,
			"category":    sig.Category,
			"action":      sig.Action,
		}).Warn("Dropped signal from unknown sender")
		return ErrUnauthorizedSender
	}

	if sig.Action.IsInvite() && !g.admitInvite(sig) {
		logrus.WithFields(logrus.Fields{
			"function":    "Process",
			"sender_code": sig.SenderCode,
			"category":    sig.Category,
		}).Debug("Dropped invite inside flood window")
		return ErrInviteFlood
	}

	g.mu.Lock()
	handler := g.handlers[sig.Category]
	g.mu.Unlock()
	if handler == nil {
		logrus.WithFields(logrus.Fields{
			"function": "Process",
			"category": sig.Category,
		}).Debug("No handler registered for category")
		return ErrNoHandler
	}
	handler(sig)

	if pattern, ok := FeedbackFor(sig); ok {
		g.cfg.Feedback.Emit(pattern)
	}
	return nil
}

// isSelfEcho applies the identity rules: the unique id decides when both
// sides carry one, otherwise the pairing code does.
func (g *Gatekeeper) isSelfEcho(sig *signal.Signal) bool {
	if sig.SenderUID != "" && g.cfg.SelfUID != "" {
		return sig.SenderUID == g.cfg.SelfUID
	}
	return sig.SenderCode == g.cfg.SelfCode
}

func (g *Gatekeeper) admitInvite(sig *signal.Signal) bool {
	key := sig.SenderCode + "|" + string(sig.Category)
	now := g.cfg.Now()

	g.mu.Lock()
	defer g.mu.Unlock()
	if last, ok := g.lastInvite[key]; ok && now.Sub(last) < g.cfg.InviteGap {
		return false
	}
	g.lastInvite[key] = now
	return true
}

// FeedbackFor returns the haptic pattern a signal is allowed to trigger.
// The whitelist is a hard behavioral contract: only touch.data,
// heartbeat.data within the pulse cap, and invite-class actions may ever
// produce feedback. Everything else is silent, chat above all.
func FeedbackFor(sig *signal.Signal) (haptic.Pattern, bool) {
	if sig.Action.IsInvite() {
		return haptic.Pulse(100), true
	}

	switch sig.Category {
	case signal.CategoryTouch:
		if sig.Action != signal.ActionData {
			return nil, false
		}
		p := sig.Touch()
		if p == nil {
			return nil, false
		}
		switch p.Type {
		case signal.TouchTap:
			return haptic.Tap(p.Count), true
		case signal.TouchHold:
			return haptic.Hold(p.DurationMs), true
		case signal.TouchPattern:
			return haptic.Pattern(p.PatternData), true
		}

	case signal.CategoryHeartbeat:
		if sig.Action != signal.ActionData {
			return nil, false
		}
		p := sig.Heartbeat()
		if p == nil || p.Count > 10 {
			// A peer violating the pulse cap gets no feedback for the
			// excess.
			return nil, false
		}
		return haptic.HeartbeatPulse(), true
	}

	return nil, false
}
