package session

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
)

// BreathePhase is the current half of the breathing cycle.
type BreathePhase uint8

const (
	PhaseInhale BreathePhase = iota
	PhaseExhale
)

// Breathe runs a free-running breathing cycle. The peers are not clock
// synchronized: an invite or sync signal triggers each side to run its
// own timer at the variant's period, and drift between them is tolerated
// by design. Approximate co-presence is the goal, not hard sync.
type Breathe struct {
	env Env

	active  bool
	variant signal.BreatheVariant
	phase   BreathePhase

	cycleTimer *time.Timer
	phaseTimer *time.Timer

	// OnPhase, when set, is told about every phase flip so a presentation
	// layer can animate along.
	OnPhase func(phase BreathePhase)
}

// NewBreathe creates an idle breathing machine defaulting to the calm
// variant.
func NewBreathe(env Env) *Breathe {
	return &Breathe{env: env, variant: signal.BreatheCalm}
}

// Active reports whether a cycle is running.
func (b *Breathe) Active() bool { return b.active }

// Variant returns the currently selected cycle variant.
func (b *Breathe) Variant() signal.BreatheVariant { return b.variant }

// Phase returns the current cycle phase.
func (b *Breathe) Phase() BreathePhase { return b.phase }

// Start begins a local cycle and invites the peer to breathe along.
func (b *Breathe) Start(variant signal.BreatheVariant) {
	if b.active {
		return
	}
	if _, valid := map[signal.BreatheVariant]bool{
		signal.BreatheCalm: true, signal.BreatheMeditation: true, signal.BreatheSad: true,
	}[variant]; !valid {
		variant = signal.BreatheCalm
	}

	b.variant = variant
	b.env.emit(signal.CategoryBreathe, signal.ActionInvite, &signal.BreathePayload{Variant: variant})
	b.activate()
}

// Stop ends the local cycle and tells the peer.
func (b *Breathe) Stop() {
	if !b.active {
		return
	}
	b.cancel()
	b.env.emit(signal.CategoryBreathe, signal.ActionStop, nil)
}

// Handle processes an inbound breathe signal.
func (b *Breathe) Handle(sig *signal.Signal) {
	switch sig.Action {
	case signal.ActionInvite, signal.ActionSync:
		if p := sig.Breathe(); p != nil && p.Variant != "" {
			b.variant = p.Variant
		}
		if !b.active {
			b.activate()
		}
	case signal.ActionStop:
		b.cancel()
	}
}

func (b *Breathe) activate() {
	b.active = true

	logrus.WithFields(logrus.Fields{
		"function": "activate",
		"machine":  "breathe",
		"variant":  b.variant,
	}).Debug("Breathing cycle started")

	b.runCycle()
}

// runCycle plays one inhale/exhale pair and schedules the next. Runs on
// the event queue.
func (b *Breathe) runCycle() {
	if !b.active {
		return
	}

	timing := signal.TimingFor(b.variant)

	b.setPhase(PhaseInhale)
	b.env.feedback(haptic.Pulse(timing.Inhale))

	b.phaseTimer = time.AfterFunc(time.Duration(timing.Inhale)*time.Millisecond, func() {
		b.env.post(func() {
			if b.active {
				b.setPhase(PhaseExhale)
			}
		})
	})
	b.cycleTimer = time.AfterFunc(time.Duration(timing.Cycle)*time.Millisecond, func() {
		b.env.post(b.runCycle)
	})
}

func (b *Breathe) setPhase(p BreathePhase) {
	b.phase = p
	if b.OnPhase != nil {
		b.OnPhase(p)
	}
}

// reset returns the machine to its idle defaults, used when the mode is
// exited.
func (b *Breathe) reset() {
	b.cancel()
	b.variant = signal.BreatheCalm
	b.phase = PhaseInhale
}

// cancel ends the cycle without notifying the peer. Dropping the active
// flag makes any already-posted cycle step a no-op.
func (b *Breathe) cancel() {
	b.active = false
	if b.phaseTimer != nil {
		b.phaseTimer.Stop()
		b.phaseTimer = nil
	}
	if b.cycleTimer != nil {
		b.cycleTimer.Stop()
		b.cycleTimer = nil
	}
}
