// Package haptic defines the feedback boundary. The core describes what a
// signal should feel like as a Pattern of alternating on/off durations;
// how that is rendered (real vibration, a visual cue, nothing at all) is
// entirely the Sink implementation's concern.
package haptic

// Pattern is a vibration pattern: alternating on/off durations in
// milliseconds, starting with an "on" segment. A single-element pattern is
// one continuous pulse.
type Pattern []int

// Sink renders feedback. Implementations must be safe for concurrent use;
// the core fires patterns from its event loop and from session timers.
type Sink interface {
	Emit(p Pattern)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(p Pattern)

func (f SinkFunc) Emit(p Pattern) { f(p) }

// Discard is a Sink that drops every pattern.
var Discard Sink = SinkFunc(func(Pattern) {})

const (
	tapOnMs  = 80
	tapOffMs = 60

	// DefaultHoldMs substitutes for a missing hold duration.
	DefaultHoldMs = 1000

	// MaxHoldMs clamps hold durations so a stuck reading cannot buzz the
	// device indefinitely.
	MaxHoldMs = 3000
)

// Tap returns the feedback for a burst of count taps: one short buzz per
// tap with a small gap between them.
func Tap(count int) Pattern {
	if count < 1 {
		count = 1
	}
	p := make(Pattern, 0, count*2)
	for i := 0; i < count; i++ {
		p = append(p, tapOnMs, tapOffMs)
	}
	return p
}

// Hold returns one continuous pulse matching the hold duration, clamped so
// a stuck reading cannot buzz the device indefinitely.
func Hold(durationMs int) Pattern {
	if durationMs < 1 {
		durationMs = DefaultHoldMs
	}
	if durationMs > MaxHoldMs {
		durationMs = MaxHoldMs
	}
	return Pattern{durationMs}
}

// Pulse returns a single pulse of the given length.
func Pulse(durationMs int) Pattern {
	return Pattern{durationMs}
}

// HeartbeatPulse is the double-thump felt for each heartbeat signal.
func HeartbeatPulse() Pattern {
	return Pattern{50, 100, 50}
}

// MatchWin is the long celebration pulse for an exact telepathy match.
func MatchWin() Pattern {
	return Pattern{1000}
}

// MatchMiss is the minimal acknowledgment for a failed match.
func MatchMiss() Pattern {
	return Pattern{50}
}

// GameOver is the completion feedback for the shared board game: a gentle
// celebration for a decided game, a single bump for a draw.
func GameOver(decided bool) Pattern {
	if decided {
		return Pattern{40, 60, 40}
	}
	return Pattern{30}
}
