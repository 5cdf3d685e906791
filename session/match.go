package session

import (
	"github.com/sirupsen/logrus"

	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
)

// MatchState is the telepathy-match game phase.
type MatchState uint8

const (
	// MatchBriefing shows the rules; no round is running.
	MatchBriefing MatchState = iota
	// MatchPlaying means a round is open and this side has not picked.
	MatchPlaying
	// MatchWaiting means this side picked and awaits the peer.
	MatchWaiting
	// MatchResult means both picks are known.
	MatchResult
)

// noSelection marks an index that has not been picked yet.
const noSelection = -1

// GridSize returns the tile count for a difficulty.
func GridSize(d signal.MatchDifficulty) int {
	switch d {
	case signal.MatchMedium:
		return 9
	case signal.MatchHard:
		return 16
	default:
		return 4
	}
}

// Match is the simultaneous-choice game: both sides pick one tile, and an
// exact index match wins. The machine tolerates the peer's selection
// arriving before the local pick by caching it rather than discarding.
type Match struct {
	env Env

	state      MatchState
	difficulty signal.MatchDifficulty
	local      int
	remote     int

	// OnResult, when set, observes the outcome of each round.
	OnResult func(win bool)
}

// NewMatch creates a match machine in the briefing state.
func NewMatch(env Env) *Match {
	return &Match{
		env:        env,
		difficulty: signal.MatchEasy,
		local:      noSelection,
		remote:     noSelection,
	}
}

// State returns the current game phase.
func (m *Match) State() MatchState { return m.state }

// Difficulty returns the active difficulty.
func (m *Match) Difficulty() signal.MatchDifficulty { return m.difficulty }

// Selections returns the local and remote tile picks, -1 when unpicked.
func (m *Match) Selections() (local, remote int) { return m.local, m.remote }

// StartRound opens a round at the given difficulty and invites the peer,
// forcing both sides into playing with empty selections.
func (m *Match) StartRound(difficulty signal.MatchDifficulty) {
	if difficulty == "" {
		difficulty = signal.MatchEasy
	}
	m.difficulty = difficulty
	m.openRound()
	m.env.emit(signal.CategoryMatch, signal.ActionInvite, &signal.MatchPayload{Difficulty: difficulty})
}

// Select records the local pick and sends it. Picks outside a playing
// round, repeat picks, and out-of-grid indices are ignored.
func (m *Match) Select(index int) {
	if m.state != MatchPlaying {
		return
	}
	if index < 0 || index >= GridSize(m.difficulty) {
		return
	}

	m.local = index
	m.env.feedback(haptic.Pulse(50))
	m.env.emit(signal.CategoryMatch, signal.ActionSelect, &signal.MatchPayload{Index: index})

	if m.remote != noSelection {
		m.finish()
	} else {
		m.state = MatchWaiting
	}
}

// Reset returns both sides to the briefing screen.
func (m *Match) Reset() {
	m.toBriefing()
	m.env.emit(signal.CategoryMatch, signal.ActionReset, nil)
}

// Handle processes an inbound match signal.
func (m *Match) Handle(sig *signal.Signal) {
	switch sig.Action {
	case signal.ActionInvite:
		if p := sig.Match(); p != nil && p.Difficulty != "" {
			m.difficulty = p.Difficulty
		}
		m.openRound()

	case signal.ActionSelect:
		p := sig.Match()
		if p == nil || p.Index < 0 {
			return
		}
		// Cache the peer's pick even when it lands before the local one.
		m.remote = p.Index
		if m.local != noSelection && m.state != MatchResult {
			m.finish()
		}

	case signal.ActionReset:
		m.toBriefing()
	}
}

func (m *Match) openRound() {
	m.state = MatchPlaying
	m.local = noSelection
	m.remote = noSelection
}

func (m *Match) toBriefing() {
	m.state = MatchBriefing
	m.local = noSelection
	m.remote = noSelection
}

// reset returns to the briefing defaults, used when the mode is exited.
func (m *Match) reset() {
	m.toBriefing()
	m.difficulty = signal.MatchEasy
}

func (m *Match) finish() {
	m.state = MatchResult
	win := m.local == m.remote

	logrus.WithFields(logrus.Fields{
		"function": "finish",
		"machine":  "match",
		"local":    m.local,
		"remote":   m.remote,
		"win":      win,
	}).Debug("Match round resolved")

	// Only an exact match earns the long pulse; everything else stays
	// nearly silent.
	if win {
		m.env.feedback(haptic.MatchWin())
	} else {
		m.env.feedback(haptic.MatchMiss())
	}
	if m.OnResult != nil {
		m.OnResult(win)
	}
}
