package signal

import "fmt"

// Payload is the category-specific body of a signal. Each category has its
// own concrete type with its own required fields, rather than one flat
// struct full of optional properties.
type Payload interface {
	Category() Category
}

// TouchType distinguishes the three touch gestures.
type TouchType string

const (
	TouchTap     TouchType = "tap"
	TouchHold    TouchType = "hold"
	TouchPattern TouchType = "pattern"
)

// TouchPayload carries a tap burst, a hold, or a recorded vibration
// pattern, optionally with a short whisper text shown alongside.
type TouchPayload struct {
	Type         TouchType
	Count        int   // taps in the burst, tap only
	DurationMs   int   // hold length, hold only
	PatternName  string
	PatternEmoji string
	PatternData  []int // alternating on/off milliseconds, pattern only
	Whisper      string
}

func (*TouchPayload) Category() Category { return CategoryTouch }

// ChatPayload carries free text. Only this payload is encrypted on the
// wire; Text here is always cleartext.
type ChatPayload struct {
	Text string

	// Undecryptable is set on the receive path when the ciphertext could
	// not be opened and Text holds a caller-substituted placeholder. It
	// never travels on the wire.
	Undecryptable bool
}

func (*ChatPayload) Category() Category { return CategoryChat }

// HeartbeatPayload carries one pulse of a heartbeat train. BPM is carried
// for wire compatibility but nothing consumes it on receive.
type HeartbeatPayload struct {
	BPM   int
	Count int // 1-based position in the 10-pulse train
}

func (*HeartbeatPayload) Category() Category { return CategoryHeartbeat }

// Point is a drawing coordinate normalized to the 0..1 range so strokes
// are resolution-independent.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DrawPayload carries one flushed batch of stroke points.
type DrawPayload struct {
	Points []Point
	Color  string
}

func (*DrawPayload) Category() Category { return CategoryDraw }

// BreatheVariant selects the breathing cycle timing.
type BreatheVariant string

const (
	BreatheCalm       BreatheVariant = "calm"
	BreatheMeditation BreatheVariant = "meditation"
	BreatheSad        BreatheVariant = "sad"
)

// BreathePayload carries the variant for invite/sync actions.
type BreathePayload struct {
	Variant BreatheVariant
}

func (*BreathePayload) Category() Category { return CategoryBreathe }

// MatchDifficulty selects the telepathy-match grid size.
type MatchDifficulty string

const (
	MatchEasy   MatchDifficulty = "easy"
	MatchMedium MatchDifficulty = "medium"
	MatchHard   MatchDifficulty = "hard"
)

// MatchPayload carries either the invite difficulty or a tile selection.
type MatchPayload struct {
	Difficulty MatchDifficulty
	Index      int // selected tile, select only
}

func (*MatchPayload) Category() Category { return CategoryMatch }

// TicTacToePayload carries one move or an invite for the shared game.
type TicTacToePayload struct {
	Cell   int    // 0..8
	Player string // "X" or "O"
}

func (*TicTacToePayload) Category() Category { return CategoryTicTacToe }

// validate checks that a decoded signal carries what its category/action
// combination requires, normalizing defaulted fields in place. Signals
// that fail here are treated as no-ops by the caller, never as faults.
func (s *Signal) validate() error {
	switch s.Category {
	case CategoryTouch:
		if s.Action != ActionData {
			return fmt.Errorf("%w: touch supports only data, got %q", ErrMalformedSignal, s.Action)
		}
		p := s.Touch()
		if p == nil {
			return fmt.Errorf("%w: touch.data without payload", ErrMalformedSignal)
		}
		switch p.Type {
		case TouchTap:
			if p.Count < 1 {
				p.Count = 1
			}
		case TouchHold:
			if p.DurationMs < 1 {
				p.DurationMs = 1000
			}
		case TouchPattern:
			if len(p.PatternData) == 0 {
				return fmt.Errorf("%w: touch pattern without pattern data", ErrMalformedSignal)
			}
		default:
			return fmt.Errorf("%w: unknown touch type %q", ErrMalformedSignal, p.Type)
		}

	case CategoryChat:
		if s.Action != ActionText && s.Action != ActionClear {
			return fmt.Errorf("%w: chat action %q", ErrMalformedSignal, s.Action)
		}

	case CategoryHeartbeat:
		switch s.Action {
		case ActionInvite, ActionStop:
		case ActionData:
			p := s.Heartbeat()
			if p == nil || p.Count < 1 {
				return fmt.Errorf("%w: heartbeat.data without a pulse count", ErrMalformedSignal)
			}
		default:
			return fmt.Errorf("%w: heartbeat action %q", ErrMalformedSignal, s.Action)
		}

	case CategoryDraw:
		switch s.Action {
		case ActionInvite, ActionStop:
		case ActionData:
			p := s.Draw()
			if p == nil || len(p.Points) == 0 {
				return fmt.Errorf("%w: draw.data without points", ErrMalformedSignal)
			}
			if p.Color == "" {
				p.Color = DefaultDrawColor
			}
		default:
			return fmt.Errorf("%w: draw action %q", ErrMalformedSignal, s.Action)
		}

	case CategoryBreathe:
		switch s.Action {
		case ActionInvite, ActionSync:
			p := s.Breathe()
			if p == nil || p.Variant == "" {
				s.Payload = &BreathePayload{Variant: BreatheCalm}
			} else if _, ok := breatheTimings[p.Variant]; !ok {
				return fmt.Errorf("%w: breathe variant %q", ErrMalformedSignal, p.Variant)
			}
		case ActionStop:
		default:
			return fmt.Errorf("%w: breathe action %q", ErrMalformedSignal, s.Action)
		}

	case CategoryMatch:
		switch s.Action {
		case ActionInvite:
			p := s.Match()
			if p == nil || p.Difficulty == "" {
				s.Payload = &MatchPayload{Difficulty: MatchEasy}
			}
		case ActionSelect:
			p := s.Match()
			if p == nil || p.Index < 0 {
				return fmt.Errorf("%w: matrix.select without a tile index", ErrMalformedSignal)
			}
		case ActionReveal, ActionReset:
		default:
			return fmt.Errorf("%w: matrix action %q", ErrMalformedSignal, s.Action)
		}

	case CategoryTicTacToe:
		switch s.Action {
		case ActionInvite, ActionReset:
		case ActionData:
			p := s.TicTacToe()
			if p == nil || p.Cell < 0 || p.Cell > 8 {
				return fmt.Errorf("%w: game-ttt move outside the board", ErrMalformedSignal)
			}
			if p.Player != "X" && p.Player != "O" {
				return fmt.Errorf("%w: game-ttt move without a player", ErrMalformedSignal)
			}
		default:
			return fmt.Errorf("%w: game-ttt action %q", ErrMalformedSignal, s.Action)
		}

	default:
		return fmt.Errorf("%w: unknown category %q", ErrMalformedSignal, s.Category)
	}

	return nil
}

// BreatheTiming describes one breathing cycle.
type BreatheTiming struct {
	Cycle  int // full cycle, milliseconds
	Inhale int // inhale portion, milliseconds
}

var breatheTimings = map[BreatheVariant]BreatheTiming{
	BreatheCalm:       {Cycle: 4000, Inhale: 2000},
	BreatheMeditation: {Cycle: 6000, Inhale: 3000},
	BreatheSad:        {Cycle: 8000, Inhale: 3000},
}

// TimingFor returns the cycle timing for a variant, falling back to calm
// for anything unrecognized.
func TimingFor(v BreatheVariant) BreatheTiming {
	if t, ok := breatheTimings[v]; ok {
		return t
	}
	return breatheTimings[BreatheCalm]
}

// DefaultDrawColor is applied to draw batches that arrive without one.
const DefaultDrawColor = "#e879f9"
