package signal

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vibelink/vibelink/crypto"
)

// KeyLookup resolves the pair key for a sender's pairing code. Decode uses
// it to decrypt chat payloads once the envelope has revealed the sender.
type KeyLookup func(senderCode string) ([]byte, error)

// StaticKey returns a KeyLookup that always yields the same key,
// regardless of sender. Useful when the peer is already known.
func StaticKey(key []byte) KeyLookup {
	return func(string) ([]byte, error) { return key, nil }
}

// envelope is the flat JSON wire form. Field names follow the historical
// wire vocabulary; every category-specific field is optional at this level
// and checked by validation after the typed payload is rebuilt.
type envelope struct {
	ID        string   `json:"id"`
	SenderID  string   `json:"senderId"`
	SenderUID string   `json:"senderUniqueId,omitempty"`
	Name      string   `json:"senderName"`
	Timestamp int64    `json:"timestamp"`
	Category  Category `json:"category"`
	Action    Action   `json:"action"`

	TouchType    TouchType       `json:"touchType,omitempty"`
	Count        *int            `json:"count,omitempty"`
	Duration     *int            `json:"duration,omitempty"`
	PatternName  string          `json:"patternName,omitempty"`
	PatternEmoji string          `json:"patternEmoji,omitempty"`
	PatternData  []int           `json:"patternData,omitempty"`
	Whisper      string          `json:"whisperText,omitempty"`
	Payload      string          `json:"payload,omitempty"` // chat only: base64(nonce||ciphertext)
	BPM          *int            `json:"bpm,omitempty"`
	Points       []Point         `json:"points,omitempty"`
	Color        string          `json:"color,omitempty"`
	Variant      BreatheVariant  `json:"variant,omitempty"`
	Difficulty   MatchDifficulty `json:"difficulty,omitempty"`
	Selection    *int            `json:"selectionIndex,omitempty"`
	Cell         *int            `json:"cellIndex,omitempty"`
	Player       string          `json:"player,omitempty"`
}

// Encode serializes a signal for transport. key is only consulted for
// chat.text signals, whose text is sealed before serialization; every
// other category ignores it.
func Encode(sig *Signal, key []byte) ([]byte, error) {
	env := envelope{
		ID:        sig.ID,
		SenderID:  sig.SenderCode,
		SenderUID: sig.SenderUID,
		Name:      sig.SenderName,
		Timestamp: sig.TimestampMs,
		Category:  sig.Category,
		Action:    sig.Action,
	}

	switch p := sig.Payload.(type) {
	case nil:
		// stop/reset/clear style signals carry no payload

	case *TouchPayload:
		env.TouchType = p.Type
		if p.Count > 0 {
			env.Count = intPtr(p.Count)
		}
		if p.DurationMs > 0 {
			env.Duration = intPtr(p.DurationMs)
		}
		env.PatternName = p.PatternName
		env.PatternEmoji = p.PatternEmoji
		env.PatternData = p.PatternData
		env.Whisper = p.Whisper

	case *ChatPayload:
		if sig.Action == ActionText {
			if len(key) == 0 {
				return nil, fmt.Errorf("signal: encoding chat.text requires a pair key")
			}
			sealed, err := crypto.Seal([]byte(p.Text), key)
			if err != nil {
				return nil, fmt.Errorf("sealing chat payload: %w", err)
			}
			env.Payload = base64.StdEncoding.EncodeToString(sealed)
		}

	case *HeartbeatPayload:
		if p.BPM > 0 {
			env.BPM = intPtr(p.BPM)
		}
		if p.Count > 0 {
			env.Count = intPtr(p.Count)
		}

	case *DrawPayload:
		env.Points = p.Points
		env.Color = p.Color

	case *BreathePayload:
		env.Variant = p.Variant

	case *MatchPayload:
		env.Difficulty = p.Difficulty
		if sig.Action == ActionSelect {
			env.Selection = intPtr(p.Index)
		}

	case *TicTacToePayload:
		if sig.Action == ActionData {
			env.Cell = intPtr(p.Cell)
			env.Player = p.Player
		}

	default:
		return nil, fmt.Errorf("signal: unknown payload type %T", sig.Payload)
	}

	return json.Marshal(&env)
}

// Decode parses a transport payload back into a signal and validates it
// for its category/action. keyFor is consulted only for chat.text; when
// decryption fails, Decode returns the parsed signal together with a
// *DecodeError so the caller can still attribute the failure to a sender
// and substitute a placeholder for the text.
func Decode(data []byte, keyFor KeyLookup) (*Signal, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Stage: "parse", Err: err}
	}

	sig := &Signal{
		ID:          env.ID,
		SenderCode:  env.SenderID,
		SenderUID:   env.SenderUID,
		SenderName:  env.Name,
		TimestampMs: env.Timestamp,
		Category:    env.Category,
		Action:      env.Action,
	}
	sig.Payload = payloadFromEnvelope(&env)

	if err := sig.validate(); err != nil {
		return nil, err
	}

	if sig.Category == CategoryChat && sig.Action == ActionText {
		text, err := openChat(&env, keyFor)
		if err != nil {
			sig.Payload = &ChatPayload{}
			return sig, err
		}
		sig.Payload = &ChatPayload{Text: text}
	}

	return sig, nil
}

func payloadFromEnvelope(env *envelope) Payload {
	switch env.Category {
	case CategoryTouch:
		return &TouchPayload{
			Type:         env.TouchType,
			Count:        intVal(env.Count),
			DurationMs:   intVal(env.Duration),
			PatternName:  env.PatternName,
			PatternEmoji: env.PatternEmoji,
			PatternData:  env.PatternData,
			Whisper:      env.Whisper,
		}

	case CategoryChat:
		if env.Action == ActionText {
			return &ChatPayload{}
		}
		return nil

	case CategoryHeartbeat:
		if env.Action == ActionData {
			return &HeartbeatPayload{BPM: intVal(env.BPM), Count: intVal(env.Count)}
		}
		return nil

	case CategoryDraw:
		if env.Action == ActionData {
			return &DrawPayload{Points: env.Points, Color: env.Color}
		}
		return nil

	case CategoryBreathe:
		if env.Action == ActionInvite || env.Action == ActionSync {
			return &BreathePayload{Variant: env.Variant}
		}
		return nil

	case CategoryMatch:
		switch env.Action {
		case ActionInvite:
			return &MatchPayload{Difficulty: env.Difficulty}
		case ActionSelect:
			idx := -1
			if env.Selection != nil {
				idx = *env.Selection
			}
			return &MatchPayload{Index: idx}
		}
		return nil

	case CategoryTicTacToe:
		if env.Action == ActionData {
			cell := -1
			if env.Cell != nil {
				cell = *env.Cell
			}
			return &TicTacToePayload{Cell: cell, Player: env.Player}
		}
		return nil
	}
	return nil
}

func openChat(env *envelope, keyFor KeyLookup) (string, error) {
	if keyFor == nil {
		return "", &DecodeError{Stage: "decrypt", Err: errors.New("no key source for chat payload")}
	}
	key, err := keyFor(env.SenderID)
	if err != nil {
		return "", &DecodeError{Stage: "decrypt", Err: err}
	}

	sealed, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		return "", &DecodeError{Stage: "decrypt", Err: err}
	}
	plain, err := crypto.Open(sealed, key)
	if err != nil {
		return "", &DecodeError{Stage: "decrypt", Err: err}
	}
	return string(plain), nil
}

func intPtr(v int) *int { return &v }

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
