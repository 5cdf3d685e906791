package signal

import (
	"time"

	"github.com/vibelink/vibelink/crypto"
)

// Category identifies the session mode a signal belongs to. The values are
// the wire strings; CategoryMatch keeps its historical wire name "matrix".
type Category string

const (
	CategoryTouch     Category = "touch"
	CategoryChat      Category = "chat"
	CategoryHeartbeat Category = "heartbeat"
	CategoryDraw      Category = "draw"
	CategoryBreathe   Category = "breathe"
	CategoryMatch     Category = "matrix"
	CategoryTicTacToe Category = "game-ttt"
)

// Action identifies what a signal does within its category.
type Action string

const (
	ActionInvite Action = "invite"
	ActionData   Action = "data"
	ActionStop   Action = "stop"
	ActionSync   Action = "sync"
	ActionText   Action = "text"
	ActionClear  Action = "clear"
	ActionSelect Action = "select"
	ActionReveal Action = "reveal"
	ActionReset  Action = "reset"
)

// SystemSender is the reserved pairing-code value for locally synthesized
// signals (for example simulated receives); the gatekeeper's allowlist
// admits it without a matching contact.
const SystemSender = "system"

// IsInvite reports whether an action opens a shared mode. Invite-class
// actions are the ones subject to flood control.
func (a Action) IsInvite() bool {
	return a == ActionInvite
}

// Signal is one protocol message. The sender carries both its pairing code
// and its device unique id: the unique id is authoritative for self-echo
// suppression, the pairing code for the contact allowlist.
type Signal struct {
	ID          string
	SenderCode  string
	SenderUID   string
	SenderName  string
	TimestampMs int64
	Category    Category
	Action      Action
	Payload     Payload
}

// New constructs a signal with a fresh id and the current timestamp.
func New(senderCode, senderUID, senderName string, category Category, action Action, payload Payload) *Signal {
	return &Signal{
		ID:          crypto.GenerateID(),
		SenderCode:  senderCode,
		SenderUID:   senderUID,
		SenderName:  senderName,
		TimestampMs: time.Now().UnixMilli(),
		Category:    category,
		Action:      action,
		Payload:     payload,
	}
}

// Touch returns the touch payload, or nil if the signal is not a touch
// signal. The remaining accessors follow the same pattern.
func (s *Signal) Touch() *TouchPayload {
	p, _ := s.Payload.(*TouchPayload)
	return p
}

func (s *Signal) Chat() *ChatPayload {
	p, _ := s.Payload.(*ChatPayload)
	return p
}

func (s *Signal) Heartbeat() *HeartbeatPayload {
	p, _ := s.Payload.(*HeartbeatPayload)
	return p
}

func (s *Signal) Draw() *DrawPayload {
	p, _ := s.Payload.(*DrawPayload)
	return p
}

func (s *Signal) Breathe() *BreathePayload {
	p, _ := s.Payload.(*BreathePayload)
	return p
}

func (s *Signal) Match() *MatchPayload {
	p, _ := s.Payload.(*MatchPayload)
	return p
}

func (s *Signal) TicTacToe() *TicTacToePayload {
	p, _ := s.Payload.(*TicTacToePayload)
	return p
}
