package vibelink

import (
	"time"

	"github.com/vibelink/vibelink/contact"
	"github.com/vibelink/vibelink/crypto"
	"github.com/vibelink/vibelink/signal"
)

// UndecryptableText replaces the body of a chat message whose ciphertext
// could not be opened, so the conversation shows that something arrived
// without exposing garbage.
const UndecryptableText = "[could not decrypt]"

// ChatMessage is one entry in an in-memory conversation. Conversations
// are never persisted; a restart clears them.
type ChatMessage struct {
	ID       string
	PeerCode string // pairing code of the conversation partner
	FromSelf bool
	FromName string
	Text     string
	SentAt   time.Time

	// Undecryptable marks a message whose Text is the placeholder.
	Undecryptable bool
}

// SendChatMessage encrypts text with the pair key and sends it, appending
// it to the local conversation.
func (d *Device) SendChatMessage(pairCode, text string) error {
	if !d.contacts.Has(pairCode) {
		return contact.ErrUnknownContact
	}
	if err := d.sendSignal(pairCode, signal.CategoryChat, signal.ActionText, &signal.ChatPayload{Text: text}); err != nil {
		return err
	}

	d.post(func() {
		d.appendChat(ChatMessage{
			PeerCode: pairCode,
			FromSelf: true,
			FromName: d.identity.DisplayName,
			Text:     text,
			SentAt:   time.Now(),
		})
	})
	return nil
}

// ClearChat empties the conversation on both sides.
func (d *Device) ClearChat(pairCode string) error {
	if !d.contacts.Has(pairCode) {
		return contact.ErrUnknownContact
	}
	if err := d.sendSignal(pairCode, signal.CategoryChat, signal.ActionClear, nil); err != nil {
		return err
	}
	d.post(func() { delete(d.chats, pairCode) })
	return nil
}

// ChatHistory returns a snapshot of the conversation with one contact,
// oldest first. It waits on the event queue, so it must not be called
// from inside a device callback; use the callback's own message instead.
func (d *Device) ChatHistory(pairCode string) []ChatMessage {
	var history []ChatMessage
	done := make(chan struct{})
	d.post(func() {
		history = append(history, d.chats[pairCode]...)
		close(done)
	})
	select {
	case <-done:
	case <-d.ctx.Done():
	}
	return history
}

// handleChat runs on the event queue for authorized chat signals.
func (d *Device) handleChat(sig *signal.Signal) {
	switch sig.Action {
	case signal.ActionText:
		p := sig.Chat()
		if p == nil {
			return
		}
		d.appendChat(ChatMessage{
			ID:            sig.ID,
			PeerCode:      sig.SenderCode,
			FromName:      sig.SenderName,
			Text:          p.Text,
			SentAt:        time.UnixMilli(sig.TimestampMs),
			Undecryptable: p.Undecryptable,
		})
	case signal.ActionClear:
		delete(d.chats, sig.SenderCode)
	}
}

func (d *Device) appendChat(msg ChatMessage) {
	if msg.ID == "" {
		msg.ID = crypto.GenerateID()
	}
	d.chats[msg.PeerCode] = append(d.chats[msg.PeerCode], msg)
	if d.chatCallback != nil {
		d.chatCallback(msg)
	}
}
