package vibelink

import (
	"errors"

	"github.com/vibelink/vibelink/contact"
	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
)

// SendTap sends a burst of count taps to a contact.
func (d *Device) SendTap(pairCode string, count int) error {
	if count < 1 {
		count = 1
	}
	return d.sendTouch(pairCode, &signal.TouchPayload{
		Type:  signal.TouchTap,
		Count: count,
	})
}

// SendHold sends one sustained press. The duration is clamped to the
// haptic maximum before it leaves the device.
func (d *Device) SendHold(pairCode string, durationMs int) error {
	if durationMs < 1 {
		durationMs = haptic.DefaultHoldMs
	}
	if durationMs > haptic.MaxHoldMs {
		durationMs = haptic.MaxHoldMs
	}
	return d.sendTouch(pairCode, &signal.TouchPayload{
		Type:       signal.TouchHold,
		DurationMs: durationMs,
	})
}

// SendPattern sends a recorded vibration pattern. data alternates on/off
// milliseconds and must not be empty.
func (d *Device) SendPattern(pairCode, name, emoji string, data []int) error {
	if len(data) == 0 {
		return errors.New("vibelink: pattern data is empty")
	}
	return d.sendTouch(pairCode, &signal.TouchPayload{
		Type:         signal.TouchPattern,
		PatternName:  name,
		PatternEmoji: emoji,
		PatternData:  data,
	})
}

// SendWhisper sends a single tap carrying a short text shown alongside
// the vibration on the receiving side.
func (d *Device) SendWhisper(pairCode, text string) error {
	if text == "" {
		return errors.New("vibelink: whisper text is empty")
	}
	return d.sendTouch(pairCode, &signal.TouchPayload{
		Type:    signal.TouchTap,
		Count:   1,
		Whisper: text,
	})
}

func (d *Device) sendTouch(pairCode string, p *signal.TouchPayload) error {
	if !d.contacts.Has(pairCode) {
		return contact.ErrUnknownContact
	}
	return d.sendSignal(pairCode, signal.CategoryTouch, signal.ActionData, p)
}
