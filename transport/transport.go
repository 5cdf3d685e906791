// Package transport defines the realtime messaging boundary: a black-box
// publish/subscribe service that delivers byte payloads to named channels
// and reports presence membership. The core only ever talks to the
// Transport interface; delivery guarantees, reconnection, and push fan-out
// belong to the implementation behind it.
package transport

import (
	"context"
	"errors"
)

// MessageHandler receives one raw payload delivered on a subscribed
// channel.
type MessageHandler func(data []byte)

// Member is one presence entry on a channel. Data is opaque metadata the
// member attached when entering, typically a small JSON blob.
type Member struct {
	ClientID string
	Data     []byte
}

// Transport is the messaging service boundary. All methods are best
// effort: a failed publish is reported once to the caller and never
// retried by this layer.
type Transport interface {
	// Subscribe registers a handler for payloads published to channel.
	// A channel supports at most one subscription per client.
	Subscribe(channel string, handler MessageHandler) error

	// Publish sends data to every subscriber of channel, including the
	// publisher itself if it is subscribed (shared-channel semantics).
	Publish(ctx context.Context, channel string, data []byte) error

	// PresenceEnter announces this client as present on channel with the
	// given metadata, replacing any previous announcement.
	PresenceEnter(ctx context.Context, channel string, metadata []byte) error

	// PresenceGet returns the current members present on channel.
	PresenceGet(ctx context.Context, channel string) ([]Member, error)

	// Close tears down subscriptions and presence entries for this client.
	Close() error
}

// ErrClosed is returned by operations on a closed transport client.
var ErrClosed = errors.New("transport: client closed")
