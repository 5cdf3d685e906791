package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// MemoryHub is an in-process transport used by tests and the demo command.
// Every client attached to the same hub shares its channels; delivery is
// synchronous in the publisher's goroutine.
type MemoryHub struct {
	mu       sync.RWMutex
	channels map[string]*memoryChannel
}

type memoryChannel struct {
	subscribers map[string]MessageHandler // keyed by client id
	presence    map[string]Member         // keyed by client id
}

// NewMemoryHub creates an empty hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{channels: make(map[string]*memoryChannel)}
}

func (h *MemoryHub) channel(name string) *memoryChannel {
	if ch, ok := h.channels[name]; ok {
		return ch
	}
	ch := &memoryChannel{
		subscribers: make(map[string]MessageHandler),
		presence:    make(map[string]Member),
	}
	h.channels[name] = ch
	return ch
}

// Client attaches a new transport client to the hub.
func (h *MemoryHub) Client(clientID string) Transport {
	return &memoryClient{hub: h, clientID: clientID}
}

type memoryClient struct {
	hub      *MemoryHub
	clientID string

	mu     sync.Mutex
	closed bool
	subs   []string // channels this client subscribed or entered
}

func (c *memoryClient) Subscribe(channel string, handler MessageHandler) error {
	if err := c.track(channel); err != nil {
		return err
	}

	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	c.hub.channel(channel).subscribers[c.clientID] = handler

	logrus.WithFields(logrus.Fields{
		"function": "Subscribe",
		"client":   c.clientID,
		"channel":  channel,
	}).Debug("Memory transport subscription")

	return nil
}

func (c *memoryClient) Publish(ctx context.Context, channel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	if c.isClosed() {
		return ErrClosed
	}

	c.hub.mu.RLock()
	ch, ok := c.hub.channels[channel]
	var handlers []MessageHandler
	if ok {
		handlers = make([]MessageHandler, 0, len(ch.subscribers))
		for _, h := range ch.subscribers {
			handlers = append(handlers, h)
		}
	}
	c.hub.mu.RUnlock()

	for _, h := range handlers {
		h(data)
	}
	return nil
}

func (c *memoryClient) PresenceEnter(ctx context.Context, channel string, metadata []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("presence enter on %s: %w", channel, err)
	}
	if err := c.track(channel); err != nil {
		return err
	}

	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	c.hub.channel(channel).presence[c.clientID] = Member{ClientID: c.clientID, Data: metadata}
	return nil
}

func (c *memoryClient) PresenceGet(ctx context.Context, channel string) ([]Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("presence query on %s: %w", channel, err)
	}
	if c.isClosed() {
		return nil, ErrClosed
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	ch, ok := c.hub.channels[channel]
	if !ok {
		return nil, nil
	}
	members := make([]Member, 0, len(ch.presence))
	for _, m := range ch.presence {
		members = append(members, m)
	}
	return members, nil
}

func (c *memoryClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := c.subs
	c.mu.Unlock()

	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	for _, name := range subs {
		if ch, ok := c.hub.channels[name]; ok {
			delete(ch.subscribers, c.clientID)
			delete(ch.presence, c.clientID)
		}
	}
	return nil
}

func (c *memoryClient) track(channel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.subs = append(c.subs, channel)
	return nil
}

func (c *memoryClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
