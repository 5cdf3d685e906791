package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHub_PublishSubscribe(t *testing.T) {
	hub := NewMemoryHub()
	a := hub.Client("device-a")
	b := hub.Client("device-b")

	var got []byte
	require.NoError(t, b.Subscribe("vibe-chan", func(data []byte) { got = data }))

	require.NoError(t, a.Publish(context.Background(), "vibe-chan", []byte("hello")))
	assert.Equal(t, "hello", string(got))
}

func TestMemoryHub_PublisherReceivesOwnMessage(t *testing.T) {
	hub := NewMemoryHub()
	a := hub.Client("device-a")

	delivered := 0
	require.NoError(t, a.Subscribe("vibe-chan", func([]byte) { delivered++ }))
	require.NoError(t, a.Publish(context.Background(), "vibe-chan", []byte("echo")))

	assert.Equal(t, 1, delivered, "shared-channel semantics deliver a publish back to the publisher")
}

func TestMemoryHub_Presence(t *testing.T) {
	hub := NewMemoryHub()
	a := hub.Client("device-a")
	b := hub.Client("device-b")
	ctx := context.Background()

	members, err := b.PresenceGet(ctx, "vibe-chan")
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, a.PresenceEnter(ctx, "vibe-chan", []byte(`{"name":"Alice"}`)))

	members, err = b.PresenceGet(ctx, "vibe-chan")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "device-a", members[0].ClientID)
	assert.JSONEq(t, `{"name":"Alice"}`, string(members[0].Data))

	// Re-entering replaces, not duplicates.
	require.NoError(t, a.PresenceEnter(ctx, "vibe-chan", []byte(`{"name":"Alice2"}`)))
	members, err = b.PresenceGet(ctx, "vibe-chan")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestMemoryHub_CloseRemovesPresenceAndSubscriptions(t *testing.T) {
	hub := NewMemoryHub()
	a := hub.Client("device-a")
	b := hub.Client("device-b")
	ctx := context.Background()

	require.NoError(t, a.Subscribe("vibe-chan", func([]byte) { t.Fatal("delivered after close") }))
	require.NoError(t, a.PresenceEnter(ctx, "vibe-chan", nil))
	require.NoError(t, a.Close())

	members, err := b.PresenceGet(ctx, "vibe-chan")
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, b.Publish(ctx, "vibe-chan", []byte("x")))

	assert.ErrorIs(t, a.Publish(ctx, "vibe-chan", []byte("x")), ErrClosed)
	_, err = a.PresenceGet(ctx, "vibe-chan")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, a.Subscribe("vibe-chan", nil), ErrClosed)
}

func TestMemoryHub_CancelledContext(t *testing.T) {
	hub := NewMemoryHub()
	a := hub.Client("device-a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, a.Publish(ctx, "vibe-chan", []byte("x")))
	_, err := a.PresenceGet(ctx, "vibe-chan")
	assert.Error(t, err)
}
