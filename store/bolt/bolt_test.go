package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibelink/vibelink/contact"
	"github.com/vibelink/vibelink/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "vibelink.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIdentityRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Identity(ctx)
	assert.True(t, errors.Is(err, store.ErrNotFound), "a fresh store has no identity")

	id := &contact.Identity{
		ID:          "uid-1",
		DisplayName: "Ada",
		PairCode:    "ABCD12",
		PushToken:   "fcm-token",
	}
	require.NoError(t, s.SaveIdentity(ctx, id))

	got, err := s.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestSaveContactsReplacesList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.Contacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	first := []contact.Contact{
		{PairCode: "ABCD12", DisplayName: "Ada", VisualTag: "🌸"},
		{PairCode: "ZZTOP9", DisplayName: "Bea", VisualTag: "🌊"},
	}
	require.NoError(t, s.SaveContacts(ctx, first))

	// Saving again with one contact removed must drop the other.
	require.NoError(t, s.SaveContacts(ctx, first[:1]))

	got, err = s.Contacts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ABCD12", got[0].PairCode)
}

func TestPatternLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := store.Pattern{Name: "double-knock", Emoji: "👊", Data: []int{80, 60, 80}}
	require.NoError(t, s.SavePattern(ctx, p))

	// Saving the same name overwrites.
	p.Data = []int{100, 50, 100}
	require.NoError(t, s.SavePattern(ctx, p))

	patterns, err := s.Patterns(ctx)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, []int{100, 50, 100}, patterns[0].Data)

	require.NoError(t, s.DeletePattern(ctx, "double-knock"))
	require.NoError(t, s.DeletePattern(ctx, "never-existed"))

	patterns, err = s.Patterns(ctx)
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestCancelledContextRefused(t *testing.T) {
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SaveIdentity(ctx, &contact.Identity{ID: "uid-1"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Contacts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vibelink.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveIdentity(ctx, &contact.Identity{ID: "uid-1", PairCode: "ABCD12"}))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	id, err := s.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ABCD12", id.PairCode)
}
