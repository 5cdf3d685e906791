package contact

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_AddGetRemove(t *testing.T) {
	l := NewList()

	c := Contact{ID: "c1", DisplayName: "Bea", PairCode: "ZZTOP9", VisualTag: "bg-rose-500"}
	require.NoError(t, l.Add(c))

	assert.True(t, l.Has("ZZTOP9"))
	assert.False(t, l.Has("ABCD12"))

	got, err := l.Get("ZZTOP9")
	require.NoError(t, err)
	assert.Equal(t, "Bea", got.DisplayName)

	assert.ErrorIs(t, l.Add(c), ErrDuplicateContact)

	require.NoError(t, l.Remove("ZZTOP9"))
	assert.False(t, l.Has("ZZTOP9"))
	assert.ErrorIs(t, l.Remove("ZZTOP9"), ErrUnknownContact)
}

func TestList_GetReturnsCopy(t *testing.T) {
	l := NewList()
	require.NoError(t, l.Add(Contact{PairCode: "ZZTOP9", DisplayName: "Bea"}))

	got, err := l.Get("ZZTOP9")
	require.NoError(t, err)
	got.DisplayName = "mutated"

	again, err := l.Get("ZZTOP9")
	require.NoError(t, err)
	assert.Equal(t, "Bea", again.DisplayName)
}

func TestList_SetOnline(t *testing.T) {
	l := NewList()
	require.NoError(t, l.Add(Contact{PairCode: "ZZTOP9"}))

	assert.True(t, l.SetOnline("ZZTOP9", true), "offline->online is a change")
	assert.False(t, l.SetOnline("ZZTOP9", true), "repeat set is idempotent")
	assert.True(t, l.SetOnline("ZZTOP9", false))
	assert.False(t, l.SetOnline("NOPE22", true), "unknown contact is a no-op")

	c, err := l.Get("ZZTOP9")
	require.NoError(t, err)
	assert.False(t, c.LastSeen.IsZero(), "going online records last-seen")
}

func TestList_SetPushToken(t *testing.T) {
	l := NewList()
	require.NoError(t, l.Add(Contact{PairCode: "ZZTOP9", PushToken: "tok-1"}))

	assert.False(t, l.SetPushToken("ZZTOP9", "tok-1"), "same token is not a change")
	assert.True(t, l.SetPushToken("ZZTOP9", "tok-2"))

	c, err := l.Get("ZZTOP9")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", c.PushToken)
}

func TestList_AllSnapshot(t *testing.T) {
	l := NewList()
	require.NoError(t, l.Add(Contact{PairCode: "AAAA22"}))
	require.NoError(t, l.Add(Contact{PairCode: "BBBB33"}))

	snapshot := l.All()
	require.Len(t, snapshot, 2)

	// Mutating the list after taking the snapshot must not affect it.
	require.NoError(t, l.Remove("AAAA22"))
	assert.Len(t, snapshot, 2)
}

func TestList_Replace(t *testing.T) {
	l := NewList()
	require.NoError(t, l.Add(Contact{PairCode: "AAAA22"}))

	l.Replace([]Contact{{PairCode: "CCCC44"}, {PairCode: "DDDD55"}})

	assert.False(t, l.Has("AAAA22"))
	assert.True(t, l.Has("CCCC44"))
	assert.Equal(t, 2, l.Len())
}

func TestList_ConcurrentAccess(t *testing.T) {
	l := NewList()
	require.NoError(t, l.Add(Contact{PairCode: "ZZTOP9"}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(online bool) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.SetOnline("ZZTOP9", online)
				l.Has("ZZTOP9")
				l.All()
			}
		}(i%2 == 0)
	}
	wg.Wait()
}
