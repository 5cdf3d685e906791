package gatekeeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
)

const (
	selfUID  = "local-uid"
	selfCode = "ABCD12"
	peerUID  = "remote-uid"
	peerCode = "ZZTOP9"
)

type capture struct {
	patterns   []haptic.Pattern
	dispatched []*signal.Signal
}

func (c *capture) sink() haptic.Sink {
	return haptic.SinkFunc(func(p haptic.Pattern) { c.patterns = append(c.patterns, p) })
}

func (c *capture) handler() Handler {
	return func(sig *signal.Signal) { c.dispatched = append(c.dispatched, sig) }
}

func newTestGatekeeper(c *capture, now func() time.Time) *Gatekeeper {
	g := New(Config{
		SelfUID:  selfUID,
		SelfCode: selfCode,
		Allow:    func(code string) bool { return code == peerCode },
		Feedback: c.sink(),
		Now:      now,
	})
	for _, cat := range []signal.Category{
		signal.CategoryTouch, signal.CategoryChat, signal.CategoryHeartbeat,
		signal.CategoryDraw, signal.CategoryBreathe, signal.CategoryMatch,
		signal.CategoryTicTacToe,
	} {
		g.Register(cat, c.handler())
	}
	return g
}

func peerSignal(category signal.Category, action signal.Action, payload signal.Payload) *signal.Signal {
	return &signal.Signal{
		ID:          "sig-1",
		SenderCode:  peerCode,
		SenderUID:   peerUID,
		SenderName:  "Bea",
		TimestampMs: time.Now().UnixMilli(),
		Category:    category,
		Action:      action,
		Payload:     payload,
	}
}

func TestProcess_SelfEcho(t *testing.T) {
	c := &capture{}
	g := newTestGatekeeper(c, nil)

	testCases := []struct {
		name string
		sig  *signal.Signal
	}{
		{"Matching unique id", &signal.Signal{
			SenderCode: peerCode, SenderUID: selfUID,
			Category: signal.CategoryTouch, Action: signal.ActionData,
			Payload: &signal.TouchPayload{Type: signal.TouchTap, Count: 1},
		}},
		{"No unique id, matching code", &signal.Signal{
			SenderCode: selfCode,
			Category:   signal.CategoryHeartbeat, Action: signal.ActionStop,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := g.Process(tc.sig)
			assert.ErrorIs(t, err, ErrSelfEcho)
		})
	}
	assert.Empty(t, c.dispatched, "echoed signals must never reach handlers")
	assert.Empty(t, c.patterns, "echoed signals must never trigger feedback")
}

func TestProcess_SelfEcho_UIDBeatsCode(t *testing.T) {
	c := &capture{}
	g := newTestGatekeeper(c, nil)

	// Same pairing code as ours but a different device uid: a pairing-code
	// collision, not an echo. The allowlist gate handles it instead.
	sig := &signal.Signal{
		SenderCode: selfCode, SenderUID: "someone-else",
		Category: signal.CategoryTouch, Action: signal.ActionData,
		Payload: &signal.TouchPayload{Type: signal.TouchTap, Count: 1},
	}
	assert.ErrorIs(t, g.Process(sig), ErrUnauthorizedSender)
}

func TestProcess_Allowlist(t *testing.T) {
	c := &capture{}
	g := newTestGatekeeper(c, nil)

	sig := peerSignal(signal.CategoryTouch, signal.ActionData,
		&signal.TouchPayload{Type: signal.TouchTap, Count: 1})
	sig.SenderCode = "QQQQ77"
	sig.SenderUID = "stranger-uid"

	assert.ErrorIs(t, g.Process(sig), ErrUnauthorizedSender)
	assert.Empty(t, c.dispatched)
}

func TestProcess_SystemSenderBypassesAllowlist(t *testing.T) {
	c := &capture{}
	g := newTestGatekeeper(c, nil)

	sig := peerSignal(signal.CategoryTouch, signal.ActionData,
		&signal.TouchPayload{Type: signal.TouchTap, Count: 1})
	sig.SenderCode = signal.SystemSender
	sig.SenderUID = "simulator"

	require.NoError(t, g.Process(sig))
	assert.Len(t, c.dispatched, 1)
}

func TestProcess_InviteFlood(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }

	c := &capture{}
	g := newTestGatekeeper(c, clock)

	invite := func() *signal.Signal {
		return peerSignal(signal.CategoryBreathe, signal.ActionInvite,
			&signal.BreathePayload{Variant: signal.BreatheCalm})
	}

	require.NoError(t, g.Process(invite()))

	now = now.Add(500 * time.Millisecond)
	assert.ErrorIs(t, g.Process(invite()), ErrInviteFlood)

	// A different category has its own window.
	matchInvite := peerSignal(signal.CategoryMatch, signal.ActionInvite,
		&signal.MatchPayload{Difficulty: signal.MatchEasy})
	assert.NoError(t, g.Process(matchInvite))

	// Past the gap, the same category is admitted again.
	now = now.Add(2 * time.Second)
	assert.NoError(t, g.Process(invite()))

	assert.Len(t, c.dispatched, 3)
}

func TestProcess_NonInviteNeverFloodLimited(t *testing.T) {
	c := &capture{}
	g := newTestGatekeeper(c, nil)

	for i := 0; i < 20; i++ {
		sig := peerSignal(signal.CategoryDraw, signal.ActionData,
			&signal.DrawPayload{Points: []signal.Point{{X: 0.1, Y: 0.1}}, Color: "#fff"})
		require.NoError(t, g.Process(sig))
	}
	assert.Len(t, c.dispatched, 20)
}

func TestProcess_NoHandler(t *testing.T) {
	c := &capture{}
	g := New(Config{
		SelfUID: selfUID, SelfCode: selfCode,
		Allow:    func(code string) bool { return code == peerCode },
		Feedback: c.sink(),
	})

	sig := peerSignal(signal.CategoryTouch, signal.ActionData,
		&signal.TouchPayload{Type: signal.TouchTap, Count: 1})

	assert.ErrorIs(t, g.Process(sig), ErrNoHandler)
	assert.Empty(t, c.patterns, "unrouted signals must not trigger feedback")
}

func TestFeedbackFor_Whitelist(t *testing.T) {
	testCases := []struct {
		name        string
		sig         *signal.Signal
		wantPattern haptic.Pattern
		wantSilent  bool
	}{
		{
			name: "Tap burst",
			sig: peerSignal(signal.CategoryTouch, signal.ActionData,
				&signal.TouchPayload{Type: signal.TouchTap, Count: 2}),
			wantPattern: haptic.Pattern{80, 60, 80, 60},
		},
		{
			name: "Hold",
			sig: peerSignal(signal.CategoryTouch, signal.ActionData,
				&signal.TouchPayload{Type: signal.TouchHold, DurationMs: 900}),
			wantPattern: haptic.Pattern{900},
		},
		{
			name: "Custom pattern",
			sig: peerSignal(signal.CategoryTouch, signal.ActionData,
				&signal.TouchPayload{Type: signal.TouchPattern, PatternData: []int{100, 150, 400}}),
			wantPattern: haptic.Pattern{100, 150, 400},
		},
		{
			name: "Heartbeat pulse in cap",
			sig: peerSignal(signal.CategoryHeartbeat, signal.ActionData,
				&signal.HeartbeatPayload{Count: 10}),
			wantPattern: haptic.Pattern{50, 100, 50},
		},
		{
			name: "Heartbeat pulse beyond cap",
			sig: peerSignal(signal.CategoryHeartbeat, signal.ActionData,
				&signal.HeartbeatPayload{Count: 11}),
			wantSilent: true,
		},
		{
			name: "Breathe invite",
			sig: peerSignal(signal.CategoryBreathe, signal.ActionInvite,
				&signal.BreathePayload{Variant: signal.BreatheCalm}),
			wantPattern: haptic.Pattern{100},
		},
		{
			name:       "Chat is silent",
			sig:        peerSignal(signal.CategoryChat, signal.ActionText, &signal.ChatPayload{Text: "hi"}),
			wantSilent: true,
		},
		{
			name:       "Heartbeat stop is silent",
			sig:        peerSignal(signal.CategoryHeartbeat, signal.ActionStop, nil),
			wantSilent: true,
		},
		{
			name: "Draw data is silent",
			sig: peerSignal(signal.CategoryDraw, signal.ActionData,
				&signal.DrawPayload{Points: []signal.Point{{X: 0.5, Y: 0.5}}}),
			wantSilent: true,
		},
		{
			name: "Match select is silent",
			sig: peerSignal(signal.CategoryMatch, signal.ActionSelect,
				&signal.MatchPayload{Index: 3}),
			wantSilent: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pattern, ok := FeedbackFor(tc.sig)
			if tc.wantSilent {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tc.wantPattern, pattern)
		})
	}
}

// End-to-end over the gatekeeper alone: a 2-tap touch.data from a known
// contact must pass every gate and land as a 2-pulse feedback pattern.
func TestProcess_TapEndToEnd(t *testing.T) {
	c := &capture{}
	g := newTestGatekeeper(c, nil)

	sig := peerSignal(signal.CategoryTouch, signal.ActionData,
		&signal.TouchPayload{Type: signal.TouchTap, Count: 2})

	require.NoError(t, g.Process(sig))
	require.Len(t, c.dispatched, 1)
	require.Len(t, c.patterns, 1)
	assert.Equal(t, haptic.Pattern{80, 60, 80, 60}, c.patterns[0])
}
