package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
)

func TestTicTacToe_RoleAssignment(t *testing.T) {
	e := &testEnv{}

	lower := NewTicTacToe(e.env(), "ABCD12", "ZZTOP9")
	assert.Equal(t, "X", lower.Role())

	higher := NewTicTacToe(e.env(), "ZZTOP9", "ABCD12")
	assert.Equal(t, "O", higher.Role())
}

func TestTicTacToe_StartInvitesAndClears(t *testing.T) {
	e := &testEnv{}
	g := NewTicTacToe(e.env(), "ABCD12", "ZZTOP9")

	e.run(func() {
		g.Move(0)
		g.Start()
		assert.Equal(t, [9]string{}, g.Board())
	})

	ems := e.emitted()
	require.Len(t, ems, 2)
	assert.Equal(t, signal.CategoryTicTacToe, ems[1].category)
	assert.Equal(t, signal.ActionInvite, ems[1].action)
}

func TestTicTacToe_TurnAlternation(t *testing.T) {
	e := &testEnv{}
	g := NewTicTacToe(e.env(), "ABCD12", "ZZTOP9") // plays X, moves first

	e.run(func() {
		assert.True(t, g.MyTurn())
		g.Move(0)
		assert.False(t, g.MyTurn())

		// Moving out of turn is ignored.
		g.Move(1)
		assert.Equal(t, "", g.Board()[1])

		g.Handle(inbound(signal.CategoryTicTacToe, signal.ActionData,
			&signal.TicTacToePayload{Cell: 4, Player: "O"}))
		assert.True(t, g.MyTurn())
	})

	ems := e.emitted()
	require.Len(t, ems, 1)
	p := ems[0].payload.(*signal.TicTacToePayload)
	assert.Equal(t, 0, p.Cell)
	assert.Equal(t, "X", p.Player)
}

func TestTicTacToe_RejectsBadRemoteMoves(t *testing.T) {
	e := &testEnv{}
	g := NewTicTacToe(e.env(), "ABCD12", "ZZTOP9")

	e.run(func() {
		g.Move(0)

		// The peer plays O; an inbound X is a desync and dropped.
		g.Handle(inbound(signal.CategoryTicTacToe, signal.ActionData,
			&signal.TicTacToePayload{Cell: 1, Player: "X"}))
		assert.Equal(t, "", g.Board()[1])

		// Occupied cells and out-of-range cells are dropped too.
		g.Handle(inbound(signal.CategoryTicTacToe, signal.ActionData,
			&signal.TicTacToePayload{Cell: 0, Player: "O"}))
		g.Handle(inbound(signal.CategoryTicTacToe, signal.ActionData,
			&signal.TicTacToePayload{Cell: 9, Player: "O"}))
		assert.Equal(t, "X", g.Board()[0])
	})
}

func TestTicTacToe_WinFeedbackFiresOnce(t *testing.T) {
	e := &testEnv{}
	g := NewTicTacToe(e.env(), "ABCD12", "ZZTOP9")

	e.run(func() {
		// X sweeps the top row.
		g.Move(0)
		g.Handle(inbound(signal.CategoryTicTacToe, signal.ActionData,
			&signal.TicTacToePayload{Cell: 3, Player: "O"}))
		g.Move(1)
		g.Handle(inbound(signal.CategoryTicTacToe, signal.ActionData,
			&signal.TicTacToePayload{Cell: 4, Player: "O"}))
		g.Move(2)

		mark, line, won := g.Winner()
		require.True(t, won)
		assert.Equal(t, "X", mark)
		assert.Equal(t, [3]int{0, 1, 2}, line)
		assert.False(t, g.MyTurn(), "finished games have no turns")

		// Late moves after the win change nothing.
		g.Handle(inbound(signal.CategoryTicTacToe, signal.ActionData,
			&signal.TicTacToePayload{Cell: 5, Player: "O"}))
		assert.Equal(t, "", g.Board()[5])
	})

	assert.Equal(t, []haptic.Pattern{haptic.GameOver(true)}, e.felt())
}

func TestTicTacToe_DrawFeedback(t *testing.T) {
	e := &testEnv{}
	g := NewTicTacToe(e.env(), "ABCD12", "ZZTOP9")

	// X X O / O O X / X O X is a full board with no line.
	moves := []struct {
		cell   int
		player string
	}{
		{0, "X"}, {2, "O"}, {1, "X"}, {3, "O"},
		{5, "X"}, {4, "O"}, {6, "X"}, {7, "O"}, {8, "X"},
	}
	e.run(func() {
		for _, mv := range moves {
			if mv.player == g.Role() {
				g.Move(mv.cell)
			} else {
				g.Handle(inbound(signal.CategoryTicTacToe, signal.ActionData,
					&signal.TicTacToePayload{Cell: mv.cell, Player: mv.player}))
			}
		}

		assert.True(t, g.Draw())
		_, _, won := g.Winner()
		assert.False(t, won)
	})

	assert.Equal(t, []haptic.Pattern{haptic.GameOver(false)}, e.felt())
}

func TestTicTacToe_ResetClearsBoardBothWays(t *testing.T) {
	e := &testEnv{}
	g := NewTicTacToe(e.env(), "ABCD12", "ZZTOP9")

	e.run(func() {
		g.Move(0)
		g.Reset()
		assert.Equal(t, [9]string{}, g.Board())
		assert.True(t, g.MyTurn())

		g.Move(4)
		g.Handle(inbound(signal.CategoryTicTacToe, signal.ActionReset, nil))
		assert.Equal(t, [9]string{}, g.Board())
	})

	// One data move, one reset, one more data move.
	ems := e.emitted()
	require.Len(t, ems, 3)
	assert.Equal(t, signal.ActionReset, ems[1].action)
}
