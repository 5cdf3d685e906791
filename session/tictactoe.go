package session

import (
	"github.com/vibelink/vibelink/haptic"
	"github.com/vibelink/vibelink/signal"
)

// TicTacToe is the shared board game. Roles are assigned without any
// negotiation: the lexicographically lower pairing code always plays X,
// so both peers agree on the assignment independently. Moves are relayed
// as game-ttt data signals; duplicate or late moves are ignored, and the
// completion feedback fires exactly once per finished game.
type TicTacToe struct {
	env Env

	myRole    string
	theirRole string

	board [9]string
	xNext bool
	felt  bool // completion feedback already emitted for this game
}

var tttLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// NewTicTacToe creates a fresh board for a pair of devices.
func NewTicTacToe(env Env, myCode, theirCode string) *TicTacToe {
	t := &TicTacToe{env: env, xNext: true}
	if myCode < theirCode {
		t.myRole, t.theirRole = "X", "O"
	} else {
		t.myRole, t.theirRole = "O", "X"
	}
	return t
}

// Role returns the local player's mark.
func (t *TicTacToe) Role() string { return t.myRole }

// Board returns the current cell contents, "" for empty.
func (t *TicTacToe) Board() [9]string { return t.board }

// MyTurn reports whether the local player may move.
func (t *TicTacToe) MyTurn() bool {
	if t.finished() {
		return false
	}
	current := "O"
	if t.xNext {
		current = "X"
	}
	return current == t.myRole
}

// Winner returns the winning mark and line, or ok=false while the game is
// open or drawn.
func (t *TicTacToe) Winner() (mark string, line [3]int, ok bool) {
	for _, l := range tttLines {
		if t.board[l[0]] != "" && t.board[l[0]] == t.board[l[1]] && t.board[l[0]] == t.board[l[2]] {
			return t.board[l[0]], l, true
		}
	}
	return "", [3]int{}, false
}

// Draw reports a full board with no winner.
func (t *TicTacToe) Draw() bool {
	if _, _, won := t.Winner(); won {
		return false
	}
	for _, c := range t.board {
		if c == "" {
			return false
		}
	}
	return true
}

func (t *TicTacToe) finished() bool {
	if _, _, won := t.Winner(); won {
		return true
	}
	return t.Draw()
}

// Start clears the board and invites the peer into the game.
func (t *TicTacToe) Start() {
	t.clear()
	t.env.emit(signal.CategoryTicTacToe, signal.ActionInvite, nil)
}

// Move plays the local mark at cell and relays it. Out-of-turn moves,
// occupied cells, and finished games are all no-ops.
func (t *TicTacToe) Move(cell int) {
	if cell < 0 || cell > 8 || !t.MyTurn() || t.board[cell] != "" {
		return
	}

	t.apply(cell, t.myRole)
	t.env.emit(signal.CategoryTicTacToe, signal.ActionData, &signal.TicTacToePayload{
		Cell:   cell,
		Player: t.myRole,
	})
}

// Reset clears the board on both sides.
func (t *TicTacToe) Reset() {
	t.clear()
	t.env.emit(signal.CategoryTicTacToe, signal.ActionReset, nil)
}

// Handle processes an inbound game signal.
func (t *TicTacToe) Handle(sig *signal.Signal) {
	switch sig.Action {
	case signal.ActionInvite, signal.ActionReset:
		t.clear()

	case signal.ActionData:
		p := sig.TicTacToe()
		if p == nil {
			return
		}
		// Accept only the peer's own mark, on an empty cell, in an open
		// game; everything else is a duplicate or a desync and ignored.
		if p.Cell < 0 || p.Cell > 8 {
			return
		}
		if p.Player != t.theirRole || t.finished() || t.board[p.Cell] != "" {
			return
		}
		t.apply(p.Cell, p.Player)
	}
}

func (t *TicTacToe) apply(cell int, player string) {
	t.board[cell] = player
	t.xNext = player != "X"

	if t.felt {
		return
	}
	if _, _, won := t.Winner(); won {
		t.felt = true
		t.env.feedback(haptic.GameOver(true))
	} else if t.Draw() {
		t.felt = true
		t.env.feedback(haptic.GameOver(false))
	}
}

func (t *TicTacToe) clear() {
	t.board = [9]string{}
	t.xNext = true
	t.felt = false
}
