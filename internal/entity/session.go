package entity

import (
	"time"

	"github.com/hexblast/hexblast-backend/internal/apperror"
	"github.com/hexblast/hexblast-backend/internal/hexmatch"
)

const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"

	// WinnerTie is the winner value reported when both players finish with
	// the same score.
	WinnerTie = "Tie"
)

// Player is one of a session's two player slots.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	MovesLeft int    `json:"moves_left"`
	Bombs     int    `json:"bombs"`
}

// Session is one two-player match. The gameplay service is the only writer;
// everything else works on copies. A session's identity never changes after
// creation.
type Session struct {
	ID           string          `json:"id"`
	Players      [2]*Player      `json:"players"`
	Board        *hexmatch.Board `json:"board"`
	Turn         string          `json:"turn"` // id of the active player
	Round        int             `json:"round"`
	Status       string          `json:"status"`
	TurnDeadline time.Time       `json:"turn_deadline"`
}

// NewSession - creates a session in player 1's turn with both players
// holding the full per-round move allowance.
func NewSession(id string, player1, player2 *Player, board *hexmatch.Board, movesPerTurn int) *Session {
	player1.MovesLeft = movesPerTurn
	player2.MovesLeft = movesPerTurn

	return &Session{
		ID:      id,
		Players: [2]*Player{player1, player2},
		Board:   board,
		Turn:    player1.ID,
		Round:   1,
		Status:  StatusInProgress,
	}
}

func (that *Session) IsFinished() bool {
	return that.Status == StatusFinished
}

// ConfirmInProgress - rejects any action against a finished session.
func (that *Session) ConfirmInProgress() error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	return nil
}

// PlayerByID returns the slot for the given player id, or nil.
func (that *Session) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player != nil && player.ID == id {
			return player
		}
	}

	return nil
}

// Opponent returns the other player's slot, or nil for an unknown id.
func (that *Session) Opponent(id string) *Player {
	switch id {
	case that.Players[0].ID:
		return that.Players[1]
	case that.Players[1].ID:
		return that.Players[0]
	default:
		return nil
	}
}

// ActivePlayer returns the slot whose turn it is.
func (that *Session) ActivePlayer() *Player {
	return that.PlayerByID(that.Turn)
}

// AdvanceTurn - hands the turn to the opponent once the active player has
// exhausted their allowance, restoring the new active player's moves. The
// round counter increments when control returns to player 1.
func (that *Session) AdvanceTurn(movesPerTurn int) bool {
	active := that.ActivePlayer()
	if active == nil || active.MovesLeft > 0 {
		return false
	}

	next := that.Opponent(active.ID)
	next.MovesLeft = movesPerTurn
	that.Turn = next.ID

	if next == that.Players[0] {
		that.Round++
	}

	return true
}

// FinishIfRoundsExceeded - transitions the session to finished once the
// round counter passes the configured total.
func (that *Session) FinishIfRoundsExceeded(totalRounds int) bool {
	if that.Round <= totalRounds {
		return false
	}

	that.Status = StatusFinished

	return true
}

// Winner returns the name of the player with the higher final score, or
// WinnerTie on equal scores.
func (that *Session) Winner() string {
	switch {
	case that.Players[0].Score > that.Players[1].Score:
		return that.Players[0].Name
	case that.Players[1].Score > that.Players[0].Score:
		return that.Players[1].Name
	default:
		return WinnerTie
	}
}
