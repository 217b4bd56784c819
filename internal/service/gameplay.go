package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hexblast/hexblast-backend/internal/apperror"
	"github.com/hexblast/hexblast-backend/internal/config"
	"github.com/hexblast/hexblast-backend/internal/entity"
	"github.com/hexblast/hexblast-backend/internal/hexmatch"
)

// Notifier fans session events out to connected players. A dead connection
// is the receiver's problem; delivery failures never reach this layer.
type Notifier interface {
	Notify(playerID, action string, payload any)
}

// TurnUpdate is broadcast to both players after every resolved action.
type TurnUpdate struct {
	ActivePlayerID   string           `json:"active_player_id"`
	ActivePlayerName string           `json:"active_player_name"`
	Round            int              `json:"round"`
	Players          [2]entity.Player `json:"players"`
	ScoreGained      int              `json:"score_gained"`
}

// GameOver is broadcast once when a session finishes.
type GameOver struct {
	Winner  string              `json:"winner"`
	Results []entity.GameResult `json:"results"`
}

type GamePlayService interface {
	MakeMove(ctx context.Context, sessionID, playerID string, x, y int) (*entity.MoveResult, error)
	UseBomb(ctx context.Context, sessionID, playerID string, x, y int) (*entity.MoveResult, error)
	GetSessionState(ctx context.Context, sessionID string) (*entity.Session, error)
}

type gamePlayService struct {
	logger *slog.Logger
	rules  config.Game

	sessionService SessionService
	rewardService  RewardService
	notifier       Notifier

	// Serializes mutations per session: the turn checks close races between
	// the two players, but double-submission by the one active player needs
	// an explicit lock around the read-modify-write.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGamePlayService(logger *slog.Logger, rules config.Game, sessionService SessionService, rewardService RewardService, notifier Notifier) GamePlayService {
	return &gamePlayService{
		logger:         logger.With("component", "gameplay"),
		rules:          rules,
		sessionService: sessionService,
		rewardService:  rewardService,
		notifier:       notifier,
		locks:          make(map[string]*sync.Mutex),
	}
}

func (that *gamePlayService) MakeMove(ctx context.Context, sessionID, playerID string, x, y int) (*entity.MoveResult, error) {
	return that.resolveAction(ctx, sessionID, playerID, x, y, false)
}

func (that *gamePlayService) UseBomb(ctx context.Context, sessionID, playerID string, x, y int) (*entity.MoveResult, error) {
	return that.resolveAction(ctx, sessionID, playerID, x, y, true)
}

func (that *gamePlayService) GetSessionState(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := that.sessionService.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// resolveAction validates one player action, resolves it on a working copy
// of the board, applies the turn/round state machine, and persists the
// session. Any rejection leaves the stored session untouched.
func (that *gamePlayService) resolveAction(ctx context.Context, sessionID, playerID string, x, y int, bomb bool) (*entity.MoveResult, error) {
	lock := that.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := that.sessionService.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err = session.ConfirmInProgress(); err != nil {
		return nil, err
	}

	player := session.PlayerByID(playerID)
	if player == nil || session.Turn != playerID {
		return nil, apperror.ErrNotYourTurn
	}

	if player.MovesLeft <= 0 {
		return nil, apperror.ErrNoMovesLeft
	}

	if bomb && player.Bombs <= 0 {
		return nil, apperror.ErrNoBombsAvailable
	}

	if !session.Board.InBounds(x, y) {
		return nil, apperror.ErrInvalidPosition
	}

	if session.Board.At(x, y) == hexmatch.Empty {
		return nil, apperror.ErrEmptyCell
	}

	working := session.Board.Clone()
	policy := hexmatch.Policy{Cascade: that.rules.Cascade}

	var outcome *hexmatch.Outcome
	if bomb {
		outcome = hexmatch.ResolveBomb(working, x, y, policy)
	} else {
		outcome = hexmatch.ResolveClick(working, x, y, policy)
	}

	if !outcome.Matched {
		return that.applyNoMatch(ctx, session, player, x, y)
	}

	return that.applyResolution(ctx, session, player, working, outcome, x, y, bomb)
}

// applyNoMatch handles an ordinary click whose group was below the match
// threshold. The board is never mutated by the click itself; only the
// solvability re-check (and, by policy, the move counter) can change state.
// A consumed move runs the same turn/round machinery as a resolved one, so
// the round limit can finish a session here too.
func (that *gamePlayService) applyNoMatch(ctx context.Context, session *entity.Session, player *entity.Player, x, y int) (*entity.MoveResult, error) {
	mutated := false
	finished := false

	if that.rules.ConsumeMoveOnNoMatch {
		player.MovesLeft--
		session.AdvanceTurn(that.rules.MovesPerTurn)
		session.TurnDeadline = time.Now().Add(that.rules.TurnDuration())
		finished = session.FinishIfRoundsExceeded(that.rules.TotalRounds)
		mutated = true
	}

	regenerated := false
	if !session.Board.HasPossibleMoves() {
		session.Board.Regenerate()
		regenerated = true
		mutated = true
	}

	if mutated {
		if err := that.sessionService.UpdateSession(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to update session: %w", err)
		}

		that.broadcastTurnUpdate(session, 0)
	}

	result := &entity.MoveResult{
		TotalScore:       player.Score,
		Round:            session.Round,
		MovesLeft:        player.MovesLeft,
		Board:            session.Board.Clone(),
		BoardRegenerated: regenerated,
		GameOver:         finished,
		ClickedX:         x,
		ClickedY:         y,
	}

	if finished {
		result.Winner = session.Winner()
		that.forgetLock(session.ID)
		that.settleAndAnnounce(ctx, session)
	}

	return result, nil
}

// applyResolution applies a qualifying outcome to the session state machine
// and persists it. The board swap, scoring, turn advance, and deadline
// re-arm all happen on in-memory state; a storage failure discards the lot.
func (that *gamePlayService) applyResolution(ctx context.Context, session *entity.Session, player *entity.Player, working *hexmatch.Board, outcome *hexmatch.Outcome, x, y int, bomb bool) (*entity.MoveResult, error) {
	player.MovesLeft--
	player.Score += outcome.Score
	if outcome.BombGranted {
		player.Bombs++
	}
	if bomb {
		player.Bombs--
	}

	regenerated := false
	if !working.HasPossibleMoves() {
		working.Regenerate()
		regenerated = true
	}
	session.Board = working

	session.AdvanceTurn(that.rules.MovesPerTurn)
	session.TurnDeadline = time.Now().Add(that.rules.TurnDuration())
	finished := session.FinishIfRoundsExceeded(that.rules.TotalRounds)

	if err := that.sessionService.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	result := &entity.MoveResult{
		ScoreGained:      outcome.Score,
		TotalScore:       player.Score,
		Round:            session.Round,
		MovesLeft:        player.MovesLeft,
		Board:            session.Board.Clone(),
		Exploded:         outcome.Exploded,
		Fallen:           outcome.Fallen,
		NewBlocks:        outcome.NewBlocks,
		BoardRegenerated: regenerated,
		GameOver:         finished,
		ClickedX:         x,
		ClickedY:         y,
	}

	that.broadcastTurnUpdate(session, outcome.Score)

	if finished {
		result.Winner = session.Winner()
		that.forgetLock(session.ID)
		that.settleAndAnnounce(ctx, session)
	}

	return result, nil
}

// settleAndAnnounce runs reward settlement and broadcasts game:over. A
// settlement failure is logged, never propagated: the session is already
// finished and persisted.
func (that *gamePlayService) settleAndAnnounce(ctx context.Context, session *entity.Session) {
	log := that.logger.With("method", "settleAndAnnounce", "sessionID", session.ID)

	results, err := that.rewardService.SettleSession(ctx, session)
	if err != nil {
		log.Error("failed to settle rewards", "error", err)
	}

	payload := GameOver{
		Winner:  session.Winner(),
		Results: results,
	}

	for _, player := range session.Players {
		that.notifier.Notify(player.ID, ActionGameOver, payload)
	}

	log.Info("game finished", "winner", payload.Winner)
}

func (that *gamePlayService) broadcastTurnUpdate(session *entity.Session, scoreGained int) {
	update := TurnUpdate{
		ActivePlayerID: session.Turn,
		Round:          session.Round,
		Players:        [2]entity.Player{*session.Players[0], *session.Players[1]},
		ScoreGained:    scoreGained,
	}
	if active := session.ActivePlayer(); active != nil {
		update.ActivePlayerName = active.Name
	}

	for _, player := range session.Players {
		that.notifier.Notify(player.ID, ActionTurnUpdate, update)
	}
}

func (that *gamePlayService) sessionLock(sessionID string) *sync.Mutex {
	that.mu.Lock()
	defer that.mu.Unlock()

	lock, ok := that.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[sessionID] = lock
	}

	return lock
}

// forgetLock evicts a finished session's lock so the map does not grow for
// the life of the process. A late action on the session re-creates the
// entry and is then rejected by the finished-status check.
func (that *gamePlayService) forgetLock(sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.locks, sessionID)
}
