package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hexblast/hexblast-backend/internal/apperror"
	"github.com/hexblast/hexblast-backend/internal/entity"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, c *conn) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return sendErrorResponse(c, msg.Action, "Player is required")
	}

	user, err := that.users.GetOrCreateUser(ctx, payloadReq.Player.ID, payloadReq.Player.Name)
	if err != nil {
		log.Error("failed to get or create user", "error", err)
		return sendErrorResponse(c, msg.Action, "failed to create a new player")
	}

	c.playerID = user.ID
	that.matchmaker.Register(user.ID, c)

	if err = c.Send(msg.Action, Payload{User: user}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", user.ID)

	return nil
}

func (that *Server) handleQueueJoin(ctx context.Context, msg *Message, c *conn) error {
	log := that.logger.With("method", "handleQueueJoin")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		log.Error("Player is missing in payload")
		return sendErrorResponse(c, msg.Action, "Player is required")
	}

	c.playerID = payloadReq.Player.ID
	that.matchmaker.Register(payloadReq.Player.ID, c)
	that.matchmaker.JoinQueue(payloadReq.Player.ID, payloadReq.Player.Name)

	if err := c.Send(msg.Action, Payload{Queued: true}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	// Match found notifications go out asynchronously through the
	// matchmaker's registry, not through this request/response pair.
	if _, err := that.matchmaker.TryMatch(ctx, payloadReq.Player.ID); err != nil {
		log.Error("pairing attempt failed", "playerID", payloadReq.Player.ID, "error", err)
	}

	log.Info("player joined matchmaking queue", "playerID", payloadReq.Player.ID)

	return nil
}

func (that *Server) handleGameMove(ctx context.Context, msg *Message, c *conn) error {
	return that.handleBoardAction(ctx, msg, c, false)
}

func (that *Server) handleGameBomb(ctx context.Context, msg *Message, c *conn) error {
	return that.handleBoardAction(ctx, msg, c, true)
}

func (that *Server) handleBoardAction(ctx context.Context, msg *Message, c *conn, bomb bool) error {
	log := that.logger.With("method", "handleBoardAction", "action", msg.Action)

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		log.Error("Player is missing in payload")
		return sendErrorResponse(c, msg.Action, "Player is required")
	}

	if payloadReq.SessionID == "" {
		log.Error("Session is missing in payload")
		return sendErrorResponse(c, msg.Action, "Session is required")
	}

	if payloadReq.X == nil || payloadReq.Y == nil {
		log.Error("Coordinates are missing in payload")
		return sendErrorResponse(c, msg.Action, "Coordinates are required")
	}

	log = log.With("playerID", payloadReq.Player.ID, "sessionID", payloadReq.SessionID)

	var result *entity.MoveResult
	var err error
	if bomb {
		result, err = that.gamePlay.UseBomb(ctx, payloadReq.SessionID, payloadReq.Player.ID, *payloadReq.X, *payloadReq.Y)
	} else {
		result, err = that.gamePlay.MakeMove(ctx, payloadReq.SessionID, payloadReq.Player.ID, *payloadReq.X, *payloadReq.Y)
	}

	if isRejection(err) {
		return sendErrorResponse(c, msg.Action, err.Error())
	}

	if err != nil {
		log.Error("failed to resolve action", "error", err)
		return sendErrorResponse(c, msg.Action, "failed to resolve action")
	}

	if err = c.Send(msg.Action, Payload{Result: result}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("action resolved", "scoreGained", result.ScoreGained, "gameOver", result.GameOver)

	return nil
}

func (that *Server) handleGameState(ctx context.Context, msg *Message, c *conn) error {
	log := that.logger.With("method", "handleGameState")

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.SessionID == "" {
		log.Error("Session is missing in payload")
		return sendErrorResponse(c, msg.Action, "Session is required")
	}

	session, err := that.gamePlay.GetSessionState(ctx, payloadReq.SessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return sendErrorResponse(c, msg.Action, err.Error())
	}

	if err != nil {
		log.Error("failed to get session state", "sessionID", payloadReq.SessionID, "error", err)
		return sendErrorResponse(c, msg.Action, "failed to get session state")
	}

	if err = c.Send(msg.Action, Payload{Session: session}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

// isRejection reports whether the error is one of the recoverable,
// user-facing rejections that echo back to the client verbatim.
func isRejection(err error) bool {
	for _, rejection := range []error{
		apperror.ErrSessionNotFound,
		apperror.ErrNotYourTurn,
		apperror.ErrNoMovesLeft,
		apperror.ErrNoBombsAvailable,
		apperror.ErrInvalidPosition,
		apperror.ErrEmptyCell,
		apperror.ErrGameFinished,
	} {
		if errors.Is(err, rejection) {
			return true
		}
	}

	return false
}

func sendErrorResponse(c *conn, action, errorMsg string) error {
	if err := c.Send(action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
