package service

import (
	"context"
	"fmt"

	"github.com/hexblast/hexblast-backend/internal/entity"
	"github.com/hexblast/hexblast-backend/internal/hexmatch"
	"github.com/hexblast/hexblast-backend/internal/pkg"
)

type SessionService interface {
	CreateSession(ctx context.Context, player1, player2 entity.QueueEntry) (*entity.Session, error)
	GetSessionByID(ctx context.Context, id string) (*entity.Session, error)
	UpdateSession(ctx context.Context, session *entity.Session) error
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type sessionService struct {
	sessionRepo  sessionRepo
	movesPerTurn int
}

func NewSessionService(sessionRepo sessionRepo, movesPerTurn int) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		movesPerTurn: movesPerTurn,
	}
}

// CreateSession - seeds a fresh solvable board and persists a new session
// with the first queue entry as player 1 (the first mover).
func (that *sessionService) CreateSession(ctx context.Context, player1, player2 entity.QueueEntry) (*entity.Session, error) {
	session := entity.NewSession(
		pkg.GenerateGameID(),
		&entity.Player{ID: player1.PlayerID, Name: player1.Name},
		&entity.Player{ID: player2.PlayerID, Name: player2.Name},
		hexmatch.NewBoard(),
		that.movesPerTurn,
	)

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session from storage: %w", err)
	}

	return session, nil
}

func (that *sessionService) GetSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session from storage: %w", err)
	}

	return session, nil
}

func (that *sessionService) UpdateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}
