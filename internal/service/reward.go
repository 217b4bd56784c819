package service

import (
	"context"
	"fmt"

	"github.com/hexblast/hexblast-backend/internal/entity"
)

type RewardService interface {
	SettleSession(ctx context.Context, session *entity.Session) ([]entity.GameResult, error)
}

type rewardService struct {
	userService UserService
}

func NewRewardService(userService UserService) RewardService {
	return &rewardService{
		userService: userService,
	}
}

// SettleSession - computes and applies both players' rewards for a finished
// session and returns the two settlement summaries, player 1 first.
func (that *rewardService) SettleSession(ctx context.Context, session *entity.Session) ([]entity.GameResult, error) {
	results := make([]entity.GameResult, 0, 2)

	for i, player := range session.Players {
		opponent := session.Players[1-i]

		user, err := that.userService.GetOrCreateUser(ctx, player.ID, player.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load user %s: %w", player.ID, err)
		}

		result := entity.CalculateRewards(player.Score, opponent.Score, user)
		result.SessionID = session.ID
		result.OpponentName = opponent.Name

		user.Trophies = result.NewTrophyCount
		user.Coins = result.NewCoinCount
		user.Stars = result.NewStarCount

		if err = that.userService.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to apply rewards to user %s: %w", player.ID, err)
		}

		results = append(results, result)
	}

	return results, nil
}
