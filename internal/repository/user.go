package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hexblast/hexblast-backend/internal/entity"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	CreateOrUpdate(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type dbUser struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) UserRepository {
	return &dbUser{
		client: client,
	}
}

func (that *dbUser) CreateOrUpdate(ctx context.Context, user *entity.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	userKey := "user:" + user.ID
	err = that.client.Set(ctx, userKey, userJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set user: %w", err)
	}

	return nil
}

func (that *dbUser) GetByID(ctx context.Context, id string) (*entity.User, error) {
	userKey := "user:" + id

	response, err := that.client.Get(ctx, userKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	var existingUser entity.User
	if err = json.Unmarshal([]byte(response), &existingUser); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &existingUser, nil
}
