package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hexblast/hexblast-backend/internal/entity"
	"github.com/hexblast/hexblast-backend/internal/pkg"
	"github.com/hexblast/hexblast-backend/internal/repository"
)

type UserService interface {
	GetOrCreateUser(ctx context.Context, id, name string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) error
}

type userRepo interface {
	CreateOrUpdate(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type userService struct {
	userRepo userRepo
}

func NewUserService(userRepo userRepo) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

// GetOrCreateUser - returns the stored user for id, creating one (with a
// generated id when none was supplied) on first contact.
func (that *userService) GetOrCreateUser(ctx context.Context, id, name string) (*entity.User, error) {
	if id == "" {
		id = pkg.GenerateNewSessionID()
	}

	user, err := that.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = &entity.User{ID: id, Name: name}
		if err = that.userRepo.CreateOrUpdate(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		return user, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (that *userService) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := that.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (that *userService) UpdateUser(ctx context.Context, user *entity.User) error {
	if err := that.userRepo.CreateOrUpdate(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}
