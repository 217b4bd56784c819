package service

import (
	"context"
	"testing"

	"github.com/hexblast/hexblast-backend/internal/entity"
	"github.com/hexblast/hexblast-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUserRepo struct {
	users map[string]*entity.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*entity.User)}
}

func (that *memoryUserRepo) CreateOrUpdate(_ context.Context, user *entity.User) error {
	stored := *user
	that.users[user.ID] = &stored

	return nil
}

func (that *memoryUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	user, ok := that.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	stored := *user

	return &stored, nil
}

func TestUserService_GetOrCreateUser(t *testing.T) {
	t.Run("Creates on first contact", func(t *testing.T) {
		// Given: an empty user store
		repo := newMemoryUserRepo()
		users := NewUserService(repo)

		// When: an unknown player connects
		user, err := users.GetOrCreateUser(context.Background(), "u1", "Alice")

		// Then: a zeroed profile is created and persisted
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "Alice", user.Name)
		assert.Zero(t, user.Trophies)
		require.Contains(t, repo.users, "u1")
	})

	t.Run("Returns the existing profile untouched", func(t *testing.T) {
		// Given: a stored user with progression
		repo := newMemoryUserRepo()
		repo.users["u1"] = &entity.User{ID: "u1", Name: "Alice", Trophies: 200}
		users := NewUserService(repo)

		// When: the player reconnects under a different display name
		user, err := users.GetOrCreateUser(context.Background(), "u1", "NewAlice")

		// Then: the stored profile wins
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, 200, user.Trophies)
	})

	t.Run("Generates an id when none is supplied", func(t *testing.T) {
		repo := newMemoryUserRepo()
		users := NewUserService(repo)

		user, err := users.GetOrCreateUser(context.Background(), "", "Alice")

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	// Given: a stored user
	repo := newMemoryUserRepo()
	users := NewUserService(repo)

	user, err := users.GetOrCreateUser(context.Background(), "u1", "Alice")
	require.NoError(t, err)

	// When: rewards are applied and saved
	user.Trophies = 50
	user.Coins = 3
	require.NoError(t, users.UpdateUser(context.Background(), user))

	// Then: a fresh read sees the new totals
	reloaded, err := users.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, reloaded.Trophies)
	assert.Equal(t, 3, reloaded.Coins)
}
