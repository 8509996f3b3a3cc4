package services

import (
	"context"
	"log/slog"
	"time"

	"katalog/internal/apperr"
	"katalog/internal/cache"
	"katalog/internal/models"
	"katalog/internal/repositories"
)

// UserService serves user lookups.
type UserService struct {
	userRepo repositories.UserRepository
	lists    *listCache
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, store cache.Store, ttl time.Duration, logger *slog.Logger) *UserService {
	return &UserService{userRepo: userRepo, lists: newListCache(store, ttl, logger)}
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, q repositories.UserQuery) (*models.Page[models.User], error) {
	q.Normalize()
	return cachedList(ctx, s.lists, cache.UserPrefix, q, q.Page, q.Limit, func(ctx context.Context) ([]models.User, int64, error) {
		return s.userRepo.List(ctx, q)
	})
}

// GetByID returns one user.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

// FindAll returns every user.
func (s *UserService) FindAll(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.All(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to load users", err)
	}
	return users, nil
}
