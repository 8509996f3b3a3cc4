package repositories

import (
	"context"

	"katalog/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetByActivationCode(ctx context.Context, code string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, q UserQuery) ([]models.User, int64, error)
	All(ctx context.Context) ([]models.User, error)
}
