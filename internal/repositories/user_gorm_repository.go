package repositories

import (
	"context"
	"fmt"

	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", duplicateOr(err))
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, notFoundOr(err))
	}
	return &user, nil
}

// GetByUsernameOrEmail returns the first user whose username or email matches.
func (r *GORMUserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username or email: %w", notFoundOr(err))
	}
	return &user, nil
}

// GetByActivationCode retrieves the user holding an activation code.
func (r *GORMUserRepository) GetByActivationCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "activation_code = ?", code).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by activation code: %w", notFoundOr(err))
	}
	return &user, nil
}

// Update persists every column of user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Save(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", duplicateOr(res.Error))
	}
	return nil
}

// List returns one page of users matching q and the total match count.
func (r *GORMUserRepository) List(ctx context.Context, q UserQuery) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		tx := r.db.Model(&models.User{}).Scopes(searchScope(q.Search, "users.username", "users.email"))
		if q.Role != "" {
			// Roles are stored as a JSON array of quoted names.
			tx = tx.Where("users.roles LIKE ?", `%"`+q.Role+`"%`)
		}
		if q.IsActive != nil {
			tx = tx.Where("users.is_active = ?", *q.IsActive)
		}
		return tx
	}
	users, total, err := findPage[models.User](ctx, base, q.ListQuery, orderClause("users", q.ListQuery, UserSortColumns))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// All returns every user. Used for notification fan-out.
func (r *GORMUserRepository) All(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}
