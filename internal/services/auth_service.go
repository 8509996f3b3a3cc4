package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"katalog/internal/apperr"
	"katalog/internal/cache"
	"katalog/internal/mail"
	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds token and password settings.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
	ClientHost    string
}

// Claims is the token payload.
type Claims struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	jwt.StandardClaims
}

// HasRole reports whether the token grants role.
func (c *Claims) HasRole(role string) bool {
	return models.Roles(c.Roles).Has(role)
}

// TokenPair is the result of a login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo repositories.UserRepository
	store    cache.Store
	lists    *listCache
	mailer   mail.Mailer
	cfg      AuthConfig
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, store cache.Store, mailer mail.Mailer, cfg AuthConfig, logger *slog.Logger) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo: userRepo,
		store:    store,
		lists:    newListCache(store, 0, logger),
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger,
	}
}

// RefreshTTL is the lifetime of refresh tokens and of the refresh cookie.
func (s *AuthService) RefreshTTL() time.Duration {
	return s.cfg.RefreshTTL
}

// Register creates an inactive account and mails its activation link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	s.logger.Info("Registering user", "username", in.Username)

	_, err := s.userRepo.GetByUsernameOrEmail(ctx, in.Username, in.Email)
	found, err := exists(err)
	if err != nil {
		return nil, apperr.Internal("Failed to create user", err)
	}
	if found {
		return nil, apperr.Conflict("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperr.Internal("Failed to create user", fmt.Errorf("failed to hash password: %w", err))
	}

	roles := models.Roles(in.Roles)
	if len(roles) == 0 {
		roles = models.Roles{models.RoleUser}
	}
	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       string(hashed),
		Roles:          roles,
		IsActive:       false,
		ActivationCode: uuid.NewString(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, conflictOr(err, "User already exists", apperr.Internal("Failed to create user", err))
	}
	s.lists.invalidate(ctx, cache.UserPrefix)

	msg := mail.ActivationMessage(user.Email, s.cfg.ClientHost, user.ActivationCode)
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send activation email", "userId", user.ID, "error", err)
	}
	return user, nil
}

// Login checks credentials and issues a token pair. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	s.logger.Info("Logging in user", "identifier", identifier)

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.NotFound("User not found")
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("Please activate your account")
	}
	return s.issueTokens(ctx, user.ID, user.Username, user.Email, user.Roles)
}

// Activate marks the account holding code as active.
func (s *AuthService) Activate(ctx context.Context, code string) (*models.User, error) {
	user, err := s.userRepo.GetByActivationCode(ctx, code)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	user.IsActive = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperr.Internal("Failed to activate user", err)
	}
	s.lists.invalidate(ctx, cache.UserPrefix)
	return user, nil
}

// Me returns the account the token was issued to.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

// Refresh exchanges a valid, current refresh token for a new token pair.
// The stored refresh token is replaced, so the old one stops working.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}
	var saved string
	found, err := s.store.Get(ctx, cache.RefreshTokenPrefix+claims.ID, &saved)
	if err != nil {
		return nil, apperr.Internal("Failed to read refresh token", err)
	}
	if !found || saved != refreshToken {
		return nil, apperr.NotFound("Token not found")
	}
	return s.issueTokens(ctx, claims.ID, claims.Username, claims.Email, claims.Roles)
}

// Logout revokes the refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parse(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, cache.RefreshTokenPrefix+claims.ID); err != nil {
		return apperr.Internal("Failed to revoke refresh token", err)
	}
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return nil, apperr.Unauthorized("Invalid password")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(next), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperr.Internal("Failed to change password", err)
	}
	user.Password = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperr.Internal("Failed to change password", err)
	}
	return user, nil
}

// ValidateAccessToken parses and validates an access token, returning its claims.
func (s *AuthService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, s.cfg.AccessSecret)
}

func (s *AuthService) issueTokens(ctx context.Context, id, username, email string, roles []string) (*TokenPair, error) {
	access, err := s.sign(id, username, email, roles, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}
	refresh, err := s.sign(id, username, email, roles, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}
	if err := s.store.Set(ctx, cache.RefreshTokenPrefix+id, refresh, s.cfg.RefreshTTL); err != nil {
		return nil, apperr.Internal("Failed to store refresh token", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sign(id, username, email string, roles []string, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:       id,
		Username: username,
		Email:    email,
		Roles:    roles,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parse(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperr.TokenExpired("Token has expired")
		}
		return nil, apperr.Unauthorized("Invalid token")
	}
	if !token.Valid || claims.ID == "" {
		return nil, apperr.Unauthorized("Invalid token")
	}
	return claims, nil
}
