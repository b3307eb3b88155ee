package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/pkg/auth"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/logger"
)

// AuthService handles registration and login.
type AuthService struct {
	users repositories.UserRepo
}

// NewAuthService wires the service to its user store.
func NewAuthService(users repositories.UserRepo) *AuthService {
	return &AuthService{users: users}
}

// RegisterInput is the payload for a new account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"nullable,min=2"`
}

// Register creates a user account and returns it with a fresh token.
// Duplicate emails surface as ErrEmailTaken regardless of whether the
// pre-check or the unique index catches them.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !database.IsNoDocuments(err) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("services: hash password: %w", err)
	}

	u := &models.User{
		Email:    email,
		Password: hash,
		FullName: strings.TrimSpace(in.FullName),
		Role:     auth.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := auth.GenerateToken(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("services: issue token: %w", err)
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID.Hex())
	return u, token, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password both return ErrInvalidCredentials so the response does not reveal
// which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if database.IsNoDocuments(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("services: issue token: %w", err)
	}
	return u, token, nil
}
