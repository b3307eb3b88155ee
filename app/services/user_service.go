package services

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/pkg/auth"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/logger"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// UserService is the admin-facing account manager.
type UserService struct {
	users repositories.UserRepo
}

// NewUserService wires the service to its user store.
func NewUserService(users repositories.UserRepo) *UserService {
	return &UserService{users: users}
}

// CreateUserInput is the admin payload for creating an account directly.
type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"nullable,min=2"`
	Role     string `json:"role" validate:"nullable,in=user,admin"`
}

// UpdateUserInput carries partial account changes; nil fields are untouched.
type UpdateUserInput struct {
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (s *UserService) List(ctx context.Context, page, perPage int) ([]models.User, response.Pagination, error) {
	return s.users.List(ctx, page, perPage)
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = auth.RoleUser
	}
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return nil, ErrInvalidRole
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("services: hash password: %w", err)
	}

	u := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: hash,
		FullName: strings.TrimSpace(in.FullName),
		Role:     role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, in UpdateUserInput) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}

	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("services: hash password: %w", err)
		}
		u.Password = hash
	}
	if in.Role != nil {
		if *in.Role != auth.RoleUser && *in.Role != auth.RoleAdmin {
			return nil, ErrInvalidRole
		}
		u.Role = *in.Role
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, asNotFound(err)
	}
	return u, nil
}

// Delete removes an account. An admin deleting their own account is refused
// so an instance cannot lock itself out of administration.
func (s *UserService) Delete(ctx context.Context, actorID, id primitive.ObjectID) error {
	if actorID == id {
		return ErrSelfDelete
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return asNotFound(err)
	}
	logger.WithCtx(ctx).Info("user deleted", "user_id", id.Hex(), "by", actorID.Hex())
	return nil
}
