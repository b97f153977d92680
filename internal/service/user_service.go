package service

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tours-service/internal/domain"
	"github.com/spec-kit/tours-service/internal/repository"
	apperrors "github.com/spec-kit/tours-service/pkg/util"
)

// UpdateMeInput holds the profile fields a user may change about themselves.
type UpdateMeInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Validate checks the provided fields.
func (in UpdateMeInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&in.Email, validation.NilOrNotEmpty, is.Email.Error("Please provide a valid email")),
	)
}

// UserService manages user profiles.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UpdateMe applies profile changes for the given user.
func (s *UserService) UpdateMe(ctx context.Context, userID string, in UpdateMeInput) (*domain.User, error) {
	if in.Email != nil {
		normalized := domain.NormalizeEmail(*in.Email)
		in.Email = &normalized
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.NewValidationError(MsgEmailTaken, map[string]any{"email": MsgEmailTaken})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// DeleteMe deactivates the account. Inactive accounts can neither log in nor authenticate.
func (s *UserService) DeleteMe(ctx context.Context, userID string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	user.Active = false
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// List returns a page of active users.
func (s *UserService) List(ctx context.Context, page, limit int) ([]domain.User, error) {
	limit, offset := pageBounds(page, limit)
	users, err := s.users.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

func (s *UserService) load(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("No user found with that ID")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func pageBounds(page, limit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}
