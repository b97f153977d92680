package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/tours-service/internal/auth"
	"github.com/spec-kit/tours-service/internal/config"
	"github.com/spec-kit/tours-service/internal/domain"
	"github.com/spec-kit/tours-service/internal/events"
	"github.com/spec-kit/tours-service/internal/mailer"
	"github.com/spec-kit/tours-service/internal/repository"
	apperrors "github.com/spec-kit/tours-service/pkg/util"
)

// Messages surfaced to clients. Login failures share one message so callers cannot tell
// an unknown email from a wrong password.
const (
	MsgIncorrectCredentials = "Incorrect email or password!"
	MsgMissingCredentials   = "Please provide email and password!"
	MsgInvalidToken         = "Invalid token. Please log in again!"
	MsgExpiredToken         = "Your token has expired! Please log in again."
	MsgUserGone             = "The user belonging to this token does no longer exist."
	MsgPasswordChanged      = "User recently changed password! Please log in again."
	MsgNoUserWithEmail      = "There is no user with that email address."
	MsgResetTokenInvalid    = "Token is invalid or has expired"
	MsgResetDeliveryFailed  = "There was an error sending the email. Try again later!"
	MsgWrongCurrentPassword = "Your current password is wrong."
	MsgEmailTaken           = "Email already in use"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

// Session is an issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SignupInput carries the signup form.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Validate checks the signup form.
func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("Please tell us your name!"), validation.Length(1, 200)),
		validation.Field(&in.Email, validation.Required.Error("Please provide your email"), is.Email.Error("Please provide a valid email")),
		validation.Field(&in.Password, passwordRules()...),
		validation.Field(&in.PasswordConfirm, confirmRules(in.Password)...),
	)
}

// PasswordInput carries a new password and its confirmation.
type PasswordInput struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Validate checks the new password.
func (in PasswordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Password, passwordRules()...),
		validation.Field(&in.PasswordConfirm, confirmRules(in.Password)...),
	)
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Please provide a password"),
		validation.Length(minPasswordLength, maxPasswordLength),
	}
}

func confirmRules(password string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Please confirm your password"),
		validation.By(func(value any) error {
			if s, _ := value.(string); s != password {
				return errors.New("Passwords are not the same!")
			}
			return nil
		}),
	}
}

// AuthService coordinates signup, login, session validation and password flows.
type AuthService struct {
	users    repository.UserRepository
	resets   repository.PasswordResetRepository
	tokenMgr *auth.TokenManager
	mailer   mailer.Sender
	events   events.Publisher
	logger   *zap.Logger
	cfg      config.AuthConfig
	now      func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Mailer            mailer.Sender
	Events            events.Publisher
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	publisher := deps.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    deps.UserRepo,
		resets:   deps.PasswordResetRepo,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		mailer:   deps.Mailer,
		events:   publisher,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithClock replaces the time source for the service and its token manager.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	s.tokenMgr.WithClock(now)
	return s
}

// Signup creates a new user account and opens a session for it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, Session, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, Session{}, validationError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, Session{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		Photo:        "default.jpg",
		Role:         domain.RoleUser,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, Session{}, apperrors.NewValidationError(MsgEmailTaken, map[string]any{"email": MsgEmailTaken})
		}
		return nil, Session{}, apperrors.NewInternalError(err)
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, Session{}, err
	}

	s.publish(ctx, events.NewEvent(events.EventUserSignedUp, user.ID, events.UserSignedUpPayload{
		Name:  user.Name,
		Email: user.Email,
	}))
	return user, session, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, Session{}, apperrors.NewValidationError(MsgMissingCredentials, nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Session{}, apperrors.NewUnauthorized(MsgIncorrectCredentials)
		}
		return nil, Session{}, apperrors.NewInternalError(err)
	}
	if !user.Active {
		return nil, Session{}, apperrors.NewUnauthorized(MsgIncorrectCredentials)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("password comparison failed", zap.String("user_id", user.ID), zap.Error(err))
		}
		return nil, Session{}, apperrors.NewUnauthorized(MsgIncorrectCredentials)
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, Session{}, err
	}
	return user, session, nil
}

// Authenticate resolves a session token to its user. Tokens issued before the user's last
// password change are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized(MsgExpiredToken)
		}
		return nil, apperrors.NewUnauthorized(MsgInvalidToken)
	}

	user, err := s.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(MsgUserGone)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized(MsgUserGone)
	}
	if user.ChangedPasswordAfter(claims.IssuedTime()) {
		return nil, apperrors.NewUnauthorized(MsgPasswordChanged)
	}
	return user, nil
}

// ForgotPassword stores a hashed reset token for the account and emails the plaintext.
// If the email cannot be sent the stored token is removed again.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound(MsgNoUserWithEmail)
		}
		return apperrors.NewInternalError(err)
	}
	if !user.Active {
		return apperrors.NewNotFound(MsgNoUserWithEmail)
	}

	plain, hash, err := auth.NewResetToken()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	ttl := s.cfg.PasswordResetTTL()
	expiresAt := s.now().Add(ttl)
	if err := s.resets.SetToken(ctx, user.ID, hash, expiresAt); err != nil {
		return apperrors.NewInternalError(err)
	}

	resetURL := fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.ResetURL, "/"), plain)
	msg := mailer.Email{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("Your password reset token (valid for %d min)", int(ttl.Minutes())),
		Body: fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and "+
			"passwordConfirm to: %s.\nIf you didn't forget your password, please ignore this email!", resetURL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		if clearErr := s.resets.Clear(context.WithoutCancel(ctx), user.ID); clearErr != nil {
			s.logger.Error("failed to clear reset token after delivery failure",
				zap.String("user_id", user.ID), zap.Error(clearErr))
		}
		return apperrors.NewDeliveryError(MsgResetDeliveryFailed, err)
	}

	s.publish(ctx, events.NewEvent(events.EventPasswordResetRequested, user.ID, events.PasswordResetRequestedPayload{
		ExpiresAt: expiresAt,
	}))
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token string, in PasswordInput) (*domain.User, Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, Session{}, apperrors.NewUnauthorized(MsgResetTokenInvalid)
	}

	now := s.now()
	user, err := s.resets.GetUserByToken(ctx, auth.HashResetToken(token), now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Session{}, apperrors.NewUnauthorized(MsgResetTokenInvalid)
		}
		return nil, Session{}, apperrors.NewInternalError(err)
	}
	if !user.HasPendingReset(now) {
		return nil, Session{}, apperrors.NewUnauthorized(MsgResetTokenInvalid)
	}

	if err := s.changePassword(ctx, user, in, now); err != nil {
		return nil, Session{}, err
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, Session{}, err
	}
	s.publish(ctx, events.NewEvent(events.EventPasswordReset, user.ID, events.PasswordChangedPayload{Via: "reset"}))
	return user, session, nil
}

// UpdatePassword changes the password of a logged-in user after re-checking the current
// one. Every token issued before the change stops working; the returned session replaces it.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword string, in PasswordInput) (*domain.User, Session, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Session{}, apperrors.NewUnauthorized(MsgUserGone)
		}
		return nil, Session{}, apperrors.NewInternalError(err)
	}
	if currentPassword == "" {
		return nil, Session{}, apperrors.NewUnauthorized(MsgWrongCurrentPassword)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return nil, Session{}, apperrors.NewUnauthorized(MsgWrongCurrentPassword)
	}

	if err := s.changePassword(ctx, user, in, s.now()); err != nil {
		return nil, Session{}, err
	}

	session, err := s.issueSession(user)
	if err != nil {
		return nil, Session{}, err
	}
	s.publish(ctx, events.NewEvent(events.EventPasswordChanged, user.ID, events.PasswordChangedPayload{Via: "update"}))
	return user, session, nil
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) changePassword(ctx context.Context, user *domain.User, in PasswordInput, at time.Time) error {
	if err := in.Validate(); err != nil {
		return validationError(err)
	}
	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.SetPassword(hash, at)
	user.ClearPasswordReset()
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) issueSession(user *domain.User) (Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return Session{}, apperrors.NewInternalError(err)
	}
	return Session{Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}

// validationError converts ozzo validation output into a 400.
func validationError(err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for field, fieldErr := range verrs {
			details[field] = fieldErr.Error()
		}
		return apperrors.NewValidationError("Invalid input data. "+verrs.Error(), details)
	}
	return apperrors.NewValidationError(err.Error(), nil)
}
