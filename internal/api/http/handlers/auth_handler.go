package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tours-service/internal/api/dto"
	"github.com/spec-kit/tours-service/internal/auth"
	"github.com/spec-kit/tours-service/internal/domain"
	"github.com/spec-kit/tours-service/internal/service"
	apperrors "github.com/spec-kit/tours-service/pkg/util"
)

const msgInvalidBody = "Invalid request body"

// AuthHandler exposes the session and password endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	cookie auth.CookieOptions
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie auth.CookieOptions) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Signup POST /api/v1/users/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgInvalidBody, nil)
	}
	user, session, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusCreated, user, session)
}

// Login POST /api/v1/users/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgInvalidBody, nil)
	}
	user, session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusOK, user, session)
}

// Logout GET /api/v1/users/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	auth.ClearSessionCookie(c, h.cookie)
	return c.JSON(fiber.Map{"status": "success"})
}

// ForgotPassword POST /api/v1/users/forgotPassword.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgInvalidBody, nil)
	}
	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Token sent to email!",
	})
}

// ResetPassword PATCH /api/v1/users/resetPassword/:token.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgInvalidBody, nil)
	}
	user, session, err := h.auth.ResetPassword(c.UserContext(), c.Params("token"), service.PasswordInput{
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusOK, user, session)
}

// UpdatePassword PATCH /api/v1/users/updateMyPassword.
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	current, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgInvalidBody, nil)
	}
	user, session, err := h.auth.UpdatePassword(c.UserContext(), current.ID, req.PasswordCurrent, service.PasswordInput{
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusOK, user, session)
}

func (h *AuthHandler) sendSession(c *fiber.Ctx, status int, user *domain.User, session service.Session) error {
	auth.SetSessionCookie(c, session.Token, h.cookie)
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"token":  session.Token,
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
		},
	})
}
