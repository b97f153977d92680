package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tours-service/internal/api/dto"
	"github.com/spec-kit/tours-service/internal/auth"
	"github.com/spec-kit/tours-service/internal/service"
	apperrors "github.com/spec-kit/tours-service/pkg/util"
)

// UsersHandler exposes profile endpoints for the logged-in user and the admin listing.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Me GET /api/v1/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"user": dto.NewUserResponse(user)},
	})
}

// UpdateMe PATCH /api/v1/users/updateMe.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	current, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgInvalidBody, nil)
	}
	if req.HasPasswordFields() {
		return apperrors.NewValidationError("This route is not for password updates. Please use /updateMyPassword.", nil)
	}

	user, err := h.users.UpdateMe(c.UserContext(), current.ID, service.UpdateMeInput{Name: req.Name, Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"user": dto.NewUserResponse(user)},
	})
}

// DeleteMe DELETE /api/v1/users/deleteMe.
func (h *UsersHandler) DeleteMe(c *fiber.Ctx) error {
	current, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteMe(c.UserContext(), current.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// List GET /api/v1/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext(), parseInt(c.Query("page"), 1), parseInt(c.Query("limit"), 100))
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"results": len(items),
		"data":    fiber.Map{"users": items},
	})
}
