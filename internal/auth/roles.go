package auth

import (
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tours-service/internal/domain"
	apperrors "github.com/spec-kit/tours-service/pkg/util"
)

const forbiddenMessage = "You do not have permission to perform this action"

// Authorize reports whether the user holds one of the allowed roles.
func Authorize(user *domain.User, allowed ...domain.Role) error {
	if user == nil || !slices.Contains(allowed, user.Role) {
		return apperrors.NewForbidden(forbiddenMessage)
	}
	return nil
}

// RestrictTo ensures the authenticated user has one of the allowed roles.
// It must run after AuthMiddleware.Protect.
func RestrictTo(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(notLoggedInMessage)
		}
		if err := Authorize(user, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}
