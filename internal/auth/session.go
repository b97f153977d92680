package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "jwt"

// CookieOptions controls how the session cookie is written.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

// SetSessionCookie writes the HTTP-only session cookie.
func SetSessionCookie(c *fiber.Ctx, token string, opts CookieOptions) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(opts.TTL),
		HTTPOnly: true,
		Secure:   opts.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie overwrites the session cookie with a short-lived placeholder.
func ClearSessionCookie(c *fiber.Ctx, opts CookieOptions) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "loggedout",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   opts.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
