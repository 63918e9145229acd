package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/weatherwatch/backend/internal/domain"
	"github.com/weatherwatch/backend/internal/service"
)

const userLocalKey = "currentUser"

// AuthRequired verifies the bearer token and stores the resolved account
// in the request locals for handlers to read.
func AuthRequired(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		user, err := auth.Authenticate(c.Context(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Could not validate credentials")
		}

		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) domain.User {
	user, _ := c.Locals(userLocalKey).(domain.User)
	return user
}
