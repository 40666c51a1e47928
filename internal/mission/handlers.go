package mission

import (
	"backend-stridelog/internal/stats"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, statsSvc *stats.Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		st, _, err := statsSvc.Get(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(Evaluate(Catalog(), st))
	})
}
