package session

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		sessions, err := svc.List(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if sessions == nil {
			sessions = []TrainingSession{}
		}
		return c.JSON(sessions)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		ts, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		if userID, _ := c.Locals("user_id").(string); ts.UserID != userID {
			return fiber.NewError(fiber.StatusForbidden, "not your session")
		}
		return c.JSON(ts)
	})

	r.Patch("/:id/title", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Title string `json:"title"`
		}
		if err := c.BodyParser(&body); err != nil || body.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "title required")
		}
		ts, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		if userID, _ := c.Locals("user_id").(string); ts.UserID != userID {
			return fiber.NewError(fiber.StatusForbidden, "not your session")
		}
		if err := svc.Rename(c.Context(), ts.ID, body.Title); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		ts, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "session not found")
		}
		if userID, _ := c.Locals("user_id").(string); ts.UserID != userID {
			return fiber.NewError(fiber.StatusForbidden, "not your session")
		}
		if err := svc.Delete(c.Context(), ts.ID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "deleted"})
	})

	r.Post("/sync", authMiddleware, func(c *fiber.Ctx) error {
		synced, err := svc.Resync(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"synced": synced})
	})
}
