package social

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/requests", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var body struct {
			ToUserID string `json:"to_user_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.ToUserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "to_user_id required")
		}
		req, err := svc.SendRequest(c.Context(), userID, body.ToUserID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	})

	r.Post("/requests/:id/accept", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Accept(c.Context(), c.Params("id"), userID); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"status": "accepted"})
	})

	r.Get("/requests", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		requests, err := svc.PendingRequests(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if requests == nil {
			requests = []FriendRequest{}
		}
		return c.JSON(requests)
	})

	r.Get("/friends", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		friends, err := svc.Friends(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if friends == nil {
			friends = []Friend{}
		}
		return c.JSON(friends)
	})
}
