package route

import (
	"github.com/gofiber/fiber/v2"

	"kelasku_backend/internals/features/notifications/notifications/controller"
	"kelasku_backend/internals/features/notifications/notifications/service"
)

func NotificationRoutes(api fiber.Router, svc *service.NotificationService) {
	ctrl := controller.NewNotificationController(svc)

	n := api.Group("/notifications")
	n.Get("/", ctrl.ListMine)
	n.Patch("/read-all", ctrl.MarkAllRead)
	n.Patch("/:id/read", ctrl.MarkRead)
}
