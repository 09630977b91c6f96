package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kelasku_backend/internals/features/assignments/assignments/controller"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

func AssignmentRoutes(api fiber.Router, db *gorm.DB, blobs helperOSS.BlobStore, notifier *notificationService.NotificationService) {
	ctrl := controller.NewAssignmentController(db, blobs, notifier)

	a := api.Group("/assignments")
	a.Post("/", ctrl.Create)
	a.Get("/by-classroom/:classroom_id", ctrl.ListByClassroom)

	a.Get("/:id", ctrl.GetByID)
	a.Patch("/:id", ctrl.Update)
	a.Delete("/:id", ctrl.Remove) // ?classroom_id= wajib
	a.Post("/:id/files", ctrl.AddFiles)
	a.Delete("/:id/files/:file_id", ctrl.RemoveFile)
}
