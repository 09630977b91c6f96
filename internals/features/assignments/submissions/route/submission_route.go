package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kelasku_backend/internals/features/assignments/submissions/controller"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

func SubmissionRoutes(api fiber.Router, db *gorm.DB, blobs helperOSS.BlobStore, notifier *notificationService.NotificationService) {
	ctrl := controller.NewSubmissionController(db, blobs, notifier)

	s := api.Group("/submissions")
	s.Post("/", ctrl.Create)

	// read (path statis dulu sebelum /:id)
	s.Get("/has-submitted", ctrl.HasSubmitted)
	s.Get("/by-assignment/:assignment_id", ctrl.ListByAssignment)
	s.Get("/mine/:assignment_id", ctrl.Mine)
	s.Get("/overview/:classroom_id", ctrl.Overview)
	s.Get("/scoreboard/:classroom_id", ctrl.Scoreboard)
	s.Get("/:id", ctrl.Detail)

	s.Patch("/:id/grade", ctrl.Grade)
	s.Post("/:id/allow-resubmission", ctrl.AllowResubmission)
	s.Post("/:id/resubmit", ctrl.Resubmit)
}
