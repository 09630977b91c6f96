package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kelasku_backend/internals/features/attendance/sessions/controller"
)

func AttendanceSessionRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAttendanceSessionController(db)

	s := api.Group("/attendance-sessions")
	s.Post("/", ctrl.Create)
	s.Get("/active/:classroom_id", ctrl.Active)
	s.Get("/by-classroom/:classroom_id", ctrl.ListByClassroom)
	s.Get("/matrix/:classroom_id", ctrl.Matrix) // guru saja
	s.Post("/:id/check-in", ctrl.CheckIn)
	s.Delete("/:id", ctrl.Delete)
}
