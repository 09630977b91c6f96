package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kelasku_backend/internals/features/classrooms/classrooms/controller"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

// ClassroomRoutes: dipasang di grup /api/u (login wajib); izin per kelas dicek di service.
func ClassroomRoutes(api fiber.Router, db *gorm.DB, blobs helperOSS.BlobStore) {
	ctrl := controller.NewClassroomController(db, blobs)

	rooms := api.Group("/classrooms")
	rooms.Post("/", ctrl.Create)
	rooms.Get("/", ctrl.ListMine)
	rooms.Post("/join", ctrl.Join)

	rooms.Get("/:id", ctrl.Get)
	rooms.Patch("/:id", ctrl.Update)
	rooms.Delete("/:id", ctrl.Remove)
	rooms.Get("/:id/info", ctrl.Info)
	rooms.Get("/:id/members", ctrl.Members)
	rooms.Post("/:id/join-code", ctrl.NewJoinCode)
}
