package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kelasku_backend/internals/features/storage/uploads/controller"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

func UploadRoutes(api fiber.Router, db *gorm.DB, blobs helperOSS.BlobStore) {
	ctrl := controller.NewUploadController(db, blobs)
	api.Post("/uploads", ctrl.Issue)
}
