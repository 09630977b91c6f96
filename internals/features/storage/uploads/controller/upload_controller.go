package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "kelasku_backend/internals/features/storage/uploads/dto"
	"kelasku_backend/internals/features/storage/uploads/service"
	helper "kelasku_backend/internals/helpers"
	"kelasku_backend/internals/helpers/apperr"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type UploadController struct {
	Svc      *service.UploadService
	Validate *validator.Validate
}

func NewUploadController(db *gorm.DB, blobs helperOSS.BlobStore) *UploadController {
	return &UploadController{Svc: service.NewUploadService(db, blobs), Validate: validator.New()}
}

// 🟢 POST /api/u/uploads
// Client upload langsung ke URL ini, lalu kirim storage_key saat buat tugas/submission.
// Key tercatat atas nama user; hanya user itu yang bisa melampirkannya.
func (ctrl *UploadController) Issue(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.IssueUploadRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	req.Normalize()
	if req.Filename == "" || req.Filename == "." || req.Filename == "/" {
		return helper.JsonAppError(c, apperr.Validation("filename is required"))
	}

	target, err := ctrl.Svc.Issue(c.UserContext(), userID, req.Filename, req.ContentType)
	if err != nil {
		log.Printf("[UPLOAD] issue url gagal: %v", err)
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Upload URL dibuat", target)
}
