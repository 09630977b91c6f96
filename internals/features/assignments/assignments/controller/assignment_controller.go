package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "kelasku_backend/internals/features/assignments/assignments/dto"
	"kelasku_backend/internals/features/assignments/assignments/service"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	helper "kelasku_backend/internals/helpers"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type AssignmentController struct {
	Svc      *service.AssignmentService
	Validate *validator.Validate
}

func NewAssignmentController(db *gorm.DB, blobs helperOSS.BlobStore, notifier *notificationService.NotificationService) *AssignmentController {
	return &AssignmentController{
		Svc:      service.NewAssignmentService(db, blobs, notifier),
		Validate: validator.New(),
	}
}

// 🟢 POST /api/u/assignments
func (ctrl *AssignmentController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateAssignmentRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.Create(c.UserContext(), userID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Tugas berhasil dibuat", resp)
}

// 🟢 GET /api/u/assignments/:id
func (ctrl *AssignmentController) GetByID(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ctrl.Svc.GetByID(c.UserContext(), userID, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// 🟢 GET /api/u/assignments/by-classroom/:classroom_id?status=published|draft
func (ctrl *AssignmentController) ListByClassroom(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	classroomID, err := helper.ParseUUIDParam(c, "classroom_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	published := true
	switch strings.ToLower(strings.TrimSpace(c.Query("status", "published"))) {
	case "published":
	case "draft", "unpublished":
		published = false
	default:
		return helper.JsonError(c, fiber.StatusBadRequest, "status harus published atau draft")
	}

	rows, err := ctrl.Svc.List(c.UserContext(), userID, classroomID, published)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟡 PATCH /api/u/assignments/:id
func (ctrl *AssignmentController) Update(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateAssignmentRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.UpdateText(c.UserContext(), userID, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Tugas diperbarui", resp)
}

// 🟢 POST /api/u/assignments/:id/files
func (ctrl *AssignmentController) AddFiles(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.AddFilesRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	files, err := ctrl.Svc.AddFiles(c.UserContext(), userID, id, req.Files)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "File ditambahkan", files)
}

// 🔴 DELETE /api/u/assignments/:id/files/:file_id
func (ctrl *AssignmentController) RemoveFile(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	fileID, err := helper.ParseUUIDParam(c, "file_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ctrl.Svc.RemoveFile(c.UserContext(), userID, id, fileID); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "File dihapus", fiber.Map{"assignment_file_id": fileID})
}

// 🔴 DELETE /api/u/assignments/:id?classroom_id=
func (ctrl *AssignmentController) Remove(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	classroomID, err := helper.ParseUUIDQuery(c, "classroom_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ctrl.Svc.Remove(c.UserContext(), userID, id, classroomID); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Tugas dihapus", fiber.Map{"assignment_id": id})
}
