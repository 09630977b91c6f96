package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "kelasku_backend/internals/features/assignments/submissions/dto"
	"kelasku_backend/internals/features/assignments/submissions/service"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	helper "kelasku_backend/internals/helpers"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type SubmissionController struct {
	Svc      *service.SubmissionService
	Validate *validator.Validate
}

func NewSubmissionController(db *gorm.DB, blobs helperOSS.BlobStore, notifier *notificationService.NotificationService) *SubmissionController {
	return &SubmissionController{
		Svc:      service.NewSubmissionService(db, blobs, notifier),
		Validate: validator.New(),
	}
}

/* =========================================================
   WRITE
========================================================= */

// 🟢 POST /api/u/submissions
func (ctrl *SubmissionController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateSubmissionRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.Create(c.UserContext(), userID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Tugas berhasil dikirim", resp)
}

// 🟡 PATCH /api/u/submissions/:id/grade
func (ctrl *SubmissionController) Grade(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.GradeSubmissionRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.Grade(c.UserContext(), userID, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Nilai disimpan", resp)
}

// 🟡 POST /api/u/submissions/:id/allow-resubmission
func (ctrl *SubmissionController) AllowResubmission(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ctrl.Svc.AllowResubmission(c.UserContext(), userID, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Siswa dapat mengirim ulang", resp)
}

// 🟡 POST /api/u/submissions/:id/resubmit
func (ctrl *SubmissionController) Resubmit(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.ResubmitRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.Resubmit(c.UserContext(), userID, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Tugas berhasil dikirim ulang", resp)
}

/* =========================================================
   READ
========================================================= */

// 🟢 GET /api/u/submissions/:id
func (ctrl *SubmissionController) Detail(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ctrl.Svc.Detail(c.UserContext(), userID, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// 🟢 GET /api/u/submissions/by-assignment/:assignment_id?page=&per_page=
func (ctrl *SubmissionController) ListByAssignment(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	assignmentID, err := helper.ParseUUIDParam(c, "assignment_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)

	rows, total, err := ctrl.Svc.ListForAssignment(c.UserContext(), userID, assignmentID, p.Offset, p.Limit)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	pg.Count = len(rows)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟢 GET /api/u/submissions/mine/:assignment_id
func (ctrl *SubmissionController) Mine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	assignmentID, err := helper.ParseUUIDParam(c, "assignment_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ctrl.Svc.MySubmission(c.UserContext(), userID, assignmentID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// 🟢 GET /api/u/submissions/has-submitted?assignment_id=&classroom_id=
func (ctrl *SubmissionController) HasSubmitted(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	assignmentID, err := helper.ParseUUIDQuery(c, "assignment_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	classroomID, err := helper.ParseUUIDQuery(c, "classroom_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	ok, err := ctrl.Svc.HasSubmitted(c.UserContext(), userID, assignmentID, classroomID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{"submitted": ok})
}

// 🟢 GET /api/u/submissions/overview/:classroom_id
func (ctrl *SubmissionController) Overview(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	classroomID, err := helper.ParseUUIDParam(c, "classroom_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ctrl.Svc.StudentOverview(c.UserContext(), userID, classroomID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// 🟢 GET /api/u/submissions/scoreboard/:classroom_id
func (ctrl *SubmissionController) Scoreboard(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	classroomID, err := helper.ParseUUIDParam(c, "classroom_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctrl.Svc.Scoreboard(c.UserContext(), userID, classroomID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}
