package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "kelasku_backend/internals/features/attendance/sessions/dto"
	"kelasku_backend/internals/features/attendance/sessions/service"
	helper "kelasku_backend/internals/helpers"
)

type AttendanceSessionController struct {
	Svc      *service.SessionService
	Validate *validator.Validate
}

func NewAttendanceSessionController(db *gorm.DB) *AttendanceSessionController {
	return &AttendanceSessionController{
		Svc:      service.NewSessionService(db),
		Validate: validator.New(),
	}
}

// 🟢 POST /api/u/attendance-sessions
func (ctrl *AttendanceSessionController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateSessionRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.Create(c.UserContext(), userID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Sesi absensi dibuat", resp)
}

// 🟢 POST /api/u/attendance-sessions/:id/check-in
func (ctrl *AttendanceSessionController) CheckIn(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CheckInRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.CheckIn(c.UserContext(), userID, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Absensi tercatat", resp)
}

// 🔴 DELETE /api/u/attendance-sessions/:id
func (ctrl *AttendanceSessionController) Delete(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ctrl.Svc.Delete(c.UserContext(), userID, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Sesi absensi dihapus", fiber.Map{"attendance_session_id": id})
}

// 🟢 GET /api/u/attendance-sessions/active/:classroom_id
func (ctrl *AttendanceSessionController) Active(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	classroomID, err := helper.ParseUUIDParam(c, "classroom_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctrl.Svc.Active(c.UserContext(), userID, classroomID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟢 GET /api/u/attendance-sessions/by-classroom/:classroom_id
func (ctrl *AttendanceSessionController) ListByClassroom(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	classroomID, err := helper.ParseUUIDParam(c, "classroom_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctrl.Svc.List(c.UserContext(), userID, classroomID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟢 GET /api/u/attendance-sessions/matrix/:classroom_id
func (ctrl *AttendanceSessionController) Matrix(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	classroomID, err := helper.ParseUUIDParam(c, "classroom_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ctrl.Svc.Matrix(c.UserContext(), userID, classroomID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}
