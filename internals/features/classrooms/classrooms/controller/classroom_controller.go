package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "kelasku_backend/internals/features/classrooms/classrooms/dto"
	"kelasku_backend/internals/features/classrooms/classrooms/service"
	helper "kelasku_backend/internals/helpers"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type ClassroomController struct {
	Svc      *service.ClassroomService
	Validate *validator.Validate
}

func NewClassroomController(db *gorm.DB, blobs helperOSS.BlobStore) *ClassroomController {
	return &ClassroomController{
		Svc:      service.NewClassroomService(db, blobs),
		Validate: validator.New(),
	}
}

// 🟢 POST /api/u/classrooms
func (ctrl *ClassroomController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateClassroomRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.Create(c.UserContext(), userID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Kelas berhasil dibuat", resp)
}

// 🟢 GET /api/u/classrooms
func (ctrl *ClassroomController) ListMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctrl.Svc.ListMine(c.UserContext(), userID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🟢 GET /api/u/classrooms/:id
func (ctrl *ClassroomController) Get(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ctrl.Svc.Get(c.UserContext(), userID, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// 🟢 GET /api/u/classrooms/:id/info
func (ctrl *ClassroomController) Info(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ctrl.Svc.Info(c.UserContext(), userID, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// 🟡 PATCH /api/u/classrooms/:id
func (ctrl *ClassroomController) Update(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateClassroomRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.Update(c.UserContext(), userID, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Kelas diperbarui", resp)
}

// 🟡 POST /api/u/classrooms/:id/join-code
func (ctrl *ClassroomController) NewJoinCode(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ctrl.Svc.NewJoinCode(c.UserContext(), userID, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Kode gabung diperbarui", resp)
}

// 🟢 POST /api/u/classrooms/join
func (ctrl *ClassroomController) Join(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.JoinClassroomRequest
	if ok, err := helper.BindAndValidate(c, ctrl.Validate, &req); !ok {
		return err
	}
	resp, err := ctrl.Svc.Join(c.UserContext(), userID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Berhasil bergabung ke kelas", resp)
}

// 🟢 GET /api/u/classrooms/:id/members
func (ctrl *ClassroomController) Members(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctrl.Svc.Members(c.UserContext(), userID, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}

// 🔴 DELETE /api/u/classrooms/:id
func (ctrl *ClassroomController) Remove(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ctrl.Svc.Remove(c.UserContext(), userID, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Kelas dihapus", fiber.Map{"classroom_id": id})
}
