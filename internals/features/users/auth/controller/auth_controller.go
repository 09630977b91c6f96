package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kelasku_backend/internals/features/users/auth/service"
	userDTO "kelasku_backend/internals/features/users/user/dto"
	helper "kelasku_backend/internals/helpers"
)

type AuthController struct {
	Svc      *service.AuthService
	Validate *validator.Validate
}

func NewAuthController(db *gorm.DB, secret string, ttl time.Duration) *AuthController {
	return &AuthController{
		Svc:      service.NewAuthService(db, secret, ttl),
		Validate: validator.New(),
	}
}

// 🟢 POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req userDTO.RegisterRequest
	if ok, err := helper.BindAndValidate(c, ac.Validate, &req); !ok {
		return err
	}
	resp, err := ac.Svc.Register(c.UserContext(), req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Registrasi berhasil", resp)
}

// 🟢 POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req userDTO.LoginRequest
	if ok, err := helper.BindAndValidate(c, ac.Validate, &req); !ok {
		return err
	}
	resp, err := ac.Svc.Login(c.UserContext(), req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Login berhasil", resp)
}

// 🟢 GET /api/u/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	resp, err := ac.Svc.Me(c.UserContext(), userID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// 🟡 POST /api/u/me/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req userDTO.ChangePasswordRequest
	if ok, err := helper.BindAndValidate(c, ac.Validate, &req); !ok {
		return err
	}
	if err := ac.Svc.ChangePassword(c.UserContext(), userID, req); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Password berhasil diubah", nil)
}
