package dto

import (
	"strings"
	"time"

	uModel "kelasku_backend/internals/features/users/user/model"

	"github.com/google/uuid"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// RegisterRequest: role hanya student/teacher; admin dibuat lewat DB.
type RegisterRequest struct {
	FName              string          `json:"fname" validate:"required,min=1,max=80"`
	LName              string          `json:"lname" validate:"required,min=1,max=80"`
	Email              string          `json:"email" validate:"required,email,max=160"`
	Password           string          `json:"password" validate:"required,min=8,max=72"`
	IdentificationCode string          `json:"identification_code" validate:"omitempty,max=40"`
	Role               uModel.UserRole `json:"role" validate:"required,oneof=student teacher"`
	Gender             uModel.Gender   `json:"gender" validate:"omitempty,oneof=female male"`
}

// Normalize: trim & email huruf kecil
func (r *RegisterRequest) Normalize() {
	r.FName = strings.TrimSpace(r.FName)
	r.LName = strings.TrimSpace(r.LName)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.IdentificationCode = strings.TrimSpace(r.IdentificationCode)
}

// ToModel: password sudah di-hash oleh service.
func (r *RegisterRequest) ToModel(passwordHash string) *uModel.UserModel {
	return &uModel.UserModel{
		FName:              r.FName,
		LName:              r.LName,
		Email:              r.Email,
		PasswordHash:       passwordHash,
		IdentificationCode: r.IdentificationCode,
		Role:               r.Role,
		Gender:             r.Gender,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

/* =======================================================
   RESPONSE DTOs
   ======================================================= */

type UserResponse struct {
	ID                 uuid.UUID       `json:"id"`
	FName              string          `json:"fname"`
	LName              string          `json:"lname"`
	Email              string          `json:"email"`
	IdentificationCode string          `json:"identification_code"`
	Role               uModel.UserRole `json:"role"`
	Gender             uModel.Gender   `json:"gender,omitempty"`
	Image              *string         `json:"image,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func FromModel(u *uModel.UserModel) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		FName:              u.FName,
		LName:              u.LName,
		Email:              u.Email,
		IdentificationCode: u.IdentificationCode,
		Role:               u.Role,
		Gender:             u.Gender,
		Image:              u.Image,
		CreatedAt:          u.CreatedAt,
	}
}

// AuthResponse: hasil register/login.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}
