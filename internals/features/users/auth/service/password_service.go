package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	authHelper "kelasku_backend/internals/features/users/auth/helper"
	authRepo "kelasku_backend/internals/features/users/auth/repository"
	userDTO "kelasku_backend/internals/features/users/user/dto"
	"kelasku_backend/internals/helpers/apperr"
	"kelasku_backend/internals/helpers/authz"
)

// ========================== CHANGE PASSWORD ==========================
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req userDTO.ChangePasswordRequest) error {
	user, err := authz.LoadUser(ctx, s.DB, userID)
	if err != nil {
		return err
	}

	// 🔹 Cek password lama
	if err := authHelper.CheckPasswordHash(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperr.New(apperr.KindUnauthorized, apperr.CodeInvalidCredentials, "current password incorrect")
	}

	// 🔹 Validasi & hash password baru
	if err := authHelper.ValidatePassword(req.NewPassword); err != nil {
		return apperr.Validation(err.Error())
	}
	hash, err := authHelper.HashPassword(req.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := authRepo.UpdateUserPassword(ctx, s.DB, user.ID, hash); err != nil {
		return apperr.Internal(err)
	}
	log.Printf("[AUTH] password changed user=%s", user.ID)
	return nil
}
