package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userDTO "kelasku_backend/internals/features/users/user/dto"
	userModel "kelasku_backend/internals/features/users/user/model"
	"kelasku_backend/internals/helpers/apperr"
	helperAuth "kelasku_backend/internals/helpers/auth"
	"kelasku_backend/internals/testkit"
)

const testSecret = "rahasia-test"

func newAuth(t *testing.T) *AuthService {
	return NewAuthService(testkit.OpenDB(t), testSecret, time.Hour)
}

func registerReq(email string) userDTO.RegisterRequest {
	return userDTO.RegisterRequest{
		FName:    "Siti",
		LName:    "Aminah",
		Email:    email,
		Password: "rahasia123",
		Role:     userModel.RoleTeacher,
		Gender:   userModel.GenderFemale,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerReq("  Siti@Sekolah.ID "))
	require.NoError(t, err)
	assert.Equal(t, "siti@sekolah.id", reg.User.Email)
	assert.Equal(t, "Bearer", reg.TokenType)

	claims, err := helperAuth.ParseAccessToken(testSecret, reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
	assert.Equal(t, "teacher", claims.Role)

	var stored userModel.UserModel
	require.NoError(t, svc.DB.Where("id = ?", reg.User.ID).Take(&stored).Error)
	assert.NotEqual(t, "rahasia123", stored.PasswordHash)

	login, err := svc.Login(ctx, userDTO.LoginRequest{Email: "SITI@sekolah.id", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegister_Rejects(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("a@sekolah.id"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerReq("A@sekolah.id"))
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindConflict, Code: apperr.CodeEmailTaken})

	weak := registerReq("b@sekolah.id")
	weak.Password = "abcdefgh"
	_, err = svc.Register(ctx, weak)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerReq("c@sekolah.id"))
	require.NoError(t, err)

	invalid := &apperr.Error{Kind: apperr.KindUnauthorized, Code: apperr.CodeInvalidCredentials}

	_, err = svc.Login(ctx, userDTO.LoginRequest{Email: "c@sekolah.id", Password: "salah12345"})
	assert.ErrorIs(t, err, invalid)

	_, err = svc.Login(ctx, userDTO.LoginRequest{Email: "tidakada@sekolah.id", Password: "rahasia123"})
	assert.ErrorIs(t, err, invalid)
}

func TestMeAndChangePassword(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, registerReq("d@sekolah.id"))
	require.NoError(t, err)

	me, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Siti", me.FName)

	_, err = svc.Me(ctx, uuid.New())
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	err = svc.ChangePassword(ctx, reg.User.ID, userDTO.ChangePasswordRequest{CurrentPassword: "keliru123", NewPassword: "baru12345"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	require.NoError(t, svc.ChangePassword(ctx, reg.User.ID, userDTO.ChangePasswordRequest{CurrentPassword: "rahasia123", NewPassword: "baru12345"}))

	_, err = svc.Login(ctx, userDTO.LoginRequest{Email: "d@sekolah.id", Password: "rahasia123"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = svc.Login(ctx, userDTO.LoginRequest{Email: "d@sekolah.id", Password: "baru12345"})
	assert.NoError(t, err)
}
