package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authHelper "kelasku_backend/internals/features/users/auth/helper"
	authRepo "kelasku_backend/internals/features/users/auth/repository"
	userDTO "kelasku_backend/internals/features/users/user/dto"
	userModel "kelasku_backend/internals/features/users/user/model"
	"kelasku_backend/internals/helpers/apperr"
	helperAuth "kelasku_backend/internals/helpers/auth"
	"kelasku_backend/internals/helpers/authz"
)

/* ==========================
   Const & Types
========================== */

const accessTTLDefault = 72 * time.Hour

type AuthService struct {
	DB     *gorm.DB
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = accessTTLDefault
	}
	return &AuthService{DB: db, Secret: secret, TTL: ttl, Now: time.Now}
}

var (
	errInvalidCredentials = apperr.New(apperr.KindUnauthorized, apperr.CodeInvalidCredentials, "invalid email or password")
	errEmailTaken         = apperr.Conflict(apperr.CodeEmailTaken, "email is already registered")
)

/* ==========================
   REGISTER
========================== */

func (s *AuthService) Register(ctx context.Context, req userDTO.RegisterRequest) (*userDTO.AuthResponse, error) {
	req.Normalize()
	if err := authHelper.ValidatePassword(req.Password); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	hash, err := authHelper.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := req.ToModel(hash)
	if err := authRepo.CreateUser(ctx, s.DB, user); err != nil {
		return nil, apperr.FromDB(err, nil, errEmailTaken)
	}

	log.Printf("[AUTH] registered user=%s role=%s", user.ID, user.Role)
	return s.issue(user)
}

/* ==========================
   LOGIN
========================== */

func (s *AuthService) Login(ctx context.Context, req userDTO.LoginRequest) (*userDTO.AuthResponse, error) {
	user, err := authRepo.FindUserByEmail(ctx, s.DB, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperr.Internal(err)
	}
	if err := authHelper.CheckPasswordHash(user.PasswordHash, req.Password); err != nil {
		return nil, errInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *userModel.UserModel) (*userDTO.AuthResponse, error) {
	token, exp, err := helperAuth.IssueAccessToken(s.Secret, user.ID, string(user.Role), s.Now().UTC(), s.TTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &userDTO.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        userDTO.FromModel(user),
	}, nil
}

/* ==========================
   ME
========================== */

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*userDTO.UserResponse, error) {
	user, err := authz.LoadUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := userDTO.FromModel(user)
	return &out, nil
}
