// file: internals/helpers/authz/authz.go
package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	classroomModel "kelasku_backend/internals/features/classrooms/classrooms/model"
	userModel "kelasku_backend/internals/features/users/user/model"
	"kelasku_backend/internals/helpers/apperr"
)

// Actor: user yang sedang memanggil + keanggotaannya di kelas (kalau relevan).
type Actor struct {
	User   userModel.UserModel
	Member *classroomModel.ClassroomMemberModel
}

func (a Actor) CanTeach() bool { return a.User.Role.CanTeach() }

// LoadUser: role selalu dibaca dari row user, bukan dari klaim token.
func LoadUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	var u userModel.UserModel
	if err := db.WithContext(ctx).Where("id = ?", userID).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Unauthorized")
		}
		return nil, apperr.Internal(err)
	}
	return &u, nil
}

func LoadClassroom(ctx context.Context, db *gorm.DB, classroomID uuid.UUID) (*classroomModel.ClassroomModel, error) {
	var c classroomModel.ClassroomModel
	err := db.WithContext(ctx).Where("classroom_id = ?", classroomID).Take(&c).Error
	if err != nil {
		return nil, apperr.FromDB(err, apperr.NotFound(apperr.CodeClassroomNotFound, "classroom not found"), nil)
	}
	return &c, nil
}

// FindMembership: nil, nil kalau bukan anggota.
func FindMembership(ctx context.Context, db *gorm.DB, classroomID, userID uuid.UUID) (*classroomModel.ClassroomMemberModel, error) {
	var m classroomModel.ClassroomMemberModel
	err := db.WithContext(ctx).
		Where("classroom_member_classroom_id = ? AND classroom_member_user_id = ?", classroomID, userID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &m, nil
}

// RequireMember: anggota kelas (owner maupun active).
func RequireMember(ctx context.Context, db *gorm.DB, classroomID, userID uuid.UUID) (*Actor, error) {
	u, err := LoadUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	m, err := FindMembership(ctx, db, classroomID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.Forbidden(apperr.CodeNotMember, "you are not a member of this classroom")
	}
	return &Actor{User: *u, Member: m}, nil
}

// RequireTeacherMember: anggota kelas dengan role teacher/admin.
func RequireTeacherMember(ctx context.Context, db *gorm.DB, classroomID, userID uuid.UUID) (*Actor, error) {
	a, err := RequireMember(ctx, db, classroomID, userID)
	if err != nil {
		return nil, err
	}
	if !a.CanTeach() {
		return nil, apperr.Forbidden(apperr.CodeForbiddenRole, "Forbidden")
	}
	return a, nil
}

// RequireActiveMember: check-in hanya untuk anggota berstatus active (bukan owner).
func RequireActiveMember(ctx context.Context, db *gorm.DB, classroomID, userID uuid.UUID) (*Actor, error) {
	a, err := RequireMember(ctx, db, classroomID, userID)
	if err != nil {
		return nil, err
	}
	if a.Member.ClassroomMemberStatus != classroomModel.MemberStatusActive {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	return a, nil
}

// RequireTeacher: role teacher/admin tanpa konteks kelas (mis. membuat kelas).
func RequireTeacher(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	u, err := LoadUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if !u.Role.CanTeach() {
		return nil, apperr.Forbidden(apperr.CodeForbiddenRole, "Forbidden")
	}
	return u, nil
}
