// file: internals/features/classrooms/classrooms/dto/classroom_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	model "kelasku_backend/internals/features/classrooms/classrooms/model"
	userModel "kelasku_backend/internals/features/users/user/model"
)

type CreateClassroomRequest struct {
	ClassroomName string `json:"classroom_name" validate:"required,min=1,max=160"`
}

type UpdateClassroomRequest struct {
	ClassroomName string `json:"classroom_name" validate:"required,min=1,max=160"`
}

type JoinClassroomRequest struct {
	ClassroomID uuid.UUID `json:"classroom_id" validate:"required"`
	JoinCode    string    `json:"join_code" validate:"required,len=6"`
}

// Normalize: kode gabung selalu huruf kecil.
func (r JoinClassroomRequest) Normalize() JoinClassroomRequest {
	r.JoinCode = strings.ToLower(strings.TrimSpace(r.JoinCode))
	return r
}

type OwnerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type ClassroomResponse struct {
	ClassroomID          uuid.UUID     `json:"classroom_id"`
	ClassroomName        string        `json:"classroom_name"`
	ClassroomOwnerUserID uuid.UUID     `json:"classroom_owner_user_id"`
	ClassroomJoinCode    string        `json:"classroom_join_code,omitempty"`
	ClassroomCreatedAt   time.Time     `json:"classroom_created_at"`
	ClassroomUpdatedAt   time.Time     `json:"classroom_updated_at"`
	Owner                *OwnerSummary `json:"owner,omitempty"`

	MemberStatus model.MemberStatus `json:"member_status,omitempty"`
}

func FromModel(m model.ClassroomModel) ClassroomResponse {
	return ClassroomResponse{
		ClassroomID:          m.ClassroomID,
		ClassroomName:        m.ClassroomName,
		ClassroomOwnerUserID: m.ClassroomOwnerUserID,
		ClassroomJoinCode:    m.ClassroomJoinCode,
		ClassroomCreatedAt:   m.ClassroomCreatedAt,
		ClassroomUpdatedAt:   m.ClassroomUpdatedAt,
	}
}

func NewOwnerSummary(u userModel.UserModel) *OwnerSummary {
	return &OwnerSummary{ID: u.ID, Name: u.FullName(), Email: u.Email}
}

// ClassroomInfoResponse: dipakai halaman join (tanpa perlu jadi anggota).
type ClassroomInfoResponse struct {
	ClassroomName string `json:"classroom_name"`
	IsMember      bool   `json:"is_member"`
}

type MemberResponse struct {
	ClassroomMemberID        uuid.UUID          `json:"classroom_member_id"`
	ClassroomMemberUserID    uuid.UUID          `json:"classroom_member_user_id"`
	ClassroomMemberStatus    model.MemberStatus `json:"classroom_member_status"`
	ClassroomMemberCreatedAt time.Time          `json:"classroom_member_created_at"`

	FName              string             `json:"fname"`
	LName              string             `json:"lname"`
	Email              string             `json:"email"`
	IdentificationCode string             `json:"identification_code"`
	Role               userModel.UserRole `json:"role"`
	Image              *string            `json:"image,omitempty"`
}

func NewMemberResponse(m model.ClassroomMemberModel, u userModel.UserModel) MemberResponse {
	return MemberResponse{
		ClassroomMemberID:        m.ClassroomMemberID,
		ClassroomMemberUserID:    m.ClassroomMemberUserID,
		ClassroomMemberStatus:    m.ClassroomMemberStatus,
		ClassroomMemberCreatedAt: m.ClassroomMemberCreatedAt,
		FName:                    u.FName,
		LName:                    u.LName,
		Email:                    u.Email,
		IdentificationCode:       u.IdentificationCode,
		Role:                     u.Role,
		Image:                    u.Image,
	}
}
