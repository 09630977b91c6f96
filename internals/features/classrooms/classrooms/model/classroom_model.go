// file: internals/features/classrooms/classrooms/model/classroom_model.go
package model

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Alfabet kode gabung kelas (sengaja tanpa 'q', ada 'o' dobel seperti data lama).
const joinCodeAlphabet = "0123456789abcdefghijklmnoporstuvwxyz"

const JoinCodeLength = 6

type ClassroomModel struct {
	ClassroomID          uuid.UUID `gorm:"type:uuid;primaryKey;column:classroom_id" json:"classroom_id"`
	ClassroomName        string    `gorm:"type:varchar(160);not null;column:classroom_name" json:"classroom_name"`
	ClassroomOwnerUserID uuid.UUID `gorm:"type:uuid;not null;index;column:classroom_owner_user_id" json:"classroom_owner_user_id"`
	ClassroomJoinCode    string    `gorm:"type:varchar(12);not null;column:classroom_join_code" json:"classroom_join_code"`

	// token optimistic-lock untuk invarian "satu sesi absensi aktif per kelas"
	ClassroomAttendanceVersion int64 `gorm:"not null;default:0;column:classroom_attendance_version" json:"-"`

	ClassroomCreatedAt time.Time `gorm:"not null;autoCreateTime;column:classroom_created_at" json:"classroom_created_at"`
	ClassroomUpdatedAt time.Time `gorm:"not null;autoUpdateTime;column:classroom_updated_at" json:"classroom_updated_at"`
}

func (ClassroomModel) TableName() string { return "classrooms" }

func (m *ClassroomModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassroomID == uuid.Nil {
		m.ClassroomID = uuid.New()
	}
	if m.ClassroomJoinCode == "" {
		code, err := GenerateJoinCode()
		if err != nil {
			return err
		}
		m.ClassroomJoinCode = code
	}
	return nil
}

func GenerateJoinCode() (string, error) {
	out := make([]byte, JoinCodeLength)
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}

type MemberStatus string

const (
	MemberStatusOwner  MemberStatus = "owner"
	MemberStatusActive MemberStatus = "active"
)

type ClassroomMemberModel struct {
	ClassroomMemberID          uuid.UUID    `gorm:"type:uuid;primaryKey;column:classroom_member_id" json:"classroom_member_id"`
	ClassroomMemberClassroomID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_classroom_member,priority:1;column:classroom_member_classroom_id" json:"classroom_member_classroom_id"`
	ClassroomMemberUserID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_classroom_member,priority:2;index;column:classroom_member_user_id" json:"classroom_member_user_id"`
	ClassroomMemberStatus      MemberStatus `gorm:"type:varchar(16);not null;column:classroom_member_status" json:"classroom_member_status"`
	ClassroomMemberCreatedAt   time.Time    `gorm:"not null;autoCreateTime;column:classroom_member_created_at" json:"classroom_member_created_at"`
}

func (ClassroomMemberModel) TableName() string { return "classroom_members" }

func (m *ClassroomMemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassroomMemberID == uuid.Nil {
		m.ClassroomMemberID = uuid.New()
	}
	return nil
}
