// file: internals/features/users/user/model/user_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanTeach: teacher & admin boleh mengelola tugas/absensi.
func (r UserRole) CanTeach() bool { return r == RoleTeacher || r == RoleAdmin }

type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

type UserModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	FName              string     `gorm:"type:varchar(80);not null;column:fname" json:"fname"`
	LName              string     `gorm:"type:varchar(80);not null;column:lname" json:"lname"`
	Email              string     `gorm:"type:varchar(160);not null;uniqueIndex:uq_users_email;column:email" json:"email"`
	PasswordHash       string     `gorm:"type:varchar(255);not null;column:password_hash" json:"-"`
	IdentificationCode string     `gorm:"type:varchar(40);column:identification_code" json:"identification_code"`
	Role               UserRole   `gorm:"type:varchar(16);not null;column:role" json:"role"`
	Gender             Gender     `gorm:"type:varchar(16);column:gender" json:"gender"`
	Image              *string    `gorm:"type:text;column:image" json:"image,omitempty"`
	Birthdate          *time.Time `gorm:"column:birthdate" json:"birthdate,omitempty"`
	CreatedAt          time.Time  `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

func (u UserModel) FullName() string {
	return strings.TrimSpace(u.FName + " " + u.LName)
}
