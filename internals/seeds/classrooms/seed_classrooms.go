package classrooms

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	classroomModel "kelasku_backend/internals/features/classrooms/classrooms/model"
	userModel "kelasku_backend/internals/features/users/user/model"
)

type ClassroomSeed struct {
	Name          string   `json:"name"`
	OwnerEmail    string   `json:"owner_email"`
	StudentEmails []string `json:"student_emails"`
}

// SeedClassroomsFromJSON: kelas dianggap sudah ada kalau (owner, name) sama.
// User harus sudah di-seed lebih dulu.
func SeedClassroomsFromJSON(db *gorm.DB, filePath string) (created int, err error) {
	log.Println("📥 Membaca file kelas:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("baca file: %w", err)
	}
	var inputs []ClassroomSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return 0, fmt.Errorf("decode json: %w", err)
	}

	for _, data := range inputs {
		owner, err := findUser(db, data.OwnerEmail)
		if err != nil {
			return created, err
		}

		var existing classroomModel.ClassroomModel
		err = db.Where("classroom_owner_user_id = ? AND classroom_name = ?", owner.ID, data.Name).First(&existing).Error
		if err == nil {
			log.Printf("ℹ️ Kelas '%s' sudah ada, dilewati.", data.Name)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			room := classroomModel.ClassroomModel{
				ClassroomName:        data.Name,
				ClassroomOwnerUserID: owner.ID,
			}
			if err := tx.Create(&room).Error; err != nil {
				return err
			}
			members := []classroomModel.ClassroomMemberModel{{
				ClassroomMemberClassroomID: room.ClassroomID,
				ClassroomMemberUserID:      owner.ID,
				ClassroomMemberStatus:      classroomModel.MemberStatusOwner,
			}}
			for _, email := range data.StudentEmails {
				st, err := findUser(tx, email)
				if err != nil {
					return err
				}
				members = append(members, classroomModel.ClassroomMemberModel{
					ClassroomMemberClassroomID: room.ClassroomID,
					ClassroomMemberUserID:      st.ID,
					ClassroomMemberStatus:      classroomModel.MemberStatusActive,
				})
			}
			if err := tx.Create(&members).Error; err != nil {
				return err
			}
			log.Printf("✅ Kelas '%s' dibuat (kode gabung %s).", room.ClassroomName, room.ClassroomJoinCode)
			return nil
		})
		if err != nil {
			return created, fmt.Errorf("kelas %s: %w", data.Name, err)
		}
		created++
	}
	return created, nil
}

func findUser(db *gorm.DB, email string) (userModel.UserModel, error) {
	var u userModel.UserModel
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		return u, fmt.Errorf("user %s: %w", email, err)
	}
	return u, nil
}
