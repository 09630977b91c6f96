package user

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	authHelper "kelasku_backend/internals/features/users/auth/helper"
	"kelasku_backend/internals/features/users/user/model"
)

type UserSeed struct {
	FName              string `json:"fname"`
	LName              string `json:"lname"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	IdentificationCode string `json:"identification_code"`
	Role               string `json:"role"`
	Gender             string `json:"gender"`
}

// SeedUsersFromJSON: user yang email-nya sudah ada dilewati.
func SeedUsersFromJSON(db *gorm.DB, filePath string) (created int, err error) {
	log.Println("📥 Membaca file user:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("baca file: %w", err)
	}
	var inputs []UserSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return 0, fmt.Errorf("decode json: %w", err)
	}

	for _, data := range inputs {
		var count int64
		if err := db.Model(&model.UserModel{}).Where("email = ?", data.Email).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			log.Printf("ℹ️ User dengan email '%s' sudah ada, dilewati.", data.Email)
			continue
		}

		role := model.UserRole(data.Role)
		if !role.Valid() {
			return created, fmt.Errorf("role %q untuk %s tidak valid", data.Role, data.Email)
		}

		// 🔐 Hash password sebelum disimpan
		hashedPassword, err := authHelper.HashPassword(data.Password)
		if err != nil {
			return created, fmt.Errorf("hash password %s: %w", data.Email, err)
		}

		newUser := model.UserModel{
			FName:              data.FName,
			LName:              data.LName,
			Email:              data.Email,
			PasswordHash:       hashedPassword,
			IdentificationCode: data.IdentificationCode,
			Role:               role,
			Gender:             model.Gender(data.Gender),
		}
		if err := db.Create(&newUser).Error; err != nil {
			return created, fmt.Errorf("insert %s: %w", data.Email, err)
		}
		created++
		log.Printf("✅ User '%s' berhasil ditambahkan.", data.Email)
	}
	return created, nil
}
