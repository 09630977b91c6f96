package seeds

import (
	"log"
	"path/filepath"

	"gorm.io/gorm"

	classrooms "kelasku_backend/internals/seeds/classrooms"
	users "kelasku_backend/internals/seeds/users/auth"
)

// RunAllSeeds: data demo untuk dev lokal. baseDir biasanya "internals/seeds".
func RunAllSeeds(db *gorm.DB, baseDir string) error {
	//* User
	n, err := users.SeedUsersFromJSON(db, filepath.Join(baseDir, "users/auth/data_users.json"))
	if err != nil {
		return err
	}
	log.Printf("🌱 users: %d baru", n)

	//* Classroom
	n, err = classrooms.SeedClassroomsFromJSON(db, filepath.Join(baseDir, "classrooms/data_classrooms.json"))
	if err != nil {
		return err
	}
	log.Printf("🌱 classrooms: %d baru", n)
	return nil
}
