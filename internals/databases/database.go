package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kelasku_backend/internals/configs"
	assignmentModel "kelasku_backend/internals/features/assignments/assignments/model"
	submissionModel "kelasku_backend/internals/features/assignments/submissions/model"
	sessionModel "kelasku_backend/internals/features/attendance/sessions/model"
	classroomModel "kelasku_backend/internals/features/classrooms/classrooms/model"
	notificationModel "kelasku_backend/internals/features/notifications/notifications/model"
	uploadModel "kelasku_backend/internals/features/storage/uploads/model"
	userModel "kelasku_backend/internals/features/users/user/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL...")

	// Catatan: kalau pakai PgBouncer, ganti host/port ke port PgBouncer dan biarkan PreferSimpleProtocol=true
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=kelasku&options=-c statement_timeout=3000",
		configs.GetEnv("DB_USER"),
		configs.GetEnv("DB_PASSWORD"),
		configs.GetEnv("DB_HOST", "localhost"),
		configs.GetEnv("DB_PORT", "5432"),
		configs.GetEnv("DB_NAME"),
		configs.GetEnv("DB_SSLMODE", "require"),
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	// jalankan ringan supaya koneksi/pool “keisi” & siap
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Ping() error {
	if DB == nil {
		return fmt.Errorf("db belum diinisialisasi")
	}
	return ping()
}

// Models: urutan migrasi (parent dulu).
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&classroomModel.ClassroomModel{},
		&classroomModel.ClassroomMemberModel{},
		&assignmentModel.AssignmentModel{},
		&assignmentModel.AssignmentFileModel{},
		&submissionModel.SubmissionModel{},
		&submissionModel.SubmissionFileModel{},
		&sessionModel.AttendanceSessionModel{},
		&sessionModel.AttendanceRecordModel{},
		&notificationModel.NotificationModel{},
		&uploadModel.UploadModel{},
		&uploadModel.PendingBlobDeletionModel{},
	}
}

// Migrate membuat/menyesuaikan tabel + index (termasuk unique index
// (assignment,user) di submissions dan (session,user) di attendance_records).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
