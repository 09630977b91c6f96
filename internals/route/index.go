// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kelasku_backend/internals/configs"
	assignmentRoute "kelasku_backend/internals/features/assignments/assignments/route"
	submissionRoute "kelasku_backend/internals/features/assignments/submissions/route"
	sessionRoute "kelasku_backend/internals/features/attendance/sessions/route"
	classroomRoute "kelasku_backend/internals/features/classrooms/classrooms/route"
	notificationRoute "kelasku_backend/internals/features/notifications/notifications/route"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	uploadRoute "kelasku_backend/internals/features/storage/uploads/route"
	authRoute "kelasku_backend/internals/features/users/auth/route"
	helperOSS "kelasku_backend/internals/helpers/oss"
	authMiddleware "kelasku_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, blobs helperOSS.BlobStore, notifier *notificationService.NotificationService) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== AUTH (publik) =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(app, db)

	// ===================== PRIVATE (USER) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret: configs.JWTSecret,
		}),
	)

	authRoute.AuthUserRoutes(private, db)
	classroomRoute.ClassroomRoutes(private, db, blobs)
	assignmentRoute.AssignmentRoutes(private, db, blobs, notifier)
	submissionRoute.SubmissionRoutes(private, db, blobs, notifier)
	sessionRoute.AttendanceSessionRoutes(private, db)
	notificationRoute.NotificationRoutes(private, notifier)
	uploadRoute.UploadRoutes(private, db, blobs)

	log.Println("[INFO] Routes ready.")
}
