// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kelasku_backend/internals/configs"
	controller "kelasku_backend/internals/features/users/auth/controller"
	rateLimiter "kelasku_backend/internals/middlewares"
)

// AuthRoutes: publik, base /api/auth
func AuthRoutes(app fiber.Router, db *gorm.DB) {
	authController := controller.NewAuthController(db, configs.JWTSecret, configs.JWTTTL)

	baseAuth := app.Group("/api/auth")
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	baseAuth.Post("/register", rateLimiter.RegisterRateLimiter(), authController.Register)
}

// AuthUserRoutes: butuh login (grup /api/u)
func AuthUserRoutes(api fiber.Router, db *gorm.DB) {
	authController := controller.NewAuthController(db, configs.JWTSecret, configs.JWTTTL)

	me := api.Group("/me")
	me.Get("/", authController.Me)
	me.Post("/change-password", authController.ChangePassword)
}
