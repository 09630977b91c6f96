package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"kelasku_backend/internals/configs"
	database "kelasku_backend/internals/databases"
	notificationService "kelasku_backend/internals/features/notifications/notifications/service"
	uploadService "kelasku_backend/internals/features/storage/uploads/service"
	helper "kelasku_backend/internals/helpers"
	helperOSS "kelasku_backend/internals/helpers/oss"
	middlewares "kelasku_backend/internals/middlewares"
	routes "kelasku_backend/internals/route"
	"kelasku_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.FiberErrorHandler,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          configs.TrustedProxies, // TRUSTED_PROXIES, mis. CIDR Cloudflare
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrate + warm-up
	database.ConnectDB()
	database.TunePool()
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("❌ migrate: %v", err)
	}
	database.WarmUpQueries()

	// 🌱 data demo (dev lokal saja)
	if configs.GetEnvBool("SEED_DEMO", false) {
		if err := seeds.RunAllSeeds(database.DB, "internals/seeds"); err != nil {
			log.Printf("⚠️ seed gagal: %v", err)
		}
	}

	// 📦 storage
	blobs := mustBlobStore()

	// 🔔 notifikasi: redis kalau ada, selain itu cukup tersimpan di DB
	var publisher notificationService.Publisher = notificationService.NoopPublisher{}
	var redisPub *notificationService.RedisPublisher
	if configs.RedisAddr != "" {
		redisPub = notificationService.NewRedisPublisher(configs.RedisAddr, configs.RedisPassword, configs.RedisDB, configs.RedisNotifyPrefix)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisPub.Ping(pingCtx); err != nil {
			log.Printf("⚠️ redis ping gagal (%v), publish tetap dicoba per event", err)
		}
		cancel()
		publisher = redisPub
	}
	notifier := notificationService.NewNotificationService(database.DB, publisher)

	// ⏱ reaper blob setelah DB siap
	reaper, err := uploadService.StartBlobReaperCron(uploadService.NewBlobSweeper(database.DB, blobs), configs.ReaperCron)
	if err != nil {
		log.Fatalf("❌ blob reaper: %v", err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, blobs, notifier)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: http → cron → redis → pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	<-reaper.Stop().Done()
	if redisPub != nil {
		_ = redisPub.Close()
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// STORAGE_DRIVER=oss (default) | memory. Memory hanya untuk dev lokal.
func mustBlobStore() helperOSS.BlobStore {
	switch configs.GetEnv("STORAGE_DRIVER", "oss") {
	case "memory":
		log.Println("⚠️ STORAGE_DRIVER=memory, file tidak persisten")
		return helperOSS.NewMemoryBlobStore()
	case "oss":
		store, err := helperOSS.NewOSSBlobStoreFromEnv(configs.GetEnv("OSS_PREFIX", "kelasku"), configs.UploadURLTTL)
		if err != nil {
			log.Fatalf("❌ OSS: %v", err)
		}
		return store
	default:
		panic(fmt.Sprintf("STORAGE_DRIVER tidak dikenal: %q", configs.GetEnv("STORAGE_DRIVER")))
	}
}
