package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"club-management-system/handlers"
	"club-management-system/logging"
	"club-management-system/models"
	"club-management-system/services"
	"club-management-system/utils"
	"club-management-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	logging.InitFromEnv()
	defer logging.Sync()
	logger := logging.L()

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // 20MB, PGN uploads are small
	})

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		logger.Warn("ALLOWED_ORIGINS not set, using default http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitStorage(); err != nil {
		logger.Fatal("failed to initialize game file storage", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.RatingHistory{},
		&models.Tournament{},
		&models.Room{},
		&models.Post{},
		&models.Comment{},
		&models.DailyPuzzle{},
		&models.AuditLog{},
	); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	leaderboard, err := services.NewLeaderboardCache(os.Getenv("REDIS_URL"))
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	if leaderboard == nil {
		logger.Warn("REDIS_URL not set, leaderboard cache disabled")
	}
	defer leaderboard.Close()

	auditService := services.NewAuditService(db)
	eloService := services.NewEloRatingService(db, auditService, leaderboard)
	gameService := services.NewGameService(db, eloService, auditService)
	userService := services.NewUserService(db, auditService, leaderboard)
	tournamentService := services.NewTournamentService(db, auditService)
	roomService := services.NewRoomService(db)
	postService := services.NewPostService(db)
	puzzleService := services.NewPuzzleService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer := workers.NewLeaderboardSyncer(db, leaderboard)
	go syncer.Run(ctx, 5*time.Minute)

	if err := puzzleService.StartPuzzleScheduler(); err != nil {
		logger.Fatal("failed to start puzzle scheduler", zap.Error(err))
	}

	handlers.SetupUserRoutes(app, userService)
	handlers.SetupGameRoutes(app, gameService)
	handlers.SetupRatingRoutes(app, eloService)
	handlers.SetupTournamentRoutes(app, tournamentService)
	handlers.SetupRoomRoutes(app, roomService)
	handlers.SetupPostRoutes(app, postService)
	handlers.SetupPuzzleRoutes(app, puzzleService)
	handlers.SetupAuditRoutes(app, auditService)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":5200"
	}

	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	logger.Info("server running", zap.String("addr", addr))
	logger.Info("cors configured", zap.String("origins", allowedOriginsString))

	<-ctx.Done()
	logger.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
