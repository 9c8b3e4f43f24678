// @title QuizHive API
// @version 1.0
// @description Role-based quiz platform: attempts with quotas and time limits, auto-grading, manual overrides and reporting.
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizhive/internal/adapter"
	"quizhive/internal/cache"
	"quizhive/internal/config"
	"quizhive/internal/database"
	"quizhive/internal/domain"
	"quizhive/internal/handler"
	"quizhive/internal/logger"
	"quizhive/internal/middleware"
	"quizhive/internal/repository"
	"quizhive/internal/service"
	"quizhive/internal/validation"

	_ "quizhive/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Repositories
	userRepository := repository.NewSQLXUserRepository(db)
	quizRepository := repository.NewSQLXQuizRepository(db)
	questionRepository := repository.NewSQLXQuestionRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	reportRepository := repository.NewSQLXReportRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Services
	authService := service.NewAuthService(userRepository, cacheAdapter, cfg)
	quizService := service.NewQuizService(quizRepository, questionRepository, attemptRepository, txManager)
	attemptService := service.NewAttemptService(quizRepository, questionRepository, attemptRepository, userRepository, txManager, cacheAdapter)
	reportService := service.NewReportService(reportRepository, quizRepository, cacheAdapter)
	userService := service.NewUserService(userRepository)

	// Handlers
	validator := validation.NewValidator()
	authHandler := handler.NewAuthHandler(authService, validator, cfg.Session)
	quizHandler := handler.NewQuizHandler(quizService, validator)
	attemptHandler := handler.NewAttemptHandler(attemptService, validator)
	reportHandler := handler.NewReportHandler(reportService, validator)
	userHandler := handler.NewUserHandler(userService, validator)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: true,
		MaxAge:           300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	loggedIn := middleware.SessionAuth(authService, cfg.Session.CookieName)
	staffOnly := middleware.RequireRoles(domain.RoleTeacher)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)

	// Quiz and question routes
	quizGroup := apiGroup.Group("/quizzes", loggedIn)
	quizGroup.Get("/", quizHandler.List)
	quizGroup.Post("/", staffOnly, quizHandler.Create)
	quizGroup.Get("/:quizId", quizHandler.Get)
	quizGroup.Put("/:quizId", staffOnly, quizHandler.Update)
	quizGroup.Delete("/:quizId", staffOnly, quizHandler.Delete)
	quizGroup.Get("/:quizId/questions", quizHandler.ListQuestions)
	quizGroup.Post("/:quizId/questions", staffOnly, quizHandler.CreateQuestion)

	questionGroup := apiGroup.Group("/questions", loggedIn, staffOnly)
	questionGroup.Put("/:questionId", quizHandler.UpdateQuestion)
	questionGroup.Delete("/:questionId", quizHandler.DeleteQuestion)

	// Attempt routes
	attemptGroup := apiGroup.Group("/attempts", loggedIn)
	attemptGroup.Get("/", attemptHandler.ListMine)
	attemptGroup.Post("/start/:quizId", attemptHandler.Start)
	attemptGroup.Post("/submit/:attemptId", attemptHandler.Submit)
	attemptGroup.Get("/quiz/:quizId", staffOnly, attemptHandler.ListByQuiz)
	attemptGroup.Get("/:attemptId", attemptHandler.Get)
	attemptGroup.Put("/:attemptId/grade", staffOnly, attemptHandler.OverrideGrade)

	// Report routes
	reportGroup := apiGroup.Group("/reports", loggedIn)
	reportGroup.Get("/leaderboard/:quizId", reportHandler.Leaderboard)
	reportGroup.Get("/analytics/:quizId", reportHandler.Analytics)
	reportGroup.Get("/user", reportHandler.UserReport)
	reportGroup.Get("/user/export", reportHandler.ExportUserReport)

	// Admin routes
	adminGroup := apiGroup.Group("/admin", loggedIn, adminOnly)
	adminGroup.Get("/users", userHandler.List)
	adminGroup.Put("/users/:userId/role", userHandler.UpdateRole)
	adminGroup.Delete("/users/:userId", userHandler.Delete)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
