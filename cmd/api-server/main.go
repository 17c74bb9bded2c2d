package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/http-api/handler"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
	"reviewhub/internal/http-api/validation"
	"reviewhub/internal/mailer"
	"reviewhub/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("could not connect to database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	var notifier mailer.Notifier
	if cfg.SMTPEnabled {
		notifier = mailer.NewSMTPMailer(cfg)
	} else {
		notifier = mailer.NewLogMailer()
	}

	limits := validation.DefaultLimits()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewCodeRepository(redisClient)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, codeRepo, notifier, limits, cfg)
	userService := service.NewUserService(userRepo, limits)
	categoryService := service.NewCategoryService(categoryRepo, limits)
	genreService := service.NewGenreService(genreRepo, limits)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo, limits)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	genreHandler := handler.NewGenreHandler(genreService)
	titleHandler := handler.NewTitleHandler(titleService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(commentService)

	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "reviewhub"})
	})

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Authenticate(authService))
	{
		authHandler.RegisterRoutes(v1.Group("/auth", authLimiter.Middleware()))
		userHandler.RegisterRoutes(v1.Group("/users"))
		categoryHandler.RegisterRoutes(v1.Group("/categories"))
		genreHandler.RegisterRoutes(v1.Group("/genres"))

		titles := v1.Group("/titles")
		titleHandler.RegisterRoutes(titles)
		reviewHandler.RegisterRoutes(titles)
		commentHandler.RegisterRoutes(titles)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info().Str("addr", addr).Msg("starting api server")
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
