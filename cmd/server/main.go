package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/quillforge/continuum-backend/internal/cache"
	"github.com/quillforge/continuum-backend/internal/handlers"
	"github.com/quillforge/continuum-backend/internal/middleware"
	"github.com/quillforge/continuum-backend/internal/repository"
	"github.com/quillforge/continuum-backend/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Continuum Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	visibilityCache := cache.NewVisibilityCache(redisCache)
	blockCache := cache.NewBlockCache(redisCache)

	// Initialize repositories
	repos := repository.NewRepositorySet(db)
	uow := repository.NewUnitOfWork(db)
	continuityRepo := repository.NewContinuityRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Initialize services
	authService := service.NewAuthService(repos.Users, refreshTokenRepo)
	userService := service.NewUserService(repos.Users)
	blockService := service.NewBlockService(repos.Blocks, blockCache)
	visibilityService := service.NewVisibilityService(repos.Access, repos.Authors, uow, visibilityCache)
	readStateService := service.NewReadStateService(repos.Markers, repos.Posts, repos.Replies, blockService, visibilityService)
	replyService := service.NewReplyService(uow, blockService)
	obligationService := service.NewObligationService(repos.Authors, repos.Posts, repos.Users, blockService)
	postService := service.NewPostService(uow, repos.Posts, repos.Markers, blockService, visibilityService)

	if windowStr := os.Getenv("OWED_STALENESS_DAYS"); windowStr != "" {
		if days, err := strconv.Atoi(windowStr); err == nil && days > 0 {
			obligationService.SetStalenessWindow(time.Duration(days) * 24 * time.Hour)
		}
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	continuityHandler := handlers.NewContinuityHandler(continuityRepo)
	postHandler := handlers.NewPostHandler(postService, replyService, visibilityService, repos.Posts)
	readStateHandler := handlers.NewReadStateHandler(readStateService, repos.Posts)
	obligationHandler := handlers.NewObligationHandler(obligationService, userService)
	blockHandler := handlers.NewBlockHandler(blockService)
	accessHandler := handlers.NewAccessHandler(visibilityService)

	// Public routes
	api := app.Group("/api")
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired())
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Get("/users/:username", userHandler.GetUser)
	protected.Put("/users/me/owed-preference", obligationHandler.SetOwedPreference)

	// Continuities
	protected.Post("/continuities", continuityHandler.CreateContinuity)
	protected.Get("/continuities/:id", continuityHandler.GetContinuity)
	protected.Post("/continuities/:id/sections", continuityHandler.CreateSection)

	// Posts and replies
	protected.Post("/posts", postHandler.CreatePost)
	protected.Get("/posts/:id", postHandler.GetPost)
	protected.Post("/posts/:id/replies", postHandler.AddReply)
	protected.Delete("/replies/:reply_id", postHandler.DeleteReply)
	protected.Post("/replies/:reply_id/restore", postHandler.RestoreReply)
	protected.Put("/posts/:id/status", postHandler.SetStatus)
	protected.Put("/posts/:id/authors-locked", postHandler.SetAuthorsLocked)
	protected.Post("/posts/:id/warnings", postHandler.AddWarning)
	protected.Put("/posts/:id/privacy", postHandler.SetPrivacy)

	// Read state
	protected.Post("/:kind/:id/read", readStateHandler.MarkRead)
	protected.Post("/posts/:id/unread-from/:reply_id", readStateHandler.MarkUnread)
	protected.Post("/:kind/:id/ignore", readStateHandler.Ignore)
	protected.Delete("/:kind/:id/ignore", readStateHandler.Unignore)
	protected.Post("/posts/:id/hide-warnings", readStateHandler.HideWarnings)
	protected.Get("/posts/:id/first-unread", readStateHandler.FirstUnread)
	protected.Get("/unread", readStateHandler.Unread)

	// Obligations
	protected.Get("/owed", obligationHandler.Owed)
	protected.Post("/posts/:id/opt-out", obligationHandler.OptOut)
	protected.Post("/posts/:id/opt-in", obligationHandler.OptIn)
	protected.Post("/posts/:id/invites", obligationHandler.Invite)
	protected.Delete("/posts/:id/invites/:user_id", obligationHandler.Uninvite)

	// Blocks
	protected.Post("/blocks", blockHandler.SetBlock)
	protected.Delete("/blocks/:user_id", blockHandler.RemoveBlock)
	protected.Get("/blocks/hidden-posts", blockHandler.HiddenPosts)
	protected.Get("/blocks/blocked-posts", blockHandler.BlockedPosts)

	// Access control
	protected.Get("/access/visible", accessHandler.VisiblePosts)
	protected.Put("/posts/:id/viewers", accessHandler.SetViewers)
	protected.Post("/circles", accessHandler.CreateCircle)
	protected.Post("/circles/:id/members", accessHandler.AddCircleMember)
	protected.Delete("/circles/:id/members/:user_id", accessHandler.RemoveCircleMember)
	protected.Post("/posts/:id/circles/:circle_id", accessHandler.AttachCircle)
	protected.Delete("/posts/:id/circles/:circle_id", accessHandler.DetachCircle)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Continuum backend is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
