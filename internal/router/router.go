package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog-comment-api/internal/cache"
	"blog-comment-api/internal/handler"
	"blog-comment-api/internal/metrics"
	"blog-comment-api/internal/middleware"
	"blog-comment-api/internal/repository"
	"blog-comment-api/internal/service"
	"blog-comment-api/internal/validation"
	"blog-comment-api/internal/ws"
)

// Config holds all dependencies needed to set up the router
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Hub            *ws.Hub
	JWTSecret      string
	BasePath       string
	AllowedOrigins []string
	SensitiveWords []string
	CacheTTL       time.Duration
}

// Setup creates and configures the Gin router with all routes and middleware
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Initialize repositories
	commentRepo := repository.NewCommentRepository(cfg.DB)
	likeRepo := repository.NewLikeRepository(cfg.DB)
	articleRepo := repository.NewArticleRepository(cfg.DB)
	userRepo := repository.NewUserRepository(cfg.DB)

	// Page cache and event fan-out are optional collaborators
	var pageCache service.PageCache
	if cfg.Redis != nil {
		pageCache = cache.NewCommentPageCache(cfg.Redis, cfg.CacheTTL, cfg.Logger)
	}
	var events service.EventPublisher
	if cfg.Hub != nil {
		events = cfg.Hub
	}

	checker := validation.NewContentChecker(cfg.SensitiveWords)

	commentService := service.NewCommentService(
		commentRepo,
		likeRepo,
		articleRepo,
		userRepo,
		pageCache,
		events,
		checker,
		cfg.Metrics,
		cfg.Logger,
	)

	// Initialize handlers
	commentHandler := handler.NewCommentHandler(commentService, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)

	// Health and metrics endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group(cfg.BasePath)
	{
		if cfg.BasePath != "" {
			api.GET("/health", healthHandler.Health)
			api.GET("/metrics", gin.WrapH(promhttp.Handler()))
		}

		// Listing is viewer-aware but open to anonymous readers
		viewing := api.Group("")
		viewing.Use(middleware.OptionalAuth(cfg.JWTSecret))
		{
			viewing.GET("/articles/:articleId/comments", commentHandler.ListComments)
		}

		if cfg.Hub != nil {
			streamHandler := ws.NewStreamHandler(cfg.Hub, cfg.Logger)
			api.GET("/articles/:articleId/comments/stream", streamHandler.Stream)
		}

		// Mutations require an authenticated user
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(cfg.JWTSecret))
		{
			authenticated.POST("/articles/:articleId/comments", commentHandler.CreateComment)
			authenticated.POST("/comments/:commentId/replies", commentHandler.CreateReply)
			authenticated.POST("/comments/:commentId/like", commentHandler.ToggleLike)
			authenticated.PUT("/comments/:commentId", commentHandler.UpdateComment)
			authenticated.DELETE("/comments/:commentId", commentHandler.DeleteComment)
		}
	}

	return r
}
