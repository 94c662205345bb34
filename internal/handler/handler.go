package handler

import (
	"database/sql"
	"net/http"
	"time"
	"user_auth_service/internal/auth"
	"user_auth_service/internal/cache"
	"user_auth_service/internal/config"
	"user_auth_service/internal/middleware"
	"user_auth_service/internal/observability"
	"user_auth_service/internal/queue"
	"user_auth_service/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rabbitmq/amqp091-go"
)

// SetupHandler initializes all dependencies and routes
func SetupHandler(db *sql.DB, conn *amqp091.Connection, redisClient *redis.Client, cfg *config.Config) *gin.Engine {

	r := gin.Default()

	// Installed before any route so every handler is measured
	if observability.GlobalMetrics != nil {
		r.Use(middleware.PrometheusMiddleware(observability.GlobalMetrics))
	}

	codec := auth.NewTokenCodec(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLMinutes)*time.Minute)

	userRepo := user.NewUserRepository()
	userCache := cache.NewUserCache(redisClient)
	publisher := queue.NewPublisher(conn)

	userService := user.NewUserService(userRepo, db, userCache, publisher)
	userController := user.NewUserController(userService, codec)

	authLimiter := middleware.RateLimiterMiddleware(redisClient, middleware.StrictRateLimiter(), middleware.ClientIPKey)
	apiLimiter := middleware.RateLimiterMiddleware(redisClient, middleware.DefaultRateLimiterConfig(), middleware.ClaimsUsernameKey)

	registerRoutes(r, userController, codec, cfg.AppPort, authLimiter, apiLimiter)

	return r
}

// registerRoutes configures the route table. The credential check is the only
// API route in front of the auth gate.
func registerRoutes(r *gin.Engine, userCtrl *user.UserController, codec *auth.TokenCodec, port string, authLimiter, apiLimiter gin.HandlerFunc) {

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "User Auth Service. The API is at http://localhost:%s/api", port)
	})

	api := r.Group("/api")
	api.POST("/authenticate", authLimiter, userCtrl.Authenticate)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(codec))
	protected.Use(apiLimiter)
	{
		protected.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "JSON Web Token (JWT) based user authentication service!"})
		})
		protected.GET("/check", userCtrl.Check)
		protected.GET("/users", userCtrl.ListUsers)
		protected.POST("/users", userCtrl.CreateUser)
		protected.GET("/users/:username", userCtrl.GetUserByUsername)
		protected.PUT("/users/:username", userCtrl.UpdateUser)
		protected.DELETE("/users/:username", userCtrl.DeleteUserByUsername)
	}
}
