package main

import (
	"fmt"
	"log"
	"net/http"

	"mingle/backend/internal/auth"
	"mingle/backend/internal/cache"
	"mingle/backend/internal/config"
	"mingle/backend/internal/database"
	"mingle/backend/internal/handler"
	"mingle/backend/internal/middleware"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "mingle/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Mingle API
// @version         1.0
// @description     This is the API for the Mingle speed-networking service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database and optional redis
	database.Connect(config.AppConfig.DatabaseURL)
	cache.Connect(config.AppConfig.RedisAddr)

	handler.Init(database.DB)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
		}

		// Lobby routes
		lobbyRoutes := apiV1.Group("/lobbies")
		{
			// Browsing is public
			lobbyRoutes.GET("", auth.OptionalAuthMiddleware(), handler.SearchLobbies)
			lobbyRoutes.GET("/:id", auth.OptionalAuthMiddleware(), handler.GetLobbyByID)

			// Matching and stats require auth
			lobbyRoutes.GET("/:id/stats", auth.AuthMiddleware(), handler.GetLobbyStats)
			lobbyRoutes.POST("/:id/join", auth.AuthMiddleware(), middleware.RateLimit(5), handler.JoinLobby)
		}

		// Session routes (protected)
		sessionRoutes := apiV1.Group("/sessions")
		sessionRoutes.Use(auth.AuthMiddleware())
		{
			sessionRoutes.GET("/:id", handler.GetSession)
			sessionRoutes.POST("/:id/leave", middleware.RateLimit(5), handler.LeaveSession)
			sessionRoutes.POST("/:id/rate", middleware.RateLimit(5), handler.RateSession)
			sessionRoutes.GET("/:id/events", handler.SessionEvents)
		}

		// Analytics routes (protected)
		analyticsRoutes := apiV1.Group("/analytics")
		analyticsRoutes.Use(auth.AuthMiddleware())
		{
			analyticsRoutes.GET("/usage", handler.GetUsage)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			// Lobby CRUD
			adminLobbies := adminRoutes.Group("/lobbies")
			{
				adminLobbies.POST("", handler.CreateLobby)
				adminLobbies.PUT("/:id", handler.UpdateLobby)
				adminLobbies.DELETE("/:id", handler.DeleteLobby)
			}
		}
	}

	addr := ":" + config.AppConfig.Port
	fmt.Println("Server is running on " + addr)
	fmt.Println("Swagger UI is available at http://localhost" + addr + "/swagger/index.html")
	log.Fatal(router.Run(addr))
}
