package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"task-review-api/config"
	"task-review-api/controllers"
	"task-review-api/middleware"
	"task-review-api/routes"
	"task-review-api/storage"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	logFile := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database
	config.InitDB()

	// Initialize object storage for submission archives
	store, err := storage.NewFromEnv()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	// Wire the workflow engine
	controllers.Setup(config.DB, store)

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	router.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(router)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.WithField("port", port).Info("server starting")

	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
