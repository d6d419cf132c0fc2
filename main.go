package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/farhan/clouddrive-backend/auth"
	"github.com/farhan/clouddrive-backend/auth/middleware"
	"github.com/farhan/clouddrive-backend/auth/oauth"
	"github.com/farhan/clouddrive-backend/handlers"
	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/jobs"
	"github.com/farhan/clouddrive-backend/routes"
)

const defaultPort = "8080"

func main() {
	initializers.ConnectToDatabase()
	initializers.InitAWS()

	cfg, err := auth.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	handlers.Init(cfg)
	oauth.InitStore()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	jobs.StartTrashReaper()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("BASE_URL")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(
		middleware.RateLimitMiddleware(),
	)

	routes.RegisterAuthRoutes(router, cfg)
	routes.RegisterFileRoutes(router, cfg)
	routes.RegisterFolderRoutes(router, cfg)
	routes.RegisterShareRoutes(router, cfg)
	routes.RegisterStarRoutes(router, cfg)
	routes.RegisterActivityRoutes(router, cfg)
	routes.RegisterBatchRoutes(router, cfg)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Cloud drive API is running"})
	})

	log.Printf("listening on :%s", port)
	log.Fatal(router.Run(":" + port))
}
