package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studyowl/tutor-backend/internal/http/handlers"
	"github.com/studyowl/tutor-backend/internal/http/middleware"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log           *logger.Logger
	HealthHandler *handlers.HealthHandler
	TutorHandler  *handlers.TutorHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(cfg.Log))

	// The tutoring API is called straight from browser clients, so CORS stays
	// permissive and OPTIONS preflights are answered by the middleware.
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/tutor/chat", cfg.TutorHandler.Chat)
		api.POST("/tutor/explanation", cfg.TutorHandler.Explanation)
	}

	return router
}
