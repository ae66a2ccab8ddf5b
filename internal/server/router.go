package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/handlers"
)

type RouterConfig struct {
	QuestionnaireHandler *handlers.QuestionnaireHandler
	AllowedOrigins       []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:3000",
			"http://localhost:5174",
			"https://vespa.academy",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api/vespa/questionnaire")
	{
		api.GET("/validate", cfg.QuestionnaireHandler.Validate)
		api.POST("/submit", cfg.QuestionnaireHandler.Submit)
		api.GET("/status", cfg.QuestionnaireHandler.Status)
	}

	return router
}
