package app

import (
	"history_quiz_backend/docs"
	"history_quiz_backend/internal/config"
	"history_quiz_backend/internal/middleware"
	"history_quiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	registerSwagger(router)
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 答题相关，需要登录
	authGroup := router.Group("/api/quiz")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	registerQuizRoutes(authGroup, c)
}

func registerQuizRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/practice", c.quiz.StartPractice)
	group.POST("/exam", c.quiz.StartExam)

	session := group.Group("/session")
	{
		session.GET("", c.quiz.GetSession)
		session.POST("/answer", c.quiz.Answer)
		session.POST("/next", c.quiz.Next)
		session.POST("/prev", c.quiz.Prev)
		session.POST("/jump", c.quiz.Jump)
		session.POST("/mark", c.quiz.Mark)
		session.POST("/submit", c.quiz.Submit)
		session.POST("/save", c.quiz.SaveAndExit)
		session.POST("/exit", c.quiz.Exit)
	}

	saved := group.Group("/saved")
	{
		saved.GET("", c.quiz.CheckSaved)
		saved.POST("/resume", c.quiz.Resume)
		saved.DELETE("", c.quiz.Discard)
	}

	group.GET("/history", c.quiz.History)
}

// 接口文档，注解里的路径已带 /api 前缀
func registerSwagger(router *gin.Engine) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
}
