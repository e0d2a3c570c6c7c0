package http

import (
	"github.com/gin-gonic/gin"

	"sarvuday-server/internal/bootstrap"
	"sarvuday-server/internal/transport/http/handler"
	"sarvuday-server/internal/transport/http/middleware"
)

func NewRouter(a *bootstrap.App) *gin.Engine {
	gin.SetMode(a.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(a.Logger), gin.Recovery())

	debug := !a.Config.IsProduction()
	probes := map[string]handler.Probe{
		"database": a.PingDB,
	}
	if a.Redis != nil {
		probes["redis"] = a.PingRedis
	}
	if a.MQConn != nil {
		probes["rabbitmq"] = a.PingRabbitMQ
	}
	healthHandler := handler.NewHealthHandler(a.Config.App.Name, a.Config.App.Env, a.StartedAt, probes)
	router.GET("/healthz", healthHandler.Check)

	authHandler := handler.NewAuthHandler(a.AuthService, debug)
	chatHandler := handler.NewChatHandler(a.ChatService, a.TranscriptService, debug)
	assessmentHandler := handler.NewAssessmentHandler(a.AssessmentService, debug)
	quizHandler := handler.NewQuizHandler(a.QuizService, debug)
	auth := middleware.AuthJWT(a.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", auth, authHandler.Me)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(auth)
	chatGroup.POST("/send-message", chatHandler.SendMessage)
	chatGroup.GET("/chat-history", chatHandler.GetHistory)
	chatGroup.POST("/chat-sessions", chatHandler.CreateSession)
	chatGroup.GET("/chat-sessions", chatHandler.ListSessions)
	chatGroup.GET("/assessment-results", assessmentHandler.Results)
	chatGroup.POST("/export-session/:sessionId", chatHandler.ExportSession)

	quizGroup := v1.Group("/quizzes")
	quizGroup.Use(auth)
	quizGroup.POST("/submit", quizHandler.Submit)
	quizGroup.GET("/history", quizHandler.History)

	return router
}
