// Package api assembles the HTTP surface.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/api/handlers"
	"github.com/vresta/chatbot/internal/api/middleware"
	"github.com/vresta/chatbot/internal/auth"
	"github.com/vresta/chatbot/internal/chat"
)

type Dependencies struct {
	Accounts    *auth.Accounts
	Resolver    *auth.Resolver
	Guard       *chat.Guard
	Pipeline    *chat.Pipeline
	FrontendURL string
	Logger      *zap.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger.Named("http")))

	// Configure CORS middleware
	headers := cors.DefaultConfig()
	if deps.FrontendURL != "" {
		headers.AllowOrigins = []string{deps.FrontendURL}
		headers.AllowCredentials = true
	} else {
		headers.AllowAllOrigins = true
	}
	headers.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	headers.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	headers.ExposeHeaders = []string{"Content-Length"}
	r.Use(cors.New(headers))

	handler := handlers.NewHandler(deps.Accounts, deps.Guard, deps.Pipeline, deps.Logger.Named("handlers"))
	authMiddleware := middleware.NewAuthMiddleware(deps.Resolver, deps.Logger.Named("auth"))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handler.RegisterHandler)
		authGroup.POST("/login", handler.LoginHandler)
	}

	// Chat routes - protected by authentication
	chatGroup := r.Group("/chat", authMiddleware.AuthMiddleware())
	{
		chatGroup.POST("/session", handler.CreateSession)
		chatGroup.GET("/sessions", handler.ListSessions)
		chatGroup.POST("/message", handler.SendMessage)
		chatGroup.GET("/history/:sessionId", handler.GetHistory)
		chatGroup.DELETE("/history/:sessionId", handler.DeleteHistory)
	}

	return r
}
