package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/apperr"
)

type CredentialsRequest struct {
	Username string `json:"username" binding:"required,min=4,max=64"`
	Password string `json:"password" binding:"required,min=6,max=32"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RegisterHandler handles user registration
func (h *handler) RegisterHandler(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if _, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// LoginHandler handles user login
func (h *handler) LoginHandler(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	token, expiresAt, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unauthorized {
			h.logger.Info("failed login attempt",
				zap.String("username", req.Username),
				zap.String("client_ip", c.ClientIP()))
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}
