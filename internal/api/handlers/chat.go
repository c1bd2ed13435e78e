package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vresta/chatbot/internal/api/middleware"
	"github.com/vresta/chatbot/internal/models"
)

// MessageRequest is bound before authorization; sender and text are checked
// by the pipeline after the ownership check.
type MessageRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	SenderType string `json:"sender_type"`
	Text       string `json:"text"`
}

type MessageResponse struct {
	SenderType models.SenderType `json:"sender_type"`
	Text       string            `json:"text"`
	SentAt     time.Time         `json:"sent_at"`
}

type AnswerResponse struct {
	Answer *string `json:"answer,omitempty"`
}

func (h *handler) CreateSession(c *gin.Context) {
	session, err := h.guard.CreateSession(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handler) ListSessions(c *gin.Context) {
	sessions, err := h.guard.ListSessions(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *handler) SendMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	exchange, err := h.pipeline.Send(c.Request.Context(), req.SessionID, middleware.CurrentUser(c),
		models.SenderType(req.SenderType), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var resp AnswerResponse
	if exchange.Reply != nil {
		resp.Answer = &exchange.Reply.Text
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *handler) GetHistory(c *gin.Context) {
	messages, err := h.pipeline.History(c.Request.Context(), c.Param("sessionId"), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertMessagesToResponse(messages))
}

func (h *handler) DeleteHistory(c *gin.Context) {
	deleted, err := h.pipeline.Purge(c.Request.Context(), c.Param("sessionId"), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func convertMessagesToResponse(messages []models.Message) []MessageResponse {
	response := make([]MessageResponse, len(messages))
	for i, msg := range messages {
		response[i] = MessageResponse{
			SenderType: msg.SenderType,
			Text:       msg.Text,
			SentAt:     msg.SentAt,
		}
	}
	return response
}
