package handlers

import (
	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/auth"
	"github.com/vresta/chatbot/internal/chat"
)

// handler is the core struct with all dependencies
type handler struct {
	accounts *auth.Accounts
	guard    *chat.Guard
	pipeline *chat.Pipeline
	logger   *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(accounts *auth.Accounts, guard *chat.Guard, pipeline *chat.Pipeline, logger *zap.Logger) *handler {
	return &handler{
		accounts: accounts,
		guard:    guard,
		pipeline: pipeline,
		logger:   logger,
	}
}
