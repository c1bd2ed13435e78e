// Package chat owns chat sessions and the message pipeline. Every session
// scoped operation is authorized through Guard.Authorize.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vresta/chatbot/internal/apperr"
	"github.com/vresta/chatbot/internal/models"
	"github.com/vresta/chatbot/internal/repository"
)

var (
	ErrSessionNotFound = apperr.New(apperr.NotFound, "Session not found", nil)
	ErrForbidden       = apperr.New(apperr.Forbidden, "Access denied", nil)
)

// SessionStore is the persistence needed by Guard.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Session, error)
}

// Guard creates sessions and checks who may use them.
type Guard struct {
	sessions SessionStore
	now      func() time.Time
}

func NewGuard(sessions SessionStore) *Guard {
	return &Guard{sessions: sessions, now: time.Now}
}

// CreateSession opens a new session owned by owner.
func (g *Guard) CreateSession(ctx context.Context, owner *models.User) (*models.Session, error) {
	session := &models.Session{
		ID:          uuid.NewString(),
		UserID:      owner.ID,
		CreatedDate: g.now().UTC(),
	}
	if err := g.sessions.Create(ctx, session); err != nil {
		return nil, apperr.Wrap(err, "failed to create session")
	}
	return session, nil
}

// ListSessions returns owner's sessions, newest first.
func (g *Guard) ListSessions(ctx context.Context, owner *models.User) ([]models.Session, error) {
	sessions, err := g.sessions.ListByUser(ctx, owner.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list sessions")
	}
	return sessions, nil
}

// GetOwner returns the owner of the session. found is false when the session
// does not exist.
func (g *Guard) GetOwner(ctx context.Context, sessionID string) (ownerID uint, found bool, err error) {
	session, err := g.sessions.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, apperr.Wrap(err, "failed to load session")
	}
	return session.UserID, true, nil
}

// Authorize returns the session if requester owns it. A missing session
// yields ErrSessionNotFound, someone else's session ErrForbidden.
func (g *Guard) Authorize(ctx context.Context, sessionID string, requester *models.User) (*models.Session, error) {
	session, err := g.sessions.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load session")
	}
	if session.UserID != requester.ID {
		return nil, ErrForbidden
	}
	return session, nil
}
