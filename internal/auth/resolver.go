package auth

import (
	"context"
	"errors"

	"github.com/vresta/chatbot/internal/apperr"
	"github.com/vresta/chatbot/internal/models"
	"github.com/vresta/chatbot/internal/repository"
)

var (
	ErrMissingUsername = apperr.New(apperr.Unauthorized, "Could not validate credentials", nil)
	ErrUserNotFound    = apperr.New(apperr.NotFound, "User not found", nil)
)

// UserFinder looks users up by username.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Resolver turns a bearer token into the user it was issued to.
type Resolver struct {
	creds *Credentials
	users UserFinder
}

func NewResolver(creds *Credentials, users UserFinder) *Resolver {
	return &Resolver{creds: creds, users: users}
}

func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := r.creds.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Username == "" {
		return nil, ErrMissingUsername
	}

	user, err := r.users.FindByUsername(ctx, claims.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load user")
	}
	return user, nil
}
