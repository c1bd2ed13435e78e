package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/apperr"
	"github.com/vresta/chatbot/internal/models"
	"github.com/vresta/chatbot/internal/repository"
)

const (
	MinUsernameLength = 4
	MaxUsernameLength = 64
	MinPasswordLength = 6
	MaxPasswordLength = 32

	// bcrypt refuses longer inputs
	MaxPasswordBytes = 72
)

var (
	ErrUsernameTaken      = apperr.New(apperr.Conflict, "Username is already taken", nil)
	ErrInvalidCredentials = apperr.New(apperr.Unauthorized, "Invalid username or password", nil)
)

// UserStore is the persistence needed by Accounts.
type UserStore interface {
	UserFinder
	Create(ctx context.Context, user *models.User) error
}

// Accounts implements registration and login.
type Accounts struct {
	users    UserStore
	creds    *Credentials
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewAccounts(users UserStore, creds *Credentials, tokenTTL time.Duration, logger *zap.Logger) *Accounts {
	return &Accounts{users: users, creds: creds, tokenTTL: tokenTTL, logger: logger}
}

// ValidateCredentials checks the length limits on username and password.
func ValidateCredentials(username, password string) error {
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		return apperr.New(apperr.InvalidInput,
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength), nil)
	}
	if n := utf8.RuneCountInString(password); n < MinPasswordLength || n > MaxPasswordLength {
		return apperr.New(apperr.InvalidInput,
			fmt.Sprintf("password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength), nil)
	}
	if len(password) > MaxPasswordBytes {
		return apperr.New(apperr.InvalidInput,
			fmt.Sprintf("password must not exceed %d bytes", MaxPasswordBytes), nil)
	}
	return nil
}

// Register creates a user. A taken username yields ErrUsernameTaken and
// leaves the existing account untouched.
func (a *Accounts) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	if _, err := a.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(err, "failed to check username")
	}

	hash, err := a.creds.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to process registration")
	}

	user := &models.User{Username: username, HashedPassword: hash}
	if err := a.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, apperr.Wrap(err, "failed to create user")
	}

	a.logger.Info("user registered", zap.String("username", username), zap.Uint("user_id", user.ID))
	return user, nil
}

// Login checks the password and issues an access token. Unknown users and
// wrong passwords produce the same error.
func (a *Accounts) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return "", time.Time{}, err
	}

	user, err := a.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", time.Time{}, apperr.Wrap(err, "failed to load user")
	}

	if !a.creds.VerifyPassword(password, user.HashedPassword) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := a.creds.IssueToken(Claims{Username: user.Username}, a.tokenTTL)
	if err != nil {
		return "", time.Time{}, apperr.Wrap(err, "failed to generate authentication token")
	}
	return token, expiresAt, nil
}
