package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vresta/chatbot/internal/bot"
	"github.com/vresta/chatbot/internal/database"
	"github.com/vresta/chatbot/internal/models"
	"github.com/vresta/chatbot/internal/repository"
)

type fixture struct {
	db       *gorm.DB
	users    *repository.UserRepository
	guard    *Guard
	pipeline *Pipeline
}

func newFixture(t *testing.T, cache HistoryCache) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	guard := NewGuard(repository.NewSessionRepository(db))
	pipeline := NewPipeline(guard, repository.NewMessageRepository(db), bot.NewDefault(), cache, zap.NewNop())
	return &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		guard:    guard,
		pipeline: pipeline,
	}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, HashedPassword: "hash"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) session(t *testing.T, owner *models.User) *models.Session {
	t.Helper()
	s, err := f.guard.CreateSession(context.Background(), owner)
	require.NoError(t, err)
	return s
}
