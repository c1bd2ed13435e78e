package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vresta/chatbot/internal/models"
)

func TestOpenSQLiteEnforcesSchema(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	ctx := context.Background()
	user := models.User{Username: "schema-user", HashedPassword: "x"}
	require.NoError(t, db.WithContext(ctx).Create(&user).Error)

	t.Run("session requires an existing owner", func(t *testing.T) {
		orphan := models.Session{ID: "orphan-session", UserID: 9999, CreatedDate: time.Now()}
		require.Error(t, db.WithContext(ctx).Create(&orphan).Error)
	})

	t.Run("sender type is restricted", func(t *testing.T) {
		session := models.Session{ID: "schema-session", UserID: user.ID, CreatedDate: time.Now()}
		require.NoError(t, db.WithContext(ctx).Create(&session).Error)

		bad := models.Message{SessionID: session.ID, SenderType: "system", Text: "hi", SentAt: time.Now()}
		require.Error(t, db.WithContext(ctx).Create(&bad).Error)
	})

	t.Run("deleting a user cascades", func(t *testing.T) {
		msg := models.Message{SessionID: "schema-session", SenderType: models.SenderUser, Text: "hi", SentAt: time.Now()}
		require.NoError(t, db.WithContext(ctx).Create(&msg).Error)

		require.NoError(t, db.WithContext(ctx).Delete(&models.User{}, user.ID).Error)

		var sessions, messages int64
		require.NoError(t, db.Model(&models.Session{}).Count(&sessions).Error)
		require.NoError(t, db.Model(&models.Message{}).Count(&messages).Error)
		require.Zero(t, sessions)
		require.Zero(t, messages)
	})
}
