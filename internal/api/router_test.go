package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/auth"
	"github.com/vresta/chatbot/internal/bot"
	"github.com/vresta/chatbot/internal/chat"
	"github.com/vresta/chatbot/internal/database"
	"github.com/vresta/chatbot/internal/repository"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	creds  *auth.Credentials
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	creds, err := auth.NewCredentials("test-secret")
	require.NoError(t, err)

	logger := zap.NewNop()
	users := repository.NewUserRepository(db)
	guard := chat.NewGuard(repository.NewSessionRepository(db))
	pipeline := chat.NewPipeline(guard, repository.NewMessageRepository(db), bot.NewDefault(), nil, logger)

	router := NewRouter(Dependencies{
		Accounts: auth.NewAccounts(users, creds, 30*time.Minute, logger),
		Resolver: auth.NewResolver(creds, users),
		Guard:    guard,
		Pipeline: pipeline,
		Logger:   logger,
	})
	return &testServer{t: t, router: router, creds: creds}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(s.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/auth/register", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, resp.Code, resp.Body.String())

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(s.t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(s.t, body.AccessToken)
	assert.Equal(s.t, "bearer", body.TokenType)
	return body.AccessToken
}

func (s *testServer) newSession(token string) string {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/chat/session", token, nil)
	require.Equal(s.t, http.StatusOK, resp.Code, resp.Body.String())

	var body struct {
		ID          string    `json:"id"`
		UserID      uint      `json:"user_id"`
		CreatedDate time.Time `json:"created_date"`
	}
	require.NoError(s.t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(s.t, body.ID)
	require.NotZero(s.t, body.UserID)
	return body.ID
}

type historyItem struct {
	SenderType string    `json:"sender_type"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sent_at"`
}

func (s *testServer) history(token, sessionID string) []historyItem {
	s.t.Helper()
	resp := s.do(http.MethodGet, "/chat/history/"+sessionID, token, nil)
	require.Equal(s.t, http.StatusOK, resp.Code, resp.Body.String())

	var items []historyItem
	require.NoError(s.t, json.Unmarshal(resp.Body.Bytes(), &items))
	require.NotNil(s.t, items, "history must be a JSON list")
	return items
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestChatScenario(t *testing.T) {
	s := newTestServer(t)
	token := s.login("TestUser1", "NotLongPassword")
	sessionID := s.newSession(token)

	assert.Empty(t, s.history(token, sessionID))

	resp := s.do(http.MethodPost, "/chat/message", token, map[string]string{
		"session_id": sessionID, "sender_type": "user", "text": "ПОКА",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var answer struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &answer))
	assert.Equal(t, bot.FarewellReply, answer.Answer)

	items := s.history(token, sessionID)
	require.Len(t, items, 2)
	assert.Equal(t, historyItem{SenderType: "user", Text: "ПОКА", SentAt: items[0].SentAt}, items[0])
	assert.Equal(t, historyItem{SenderType: "bot", Text: bot.FarewellReply, SentAt: items[1].SentAt}, items[1])

	resp = s.do(http.MethodDelete, "/chat/history/"+sessionID, token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, s.history(token, sessionID))
}

func TestGreetingAnswer(t *testing.T) {
	s := newTestServer(t)
	token := s.login("TestUser1", "NotLongPassword")
	sessionID := s.newSession(token)

	resp := s.do(http.MethodPost, "/chat/message", token, map[string]string{
		"session_id": sessionID, "sender_type": "user", "text": "ПриВЕТ",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), "VResta")
}

func TestBotMessageIsStoredWithoutReply(t *testing.T) {
	s := newTestServer(t)
	token := s.login("TestUser1", "NotLongPassword")
	sessionID := s.newSession(token)

	resp := s.do(http.MethodPost, "/chat/message", token, map[string]string{
		"session_id": sessionID, "sender_type": "bot", "text": "Привет",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.JSONEq(t, `{}`, resp.Body.String())
	assert.Len(t, s.history(token, sessionID), 1)
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]string{"username": "TestUser1", "password": "NotLongPassword"}

	resp := s.do(http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = s.do(http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "abc", "password": "NotLongPassword"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = s.do(http.MethodPost, "/auth/register", "", map[string]string{"username": "TestUser2", "password": strings.Repeat("😀", 32)})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.login("TestUser1", "NotLongPassword")

	tests := []struct {
		username string
		password string
		status   int
	}{
		{"login123", "password123", http.StatusUnauthorized},
		{"TestUser1", "WrongPassword", http.StatusUnauthorized},
		{"123", "123", http.StatusUnprocessableEntity},
		{"", "", http.StatusUnprocessableEntity},
		{"TestUser1", "NotLongPassword", http.StatusOK},
	}
	for _, tt := range tests {
		resp := s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": tt.username, "password": tt.password})
		assert.Equal(t, tt.status, resp.Code, "login %q/%q", tt.username, tt.password)
	}
}

func TestCreateSessionAuthentication(t *testing.T) {
	s := newTestServer(t)
	s.login("TestUser1", "NotLongPassword")

	expired, _, err := s.creds.IssueToken(auth.Claims{Username: "TestUser1"}, -time.Minute)
	require.NoError(t, err)
	unknown, _, err := s.creds.IssueToken(auth.Claims{Username: "InvalidLogin"}, time.Hour)
	require.NoError(t, err)
	valid, _, err := s.creds.IssueToken(auth.Claims{Username: "TestUser1"}, time.Hour)
	require.NoError(t, err)

	tests := map[string]struct {
		token  string
		status int
	}{
		"no token":     {"", http.StatusUnauthorized},
		"garbage":      {"123123", http.StatusUnauthorized},
		"expired":      {expired, http.StatusUnauthorized},
		"unknown user": {unknown, http.StatusUnauthorized},
		"valid":        {valid, http.StatusOK},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			resp := s.do(http.MethodPost, "/chat/session", tt.token, nil)
			assert.Equal(t, tt.status, resp.Code)
		})
	}
}

func TestSendMessageValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login("TestUser1", "NotLongPassword")
	sessionID := s.newSession(token)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"nulls", map[string]any{"session_id": sessionID, "sender_type": nil, "text": nil}, http.StatusUnprocessableEntity},
		{"unknown sender no text", map[string]any{"session_id": sessionID, "sender_type": "other", "text": nil}, http.StatusUnprocessableEntity},
		{"unknown sender", map[string]any{"session_id": sessionID, "sender_type": "other", "text": "Message"}, http.StatusUnprocessableEntity},
		{"missing session id", map[string]any{"sender_type": "user", "text": "Привет"}, http.StatusUnprocessableEntity},
		{"unknown session", map[string]any{"session_id": uuid.NewString(), "sender_type": "user", "text": "Привет"}, http.StatusNotFound},
		{"user", map[string]any{"session_id": sessionID, "sender_type": "user", "text": "Привет"}, http.StatusCreated},
		{"bot", map[string]any{"session_id": sessionID, "sender_type": "bot", "text": "Привет"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(http.MethodPost, "/chat/message", token, tt.body)
			assert.Equal(t, tt.status, resp.Code, resp.Body.String())
		})
	}
}

func TestOtherUsersSessionIsForbidden(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("TestUser1", "NotLongPassword")
	intruder := s.login("TestUser2", "AnotherPassword")
	sessionID := s.newSession(owner)

	resp := s.do(http.MethodPost, "/chat/message", owner, map[string]string{
		"session_id": sessionID, "sender_type": "user", "text": "Привет",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = s.do(http.MethodGet, "/chat/history/"+sessionID, intruder, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = s.do(http.MethodDelete, "/chat/history/"+sessionID, intruder, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = s.do(http.MethodPost, "/chat/message", intruder, map[string]string{
		"session_id": sessionID, "sender_type": "user", "text": "Привет",
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = s.do(http.MethodGet, "/chat/history/"+uuid.NewString(), intruder, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	assert.Len(t, s.history(owner, sessionID), 2)
}

func TestListSessions(t *testing.T) {
	s := newTestServer(t)
	token := s.login("TestUser1", "NotLongPassword")
	s.newSession(token)
	s.newSession(token)

	resp := s.do(http.MethodGet, "/chat/sessions", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var sessions []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sessions))
	assert.Len(t, sessions, 2)
}
