package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vresta/chatbot/internal/apperr"
	"github.com/vresta/chatbot/internal/models"
)

const userKey = "user"

// IdentityResolver maps a bearer token to a user.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

type AuthMiddleware struct {
	resolver IdentityResolver
	logger   *zap.Logger
}

func NewAuthMiddleware(resolver IdentityResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, logger: logger}
}

// AuthMiddleware is a middleware to authenticate requests. Every failure,
// including a token whose user no longer exists, gets the same 401.
func (m *AuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		user, err := m.resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if apperr.KindOf(err) == apperr.Internal {
				m.logger.Error("failed to resolve identity", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			m.logger.Debug("rejected bearer token", zap.String("client_ip", c.ClientIP()), zap.Error(err))
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
