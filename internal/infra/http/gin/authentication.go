package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const principalContextKey = "lendaround.principal"

type principal struct {
	ID    string
	Name  string
	Token string
}

// SessionResolver turns a bearer token into the acting user. The gateway in
// front of this service owns real authentication; here a token resolves to a
// user id or it does not.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (principalID string, name string, ok bool)
}

// StaticSessions resolves tokens from a fixed token-to-user map. Dev and test
// deployments seed it from fixtures.
type StaticSessions map[string]string

func (s StaticSessions) Resolve(ctx context.Context, token string) (string, string, bool) {
	id, ok := s[token]
	return id, id, ok
}

type AuthMiddleware struct {
	Sessions SessionResolver
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Sessions == nil {
		c.Next()
		return
	}
	id, name, ok := m.Sessions.Resolve(c.Request.Context(), token)
	if !ok {
		if m.Logger != nil {
			m.Logger.Debug("unknown session token")
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{ID: id, Name: name, Token: token})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireActor(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
