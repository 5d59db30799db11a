package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/idol-catalog/internal/application"
	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

const (
	CtxPrincipalKey = "principal"
	CtxUserIDKey    = "userID"
)

// SessionResolver turns a session token into the signed-in principal.
type SessionResolver interface {
	Session(ctx context.Context, token string) (*application.Principal, error)
}

// LoadSession resolves the session cookie, if any, and stores the principal
// in the Gin context. It never rejects a request; the access rules decide.
func LoadSession(sessions SessionResolver, cookies *helpers.Manager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookies.Session(c)
		if token == "" {
			c.Next()
			return
		}
		p, err := sessions.Session(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(CtxPrincipalKey, p)
			c.Set(CtxUserIDKey, p.UserID)
		case errors.Is(err, domain.ErrUnauthorized):
			cookies.Clear(c)
		default:
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("session lookup failed")
			}
		}
		c.Next()
	}
}

// CurrentPrincipal returns the signed-in principal, if any.
func CurrentPrincipal(c *gin.Context) (*application.Principal, bool) {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*application.Principal)
	return p, ok && p != nil
}
