package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Manager struct {
	Name   string
	Domain string
	Secure bool
}

func NewCookie(name, domain string, secure bool) *Manager {
	return &Manager{Name: name, Domain: domain, Secure: secure}
}

// SetSession stores the signed session token as an HttpOnly cookie.
func (m *Manager) SetSession(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.Name, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

// Session returns the token carried by the request, if any.
func (m *Manager) Session(c *gin.Context) string {
	v, err := c.Cookie(m.Name)
	if err != nil {
		return ""
	}
	return v
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.Name, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
