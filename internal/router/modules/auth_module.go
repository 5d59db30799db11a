package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/idol-catalog/internal/container"
	handlers "github.com/oksasatya/idol-catalog/internal/interface/http"
	"github.com/oksasatya/idol-catalog/internal/interface/middleware"
)

// AuthModule serves the login form and the logout action.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP("login"), nil, container.GetLogger()) // 10 req/min per IP

	rg.GET("/login", m.Handler.LoginPage)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/logout", m.Handler.Logout)
}
