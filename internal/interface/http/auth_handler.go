package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/idol-catalog/internal/application"
	"github.com/oksasatya/idol-catalog/internal/domain"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

type AuthHandler struct {
	Auth       *application.AuthService
	Cookies    *helpers.Manager
	Logger     *logrus.Logger
	SuccessURL string
}

func NewAuthHandler(auth *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger, successURL string) *AuthHandler {
	if successURL == "" {
		successURL = "/"
	}
	return &AuthHandler{Auth: auth, Cookies: cookies, Logger: logger, SuccessURL: successURL}
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Return   string `form:"return"`
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	_, failed := c.GetQuery("error")
	_, loggedOut := c.GetQuery("logout")
	htmlOK(c, "login", pageData{
		Title:     "Login",
		Error:     failed,
		LoggedOut: loggedOut,
		Return:    localPath(c.Query("return")),
	})
}

// Login verifies the form credentials and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusSeeOther, "/login?error")
		return
	}
	p, sess, err := h.Auth.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			helpers.LogError(h.Logger, "login failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		}
		target := "/login?error"
		if ret := localPath(form.Return); ret != "" {
			target += "&return=" + url.QueryEscape(ret)
		}
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{"user_id": p.UserID, "username": p.Username}).Info("user logged in")
	}
	target := h.SuccessURL
	if ret := localPath(form.Return); ret != "" {
		target = ret
	}
	c.Redirect(http.StatusSeeOther, target)
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := h.Cookies.Session(c); token != "" {
		if err := h.Auth.Logout(c.Request.Context(), token); err != nil {
			helpers.LogError(h.Logger, "logout failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		}
	}
	h.Cookies.Clear(c)
	c.Redirect(http.StatusSeeOther, "/login?logout")
}

// localPath keeps only same-site absolute paths.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	return p
}
