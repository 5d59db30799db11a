package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/idol-catalog/internal/application"
	"github.com/oksasatya/idol-catalog/internal/infrastructure/memory"
	"github.com/oksasatya/idol-catalog/internal/interface/middleware"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

func newSiteRouter(t *testing.T) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := memory.NewStore()
	_, err := application.NewSeeder(store.Idols(), store.Users(), nil, nil).Run(context.Background())
	require.NoError(t, err)

	auth := application.NewAuthService(store.Users(), rdb, helpers.NewSessionTokens("secret", time.Hour), helpers.NopLogger())
	cookies := helpers.NewCookie("session", "", false)
	ah := NewAuthHandler(auth, cookies, helpers.NopLogger(), "/")
	ph := NewPageHandler()

	r := gin.New()
	r.Use(middleware.LoadSession(auth, cookies, helpers.NopLogger()))
	r.Use(middleware.Authorize(middleware.DefaultAccessRules(), "/login"))
	r.GET("/login", ah.LoginPage)
	r.POST("/login", ah.Login)
	r.POST("/logout", ah.Logout)
	r.GET("/", ph.Home)
	r.GET("/design", ph.Design)
	r.GET("/orders", ph.Orders)
	return r
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getHTML(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in %v", w.Header().Values("Set-Cookie"))
	return nil
}

func TestAuthHandler_LoginPage(t *testing.T) {
	r := newSiteRouter(t)

	w := getHTML(r, "/login")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="username"`)
	assert.NotContains(t, w.Body.String(), "Unable to login")

	assert.Contains(t, getHTML(r, "/login?error").Body.String(), "Unable to login")
	assert.Contains(t, getHTML(r, "/login?logout").Body.String(), "logged out")
	assert.Contains(t, getHTML(r, "/login?return=%2Fdesign").Body.String(), `value="/design"`)
	assert.NotContains(t, getHTML(r, "/login?return=%2F%2Fevil.test").Body.String(), "evil.test")
}

func TestAuthHandler_LoginFlow(t *testing.T) {
	r := newSiteRouter(t)

	w := getHTML(r, "/design")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?return=%2Fdesign", w.Header().Get("Location"))

	w = postForm(r, "/login", url.Values{"username": {"karina"}, "password": {"nope"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?error", w.Header().Get("Location"))

	w = postForm(r, "/login", url.Values{"username": {"ghost"}, "password": {"1234"}})
	assert.Equal(t, "/login?error", w.Header().Get("Location"))

	w = postForm(r, "/login", url.Values{"username": {"karina"}})
	assert.Equal(t, "/login?error", w.Header().Get("Location"))

	w = postForm(r, "/login", url.Values{"username": {"karina"}, "password": {"1234"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)

	w = getHTML(r, "/design", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "karina")
	assert.Equal(t, http.StatusOK, getHTML(r, "/orders", cookie).Code)

	w = postForm(r, "/logout", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?logout", w.Header().Get("Location"))

	w = getHTML(r, "/orders", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login"))
}

func TestAuthHandler_LoginHonoursReturnPath(t *testing.T) {
	r := newSiteRouter(t)

	w := postForm(r, "/login", url.Values{"username": {"winter"}, "password": {"1234"}, "return": {"/orders"}})
	assert.Equal(t, "/orders", w.Header().Get("Location"))

	w = postForm(r, "/login", url.Values{"username": {"winter"}, "password": {"1234"}, "return": {"https://evil.test/"}})
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = postForm(r, "/login", url.Values{"username": {"winter"}, "password": {"bad"}, "return": {"/orders"}})
	assert.Equal(t, "/login?error&return=%2Forders", w.Header().Get("Location"))
}

func TestPageHandler_HomeIsPublic(t *testing.T) {
	r := newSiteRouter(t)
	w := getHTML(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Idol Catalog")
	assert.Contains(t, w.Body.String(), `href="/login"`)
}
