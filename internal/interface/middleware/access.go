package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	"github.com/oksasatya/idol-catalog/pkg/response"
)

// AccessRule guards a path prefix. An empty Roles list with PermitAll set lets
// everyone through; otherwise the principal needs one of Roles.
type AccessRule struct {
	Prefix    string
	Roles     []string
	PermitAll bool
}

// Matches reports whether path is Prefix or lies below it.
func (r AccessRule) Matches(path string) bool {
	if r.Prefix == "/" || r.Prefix == "" {
		return true
	}
	p := strings.TrimSuffix(r.Prefix, "/")
	return path == p || strings.HasPrefix(path, p+"/")
}

// DefaultAccessRules protects the design and order pages and leaves the rest
// of the site public.
func DefaultAccessRules() []AccessRule {
	return []AccessRule{
		{Prefix: "/design", Roles: []string{entity.RoleUser}},
		{Prefix: "/orders", Roles: []string{entity.RoleUser}},
		{Prefix: "/", PermitAll: true},
	}
}

// Authorize evaluates rules in order; the first matching rule decides and a
// request no rule matches is denied. Anonymous HTML clients are redirected to
// loginPath, API clients get 401.
func Authorize(rules []AccessRule, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		var rule *AccessRule
		for i := range rules {
			if rules[i].Matches(path) {
				rule = &rules[i]
				break
			}
		}
		if rule != nil && rule.PermitAll {
			c.Next()
			return
		}

		p, ok := CurrentPrincipal(c)
		if !ok {
			if wantsHTML(c.Request) {
				target := loginPath
				if c.Request.Method == http.MethodGet {
					target += "?return=" + url.QueryEscape(c.Request.URL.RequestURI())
				}
				c.Redirect(http.StatusSeeOther, target)
				c.Abort()
				return
			}
			response.Abort(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		if rule == nil {
			response.Abort(c, http.StatusForbidden, "access denied", nil)
			return
		}
		for _, role := range rule.Roles {
			if p.HasRole(role) {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, "access denied", nil)
	}
}

func wantsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
