package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and private addresses.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowSafeMethods bypasses the limiter for reads, so only mutations count.
func AllowSafeMethods() AllowFunc {
	return func(c *gin.Context) bool {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return true
		}
		return false
	}
}

// AllowAny bypasses when any of fns does.
func AllowAny(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, fn := range fns {
			if fn != nil && fn(c) {
				return true
			}
		}
		return false
	}
}
