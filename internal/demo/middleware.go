// Package demo keeps a server showing generated demo data read-only.
package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware blocks write operations in demo mode.
// Read-only operations (GET) are always allowed.
type Middleware struct {
	enabled bool
	allowed []string
}

// NewMiddleware creates a demo mode middleware. allowedPaths lists path
// prefixes that accept writes anyway because they do not change the
// reading state.
func NewMiddleware(enabled bool, allowedPaths ...string) *Middleware {
	return &Middleware{enabled: enabled, allowed: allowedPaths}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "This action is disabled in demo mode",
			"code":      "demo_mode",
			"demo_mode": true,
		})
	}
}

func (m *Middleware) isAllowedPath(path string) bool {
	for _, allowed := range m.allowed {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}
