package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"bace/config"

	"github.com/gin-gonic/gin"
)

var maintenanceAllowed = []string{
	"/admin", "/backoffice", "/api", "/uploads",
	"/images", "/css", "/js", "/styles", "/favicon.ico", "/qrcodes", "/secure",
}

func secretEqual(a, b string) bool {
	return b != "" && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Maintenance serves the coming-soon page with 503 while maintenance mode is
// on. API, admin and asset paths stay reachable, and testers get through with
// the dev secret or basic auth.
func Maintenance(features config.Features, comingSoonPage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !features.MaintenanceEnabled {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range maintenanceAllowed {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		if secretEqual(c.Query("dev"), features.DevSecret) || secretEqual(c.GetHeader("X-Dev-Secret"), features.DevSecret) {
			c.Next()
			return
		}
		if user, pass, ok := c.Request.BasicAuth(); ok &&
			secretEqual(user, features.DevUser) && secretEqual(pass, features.DevPass) {
			c.Next()
			return
		}

		c.Header("Retry-After", "3600")
		if page, err := os.ReadFile(comingSoonPage); err == nil {
			c.Data(http.StatusServiceUnavailable, "text/html; charset=utf-8", page)
		} else {
			c.String(http.StatusServiceUnavailable, "Coming soon")
		}
		c.Abort()
	}
}
