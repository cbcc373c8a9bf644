package provider

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/dinegate/internal/apikeys"
)

const principalKey = "apiKeyRecord"

// RequireAPIKey authenticates the caller before any business logic runs.
// The key may arrive as a bearer token, a raw Authorization value, or a
// query/form fallback. Missing and invalid keys are both 401; a read-only
// key on a mutating route is the distinct 403.
func RequireAPIKey(registry *apikeys.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := extractKey(c)
		if key == "" {
			fail(c, http.StatusUnauthorized, "missing API key")
			return
		}

		rec, valid := registry.Validate(c.Request.Context(), key)
		if !valid {
			fail(c, http.StatusUnauthorized, "invalid or inactive API key")
			return
		}

		if isWrite(c.Request.Method) && !rec.Permissions.CanWrite() {
			fail(c, http.StatusForbidden, "API key does not permit writes")
			return
		}

		registry.LogUsage(c.Request.Context(), key)
		c.Set(principalKey, rec)
		c.Next()
	}
}

// Principal returns the authenticated key record, if any.
func Principal(c *gin.Context) (*apikeys.Record, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	rec, ok := v.(*apikeys.Record)
	return rec, ok
}

func extractKey(c *gin.Context) string {
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
		return auth
	}
	if k := strings.TrimSpace(c.Query("api_key")); k != "" {
		return k
	}
	return strings.TrimSpace(c.PostForm("api_key"))
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
