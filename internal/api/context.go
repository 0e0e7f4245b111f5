// internal/api/context.go
// Shared request-context helpers for handlers.

package api

import (
	"strconv"

	"eventengine/internal/apierr"

	"github.com/gin-gonic/gin"
)

// userID reads the bearer subject set by middleware.RequireAuth and parses
// it as the integer user id this module's tables key on.
func userID(c *gin.Context) (int, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, apierr.New(apierr.PolicyDenied, "authentication required")
	}
	id, err := strconv.Atoi(raw.(string))
	if err != nil {
		return 0, apierr.New(apierr.PolicyDenied, "malformed subject claim")
	}
	return id, nil
}

// userCollege reads the bearer's college claim, set by
// middleware.RequireAuth/OptionalAuth, used to gate open_for=MIT events.
func userCollege(c *gin.Context) string {
	raw, exists := c.Get("college")
	if !exists {
		return ""
	}
	college, _ := raw.(string)
	return college
}

func paramInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, apierr.New(apierr.BadInput, name+" must be an integer")
	}
	return v, nil
}

func queryIntDefault(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
