// internal/api/audit.go
// Audit & Log Sink handlers, per spec.md §4.9/§6.

package api

import (
	"net/http"

	"eventengine/internal/apierr"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

func HandleListLogs(audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := queryIntDefault(c, "page", 1)
		limit := queryIntDefault(c, "limit", 50)
		logs, total, err := audit.ListByEvent(c.Request.Context(), c.Param("slug"), page, limit)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total})
	}
}
