// internal/api/badges.go
// Badge handlers, per spec.md §3/§6.

package api

import (
	"net/http"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

func HandleAwardBadge(events *services.EventService, badges *services.BadgeService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		var b models.Badge
		if err := c.ShouldBindJSON(&b); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		b.EventID = event.ID
		if err := badges.Award(c.Request.Context(), &b); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, event.Slug, &event.ID, "award_badge", models.LogMeta{"title": b.Title})
		c.JSON(http.StatusCreated, b)
	}
}

func HandleListEventBadges(events *services.EventService, badges *services.BadgeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		list, err := badges.ListByEvent(c.Request.Context(), event.ID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"badges": list})
	}
}

func HandleListMyBadges(badges *services.BadgeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		list, err := badges.ListForUser(c.Request.Context(), uid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"badges": list})
	}
}

func HandleRevokeBadge(badges *services.BadgeService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramInt(c, "badge_id")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		if err := badges.Revoke(c.Request.Context(), id); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), nil, "revoke_badge", models.LogMeta{"badge_id": id})
		c.Status(http.StatusNoContent)
	}
}
