// internal/api/events.go
// Event identity & lifecycle handlers, per spec.md §4.1/§6.

package api

import (
	"net/http"

	"eventengine/internal/apierr"
	"eventengine/internal/middleware"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

// HandleListEvents serves the public event listing, always filtered to
// visible events; admins list every event through HandleAdminListEvents.
func HandleListEvents(svc *services.EventService, onlyOngoing bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repositories.EventListFilter{
			Page:   queryIntDefault(c, "page", 1),
			Limit:  queryIntDefault(c, "limit", 50),
			Public: true,
			Search: c.Query("search"),
		}
		if onlyOngoing {
			filter.Status = string(models.EventOpen)
		}
		events, total, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "total": total})
	}
}

func HandleGetEvent(svc *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		if !event.Visible {
			apierr.Write(c, apierr.New(apierr.NotFound, "event not found"))
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func HandleListEventRounds(events *services.EventService, rounds *services.RoundService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		list, err := rounds.ListByEvent(c.Request.Context(), event.ID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rounds": list})
	}
}

// --- admin ---

func HandleAdminListEvents(svc *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repositories.EventListFilter{
			Page:  queryIntDefault(c, "page", 1),
			Limit: queryIntDefault(c, "limit", 50),
		}
		events, total, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "total": total})
	}
}

func HandleAdminGetEvent(svc *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func HandleCreateEvent(svc *services.EventService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var e models.Event
		if err := c.ShouldBindJSON(&e); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		if err := svc.Create(c.Request.Context(), &e); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, e.Slug, &e.ID, "create_event", nil)
		c.JSON(http.StatusCreated, e)
	}
}

func HandleUpdateEvent(svc *services.EventService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		if err := c.ShouldBindJSON(event); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		if err := svc.Update(c.Request.Context(), event); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, event.Slug, &event.ID, "update_event", nil)
		c.JSON(http.StatusOK, event)
	}
}

func HandleSetRegistrationOpen(svc *services.EventService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Open bool `json:"open"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		event, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event.RegistrationOpen = body.Open
		if err := svc.Update(c.Request.Context(), event); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, event.Slug, &event.ID, "set_registration_open", models.LogMeta{"open": body.Open})
		c.JSON(http.StatusOK, event)
	}
}

func HandleSetVisibility(svc *services.EventService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Visible bool `json:"visible"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		event, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event.Visible = body.Visible
		if err := svc.Update(c.Request.Context(), event); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, event.Slug, &event.ID, "set_visibility", models.LogMeta{"visible": body.Visible})
		c.JSON(http.StatusOK, event)
	}
}

func HandleSetStatus(svc *services.EventService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Status models.OpenStatus `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		event, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event.Status = body.Status
		if err := svc.Update(c.Request.Context(), event); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, event.Slug, &event.ID, "set_status", models.LogMeta{"status": body.Status})
		c.JSON(http.StatusOK, event)
	}
}

// logAdminAction fire-and-forgets an audit row for the current request;
// audit failures never block the admin response (spec.md §7 propagation
// policy for audit writes).
func logAdminAction(c *gin.Context, audit *services.AuditService, slug string, eventID *int, action string, meta models.LogMeta) {
	adminID, _ := userID(c)
	_ = audit.LogAction(c.Request.Context(), services.LogActionInput{
		EventSlug: slug,
		EventID:   eventID,
		AdminID:   adminID,
		Action:    action,
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		Meta:      meta,
	})
}

// requireAdminEventPolicy is a convenience wrapper used by routes.go to gate
// an admin route on per-event policy membership; the admin role itself is
// checked by the enclosing route group.
func requireAdminEventPolicy() gin.HandlerFunc {
	return middleware.RequireEventPolicy("slug")
}
