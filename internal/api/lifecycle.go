// internal/api/lifecycle.go
// Lifecycle Controller handlers, per spec.md §4.7/§6.

package api

import (
	"fmt"
	"net/http"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

func activeEntityRefs(regs []*models.Registration) ([]services.EntityRef, map[string]int) {
	active := make([]services.EntityRef, 0, len(regs))
	byEntity := make(map[string]int, len(regs))
	for _, r := range regs {
		if r.Status != models.RegistrationActive {
			continue
		}
		active = append(active, services.EntityRef{EntityType: r.EntityType, EntityID: r.EntityID()})
		byEntity[fmt.Sprintf("%s:%d", r.EntityType, r.EntityID())] = r.ID
	}
	return active, byEntity
}

func HandleFreezeRound(events *services.EventService, rounds *services.RoundService, regs *services.RegistrationService, lifecycle *services.LifecycleService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		round, err := rounds.GetByID(c.Request.Context(), rid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		registrations, err := regs.ListByEvent(c.Request.Context(), event.ID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		active, _ := activeEntityRefs(registrations)

		adminID, _ := userID(c)
		snapshotURL, err := lifecycle.FreezeRound(c.Request.Context(), event, round, active, adminID, "", "")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, event.Slug, &event.ID, "freeze_round", models.LogMeta{"round_id": rid, "snapshot_url": snapshotURL})
		c.JSON(http.StatusOK, gin.H{"round": round, "snapshot_url": snapshotURL})
	}
}

func HandleUnfreezeRound(rounds *services.RoundService, lifecycle *services.LifecycleService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		round, err := rounds.GetByID(c.Request.Context(), rid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		if err := lifecycle.Unfreeze(c.Request.Context(), round); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "unfreeze_round", models.LogMeta{"round_id": rid})
		c.JSON(http.StatusOK, round)
	}
}

func HandleShortlist(events *services.EventService, rounds *services.RoundService, regs *services.RegistrationService, lifecycle *services.LifecycleService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		round, err := rounds.GetByID(c.Request.Context(), rid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		registrations, err := regs.ListByEvent(c.Request.Context(), event.ID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		active, byEntity := activeEntityRefs(registrations)

		var body struct {
			EliminateAbsent bool `json:"eliminate_absent"`
		}
		_ = c.ShouldBindJSON(&body)

		adminID, _ := userID(c)
		kept, eliminated, err := lifecycle.Shortlist(c.Request.Context(), event, round, active, byEntity, body.EliminateAbsent, adminID, "", "")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, event.Slug, &event.ID, "shortlist", models.LogMeta{
			"round_id": rid, "kept": len(kept), "eliminated": len(eliminated), "eliminate_absent": body.EliminateAbsent,
		})
		c.JSON(http.StatusOK, gin.H{"kept": kept, "eliminated": eliminated})
	}
}
