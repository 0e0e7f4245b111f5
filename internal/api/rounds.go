// internal/api/rounds.go
// Round Registry handlers, per spec.md §4.3/§6.

package api

import (
	"net/http"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

func HandleCreateRound(events *services.EventService, rounds *services.RoundService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var round models.Round
		if err := c.ShouldBindJSON(&round); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		if err := rounds.Create(c.Request.Context(), event, &round); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, event.Slug, &event.ID, "create_round", models.LogMeta{"round_no": round.RoundNo})
		c.JSON(http.StatusCreated, round)
	}
}

func HandleUpdateRound(rounds *services.RoundService, audit *services.AuditService) gin.HandlerFunc {
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
		var body struct {
			models.Round
			NewRoundNo int `json:"new_round_no"`
		}
		body.Round = *round
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		updated := body.Round
		newRoundNo := body.NewRoundNo
		if newRoundNo == 0 {
			newRoundNo = round.RoundNo
		}
		if err := rounds.Update(c.Request.Context(), &updated, newRoundNo); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &updated.EventID, "update_round", models.LogMeta{"round_id": rid})
		c.JSON(http.StatusOK, updated)
	}
}

func HandleDeleteRound(rounds *services.RoundService, audit *services.AuditService) gin.HandlerFunc {
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
		if err := rounds.Delete(c.Request.Context(), round); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "delete_round", models.LogMeta{"round_id": rid})
		c.Status(http.StatusNoContent)
	}
}

func HandleGetRound(rounds *services.RoundService) gin.HandlerFunc {
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
		c.JSON(http.StatusOK, round)
	}
}
