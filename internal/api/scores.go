// internal/api/scores.go
// Score Store handlers, per spec.md §4.5/§6.

package api

import (
	"io"
	"net/http"
	"strconv"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

const maxScoreImportUpload = 10 << 20

func HandleSaveScore(rounds *services.RoundService, scores *services.ScoreService, audit *services.AuditService) gin.HandlerFunc {
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
			EntityType models.EntityType     `json:"entity_type"`
			EntityID   int                   `json:"entity_id"`
			Marks      models.CriteriaScores `json:"marks"`
			IsPresent  bool                  `json:"is_present"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}

		adminID, _ := userID(c)
		score, err := scores.Save(c.Request.Context(), round, services.SaveScoreInput{
			EntityType: body.EntityType,
			EntityID:   body.EntityID,
			Marks:      body.Marks,
			IsPresent:  body.IsPresent,
			MarkedBy:   &adminID,
		})
		if err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "save_score", models.LogMeta{
			"round_id": rid, "entity_type": body.EntityType, "entity_id": body.EntityID,
		})
		c.JSON(http.StatusOK, score)
	}
}

func HandleListRoundScores(scores *services.ScoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		list, err := scores.ListByRound(c.Request.Context(), rid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"scores": list})
	}
}

// HandleImportScores parses an uploaded XLSX score sheet. Pass
// ?preview=true to bucket rows without writing anything.
func HandleImportScores(events *services.EventService, rounds *services.RoundService, scores *services.ScoreService, audit *services.AuditService) gin.HandlerFunc {
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
		event, err := events.GetByID(c.Request.Context(), round.EventID)
		if err != nil {
			apierr.Write(c, err)
			return
		}

		file, _, err := c.Request.FormFile("file")
		if err != nil {
			apierr.Write(c, apierr.New(apierr.BadFile, "a spreadsheet file is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxScoreImportUpload+1))
		if err != nil {
			apierr.Write(c, apierr.New(apierr.BadFile, "could not read upload"))
			return
		}
		if int64(len(data)) > maxScoreImportUpload {
			apierr.Write(c, apierr.New(apierr.BadFile, "upload exceeds the server's size ceiling"))
			return
		}

		preview, _ := strconv.ParseBool(c.Query("preview"))
		adminID, _ := userID(c)
		result, err := scores.ImportScores(c.Request.Context(), event, round, data, preview, &adminID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "import_scores", models.LogMeta{
			"round_id": rid, "preview": preview, "rows": len(result.Rows), "written": result.Written,
		})
		c.JSON(http.StatusOK, result)
	}
}

func HandleGetMyScore(rounds *services.RoundService, scores *services.ScoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		score, err := scores.Get(c.Request.Context(), rid, models.EntityUser, uid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, score)
	}
}
