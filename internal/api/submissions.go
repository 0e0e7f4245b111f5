// internal/api/submissions.go
// Submission Vault handlers, per spec.md §4.6/§6.

package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

const maxSubmissionUpload = 64 << 20 // hard ceiling before a round's own max_file_size_mb is checked

func submissionEntity(c *gin.Context) (models.EntityType, int, error) {
	uid, err := userID(c)
	if err != nil {
		return "", 0, err
	}
	// Team submissions are addressed by team id via ?team_id=; absent that,
	// the submission belongs to the calling user.
	if teamID := c.Query("team_id"); teamID != "" {
		id, convErr := strconv.Atoi(teamID)
		if convErr != nil {
			return "", 0, apierr.New(apierr.BadInput, "team_id must be an integer")
		}
		return models.EntityTeam, id, nil
	}
	return models.EntityUser, uid, nil
}

func HandleGetSubmission(submissions *services.SubmissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		entityType, entityID, err := submissionEntity(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		submission, err := submissions.Get(c.Request.Context(), rid, entityType, entityID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, submission)
	}
}

func HandleUpsertSubmission(events *services.EventService, rounds *services.RoundService, submissions *services.SubmissionService) gin.HandlerFunc {
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
		entityType, entityID, err := submissionEntity(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}

		if linkURL := c.PostForm("link_url"); linkURL != "" {
			submission, err := submissions.SubmitLink(c.Request.Context(), round, services.SubmitLinkInput{
				EntityType:   entityType,
				EntityID:     entityID,
				LinkURL:      linkURL,
				CallerUserID: uid,
			})
			if err != nil {
				apierr.Write(c, err)
				return
			}
			c.JSON(http.StatusOK, submission)
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			apierr.Write(c, apierr.New(apierr.BadFile, "a file or link_url is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxSubmissionUpload+1))
		if err != nil {
			apierr.Write(c, apierr.New(apierr.BadFile, "could not read upload"))
			return
		}
		if int64(len(data)) > maxSubmissionUpload {
			apierr.Write(c, apierr.New(apierr.BadFile, "upload exceeds the server's hard size ceiling"))
			return
		}

		submission, err := submissions.SubmitFile(c.Request.Context(), round, services.SubmitFileInput{
			EntityType:   entityType,
			EntityID:     entityID,
			FileName:     header.Filename,
			SizeBytes:    int64(len(data)),
			MimeType:     header.Header.Get("Content-Type"),
			CallerUserID: uid,
			Data:         data,
			EventSlug:    event.Slug,
		})
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, submission)
	}
}

// HandleDeleteSubmission removes a submission, refused whenever any lock
// reason (including an admin lock) applies.
func HandleDeleteSubmission(rounds *services.RoundService, submissions *services.SubmissionService, audit *services.AuditService) gin.HandlerFunc {
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
		entityType, entityID, err := submissionEntity(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		if err := submissions.Delete(c.Request.Context(), round, entityType, entityID, uid); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "delete_submission", models.LogMeta{
			"round_id": rid, "entity_type": entityType, "entity_id": entityID,
		})
		c.Status(http.StatusNoContent)
	}
}

// HandleAdminOverrideSubmission implements update_round_submission_as_admin:
// ignores lock reason entirely and may switch variant.
func HandleAdminOverrideSubmission(rounds *services.RoundService, submissions *services.SubmissionService, audit *services.AuditService) gin.HandlerFunc {
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
			EntityType models.EntityType `json:"entity_type"`
			EntityID   int               `json:"entity_id"`
			LinkURL    *string           `json:"link_url"`
			FileURL    *string           `json:"file_url"`
			FileName   *string           `json:"file_name"`
			SizeBytes  *int64            `json:"size_bytes"`
			MimeType   *string           `json:"mime_type"`
			Notes      *string           `json:"notes"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}

		adminID, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}

		submission, err := submissions.AdminOverride(c.Request.Context(), round, services.AdminOverrideInput{
			EntityType: body.EntityType,
			EntityID:   body.EntityID,
			LinkURL:    body.LinkURL,
			FileURL:    body.FileURL,
			FileName:   body.FileName,
			SizeBytes:  body.SizeBytes,
			MimeType:   body.MimeType,
			Notes:      body.Notes,
			AdminID:    adminID,
		})
		if err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "admin_override_submission", models.LogMeta{
			"round_id": rid, "entity_type": body.EntityType, "entity_id": body.EntityID,
		})
		c.JSON(http.StatusOK, submission)
	}
}

// HandlePresignUpload returns a presigned upload handle for a file that has
// not been uploaded yet, per spec.md §4.6's presign operation.
func HandlePresignUpload(events *services.EventService, rounds *services.RoundService, submissions *services.SubmissionService) gin.HandlerFunc {
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
		entityType, entityID, err := submissionEntity(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}

		var body struct {
			FileName  string `json:"file_name"`
			SizeBytes int64  `json:"size_bytes"`
			MimeType  string `json:"mime_type"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}

		upload, err := submissions.Presign(c.Request.Context(), round, services.PresignedUploadInput{
			EntityType: entityType,
			EntityID:   entityID,
			FileName:   body.FileName,
			SizeBytes:  body.SizeBytes,
			MimeType:   body.MimeType,
			EventSlug:  event.Slug,
		})
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, upload)
	}
}

// HandlePresignSubmission returns a time-limited download URL for an
// already-stored submission file.
func HandlePresignSubmission(submissions *services.SubmissionService, store services.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		entityType, entityID, err := submissionEntity(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		submission, err := submissions.Get(c.Request.Context(), rid, entityType, entityID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		if submission.FileURL == nil {
			apierr.Write(c, apierr.New(apierr.BadFile, "submission has no stored file"))
			return
		}
		url, err := store.PresignGet(c.Request.Context(), *submission.FileURL, 15*time.Minute)
		if err != nil {
			apierr.Write(c, apierr.New(apierr.Internal, "could not presign download"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

func HandleListRoundSubmissions(submissions *services.SubmissionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		list, err := submissions.ListByRound(c.Request.Context(), rid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"submissions": list})
	}
}
