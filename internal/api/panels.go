// internal/api/panels.go
// Panel Coordinator handlers, per spec.md §4.4/§6.

package api

import (
	"net/http"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

func HandleCreatePanel(rounds *services.RoundService, panels *services.PanelService, audit *services.AuditService) gin.HandlerFunc {
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
		var p models.Panel
		if err := c.ShouldBindJSON(&p); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		if err := panels.CreatePanel(c.Request.Context(), round, &p); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "create_panel", models.LogMeta{"round_id": rid})
		c.JSON(http.StatusCreated, p)
	}
}

func HandleListPanels(panels *services.PanelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		list, err := panels.ListPanels(c.Request.Context(), rid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"panels": list})
	}
}

func HandleAddPanelMember(panels *services.PanelService, audit *services.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		panelID, err := paramInt(c, "panel_id")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		var body struct {
			AdminID int `json:"admin_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		if err := panels.AddMember(c.Request.Context(), panelID, body.AdminID); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), nil, "add_panel_member", models.LogMeta{"panel_id": panelID, "admin_id": body.AdminID})
		c.Status(http.StatusCreated)
	}
}

// HandleAutoAssignPanels distributes every active registration across a
// round's panels. Scores are computed server-side from the Score Store
// rather than trusted from the request body.
func HandleAutoAssignPanels(events *services.EventService, rounds *services.RoundService, panels *services.PanelService, audit *services.AuditService) gin.HandlerFunc {
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

		var body struct {
			IncludeUnassignedOnly bool `json:"include_unassigned_only"`
		}
		_ = c.ShouldBindJSON(&body)

		if err := panels.AutoAssign(c.Request.Context(), event, round, body.IncludeUnassignedOnly); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "auto_assign_panels", models.LogMeta{
			"round_id": rid, "include_unassigned_only": body.IncludeUnassignedOnly,
		})
		c.Status(http.StatusOK)
	}
}

// HandleUpdatePanels replaces a round's whole panel set.
func HandleUpdatePanels(rounds *services.RoundService, panels *services.PanelService, audit *services.AuditService) gin.HandlerFunc {
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
			Panels []services.UpdatePanelsInput `json:"panels"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}

		result, err := panels.UpdatePanels(c.Request.Context(), round, body.Panels, nil)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "update_panels", models.LogMeta{"round_id": rid, "panel_count": len(result)})
		c.JSON(http.StatusOK, gin.H{"panels": result})
	}
}

// HandleSetAssignments overrides one or more entities' panel assignment for
// a round, including clearing an assignment by sending a null panel_id.
func HandleSetAssignments(rounds *services.RoundService, panels *services.PanelService, audit *services.AuditService) gin.HandlerFunc {
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
			Assignments []struct {
				EntityType models.EntityType `json:"entity_type"`
				EntityID   int               `json:"entity_id"`
				PanelID    *int              `json:"panel_id"`
			} `json:"assignments"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}

		overrides := make([]services.AssignmentOverride, 0, len(body.Assignments))
		for _, a := range body.Assignments {
			overrides = append(overrides, services.AssignmentOverride{
				EntityType: a.EntityType,
				EntityID:   a.EntityID,
				PanelID:    a.PanelID,
			})
		}

		if err := panels.SetAssignments(c.Request.Context(), round, overrides); err != nil {
			apierr.Write(c, err)
			return
		}
		logAdminAction(c, audit, c.Param("slug"), &round.EventID, "set_assignments", models.LogMeta{"round_id": rid, "count": len(overrides)})
		c.Status(http.StatusOK)
	}
}

func HandleGetAssignment(panels *services.PanelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, err := paramInt(c, "rid")
		if err != nil {
			apierr.Write(c, err)
			return
		}
		entityType := models.EntityType(c.Query("entity_type"))
		entityID := queryIntDefault(c, "entity_id", 0)
		assignment, err := panels.GetAssignment(c.Request.Context(), rid, entityType, entityID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, assignment)
	}
}
