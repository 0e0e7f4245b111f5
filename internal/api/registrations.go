// internal/api/registrations.go
// Registration Ledger & Team Graph handlers, per spec.md §4.2/§4.8/§6.

package api

import (
	"net/http"

	"eventengine/internal/apierr"
	"eventengine/internal/services"
	"eventengine/internal/utils"

	"github.com/gin-gonic/gin"
)

func HandleRegisterIndividual(events *services.EventService, regs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Email string `json:"email"`
		}
		_ = c.ShouldBindJSON(&body)
		if body.Email != "" {
			if err := utils.ValidateEmail(body.Email); err != nil {
				apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
				return
			}
		}

		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		reg, err := regs.RegisterIndividual(c.Request.Context(), event, uid, body.Email, userCollege(c), c.Query("referral_code"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusCreated, reg)
	}
}

func HandleGetMyRegistration(events *services.EventService, regs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		reg, err := regs.GetByUser(c.Request.Context(), event.ID, uid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, reg)
	}
}

func HandleAdminListRegistrations(events *services.EventService, regs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		list, err := regs.ListByEvent(c.Request.Context(), event.ID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"registrations": list})
	}
}

// --- teams ---

func HandleCreateTeam(events *services.EventService, teams *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			TeamName string `json:"team_name"`
			Email    string `json:"email"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		if err := utils.ValidateEmail(body.Email); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		team, err := teams.CreateTeam(c.Request.Context(), event, uid, body.Email, userCollege(c), body.TeamName)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusCreated, team)
	}
}

func HandleJoinTeam(events *services.EventService, teams *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			TeamCode string `json:"team_code"`
			Name     string `json:"name"`
			Email    string `json:"email"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		if err := utils.ValidateEmail(body.Email); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		team, err := teams.JoinTeam(c.Request.Context(), event, uid, body.Name, body.Email, userCollege(c), body.TeamCode)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, team)
	}
}

func HandleGetMyTeam(events *services.EventService, teams *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		team, err := teams.GetMyTeam(c.Request.Context(), event, uid)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		members, err := teams.ListMembers(c.Request.Context(), team.ID)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"team": team, "members": members})
	}
}

func HandleInviteToTeam(events *services.EventService, teams *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			UserID  int    `json:"user_id"`
			Email   string `json:"email"`
			College string `json:"college"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		if err := utils.ValidateEmail(body.Email); err != nil {
			apierr.Write(c, apierr.New(apierr.BadInput, err.Error()))
			return
		}
		uid, err := userID(c)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}
		invite, err := teams.InviteToTeam(c.Request.Context(), event, uid, body.UserID, body.Email, body.College)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		c.JSON(http.StatusCreated, invite)
	}
}
