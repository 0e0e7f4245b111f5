// internal/api/routes.go
// Central route registration for all API endpoints, per spec.md §6.
//
// Participant routes mount under cfg.Server.RoutePrefix + "/events" (public
// reads are unauthenticated, the rest require a bearer token); admin routes
// mount under RoutePrefix + "/admin/events" behind role + per-event policy
// checks.

package api

import (
	"eventengine/internal/config"
	"eventengine/internal/middleware"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterEventRoutes registers the participant-facing surface.
func RegisterEventRoutes(router *gin.RouterGroup, svc *services.Container) {
	events := router.Group("/events")
	{
		events.GET("/ongoing", HandleListEvents(svc.Events, true))
		events.GET("/all", HandleListEvents(svc.Events, false))
		events.GET("/:slug", HandleGetEvent(svc.Events))
		events.GET("/:slug/rounds", HandleListEventRounds(svc.Events, svc.Rounds))
		events.GET("/:slug/leaderboard", HandleLeaderboard(svc.Events, svc.Leaderboard))
		events.GET("/:slug/badges", HandleListEventBadges(svc.Events, svc.Badges))

		auth := events.Group("")
		auth.Use(middleware.RequireAuth(svc.Auth))
		{
			auth.POST("/:slug/register", HandleRegisterIndividual(svc.Events, svc.Registrations))
			auth.GET("/:slug/me", HandleGetMyRegistration(svc.Events, svc.Registrations))

			auth.POST("/:slug/teams/create", HandleCreateTeam(svc.Events, svc.Teams))
			auth.POST("/:slug/teams/join", HandleJoinTeam(svc.Events, svc.Teams))
			auth.GET("/:slug/teams/mine", HandleGetMyTeam(svc.Events, svc.Teams))
			auth.POST("/:slug/teams/invite", HandleInviteToTeam(svc.Events, svc.Teams))

			auth.GET("/:slug/rounds/:rid/submission", HandleGetSubmission(svc.Submissions))
			auth.PUT("/:slug/rounds/:rid/submission", HandleUpsertSubmission(svc.Events, svc.Rounds, svc.Submissions))
			auth.DELETE("/:slug/rounds/:rid/submission", HandleDeleteSubmission(svc.Rounds, svc.Submissions, svc.Audit))
			auth.POST("/:slug/rounds/:rid/submission/presign-upload", HandlePresignUpload(svc.Events, svc.Rounds, svc.Submissions))
			auth.GET("/:slug/rounds/:rid/submission/presign", HandlePresignSubmission(svc.Submissions, svc.Store))
			auth.GET("/:slug/rounds/:rid/score", HandleGetMyScore(svc.Rounds, svc.Scores))

			auth.GET("/me/badges", HandleListMyBadges(svc.Badges))
		}
	}
}

// RegisterAdminEventRoutes registers the admin-governed surface.
func RegisterAdminEventRoutes(router *gin.RouterGroup, svc *services.Container) {
	admin := router.Group("/admin/events")
	admin.Use(middleware.RequireAuth(svc.Auth))
	admin.Use(middleware.RequireRole("admin"))
	{
		admin.GET("", HandleAdminListEvents(svc.Events))
		admin.POST("", HandleCreateEvent(svc.Events, svc.Audit))

		scoped := admin.Group("/:slug")
		scoped.Use(requireAdminEventPolicy())
		{
			scoped.GET("", HandleAdminGetEvent(svc.Events))
			scoped.PUT("", HandleUpdateEvent(svc.Events, svc.Audit))
			scoped.PUT("/registration", HandleSetRegistrationOpen(svc.Events, svc.Audit))
			scoped.PUT("/visibility", HandleSetVisibility(svc.Events, svc.Audit))
			scoped.PUT("/status", HandleSetStatus(svc.Events, svc.Audit))

			scoped.GET("/registrations", HandleAdminListRegistrations(svc.Events, svc.Registrations))

			scoped.POST("/rounds", HandleCreateRound(svc.Events, svc.Rounds, svc.Audit))
			scoped.GET("/rounds/:rid", HandleGetRound(svc.Rounds))
			scoped.PUT("/rounds/:rid", HandleUpdateRound(svc.Rounds, svc.Audit))
			scoped.DELETE("/rounds/:rid", HandleDeleteRound(svc.Rounds, svc.Audit))

			scoped.POST("/rounds/:rid/scores", HandleSaveScore(svc.Rounds, svc.Scores, svc.Audit))
			scoped.GET("/rounds/:rid/scores", HandleListRoundScores(svc.Scores))
			scoped.POST("/rounds/:rid/scores/import", HandleImportScores(svc.Events, svc.Rounds, svc.Scores, svc.Audit))
			scoped.PUT("/rounds/:rid/submission/admin-override", HandleAdminOverrideSubmission(svc.Rounds, svc.Submissions, svc.Audit))

			scoped.GET("/rounds/:rid/submissions", HandleListRoundSubmissions(svc.Submissions))

			scoped.POST("/rounds/:rid/freeze", HandleFreezeRound(svc.Events, svc.Rounds, svc.Registrations, svc.Lifecycle, svc.Audit))
			scoped.POST("/rounds/:rid/unfreeze", HandleUnfreezeRound(svc.Rounds, svc.Lifecycle, svc.Audit))
			scoped.POST("/rounds/:rid/shortlist", HandleShortlist(svc.Events, svc.Rounds, svc.Registrations, svc.Lifecycle, svc.Audit))

			scoped.POST("/rounds/:rid/panels", HandleCreatePanel(svc.Rounds, svc.Panels, svc.Audit))
			scoped.GET("/rounds/:rid/panels", HandleListPanels(svc.Panels))
			scoped.POST("/panels/:panel_id/members", HandleAddPanelMember(svc.Panels, svc.Audit))
			scoped.POST("/rounds/:rid/panels/auto-assign", HandleAutoAssignPanels(svc.Events, svc.Rounds, svc.Panels, svc.Audit))
			scoped.PUT("/rounds/:rid/panels", HandleUpdatePanels(svc.Rounds, svc.Panels, svc.Audit))
			scoped.PUT("/rounds/:rid/panels/assignments", HandleSetAssignments(svc.Rounds, svc.Panels, svc.Audit))
			scoped.GET("/rounds/:rid/panels/assignments", HandleGetAssignment(svc.Panels))

			scoped.POST("/badges", HandleAwardBadge(svc.Events, svc.Badges, svc.Audit))
			scoped.DELETE("/badges/:badge_id", HandleRevokeBadge(svc.Badges, svc.Audit))

			scoped.GET("/logs", HandleListLogs(svc.Audit))
		}
	}
}

// RegisterRoutes mounts every route group under cfg.Server.RoutePrefix.
func RegisterRoutes(router *gin.Engine, svc *services.Container, cfg *config.Config) {
	v1 := router.Group(cfg.Server.RoutePrefix)
	RegisterEventRoutes(v1, svc)
	RegisterAdminEventRoutes(v1, svc)
}
