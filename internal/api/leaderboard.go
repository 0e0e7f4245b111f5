// internal/api/leaderboard.go
// Leaderboard Engine handlers, per spec.md §4.8/§6.

package api

import (
	"net/http"
	"strconv"
	"strings"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/services"

	"github.com/gin-gonic/gin"
)

func parseRoundIDs(raw string) []int {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		if id, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func HandleLeaderboard(events *services.EventService, leaderboard *services.LeaderboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := events.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Write(c, err)
			return
		}

		filter := services.LeaderboardFilter{
			Department: c.Query("department"),
			Gender:     c.Query("gender"),
			Batch:      c.Query("batch"),
			Status:     models.RegistrationStatus(c.Query("status")),
			Search:     c.Query("search"),
			RoundIDs:   parseRoundIDs(c.Query("round_ids")),
			Sort:       services.ParseLeaderboardSort(c.Query("sort")),
			Page:       services.ParsePositiveInt(c.Query("page"), 1),
			PageSize:   services.ParsePositiveInt(c.Query("page_size"), 25),
		}

		page, err := leaderboard.Rank(c.Request.Context(), event, filter)
		if err != nil {
			apierr.Write(c, err)
			return
		}

		c.Header("X-Total-Count", strconv.Itoa(page.TotalCount))
		c.Header("X-Page", strconv.Itoa(page.Page))
		c.Header("X-Page-Size", strconv.Itoa(page.PageSize))
		c.JSON(http.StatusOK, gin.H{"leaderboard": page.Rows})
	}
}
