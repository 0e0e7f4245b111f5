// internal/services/leaderboard_service.go
// Leaderboard Engine, per spec.md §4.8.
//
// Ranks registrations by their total score over a caller-chosen (or
// defaulted) set of eligible rounds, filtered by entity attributes and
// paginated. Individuals rank by summed normalized_score (comparable across
// rounds with different criteria weights); teams rank by summed raw
// total_score, the same split the Score Store and Lifecycle Controller use.

package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

type LeaderboardService struct {
	repos    *repositories.Container
	identity IdentityDirectory
}

func NewLeaderboardService(repos *repositories.Container, identity IdentityDirectory) *LeaderboardService {
	return &LeaderboardService{repos: repos, identity: identity}
}

// LeaderboardSort enumerates the display orderings spec.md §4.8 names.
type LeaderboardSort string

const (
	SortRank       LeaderboardSort = "rank"
	SortScoreDesc  LeaderboardSort = "score_desc"
	SortScoreAsc   LeaderboardSort = "score_asc"
	SortNameAsc    LeaderboardSort = "name_asc"
	SortNameDesc   LeaderboardSort = "name_desc"
	SortRoundsDesc LeaderboardSort = "rounds_desc"
	SortRoundsAsc  LeaderboardSort = "rounds_asc"
)

func validLeaderboardSort(s LeaderboardSort) bool {
	switch s {
	case "", SortRank, SortScoreDesc, SortScoreAsc, SortNameAsc, SortNameDesc, SortRoundsDesc, SortRoundsAsc:
		return true
	}
	return false
}

// LeaderboardFilter is the leaderboard query's full input, per spec.md §4.8.
type LeaderboardFilter struct {
	Department string
	Gender     string
	Batch      string
	Status     models.RegistrationStatus
	Search     string
	RoundIDs   []int
	Sort       LeaderboardSort
	Page       int
	PageSize   int
}

// LeaderboardRow is one ranked participant/team.
type LeaderboardRow struct {
	Rank               int                       `json:"rank"`
	EntityType         models.EntityType         `json:"entity_type"`
	EntityID           int                       `json:"entity_id"`
	Name               string                    `json:"name"`
	Total              float64                   `json:"total_score"`
	Status             models.RegistrationStatus `json:"status"`
	RoundsParticipated int                       `json:"rounds_participated"`
	AttendanceCount    int                       `json:"attendance_count"`
}

// LeaderboardPage is one page of ranked rows plus the pagination counters
// spec.md §4.8 requires in response headers.
type LeaderboardPage struct {
	Rows       []LeaderboardRow
	TotalCount int
	Page       int
	PageSize   int
}

func defaultEligibleRoundIDs(rounds []*models.Round) []int {
	ids := make([]int, 0, len(rounds))
	for _, r := range rounds {
		if r.IsFrozen || r.State == models.RoundCompleted || r.State == models.RoundReveal {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Rank computes the paginated, filtered, sorted leaderboard for an event.
func (s *LeaderboardService) Rank(ctx context.Context, event *models.Event, filter LeaderboardFilter) (*LeaderboardPage, error) {
	if !validLeaderboardSort(filter.Sort) {
		return nil, apierr.New(apierr.BadInput, fmt.Sprintf("unknown sort option %q", filter.Sort))
	}

	allRounds, err := s.repos.Rounds.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	eligible := defaultEligibleRoundIDs(allRounds)
	eligibleSet := make(map[int]bool, len(eligible))
	for _, id := range eligible {
		eligibleSet[id] = true
	}

	roundIDs := eligible
	if len(filter.RoundIDs) > 0 {
		for _, id := range filter.RoundIDs {
			if !eligibleSet[id] {
				return nil, apierr.New(apierr.BadRounds, fmt.Sprintf("round %d is not eligible for the leaderboard", id))
			}
		}
		roundIDs = filter.RoundIDs
	}

	totals, err := s.repos.Scores.SumByEventRounds(ctx, event.ID, roundIDs)
	if err != nil {
		return nil, fmt.Errorf("sum scores: %w", err)
	}
	participated, err := s.repos.Scores.CountPresentByEventRounds(ctx, event.ID, roundIDs)
	if err != nil {
		return nil, fmt.Errorf("count rounds participated: %w", err)
	}
	attended, err := s.repos.Scores.CountAttendanceByEventRounds(ctx, event.ID, roundIDs)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}

	regs, err := s.repos.Registrations.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	rows := make([]LeaderboardRow, 0, len(regs))
	for _, reg := range regs {
		if filter.Status != "" && reg.Status != filter.Status {
			continue
		}
		entityID := reg.EntityID()
		key := fmt.Sprintf("%s:%d", reg.EntityType, entityID)

		name, attrs, ok := s.lookupEntityName(ctx, reg.EntityType, entityID)
		if reg.EntityType == models.EntityUser {
			if filter.Department != "" && (!ok || !strings.EqualFold(attrs.Department, filter.Department)) {
				continue
			}
			if filter.Gender != "" && (!ok || !strings.EqualFold(attrs.Gender, filter.Gender)) {
				continue
			}
			if filter.Batch != "" && (!ok || !strings.EqualFold(attrs.Batch, filter.Batch)) {
				continue
			}
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			haystack := strings.ToLower(name)
			if ok {
				haystack += " " + strings.ToLower(attrs.Regno)
			}
			if !strings.Contains(haystack, needle) {
				continue
			}
		}

		rows = append(rows, LeaderboardRow{
			EntityType:         reg.EntityType,
			EntityID:           entityID,
			Name:               name,
			Total:              totals[key],
			Status:             reg.Status,
			RoundsParticipated: participated[key],
			AttendanceCount:    attended[key],
		})
	}

	// Canonical order for rank assignment: ACTIVE first, then -total, then
	// name, per spec.md §4.8. Dense ranks are assigned only within the
	// ACTIVE segment; everything else stays unranked (rank 0).
	sort.SliceStable(rows, func(i, j int) bool {
		activeI := rows[i].Status == models.RegistrationActive
		activeJ := rows[j].Status == models.RegistrationActive
		if activeI != activeJ {
			return activeI
		}
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	rank := 0
	for i := range rows {
		if rows[i].Status != models.RegistrationActive {
			continue
		}
		rank++
		rows[i].Rank = rank
	}

	sortRows(rows, filter.Sort)

	total := len(rows)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 25
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &LeaderboardPage{
		Rows:       append([]LeaderboardRow{}, rows[start:end]...),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func sortRows(rows []LeaderboardRow, by LeaderboardSort) {
	switch by {
	case SortScoreDesc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	case SortScoreAsc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total < rows[j].Total })
	case SortNameAsc:
		sort.SliceStable(rows, func(i, j int) bool { return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name) })
	case SortNameDesc:
		sort.SliceStable(rows, func(i, j int) bool { return strings.ToLower(rows[i].Name) > strings.ToLower(rows[j].Name) })
	case SortRoundsDesc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].RoundsParticipated > rows[j].RoundsParticipated })
	case SortRoundsAsc:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].RoundsParticipated < rows[j].RoundsParticipated })
	case SortRank, "":
		// already in canonical rank order
	}
}

// lookupEntityName resolves a display name (and, for users, filterable
// attributes) for one entity. Teams resolve locally; users go through the
// identity directory collaborator, degrading to an empty name/no-match when
// the directory has nothing on file.
func (s *LeaderboardService) lookupEntityName(ctx context.Context, entityType models.EntityType, entityID int) (string, *IdentityProfile, bool) {
	if entityType == models.EntityTeam {
		team, err := s.repos.Teams.GetByID(ctx, entityID)
		if err != nil {
			return "", nil, false
		}
		return team.TeamName, nil, true
	}
	profile, err := s.identity.LookupByUserID(ctx, entityID)
	if err != nil {
		return "", nil, false
	}
	return profile.Name, profile, true
}

// ParseLeaderboardSort maps a query-string value to a LeaderboardSort,
// defaulting to rank order for an empty or unrecognized value.
func ParseLeaderboardSort(raw string) LeaderboardSort {
	s := LeaderboardSort(raw)
	if validLeaderboardSort(s) {
		return s
	}
	return SortRank
}

// ParsePositiveInt parses a query-string integer, falling back to def on
// any parse failure or non-positive value.
func ParsePositiveInt(raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}
