// Package apierr generalizes the teacher's per-package sentinel-error style
// (services.ErrNotFound, ErrTournamentFull, ...) into one structured type
// carrying a closed kind enum, matching the HTTP mapping table of spec.md §7.
package apierr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind is a closed error-kind enum, one member per spec.md §7 row.
type Kind string

const (
	NotFound           Kind = "NOT_FOUND"
	WrongMode          Kind = "WRONG_MODE"
	RegClosed          Kind = "REG_CLOSED"
	NotEligible        Kind = "NOT_ELIGIBLE"
	AlreadyInTeam      Kind = "ALREADY_IN_TEAM"
	TeamFull           Kind = "TEAM_FULL"
	RoundFrozen        Kind = "ROUND_FROZEN"
	PanelRequired      Kind = "PANEL_REQUIRED"
	ScoreRange         Kind = "SCORE_RANGE"
	SubmissionLocked   Kind = "SUBMISSION_LOCKED"
	BadFile            Kind = "BAD_FILE"
	InvalidElimination Kind = "INVALID_ELIMINATION"
	Duplicate          Kind = "DUPLICATE"
	PolicyDenied       Kind = "POLICY_DENIED"
	BadInput           Kind = "BAD_INPUT"
	Internal           Kind = "INTERNAL"
	NotApplicable      Kind = "NOT_APPLICABLE"
	BadRounds          Kind = "BAD_ROUNDS"
)

var httpStatus = map[Kind]int{
	NotFound:           http.StatusNotFound,
	WrongMode:          http.StatusBadRequest,
	RegClosed:          http.StatusForbidden,
	NotEligible:        http.StatusForbidden,
	AlreadyInTeam:      http.StatusConflict,
	TeamFull:           http.StatusBadRequest,
	RoundFrozen:        http.StatusBadRequest,
	PanelRequired:      http.StatusBadRequest,
	ScoreRange:         http.StatusBadRequest,
	SubmissionLocked:   http.StatusBadRequest,
	BadFile:            http.StatusBadRequest,
	InvalidElimination: http.StatusBadRequest,
	Duplicate:          http.StatusConflict,
	PolicyDenied:       http.StatusForbidden,
	BadInput:           http.StatusBadRequest,
	Internal:           http.StatusInternalServerError,
	NotApplicable:      http.StatusBadRequest,
	BadRounds:          http.StatusBadRequest,
}

// Error is the structured failure type every service-layer operation
// returns for an expected, named failure mode. Unexpected failures should
// be wrapped as Internal at the handler boundary, not constructed by hand
// deep in a service.
type Error struct {
	Kind    Kind
	Message string
	Detail  string // e.g. the lock reason behind SUBMISSION_LOCKED
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// Status returns the HTTP status code this kind maps to.
func (e *Error) Status() int {
	if s, ok := httpStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New builds an *Error for a given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithDetail builds an *Error carrying a detail string (e.g. a lock reason).
func WithDetail(kind Kind, message, detail string) *Error {
	return &Error{Kind: kind, Message: message, Detail: detail}
}

// As extracts an *Error from err, if it is one.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}

// Write renders err as the appropriate JSON error response. Unrecognized
// errors are reported as INTERNAL without leaking details to the client.
func Write(c *gin.Context, err error) {
	if apiErr, ok := As(err); ok {
		body := gin.H{"error": apiErr.Kind, "message": apiErr.Message}
		if apiErr.Detail != "" {
			body["detail"] = apiErr.Detail
		}
		c.JSON(apiErr.Status(), body)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": Internal, "message": "internal error"})
}
