package apierr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{NotFound, http.StatusNotFound},
		{RegClosed, http.StatusForbidden},
		{AlreadyInTeam, http.StatusConflict},
		{TeamFull, http.StatusBadRequest},
		{PolicyDenied, http.StatusForbidden},
		{Internal, http.StatusInternalServerError},
		{BadRounds, http.StatusBadRequest},
	}
	for _, tt := range tests {
		err := New(tt.kind, "message")
		if got := err.Status(); got != tt.want {
			t.Errorf("Kind %s Status() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestStatusUnknownKindDefaultsInternal(t *testing.T) {
	err := &Error{Kind: Kind("NOT_A_REAL_KIND"), Message: "oops"}
	if got := err.Status(); got != http.StatusInternalServerError {
		t.Errorf("Status() for unknown kind = %d, want %d", got, http.StatusInternalServerError)
	}
}

func TestErrorMessageWithDetail(t *testing.T) {
	err := WithDetail(SubmissionLocked, "submission is locked", "frozen")
	if got := err.Error(); got != "submission is locked: frozen" {
		t.Errorf("Error() = %q, want %q", got, "submission is locked: frozen")
	}

	plain := New(NotFound, "event not found")
	if got := plain.Error(); got != "event not found" {
		t.Errorf("Error() = %q, want %q", got, "event not found")
	}
}

func TestAs(t *testing.T) {
	err := New(TeamFull, "full")
	if apiErr, ok := As(err); !ok || apiErr.Kind != TeamFull {
		t.Fatalf("As() = %+v, %v, want a TeamFull *Error", apiErr, ok)
	}

	if _, ok := As(http.ErrBodyNotAllowed); ok {
		t.Fatal("As() reported ok for a non-apierr error")
	}
}

func TestWriteKnownError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Write(c, WithDetail(SubmissionLocked, "submission is locked", "deadline"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body did not decode as JSON: %v", err)
	}
	if body["error"] != string(SubmissionLocked) {
		t.Errorf("body[error] = %q, want %q", body["error"], SubmissionLocked)
	}
	if body["detail"] != "deadline" {
		t.Errorf("body[detail] = %q, want %q", body["detail"], "deadline")
	}
}

func TestWriteUnrecognizedErrorHidesDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Write(c, http.ErrBodyNotAllowed)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body did not decode as JSON: %v", err)
	}
	if body["error"] != string(Internal) {
		t.Errorf("body[error] = %q, want %q", body["error"], Internal)
	}
	if _, hasMessage := body["message"]; !hasMessage {
		t.Error("expected a generic message field")
	}
}
