package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set("user_role", "admin")

	called := false
	RequireRole("admin")(c)
	if c.IsAborted() {
		t.Fatal("RequireRole aborted a matching role")
	}
	called = true
	_ = called
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set("user_role", "participant")

	RequireRole("admin")(c)
	if !c.IsAborted() {
		t.Fatal("RequireRole did not abort for a mismatched role")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RequireRole("admin")(c)
	if !c.IsAborted() {
		t.Fatal("RequireRole did not abort when no role was set")
	}
}

func newContextWithParam(param, value string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: param, Value: value}}
	return c, rec
}

func TestRequireEventPolicyAllowsListedSlug(t *testing.T) {
	c, rec := newContextWithParam("slug", "hack-night")
	c.Set("policy", []string{"hack-night", "robotics-cup"})

	RequireEventPolicy("slug")(c)

	if c.IsAborted() {
		t.Fatal("RequireEventPolicy aborted for a slug present in the policy")
	}
	if rec.Code != 0 && rec.Code != http.StatusOK {
		t.Errorf("unexpected status written: %d", rec.Code)
	}
}

func TestRequireEventPolicyAllowsWildcard(t *testing.T) {
	c, _ := newContextWithParam("slug", "any-slug")
	c.Set("policy", []string{"*"})

	RequireEventPolicy("slug")(c)

	if c.IsAborted() {
		t.Fatal("RequireEventPolicy aborted for a wildcard policy")
	}
}

func TestRequireEventPolicyDeniesUnlistedSlug(t *testing.T) {
	c, rec := newContextWithParam("slug", "robotics-cup")
	c.Set("policy", []string{"hack-night"})

	RequireEventPolicy("slug")(c)

	if !c.IsAborted() {
		t.Fatal("RequireEventPolicy did not abort for a slug outside the policy")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireEventPolicyDeniesMissingPolicy(t *testing.T) {
	c, _ := newContextWithParam("slug", "hack-night")

	RequireEventPolicy("slug")(c)

	if !c.IsAborted() {
		t.Fatal("RequireEventPolicy did not abort when no policy claim was set")
	}
}
