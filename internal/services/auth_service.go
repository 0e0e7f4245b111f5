// internal/services/auth_service.go
// Bearer-token validation and QR attendance token issuance.
//
// Identity issuance (signup, login, password handling) is an external
// collaborator per spec.md §1 — this service never mints identity tokens,
// only validates the ones handed to it and issues its own short-lived QR
// attendance tokens (spec.md §6).

package services

import (
	"strings"

	"eventengine/internal/apierr"
	"eventengine/internal/config"
	"eventengine/internal/utils"
)

// AuthService validates externally-issued bearer tokens and mints/validates
// this service's own QR attendance tokens.
type AuthService struct {
	config config.AuthConfig
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{config: cfg}
}

// ValidateToken validates a bearer token and returns the subject (user id),
// role, admin policy event slugs, and college carried in its claims.
func (s *AuthService) ValidateToken(token string) (string, string, []string, string, error) {
	sub, role, policy, college, err := utils.ValidateBearerToken(token, s.config.JWTSecret)
	if err != nil {
		return "", "", nil, "", apierr.New(apierr.PolicyDenied, "invalid or expired token")
	}
	return sub, role, policy, college, nil
}

// IsMITCollege reports whether college identifies an MIT affiliate, per
// spec.md §4.2's open_for=MIT eligibility gate.
func IsMITCollege(college string) bool {
	return strings.EqualFold(strings.TrimSpace(college), "mit")
}

// HasEventPolicy reports whether an admin's policy event slugs cover slug,
// per spec.md §7's POLICY_DENIED (admin lacks event in policy map). "*"
// grants every event.
func HasEventPolicy(policy []string, slug string) bool {
	for _, p := range policy {
		if p == "*" || p == slug {
			return true
		}
	}
	return false
}

// IssueQRToken mints a 12h attendance-scan token for one entity in one event.
func (s *AuthService) IssueQRToken(userID, eventSlug, entityType, entityID string) (string, error) {
	return utils.GenerateQRToken(s.config.JWTSecret, userID, eventSlug, entityType, entityID, s.config.QRTokenTTL)
}

// ValidateQRToken validates a previously-minted QR attendance token.
func (s *AuthService) ValidateQRToken(token string) (*utils.QRClaims, error) {
	claims, err := utils.ValidateQRToken(token, s.config.JWTSecret)
	if err != nil {
		return nil, apierr.New(apierr.PolicyDenied, "invalid or expired QR token")
	}
	return claims, nil
}
