package passkeysdk

import (
	"time"

	"github.com/aussiebroadwan/passkey/pkg/webauthnx"
)

// ============================================================================
// Registration
// ============================================================================

// RegisterPrepareRequest starts a registration ceremony by presenting an invite.
type RegisterPrepareRequest struct {
	InviteToken string `json:"inviteToken"`
	DisplayName string `json:"displayName"`
}

// RegisterPrepareResponse carries the creation options for navigator.credentials.create().
type RegisterPrepareResponse struct {
	ChallengeID string                    `json:"challengeId"`
	PublicKey   webauthnx.CreationOptions `json:"publicKey"`

	// Role is the role the new account will receive from the invite.
	Role string `json:"role"`
}

// RegisterFinishRequest submits the attestation produced by the authenticator.
type RegisterFinishRequest struct {
	ChallengeID string                          `json:"challengeId"`
	Attestation webauthnx.AttestationCredential `json:"attestation"`

	// DisplayName overrides the name given at prepare time when non-empty.
	DisplayName string `json:"displayName,omitempty"`
}

// ============================================================================
// Login
// ============================================================================

// LoginPrepareRequest starts a login ceremony. UserID is optional; without it
// the browser performs a discoverable credential flow.
type LoginPrepareRequest struct {
	UserID string `json:"userId,omitempty"`
}

// LoginPrepareResponse carries the request options for navigator.credentials.get().
type LoginPrepareResponse struct {
	ChallengeID string                   `json:"challengeId"`
	PublicKey   webauthnx.RequestOptions `json:"publicKey"`
}

// LoginFinishRequest submits the assertion produced by the authenticator.
type LoginFinishRequest struct {
	ChallengeID string                        `json:"challengeId"`
	Assertion   webauthnx.AssertionCredential `json:"assertion"`
}

// ============================================================================
// Sessions
// ============================================================================

// UserSummary is the public view of an account.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// AuthResponse is returned by both finish endpoints.
type AuthResponse struct {
	Success bool        `json:"success"`
	User    UserSummary `json:"user"`

	// Token is an HS256 JWT valid for 30 days.
	Token string `json:"token"`
}

// ============================================================================
// Invites
// ============================================================================

// GenerateInviteRequest asks for a new single-use invite. ExpiresInHours
// defaults to 24 when zero.
type GenerateInviteRequest struct {
	Role           string `json:"role"`
	ExpiresInHours int    `json:"expiresInHours,omitempty"`
}

// GenerateInviteResponse contains the raw invite token. It is shown once and
// never retrievable again.
type GenerateInviteResponse struct {
	Success     bool      `json:"success"`
	InviteToken string    `json:"inviteToken"`
	InviteURL   string    `json:"inviteUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ============================================================================
// Users
// ============================================================================

// DeleteUserRequest names the account to remove. Admin-only.
type DeleteUserRequest struct {
	UserIDToDelete string `json:"userIdToDelete"`
}

// DeleteUserResponse confirms the deletion.
type DeleteUserResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DeletedUserID string `json:"deletedUserId"`
}

// ============================================================================
// Errors & Health
// ============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports dependency status for /readyz.
type HealthChecks struct {
	Database string `json:"database"`
}
