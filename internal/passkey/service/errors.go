package service

import (
	"errors"

	"github.com/aussiebroadwan/passkey/pkg/webauthnx"
)

// Kind classifies a ceremony failure. Anything that is not an *Error is a
// store failure.
type Kind int

const (
	KindStore Kind = iota
	KindValidation
	KindInvite
	KindChallenge
	KindOrigin
	KindCredential
	KindAuthorization
	KindSignature
	KindReplay
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvite:
		return "invite"
	case KindChallenge:
		return "challenge"
	case KindOrigin:
		return "origin"
	case KindCredential:
		return "credential"
	case KindAuthorization:
		return "authorization"
	case KindSignature:
		return "signature"
	case KindReplay:
		return "replay"
	default:
		return "store"
	}
}

// Error is a client-facing ceremony failure. Message is safe to return to
// the caller; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so wrapped copies still compare equal to the
// package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Code == e.Code
}

func (e *Error) wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// KindOf returns the kind of err, or KindStore for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

func validationError(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

var (
	ErrInvalidRequest      = validationError("invalid_request", "request is missing required fields")
	ErrInvalidDisplayName  = validationError("invalid_display_name", "displayName must be between 1 and 64 characters")
	ErrInvalidCredential   = validationError("invalid_credential", "credential response is malformed")
	ErrUnsupportedAlg      = validationError("unsupported_algorithm", "credential public key algorithm is not supported")
	ErrClientDataType      = validationError("client_data_type", "clientDataJSON has the wrong ceremony type")
	ErrUserVerification    = validationError("user_verification", "authenticator did not verify the user")
	ErrCredentialExists    = validationError("credential_exists", "credential is already registered")
	ErrInvalidInviteRole   = validationError("invalid_role", "role must be admin or user")
	ErrInvalidInviteExpiry = validationError("invalid_expiry", "expiresInHours is out of range")
	ErrUserNotFound        = validationError("user_not_found", "user not found")
	ErrCannotDeleteSelf    = validationError("cannot_delete_self", "you cannot delete yourself")

	ErrInviteInvalid = &Error{Kind: KindInvite, Code: "invite_invalid", Message: "invite is invalid"}
	ErrInviteUsed    = &Error{Kind: KindInvite, Code: "invite_used", Message: "invite has already been used"}
	ErrInviteExpired = &Error{Kind: KindInvite, Code: "invite_expired", Message: "invite has expired"}

	ErrChallengeNotFound     = &Error{Kind: KindChallenge, Code: "challenge_not_found", Message: "challenge not found"}
	ErrChallengeExpired      = &Error{Kind: KindChallenge, Code: "challenge_expired", Message: "challenge has expired"}
	ErrChallengeTypeMismatch = &Error{Kind: KindChallenge, Code: "challenge_type_mismatch", Message: "challenge belongs to a different ceremony"}
	ErrChallengeMismatch     = &Error{Kind: KindChallenge, Code: "challenge_mismatch", Message: "challenge does not match"}

	ErrOriginMismatch = &Error{Kind: KindOrigin, Code: "origin_mismatch", Message: "origin does not match"}
	ErrRPIDMismatch   = &Error{Kind: KindOrigin, Code: "rp_id_mismatch", Message: "relying party id does not match"}

	ErrCredentialNotFound = &Error{Kind: KindCredential, Code: "credential_not_found", Message: "credential not found"}
	ErrCredentialRevoked  = &Error{Kind: KindCredential, Code: "credential_revoked", Message: "credential has been revoked"}

	ErrUserDeactivated = &Error{Kind: KindAuthorization, Code: "user_deactivated", Message: "user is deactivated"}
	ErrCallerInactive  = &Error{Kind: KindAuthorization, Code: "caller_inactive", Message: "caller is deactivated"}
	ErrCallerNotAdmin  = &Error{Kind: KindAuthorization, Code: "forbidden", Message: "admin role required"}

	ErrSignatureInvalid = &Error{Kind: KindSignature, Code: "signature_invalid", Message: "signature verification failed"}

	ErrCounterReplay = &Error{Kind: KindReplay, Code: "counter_not_increasing", Message: "signature counter did not increase"}
)

// mapWebAuthnError classifies a webauthnx verification failure.
func mapWebAuthnError(err error) error {
	var target *Error
	switch {
	case errors.Is(err, webauthnx.ErrClientDataType):
		target = ErrClientDataType
	case errors.Is(err, webauthnx.ErrChallengeMismatch):
		target = ErrChallengeMismatch
	case errors.Is(err, webauthnx.ErrOriginMismatch):
		target = ErrOriginMismatch
	case errors.Is(err, webauthnx.ErrRPIDMismatch):
		target = ErrRPIDMismatch
	case errors.Is(err, webauthnx.ErrUserNotPresent), errors.Is(err, webauthnx.ErrUserNotVerified):
		target = ErrUserVerification
	case errors.Is(err, webauthnx.ErrSignatureInvalid):
		target = ErrSignatureInvalid
	case errors.Is(err, webauthnx.ErrUnsupportedAlg):
		target = ErrUnsupportedAlg
	default:
		target = ErrInvalidCredential
	}
	return target.wrap(err)
}
