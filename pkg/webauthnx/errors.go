package webauthnx

import "errors"

var (
	ErrMalformed            = errors.New("webauthnx: malformed ceremony data")
	ErrClientDataType       = errors.New("webauthnx: unexpected client data type")
	ErrChallengeMismatch    = errors.New("webauthnx: challenge mismatch")
	ErrOriginMismatch       = errors.New("webauthnx: origin mismatch")
	ErrRPIDMismatch         = errors.New("webauthnx: relying party id hash mismatch")
	ErrUserNotPresent       = errors.New("webauthnx: user presence flag not set")
	ErrUserNotVerified      = errors.New("webauthnx: user verification flag not set")
	ErrMissingCredential    = errors.New("webauthnx: attested credential data missing")
	ErrCredentialIDMismatch = errors.New("webauthnx: credential id does not match attested credential")
	ErrUnsupportedAlg       = errors.New("webauthnx: unsupported public key algorithm")
	ErrSignatureInvalid     = errors.New("webauthnx: signature verification failed")
)
