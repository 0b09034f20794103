package passkeysdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest     = "invalid_request"
	CodeInviteInvalid      = "invite_invalid"
	CodeInviteUsed         = "invite_used"
	CodeInviteExpired      = "invite_expired"
	CodeChallengeNotFound  = "challenge_not_found"
	CodeChallengeExpired   = "challenge_expired"
	CodeChallengeType      = "challenge_type_mismatch"
	CodeChallengeMismatch  = "challenge_mismatch"
	CodeOriginMismatch     = "origin_mismatch"
	CodeRPIDMismatch       = "rp_id_mismatch"
	CodeClientDataType     = "client_data_type"
	CodeUserVerification   = "user_verification"
	CodeCredentialExists   = "credential_exists"
	CodeCredentialNotFound = "credential_not_found"
	CodeUserNotFound       = "user_not_found"
	CodeCannotDeleteSelf   = "cannot_delete_self"
	CodeUserDeactivated    = "user_deactivated"
	CodeForbidden          = "forbidden"
	CodeUnauthorized       = "unauthorized"
	CodeSignatureInvalid   = "signature_invalid"
	CodeCounterReplay      = "counter_not_increasing"
	CodeRateLimited        = "rate_limited"
)

// APIError is a non-2xx response from the passkey service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("passkey: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("passkey: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// parseErrorResponse builds an APIError from a response body, falling back to
// the status text when the body is not the usual JSON shape.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		apiErr.Code = er.Code
		apiErr.Message = er.Error
		return apiErr
	}

	apiErr.Message = http.StatusText(resp.StatusCode)
	return apiErr
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
