// Package webauthnx parses and verifies the browser side of WebAuthn
// registration and authentication ceremonies.
//
// Binary fields travel as base64url strings, matching what
// PublicKeyCredential.toJSON() produces in browsers.
package webauthnx

// COSE algorithm identifiers accepted for credentials.
const (
	AlgES256 int64 = -7
	AlgRS256 int64 = -257
)

// PublicKeyCredentialType is the only credential type WebAuthn defines.
const PublicKeyCredentialType = "public-key"

// AttestationCredential is the JSON form of the credential returned by
// navigator.credentials.create().
type AttestationCredential struct {
	ID       string              `json:"id"`
	RawID    string              `json:"rawId"`
	Type     string              `json:"type"`
	Response AttestationResponse `json:"response"`
}

type AttestationResponse struct {
	ClientDataJSON    string   `json:"clientDataJSON"`
	AttestationObject string   `json:"attestationObject"`
	Transports        []string `json:"transports,omitempty"`
}

// AssertionCredential is the JSON form of the credential returned by
// navigator.credentials.get().
type AssertionCredential struct {
	ID       string            `json:"id"`
	RawID    string            `json:"rawId"`
	Type     string            `json:"type"`
	Response AssertionResponse `json:"response"`
}

type AssertionResponse struct {
	ClientDataJSON    string `json:"clientDataJSON"`
	AuthenticatorData string `json:"authenticatorData"`
	Signature         string `json:"signature"`
	UserHandle        string `json:"userHandle,omitempty"`
}

// CreationOptions is PublicKeyCredentialCreationOptions as sent to the browser.
type CreationOptions struct {
	Challenge              string                 `json:"challenge"`
	RP                     RelyingPartyEntity     `json:"rp"`
	User                   UserEntity             `json:"user"`
	PubKeyCredParams       []CredentialParameter  `json:"pubKeyCredParams"`
	AuthenticatorSelection AuthenticatorSelection `json:"authenticatorSelection"`
	Timeout                int                    `json:"timeout"`
	Attestation            string                 `json:"attestation"`
}

type RelyingPartyEntity struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type UserEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type CredentialParameter struct {
	Alg  int64  `json:"alg"`
	Type string `json:"type"`
}

type AuthenticatorSelection struct {
	AuthenticatorAttachment string `json:"authenticatorAttachment"`
	RequireResidentKey      bool   `json:"requireResidentKey"`
	UserVerification        string `json:"userVerification"`
}

// RequestOptions is PublicKeyCredentialRequestOptions as sent to the browser.
type RequestOptions struct {
	Challenge        string                 `json:"challenge"`
	Timeout          int                    `json:"timeout"`
	RPID             string                 `json:"rpId"`
	UserVerification string                 `json:"userVerification"`
	AllowCredentials []CredentialDescriptor `json:"allowCredentials,omitempty"`
}

type CredentialDescriptor struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Transports []string `json:"transports,omitempty"`
}

// SupportedCredentialParameters lists ES256 then RS256, in preference order.
func SupportedCredentialParameters() []CredentialParameter {
	return []CredentialParameter{
		{Alg: AlgES256, Type: PublicKeyCredentialType},
		{Alg: AlgRS256, Type: PublicKeyCredentialType},
	}
}
