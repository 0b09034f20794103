package webauthnx

import (
	"fmt"

	"github.com/aussiebroadwan/passkey/pkg/cryptox"
)

// AssertionExpectation is what the relying party expects of a login assertion.
type AssertionExpectation struct {
	Challenge               string
	Origin                  string
	RPID                    string
	RequireUserVerification bool
	// PublicKey is the stored COSE_Key for the credential.
	PublicKey []byte
}

// Assertion is the verified outcome of a login assertion.
type Assertion struct {
	ClientData   ClientData
	AuthData     AuthenticatorData
	CredentialID []byte
	// UserHandle is nil when the authenticator did not return one.
	UserHandle []byte
	SignCount  uint32
}

// ParseAssertion decodes the credential id and user handle without verifying
// anything, so the caller can look up the stored credential first.
func ParseAssertion(cred AssertionCredential) (credentialID, userHandle []byte, err error) {
	if cred.Type != "" && cred.Type != PublicKeyCredentialType {
		return nil, nil, fmt.Errorf("%w: credential type %q", ErrMalformed, cred.Type)
	}
	credentialID, err = credentialIDFrom(cred.RawID, cred.ID)
	if err != nil {
		return nil, nil, err
	}
	if cred.Response.UserHandle != "" {
		userHandle, err = cryptox.DecodeBase64URL(cred.Response.UserHandle)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: userHandle is not base64url", ErrMalformed)
		}
	}
	return credentialID, userHandle, nil
}

// VerifyAssertion checks client data, authenticator data and the signature.
// The sign counter is returned unchecked; replay detection belongs to storage.
func VerifyAssertion(cred AssertionCredential, exp AssertionExpectation) (Assertion, error) {
	credentialID, userHandle, err := ParseAssertion(cred)
	if err != nil {
		return Assertion{}, err
	}

	cd, err := ParseClientData(cred.Response.ClientDataJSON)
	if err != nil {
		return Assertion{}, err
	}
	if err := cd.Verify(ClientDataTypeGet, exp.Challenge, exp.Origin); err != nil {
		return Assertion{}, err
	}

	rawAuthData, err := cryptox.DecodeBase64URL(cred.Response.AuthenticatorData)
	if err != nil {
		return Assertion{}, fmt.Errorf("%w: authenticatorData is not base64url", ErrMalformed)
	}
	ad, err := ParseAuthenticatorData(rawAuthData)
	if err != nil {
		return Assertion{}, err
	}
	if err := ad.Verify(exp.RPID, exp.RequireUserVerification); err != nil {
		return Assertion{}, err
	}

	sig, err := cryptox.DecodeBase64URL(cred.Response.Signature)
	if err != nil || len(sig) == 0 {
		return Assertion{}, fmt.Errorf("%w: signature is not base64url", ErrMalformed)
	}

	key, err := ParsePublicKey(exp.PublicKey)
	if err != nil {
		return Assertion{}, err
	}
	if err := key.Verify(rawAuthData, cd.Raw, sig); err != nil {
		return Assertion{}, err
	}

	return Assertion{
		ClientData:   cd,
		AuthData:     ad,
		CredentialID: credentialID,
		UserHandle:   userHandle,
		SignCount:    ad.SignCount,
	}, nil
}
