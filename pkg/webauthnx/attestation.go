package webauthnx

import (
	"fmt"

	"github.com/aussiebroadwan/passkey/pkg/cryptox"
	"github.com/fxamacker/cbor/v2"
)

// AttestationObject is the CBOR map {fmt, attStmt, authData}. The statement
// is kept raw; only "none" conveyance is requested so it is not verified.
type AttestationObject struct {
	Format   string          `cbor:"fmt"`
	AttStmt  cbor.RawMessage `cbor:"attStmt"`
	AuthData []byte          `cbor:"authData"`
}

// Registration is the verified outcome of parsing an attestation credential.
type Registration struct {
	ClientData   ClientData
	AuthData     AuthenticatorData
	Format       string
	CredentialID []byte
	PublicKey    []byte
	Algorithm    int64
	AAGUID       []byte
	SignCount    uint32
	Transports   []string
}

// ParseAttestationObject decodes the base64url attestationObject field.
func ParseAttestationObject(encoded string) (AttestationObject, AuthenticatorData, error) {
	raw, err := cryptox.DecodeBase64URL(encoded)
	if err != nil {
		return AttestationObject{}, AuthenticatorData{}, fmt.Errorf("%w: attestationObject: %v", ErrMalformed, err)
	}

	var obj AttestationObject
	if err := cbor.Unmarshal(raw, &obj); err != nil {
		return AttestationObject{}, AuthenticatorData{}, fmt.Errorf("%w: attestationObject: %v", ErrMalformed, err)
	}
	if obj.Format == "" || len(obj.AuthData) == 0 {
		return AttestationObject{}, AuthenticatorData{}, fmt.Errorf("%w: attestationObject missing fmt or authData", ErrMalformed)
	}

	ad, err := ParseAuthenticatorData(obj.AuthData)
	if err != nil {
		return AttestationObject{}, AuthenticatorData{}, err
	}
	return obj, ad, nil
}

// RegistrationExpectation is what the relying party expects of a new credential.
type RegistrationExpectation struct {
	Challenge string
	Origin    string
	RPID      string
	// RequireUserVerification mirrors userVerification="required".
	RequireUserVerification bool
}

// VerifyRegistration parses and checks an attestation credential against exp:
// client data, RP id hash, flags, credential id binding and key algorithm.
func VerifyRegistration(cred AttestationCredential, exp RegistrationExpectation) (Registration, error) {
	if cred.Type != "" && cred.Type != PublicKeyCredentialType {
		return Registration{}, fmt.Errorf("%w: credential type %q", ErrMalformed, cred.Type)
	}

	cd, err := ParseClientData(cred.Response.ClientDataJSON)
	if err != nil {
		return Registration{}, err
	}
	if err := cd.Verify(ClientDataTypeCreate, exp.Challenge, exp.Origin); err != nil {
		return Registration{}, err
	}

	obj, ad, err := ParseAttestationObject(cred.Response.AttestationObject)
	if err != nil {
		return Registration{}, err
	}
	if err := ad.Verify(exp.RPID, exp.RequireUserVerification); err != nil {
		return Registration{}, err
	}
	if ad.Attested == nil {
		return Registration{}, ErrMissingCredential
	}

	claimedID, err := credentialIDFrom(cred.RawID, cred.ID)
	if err != nil {
		return Registration{}, err
	}
	if !cryptox.EqualBytes(claimedID, ad.Attested.CredentialID) {
		return Registration{}, ErrCredentialIDMismatch
	}

	key, err := ParsePublicKey(ad.Attested.PublicKey)
	if err != nil {
		return Registration{}, err
	}

	return Registration{
		ClientData:   cd,
		AuthData:     ad,
		Format:       obj.Format,
		CredentialID: ad.Attested.CredentialID,
		PublicKey:    ad.Attested.PublicKey,
		Algorithm:    key.Algorithm,
		AAGUID:       ad.Attested.AAGUID,
		SignCount:    ad.SignCount,
		Transports:   cred.Response.Transports,
	}, nil
}

// credentialIDFrom decodes rawId and id, both base64url. Either may be omitted,
// but when both are sent they must name the same credential.
func credentialIDFrom(rawID, id string) ([]byte, error) {
	if rawID == "" && id == "" {
		return nil, fmt.Errorf("%w: credential id missing", ErrMalformed)
	}
	fromRaw, err := decodeCredentialID(rawID)
	if err != nil {
		return nil, err
	}
	fromID, err := decodeCredentialID(id)
	if err != nil {
		return nil, err
	}
	switch {
	case fromRaw == nil:
		return fromID, nil
	case fromID != nil && !cryptox.EqualBytes(fromRaw, fromID):
		return nil, fmt.Errorf("%w: id and rawId differ", ErrCredentialIDMismatch)
	}
	return fromRaw, nil
}

func decodeCredentialID(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := cryptox.DecodeBase64URL(s)
	if err != nil || len(b) == 0 {
		return nil, fmt.Errorf("%w: credential id is not base64url", ErrMalformed)
	}
	return b, nil
}
