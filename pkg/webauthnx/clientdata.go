package webauthnx

import (
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/passkey/pkg/cryptox"
)

const (
	ClientDataTypeCreate = "webauthn.create"
	ClientDataTypeGet    = "webauthn.get"
)

// ClientData is the decoded clientDataJSON. Raw keeps the exact bytes the
// authenticator hashed into the signature.
type ClientData struct {
	Type        string `json:"type"`
	Challenge   string `json:"challenge"`
	Origin      string `json:"origin"`
	CrossOrigin bool   `json:"crossOrigin,omitempty"`

	Raw []byte `json:"-"`
}

// ParseClientData decodes the base64url clientDataJSON field.
func ParseClientData(encoded string) (ClientData, error) {
	raw, err := cryptox.DecodeBase64URL(encoded)
	if err != nil {
		return ClientData{}, fmt.Errorf("%w: clientDataJSON: %v", ErrMalformed, err)
	}

	var cd ClientData
	if err := json.Unmarshal(raw, &cd); err != nil {
		return ClientData{}, fmt.Errorf("%w: clientDataJSON: %v", ErrMalformed, err)
	}
	if cd.Type == "" || cd.Challenge == "" || cd.Origin == "" {
		return ClientData{}, fmt.Errorf("%w: clientDataJSON missing type, challenge or origin", ErrMalformed)
	}
	cd.Raw = raw
	return cd, nil
}

// Verify checks the ceremony type, the echoed challenge and the origin.
// Challenges are compared as decoded bytes so padding differences between
// client libraries do not matter.
func (cd ClientData) Verify(wantType, wantChallenge, wantOrigin string) error {
	if cd.Type != wantType {
		return fmt.Errorf("%w: got %q", ErrClientDataType, cd.Type)
	}

	got, err := cryptox.DecodeBase64URL(cd.Challenge)
	if err != nil {
		return fmt.Errorf("%w: undecodable challenge", ErrChallengeMismatch)
	}
	want, err := cryptox.DecodeBase64URL(wantChallenge)
	if err != nil || !cryptox.EqualBytes(got, want) {
		return ErrChallengeMismatch
	}

	if cd.Origin != wantOrigin {
		return fmt.Errorf("%w: got %q", ErrOriginMismatch, cd.Origin)
	}
	return nil
}
