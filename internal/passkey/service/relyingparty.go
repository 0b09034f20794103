package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/passkey/pkg/cryptox"
	"github.com/aussiebroadwan/passkey/pkg/webauthnx"
)

const (
	// CeremonyTimeout is advertised to the browser in creation and request options.
	CeremonyTimeout = 60 * time.Second

	MaxDisplayNameLength = 64

	userVerificationRequired = "required"
)

// RelyingParty identifies the site a ceremony is bound to. ID and Origin are
// resolved per request since the service can sit behind several hostnames.
type RelyingParty struct {
	ID     string
	Name   string
	Origin string
}

func (rp RelyingParty) valid() bool {
	return rp.ID != "" && rp.Origin != ""
}

// normalizeDisplayName trims name and enforces 1..64 characters.
func normalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxDisplayNameLength {
		return "", ErrInvalidDisplayName
	}
	return name, nil
}

func timeoutMillis() int {
	return int(CeremonyTimeout / time.Millisecond)
}

func nowFunc(f func() time.Time) time.Time {
	if f != nil {
		return f().UTC()
	}
	return time.Now().UTC()
}

func credentialDescriptor(id []byte, transports []string) webauthnx.CredentialDescriptor {
	return webauthnx.CredentialDescriptor{
		ID:         cryptox.EncodeBase64URL(id),
		Type:       webauthnx.PublicKeyCredentialType,
		Transports: transports,
	}
}
