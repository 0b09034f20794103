package webauthnx

import (
	"crypto/sha256"
	"fmt"

	"github.com/aussiebroadwan/passkey/pkg/cryptox"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/cryptobyte"
)

// AuthenticatorFlags is the flags byte of authenticator data.
type AuthenticatorFlags byte

const (
	FlagUserPresent            AuthenticatorFlags = 0x01
	FlagUserVerified           AuthenticatorFlags = 0x04
	FlagBackupEligible         AuthenticatorFlags = 0x08
	FlagBackupState            AuthenticatorFlags = 0x10
	FlagAttestedCredentialData AuthenticatorFlags = 0x40
	FlagHasExtensions          AuthenticatorFlags = 0x80
)

func (f AuthenticatorFlags) Has(flag AuthenticatorFlags) bool { return f&flag == flag }

// minAuthDataLen is rpIdHash(32) + flags(1) + signCount(4).
const minAuthDataLen = 37

// AuthenticatorData is the parsed authenticator data structure:
//
//	rpIdHash[32] | flags[1] | signCount[4, big-endian] | attestedCredentialData? | extensions?
type AuthenticatorData struct {
	RPIDHash   []byte
	Flags      AuthenticatorFlags
	SignCount  uint32
	Attested   *AttestedCredentialData
	Extensions []byte

	Raw []byte
}

// AttestedCredentialData is present during registration:
//
//	aaguid[16] | credentialIdLength[2] | credentialId | credentialPublicKey (COSE_Key)
type AttestedCredentialData struct {
	AAGUID       []byte
	CredentialID []byte
	PublicKey    []byte
}

// ParseAuthenticatorData decodes raw authenticator data. The COSE key is a
// self-delimiting CBOR item, so its extent is found by decoding one item.
func ParseAuthenticatorData(raw []byte) (AuthenticatorData, error) {
	if len(raw) < minAuthDataLen {
		return AuthenticatorData{}, fmt.Errorf("%w: authenticator data is %d bytes", ErrMalformed, len(raw))
	}

	ad := AuthenticatorData{Raw: raw}
	s := cryptobyte.String(raw)

	var flags uint8
	if !s.ReadBytes(&ad.RPIDHash, sha256.Size) || !s.ReadUint8(&flags) || !s.ReadUint32(&ad.SignCount) {
		return AuthenticatorData{}, fmt.Errorf("%w: truncated authenticator data header", ErrMalformed)
	}
	ad.Flags = AuthenticatorFlags(flags)

	if ad.Flags.Has(FlagAttestedCredentialData) {
		var acd AttestedCredentialData
		var credID cryptobyte.String
		if !s.ReadBytes(&acd.AAGUID, 16) || !s.ReadUint16LengthPrefixed(&credID) || credID.Empty() {
			return AuthenticatorData{}, fmt.Errorf("%w: truncated attested credential data", ErrMalformed)
		}
		acd.CredentialID = []byte(credID)

		key, rest, err := readCBORItem(s)
		if err != nil {
			return AuthenticatorData{}, fmt.Errorf("%w: credential public key: %v", ErrMalformed, err)
		}
		acd.PublicKey = key
		ad.Attested = &acd
		s = rest
	}

	if ad.Flags.Has(FlagHasExtensions) {
		ext, rest, err := readCBORItem(s)
		if err != nil {
			return AuthenticatorData{}, fmt.Errorf("%w: extensions: %v", ErrMalformed, err)
		}
		ad.Extensions = ext
		s = rest
	}

	if !s.Empty() {
		return AuthenticatorData{}, fmt.Errorf("%w: %d trailing bytes in authenticator data", ErrMalformed, len(s))
	}
	return ad, nil
}

func readCBORItem(s cryptobyte.String) ([]byte, cryptobyte.String, error) {
	var item cbor.RawMessage
	rest, err := cbor.UnmarshalFirst(s, &item)
	if err != nil {
		return nil, nil, err
	}
	return []byte(item), cryptobyte.String(rest), nil
}

// Verify checks the RP id hash and the presence and verification flags.
func (ad AuthenticatorData) Verify(rpID string, requireUV bool) error {
	want := sha256.Sum256([]byte(rpID))
	if !cryptox.EqualBytes(ad.RPIDHash, want[:]) {
		return ErrRPIDMismatch
	}
	if !ad.Flags.Has(FlagUserPresent) {
		return ErrUserNotPresent
	}
	if requireUV && !ad.Flags.Has(FlagUserVerified) {
		return ErrUserNotVerified
	}
	return nil
}
