// Package webauthntest provides a software authenticator that produces real
// attestation and assertion responses for tests.
package webauthntest

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/aussiebroadwan/passkey/pkg/cryptox"
	"github.com/aussiebroadwan/passkey/pkg/webauthnx"
	"github.com/go-webauthn/webauthn/protocol/webauthncbor"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
	"golang.org/x/crypto/cryptobyte"
)

// Authenticator is a single-credential platform authenticator. Its fields can
// be changed between ceremonies to produce deliberately broken responses.
type Authenticator struct {
	RPID   string
	Origin string

	// ClientDataType overrides the ceremony type written into clientDataJSON.
	ClientDataType string

	Flags        webauthnx.AuthenticatorFlags
	SignCount    uint32
	AAGUID       [16]byte
	CredentialID []byte
	// UserHandle is echoed in assertions when set.
	UserHandle []byte

	signer crypto.Signer
	alg    int64
}

// Option configures an Authenticator.
type Option func(*Authenticator) error

// WithRSA switches the credential key to RSA-2048 (RS256).
func WithRSA() Option {
	return func(a *Authenticator) error {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return err
		}
		a.signer = key
		a.alg = webauthnx.AlgRS256
		return nil
	}
}

// WithSignCount sets the initial signature counter.
func WithSignCount(n uint32) Option {
	return func(a *Authenticator) error {
		a.SignCount = n
		return nil
	}
}

// New creates an ES256 authenticator bound to rpID and origin with UP and UV set.
func New(rpID, origin string, opts ...Option) (*Authenticator, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	credID, err := cryptox.RandomBytes(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	a := &Authenticator{
		RPID:         rpID,
		Origin:       origin,
		Flags:        webauthnx.FlagUserPresent | webauthnx.FlagUserVerified,
		CredentialID: credID,
		signer:       key,
		alg:          webauthnx.AlgES256,
	}
	copy(a.AAGUID[:], []byte("passkey-test-aag"))

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// CredentialIDString is the base64url credential id as a browser reports it.
func (a *Authenticator) CredentialIDString() string {
	return cryptox.EncodeBase64URL(a.CredentialID)
}

// PublicKeyCOSE returns the credential public key as a COSE_Key.
func (a *Authenticator) PublicKeyCOSE() ([]byte, error) {
	switch pub := a.signer.Public().(type) {
	case *ecdsa.PublicKey:
		x := make([]byte, 32)
		y := make([]byte, 32)
		pub.X.FillBytes(x)
		pub.Y.FillBytes(y)
		return webauthncbor.Marshal(map[int]interface{}{
			1:  2,                          // kty: EC2
			3:  int(webauthncose.AlgES256), // alg
			-1: 1,                          // crv: P-256
			-2: x,
			-3: y,
		})
	case *rsa.PublicKey:
		return webauthncbor.Marshal(map[int]interface{}{
			1:  3,                          // kty: RSA
			3:  int(webauthncose.AlgRS256), // alg
			-1: pub.N.Bytes(),
			-2: big.NewInt(int64(pub.E)).Bytes(),
		})
	default:
		return nil, fmt.Errorf("webauthntest: unsupported key %T", pub)
	}
}

// Register answers a navigator.credentials.create() call for challenge.
func (a *Authenticator) Register(challenge string) (webauthnx.AttestationCredential, error) {
	clientData, err := a.clientDataJSON(webauthnx.ClientDataTypeCreate, challenge)
	if err != nil {
		return webauthnx.AttestationCredential{}, err
	}

	authData, err := a.authenticatorData(true)
	if err != nil {
		return webauthnx.AttestationCredential{}, err
	}

	attObj, err := webauthncbor.Marshal(map[string]interface{}{
		"fmt":      "none",
		"attStmt":  map[string]interface{}{},
		"authData": authData,
	})
	if err != nil {
		return webauthnx.AttestationCredential{}, err
	}

	return webauthnx.AttestationCredential{
		ID:    a.CredentialIDString(),
		RawID: a.CredentialIDString(),
		Type:  webauthnx.PublicKeyCredentialType,
		Response: webauthnx.AttestationResponse{
			ClientDataJSON:    cryptox.EncodeBase64URL(clientData),
			AttestationObject: cryptox.EncodeBase64URL(attObj),
			Transports:        []string{"internal"},
		},
	}, nil
}

// Assert answers a navigator.credentials.get() call for challenge. The
// signature counter is incremented first, as hardware authenticators do.
func (a *Authenticator) Assert(challenge string) (webauthnx.AssertionCredential, error) {
	a.SignCount++

	clientData, err := a.clientDataJSON(webauthnx.ClientDataTypeGet, challenge)
	if err != nil {
		return webauthnx.AssertionCredential{}, err
	}

	authData, err := a.authenticatorData(false)
	if err != nil {
		return webauthnx.AssertionCredential{}, err
	}

	sig, err := a.sign(authData, clientData)
	if err != nil {
		return webauthnx.AssertionCredential{}, err
	}

	cred := webauthnx.AssertionCredential{
		ID:    a.CredentialIDString(),
		RawID: a.CredentialIDString(),
		Type:  webauthnx.PublicKeyCredentialType,
		Response: webauthnx.AssertionResponse{
			ClientDataJSON:    cryptox.EncodeBase64URL(clientData),
			AuthenticatorData: cryptox.EncodeBase64URL(authData),
			Signature:         cryptox.EncodeBase64URL(sig),
		},
	}
	if len(a.UserHandle) > 0 {
		cred.Response.UserHandle = cryptox.EncodeBase64URL(a.UserHandle)
	}
	return cred, nil
}

func (a *Authenticator) clientDataJSON(ceremony, challenge string) ([]byte, error) {
	if a.ClientDataType != "" {
		ceremony = a.ClientDataType
	}
	return json.Marshal(map[string]any{
		"type":        ceremony,
		"challenge":   challenge,
		"origin":      a.Origin,
		"crossOrigin": false,
	})
}

func (a *Authenticator) authenticatorData(attested bool) ([]byte, error) {
	rpIDHash := sha256.Sum256([]byte(a.RPID))
	flags := a.Flags
	if attested {
		flags |= webauthnx.FlagAttestedCredentialData
	}

	var b cryptobyte.Builder
	b.AddBytes(rpIDHash[:])
	b.AddUint8(uint8(flags))
	b.AddUint32(a.SignCount)

	if attested {
		coseKey, err := a.PublicKeyCOSE()
		if err != nil {
			return nil, err
		}
		b.AddBytes(a.AAGUID[:])
		b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(a.CredentialID)
		})
		b.AddBytes(coseKey)
	}
	return b.Bytes()
}

func (a *Authenticator) sign(authData, clientData []byte) ([]byte, error) {
	clientHash := sha256.Sum256(clientData)
	digest := sha256.New()
	digest.Write(authData)
	digest.Write(clientHash[:])
	return a.signer.Sign(rand.Reader, digest.Sum(nil), crypto.SHA256)
}
