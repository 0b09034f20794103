package webauthnx

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/go-webauthn/webauthn/protocol/webauthncose"
)

// PublicKey is a parsed COSE_Key restricted to the accepted algorithms.
type PublicKey struct {
	Algorithm int64
	key       any
}

// MinRSAModulusBits is the smallest RS256 modulus accepted at registration.
const MinRSAModulusBits = 2048

// ParsePublicKey decodes a COSE_Key and rejects anything other than an ES256
// key on P-256 or an RS256 key of at least MinRSAModulusBits.
func ParsePublicKey(coseKey []byte) (PublicKey, error) {
	parsed, err := webauthncose.ParsePublicKey(coseKey)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: cose key: %v", ErrMalformed, err)
	}

	switch k := parsed.(type) {
	case webauthncose.EC2PublicKeyData:
		if k.Algorithm != AlgES256 {
			return PublicKey{}, fmt.Errorf("%w: %d", ErrUnsupportedAlg, k.Algorithm)
		}
		if err := checkEC2(k); err != nil {
			return PublicKey{}, err
		}
		return PublicKey{Algorithm: k.Algorithm, key: parsed}, nil
	case webauthncose.RSAPublicKeyData:
		if k.Algorithm != AlgRS256 {
			return PublicKey{}, fmt.Errorf("%w: %d", ErrUnsupportedAlg, k.Algorithm)
		}
		if bits := new(big.Int).SetBytes(k.Modulus).BitLen(); bits < MinRSAModulusBits {
			return PublicKey{}, fmt.Errorf("%w: %d-bit rsa modulus", ErrUnsupportedAlg, bits)
		}
		return PublicKey{Algorithm: k.Algorithm, key: parsed}, nil
	default:
		return PublicKey{}, fmt.Errorf("%w: key type %T", ErrUnsupportedAlg, parsed)
	}
}

// checkEC2 requires a P-256 point that lies on the curve.
func checkEC2(k webauthncose.EC2PublicKeyData) error {
	if k.Curve != int64(webauthncose.P256) {
		return fmt.Errorf("%w: curve %d", ErrUnsupportedAlg, k.Curve)
	}
	if len(k.XCoord) != 32 || len(k.YCoord) != 32 {
		return fmt.Errorf("%w: ec2 coordinates must be 32 bytes", ErrMalformed)
	}
	pub, err := k.ToECDSA()
	if err != nil {
		return fmt.Errorf("%w: ec2 key: %v", ErrMalformed, err)
	}
	if _, err := pub.ECDH(); err != nil {
		return fmt.Errorf("%w: ec2 point: %v", ErrMalformed, err)
	}
	return nil
}

// Verify checks sig over authenticatorData || SHA-256(clientDataJSON).
func (k PublicKey) Verify(authData, clientDataJSON, sig []byte) error {
	clientHash := sha256.Sum256(clientDataJSON)
	signed := make([]byte, 0, len(authData)+len(clientHash))
	signed = append(signed, authData...)
	signed = append(signed, clientHash[:]...)

	ok, err := webauthncose.VerifySignature(k.key, signed, sig)
	if err != nil || !ok {
		return ErrSignatureInvalid
	}
	return nil
}
