package jwtx_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/passkey/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newPair(t *testing.T) (*jwtx.HS256Signer, *jwtx.HS256Verifier) {
	t.Helper()
	s, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	v, err := jwtx.NewVerifierHS256(testSecret)
	require.NoError(t, err)
	return s, v
}

func TestHS256_SignVerify(t *testing.T) {
	s, v := newPair(t)
	require.Equal(t, "HS256", s.Alg())

	token, err := s.Sign(jwtx.NewSessionClaims("user-1", "user", jwtx.DefaultSessionTTL, time.Now()))
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "user", claims.Role)
}

func TestHS256_WireFormat(t *testing.T) {
	s, _ := newPair(t)

	token, err := s.Sign(jwtx.NewSessionClaims("user-1", "admin", jwtx.DefaultSessionTTL, time.Now()))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	var header map[string]any
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &header))
	require.Equal(t, map[string]any{"alg": "HS256", "typ": "JWT"}, header)

	var payload map[string]any
	raw, err = base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Len(t, payload, 4)
	require.Equal(t, "user-1", payload["sub"])
	require.Equal(t, "admin", payload["role"])
	require.InDelta(t, 2592000, payload["exp"].(float64)-payload["iat"].(float64), 0)
}

func TestHS256_Rejects(t *testing.T) {
	s, v := newPair(t)
	now := time.Now()

	t.Run("wrong secret", func(t *testing.T) {
		other, err := jwtx.NewSignerHS256([]byte("ffffffffffffffffffffffffffffffff"))
		require.NoError(t, err)
		token, err := other.Sign(jwtx.NewSessionClaims("user-1", "user", time.Hour, now))
		require.NoError(t, err)

		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := s.Sign(jwtx.NewSessionClaims("user-1", "user", time.Hour, now.Add(-2*time.Hour)))
		require.NoError(t, err)

		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("alg none", func(t *testing.T) {
		c := jwtx.NewSessionClaims("user-1", "admin", time.Hour, now)
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := s.Sign(jwtx.NewSessionClaims("", "user", time.Hour, now))
		require.Error(t, err)
	})
}

func TestHS256_WeakSecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256([]byte("short"))
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)

	_, err = jwtx.NewVerifierHS256(nil)
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}
