package passkey_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/aussiebroadwan/passkey/pkg/passkeysdk"
	"github.com/aussiebroadwan/passkey/pkg/webauthnx/webauthntest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TestBootstrapAndLogin covers the first admin: a CLI-minted invite,
// registration, then a passkey login.
func TestBootstrapAndLogin(t *testing.T) {
	e := setupPasskeyContainer(t)

	token := e.createInvite(t, "admin")
	a := e.newAuthenticator(t)

	reg := e.register(t, a, token, "Ada")
	require.Equal(t, "Ada", reg.User.DisplayName)
	require.Equal(t, "admin", reg.User.Role)

	t.Run("session token is HS256 with a 30 day lifetime", func(t *testing.T) {
		parsed, err := jwt.Parse(reg.Token, func(*jwt.Token) (any, error) {
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		require.NoError(t, err)

		claims, ok := parsed.Claims.(jwt.MapClaims)
		require.True(t, ok)
		require.Equal(t, reg.User.ID, claims["sub"])
		require.Equal(t, "admin", claims["role"])

		iat, err := claims.GetIssuedAt()
		require.NoError(t, err)
		exp, err := claims.GetExpirationTime()
		require.NoError(t, err)
		require.EqualValues(t, 2592000, exp.Unix()-iat.Unix())
	})

	t.Run("login with the registered passkey", func(t *testing.T) {
		res, err := e.login(t, a, reg.User.ID)
		require.NoError(t, err)
		assertAuthResponse(t, res)
		require.Equal(t, reg.User.ID, res.User.ID)
	})

	t.Run("discoverable login without a user id", func(t *testing.T) {
		res, err := e.login(t, a, "")
		require.NoError(t, err)
		require.Equal(t, reg.User.ID, res.User.ID)
	})

	t.Run("replayed counter is rejected", func(t *testing.T) {
		a.SignCount = 0
		_, err := e.login(t, a, reg.User.ID)
		assertCode(t, err, http.StatusBadRequest, passkeysdk.CodeCounterReplay)
	})

	t.Run("unknown credential", func(t *testing.T) {
		stranger := e.newAuthenticator(t)
		_, err := e.login(t, stranger, "")
		assertCode(t, err, http.StatusNotFound, passkeysdk.CodeCredentialNotFound)
	})
}

func TestInviteIsSingleUse(t *testing.T) {
	e := setupPasskeyContainer(t)

	token := e.createInvite(t, "user")
	e.register(t, e.newAuthenticator(t), token, "First")

	_, err := e.client.RegisterPrepare(t.Context(), passkeysdk.RegisterPrepareRequest{
		InviteToken: token,
		DisplayName: "Second",
	})
	assertCode(t, err, http.StatusBadRequest, passkeysdk.CodeInviteUsed)
}

func TestRegistrationRejections(t *testing.T) {
	e := setupPasskeyContainer(t)
	ctx := t.Context()

	t.Run("unknown invite", func(t *testing.T) {
		_, err := e.client.RegisterPrepare(ctx, passkeysdk.RegisterPrepareRequest{
			InviteToken: "abc123",
			DisplayName: "Ada",
		})
		assertCode(t, err, http.StatusBadRequest, passkeysdk.CodeInviteInvalid)
	})

	t.Run("foreign origin", func(t *testing.T) {
		token := e.createInvite(t, "user")
		prep, err := e.client.RegisterPrepare(ctx, passkeysdk.RegisterPrepareRequest{
			InviteToken: token,
			DisplayName: "Mallory",
		})
		require.NoError(t, err)

		evil, err := webauthntest.New(e.rpID, "https://evil.example")
		require.NoError(t, err)
		att, err := evil.Register(prep.PublicKey.Challenge)
		require.NoError(t, err)

		_, err = e.client.RegisterFinish(ctx, passkeysdk.RegisterFinishRequest{
			ChallengeID: prep.ChallengeID,
			Attestation: att,
		})
		assertCode(t, err, http.StatusBadRequest, passkeysdk.CodeOriginMismatch)

		t.Run("challenge was consumed", func(t *testing.T) {
			good := e.newAuthenticator(t)
			att, err := good.Register(prep.PublicKey.Challenge)
			require.NoError(t, err)

			_, err = e.client.RegisterFinish(ctx, passkeysdk.RegisterFinishRequest{
				ChallengeID: prep.ChallengeID,
				Attestation: att,
			})
			assertCode(t, err, http.StatusBadRequest, passkeysdk.CodeChallengeNotFound)
		})
	})
}

func TestInviteGeneration(t *testing.T) {
	e := setupPasskeyContainer(t)
	ctx := t.Context()

	admin := e.register(t, e.newAuthenticator(t), e.createInvite(t, "admin"), "Admin")

	inv, err := e.client.GenerateInvite(ctx, admin.Token, passkeysdk.GenerateInviteRequest{Role: "user"})
	require.NoError(t, err)
	require.True(t, inv.Success)
	require.NotEmpty(t, inv.InviteToken)
	require.True(t, strings.HasSuffix(inv.InviteURL, "?invite="+inv.InviteToken), inv.InviteURL)

	member := e.register(t, e.newAuthenticator(t), inv.InviteToken, "Member")
	require.Equal(t, "user", member.User.Role)

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := e.client.GenerateInvite(ctx, member.Token, passkeysdk.GenerateInviteRequest{Role: "user"})
		assertCode(t, err, http.StatusForbidden, passkeysdk.CodeForbidden)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := e.client.GenerateInvite(ctx, "", passkeysdk.GenerateInviteRequest{Role: "user"})
		var apiErr *passkeysdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("expiry out of range", func(t *testing.T) {
		_, err := e.client.GenerateInvite(ctx, admin.Token, passkeysdk.GenerateInviteRequest{
			Role:           "user",
			ExpiresInHours: 100000,
		})
		assertCode(t, err, http.StatusBadRequest, "invalid_expiry")
	})
}

func TestUserDeletion(t *testing.T) {
	e := setupPasskeyContainer(t)
	ctx := t.Context()

	admin := e.register(t, e.newAuthenticator(t), e.createInvite(t, "admin"), "Admin")
	memberKey := e.newAuthenticator(t)
	member := e.register(t, memberKey, e.createInvite(t, "user"), "Member")

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := e.client.DeleteUser(ctx, member.Token, passkeysdk.DeleteUserRequest{UserIDToDelete: admin.User.ID})
		assertCode(t, err, http.StatusForbidden, passkeysdk.CodeForbidden)
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		_, err := e.client.DeleteUser(ctx, admin.Token, passkeysdk.DeleteUserRequest{UserIDToDelete: admin.User.ID})
		assertCode(t, err, http.StatusBadRequest, passkeysdk.CodeCannotDeleteSelf)
	})

	res, err := e.client.DeleteUser(ctx, admin.Token, passkeysdk.DeleteUserRequest{UserIDToDelete: member.User.ID})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, member.User.ID, res.DeletedUserID)

	t.Run("deleted user's passkey no longer logs in", func(t *testing.T) {
		_, err := e.login(t, memberKey, "")
		assertCode(t, err, http.StatusNotFound, passkeysdk.CodeCredentialNotFound)
	})
}
