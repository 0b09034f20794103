package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/policy"
	"github.com/aussiebroadwan/passkey/internal/passkey/service"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/internal/passkey/store/drivers/sqlite"
	"github.com/aussiebroadwan/passkey/pkg/jwtx"
	"github.com/aussiebroadwan/passkey/pkg/webauthnx"
	"github.com/aussiebroadwan/passkey/pkg/webauthnx/webauthntest"
	"github.com/stretchr/testify/require"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	testRP     = service.RelyingParty{ID: "app.example", Name: "Camp Attendance", Origin: "https://app.example"}
)

type harness struct {
	store        store.Store
	challenges   *service.ChallengeService
	invites      *service.InviteService
	registration *service.RegistrationService
	login        *service.LoginService
	users        *service.UserService
	verifier     *jwtx.HS256Verifier
}

func newHarness(t *testing.T, path string) *harness {
	t.Helper()

	s, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	pol, err := policy.NewInvitePolicy(context.Background())
	require.NoError(t, err)

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(testSecret)
	require.NoError(t, err)

	challenges := &service.ChallengeService{Store: s}
	invites := &service.InviteService{Store: s, Policy: pol}
	sessions := &service.SessionService{Signer: signer}

	return &harness{
		store:        s,
		challenges:   challenges,
		invites:      invites,
		registration: &service.RegistrationService{Store: s, Challenges: challenges, Invites: invites, Sessions: sessions},
		login:        &service.LoginService{Store: s, Challenges: challenges, Sessions: sessions},
		users:        &service.UserService{Store: s},
		verifier:     verifier,
	}
}

func (h *harness) mintInvite(t *testing.T, role domain.Role) string {
	t.Helper()
	inv, err := h.invites.Mint(context.Background(), role, time.Hour, "")
	require.NoError(t, err)
	return inv.Token
}

// register runs a full registration ceremony for a new authenticator.
func (h *harness) register(t *testing.T, role domain.Role, opts ...webauthntest.Option) (*webauthntest.Authenticator, service.AuthResult) {
	t.Helper()
	ctx := context.Background()

	auth, err := webauthntest.New(testRP.ID, testRP.Origin, opts...)
	require.NoError(t, err)

	prep, err := h.registration.Prepare(ctx, testRP, service.RegisterPrepareParams{
		InviteToken: h.mintInvite(t, role),
		DisplayName: "Ada",
	})
	require.NoError(t, err)

	att, err := auth.Register(prep.Options.Challenge)
	require.NoError(t, err)

	res, err := h.registration.Finish(ctx, testRP, service.RegisterFinishParams{
		ChallengeID: prep.ChallengeID,
		Attestation: att,
	})
	require.NoError(t, err)
	auth.UserHandle = []byte(res.User.ID)
	return auth, res
}

func (h *harness) loginWith(t *testing.T, auth *webauthntest.Authenticator, userID string) (service.AuthResult, error) {
	t.Helper()
	ctx := context.Background()

	prep, err := h.login.Prepare(ctx, testRP, userID)
	require.NoError(t, err)

	assertion, err := auth.Assert(prep.Options.Challenge)
	require.NoError(t, err)

	return h.login.Finish(ctx, testRP, service.LoginFinishParams{
		ChallengeID: prep.ChallengeID,
		Assertion:   assertion,
	})
}

func TestRegistration_EndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)

	token := h.mintInvite(t, domain.RoleAdmin)
	auth, err := webauthntest.New(testRP.ID, testRP.Origin)
	require.NoError(t, err)

	prep, err := h.registration.Prepare(ctx, testRP, service.RegisterPrepareParams{InviteToken: token, DisplayName: "  Ada "})
	require.NoError(t, err)
	require.NotEmpty(t, prep.ChallengeID)
	require.Equal(t, domain.RoleAdmin, prep.Role)
	require.Equal(t, testRP.ID, prep.Options.RP.ID)
	require.Equal(t, "Ada", prep.Options.User.DisplayName)
	require.Equal(t, 60000, prep.Options.Timeout)
	require.Equal(t, "none", prep.Options.Attestation)
	require.Equal(t, "platform", prep.Options.AuthenticatorSelection.AuthenticatorAttachment)
	require.Equal(t, "required", prep.Options.AuthenticatorSelection.UserVerification)
	require.Equal(t, webauthnx.SupportedCredentialParameters(), prep.Options.PubKeyCredParams)

	att, err := auth.Register(prep.Options.Challenge)
	require.NoError(t, err)

	res, err := h.registration.Finish(ctx, testRP, service.RegisterFinishParams{ChallengeID: prep.ChallengeID, Attestation: att})
	require.NoError(t, err)
	require.Equal(t, "Ada", res.User.DisplayName)
	require.Equal(t, domain.RoleAdmin, res.User.Role)
	require.True(t, res.User.Active)

	t.Run("token carries role and a 30 day lifetime", func(t *testing.T) {
		claims, err := h.verifier.Verify(res.Token)
		require.NoError(t, err)
		require.Equal(t, res.User.ID, claims.Subject)
		require.Equal(t, "admin", claims.Role)
		require.Equal(t, int64(2592000), claims.ExpiresAt.Unix()-claims.IssuedAt.Unix())
	})

	t.Run("one credential with counter zero", func(t *testing.T) {
		creds, err := h.store.Credentials().ListActiveCredentialsByUser(ctx, res.User.ID)
		require.NoError(t, err)
		require.Len(t, creds, 1)
		require.Equal(t, uint32(0), creds[0].SignCount)
		require.Equal(t, auth.CredentialID, creds[0].CredentialID)
		require.Equal(t, webauthnx.AlgES256, creds[0].Algorithm)
		require.Equal(t, []string{"internal"}, creds[0].Transports)
	})

	t.Run("invite is used", func(t *testing.T) {
		_, err := h.invites.Redeemable(ctx, token)
		require.ErrorIs(t, err, service.ErrInviteUsed)
	})

	t.Run("second finish with the same challenge fails", func(t *testing.T) {
		_, err := h.registration.Finish(ctx, testRP, service.RegisterFinishParams{ChallengeID: prep.ChallengeID, Attestation: att})
		require.ErrorIs(t, err, service.ErrChallengeNotFound)
		require.Equal(t, service.KindChallenge, service.KindOf(err))
	})
}

func TestRegistration_PrepareRejects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)

	expired, err := h.invites.Mint(ctx, domain.RoleUser, time.Hour, "")
	require.NoError(t, err)
	h.invites.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = h.invites.Redeemable(ctx, expired.Token)
	require.ErrorIs(t, err, service.ErrInviteExpired)
	h.invites.Now = nil

	tests := []struct {
		name    string
		params  service.RegisterPrepareParams
		wantErr error
	}{
		{"unknown invite", service.RegisterPrepareParams{InviteToken: "abc123", DisplayName: "Ada"}, service.ErrInviteInvalid},
		{"missing invite", service.RegisterPrepareParams{DisplayName: "Ada"}, service.ErrInvalidRequest},
		{"blank display name", service.RegisterPrepareParams{InviteToken: "abc123", DisplayName: "   "}, service.ErrInvalidDisplayName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.registration.Prepare(ctx, testRP, tt.params)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistration_OriginMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)

	auth, err := webauthntest.New(testRP.ID, "https://evil.example")
	require.NoError(t, err)

	prep, err := h.registration.Prepare(ctx, testRP, service.RegisterPrepareParams{InviteToken: h.mintInvite(t, domain.RoleUser), DisplayName: "Ada"})
	require.NoError(t, err)

	att, err := auth.Register(prep.Options.Challenge)
	require.NoError(t, err)

	_, err = h.registration.Finish(ctx, testRP, service.RegisterFinishParams{ChallengeID: prep.ChallengeID, Attestation: att})
	require.ErrorIs(t, err, service.ErrOriginMismatch)
	require.Equal(t, service.KindOrigin, service.KindOf(err))
}

func TestRegistration_DuplicateCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)

	auth, _ := h.register(t, domain.RoleUser)

	prep, err := h.registration.Prepare(ctx, testRP, service.RegisterPrepareParams{InviteToken: h.mintInvite(t, domain.RoleUser), DisplayName: "Ada"})
	require.NoError(t, err)
	att, err := auth.Register(prep.Options.Challenge)
	require.NoError(t, err)

	_, err = h.registration.Finish(ctx, testRP, service.RegisterFinishParams{ChallengeID: prep.ChallengeID, Attestation: att})
	require.ErrorIs(t, err, service.ErrCredentialExists)
}

func TestFinish_ExpiredChallenge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)
	auth, res := h.register(t, domain.RoleUser)

	now := time.Now().UTC()
	seed := func(t *testing.T, typ domain.ChallengeType, inviteID string) domain.Challenge {
		t.Helper()
		ch := domain.Challenge{
			ID:        string(typ) + "-expired",
			Challenge: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
			Type:      typ,
			InviteID:  inviteID,
			UserID:    res.User.ID,
			ExpiresAt: now.Add(-time.Second),
			CreatedAt: now.Add(-time.Minute),
		}
		require.NoError(t, h.store.Challenges().CreateChallenge(ctx, ch))
		return ch
	}

	t.Run("register finish", func(t *testing.T) {
		inv, err := h.invites.Mint(ctx, domain.RoleUser, time.Hour, "")
		require.NoError(t, err)
		ch := seed(t, domain.ChallengeRegistration, inv.Invite.ID)

		fresh, err := webauthntest.New(testRP.ID, testRP.Origin)
		require.NoError(t, err)
		att, err := fresh.Register(ch.Challenge)
		require.NoError(t, err)

		_, err = h.registration.Finish(ctx, testRP, service.RegisterFinishParams{ChallengeID: ch.ID, Attestation: att})
		require.ErrorIs(t, err, service.ErrChallengeExpired)
	})

	t.Run("login finish", func(t *testing.T) {
		ch := seed(t, domain.ChallengeAuthentication, "")
		assertion, err := auth.Assert(ch.Challenge)
		require.NoError(t, err)

		_, err = h.login.Finish(ctx, testRP, service.LoginFinishParams{ChallengeID: ch.ID, Assertion: assertion})
		require.ErrorIs(t, err, service.ErrChallengeExpired)
	})
}

func TestChallenge_ConsumeOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)

	ch, err := h.challenges.Issue(ctx, service.ChallengeBinding{Type: domain.ChallengeAuthentication})
	require.NoError(t, err)
	require.Len(t, ch.Challenge, 43)
	require.WithinDuration(t, time.Now().Add(service.DefaultChallengeTTL), ch.ExpiresAt, 5*time.Second)

	got, err := h.challenges.Consume(ctx, ch.ID, domain.ChallengeAuthentication)
	require.NoError(t, err)
	require.Equal(t, ch.Challenge, got.Challenge)

	_, err = h.challenges.Consume(ctx, ch.ID, domain.ChallengeAuthentication)
	require.ErrorIs(t, err, service.ErrChallengeNotFound)

	t.Run("wrong type", func(t *testing.T) {
		ch, err := h.challenges.Issue(ctx, service.ChallengeBinding{Type: domain.ChallengeRegistration})
		require.NoError(t, err)
		_, err = h.challenges.Consume(ctx, ch.ID, domain.ChallengeAuthentication)
		require.ErrorIs(t, err, service.ErrChallengeTypeMismatch)
	})
}

func TestClampChallengeTTL(t *testing.T) {
	t.Parallel()
	require.Equal(t, service.DefaultChallengeTTL, service.ClampChallengeTTL(0))
	require.Equal(t, service.MinChallengeTTL, service.ClampChallengeTTL(time.Second))
	require.Equal(t, service.MaxChallengeTTL, service.ClampChallengeTTL(time.Hour))
	require.Equal(t, 3*time.Minute, service.ClampChallengeTTL(3*time.Minute))
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)
	auth, reg := h.register(t, domain.RoleUser)

	t.Run("prepare lists credentials for a known user", func(t *testing.T) {
		prep, err := h.login.Prepare(ctx, testRP, reg.User.ID)
		require.NoError(t, err)
		require.Len(t, prep.Options.AllowCredentials, 1)
		require.Equal(t, auth.CredentialIDString(), prep.Options.AllowCredentials[0].ID)
		require.Equal(t, "required", prep.Options.UserVerification)
		require.Equal(t, testRP.ID, prep.Options.RPID)
	})

	t.Run("prepare without user omits allowCredentials", func(t *testing.T) {
		prep, err := h.login.Prepare(ctx, testRP, "")
		require.NoError(t, err)
		require.Empty(t, prep.Options.AllowCredentials)
	})

	t.Run("discoverable login succeeds", func(t *testing.T) {
		res, err := h.loginWith(t, auth, "")
		require.NoError(t, err)
		require.Equal(t, reg.User.ID, res.User.ID)
		require.NotNil(t, res.User.LastSeenAt)

		claims, err := h.verifier.Verify(res.Token)
		require.NoError(t, err)
		require.Equal(t, "user", claims.Role)
	})

	t.Run("bound to another user", func(t *testing.T) {
		_, err := h.loginWith(t, auth, "someone-else")
		require.ErrorIs(t, err, service.ErrCredentialNotFound)
		require.Equal(t, service.KindCredential, service.KindOf(err))
	})

	t.Run("wrong origin", func(t *testing.T) {
		auth.Origin = "https://evil.example"
		defer func() { auth.Origin = testRP.Origin }()
		_, err := h.loginWith(t, auth, reg.User.ID)
		require.ErrorIs(t, err, service.ErrOriginMismatch)
	})

	t.Run("unknown credential", func(t *testing.T) {
		other, err := webauthntest.New(testRP.ID, testRP.Origin)
		require.NoError(t, err)
		_, err = h.loginWith(t, other, "")
		require.ErrorIs(t, err, service.ErrCredentialNotFound)
	})
}

func TestLogin_SignatureInvalid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)
	auth, reg := h.register(t, domain.RoleUser)

	prep, err := h.login.Prepare(ctx, testRP, reg.User.ID)
	require.NoError(t, err)
	assertion, err := auth.Assert(prep.Options.Challenge)
	require.NoError(t, err)

	// Sign over a different challenge and splice the signature in.
	forged, err := auth.Assert("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)
	assertion.Response.Signature = forged.Response.Signature

	_, err = h.login.Finish(ctx, testRP, service.LoginFinishParams{ChallengeID: prep.ChallengeID, Assertion: assertion})
	require.ErrorIs(t, err, service.ErrSignatureInvalid)
	require.Equal(t, service.KindSignature, service.KindOf(err))
}

func TestLogin_CounterReplay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)
	auth, reg := h.register(t, domain.RoleUser, webauthntest.WithSignCount(5))

	stored := func(t *testing.T) uint32 {
		t.Helper()
		c, err := h.store.Credentials().GetCredentialByCredentialID(ctx, auth.CredentialID)
		require.NoError(t, err)
		return c.SignCount
	}
	require.Equal(t, uint32(5), stored(t))

	// Assert increments before signing, so next-1 is set here.
	tests := []struct {
		name    string
		next    uint32
		wantErr error
		want    uint32
	}{
		{"equal counter", 5, service.ErrCounterReplay, 5},
		{"lower counter", 3, service.ErrCounterReplay, 5},
		{"higher counter", 6, nil, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth.SignCount = tt.next - 1
			_, err := h.loginWith(t, auth, reg.User.ID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, service.KindReplay, service.KindOf(err))
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, stored(t))
		})
	}
}

func TestLogin_Deactivated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)
	auth, reg := h.register(t, domain.RoleUser)

	require.NoError(t, h.users.SetActive(ctx, reg.User.ID, false))
	_, err := h.loginWith(t, auth, reg.User.ID)
	require.ErrorIs(t, err, service.ErrUserDeactivated)

	require.NoError(t, h.users.SetActive(ctx, reg.User.ID, true))
	_, err = h.loginWith(t, auth, reg.User.ID)
	require.NoError(t, err)

	creds, err := h.users.ListCredentials(ctx, reg.User.ID)
	require.NoError(t, err)
	require.Len(t, creds, 1)

	require.NoError(t, h.users.RevokeCredential(ctx, creds[0].ID))
	_, err = h.loginWith(t, auth, reg.User.ID)
	require.ErrorIs(t, err, service.ErrCredentialRevoked)

	require.ErrorIs(t, h.users.SetActive(ctx, "missing", false), service.ErrUserNotFound)
}

func TestInvite_Generate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)

	_, admin := h.register(t, domain.RoleAdmin)
	_, member := h.register(t, domain.RoleUser)

	t.Run("admin with defaults", func(t *testing.T) {
		inv, err := h.invites.Generate(ctx, service.GenerateInviteParams{CallerID: admin.User.ID, BaseURL: "https://app.example/"})
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, inv.Invite.Role)
		require.Equal(t, admin.User.ID, inv.Invite.CreatedBy)
		require.Equal(t, "https://app.example?invite="+inv.Token, inv.URL)
		require.WithinDuration(t, time.Now().Add(24*time.Hour), inv.Invite.ExpiresAt, 5*time.Second)

		got, err := h.invites.Redeemable(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, inv.Invite.ID, got.ID)
	})

	tests := []struct {
		name     string
		params   service.GenerateInviteParams
		wantErr  error
		wantKind service.Kind
	}{
		{"non-admin caller", service.GenerateInviteParams{CallerID: member.User.ID}, service.ErrCallerNotAdmin, service.KindAuthorization},
		{"unknown caller", service.GenerateInviteParams{CallerID: "ghost"}, service.ErrCallerNotAdmin, service.KindAuthorization},
		{"bad role", service.GenerateInviteParams{CallerID: admin.User.ID, Role: "root"}, service.ErrInvalidInviteRole, service.KindValidation},
		{"too long", service.GenerateInviteParams{CallerID: admin.User.ID, ExpiresInHours: 10000}, service.ErrInvalidInviteExpiry, service.KindValidation},
		{"negative", service.GenerateInviteParams{CallerID: admin.User.ID, ExpiresInHours: -1}, service.ErrInvalidInviteExpiry, service.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.invites.Generate(ctx, tt.params)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantKind, service.KindOf(err))
		})
	}

	t.Run("deactivated admin", func(t *testing.T) {
		require.NoError(t, h.users.SetActive(ctx, admin.User.ID, false))
		_, err := h.invites.Generate(ctx, service.GenerateInviteParams{CallerID: admin.User.ID})
		require.ErrorIs(t, err, service.ErrCallerInactive)
	})
}

func TestInvite_GenerateSubHourDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)
	_, admin := h.register(t, domain.RoleAdmin)

	pol, err := policy.NewInvitePolicy(ctx)
	require.NoError(t, err)
	invites := &service.InviteService{Store: h.store, Policy: pol, DefaultTTL: 30 * time.Minute}

	inv, err := invites.Generate(ctx, service.GenerateInviteParams{CallerID: admin.User.ID})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), inv.Invite.ExpiresAt, 5*time.Second)
}

func TestUser_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, sqlite.MemoryPath)

	_, admin := h.register(t, domain.RoleAdmin)
	_, member := h.register(t, domain.RoleUser)
	_, other := h.register(t, domain.RoleUser)

	tests := []struct {
		name     string
		caller   string
		target   string
		wantErr  error
		wantKind service.Kind
	}{
		{"self", admin.User.ID, admin.User.ID, service.ErrCannotDeleteSelf, service.KindValidation},
		{"missing target", admin.User.ID, "", service.ErrInvalidRequest, service.KindValidation},
		{"unknown target", admin.User.ID, "ghost", service.ErrUserNotFound, service.KindValidation},
		{"non-admin caller", member.User.ID, other.User.ID, service.ErrCallerNotAdmin, service.KindAuthorization},
		{"unknown caller", "ghost", other.User.ID, service.ErrCallerNotAdmin, service.KindAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.users.Delete(ctx, tt.caller, tt.target)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantKind, service.KindOf(err))
		})
	}

	t.Run("admin deletes member", func(t *testing.T) {
		require.NoError(t, h.users.Delete(ctx, admin.User.ID, member.User.ID))

		_, err := h.store.Users().GetUserByID(ctx, member.User.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		creds, err := h.store.Credentials().ListActiveCredentialsByUser(ctx, member.User.ID)
		require.NoError(t, err)
		require.Empty(t, creds)

		require.ErrorIs(t, h.users.Delete(ctx, admin.User.ID, member.User.ID), service.ErrUserNotFound)
	})

	t.Run("operator skips caller checks", func(t *testing.T) {
		require.NoError(t, h.users.Delete(ctx, "", other.User.ID))
	})

	t.Run("deactivated admin", func(t *testing.T) {
		_, target := h.register(t, domain.RoleUser)
		require.NoError(t, h.users.SetActive(ctx, admin.User.ID, false))
		require.ErrorIs(t, h.users.Delete(ctx, admin.User.ID, target.User.ID), service.ErrCallerInactive)
	})
}

func TestRegistration_ConcurrentInviteUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, filepath.Join(t.TempDir(), "passkey.db"))

	token := h.mintInvite(t, domain.RoleUser)

	const attempts = 2
	params := make([]service.RegisterFinishParams, attempts)
	for i := range params {
		auth, err := webauthntest.New(testRP.ID, testRP.Origin)
		require.NoError(t, err)
		prep, err := h.registration.Prepare(ctx, testRP, service.RegisterPrepareParams{InviteToken: token, DisplayName: "Ada"})
		require.NoError(t, err)
		att, err := auth.Register(prep.Options.Challenge)
		require.NoError(t, err)
		params[i] = service.RegisterFinishParams{ChallengeID: prep.ChallengeID, Attestation: att}
	}

	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range params {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.registration.Finish(ctx, testRP, params[i])
		}()
	}
	wg.Wait()

	var ok, used int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case service.KindOf(err) == service.KindInvite:
			used++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, used)
}
