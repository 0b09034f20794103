package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/pkg/cryptox"
	"github.com/aussiebroadwan/passkey/pkg/slogx"
	"github.com/aussiebroadwan/passkey/pkg/webauthnx"
)

// LoginService runs passkey authentication.
type LoginService struct {
	Store      store.Store
	Challenges *ChallengeService
	Sessions   *SessionService
}

type LoginPrepareResult struct {
	ChallengeID string
	Options     webauthnx.RequestOptions
}

// Prepare issues an authentication challenge. With a userID the challenge is
// bound to that user and their active credentials are listed; an unknown user
// gets the same response shape without allowCredentials.
func (s *LoginService) Prepare(ctx context.Context, rp RelyingParty, userID string) (LoginPrepareResult, error) {
	log := slogx.FromContext(ctx)

	if !rp.valid() {
		return LoginPrepareResult{}, ErrInvalidRequest
	}

	var allow []webauthnx.CredentialDescriptor
	if userID != "" {
		creds, err := s.Store.Credentials().ListActiveCredentialsByUser(ctx, userID)
		if err != nil {
			log.Error("failed to list credentials", slog.Any("error", err))
			return LoginPrepareResult{}, err
		}
		for _, c := range creds {
			allow = append(allow, credentialDescriptor(c.CredentialID, c.Transports))
		}
	}

	ch, err := s.Challenges.Issue(ctx, ChallengeBinding{
		Type:   domain.ChallengeAuthentication,
		UserID: userID,
	})
	if err != nil {
		return LoginPrepareResult{}, err
	}

	return LoginPrepareResult{
		ChallengeID: ch.ID,
		Options: webauthnx.RequestOptions{
			Challenge:        ch.Challenge,
			Timeout:          timeoutMillis(),
			RPID:             rp.ID,
			UserVerification: userVerificationRequired,
			AllowCredentials: allow,
		},
	}, nil
}

type LoginFinishParams struct {
	ChallengeID string
	Assertion   webauthnx.AssertionCredential
}

// Finish verifies an assertion and advances the credential's sign counter.
//
// The signature is checked before the counter so that an unauthenticated
// caller cannot probe the stored counter value.
func (s *LoginService) Finish(ctx context.Context, rp RelyingParty, p LoginFinishParams) (AuthResult, error) {
	log := slogx.FromContext(ctx)

	if !rp.valid() {
		return AuthResult{}, ErrInvalidRequest
	}

	// 1. Consume the challenge.
	ch, err := s.Challenges.Consume(ctx, p.ChallengeID, domain.ChallengeAuthentication)
	if err != nil {
		return AuthResult{}, err
	}
	log = log.With(slog.String("challenge_id", ch.ID))

	// 2. Resolve the credential.
	credentialID, userHandle, err := webauthnx.ParseAssertion(p.Assertion)
	if err != nil {
		return AuthResult{}, mapWebAuthnError(err)
	}
	cred, err := s.Store.Credentials().GetCredentialByCredentialID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("assertion for unknown credential")
			return AuthResult{}, ErrCredentialNotFound.wrap(err)
		}
		log.Error("failed to fetch credential", slog.Any("error", err))
		return AuthResult{}, err
	}
	if cred.Revoked {
		log.Warn("assertion for revoked credential", slog.String("credential_id", cred.ID))
		return AuthResult{}, ErrCredentialRevoked
	}
	log = log.With(slog.String("credential_id", cred.ID), slog.String("user_id", cred.UserID))

	// 3. The credential must belong to the user the challenge was bound to
	// and to the user handle the authenticator returned.
	if ch.UserID != "" && ch.UserID != cred.UserID {
		log.Warn("credential does not belong to challenged user")
		return AuthResult{}, ErrCredentialNotFound
	}
	if userHandle != nil && !cryptox.EqualBytes(userHandle, []byte(cred.UserID)) {
		log.Warn("user handle does not match credential owner")
		return AuthResult{}, ErrCredentialNotFound
	}

	// 4. Owner must be active.
	user, err := s.Store.Users().GetUserByID(ctx, cred.UserID)
	if err != nil {
		log.Error("failed to fetch credential owner", slog.Any("error", err))
		return AuthResult{}, err
	}
	if !user.Active {
		log.Warn("login attempt by deactivated user")
		return AuthResult{}, ErrUserDeactivated
	}

	// 5. Client data, authenticator data and signature.
	assertion, err := webauthnx.VerifyAssertion(p.Assertion, webauthnx.AssertionExpectation{
		Challenge:               ch.Challenge,
		Origin:                  rp.Origin,
		RPID:                    rp.ID,
		RequireUserVerification: true,
		PublicKey:               cred.PublicKey,
	})
	if err != nil {
		log.Warn("assertion rejected", slog.Any("error", err))
		return AuthResult{}, mapWebAuthnError(err)
	}

	// 6. Replay guard. The conditional update repeats the check so that two
	// concurrent assertions cannot both move the counter.
	if assertion.SignCount <= cred.SignCount {
		log.Warn("sign counter did not increase",
			slog.Uint64("stored", uint64(cred.SignCount)),
			slog.Uint64("asserted", uint64(assertion.SignCount)),
		)
		return AuthResult{}, ErrCounterReplay
	}

	now := nowFunc(s.Challenges.Now)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Credentials().UpdateSignCount(ctx, cred.ID, assertion.SignCount, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrCounterReplay.wrap(err)
			}
			return err
		}
		return tx.Users().TouchLastSeen(ctx, user.ID, now)
	})
	if err != nil {
		if KindOf(err) == KindStore {
			log.Error("failed to record login", slog.Any("error", err))
		}
		return AuthResult{}, err
	}
	user.LastSeenAt = &now

	token, err := s.Sessions.Issue(user)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return AuthResult{}, err
	}

	log.Info("user logged in")
	return AuthResult{User: user, Token: token}, nil
}
