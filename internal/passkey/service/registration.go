package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/pkg/cryptox"
	"github.com/aussiebroadwan/passkey/pkg/idx"
	"github.com/aussiebroadwan/passkey/pkg/slogx"
	"github.com/aussiebroadwan/passkey/pkg/webauthnx"
	"github.com/google/uuid"
)

// RegistrationService runs invite-gated passkey registration.
type RegistrationService struct {
	Store      store.Store
	Challenges *ChallengeService
	Invites    *InviteService
	Sessions   *SessionService
}

type RegisterPrepareParams struct {
	InviteToken string
	DisplayName string
}

type RegisterPrepareResult struct {
	ChallengeID string
	Options     webauthnx.CreationOptions
	Role        domain.Role
}

// Prepare validates the invite and issues a registration challenge bound to
// it and to a freshly generated user handle.
func (s *RegistrationService) Prepare(ctx context.Context, rp RelyingParty, p RegisterPrepareParams) (RegisterPrepareResult, error) {
	log := slogx.FromContext(ctx)

	if !rp.valid() || p.InviteToken == "" {
		return RegisterPrepareResult{}, ErrInvalidRequest
	}
	displayName, err := normalizeDisplayName(p.DisplayName)
	if err != nil {
		return RegisterPrepareResult{}, err
	}

	inv, err := s.Invites.Redeemable(ctx, p.InviteToken)
	if err != nil {
		log.Warn("registration prepare with unusable invite", slog.Any("error", err))
		return RegisterPrepareResult{}, err
	}

	// The user handle becomes the user's id if registration completes.
	userID := uuid.NewString()

	ch, err := s.Challenges.Issue(ctx, ChallengeBinding{
		Type:        domain.ChallengeRegistration,
		InviteID:    inv.ID,
		UserID:      userID,
		DisplayName: displayName,
	})
	if err != nil {
		return RegisterPrepareResult{}, err
	}

	log.Debug("registration challenge issued",
		slog.String("challenge_id", ch.ID),
		slog.String("invite_id", inv.ID),
	)

	return RegisterPrepareResult{
		ChallengeID: ch.ID,
		Role:        inv.Role,
		Options: webauthnx.CreationOptions{
			Challenge: ch.Challenge,
			RP:        webauthnx.RelyingPartyEntity{Name: rp.Name, ID: rp.ID},
			User: webauthnx.UserEntity{
				ID:          cryptox.EncodeBase64URL([]byte(userID)),
				Name:        displayName,
				DisplayName: displayName,
			},
			PubKeyCredParams: webauthnx.SupportedCredentialParameters(),
			AuthenticatorSelection: webauthnx.AuthenticatorSelection{
				AuthenticatorAttachment: "platform",
				RequireResidentKey:      false,
				UserVerification:        userVerificationRequired,
			},
			Timeout:     timeoutMillis(),
			Attestation: "none",
		},
	}, nil
}

type RegisterFinishParams struct {
	ChallengeID string
	Attestation webauthnx.AttestationCredential
	// DisplayName overrides the name given at prepare time when set.
	DisplayName string
}

// Finish verifies the attestation and creates the user and credential. The
// user, credential and invite redemption are written in one transaction.
func (s *RegistrationService) Finish(ctx context.Context, rp RelyingParty, p RegisterFinishParams) (AuthResult, error) {
	log := slogx.FromContext(ctx)

	if !rp.valid() {
		return AuthResult{}, ErrInvalidRequest
	}

	// 1. Consume the challenge. Every later failure needs a new prepare.
	ch, err := s.Challenges.Consume(ctx, p.ChallengeID, domain.ChallengeRegistration)
	if err != nil {
		return AuthResult{}, err
	}
	log = log.With(slog.String("challenge_id", ch.ID), slog.String("invite_id", ch.InviteID))

	displayName := ch.DisplayName
	if p.DisplayName != "" {
		if displayName, err = normalizeDisplayName(p.DisplayName); err != nil {
			return AuthResult{}, err
		}
	}

	// 2. Verify client data, authenticator data and extract the key.
	reg, err := webauthnx.VerifyRegistration(p.Attestation, webauthnx.RegistrationExpectation{
		Challenge:               ch.Challenge,
		Origin:                  rp.Origin,
		RPID:                    rp.ID,
		RequireUserVerification: true,
	})
	if err != nil {
		log.Warn("attestation rejected", slog.Any("error", err))
		return AuthResult{}, mapWebAuthnError(err)
	}

	// 3. Re-check the invite; it may have been used or expired since prepare.
	inv, err := s.Store.Invites().GetInviteByID(ctx, ch.InviteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, ErrInviteInvalid.wrap(err)
		}
		log.Error("failed to fetch invite", slog.Any("error", err))
		return AuthResult{}, err
	}
	now := nowFunc(s.Challenges.Now)
	if err := checkUsable(inv, now); err != nil {
		return AuthResult{}, err
	}

	user := domain.User{
		ID:          ch.UserID,
		DisplayName: displayName,
		Role:        inv.Role,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	cred := domain.Credential{
		ID:           idx.NewAt(now).String(),
		UserID:       user.ID,
		CredentialID: reg.CredentialID,
		PublicKey:    reg.PublicKey,
		Algorithm:    reg.Algorithm,
		SignCount:    reg.SignCount,
		AAGUID:       reg.AAGUID,
		Transports:   reg.Transports,
		CreatedAt:    now,
	}

	// 4. User, credential and invite redemption commit together.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.Credentials().CreateCredential(ctx, cred); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrCredentialExists.wrap(err)
			}
			return err
		}
		if err := tx.Invites().MarkInviteUsed(ctx, inv.ID, user.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInviteUsed.wrap(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindStore {
			log.Error("failed to create user", slog.Any("error", err))
		} else {
			log.Warn("registration rejected", slog.Any("error", err))
		}
		return AuthResult{}, err
	}

	token, err := s.Sessions.Issue(user)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return AuthResult{}, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.String("credential_id", cred.ID),
	)
	return AuthResult{User: user, Token: token}, nil
}
