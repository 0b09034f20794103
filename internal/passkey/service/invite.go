package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/policy"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/pkg/cryptox"
	"github.com/aussiebroadwan/passkey/pkg/idx"
	"github.com/aussiebroadwan/passkey/pkg/slogx"
)

const (
	DefaultInviteTTL = 24 * time.Hour
	MaxInviteTTL     = 30 * 24 * time.Hour
)

type InviteService struct {
	Store  store.Store
	Policy *policy.InvitePolicy

	DefaultTTL time.Duration
	MaxTTL     time.Duration
	Now        func() time.Time
}

// GenerateInviteParams is an invite request from an authenticated caller.
// Zero Role and ExpiresInHours select the defaults.
type GenerateInviteParams struct {
	CallerID       string
	Role           domain.Role
	ExpiresInHours int
	// BaseURL is the page the invite link points at.
	BaseURL string
}

// GeneratedInvite carries the raw token. It is only ever returned once.
type GeneratedInvite struct {
	Invite domain.Invite
	Token  string
	URL    string
}

// Generate checks the caller against the invite policy and mints an invite.
func (s *InviteService) Generate(ctx context.Context, p GenerateInviteParams) (GeneratedInvite, error) {
	log := slogx.FromContext(ctx)

	if p.Role == "" {
		p.Role = domain.RoleUser
	}
	if p.ExpiresInHours == 0 {
		p.ExpiresInHours = wholeHours(s.defaultTTL())
	}

	// 1. The bearer token only says who the caller was; check who they are now.
	caller, err := s.Store.Users().GetUserByID(ctx, p.CallerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite requested by unknown user", slog.String("caller_id", p.CallerID))
			return GeneratedInvite{}, ErrCallerNotAdmin.wrap(err)
		}
		log.Error("failed to fetch caller", slog.Any("error", err))
		return GeneratedInvite{}, err
	}

	// 2. Ask the policy.
	decision, err := s.Policy.Evaluate(ctx, policy.InviteInput{
		CallerRole:     string(caller.Role),
		CallerActive:   caller.Active,
		Role:           string(p.Role),
		ExpiresInHours: p.ExpiresInHours,
		MaxHours:       wholeHours(s.maxTTL()),
	})
	if err != nil {
		log.Error("failed to evaluate invite policy", slog.Any("error", err))
		return GeneratedInvite{}, err
	}
	if !decision.Allow {
		log.Warn("invite request denied",
			slog.String("caller_id", caller.ID),
			slog.String("role", string(p.Role)),
			slog.Any("reasons", decision.Reasons),
		)
		switch {
		case decision.Has(policy.ReasonCallerInactive):
			return GeneratedInvite{}, ErrCallerInactive
		case decision.Has(policy.ReasonCallerNotAdmin):
			return GeneratedInvite{}, ErrCallerNotAdmin
		case decision.Has(policy.ReasonInvalidRole):
			return GeneratedInvite{}, ErrInvalidInviteRole
		default:
			return GeneratedInvite{}, ErrInvalidInviteExpiry
		}
	}

	// 3. Mint.
	inv, err := s.Mint(ctx, p.Role, time.Duration(p.ExpiresInHours)*time.Hour, caller.ID)
	if err != nil {
		return GeneratedInvite{}, err
	}
	inv.URL = InviteURL(p.BaseURL, inv.Token)
	return inv, nil
}

// Mint creates an invite without a policy check. createdBy is empty for
// invites minted from the command line.
func (s *InviteService) Mint(ctx context.Context, role domain.Role, ttl time.Duration, createdBy string) (GeneratedInvite, error) {
	log := slogx.FromContext(ctx)

	if !role.Valid() {
		return GeneratedInvite{}, ErrInvalidInviteRole
	}
	if ttl <= 0 || ttl > s.maxTTL() {
		return GeneratedInvite{}, ErrInvalidInviteExpiry
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return GeneratedInvite{}, err
	}

	now := nowFunc(s.Now)
	inv := domain.Invite{
		ID:        idx.NewAt(now).String(),
		TokenHash: cryptox.FingerprintToken(token),
		Role:      role,
		CreatedBy: createdBy,
		ExpiresAt: now.Add(ttl).Truncate(time.Second),
		CreatedAt: now,
	}
	if err := s.Store.Invites().CreateInvite(ctx, inv); err != nil {
		log.Error("failed to create invite",
			slog.String("invite_id", inv.ID),
			slog.Any("error", err),
		)
		return GeneratedInvite{}, err
	}

	log.Info("invite created",
		slog.String("invite_id", inv.ID),
		slog.String("role", string(role)),
		slog.String("created_by", createdBy),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return GeneratedInvite{Invite: inv, Token: token}, nil
}

// Redeemable looks up an invite by its raw token and checks that it can still
// be used. It does not mark it used.
func (s *InviteService) Redeemable(ctx context.Context, token string) (domain.Invite, error) {
	if token == "" {
		return domain.Invite{}, ErrInviteInvalid
	}
	inv, err := s.Store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invite{}, ErrInviteInvalid.wrap(err)
		}
		return domain.Invite{}, err
	}
	return inv, checkUsable(inv, nowFunc(s.Now))
}

func checkUsable(inv domain.Invite, now time.Time) error {
	switch {
	case inv.Used:
		return ErrInviteUsed
	case inv.Expired(now):
		return ErrInviteExpired
	}
	return nil
}

func (s *InviteService) defaultTTL() time.Duration {
	if s.DefaultTTL > 0 {
		return s.DefaultTTL
	}
	return DefaultInviteTTL
}

func (s *InviteService) maxTTL() time.Duration {
	if s.MaxTTL > 0 {
		return s.MaxTTL
	}
	return MaxInviteTTL
}

// wholeHours rounds d up so a sub-hour lifetime still yields a valid expiry.
func wholeHours(d time.Duration) int {
	return int((d + time.Hour - 1) / time.Hour)
}

// InviteURL is the shareable registration link for token.
func InviteURL(base, token string) string {
	return strings.TrimRight(base, "/") + "?invite=" + token
}
