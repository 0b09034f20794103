package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/pkg/cryptox"
	"github.com/aussiebroadwan/passkey/pkg/slogx"
	"github.com/google/uuid"
)

const (
	DefaultChallengeTTL = 5 * time.Minute
	MinChallengeTTL     = 2 * time.Minute
	MaxChallengeTTL     = 5 * time.Minute
)

// ClampChallengeTTL keeps ttl within [MinChallengeTTL, MaxChallengeTTL]. Zero
// selects the default.
func ClampChallengeTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl == 0:
		return DefaultChallengeTTL
	case ttl < MinChallengeTTL:
		return MinChallengeTTL
	case ttl > MaxChallengeTTL:
		return MaxChallengeTTL
	}
	return ttl
}

// ChallengeService issues and consumes single-use ceremony challenges.
type ChallengeService struct {
	Store store.Store
	TTL   time.Duration
	Now   func() time.Time
}

// ChallengeBinding is what a challenge is issued for.
type ChallengeBinding struct {
	Type        domain.ChallengeType
	InviteID    string
	UserID      string
	DisplayName string
}

// Issue stores a fresh 32-byte challenge under a random UUID.
func (s *ChallengeService) Issue(ctx context.Context, b ChallengeBinding) (domain.Challenge, error) {
	value, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Challenge{}, err
	}

	now := nowFunc(s.Now)
	ch := domain.Challenge{
		ID:          uuid.NewString(),
		Challenge:   value,
		Type:        b.Type,
		InviteID:    b.InviteID,
		UserID:      b.UserID,
		DisplayName: b.DisplayName,
		ExpiresAt:   now.Add(ClampChallengeTTL(s.TTL)),
		CreatedAt:   now,
	}
	if err := s.Store.Challenges().CreateChallenge(ctx, ch); err != nil {
		slogx.FromContext(ctx).Error("failed to store challenge",
			slog.String("type", string(b.Type)),
			slog.Any("error", err),
		)
		return domain.Challenge{}, err
	}
	return ch, nil
}

// Consume fetches the challenge and deletes it. The delete is the single-use
// gate: when two callers race, only the one whose delete removed the row wins.
//
// A challenge of the wrong type is still deleted so it cannot be retried
// against the right endpoint.
func (s *ChallengeService) Consume(ctx context.Context, id string, want domain.ChallengeType) (domain.Challenge, error) {
	log := slogx.FromContext(ctx)

	if id == "" {
		return domain.Challenge{}, ErrChallengeNotFound
	}

	ch, err := s.Store.Challenges().GetChallenge(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Challenge{}, ErrChallengeNotFound.wrap(err)
		}
		log.Error("failed to fetch challenge", slog.Any("error", err))
		return domain.Challenge{}, err
	}

	if err := s.Store.Challenges().DeleteChallenge(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("challenge consumed concurrently", slog.String("challenge_id", id))
			return domain.Challenge{}, ErrChallengeNotFound.wrap(err)
		}
		log.Error("failed to delete challenge", slog.Any("error", err))
		return domain.Challenge{}, err
	}

	if ch.Type != want {
		log.Warn("challenge used for wrong ceremony",
			slog.String("challenge_id", id),
			slog.String("type", string(ch.Type)),
			slog.String("want", string(want)),
		)
		return domain.Challenge{}, ErrChallengeTypeMismatch
	}
	if ch.Expired(nowFunc(s.Now)) {
		return domain.Challenge{}, ErrChallengeExpired
	}
	return ch, nil
}
