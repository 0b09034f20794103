package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/pkg/slogx"
)

// UserService holds the administrative user operations. SetActive and the
// credential helpers back the CLI; Delete is also exposed to admins over HTTP.
type UserService struct {
	Store store.Store
}

// SetActive activates or deactivates a user. Deactivated users keep their
// credentials but cannot log in.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) error {
	if err := s.Store.Users().SetUserActive(ctx, userID, active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound.wrap(err)
		}
		return err
	}
	slogx.FromContext(ctx).Info("user active flag changed",
		slog.String("user_id", userID),
		slog.Bool("active", active),
	)
	return nil
}

// RevokeCredential permanently disables one credential by its row id.
func (s *UserService) RevokeCredential(ctx context.Context, id string) error {
	if err := s.Store.Credentials().RevokeCredential(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCredentialNotFound.wrap(err)
		}
		return err
	}
	slogx.FromContext(ctx).Info("credential revoked", slog.String("credential_id", id))
	return nil
}

func (s *UserService) ListCredentials(ctx context.Context, userID string) ([]domain.Credential, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound.wrap(err)
		}
		return nil, err
	}
	return s.Store.Credentials().ListActiveCredentialsByUser(ctx, userID)
}

// Delete removes targetID together with its credentials. callerID is the
// authenticated admin; an empty callerID is the operator CLI and skips the
// caller checks.
func (s *UserService) Delete(ctx context.Context, callerID, targetID string) error {
	if targetID == "" {
		return ErrInvalidRequest
	}
	if callerID != "" {
		if err := s.authorizeAdmin(ctx, callerID); err != nil {
			return err
		}
		if callerID == targetID {
			return ErrCannotDeleteSelf
		}
	}

	if err := s.Store.Users().DeleteUser(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound.wrap(err)
		}
		return err
	}
	slogx.FromContext(ctx).Info("user deleted",
		slog.String("user_id", targetID),
		slog.String("deleted_by", callerID),
	)
	return nil
}

func (s *UserService) authorizeAdmin(ctx context.Context, callerID string) error {
	caller, err := s.Store.Users().GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCallerNotAdmin.wrap(err)
		}
		return err
	}
	if !caller.Active {
		return ErrCallerInactive
	}
	if caller.Role != domain.RoleAdmin {
		return ErrCallerNotAdmin
	}
	return nil
}
