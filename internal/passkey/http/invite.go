package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/metrics"
	"github.com/aussiebroadwan/passkey/internal/passkey/service"
	"github.com/aussiebroadwan/passkey/pkg/httpx"
	"github.com/aussiebroadwan/passkey/pkg/passkeysdk"
)

type InviteHandler struct {
	Service *service.InviteService
	RP      RPConfig
	Metrics *metrics.Metrics
}

// ServeHTTP godoc
//
//	@Summary		Generate Invite
//	@Description	Mint a single-use registration invite. Admin-only; the caller's role and active flag are re-checked against the store.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		passkeysdk.GenerateInviteRequest	true	"Role and lifetime"
//	@Success		200		{object}	passkeysdk.GenerateInviteResponse	"success, inviteToken, inviteUrl, expiresAt"
//	@Failure		400		{object}	passkeysdk.ErrorResponse			"invalid role or expiry"
//	@Failure		401		{object}	passkeysdk.ErrorResponse			"missing or invalid token"
//	@Failure		403		{object}	passkeysdk.ErrorResponse			"caller is not an active admin"
//	@Failure		500		{object}	passkeysdk.ErrorResponse			"internal server error"
//	@Security		BearerAuth
//	@Router			/invite/generate [post].
func (h *InviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, passkeysdk.ErrorResponse{
			Error: "authentication required",
			Code:  passkeysdk.CodeUnauthorized,
		})
		return
	}

	var req passkeysdk.GenerateInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	inv, err := h.Service.Generate(ctx, service.GenerateInviteParams{
		CallerID:       userID,
		Role:           domain.Role(req.Role),
		ExpiresInHours: req.ExpiresInHours,
		BaseURL:        h.RP.inviteBase(r),
	})
	observe(h.Metrics, metrics.CeremonyInviteGenerate, start, err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, passkeysdk.GenerateInviteResponse{
		Success:     true,
		InviteToken: inv.Token,
		InviteURL:   inv.URL,
		ExpiresAt:   inv.Invite.ExpiresAt,
	})
}
