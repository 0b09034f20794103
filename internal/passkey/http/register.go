package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/metrics"
	"github.com/aussiebroadwan/passkey/internal/passkey/service"
	"github.com/aussiebroadwan/passkey/pkg/httpx"
	"github.com/aussiebroadwan/passkey/pkg/passkeysdk"
)

type RegisterHandler struct {
	Service *service.RegistrationService
	RP      RPConfig
	Metrics *metrics.Metrics
}

// HandlePrepare godoc
//
//	@Summary		Start Passkey Registration
//	@Description	Validates an invite and returns WebAuthn credential creation options. The relying party id is the request hostname.
//	@Tags			Registration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		passkeysdk.RegisterPrepareRequest	true	"Invite token and display name"
//	@Success		200		{object}	passkeysdk.RegisterPrepareResponse	"challengeId, publicKey, role"
//	@Failure		400		{object}	passkeysdk.ErrorResponse			"invalid, used or expired invite"
//	@Failure		429		{object}	passkeysdk.ErrorResponse			"rate limited"
//	@Failure		500		{object}	passkeysdk.ErrorResponse			"internal server error"
//	@Router			/register/prepare [post].
func (h *RegisterHandler) HandlePrepare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req passkeysdk.RegisterPrepareRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	res, err := h.Service.Prepare(r.Context(), h.RP.resolve(r), service.RegisterPrepareParams{
		InviteToken: req.InviteToken,
		DisplayName: req.DisplayName,
	})
	observe(h.Metrics, metrics.CeremonyRegisterPrepare, start, err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, passkeysdk.RegisterPrepareResponse{
		ChallengeID: res.ChallengeID,
		PublicKey:   res.Options,
		Role:        string(res.Role),
	})
}

// HandleFinish godoc
//
//	@Summary		Complete Passkey Registration
//	@Description	Verifies the attestation, creates the user and credential, consumes the invite and returns a session token.
//	@Tags			Registration
//	@Accept			json
//	@Produce		json
//	@Param			request	body		passkeysdk.RegisterFinishRequest	true	"Challenge id and attestation"
//	@Success		200		{object}	passkeysdk.AuthResponse				"success, user, token"
//	@Failure		400		{object}	passkeysdk.ErrorResponse			"challenge, origin or invite error"
//	@Failure		429		{object}	passkeysdk.ErrorResponse			"rate limited"
//	@Failure		500		{object}	passkeysdk.ErrorResponse			"user or credential creation failed"
//	@Router			/register/finish [post].
func (h *RegisterHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req passkeysdk.RegisterFinishRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ChallengeID == "" {
		writeBadRequest(w, "challengeId is required")
		return
	}

	res, err := h.Service.Finish(r.Context(), h.RP.resolve(r), service.RegisterFinishParams{
		ChallengeID: req.ChallengeID,
		Attestation: req.Attestation,
		DisplayName: req.DisplayName,
	})
	observe(h.Metrics, metrics.CeremonyRegisterFinish, start, err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authResponse(res))
}

func authResponse(res service.AuthResult) passkeysdk.AuthResponse {
	return passkeysdk.AuthResponse{
		Success: true,
		User: passkeysdk.UserSummary{
			ID:          res.User.ID,
			DisplayName: res.User.DisplayName,
			Role:        string(res.User.Role),
		},
		Token: res.Token,
	}
}
