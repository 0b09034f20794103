package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/metrics"
	"github.com/aussiebroadwan/passkey/internal/passkey/service"
	"github.com/aussiebroadwan/passkey/pkg/httpx"
	"github.com/aussiebroadwan/passkey/pkg/passkeysdk"
)

type LoginHandler struct {
	Service *service.LoginService
	RP      RPConfig
	Metrics *metrics.Metrics
}

// HandlePrepare godoc
//
//	@Summary		Start Passkey Login
//	@Description	Returns WebAuthn credential request options. With a userId the user's active credentials are listed in allowCredentials.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		passkeysdk.LoginPrepareRequest	false	"Optional user id"
//	@Success		200		{object}	passkeysdk.LoginPrepareResponse	"challengeId, publicKey"
//	@Failure		429		{object}	passkeysdk.ErrorResponse		"rate limited"
//	@Failure		500		{object}	passkeysdk.ErrorResponse		"internal server error"
//	@Router			/login/prepare [post].
func (h *LoginHandler) HandlePrepare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req passkeysdk.LoginPrepareRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	res, err := h.Service.Prepare(r.Context(), h.RP.resolve(r), req.UserID)
	observe(h.Metrics, metrics.CeremonyLoginPrepare, start, err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, passkeysdk.LoginPrepareResponse{
		ChallengeID: res.ChallengeID,
		PublicKey:   res.Options,
	})
}

// HandleFinish godoc
//
//	@Summary		Complete Passkey Login
//	@Description	Verifies the assertion signature and counter and returns a session token.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		passkeysdk.LoginFinishRequest	true	"Challenge id and assertion"
//	@Success		200		{object}	passkeysdk.AuthResponse			"success, user, token"
//	@Failure		400		{object}	passkeysdk.ErrorResponse		"challenge, origin or counter error"
//	@Failure		401		{object}	passkeysdk.ErrorResponse		"signature invalid"
//	@Failure		403		{object}	passkeysdk.ErrorResponse		"user deactivated"
//	@Failure		404		{object}	passkeysdk.ErrorResponse		"credential not found"
//	@Failure		429		{object}	passkeysdk.ErrorResponse		"rate limited"
//	@Failure		500		{object}	passkeysdk.ErrorResponse		"internal server error"
//	@Router			/login/finish [post].
func (h *LoginHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req passkeysdk.LoginFinishRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ChallengeID == "" {
		writeBadRequest(w, "challengeId is required")
		return
	}

	res, err := h.Service.Finish(r.Context(), h.RP.resolve(r), service.LoginFinishParams{
		ChallengeID: req.ChallengeID,
		Assertion:   req.Assertion,
	})
	observe(h.Metrics, metrics.CeremonyLoginFinish, start, err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authResponse(res))
}
