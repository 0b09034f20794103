package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/metrics"
	"github.com/aussiebroadwan/passkey/internal/passkey/service"
	"github.com/aussiebroadwan/passkey/pkg/httpx"
	"github.com/aussiebroadwan/passkey/pkg/passkeysdk"
)

type UserHandler struct {
	Service *service.UserService
	Metrics *metrics.Metrics
}

// HandleDelete godoc
//
//	@Summary		Delete User
//	@Description	Remove an account and its credentials. Admin-only; admins cannot delete themselves.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		passkeysdk.DeleteUserRequest	true	"Account to delete"
//	@Success		200		{object}	passkeysdk.DeleteUserResponse	"success, message, deletedUserId"
//	@Failure		400		{object}	passkeysdk.ErrorResponse		"missing id, unknown user or self-deletion"
//	@Failure		401		{object}	passkeysdk.ErrorResponse		"missing or invalid token"
//	@Failure		403		{object}	passkeysdk.ErrorResponse		"caller is not an active admin"
//	@Failure		500		{object}	passkeysdk.ErrorResponse		"internal server error"
//	@Security		BearerAuth
//	@Router			/user/delete [post].
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	callerID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, passkeysdk.ErrorResponse{
			Error: "authentication required",
			Code:  passkeysdk.CodeUnauthorized,
		})
		return
	}

	var req passkeysdk.DeleteUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	err := h.Service.Delete(ctx, callerID, req.UserIDToDelete)
	observe(h.Metrics, metrics.CeremonyUserDelete, start, err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, passkeysdk.DeleteUserResponse{
		Success:       true,
		Message:       "User deleted successfully",
		DeletedUserID: req.UserIDToDelete,
	})
}
