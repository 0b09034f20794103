package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/metrics"
	"github.com/aussiebroadwan/passkey/internal/passkey/service"
	"github.com/aussiebroadwan/passkey/pkg/httpx"
	"github.com/aussiebroadwan/passkey/pkg/passkeysdk"
	"github.com/aussiebroadwan/passkey/pkg/slogx"
)

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindInvite, service.KindChallenge,
		service.KindOrigin, service.KindReplay:
		return http.StatusBadRequest
	case service.KindCredential:
		return http.StatusNotFound
	case service.KindAuthorization:
		return http.StatusForbidden
	case service.KindSignature:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err as JSON. Store failures are logged and
// answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	if kind == service.KindStore {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		httpx.WriteJSON(w, http.StatusInternalServerError, passkeysdk.ErrorResponse{Error: "internal server error"})
		return
	}

	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Code: kind.String(), Message: err.Error()}
	}
	httpx.WriteJSON(w, statusFor(kind), passkeysdk.ErrorResponse{Error: se.Message, Code: se.Code})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	httpx.WriteJSON(w, http.StatusBadRequest, passkeysdk.ErrorResponse{
		Error: msg,
		Code:  passkeysdk.CodeInvalidRequest,
	})
}

// observe records a ceremony step with the error kind as its outcome.
func observe(m *metrics.Metrics, ceremony string, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = service.KindOf(err).String()
	}
	m.ObserveCeremony(ceremony, outcome, time.Since(start))
}

func hasPathSuffix(path, suffix string) bool {
	return strings.HasSuffix(strings.TrimRight(path, "/"), suffix)
}
