package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/rs/zerolog/hlog"
)

const (
	errorCodeInvalidRequest  = "invalid_request"
	errorCodeAuthFailed      = "authentication_failed"
	errorCodeUnauthenticated = "unauthenticated"
	errorCodeNotFound        = "not_found"
	errorCodeBadGateway      = "upstream_error"
	errorCodeServer          = "server_error"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, errorResponse{Error: errorCode, ErrorDescription: description})
}

// writeError maps an error kind to a status and a generic message. Details only go to the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, description := classify(err)

	logger := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	writeJSONError(w, code, description, status)
}

func classify(err error) (int, string, string) {
	var rejected *apperrors.UpstreamRejectedError

	switch {
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, errorCodeInvalidRequest, "the request is missing required fields or is malformed"
	case apperrors.Is(err, apperrors.ErrAuthenticationFailed):
		return http.StatusUnauthorized, errorCodeAuthFailed, "invalid credentials"
	case apperrors.Is(err, apperrors.ErrUnauthenticated), apperrors.Is(err, apperrors.ErrInvalidSession):
		return http.StatusUnauthorized, errorCodeUnauthenticated, "authentication required"
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, errorCodeNotFound, "not found"
	case apperrors.As(err, &rejected):
		if rejected.Upstream == "profile" && rejected.StatusCode == http.StatusNotFound {
			return http.StatusNotFound, errorCodeNotFound, "character not found"
		}
		return http.StatusBadGateway, errorCodeBadGateway, "the upstream service rejected the request"
	case apperrors.Is(err, apperrors.ErrUpstreamRejected), apperrors.Is(err, apperrors.ErrTransientUpstream):
		return http.StatusBadGateway, errorCodeBadGateway, "the upstream service is unavailable"
	default:
		return http.StatusInternalServerError, errorCodeServer, "internal server error"
	}
}
