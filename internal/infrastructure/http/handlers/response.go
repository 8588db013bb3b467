package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/account"
	domerrors "github.com/crewrelief/crewrelief/internal/domain/errors"
)

// writeErr sends JSON { "error": message, "code": errCode }. If errCode is empty, a default is used from code.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case http.StatusBadGateway:
		return ErrCodeSaveFailed
	default:
		return ErrCodeInternal
	}
}

// writeDomainErr maps use-case errors to HTTP. Unknown errors are logged and
// reported as 500 without detail.
func writeDomainErr(w http.ResponseWriter, log zerolog.Logger, err error) {
	var verr *domerrors.ValidationError
	switch {
	case errors.Is(err, domerrors.ErrUnauthenticated):
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, domerrors.ErrProfileNotFound):
		writeErr(w, http.StatusNotFound, ErrCodeProfileNotFound, err.Error())
	case errors.Is(err, domerrors.ErrNotFound):
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.As(err, &verr):
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, verr.Error())
	case errors.Is(err, domerrors.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, domerrors.ErrAccountLocked):
		if retry, ok := account.RetryAfter(err); ok {
			w.Header().Set("Retry-After", strconv.Itoa(retry))
		}
		writeErr(w, http.StatusTooManyRequests, ErrCodeAccountLocked, domerrors.ErrAccountLocked.Error())
	case errors.Is(err, domerrors.ErrEmailTaken):
		writeErr(w, http.StatusConflict, ErrCodeEmailTaken, err.Error())
	case errors.Is(err, domerrors.ErrInvalidToken):
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidToken, err.Error())
	case errors.Is(err, domerrors.ErrSaveFailed):
		log.Error().Err(err).Msg("save failed")
		writeErr(w, http.StatusBadGateway, ErrCodeSaveFailed, domerrors.ErrSaveFailed.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
