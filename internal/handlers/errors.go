package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"codesathi/internal/apperr"
	"codesathi/internal/logger"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func respondWithError(w http.ResponseWriter, log *logger.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Warn(logMsg, "status", status, "op", apperr.Op(err), "error", err)
	}
	respondJSON(w, status, errorBody{Error: userMsg})
}

// respondWithAppError maps an error kind to a status code. Validation and
// auth messages are shown as-is; anything else shows fallbackMsg.
func respondWithAppError(w http.ResponseWriter, log *logger.Logger, err error, fallbackMsg string) {
	var (
		valErr  *apperr.ValidationError
		authErr *apperr.AuthError
	)
	switch {
	case errors.As(err, &valErr):
		respondWithError(w, log, http.StatusBadRequest, valErr.Message, "", nil)
	case errors.As(err, &authErr):
		switch authErr.Code {
		case apperr.CodeInvalidCredentials:
			respondWithError(w, log, http.StatusUnauthorized, ErrBadCredentials, "", nil)
		case apperr.CodeEmailTaken:
			respondWithError(w, log, http.StatusConflict, authErr.Message, "", nil)
		default:
			respondWithError(w, log, http.StatusUnauthorized, authErr.Message, "", nil)
		}
	case apperr.IsNetwork(err):
		respondWithError(w, log, http.StatusServiceUnavailable, fallbackMsg, "store unreachable", err)
	default:
		respondWithError(w, log, http.StatusInternalServerError, fallbackMsg, "", err)
	}
}

// decodeJSON reads a bounded JSON body into v and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
