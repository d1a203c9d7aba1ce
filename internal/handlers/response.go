package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/user/stickers-back/internal/packs"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	respondError(w, http.StatusUnauthorized, message)
}

// respondServiceError maps a pack-service error kind to an HTTP status.
// Unknown errors stay generic so internal detail never leaks.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, packs.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, packs.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, packs.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, packs.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, packs.ErrConflict):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, packs.ErrDependency):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
