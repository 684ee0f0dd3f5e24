// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/models"
)

// writeError maps domain errors to HTTP statuses. Anything unrecognized is
// logged and answered with a generic 500.
func writeError(w http.ResponseWriter, err error, action string) {
	switch {
	case models.IsValidation(err), errors.Is(err, models.ErrUnsupportedMethod):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
	case errors.Is(err, models.ErrBallotNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "No ballot found for this voter")
	case errors.Is(err, models.ErrAlreadyClosed):
		middleware.ErrorResponse(w, http.StatusConflict, "Election is closed")
	default:
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
