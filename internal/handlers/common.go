package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ecron24/delmas-app-sub000/internal/auth"
	"github.com/ecron24/delmas-app-sub000/internal/httpx"
	"github.com/ecron24/delmas-app-sub000/internal/services"
)

// pathID extracts the {id} route parameter; writes a 400 and returns false
// when it is missing or not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

func userIDOrZero(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

// writeServiceError maps the service error taxonomy to HTTP statuses.
// Precondition violations come back as 400 with the sentinel message so the
// operator UI can surface them; downstream provider failures are 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrNotEditable):
		httpx.JSONError(w, http.StatusBadRequest, "invoice_not_editable", nil)
	case errors.Is(err, services.ErrAlreadyFinal):
		httpx.JSONError(w, http.StatusBadRequest, "invoice_already_final", nil)
	case errors.Is(err, services.ErrInvalidState):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_invoice_state", nil)
	case errors.Is(err, services.ErrNotBillable):
		httpx.JSONError(w, http.StatusBadRequest, "intervention_not_billable", nil)
	case errors.Is(err, services.ErrDispatchInProgress):
		httpx.JSONError(w, http.StatusConflict, "dispatch_in_progress", nil)
	case errors.Is(err, services.ErrNumberCollision):
		httpx.JSONError(w, http.StatusInternalServerError, "invoice_number_collision", nil)
	case errors.Is(err, services.ErrDownstream):
		httpx.JSONError(w, http.StatusInternalServerError, "downstream_failure", err.Error())
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
