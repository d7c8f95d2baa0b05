package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

type mapping struct {
	status int
	code   ErrCode
	msg    string
}

var errorTable = []struct {
	sentinel error
	mapping  mapping
}{
	{ErrBadRequest, mapping{http.StatusBadRequest, BAD_REQUEST, "bad request"}},
	{ErrValidation, mapping{http.StatusBadRequest, VALIDATION, "validation failed"}},
	{ErrInvalidDate, mapping{http.StatusBadRequest, INVALID_DATE, "start date must not be in the past"}},
	{ErrForbidden, mapping{http.StatusForbidden, FORBIDDEN, "operation not allowed for this actor"}},
	{ErrNotFound, mapping{http.StatusNotFound, NOT_FOUND, "resource not found"}},
	{ErrConflict, mapping{http.StatusConflict, CONFLICT, "time interval conflicts with an existing one"}},
	{ErrBusy, mapping{http.StatusConflict, BUSY, "slot is referenced by an active registration"}},
	{ErrIllegalTransition, mapping{http.StatusConflict, ILLEGAL_TRANSITION, "status transition not allowed"}},
	{ErrSlotNotAvailable, mapping{http.StatusConflict, SLOT_NOT_AVAILABLE, "slot is not available"}},
	{ErrLocked, mapping{http.StatusLocked, LOCKED, "resource is locked, retry"}},
	{ErrMembershipExpired, mapping{http.StatusUnprocessableEntity, MEMBERSHIP_EXPIRED, "customer membership has expired"}},
	{ErrTrainerUnavailable, mapping{http.StatusUnprocessableEntity, TRAINER_UNAVAILABLE, "trainer is not available"}},
	{ErrServiceInactive, mapping{http.StatusUnprocessableEntity, SERVICE_INACTIVE, "service is not active"}},
	{ErrPartialSync, mapping{http.StatusInternalServerError, PARTIAL_SYNC, "availability changed but schedule sync failed, manual re-sync required"}},
}

// RenderError writes the HTTP representation of a service error. Unrecognized
// errors become a generic 500 with the given fallback message.
func RenderError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	for _, entry := range errorTable {
		if errors.Is(err, entry.sentinel) {
			w.WriteHeader(entry.mapping.status)
			render.JSON(w, r, Error(string(entry.mapping.code), entry.mapping.msg))
			return
		}
	}

	w.WriteHeader(http.StatusInternalServerError)
	render.JSON(w, r, Error(string(FAILED_REQUEST), fallback))
}
