package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST      ErrCode = "REQUEST_FAILED"
	BAD_REQUEST         ErrCode = "FAILED_TO_DECODE"
	VALIDATION          ErrCode = "VALIDATION_FAILED"
	FORBIDDEN           ErrCode = "FORBIDDEN"
	NOT_FOUND           ErrCode = "NOT_FOUND"
	LOCKED              ErrCode = "LOCKED"
	CONFLICT            ErrCode = "CONFLICT"
	BUSY                ErrCode = "SLOT_BUSY"
	SLOT_NOT_AVAILABLE  ErrCode = "SLOT_NOT_AVAILABLE"
	MEMBERSHIP_EXPIRED  ErrCode = "MEMBERSHIP_EXPIRED"
	TRAINER_UNAVAILABLE ErrCode = "TRAINER_UNAVAILABLE"
	SERVICE_INACTIVE    ErrCode = "SERVICE_INACTIVE"
	INVALID_DATE        ErrCode = "INVALID_DATE"
	ILLEGAL_TRANSITION  ErrCode = "ILLEGAL_TRANSITION"
	PARTIAL_SYNC        ErrCode = "PARTIAL_SYNC"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("actor is not allowed to perform this operation")
	ErrNotFound   = errors.New("resource not found")
	ErrLocked     = errors.New("resource is locked")
	ErrConflict   = errors.New("conflict")

	// A mutation on a schedule slot is blocked because a pending or approved
	// registration still references it.
	ErrBusy = errors.New("slot is referenced by an active registration")

	// Booking preconditions.
	ErrSlotNotAvailable   = errors.New("slot is not available")
	ErrMembershipExpired  = errors.New("customer membership has expired")
	ErrTrainerUnavailable = errors.New("trainer is not active")
	ErrServiceInactive    = errors.New("service is not active")
	ErrInvalidDate        = errors.New("start date is in the past")

	ErrIllegalTransition = errors.New("status transition not allowed")

	// The availability mutation committed but the normalized view could not
	// be confirmed in sync. Requires operator re-sync, never swallowed.
	ErrPartialSync = errors.New("availability changed but schedule sync failed")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
