package actorheader

import (
	"fmt"
	"net/http"

	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/internal/service"
	"gym-scheduling-service/pkg/response"
)

// FromRequest reads the caller identity injected by the auth gateway. The
// scheduling service trusts these headers; verifying them is the gateway's
// job.
func FromRequest(r *http.Request) (service.Actor, error) {
	id := r.Header.Get("X-Actor-ID")
	role := models.Role(r.Header.Get("X-Actor-Role"))

	if id == "" {
		return service.Actor{}, fmt.Errorf("missing X-Actor-ID: %w", response.ErrBadRequest)
	}

	if !role.Valid() {
		return service.Actor{}, fmt.Errorf("missing or unknown X-Actor-Role: %w", response.ErrBadRequest)
	}

	return service.Actor{ID: id, Role: role}, nil
}
