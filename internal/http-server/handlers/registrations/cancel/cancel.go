package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"gym-scheduling-service/api"
	"gym-scheduling-service/internal/http-server/actorheader"
	"gym-scheduling-service/internal/service"
	"gym-scheduling-service/pkg/response"
	"gym-scheduling-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingCanceller interface {
	CancelBooking(ctx context.Context, actor service.Actor, registrationID string) (*api.RegistrationResponse, error)
}

type Response struct {
	response.Response
	Registration api.RegistrationResponse `json:"registration,omitempty"`
}

func New(log *slog.Logger, canceller BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.registrations.cancel.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		actor, err := actorheader.FromRequest(r)
		if err != nil {
			log.Error("Failed to resolve actor", sl.Err(err))
			response.RenderError(w, r, err, "failed to resolve actor")
			return
		}

		registration, err := canceller.CancelBooking(r.Context(), actor, id)
		if err != nil {
			log.Error("Failed to cancel registration", sl.Err(err))
			response.RenderError(w, r, err, "failed to cancel registration")
			return
		}

		log.Info("Registration canceled", slog.String("registration_id", id))

		render.JSON(w, r, Response{
			Registration: *registration,
		})
	}
}
