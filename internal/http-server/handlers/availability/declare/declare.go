package declare

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

type AvailabilityDeclarer interface {
	DeclareAvailability(ctx context.Context, actor service.Actor, trainerID string, req *api.DeclareAvailabilityRequest) (*api.WeeklySlotResponse, error)
}

type Request struct {
	api.DeclareAvailabilityRequest
}

type Response struct {
	response.Response
	Slot api.WeeklySlotResponse `json:"slot,omitempty"`
}

func New(log *slog.Logger, declarer AvailabilityDeclarer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.declare.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		trainerID := chi.URLParam(r, "trainerID")
		if trainerID == "" {
			log.Error("trainerID is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "trainerID is required"))
			return
		}

		actor, err := actorheader.FromRequest(r)
		if err != nil {
			log.Error("Failed to resolve actor", sl.Err(err))
			response.RenderError(w, r, err, "failed to resolve actor")
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		slot, err := declarer.DeclareAvailability(r.Context(), actor, trainerID, &req.DeclareAvailabilityRequest)
		if err != nil {
			log.Error("Failed to declare availability", sl.Err(err))
			response.RenderError(w, r, err, "failed to declare availability")
			return
		}

		log.Info("Availability declared", slog.String("slot_id", slot.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Slot: *slot,
		})
	}
}
