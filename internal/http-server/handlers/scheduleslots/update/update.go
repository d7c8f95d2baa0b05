package update

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

type ScheduleSlotUpdater interface {
	UpdateScheduleSlot(ctx context.Context, actor service.Actor, slotID string, req *api.ScheduleSlotUpdateRequest) (*api.ScheduleSlotResponse, error)
}

type Request struct {
	api.ScheduleSlotUpdateRequest
}

type Response struct {
	response.Response
	Slot api.ScheduleSlotResponse `json:"slot,omitempty"`
}

func New(log *slog.Logger, updater ScheduleSlotUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.scheduleslots.update.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		slotID := chi.URLParam(r, "id")
		if slotID == "" {
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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		slot, err := updater.UpdateScheduleSlot(r.Context(), actor, slotID, &req.ScheduleSlotUpdateRequest)
		if err != nil {
			log.Error("Failed to update schedule slot", sl.Err(err))
			response.RenderError(w, r, err, "failed to update schedule slot")
			return
		}

		log.Info("Schedule slot updated", slog.String("slot_id", slot.ID))

		render.JSON(w, r, Response{
			Slot: *slot,
		})
	}
}
