package withdraw

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

type AvailabilityWithdrawer interface {
	WithdrawAvailability(ctx context.Context, actor service.Actor, trainerID, slotID string) (*api.WeeklySlotResponse, error)
}

type Response struct {
	response.Response
	Slot api.WeeklySlotResponse `json:"slot,omitempty"`
}

func New(log *slog.Logger, withdrawer AvailabilityWithdrawer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.withdraw.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		trainerID := chi.URLParam(r, "trainerID")
		slotID := chi.URLParam(r, "slotID")
		if trainerID == "" || slotID == "" {
			log.Error("trainerID or slotID is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "trainerID and slotID are required"))
			return
		}

		actor, err := actorheader.FromRequest(r)
		if err != nil {
			log.Error("Failed to resolve actor", sl.Err(err))
			response.RenderError(w, r, err, "failed to resolve actor")
			return
		}

		slot, err := withdrawer.WithdrawAvailability(r.Context(), actor, trainerID, slotID)
		if err != nil {
			log.Error("Failed to withdraw availability", sl.Err(err))
			response.RenderError(w, r, err, "failed to withdraw availability")
			return
		}

		log.Info("Availability withdrawn", slog.String("slot_id", slot.ID))

		render.JSON(w, r, Response{
			Slot: *slot,
		})
	}
}
