package delete

import (
	"context"
	"log/slog"
	"net/http"

	"gym-scheduling-service/internal/http-server/actorheader"
	"gym-scheduling-service/internal/service"
	"gym-scheduling-service/pkg/response"
	"gym-scheduling-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ScheduleSlotDeleter interface {
	DeleteScheduleSlot(ctx context.Context, actor service.Actor, slotID string) error
}

func New(log *slog.Logger, deleter ScheduleSlotDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.scheduleslots.delete.New"

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

		if err := deleter.DeleteScheduleSlot(r.Context(), actor, slotID); err != nil {
			log.Error("Failed to delete schedule slot", sl.Err(err))
			response.RenderError(w, r, err, "failed to delete schedule slot")
			return
		}

		log.Info("Schedule slot deleted", slog.String("slot_id", slotID))

		w.WriteHeader(http.StatusNoContent)
	}
}
