package sync

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

type AvailabilitySyncer interface {
	SyncAvailability(ctx context.Context, actor service.Actor, trainerID string) (int, error)
}

type Response struct {
	response.Response
	Sync api.SyncResponse `json:"sync"`
}

func New(log *slog.Logger, syncer AvailabilitySyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.sync.New"

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

		added, err := syncer.SyncAvailability(r.Context(), actor, trainerID)
		if err != nil {
			log.Error("Failed to sync availability", sl.Err(err))
			response.RenderError(w, r, err, "failed to sync availability")
			return
		}

		log.Info("Availability synced",
			slog.String("trainer_id", trainerID),
			slog.Int("added", added),
		)

		render.JSON(w, r, Response{
			Sync: api.SyncResponse{
				TrainerID:  trainerID,
				AddedSlots: added,
			},
		})
	}
}
