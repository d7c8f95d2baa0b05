package get

import (
	"context"
	"log/slog"
	"net/http"

	"gym-scheduling-service/api"
	"gym-scheduling-service/pkg/response"
	"gym-scheduling-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ScheduleSlotLister interface {
	ListScheduleSlots(ctx context.Context, trainerID string, onlyAvailable bool) ([]*api.ScheduleSlotResponse, error)
}

type Response struct {
	response.Response
	Slots []*api.ScheduleSlotResponse `json:"slots"`
}

func New(log *slog.Logger, lister ScheduleSlotLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.scheduleslots.get.New"

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

		onlyAvailable := r.URL.Query().Get("available") == "true"

		slots, err := lister.ListScheduleSlots(r.Context(), trainerID, onlyAvailable)
		if err != nil {
			log.Error("Failed to list schedule slots", sl.Err(err))
			response.RenderError(w, r, err, "failed to list schedule slots")
			return
		}

		render.JSON(w, r, Response{
			Slots: slots,
		})
	}
}
