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

type AvailabilityLister interface {
	ListAvailability(ctx context.Context, trainerID string) ([]*api.WeeklySlotResponse, error)
}

type Response struct {
	response.Response
	Slots []*api.WeeklySlotResponse `json:"slots"`
}

func New(log *slog.Logger, lister AvailabilityLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.get.New"

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

		slots, err := lister.ListAvailability(r.Context(), trainerID)
		if err != nil {
			log.Error("Failed to list availability", sl.Err(err))
			response.RenderError(w, r, err, "failed to list availability")
			return
		}

		render.JSON(w, r, Response{
			Slots: slots,
		})
	}
}
