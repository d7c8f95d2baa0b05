package create

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
	"github.com/go-chi/render"
)

type ServiceBooker interface {
	BookService(ctx context.Context, actor service.Actor, req *api.RegistrationRequest) (*api.RegistrationResponse, error)
}

type Request struct {
	api.RegistrationRequest
}

type Response struct {
	response.Response
	Registration api.RegistrationResponse `json:"registration,omitempty"`
}

func New(log *slog.Logger, booker ServiceBooker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.registrations.create.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

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

		if req.TrainerID == "" || req.ServiceID == "" || req.ScheduleSlotID == "" {
			log.Error("trainer_id, service_id or schedule_slot_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "trainer_id, service_id and schedule_slot_id are required"))
			return
		}

		registration, err := booker.BookService(r.Context(), actor, &req.RegistrationRequest)
		if err != nil {
			log.Error("Failed to create registration", sl.Err(err))
			response.RenderError(w, r, err, "failed to create registration")
			return
		}

		log.Info("Registration created", slog.String("registration_id", registration.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Registration: *registration,
		})
	}
}
