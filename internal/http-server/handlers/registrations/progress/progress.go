package progress

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

type SessionRecorder interface {
	RecordSessions(ctx context.Context, actor service.Actor, registrationID string, completedSessions int) (*api.RegistrationResponse, error)
}

type Request struct {
	api.RegistrationProgressRequest
}

type Response struct {
	response.Response
	Registration api.RegistrationResponse `json:"registration,omitempty"`
}

func New(log *slog.Logger, recorder SessionRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.registrations.progress.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		registration, err := recorder.RecordSessions(r.Context(), actor, id, req.CompletedSessions)
		if err != nil {
			log.Error("Failed to record sessions", sl.Err(err))
			response.RenderError(w, r, err, "failed to record sessions")
			return
		}

		log.Info("Sessions recorded",
			slog.String("registration_id", id),
			slog.Int("completed_sessions", registration.CompletedSessions),
			slog.String("status", registration.Status),
		)

		render.JSON(w, r, Response{
			Registration: *registration,
		})
	}
}
