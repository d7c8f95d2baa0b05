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

type RegistrationGetter interface {
	GetRegistration(ctx context.Context, id string) (*api.RegistrationResponse, error)
	ListRegistrationsByCustomer(ctx context.Context, customerID string) ([]*api.RegistrationResponse, error)
	ListRegistrationsByTrainer(ctx context.Context, trainerID string) ([]*api.RegistrationResponse, error)
}

type Response struct {
	response.Response
	Registration *api.RegistrationResponse `json:"registration,omitempty"`
}

type ListResponse struct {
	response.Response
	Registrations []*api.RegistrationResponse `json:"registrations"`
}

func New(log *slog.Logger, getter RegistrationGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.registrations.get.New"

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

		registration, err := getter.GetRegistration(r.Context(), id)
		if err != nil {
			log.Error("Failed to get registration", sl.Err(err))
			response.RenderError(w, r, err, "failed to get registration")
			return
		}

		render.JSON(w, r, Response{
			Registration: registration,
		})
	}
}

// NewList serves the ownership queries the auth layer and trainer/customer
// dashboards rely on: ?customer_id= or ?trainer_id=.
func NewList(log *slog.Logger, getter RegistrationGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.registrations.get.NewList"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		customerID := r.URL.Query().Get("customer_id")
		trainerID := r.URL.Query().Get("trainer_id")

		var (
			registrations []*api.RegistrationResponse
			err           error
		)

		switch {
		case customerID != "":
			registrations, err = getter.ListRegistrationsByCustomer(r.Context(), customerID)
		case trainerID != "":
			registrations, err = getter.ListRegistrationsByTrainer(r.Context(), trainerID)
		default:
			log.Error("customer_id or trainer_id is required")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "customer_id or trainer_id is required"))
			return
		}

		if err != nil {
			log.Error("Failed to list registrations", sl.Err(err))
			response.RenderError(w, r, err, "failed to list registrations")
			return
		}

		render.JSON(w, r, ListResponse{
			Registrations: registrations,
		})
	}
}
