package storage

import (
	"context"

	"gym-scheduling-service/internal/models"
)

// Store is the persistence contract the scheduling service is written
// against. Implementations must report pkg/response sentinels (ErrNotFound,
// ErrConflict) for the corresponding conditions and enforce the
// (trainer_id, day_of_week, start_time) uniqueness of schedule slots.
type Store interface {
	// Directory read models, owned by the excluded CRUD modules.
	GetTrainer(ctx context.Context, id string) (*models.Trainer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	GetService(ctx context.Context, id string) (*models.Service, error)

	// Authoritative weekly availability list, owned by the trainer record.
	// AddWeeklySlot keeps slot.ID when set (compensating re-inserts) and
	// mints a new one otherwise.
	ListWeeklySlots(ctx context.Context, trainerID string) ([]models.WeeklySlot, error)
	AddWeeklySlot(ctx context.Context, slot *models.WeeklySlot) (string, error)
	RemoveWeeklySlot(ctx context.Context, trainerID, slotID string) (*models.WeeklySlot, error)

	// Normalized schedule slots. Listings are ordered by (day, start).
	ListScheduleSlots(ctx context.Context, trainerID string) ([]models.ScheduleSlot, error)
	ListAvailableScheduleSlots(ctx context.Context, trainerID string) ([]models.ScheduleSlot, error)
	GetScheduleSlot(ctx context.Context, id string) (*models.ScheduleSlot, error)
	FindScheduleSlot(ctx context.Context, trainerID string, day models.Weekday, start, end string) (*models.ScheduleSlot, error)
	CreateScheduleSlot(ctx context.Context, slot *models.ScheduleSlot) (string, error)
	UpdateScheduleSlot(ctx context.Context, slot *models.ScheduleSlot) error
	DeleteScheduleSlot(ctx context.Context, id string) error
	SetScheduleSlotAvailability(ctx context.Context, id string, available bool) error

	// Registrations are never deleted, only transitioned.
	CreateRegistration(ctx context.Context, reg *models.Registration) (string, error)
	GetRegistration(ctx context.Context, id string) (*models.Registration, error)
	ListRegistrationsByCustomer(ctx context.Context, customerID string) ([]models.Registration, error)
	ListRegistrationsByTrainer(ctx context.Context, trainerID string) ([]models.Registration, error)
	UpdateRegistration(ctx context.Context, reg *models.Registration) error
	CountActiveRegistrationsBySlot(ctx context.Context, slotID string) (int, error)
}
