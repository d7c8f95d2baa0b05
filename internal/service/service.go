package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gym-scheduling-service/api"
	"gym-scheduling-service/internal/lock"
	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/internal/storage"
	"gym-scheduling-service/pkg/response"
)

const (
	lockTTL  = 10 * time.Second
	dateOnly = "2006-01-02"
)

// Actor is the caller identity supplied by the excluded auth layer. The core
// trusts it and only performs capability checks against the role.
type Actor struct {
	ID   string
	Role models.Role
}

type Service struct {
	store  storage.Store
	locker lock.Locker
	log    *slog.Logger
	now    func() time.Time
}

func NewService(store storage.Store, locker lock.Locker, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		locker: locker,
		log:    log,
		now:    time.Now,
	}
}

// acquire takes the per-entity lock that serializes read-validate-write for
// the given key. The returned release must be deferred by the caller.
func (s *Service) acquire(ctx context.Context, op, key string) (func(), error) {
	locked, err := s.locker.Lock(ctx, key, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}

	return func() {
		_ = s.locker.Unlock(ctx, key)
	}, nil
}

func trainerLockKey(trainerID string) string {
	return fmt.Sprintf("trainer:%s", trainerID)
}

func slotLockKey(slotID string) string {
	return fmt.Sprintf("slot:%s", slotID)
}

func registrationLockKey(registrationID string) string {
	return fmt.Sprintf("registration:%s", registrationID)
}

func weeklySlotToAPI(slot *models.WeeklySlot) *api.WeeklySlotResponse {
	return &api.WeeklySlotResponse{
		ID:        slot.ID,
		TrainerID: slot.TrainerID,
		DayOfWeek: string(slot.DayOfWeek),
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
	}
}

func scheduleSlotToAPI(slot *models.ScheduleSlot) *api.ScheduleSlotResponse {
	return &api.ScheduleSlotResponse{
		ID:          slot.ID,
		TrainerID:   slot.TrainerID,
		DayOfWeek:   string(slot.DayOfWeek),
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		IsAvailable: slot.IsAvailable,
		Note:        slot.Note,
	}
}

func registrationToAPI(reg *models.Registration) *api.RegistrationResponse {
	resp := &api.RegistrationResponse{
		ID:                reg.ID,
		CustomerID:        reg.CustomerID,
		TrainerID:         reg.TrainerID,
		ServiceID:         reg.ServiceID,
		ScheduleSlotID:    reg.ScheduleSlotID,
		Status:            string(reg.Status),
		StartDate:         reg.StartDate.Format(dateOnly),
		NumberOfSessions:  reg.NumberOfSessions,
		CompletedSessions: reg.CompletedSessions,
		TotalPrice:        reg.TotalPrice,
		Notes:             reg.Notes,
		RejectionReason:   reg.RejectionReason,
	}

	if reg.EndDate != nil {
		end := reg.EndDate.Format(dateOnly)
		resp.EndDate = &end
	}

	return resp
}
