package service

import (
	"context"
	"fmt"

	"gym-scheduling-service/api"
	"gym-scheduling-service/internal/interval"
	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/pkg/response"
)

func (s *Service) ListScheduleSlots(ctx context.Context, trainerID string, onlyAvailable bool) ([]*api.ScheduleSlotResponse, error) {
	const op = "service.ListScheduleSlots"

	if _, err := s.store.GetTrainer(ctx, trainerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		slots []models.ScheduleSlot
		err   error
	)

	if onlyAvailable {
		slots, err = s.store.ListAvailableScheduleSlots(ctx, trainerID)
	} else {
		slots, err = s.store.ListScheduleSlots(ctx, trainerID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.ScheduleSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, scheduleSlotToAPI(&slots[i]))
	}

	return result, nil
}

// CreateScheduleSlot adds a normalized slot directly, bypassing the weekly
// list. Used by staff for one-off slots; the uniqueness and no-overlap rules
// are the same ones synchronization obeys.
func (s *Service) CreateScheduleSlot(ctx context.Context, actor Actor, trainerID string, req *api.ScheduleSlotRequest) (*api.ScheduleSlotResponse, error) {
	const op = "service.CreateScheduleSlot"

	if !canManageAvailability(actor, trainerID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	day := models.Weekday(req.DayOfWeek)
	if !day.Valid() {
		return nil, fmt.Errorf("%s: invalid day_of_week %q: %w", op, req.DayOfWeek, response.ErrValidation)
	}

	iv, err := interval.New(req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, response.ErrConflict)
	}

	if _, err := s.store.GetTrainer(ctx, trainerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	release, err := s.acquire(ctx, op, trainerLockKey(trainerID))
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.store.ListScheduleSlots(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if overlapsScheduleSlots(iv, day, existing, "") {
		return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
	}

	slot := &models.ScheduleSlot{
		TrainerID:   trainerID,
		DayOfWeek:   day,
		StartTime:   iv.Start,
		EndTime:     iv.End,
		IsAvailable: true,
		Note:        req.Note,
	}

	id, err := s.store.CreateScheduleSlot(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	slot.ID = id

	return scheduleSlotToAPI(slot), nil
}

// UpdateScheduleSlot patches a slot. Changing the time window or flipping
// is_available off is refused while a pending or approved registration still
// references the slot.
func (s *Service) UpdateScheduleSlot(ctx context.Context, actor Actor, slotID string, req *api.ScheduleSlotUpdateRequest) (*api.ScheduleSlotResponse, error) {
	const op = "service.UpdateScheduleSlot"

	slot, err := s.store.GetScheduleSlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !canManageAvailability(actor, slot.TrainerID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	release, err := s.acquire(ctx, op, trainerLockKey(slot.TrainerID))
	if err != nil {
		return nil, err
	}
	defer release()

	// Bookings serialize on the slot key, so an in-flight booking must be
	// excluded before the busy check below can be trusted.
	releaseSlotLock, err := s.acquire(ctx, op, slotLockKey(slotID))
	if err != nil {
		return nil, err
	}
	defer releaseSlotLock()

	// Re-read under the lock.
	slot, err = s.store.GetScheduleSlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated := *slot

	timeChanged := false

	if req.DayOfWeek != nil {
		day := models.Weekday(*req.DayOfWeek)
		if !day.Valid() {
			return nil, fmt.Errorf("%s: invalid day_of_week %q: %w", op, *req.DayOfWeek, response.ErrValidation)
		}
		if day != slot.DayOfWeek {
			updated.DayOfWeek = day
			timeChanged = true
		}
	}
	if req.StartTime != nil {
		updated.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		updated.EndTime = *req.EndTime
	}
	if req.Note != nil {
		updated.Note = *req.Note
	}

	iv, err := interval.New(updated.StartTime, updated.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, response.ErrConflict)
	}
	updated.StartTime = iv.Start
	updated.EndTime = iv.End

	if updated.StartTime != interval.Canonical(slot.StartTime) || updated.EndTime != interval.Canonical(slot.EndTime) {
		timeChanged = true
	}

	blocking := req.IsAvailable != nil && !*req.IsAvailable && slot.IsAvailable
	if req.IsAvailable != nil {
		updated.IsAvailable = *req.IsAvailable
	}

	if timeChanged || blocking {
		active, err := s.store.CountActiveRegistrationsBySlot(ctx, slotID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if active > 0 {
			return nil, fmt.Errorf("%s: %w", op, response.ErrBusy)
		}
	}

	if timeChanged {
		others, err := s.store.ListScheduleSlots(ctx, slot.TrainerID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if overlapsScheduleSlots(iv, updated.DayOfWeek, others, slotID) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
	}

	if err := s.store.UpdateScheduleSlot(ctx, &updated); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return scheduleSlotToAPI(&updated), nil
}

// DeleteScheduleSlot removes a normalized slot unless an active registration
// still depends on it.
func (s *Service) DeleteScheduleSlot(ctx context.Context, actor Actor, slotID string) error {
	const op = "service.DeleteScheduleSlot"

	slot, err := s.store.GetScheduleSlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !canManageAvailability(actor, slot.TrainerID) {
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	release, err := s.acquire(ctx, op, trainerLockKey(slot.TrainerID))
	if err != nil {
		return err
	}
	defer release()

	// Exclude in-flight bookings before trusting the busy check.
	releaseSlotLock, err := s.acquire(ctx, op, slotLockKey(slotID))
	if err != nil {
		return err
	}
	defer releaseSlotLock()

	active, err := s.store.CountActiveRegistrationsBySlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if active > 0 {
		return fmt.Errorf("%s: %w", op, response.ErrBusy)
	}

	if err := s.store.DeleteScheduleSlot(ctx, slotID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func overlapsScheduleSlots(iv interval.Interval, day models.Weekday, slots []models.ScheduleSlot, excludeID string) bool {
	var ivs []interval.Interval
	for _, slot := range slots {
		if slot.ID == excludeID || slot.DayOfWeek != day {
			continue
		}
		ivs = append(ivs, interval.Interval{
			Start: interval.Canonical(slot.StartTime),
			End:   interval.Canonical(slot.EndTime),
		})
	}
	return interval.Conflicts(iv, ivs)
}
