package service

import (
	"context"
	"fmt"
	"log/slog"

	"gym-scheduling-service/api"
	"gym-scheduling-service/internal/interval"
	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/pkg/response"
	"gym-scheduling-service/pkg/sl"
)

// canManageAvailability allows a trainer to edit their own list and staff to
// edit anyone's.
func canManageAvailability(actor Actor, trainerID string) bool {
	if actor.Role.IsStaff() {
		return true
	}
	return actor.Role == models.RoleTrainer && actor.ID == trainerID
}

func (s *Service) ListAvailability(ctx context.Context, trainerID string) ([]*api.WeeklySlotResponse, error) {
	const op = "service.ListAvailability"

	if _, err := s.store.GetTrainer(ctx, trainerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots, err := s.store.ListWeeklySlots(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.WeeklySlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, weeklySlotToAPI(&slots[i]))
	}

	return result, nil
}

// DeclareAvailability appends a weekly slot to the trainer's authoritative
// list after conflict-checking it, then synchronizes the normalized schedule
// before returning. A failed sync rolls the slot back; if even the rollback
// fails the caller gets ErrPartialSync rather than a silent stale view.
func (s *Service) DeclareAvailability(ctx context.Context, actor Actor, trainerID string, req *api.DeclareAvailabilityRequest) (*api.WeeklySlotResponse, error) {
	const op = "service.DeclareAvailability"

	if !canManageAvailability(actor, trainerID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	day := models.Weekday(req.DayOfWeek)
	if !day.Valid() {
		return nil, fmt.Errorf("%s: invalid day_of_week %q: %w", op, req.DayOfWeek, response.ErrValidation)
	}

	iv, err := interval.New(req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, response.ErrValidation)
	}

	if _, err := s.store.GetTrainer(ctx, trainerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	release, err := s.acquire(ctx, op, trainerLockKey(trainerID))
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.store.ListWeeklySlots(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if interval.Conflicts(iv, sameDayIntervals(existing, day)) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrConflict)
	}

	slot := &models.WeeklySlot{
		TrainerID: trainerID,
		DayOfWeek: day,
		StartTime: iv.Start,
		EndTime:   iv.End,
	}

	id, err := s.store.AddWeeklySlot(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	slot.ID = id

	if _, err := s.syncFromAvailability(ctx, trainerID); err != nil {
		s.log.Error("Sync after declare failed, rolling back",
			slog.String("trainer_id", trainerID),
			slog.String("day", string(day)),
			slog.String("start", iv.Start),
			slog.String("end", iv.End),
			sl.Err(err),
		)

		if _, rbErr := s.store.RemoveWeeklySlot(ctx, trainerID, id); rbErr != nil {
			s.log.Error("Rollback of weekly slot failed, manual re-sync required",
				slog.String("trainer_id", trainerID),
				slog.String("slot_id", id),
				sl.Err(rbErr),
			)
			return nil, fmt.Errorf("%s: %w", op, response.ErrPartialSync)
		}

		return nil, fmt.Errorf("%s: sync: %w", op, err)
	}

	return weeklySlotToAPI(slot), nil
}

// WithdrawAvailability removes a weekly slot and the schedule slot matching
// it by (day, start, end) value. The match may legitimately be absent; that
// case is logged apart from a found-and-removed one.
func (s *Service) WithdrawAvailability(ctx context.Context, actor Actor, trainerID, slotID string) (*api.WeeklySlotResponse, error) {
	const op = "service.WithdrawAvailability"

	if !canManageAvailability(actor, trainerID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	release, err := s.acquire(ctx, op, trainerLockKey(trainerID))
	if err != nil {
		return nil, err
	}
	defer release()

	weekly, err := s.findWeeklySlot(ctx, trainerID, slotID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	match, err := s.findMatchingScheduleSlot(ctx, weekly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if match != nil {
		// Bookings serialize on the slot key; take it so an in-flight
		// booking cannot slip between the busy check and the delete.
		releaseSlotLock, err := s.acquire(ctx, op, slotLockKey(match.ID))
		if err != nil {
			return nil, err
		}
		defer releaseSlotLock()

		active, err := s.store.CountActiveRegistrationsBySlot(ctx, match.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if active > 0 {
			return nil, fmt.Errorf("%s: %w", op, response.ErrBusy)
		}
	}

	removed, err := s.store.RemoveWeeklySlot(ctx, trainerID, slotID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if match == nil {
		s.log.Info("No matching schedule slot for withdrawn availability, stores already consistent",
			slog.String("trainer_id", trainerID),
			slog.String("day", string(removed.DayOfWeek)),
			slog.String("start", removed.StartTime),
			slog.String("end", removed.EndTime),
		)
		return weeklySlotToAPI(removed), nil
	}

	if err := s.store.DeleteScheduleSlot(ctx, match.ID); err != nil {
		s.log.Error("Schedule slot removal failed, rolling back weekly slot",
			slog.String("trainer_id", trainerID),
			slog.String("schedule_slot_id", match.ID),
			sl.Err(err),
		)

		if _, rbErr := s.store.AddWeeklySlot(ctx, removed); rbErr != nil {
			s.log.Error("Rollback of weekly slot removal failed, manual re-sync required",
				slog.String("trainer_id", trainerID),
				slog.String("day", string(removed.DayOfWeek)),
				slog.String("start", removed.StartTime),
				slog.String("end", removed.EndTime),
				sl.Err(rbErr),
			)
			return nil, fmt.Errorf("%s: %w", op, response.ErrPartialSync)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Matching schedule slot removed with availability",
		slog.String("trainer_id", trainerID),
		slog.String("schedule_slot_id", match.ID),
	)

	return weeklySlotToAPI(removed), nil
}

// SyncAvailability reconciles the normalized schedule with the authoritative
// weekly list and returns how many slots were added. Idempotent.
func (s *Service) SyncAvailability(ctx context.Context, actor Actor, trainerID string) (int, error) {
	const op = "service.SyncAvailability"

	if !canManageAvailability(actor, trainerID) {
		return 0, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if _, err := s.store.GetTrainer(ctx, trainerID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	release, err := s.acquire(ctx, op, trainerLockKey(trainerID))
	if err != nil {
		return 0, err
	}
	defer release()

	added, err := s.syncFromAvailability(ctx, trainerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return added, nil
}

func (s *Service) findWeeklySlot(ctx context.Context, trainerID, slotID string) (*models.WeeklySlot, error) {
	slots, err := s.store.ListWeeklySlots(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	for i := range slots {
		if slots[i].ID == slotID {
			return &slots[i], nil
		}
	}

	return nil, response.ErrNotFound
}

func sameDayIntervals(slots []models.WeeklySlot, day models.Weekday) []interval.Interval {
	var ivs []interval.Interval
	for _, slot := range slots {
		if slot.DayOfWeek == day {
			ivs = append(ivs, interval.Interval{
				Start: interval.Canonical(slot.StartTime),
				End:   interval.Canonical(slot.EndTime),
			})
		}
	}
	return ivs
}
