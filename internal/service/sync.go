package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gym-scheduling-service/internal/interval"
	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/pkg/response"
)

// slotValueKey is the value identity a weekly slot and a schedule slot are
// matched on. There is no shared foreign key between the two stores, so time
// values are always normalized before comparison or the match silently fails
// on formatting drift ("9:00" vs "09:00").
func slotValueKey(day models.Weekday, start, end string) string {
	return fmt.Sprintf("%s|%s|%s", day, interval.Canonical(start), interval.Canonical(end))
}

// syncFromAvailability creates a schedule slot for every weekly slot that has
// no value match yet. One-way: it never deletes schedule slots. Callers must
// hold the trainer lock.
func (s *Service) syncFromAvailability(ctx context.Context, trainerID string) (int, error) {
	const op = "service.syncFromAvailability"

	weekly, err := s.store.ListWeeklySlots(ctx, trainerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	scheduled, err := s.store.ListScheduleSlots(ctx, trainerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	existing := make(map[string]struct{}, len(scheduled))
	for _, slot := range scheduled {
		existing[slotValueKey(slot.DayOfWeek, slot.StartTime, slot.EndTime)] = struct{}{}
	}

	added := 0

	for _, slot := range weekly {
		key := slotValueKey(slot.DayOfWeek, slot.StartTime, slot.EndTime)
		if _, ok := existing[key]; ok {
			continue
		}

		_, err := s.store.CreateScheduleSlot(ctx, &models.ScheduleSlot{
			TrainerID:   trainerID,
			DayOfWeek:   slot.DayOfWeek,
			StartTime:   interval.Canonical(slot.StartTime),
			EndTime:     interval.Canonical(slot.EndTime),
			IsAvailable: true,
			Note:        "",
		})
		if err != nil {
			return added, fmt.Errorf("%s: create slot %s: %w", op, key, err)
		}

		existing[key] = struct{}{}
		added++
	}

	if added > 0 {
		s.log.Info("Schedule synchronized from availability",
			slog.String("trainer_id", trainerID),
			slog.Int("added", added),
		)
	}

	return added, nil
}

// findMatchingScheduleSlot locates the schedule slot carrying the same
// normalized (day, start, end) value as the weekly slot. nil means the two
// stores are already consistent. Schedule slots are stored with canonical
// times, so the lookup normalizes the weekly values before querying.
func (s *Service) findMatchingScheduleSlot(ctx context.Context, weekly *models.WeeklySlot) (*models.ScheduleSlot, error) {
	const op = "service.findMatchingScheduleSlot"

	match, err := s.store.FindScheduleSlot(ctx, weekly.TrainerID, weekly.DayOfWeek,
		interval.Canonical(weekly.StartTime), interval.Canonical(weekly.EndTime))
	if errors.Is(err, response.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return match, nil
}
