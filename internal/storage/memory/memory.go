package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/pkg/response"

	"github.com/google/uuid"
)

// Storage is a map-backed Store used by tests and single-node dev runs. It
// enforces the same sentinels and uniqueness rules as the postgres backend.
type Storage struct {
	mu sync.RWMutex

	trainers  map[string]models.Trainer
	customers map[string]models.Customer
	services  map[string]models.Service

	weeklySlots   map[string]models.WeeklySlot
	scheduleSlots map[string]models.ScheduleSlot
	registrations map[string]models.Registration
}

func New() *Storage {
	return &Storage{
		trainers:      make(map[string]models.Trainer),
		customers:     make(map[string]models.Customer),
		services:      make(map[string]models.Service),
		weeklySlots:   make(map[string]models.WeeklySlot),
		scheduleSlots: make(map[string]models.ScheduleSlot),
		registrations: make(map[string]models.Registration),
	}
}

func (s *Storage) Close() error {
	return nil
}

// Seed helpers for the directory read models.

func (s *Storage) PutTrainer(t models.Trainer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trainers[t.ID] = t
}

func (s *Storage) PutCustomer(c models.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

func (s *Storage) PutService(svc models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

// #### directory reads ####

func (s *Storage) GetTrainer(_ context.Context, id string) (*models.Trainer, error) {
	const op = "storage.memory.GetTrainer"

	s.mu.RLock()
	defer s.mu.RUnlock()

	trainer, ok := s.trainers[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return &trainer, nil
}

func (s *Storage) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	const op = "storage.memory.GetCustomer"

	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return &customer, nil
}

func (s *Storage) GetService(_ context.Context, id string) (*models.Service, error) {
	const op = "storage.memory.GetService"

	s.mu.RLock()
	defer s.mu.RUnlock()

	service, ok := s.services[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return &service, nil
}

// #### weekly availability ####

func (s *Storage) ListWeeklySlots(_ context.Context, trainerID string) ([]models.WeeklySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var slots []models.WeeklySlot
	for _, slot := range s.weeklySlots {
		if slot.TrainerID == trainerID {
			slots = append(slots, slot)
		}
	}

	sortByDayStart(slots, func(w models.WeeklySlot) (models.Weekday, string) {
		return w.DayOfWeek, w.StartTime
	})

	return slots, nil
}

func (s *Storage) AddWeeklySlot(_ context.Context, slot *models.WeeklySlot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *slot
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.weeklySlots[stored.ID] = stored

	return stored.ID, nil
}

func (s *Storage) RemoveWeeklySlot(_ context.Context, trainerID, slotID string) (*models.WeeklySlot, error) {
	const op = "storage.memory.RemoveWeeklySlot"

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.weeklySlots[slotID]
	if !ok || slot.TrainerID != trainerID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	delete(s.weeklySlots, slotID)

	return &slot, nil
}

// #### schedule slots ####

func (s *Storage) ListScheduleSlots(_ context.Context, trainerID string) ([]models.ScheduleSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listSlotsLocked(trainerID, false), nil
}

func (s *Storage) ListAvailableScheduleSlots(_ context.Context, trainerID string) ([]models.ScheduleSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listSlotsLocked(trainerID, true), nil
}

func (s *Storage) listSlotsLocked(trainerID string, onlyAvailable bool) []models.ScheduleSlot {
	var slots []models.ScheduleSlot
	for _, slot := range s.scheduleSlots {
		if slot.TrainerID != trainerID {
			continue
		}
		if onlyAvailable && !slot.IsAvailable {
			continue
		}
		slots = append(slots, slot)
	}

	sortByDayStart(slots, func(sl models.ScheduleSlot) (models.Weekday, string) {
		return sl.DayOfWeek, sl.StartTime
	})

	return slots
}

func (s *Storage) GetScheduleSlot(_ context.Context, id string) (*models.ScheduleSlot, error) {
	const op = "storage.memory.GetScheduleSlot"

	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.scheduleSlots[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return &slot, nil
}

func (s *Storage) FindScheduleSlot(_ context.Context, trainerID string, day models.Weekday, start, end string) (*models.ScheduleSlot, error) {
	const op = "storage.memory.FindScheduleSlot"

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, slot := range s.scheduleSlots {
		if slot.TrainerID == trainerID && slot.DayOfWeek == day &&
			slot.StartTime == start && slot.EndTime == end {
			found := slot
			return &found, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
}

func (s *Storage) CreateScheduleSlot(_ context.Context, slot *models.ScheduleSlot) (string, error) {
	const op = "storage.memory.CreateScheduleSlot"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.scheduleSlots {
		if existing.TrainerID == slot.TrainerID && existing.DayOfWeek == slot.DayOfWeek &&
			existing.StartTime == slot.StartTime {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
	}

	stored := *slot
	stored.ID = uuid.NewString()
	s.scheduleSlots[stored.ID] = stored

	return stored.ID, nil
}

func (s *Storage) UpdateScheduleSlot(_ context.Context, slot *models.ScheduleSlot) error {
	const op = "storage.memory.UpdateScheduleSlot"

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.scheduleSlots[slot.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	for id, existing := range s.scheduleSlots {
		if id == slot.ID {
			continue
		}
		if existing.TrainerID == current.TrainerID && existing.DayOfWeek == slot.DayOfWeek &&
			existing.StartTime == slot.StartTime {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
	}

	updated := *slot
	updated.TrainerID = current.TrainerID
	s.scheduleSlots[slot.ID] = updated

	return nil
}

func (s *Storage) DeleteScheduleSlot(_ context.Context, id string) error {
	const op = "storage.memory.DeleteScheduleSlot"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scheduleSlots[id]; !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	delete(s.scheduleSlots, id)

	return nil
}

func (s *Storage) SetScheduleSlotAvailability(_ context.Context, id string, available bool) error {
	const op = "storage.memory.SetScheduleSlotAvailability"

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.scheduleSlots[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	slot.IsAvailable = available
	s.scheduleSlots[id] = slot

	return nil
}

// #### registrations ####

func (s *Storage) CreateRegistration(_ context.Context, reg *models.Registration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *reg
	stored.ID = uuid.NewString()
	s.registrations[stored.ID] = stored

	return stored.ID, nil
}

func (s *Storage) GetRegistration(_ context.Context, id string) (*models.Registration, error) {
	const op = "storage.memory.GetRegistration"

	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.registrations[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return &reg, nil
}

func (s *Storage) ListRegistrationsByCustomer(_ context.Context, customerID string) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var regs []models.Registration
	for _, reg := range s.registrations {
		if reg.CustomerID == customerID {
			regs = append(regs, reg)
		}
	}

	sort.Slice(regs, func(i, j int) bool { return regs[i].StartDate.Before(regs[j].StartDate) })

	return regs, nil
}

func (s *Storage) ListRegistrationsByTrainer(_ context.Context, trainerID string) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var regs []models.Registration
	for _, reg := range s.registrations {
		if reg.TrainerID == trainerID {
			regs = append(regs, reg)
		}
	}

	sort.Slice(regs, func(i, j int) bool { return regs[i].StartDate.Before(regs[j].StartDate) })

	return regs, nil
}

func (s *Storage) UpdateRegistration(_ context.Context, reg *models.Registration) error {
	const op = "storage.memory.UpdateRegistration"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registrations[reg.ID]; !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	s.registrations[reg.ID] = *reg

	return nil
}

func (s *Storage) CountActiveRegistrationsBySlot(_ context.Context, slotID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, reg := range s.registrations {
		if reg.ScheduleSlotID == slotID &&
			(reg.Status == models.RegistrationPending || reg.Status == models.RegistrationApproved) {
			count++
		}
	}

	return count, nil
}

func sortByDayStart[T any](items []T, key func(T) (models.Weekday, string)) {
	sort.Slice(items, func(i, j int) bool {
		di, si := key(items[i])
		dj, sj := key(items[j])
		if di.Order() != dj.Order() {
			return di.Order() < dj.Order()
		}
		return si < sj
	})
}
