package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gym-scheduling-service/api"
	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/pkg/response"
	"gym-scheduling-service/pkg/sl"
)

// BookService creates a registration against an available schedule slot.
// Customers book for themselves and get a pending registration; staff book on
// behalf of a customer and the registration starts approved. The slot is
// taken (is_available=false) the moment the registration exists, not at
// approval, so two customers can never hold the same slot.
func (s *Service) BookService(ctx context.Context, actor Actor, req *api.RegistrationRequest) (*api.RegistrationResponse, error) {
	const op = "service.BookService"

	customerID := req.CustomerID

	switch {
	case actor.Role == models.RoleCustomer:
		if customerID == "" {
			customerID = actor.ID
		}
		if customerID != actor.ID {
			return nil, fmt.Errorf("%s: customer may only book for self: %w", op, response.ErrForbidden)
		}
	case actor.Role.IsStaff():
		if customerID == "" {
			return nil, fmt.Errorf("%s: customer_id is required: %w", op, response.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if req.NumberOfSessions < 1 {
		return nil, fmt.Errorf("%s: number_of_sessions must be at least 1: %w", op, response.ErrValidation)
	}

	startDate, err := time.Parse(dateOnly, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid start_date: %w", op, response.ErrValidation)
	}

	release, err := s.acquire(ctx, op, slotLockKey(req.ScheduleSlotID))
	if err != nil {
		return nil, err
	}
	defer release()

	// Preconditions, in order; the first failure wins.
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if customer.MembershipEndDate.Before(s.now()) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrMembershipExpired)
	}

	trainer, err := s.store.GetTrainer(ctx, req.TrainerID)
	if errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrTrainerUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !trainer.IsActive {
		return nil, fmt.Errorf("%s: %w", op, response.ErrTrainerUnavailable)
	}

	service, err := s.store.GetService(ctx, req.ServiceID)
	if errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrServiceInactive)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !service.IsActive {
		return nil, fmt.Errorf("%s: %w", op, response.ErrServiceInactive)
	}

	slot, err := s.store.GetScheduleSlot(ctx, req.ScheduleSlotID)
	if errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if slot.TrainerID != req.TrainerID || !slot.IsAvailable {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	}

	// Staff may backdate (recording a walk-in arrangement); customers may not.
	if !actor.Role.IsStaff() && startDate.Before(truncateToDate(s.now())) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidDate)
	}

	status := models.RegistrationPending
	if actor.Role.IsStaff() {
		status = models.RegistrationApproved
	}

	reg := &models.Registration{
		CustomerID:        customerID,
		TrainerID:         req.TrainerID,
		ServiceID:         req.ServiceID,
		ScheduleSlotID:    req.ScheduleSlotID,
		Status:            status,
		StartDate:         startDate,
		NumberOfSessions:  req.NumberOfSessions,
		CompletedSessions: 0,
		TotalPrice:        service.Price * float64(req.NumberOfSessions),
		Notes:             req.Notes,
	}

	if err := s.store.SetScheduleSlotAvailability(ctx, slot.ID, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateRegistration(ctx, reg)
	if err != nil {
		if rbErr := s.store.SetScheduleSlotAvailability(ctx, slot.ID, true); rbErr != nil {
			s.log.Error("Failed to release slot after aborted booking",
				slog.String("schedule_slot_id", slot.ID),
				sl.Err(rbErr),
			)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg.ID = id

	s.log.Info("Registration created",
		slog.String("registration_id", id),
		slog.String("customer_id", customerID),
		slog.String("schedule_slot_id", slot.ID),
		slog.String("status", string(status)),
	)

	return registrationToAPI(reg), nil
}

func (s *Service) GetRegistration(ctx context.Context, id string) (*api.RegistrationResponse, error) {
	const op = "service.GetRegistration"

	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return registrationToAPI(reg), nil
}

func (s *Service) ListRegistrationsByCustomer(ctx context.Context, customerID string) ([]*api.RegistrationResponse, error) {
	const op = "service.ListRegistrationsByCustomer"

	regs, err := s.store.ListRegistrationsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return registrationsToAPI(regs), nil
}

func (s *Service) ListRegistrationsByTrainer(ctx context.Context, trainerID string) ([]*api.RegistrationResponse, error) {
	const op = "service.ListRegistrationsByTrainer"

	regs, err := s.store.ListRegistrationsByTrainer(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return registrationsToAPI(regs), nil
}

// ApproveOrReject resolves a pending registration. Rejection requires a
// reason and releases the slot.
func (s *Service) ApproveOrReject(ctx context.Context, actor Actor, registrationID string, newStatus models.RegistrationStatus, rejectionReason string) (*api.RegistrationResponse, error) {
	const op = "service.ApproveOrReject"

	if actor.Role == models.RoleCustomer {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if newStatus != models.RegistrationApproved && newStatus != models.RegistrationRejected {
		return nil, fmt.Errorf("%s: status must be APPROVED or REJECTED: %w", op, response.ErrValidation)
	}

	if newStatus == models.RegistrationRejected && rejectionReason == "" {
		return nil, fmt.Errorf("%s: rejection requires a reason: %w", op, response.ErrValidation)
	}

	release, err := s.acquire(ctx, op, registrationLockKey(registrationID))
	if err != nil {
		return nil, err
	}
	defer release()

	reg, err := s.store.GetRegistration(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if actor.Role == models.RoleTrainer && actor.ID != reg.TrainerID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if reg.Status != models.RegistrationPending {
		return nil, fmt.Errorf("%s: %s -> %s: %w", op, reg.Status, newStatus, response.ErrIllegalTransition)
	}

	reg.Status = newStatus

	if newStatus == models.RegistrationRejected {
		now := s.now()
		reg.EndDate = &now
		reg.RejectionReason = rejectionReason
	}

	if err := s.store.UpdateRegistration(ctx, reg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if newStatus == models.RegistrationRejected {
		s.releaseSlot(ctx, reg.ScheduleSlotID)
	}

	return registrationToAPI(reg), nil
}

// RecordSessions updates progress on an approved registration and
// auto-completes it when the counter reaches the purchased total.
func (s *Service) RecordSessions(ctx context.Context, actor Actor, registrationID string, completedSessions int) (*api.RegistrationResponse, error) {
	const op = "service.RecordSessions"

	if actor.Role == models.RoleCustomer {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if completedSessions < 0 {
		return nil, fmt.Errorf("%s: completed_sessions must not be negative: %w", op, response.ErrValidation)
	}

	release, err := s.acquire(ctx, op, registrationLockKey(registrationID))
	if err != nil {
		return nil, err
	}
	defer release()

	reg, err := s.store.GetRegistration(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if actor.Role == models.RoleTrainer && actor.ID != reg.TrainerID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if reg.Status != models.RegistrationApproved {
		return nil, fmt.Errorf("%s: status %s: %w", op, reg.Status, response.ErrIllegalTransition)
	}

	if completedSessions > reg.NumberOfSessions {
		return nil, fmt.Errorf("%s: %d of %d sessions: %w",
			op, completedSessions, reg.NumberOfSessions, response.ErrValidation)
	}

	reg.CompletedSessions = completedSessions

	completed := completedSessions == reg.NumberOfSessions
	if completed {
		now := s.now()
		reg.Status = models.RegistrationCompleted
		reg.EndDate = &now
	}

	if err := s.store.UpdateRegistration(ctx, reg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if completed {
		s.releaseSlot(ctx, reg.ScheduleSlotID)
	}

	return registrationToAPI(reg), nil
}

// CancelBooking moves a pending or approved registration to canceled and
// releases its slot. Customers may cancel their own registrations.
func (s *Service) CancelBooking(ctx context.Context, actor Actor, registrationID string) (*api.RegistrationResponse, error) {
	const op = "service.CancelBooking"

	release, err := s.acquire(ctx, op, registrationLockKey(registrationID))
	if err != nil {
		return nil, err
	}
	defer release()

	reg, err := s.store.GetRegistration(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case actor.Role.IsStaff():
	case actor.Role == models.RoleCustomer && actor.ID == reg.CustomerID:
	case actor.Role == models.RoleTrainer && actor.ID == reg.TrainerID:
	default:
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if reg.Status != models.RegistrationPending && reg.Status != models.RegistrationApproved {
		return nil, fmt.Errorf("%s: status %s: %w", op, reg.Status, response.ErrIllegalTransition)
	}

	now := s.now()
	reg.Status = models.RegistrationCanceled
	reg.EndDate = &now

	if err := s.store.UpdateRegistration(ctx, reg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.releaseSlot(ctx, reg.ScheduleSlotID)

	return registrationToAPI(reg), nil
}

// releaseSlot makes the slot bookable again after its registration reached a
// terminal state. A missing slot is tolerated: it may have been withdrawn in
// the meantime.
func (s *Service) releaseSlot(ctx context.Context, slotID string) {
	if err := s.store.SetScheduleSlotAvailability(ctx, slotID, true); err != nil {
		s.log.Warn("Failed to release schedule slot",
			slog.String("schedule_slot_id", slotID),
			sl.Err(err),
		)
	}
}

func registrationsToAPI(regs []models.Registration) []*api.RegistrationResponse {
	result := make([]*api.RegistrationResponse, 0, len(regs))
	for i := range regs {
		result = append(result, registrationToAPI(&regs[i]))
	}
	return result
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
