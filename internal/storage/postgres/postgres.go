package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/pkg/response"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) DB() *sql.DB {
	return s.db
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// isUniqueViolation maps the pq unique_violation code.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// #### directory reads ####

func (s *Storage) GetTrainer(ctx context.Context, id string) (*models.Trainer, error) {
	const op = "storage.postgres.GetTrainer"

	var trainer models.Trainer

	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, is_active FROM trainers WHERE id=$1`, id).
		Scan(&trainer.ID, &trainer.FullName, &trainer.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &trainer, nil
}

func (s *Storage) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	const op = "storage.postgres.GetCustomer"

	var customer models.Customer

	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, membership_end_date FROM customers WHERE id=$1`, id).
		Scan(&customer.ID, &customer.FullName, &customer.MembershipEndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &customer, nil
}

func (s *Storage) GetService(ctx context.Context, id string) (*models.Service, error) {
	const op = "storage.postgres.GetService"

	var service models.Service

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, price, is_active FROM services WHERE id=$1`, id).
		Scan(&service.ID, &service.Name, &service.Price, &service.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &service, nil
}

// #### weekly availability ####

func (s *Storage) ListWeeklySlots(ctx context.Context, trainerID string) ([]models.WeeklySlot, error) {
	const op = "storage.postgres.ListWeeklySlots"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trainer_id, day_of_week, start_time, end_time
		FROM trainer_weekly_slots
		WHERE trainer_id=$1
		ORDER BY day_order(day_of_week), start_time`, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var slots []models.WeeklySlot

	for rows.Next() {
		var slot models.WeeklySlot

		err := rows.Scan(&slot.ID, &slot.TrainerID, &slot.DayOfWeek, &slot.StartTime, &slot.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

func (s *Storage) AddWeeklySlot(ctx context.Context, slot *models.WeeklySlot) (string, error) {
	const op = "storage.postgres.AddWeeklySlot"

	// Compensating inserts carry the original ID so a rolled-back removal
	// does not change the slot's identity.
	id := slot.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trainer_weekly_slots (id, trainer_id, day_of_week, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)`,
		id, slot.TrainerID, slot.DayOfWeek, slot.StartTime, slot.EndTime,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) RemoveWeeklySlot(ctx context.Context, trainerID, slotID string) (*models.WeeklySlot, error) {
	const op = "storage.postgres.RemoveWeeklySlot"

	var slot models.WeeklySlot

	err := s.db.QueryRowContext(ctx,
		`DELETE FROM trainer_weekly_slots
		WHERE id=$1 AND trainer_id=$2
		RETURNING id, trainer_id, day_of_week, start_time, end_time`,
		slotID, trainerID).
		Scan(&slot.ID, &slot.TrainerID, &slot.DayOfWeek, &slot.StartTime, &slot.EndTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &slot, nil
}

// #### schedule slots ####

func scanScheduleSlot(row interface{ Scan(...any) error }, slot *models.ScheduleSlot) error {
	return row.Scan(
		&slot.ID,
		&slot.TrainerID,
		&slot.DayOfWeek,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsAvailable,
		&slot.Note,
	)
}

const scheduleSlotColumns = `id, trainer_id, day_of_week, start_time, end_time, is_available, note`

func (s *Storage) listScheduleSlots(ctx context.Context, op, query string, args ...any) ([]models.ScheduleSlot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var slots []models.ScheduleSlot

	for rows.Next() {
		var slot models.ScheduleSlot

		if err := scanScheduleSlot(rows, &slot); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

func (s *Storage) ListScheduleSlots(ctx context.Context, trainerID string) ([]models.ScheduleSlot, error) {
	const op = "storage.postgres.ListScheduleSlots"

	return s.listScheduleSlots(ctx, op,
		`SELECT `+scheduleSlotColumns+`
		FROM schedule_slots
		WHERE trainer_id=$1
		ORDER BY day_order(day_of_week), start_time`, trainerID)
}

func (s *Storage) ListAvailableScheduleSlots(ctx context.Context, trainerID string) ([]models.ScheduleSlot, error) {
	const op = "storage.postgres.ListAvailableScheduleSlots"

	return s.listScheduleSlots(ctx, op,
		`SELECT `+scheduleSlotColumns+`
		FROM schedule_slots
		WHERE trainer_id=$1 AND is_available=TRUE
		ORDER BY day_order(day_of_week), start_time`, trainerID)
}

func (s *Storage) GetScheduleSlot(ctx context.Context, id string) (*models.ScheduleSlot, error) {
	const op = "storage.postgres.GetScheduleSlot"

	var slot models.ScheduleSlot

	row := s.db.QueryRowContext(ctx,
		`SELECT `+scheduleSlotColumns+` FROM schedule_slots WHERE id=$1`, id)

	if err := scanScheduleSlot(row, &slot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &slot, nil
}

func (s *Storage) FindScheduleSlot(ctx context.Context, trainerID string, day models.Weekday, start, end string) (*models.ScheduleSlot, error) {
	const op = "storage.postgres.FindScheduleSlot"

	var slot models.ScheduleSlot

	row := s.db.QueryRowContext(ctx,
		`SELECT `+scheduleSlotColumns+`
		FROM schedule_slots
		WHERE trainer_id=$1 AND day_of_week=$2 AND start_time=$3 AND end_time=$4`,
		trainerID, day, start, end)

	if err := scanScheduleSlot(row, &slot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &slot, nil
}

func (s *Storage) CreateScheduleSlot(ctx context.Context, slot *models.ScheduleSlot) (string, error) {
	const op = "storage.postgres.CreateScheduleSlot"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_slots (id, trainer_id, day_of_week, start_time, end_time, is_available, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, slot.TrainerID, slot.DayOfWeek, slot.StartTime, slot.EndTime, slot.IsAvailable, slot.Note,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) UpdateScheduleSlot(ctx context.Context, slot *models.ScheduleSlot) error {
	const op = "storage.postgres.UpdateScheduleSlot"

	res, err := s.db.ExecContext(ctx,
		`UPDATE schedule_slots
		SET day_of_week=$1, start_time=$2, end_time=$3, is_available=$4, note=$5
		WHERE id=$6`,
		slot.DayOfWeek, slot.StartTime, slot.EndTime, slot.IsAvailable, slot.Note, slot.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteScheduleSlot(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteScheduleSlot"

	res, err := s.db.ExecContext(ctx, `DELETE FROM schedule_slots WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) SetScheduleSlotAvailability(ctx context.Context, id string, available bool) error {
	const op = "storage.postgres.SetScheduleSlotAvailability"

	res, err := s.db.ExecContext(ctx,
		`UPDATE schedule_slots SET is_available=$1 WHERE id=$2`, available, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### registrations ####

const registrationColumns = `id, customer_id, trainer_id, service_id, schedule_slot_id, status,
	start_date, end_date, number_of_sessions, completed_sessions, total_price, notes, rejection_reason`

func scanRegistration(row interface{ Scan(...any) error }, reg *models.Registration) error {
	return row.Scan(
		&reg.ID,
		&reg.CustomerID,
		&reg.TrainerID,
		&reg.ServiceID,
		&reg.ScheduleSlotID,
		&reg.Status,
		&reg.StartDate,
		&reg.EndDate,
		&reg.NumberOfSessions,
		&reg.CompletedSessions,
		&reg.TotalPrice,
		&reg.Notes,
		&reg.RejectionReason,
	)
}

func (s *Storage) CreateRegistration(ctx context.Context, reg *models.Registration) (string, error) {
	const op = "storage.postgres.CreateRegistration"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO registrations
		(id, customer_id, trainer_id, service_id, schedule_slot_id, status,
		start_date, end_date, number_of_sessions, completed_sessions, total_price, notes, rejection_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, reg.CustomerID, reg.TrainerID, reg.ServiceID, reg.ScheduleSlotID, reg.Status,
		reg.StartDate, reg.EndDate, reg.NumberOfSessions, reg.CompletedSessions,
		reg.TotalPrice, reg.Notes, reg.RejectionReason,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetRegistration(ctx context.Context, id string) (*models.Registration, error) {
	const op = "storage.postgres.GetRegistration"

	var reg models.Registration

	row := s.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id=$1`, id)

	if err := scanRegistration(row, &reg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &reg, nil
}

func (s *Storage) listRegistrations(ctx context.Context, op, query string, args ...any) ([]models.Registration, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var regs []models.Registration

	for rows.Next() {
		var reg models.Registration

		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return regs, nil
}

func (s *Storage) ListRegistrationsByCustomer(ctx context.Context, customerID string) ([]models.Registration, error) {
	const op = "storage.postgres.ListRegistrationsByCustomer"

	return s.listRegistrations(ctx, op,
		`SELECT `+registrationColumns+`
		FROM registrations WHERE customer_id=$1 ORDER BY start_date`, customerID)
}

func (s *Storage) ListRegistrationsByTrainer(ctx context.Context, trainerID string) ([]models.Registration, error) {
	const op = "storage.postgres.ListRegistrationsByTrainer"

	return s.listRegistrations(ctx, op,
		`SELECT `+registrationColumns+`
		FROM registrations WHERE trainer_id=$1 ORDER BY start_date`, trainerID)
}

func (s *Storage) UpdateRegistration(ctx context.Context, reg *models.Registration) error {
	const op = "storage.postgres.UpdateRegistration"

	res, err := s.db.ExecContext(ctx,
		`UPDATE registrations
		SET status=$1, end_date=$2, completed_sessions=$3, notes=$4, rejection_reason=$5
		WHERE id=$6`,
		reg.Status, reg.EndDate, reg.CompletedSessions, reg.Notes, reg.RejectionReason, reg.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) CountActiveRegistrationsBySlot(ctx context.Context, slotID string) (int, error) {
	const op = "storage.postgres.CountActiveRegistrationsBySlot"

	var count int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations
		WHERE schedule_slot_id=$1 AND status IN ($2, $3)`,
		slotID, models.RegistrationPending, models.RegistrationApproved).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}
