package models

import "time"

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// weekdayOrder is the fixed Monday-first ordering used for slot listings.
var weekdayOrder = map[Weekday]int{
	Monday:    0,
	Tuesday:   1,
	Wednesday: 2,
	Thursday:  3,
	Friday:    4,
	Saturday:  5,
	Sunday:    6,
}

func (d Weekday) Valid() bool {
	_, ok := weekdayOrder[d]
	return ok
}

func (d Weekday) Order() int {
	return weekdayOrder[d]
}

type Role string

const (
	RoleCustomer     Role = "CUSTOMER"
	RoleTrainer      Role = "TRAINER"
	RoleAdmin        Role = "ADMIN"
	RoleReceptionist Role = "RECEPTIONIST"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleTrainer, RoleAdmin, RoleReceptionist:
		return true
	}
	return false
}

func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleReceptionist
}

// WeeklySlot is a trainer's recurring availability interval. The weekly list
// owned by the trainer is the authoritative form; normalized ScheduleSlot
// rows are derived from it.
type WeeklySlot struct {
	ID        string  `db:"id"`
	TrainerID string  `db:"trainer_id"`
	DayOfWeek Weekday `db:"day_of_week"`
	StartTime string  `db:"start_time"`
	EndTime   string  `db:"end_time"`
}

// ScheduleSlot is the normalized, independently addressable slot record that
// registrations reference. Unique per (trainer_id, day_of_week, start_time).
type ScheduleSlot struct {
	ID          string  `db:"id"`
	TrainerID   string  `db:"trainer_id"`
	DayOfWeek   Weekday `db:"day_of_week"`
	StartTime   string  `db:"start_time"`
	EndTime     string  `db:"end_time"`
	IsAvailable bool    `db:"is_available"`
	Note        string  `db:"note"`
}

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationApproved  RegistrationStatus = "APPROVED"
	RegistrationRejected  RegistrationStatus = "REJECTED"
	RegistrationCompleted RegistrationStatus = "COMPLETED"
	RegistrationCanceled  RegistrationStatus = "CANCELED"
)

func (s RegistrationStatus) Terminal() bool {
	switch s {
	case RegistrationRejected, RegistrationCompleted, RegistrationCanceled:
		return true
	}
	return false
}

// Registration is a customer's reservation of a trainer's service against a
// specific schedule slot. Never deleted, only transitioned to a terminal
// state.
type Registration struct {
	ID                string             `db:"id"`
	CustomerID        string             `db:"customer_id"`
	TrainerID         string             `db:"trainer_id"`
	ServiceID         string             `db:"service_id"`
	ScheduleSlotID    string             `db:"schedule_slot_id"`
	Status            RegistrationStatus `db:"status"`
	StartDate         time.Time          `db:"start_date"`
	EndDate           *time.Time         `db:"end_date"`
	NumberOfSessions  int                `db:"number_of_sessions"`
	CompletedSessions int                `db:"completed_sessions"`
	TotalPrice        float64            `db:"total_price"`
	Notes             string             `db:"notes"`
	RejectionReason   string             `db:"rejection_reason"`
}

// Trainer, Customer and Service are read models owned by the excluded CRUD
// modules; the scheduling core only reads them.

type Trainer struct {
	ID       string `db:"id"`
	FullName string `db:"full_name"`
	IsActive bool   `db:"is_active"`
}

type Customer struct {
	ID                string    `db:"id"`
	FullName          string    `db:"full_name"`
	MembershipEndDate time.Time `db:"membership_end_date"`
}

type Service struct {
	ID       string  `db:"id"`
	Name     string  `db:"name"`
	Price    float64 `db:"price"`
	IsActive bool    `db:"is_active"`
}
