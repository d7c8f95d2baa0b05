package api

// Requests and responses exchanged with the HTTP layer. Actor identity comes
// from the X-Actor-ID / X-Actor-Role headers supplied by the auth gateway.

type DeclareAvailabilityRequest struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type WeeklySlotResponse struct {
	ID        string `json:"id"`
	TrainerID string `json:"trainer_id"`
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type ScheduleSlotRequest struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Note      string `json:"note"`
}

type ScheduleSlotUpdateRequest struct {
	DayOfWeek   *string `json:"day_of_week,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	IsAvailable *bool   `json:"is_available,omitempty"`
	Note        *string `json:"note,omitempty"`
}

type ScheduleSlotResponse struct {
	ID          string `json:"id"`
	TrainerID   string `json:"trainer_id"`
	DayOfWeek   string `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
	Note        string `json:"note,omitempty"`
}

type RegistrationRequest struct {
	CustomerID       string `json:"customer_id"`
	TrainerID        string `json:"trainer_id"`
	ServiceID        string `json:"service_id"`
	ScheduleSlotID   string `json:"schedule_slot_id"`
	StartDate        string `json:"start_date"` // 2006-01-02
	NumberOfSessions int    `json:"number_of_sessions"`
	Notes            string `json:"notes"`
}

type RegistrationStatusRequest struct {
	Status          string `json:"status"` // APPROVED or REJECTED
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type RegistrationProgressRequest struct {
	CompletedSessions int `json:"completed_sessions"`
}

type RegistrationResponse struct {
	ID                string  `json:"id"`
	CustomerID        string  `json:"customer_id"`
	TrainerID         string  `json:"trainer_id"`
	ServiceID         string  `json:"service_id"`
	ScheduleSlotID    string  `json:"schedule_slot_id"`
	Status            string  `json:"status"`
	StartDate         string  `json:"start_date"`
	EndDate           *string `json:"end_date,omitempty"`
	NumberOfSessions  int     `json:"number_of_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	TotalPrice        float64 `json:"total_price"`
	Notes             string  `json:"notes,omitempty"`
	RejectionReason   string  `json:"rejection_reason,omitempty"`
}

type SyncResponse struct {
	TrainerID  string `json:"trainer_id"`
	AddedSlots int    `json:"added_slots"`
}
