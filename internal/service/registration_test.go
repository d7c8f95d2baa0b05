package service

import (
	"context"
	"testing"

	"gym-scheduling-service/api"
	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerActor = Actor{ID: "customer-1", Role: models.RoleCustomer}

// book declares Monday 09:00-10:00 if needed and registers customer-1 for 5
// sessions against the resulting slot.
func book(t *testing.T, svc *Service, actor Actor, customerID string) *api.RegistrationResponse {
	t.Helper()
	ctx := context.Background()

	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", true)
	require.NoError(t, err)
	if len(slots) == 0 {
		declare(t, svc, "Monday", "09:00", "10:00")
		slots, err = svc.ListScheduleSlots(ctx, "trainer-1", true)
		require.NoError(t, err)
	}
	require.NotEmpty(t, slots)

	reg, err := svc.BookService(ctx, actor, &api.RegistrationRequest{
		CustomerID:       customerID,
		TrainerID:        "trainer-1",
		ServiceID:        "service-1",
		ScheduleSlotID:   slots[0].ID,
		StartDate:        "2025-06-09",
		NumberOfSessions: 5,
	})
	require.NoError(t, err)

	return reg
}

func TestBookServiceCustomerPath(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg := book(t, svc, customerActor, "customer-1")

	assert.Equal(t, string(models.RegistrationPending), reg.Status)
	assert.Equal(t, 0, reg.CompletedSessions)
	assert.Equal(t, 150.0, reg.TotalPrice) // 30 * 5 sessions
	assert.Nil(t, reg.EndDate)

	// Booking takes the slot immediately so nobody else can hold it.
	available, err := svc.ListScheduleSlots(ctx, "trainer-1", true)
	require.NoError(t, err)
	assert.Empty(t, available)

	_, err = svc.BookService(ctx, customerActor, &api.RegistrationRequest{
		CustomerID:       "customer-1",
		TrainerID:        "trainer-1",
		ServiceID:        "service-1",
		ScheduleSlotID:   reg.ScheduleSlotID,
		StartDate:        "2025-06-09",
		NumberOfSessions: 1,
	})
	assert.ErrorIs(t, err, response.ErrSlotNotAvailable)
}

func TestBookServiceStaffStartsApproved(t *testing.T) {
	svc, _ := newTestService(t)

	reg := book(t, svc, staff, "customer-1")
	assert.Equal(t, string(models.RegistrationApproved), reg.Status)
}

func TestBookServicePreconditions(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	declare(t, svc, "Monday", "09:00", "10:00")
	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", true)
	require.NoError(t, err)
	slotID := slots[0].ID

	base := func() *api.RegistrationRequest {
		return &api.RegistrationRequest{
			CustomerID:       "customer-1",
			TrainerID:        "trainer-1",
			ServiceID:        "service-1",
			ScheduleSlotID:   slotID,
			StartDate:        "2025-06-09",
			NumberOfSessions: 3,
		}
	}

	t.Run("expired membership", func(t *testing.T) {
		store.PutCustomer(models.Customer{ID: "expired", MembershipEndDate: testNow.AddDate(0, -1, 0)})
		req := base()
		req.CustomerID = "expired"
		_, err := svc.BookService(ctx, Actor{ID: "expired", Role: models.RoleCustomer}, req)
		assert.ErrorIs(t, err, response.ErrMembershipExpired)
	})

	t.Run("inactive trainer", func(t *testing.T) {
		store.PutTrainer(models.Trainer{ID: "trainer-off", IsActive: false})
		req := base()
		req.TrainerID = "trainer-off"
		_, err := svc.BookService(ctx, customerActor, req)
		assert.ErrorIs(t, err, response.ErrTrainerUnavailable)
	})

	t.Run("unknown trainer", func(t *testing.T) {
		req := base()
		req.TrainerID = "nobody"
		_, err := svc.BookService(ctx, customerActor, req)
		assert.ErrorIs(t, err, response.ErrTrainerUnavailable)
	})

	t.Run("inactive service", func(t *testing.T) {
		store.PutService(models.Service{ID: "service-off", Price: 10, IsActive: false})
		req := base()
		req.ServiceID = "service-off"
		_, err := svc.BookService(ctx, customerActor, req)
		assert.ErrorIs(t, err, response.ErrServiceInactive)
	})

	t.Run("slot of another trainer", func(t *testing.T) {
		store.PutTrainer(models.Trainer{ID: "trainer-2", IsActive: true})
		req := base()
		req.TrainerID = "trainer-2"
		_, err := svc.BookService(ctx, customerActor, req)
		assert.ErrorIs(t, err, response.ErrSlotNotAvailable)
	})

	t.Run("past start date for customer", func(t *testing.T) {
		req := base()
		req.StartDate = "2025-05-01"
		_, err := svc.BookService(ctx, customerActor, req)
		assert.ErrorIs(t, err, response.ErrInvalidDate)
	})

	t.Run("staff may backdate", func(t *testing.T) {
		req := base()
		req.StartDate = "2025-05-01"
		reg, err := svc.BookService(ctx, staff, req)
		require.NoError(t, err)
		assert.Equal(t, "2025-05-01", reg.StartDate)
	})

	t.Run("customer cannot book for someone else", func(t *testing.T) {
		req := base()
		req.CustomerID = "customer-2"
		_, err := svc.BookService(ctx, customerActor, req)
		assert.ErrorIs(t, err, response.ErrForbidden)
	})

	t.Run("zero sessions", func(t *testing.T) {
		req := base()
		req.NumberOfSessions = 0
		_, err := svc.BookService(ctx, customerActor, req)
		assert.ErrorIs(t, err, response.ErrValidation)
	})
}

func TestApproveAndReject(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg := book(t, svc, customerActor, "customer-1")

	_, err := svc.ApproveOrReject(ctx, customerActor, reg.ID, models.RegistrationApproved, "")
	assert.ErrorIs(t, err, response.ErrForbidden)

	_, err = svc.ApproveOrReject(ctx, trainerActor, reg.ID, models.RegistrationRejected, "")
	assert.ErrorIs(t, err, response.ErrValidation)

	approved, err := svc.ApproveOrReject(ctx, trainerActor, reg.ID, models.RegistrationApproved, "")
	require.NoError(t, err)
	assert.Equal(t, string(models.RegistrationApproved), approved.Status)

	// Already resolved.
	_, err = svc.ApproveOrReject(ctx, trainerActor, reg.ID, models.RegistrationRejected, "double booked")
	assert.ErrorIs(t, err, response.ErrIllegalTransition)
}

func TestRejectReleasesSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg := book(t, svc, customerActor, "customer-1")

	rejected, err := svc.ApproveOrReject(ctx, staff, reg.ID, models.RegistrationRejected, "trainer on leave")
	require.NoError(t, err)
	assert.Equal(t, string(models.RegistrationRejected), rejected.Status)
	assert.Equal(t, "trainer on leave", rejected.RejectionReason)
	require.NotNil(t, rejected.EndDate)

	available, err := svc.ListScheduleSlots(ctx, "trainer-1", true)
	require.NoError(t, err)
	assert.Len(t, available, 1)
}

func TestRecordSessionsAutoCompletes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg := book(t, svc, customerActor, "customer-1")
	_, err := svc.ApproveOrReject(ctx, trainerActor, reg.ID, models.RegistrationApproved, "")
	require.NoError(t, err)

	partial, err := svc.RecordSessions(ctx, trainerActor, reg.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, partial.CompletedSessions)
	assert.Equal(t, string(models.RegistrationApproved), partial.Status)
	assert.Nil(t, partial.EndDate)

	done, err := svc.RecordSessions(ctx, trainerActor, reg.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, string(models.RegistrationCompleted), done.Status)
	require.NotNil(t, done.EndDate)

	// Completion frees the slot.
	available, err := svc.ListScheduleSlots(ctx, "trainer-1", true)
	require.NoError(t, err)
	assert.Len(t, available, 1)

	// Terminal: cancel after completion must fail.
	_, err = svc.CancelBooking(ctx, customerActor, reg.ID)
	assert.ErrorIs(t, err, response.ErrIllegalTransition)
}

func TestRecordSessionsOverCountRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg := book(t, svc, staff, "customer-1")

	_, err := svc.RecordSessions(ctx, trainerActor, reg.ID, 6)
	assert.ErrorIs(t, err, response.ErrValidation)

	// Nothing mutated.
	got, err := svc.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CompletedSessions)
	assert.Equal(t, string(models.RegistrationApproved), got.Status)
}

func TestRecordSessionsRequiresApproved(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg := book(t, svc, customerActor, "customer-1")

	_, err := svc.RecordSessions(ctx, trainerActor, reg.ID, 1)
	assert.ErrorIs(t, err, response.ErrIllegalTransition)
}

func TestCancelBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg := book(t, svc, customerActor, "customer-1")

	other := Actor{ID: "customer-2", Role: models.RoleCustomer}
	_, err := svc.CancelBooking(ctx, other, reg.ID)
	assert.ErrorIs(t, err, response.ErrForbidden)

	canceled, err := svc.CancelBooking(ctx, customerActor, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.RegistrationCanceled), canceled.Status)
	require.NotNil(t, canceled.EndDate)

	// Slot is bookable again.
	available, err := svc.ListScheduleSlots(ctx, "trainer-1", true)
	require.NoError(t, err)
	assert.Len(t, available, 1)

	// Terminal immutability.
	_, err = svc.CancelBooking(ctx, customerActor, reg.ID)
	assert.ErrorIs(t, err, response.ErrIllegalTransition)
	_, err = svc.ApproveOrReject(ctx, staff, reg.ID, models.RegistrationApproved, "")
	assert.ErrorIs(t, err, response.ErrIllegalTransition)
	_, err = svc.RecordSessions(ctx, staff, reg.ID, 1)
	assert.ErrorIs(t, err, response.ErrIllegalTransition)
}

func TestOwnershipQueries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg := book(t, svc, customerActor, "customer-1")

	byCustomer, err := svc.ListRegistrationsByCustomer(ctx, "customer-1")
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, reg.ID, byCustomer[0].ID)

	byTrainer, err := svc.ListRegistrationsByTrainer(ctx, "trainer-1")
	require.NoError(t, err)
	require.Len(t, byTrainer, 1)
	assert.Equal(t, "customer-1", byTrainer[0].CustomerID)
}

func TestTrainerCannotResolveOthersRegistrations(t *testing.T) {
	svc, _ := newTestService(t)

	reg := book(t, svc, customerActor, "customer-1")

	other := Actor{ID: "trainer-2", Role: models.RoleTrainer}
	_, err := svc.ApproveOrReject(context.Background(), other, reg.ID, models.RegistrationApproved, "")
	assert.ErrorIs(t, err, response.ErrForbidden)
}
