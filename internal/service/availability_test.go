package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"gym-scheduling-service/api"
	"gym-scheduling-service/internal/lock"
	"gym-scheduling-service/internal/models"
	"gym-scheduling-service/internal/storage"
	"gym-scheduling-service/internal/storage/memory"
	"gym-scheduling-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) // a Monday

func newTestService(t *testing.T) (*Service, *memory.Storage) {
	t.Helper()

	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(store, lock.NewLocalLock(), log)
	svc.now = func() time.Time { return testNow }

	store.PutTrainer(models.Trainer{ID: "trainer-1", FullName: "Iva Petrova", IsActive: true})
	store.PutCustomer(models.Customer{
		ID:                "customer-1",
		FullName:          "Dan Kolev",
		MembershipEndDate: testNow.AddDate(0, 6, 0),
	})
	store.PutService(models.Service{ID: "service-1", Name: "Personal training", Price: 30, IsActive: true})

	return svc, store
}

var (
	staff        = Actor{ID: "admin-1", Role: models.RoleAdmin}
	trainerActor = Actor{ID: "trainer-1", Role: models.RoleTrainer}
)

func declare(t *testing.T, svc *Service, day, start, end string) *api.WeeklySlotResponse {
	t.Helper()

	slot, err := svc.DeclareAvailability(context.Background(), trainerActor, "trainer-1",
		&api.DeclareAvailabilityRequest{DayOfWeek: day, StartTime: start, EndTime: end})
	require.NoError(t, err)

	return slot
}

func TestDeclareAvailabilityRejectsOverlap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	declare(t, svc, "Monday", "09:00", "10:00")

	_, err := svc.DeclareAvailability(ctx, trainerActor, "trainer-1",
		&api.DeclareAvailabilityRequest{DayOfWeek: "Monday", StartTime: "09:30", EndTime: "10:30"})
	assert.ErrorIs(t, err, response.ErrConflict)

	// The rejected declaration must not have leaked into either store.
	weekly, err := svc.ListAvailability(ctx, "trainer-1")
	require.NoError(t, err)
	assert.Len(t, weekly, 1)

	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestDeclareAvailabilityTouchingSlots(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	declare(t, svc, "Monday", "09:00", "10:00")
	declare(t, svc, "Monday", "10:00", "11:00")

	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "10:00", slots[1].StartTime)
	assert.True(t, slots[0].IsAvailable)
	assert.True(t, slots[1].IsAvailable)
}

func TestDeclareAvailabilityValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.DeclareAvailability(ctx, trainerActor, "trainer-1",
		&api.DeclareAvailabilityRequest{DayOfWeek: "Monday", StartTime: "10:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = svc.DeclareAvailability(ctx, trainerActor, "trainer-1",
		&api.DeclareAvailabilityRequest{DayOfWeek: "Funday", StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, response.ErrValidation)

	other := Actor{ID: "trainer-2", Role: models.RoleTrainer}
	_, err = svc.DeclareAvailability(ctx, other, "trainer-1",
		&api.DeclareAvailabilityRequest{DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, response.ErrForbidden)
}

func TestDeclareNormalizesClockValues(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	slot := declare(t, svc, "Monday", "9:00", "10:00")
	assert.Equal(t, "09:00", slot.StartTime)

	// "09:00" and "9:00" are the same wall-clock value and must conflict.
	_, err := svc.DeclareAvailability(ctx, trainerActor, "trainer-1",
		&api.DeclareAvailabilityRequest{DayOfWeek: "Monday", StartTime: "09:00", EndTime: "09:30"})
	assert.ErrorIs(t, err, response.ErrConflict)
}

func TestSyncIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	declare(t, svc, "Monday", "09:00", "10:00")
	declare(t, svc, "Wednesday", "18:00", "19:00")

	// Declare already synced both; a fresh sync adds nothing.
	added, err := svc.SyncAvailability(ctx, trainerActor, "trainer-1")
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	added, err = svc.SyncAvailability(ctx, trainerActor, "trainer-1")
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestSyncRecreatesMissingSlots(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	declare(t, svc, "Monday", "09:00", "10:00")

	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	require.Len(t, slots, 1)

	require.NoError(t, svc.DeleteScheduleSlot(ctx, staff, slots[0].ID))

	added, err := svc.SyncAvailability(ctx, staff, "trainer-1")
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	slots, err = svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].IsAvailable)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "10:00", slots[0].EndTime)
}

func TestWithdrawRemovesMatchingScheduleSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	slot := declare(t, svc, "Monday", "09:00", "10:00")

	removed, err := svc.WithdrawAvailability(ctx, trainerActor, "trainer-1", slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", removed.StartTime)

	weekly, err := svc.ListAvailability(ctx, "trainer-1")
	require.NoError(t, err)
	assert.Empty(t, weekly)

	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestWithdrawWithoutMatchingScheduleSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	slot := declare(t, svc, "Monday", "09:00", "10:00")

	normalized, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	require.Len(t, normalized, 1)
	require.NoError(t, svc.DeleteScheduleSlot(ctx, staff, normalized[0].ID))

	// Stores already consistent on the normalized side; withdraw still works.
	_, err = svc.WithdrawAvailability(ctx, trainerActor, "trainer-1", slot.ID)
	require.NoError(t, err)
}

func TestWithdrawUnknownSlot(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.WithdrawAvailability(context.Background(), trainerActor, "trainer-1", "missing")
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestWithdrawBlockedByActiveRegistration(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	weekly := declare(t, svc, "Monday", "09:00", "10:00")
	reg := book(t, svc, Actor{ID: "customer-1", Role: models.RoleCustomer}, "customer-1")

	_, err := svc.WithdrawAvailability(ctx, trainerActor, "trainer-1", weekly.ID)
	assert.ErrorIs(t, err, response.ErrBusy)

	_, err = svc.CancelBooking(ctx, staff, reg.ID)
	require.NoError(t, err)

	_, err = svc.WithdrawAvailability(ctx, trainerActor, "trainer-1", weekly.ID)
	require.NoError(t, err)
}

func TestUpdateScheduleSlotOverlapValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	declare(t, svc, "Monday", "09:00", "10:00")
	declare(t, svc, "Monday", "10:00", "11:00")

	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	newEnd := "10:30"
	_, err = svc.UpdateScheduleSlot(ctx, staff, slots[0].ID,
		&api.ScheduleSlotUpdateRequest{EndTime: &newEnd})
	assert.ErrorIs(t, err, response.ErrConflict)

	note := "prefer the small hall"
	updated, err := svc.UpdateScheduleSlot(ctx, staff, slots[0].ID,
		&api.ScheduleSlotUpdateRequest{Note: &note})
	require.NoError(t, err)
	assert.Equal(t, note, updated.Note)
}

func TestScheduleSlotDeleteBlockedWhileReferenced(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	declare(t, svc, "Monday", "09:00", "10:00")
	reg := book(t, svc, Actor{ID: "customer-1", Role: models.RoleCustomer}, "customer-1")

	err := svc.DeleteScheduleSlot(ctx, staff, reg.ScheduleSlotID)
	assert.ErrorIs(t, err, response.ErrBusy)

	_, err = svc.CancelBooking(ctx, Actor{ID: "customer-1", Role: models.RoleCustomer}, reg.ID)
	require.NoError(t, err)

	err = svc.DeleteScheduleSlot(ctx, staff, reg.ScheduleSlotID)
	require.NoError(t, err)
}

func TestCreateScheduleSlotDirectly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	slot, err := svc.CreateScheduleSlot(ctx, staff, "trainer-1",
		&api.ScheduleSlotRequest{DayOfWeek: "Friday", StartTime: "7:30", EndTime: "08:30", Note: "trial"})
	require.NoError(t, err)
	assert.Equal(t, "07:30", slot.StartTime)
	assert.True(t, slot.IsAvailable)

	_, err = svc.CreateScheduleSlot(ctx, staff, "trainer-1",
		&api.ScheduleSlotRequest{DayOfWeek: "Friday", StartTime: "08:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, response.ErrConflict)

	_, err = svc.CreateScheduleSlot(ctx, staff, "trainer-1",
		&api.ScheduleSlotRequest{DayOfWeek: "Friday", StartTime: "09:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, response.ErrConflict)
}

// Bookings serialize on the slot key; slot mutations must be excluded while a
// booking holds it, or a delete can land between the slot being taken and the
// registration being committed.
func TestSlotMutationsExcludedByInFlightBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	weekly := declare(t, svc, "Monday", "09:00", "10:00")

	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	slotID := slots[0].ID

	locked, err := svc.locker.Lock(ctx, slotLockKey(slotID), time.Minute)
	require.NoError(t, err)
	require.True(t, locked)

	err = svc.DeleteScheduleSlot(ctx, staff, slotID)
	assert.ErrorIs(t, err, response.ErrLocked)

	unavailable := false
	_, err = svc.UpdateScheduleSlot(ctx, staff, slotID,
		&api.ScheduleSlotUpdateRequest{IsAvailable: &unavailable})
	assert.ErrorIs(t, err, response.ErrLocked)

	_, err = svc.WithdrawAvailability(ctx, trainerActor, "trainer-1", weekly.ID)
	assert.ErrorIs(t, err, response.ErrLocked)

	require.NoError(t, svc.locker.Unlock(ctx, slotLockKey(slotID)))

	require.NoError(t, svc.DeleteScheduleSlot(ctx, staff, slotID))
}

var errStoreDown = errors.New("store down")

// faultStore injects failures into selected write paths.
type faultStore struct {
	storage.Store
	failCreateScheduleSlot bool
	failDeleteScheduleSlot bool
	failAddWeeklySlot      bool
	failRemoveWeeklySlot   bool
}

func (f *faultStore) CreateScheduleSlot(ctx context.Context, slot *models.ScheduleSlot) (string, error) {
	if f.failCreateScheduleSlot {
		return "", errStoreDown
	}
	return f.Store.CreateScheduleSlot(ctx, slot)
}

func (f *faultStore) DeleteScheduleSlot(ctx context.Context, id string) error {
	if f.failDeleteScheduleSlot {
		return errStoreDown
	}
	return f.Store.DeleteScheduleSlot(ctx, id)
}

func (f *faultStore) AddWeeklySlot(ctx context.Context, slot *models.WeeklySlot) (string, error) {
	if f.failAddWeeklySlot {
		return "", errStoreDown
	}
	return f.Store.AddWeeklySlot(ctx, slot)
}

func (f *faultStore) RemoveWeeklySlot(ctx context.Context, trainerID, slotID string) (*models.WeeklySlot, error) {
	if f.failRemoveWeeklySlot {
		return nil, errStoreDown
	}
	return f.Store.RemoveWeeklySlot(ctx, trainerID, slotID)
}

func newFaultService(t *testing.T) (*Service, *faultStore) {
	t.Helper()

	store := memory.New()
	store.PutTrainer(models.Trainer{ID: "trainer-1", FullName: "Iva Petrova", IsActive: true})

	fs := &faultStore{Store: store}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(fs, lock.NewLocalLock(), log)
	svc.now = func() time.Time { return testNow }

	return svc, fs
}

func TestDeclarePartialSync(t *testing.T) {
	svc, fs := newFaultService(t)
	ctx := context.Background()

	req := &api.DeclareAvailabilityRequest{DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"}

	t.Run("sync fails and rollback fails", func(t *testing.T) {
		fs.failCreateScheduleSlot = true
		fs.failRemoveWeeklySlot = true

		_, err := svc.DeclareAvailability(ctx, trainerActor, "trainer-1", req)
		assert.ErrorIs(t, err, response.ErrPartialSync)

		// The weekly slot stayed committed with no schedule counterpart;
		// this is the state a manual re-sync repairs.
		weekly, err := svc.ListAvailability(ctx, "trainer-1")
		require.NoError(t, err)
		assert.Len(t, weekly, 1)

		slots, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("re-sync repairs the divergence", func(t *testing.T) {
		fs.failCreateScheduleSlot = false
		fs.failRemoveWeeklySlot = false

		added, err := svc.SyncAvailability(ctx, trainerActor, "trainer-1")
		require.NoError(t, err)
		assert.Equal(t, 1, added)
	})
}

func TestDeclareSyncFailureRollsBack(t *testing.T) {
	svc, fs := newFaultService(t)
	ctx := context.Background()

	fs.failCreateScheduleSlot = true

	_, err := svc.DeclareAvailability(ctx, trainerActor, "trainer-1",
		&api.DeclareAvailabilityRequest{DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, response.ErrPartialSync)

	weekly, err := svc.ListAvailability(ctx, "trainer-1")
	require.NoError(t, err)
	assert.Empty(t, weekly)
}

func TestWithdrawPartialSync(t *testing.T) {
	svc, fs := newFaultService(t)
	ctx := context.Background()

	slot := declare(t, svc, "Monday", "09:00", "10:00")

	fs.failDeleteScheduleSlot = true
	fs.failAddWeeklySlot = true

	_, err := svc.WithdrawAvailability(ctx, trainerActor, "trainer-1", slot.ID)
	assert.ErrorIs(t, err, response.ErrPartialSync)

	// The weekly removal committed but the schedule slot remains.
	weekly, err := svc.ListAvailability(ctx, "trainer-1")
	require.NoError(t, err)
	assert.Empty(t, weekly)

	slots, err := svc.ListScheduleSlots(ctx, "trainer-1", false)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestWithdrawRollbackKeepsSlotID(t *testing.T) {
	svc, fs := newFaultService(t)
	ctx := context.Background()

	slot := declare(t, svc, "Monday", "09:00", "10:00")

	fs.failDeleteScheduleSlot = true

	_, err := svc.WithdrawAvailability(ctx, trainerActor, "trainer-1", slot.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, response.ErrPartialSync)

	// The compensating re-insert keeps the slot's identity.
	weekly, err := svc.ListAvailability(ctx, "trainer-1")
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, slot.ID, weekly[0].ID)
}
