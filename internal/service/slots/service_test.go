package slots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/memdoc"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
)

type testLogger struct{}

func (testLogger) Info(format string, v ...interface{})  {}
func (testLogger) Warn(format string, v ...interface{})  {}
func (testLogger) Error(format string, v ...interface{}) {}

func newTestService() (*Service, *memdoc.SlotStore) {
	store := memdoc.NewSlotStore()
	return NewService(store, nil, testLogger{}), store
}

func validRequest() *models.CreateSlotRequest {
	return &models.CreateSlotRequest{
		OrgID:           "org-1",
		SiteID:          "site-1",
		StartTime:       "10:00",
		EndTime:         "18:00",
		Recurrence:      "daily",
		Capacity:        3,
		DurationMinutes: 60,
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active slot", func(t *testing.T) {
		svc, store := newTestService()

		resp, err := svc.Create(ctx, validRequest())
		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, string(domain.SlotStatusActive), resp.Status)
		assert.Equal(t, 0, resp.BookedCount)
		assert.Equal(t, 3, resp.RemainingCapacity)

		stored, err := store.GetByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.Rev)
	})

	t.Run("weekly slot requires day of week", func(t *testing.T) {
		svc, _ := newTestService()

		req := validRequest()
		req.Recurrence = "weekly"

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidInput)

		req.DayOfWeek = ptr.Ptr(2)
		resp, err := svc.Create(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, resp.DayOfWeek)
		assert.Equal(t, 2, *resp.DayOfWeek)
	})

	t.Run("one-time slot requires specific date", func(t *testing.T) {
		svc, _ := newTestService()

		req := validRequest()
		req.Recurrence = "once"

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidInput)

		req.SpecificDate = ptr.Ptr("2026-09-15")
		_, err = svc.Create(ctx, req)
		assert.NoError(t, err)
	})

	t.Run("rejects malformed definitions", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*models.CreateSlotRequest)
		}{
			{"missing org", func(r *models.CreateSlotRequest) { r.OrgID = "" }},
			{"missing site", func(r *models.CreateSlotRequest) { r.SiteID = "" }},
			{"bad start time", func(r *models.CreateSlotRequest) { r.StartTime = "25:00" }},
			{"bad end time", func(r *models.CreateSlotRequest) { r.EndTime = "ten" }},
			{"end before start", func(r *models.CreateSlotRequest) { r.StartTime = "18:00"; r.EndTime = "10:00" }},
			{"end equals start", func(r *models.CreateSlotRequest) { r.EndTime = r.StartTime }},
			{"unknown recurrence", func(r *models.CreateSlotRequest) { r.Recurrence = "hourly" }},
			{"day of week outside range", func(r *models.CreateSlotRequest) {
				r.Recurrence = "weekly"
				r.DayOfWeek = ptr.Ptr(7)
			}},
			{"day of week on daily slot", func(r *models.CreateSlotRequest) { r.DayOfWeek = ptr.Ptr(1) }},
			{"specific date on daily slot", func(r *models.CreateSlotRequest) { r.SpecificDate = ptr.Ptr("2026-09-15") }},
			{"bad specific date", func(r *models.CreateSlotRequest) {
				r.Recurrence = "once"
				r.SpecificDate = ptr.Ptr("15.09.2026")
			}},
			{"zero capacity", func(r *models.CreateSlotRequest) { r.Capacity = 0 }},
			{"negative capacity", func(r *models.CreateSlotRequest) { r.Capacity = -1 }},
			{"capacity above limit", func(r *models.CreateSlotRequest) { r.Capacity = domain.MaxCapacity + 1 }},
			{"zero duration", func(r *models.CreateSlotRequest) { r.DurationMinutes = 0 }},
			{"duration above limit", func(r *models.CreateSlotRequest) { r.DurationMinutes = domain.MaxDurationMinutes + 1 }},
			{"negative buffer", func(r *models.CreateSlotRequest) { r.BufferMinutes = ptr.Ptr(-5) }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, _ := newTestService()

				req := validRequest()
				tt.mutate(req)

				_, err := svc.Create(ctx, req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	first, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	second, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, second.ID)
	require.NoError(t, err)

	active, err := svc.ListActive(ctx, "site-1")
	require.NoError(t, err)
	require.Len(t, active.Slots, 1)
	assert.Equal(t, first.ID, active.Slots[0].ID)

	all, err := svc.ListAll(ctx, "site-1")
	require.NoError(t, err)
	assert.Len(t, all.Slots, 2)
}

func TestService_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates active slot", func(t *testing.T) {
		svc, store := newTestService()

		created, err := svc.Create(ctx, validRequest())
		require.NoError(t, err)

		resp, err := svc.Deactivate(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.SlotStatusInactive), resp.Status)

		stored, err := store.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SlotStatusInactive, stored.Status)
	})

	t.Run("idempotent on repeat", func(t *testing.T) {
		svc, _ := newTestService()

		created, err := svc.Create(ctx, validRequest())
		require.NoError(t, err)

		_, err = svc.Deactivate(ctx, created.ID)
		require.NoError(t, err)

		resp, err := svc.Deactivate(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.SlotStatusInactive), resp.Status)
	})

	t.Run("unknown slot", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Deactivate(ctx, "missing")
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})
}
