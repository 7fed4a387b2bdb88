package entitlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcg2i/tcg-service/internal/models"
)

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", "2025-03-10 "+hhmm)
	require.NoError(t, err)
	return ts
}

func TestCheckAvailabilityNilLastCollected(t *testing.T) {
	for _, hhmm := range []string{"00:00", "03:59", "04:00", "11:30", "20:00", "23:59"} {
		av := CheckAvailability(nil, at(t, hhmm), DefaultSchedule)
		assert.Truef(t, av.CanCollect, "nil lastCollected must always be collectible (now=%s)", hhmm)
	}
}

func TestCheckAvailabilityNextTime(t *testing.T) {
	cases := []struct {
		now      string
		wantNext string
		nextDay  bool
	}{
		{"00:30", "04:00", false},
		{"03:59", "04:00", false},
		{"04:00", "12:00", false}, // boundary counts as passed
		{"11:59", "12:00", false},
		{"12:00", "20:00", false},
		{"19:00", "20:00", false},
		{"20:00", "04:00", true}, // wraps to tomorrow
		{"23:45", "04:00", true},
	}
	for _, tc := range cases {
		av := CheckAvailability(nil, at(t, tc.now), DefaultSchedule)
		want := at(t, tc.wantNext)
		if tc.nextDay {
			want = want.AddDate(0, 0, 1)
		}
		assert.Equalf(t, want, av.NextTime, "now=%s", tc.now)
	}
}

func TestCheckAvailabilityOncePerSlot(t *testing.T) {
	// Collected just after the 04:00 slot.
	collected := at(t, "04:05")

	// Still the same slot window: not eligible.
	av := CheckAvailability(&collected, at(t, "11:00"), DefaultSchedule)
	assert.False(t, av.CanCollect)

	// 12:00 has passed: eligible again regardless of wall-clock interval.
	av = CheckAvailability(&collected, at(t, "12:01"), DefaultSchedule)
	assert.True(t, av.CanCollect)

	// Exactly on the boundary: the slot counts as passed.
	av = CheckAvailability(&collected, at(t, "12:00"), DefaultSchedule)
	assert.True(t, av.CanCollect)
}

func TestCheckAvailabilityCollectedOnSlotBoundary(t *testing.T) {
	// lastCollected exactly on the last slot is not strictly earlier, so the
	// user has consumed that slot.
	collected := at(t, "12:00")
	av := CheckAvailability(&collected, at(t, "15:00"), DefaultSchedule)
	assert.False(t, av.CanCollect)
}

func TestCheckAvailabilityBeforeFirstSlot(t *testing.T) {
	// At 01:00, the reference "last slot" is yesterday's 20:00.
	collected := at(t, "01:30") // after yesterday 20:00
	av := CheckAvailability(&collected, at(t, "02:00"), DefaultSchedule)
	assert.False(t, av.CanCollect)

	old := at(t, "01:30").AddDate(0, 0, -1)
	av = CheckAvailability(&old, at(t, "02:00"), DefaultSchedule)
	assert.True(t, av.CanCollect)
}

func TestCheckAvailabilityIdempotent(t *testing.T) {
	collected := at(t, "04:05")
	now := at(t, "13:37")

	first := CheckAvailability(&collected, now, DefaultSchedule)
	second := CheckAvailability(&collected, now, DefaultSchedule)
	assert.Equal(t, first, second)
	assert.Equal(t, at(t, "04:05"), collected, "inputs must not be mutated")
}

// fakeStore is an in-memory CollectionStore for service tests.
type fakeStore struct {
	mu   sync.Mutex
	cols map[uuid.UUID]*models.Collection
}

func newFakeStore() *fakeStore {
	return &fakeStore{cols: make(map[uuid.UUID]*models.Collection)}
}

func (f *fakeStore) GetCollection(_ context.Context, userID uuid.UUID) (*models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cols[userID]; ok {
		cp := *c
		return &cp, nil
	}
	return &models.Collection{UserID: userID, Cards: map[string]int{}}, nil
}

func (f *fakeStore) UpdateCollection(ctx context.Context, userID uuid.UUID, mutate func(*models.Collection) error) (*models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cols[userID]
	if !ok {
		c = &models.Collection{UserID: userID, Cards: map[string]int{}}
	}
	cp := *c
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	f.cols[userID] = &cp
	out := cp
	return &out, nil
}

func TestServiceCollect(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	now := at(t, "12:30")
	svc.Now = func() time.Time { return now }

	userID := uuid.New()

	col, err := svc.Collect(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, col.NbBooster)
	require.NotNil(t, col.LastCollectedAt)
	assert.Equal(t, now, *col.LastCollectedAt)

	// Second collect inside the same slot window is rejected and leaves the
	// record untouched.
	_, err = svc.Collect(context.Background(), userID)
	assert.True(t, errors.Is(err, ErrNotEligible))

	stored, err := store.GetCollection(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.NbBooster)

	// After the next slot passes, collecting works again.
	now = at(t, "20:01")
	col, err = svc.Collect(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, col.NbBooster)
}

func TestServiceAvailability(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	svc.Now = func() time.Time { return at(t, "05:00") }

	av, err := svc.Availability(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, av.CanCollect)
	assert.Equal(t, at(t, "12:00"), av.NextTime)
}
