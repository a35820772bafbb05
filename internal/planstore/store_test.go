package planstore

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/testsupport"
)

type faultySlot struct {
	*MemorySlot
	getErr    error
	putErr    error
	deleteErr error
}

func (f *faultySlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.MemorySlot.Get(ctx, key)
}

func (f *faultySlot) Put(ctx context.Context, key string, value []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemorySlot.Put(ctx, key, value)
}

func (f *faultySlot) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemorySlot.Delete(ctx, key)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemorySlot(), "")
	require.Equal(t, DefaultKey, store.Key())

	profile := testsupport.Profile()
	bundle := testsupport.Bundle()
	require.NoError(t, store.Save(ctx, profile, bundle))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, profile, *loaded.Profile)
	require.Equal(t, bundle, *loaded.Bundle)
}

func TestLoadEmptySlot(t *testing.T) {
	loaded, err := NewStore(NewMemorySlot(), "k").Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestClearThenLoadIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemorySlot(), "k")
	require.NoError(t, store.Save(ctx, testsupport.Profile(), testsupport.Bundle()))

	require.NoError(t, store.Clear(ctx))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	store := NewStore(slot, "k")
	require.NoError(t, store.Save(ctx, testsupport.Profile(), testsupport.Bundle()))

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	_, ok, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCorruptedSlotIsClearedOnLoad(t *testing.T) {
	cases := map[string][]byte{
		"malformed json":   []byte(`{"profile":`),
		"missing bundle":   []byte(`{"profile":{"name":"Ana"}}`),
		"wrong shape":      []byte(`[1,2,3]`),
		"short week":       []byte(`{"profile":{"name":"Ana","age":30,"gender":"f","height":170,"weight":60,"fitnessGoals":"x","availableEquipment":"none","daysPerWeek":3,"mealCount":3},"bundle":{"workoutPlan":{"planTitle":"x","weeklySchedule":[]},"dietPlan":{"planTitle":"y","dailyPlans":[]}}}`),
		"old format value": []byte(`"legacy"`),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			slot := NewMemorySlot()
			require.NoError(t, slot.Put(ctx, "k", payload))
			before := testutil.ToFloat64(selfHealCounter)

			loaded, err := NewStore(slot, "k").Load(ctx)
			require.NoError(t, err)
			require.Nil(t, loaded)

			_, ok, err := slot.Get(ctx, "k")
			require.NoError(t, err)
			require.False(t, ok)
			require.Equal(t, before+1, testutil.ToFloat64(selfHealCounter))
		})
	}
}

func TestFailedWriteKeepsPreviousValue(t *testing.T) {
	ctx := context.Background()
	slot := &faultySlot{MemorySlot: NewMemorySlot()}
	store := NewStore(slot, "k")
	require.NoError(t, store.Save(ctx, testsupport.Profile(), testsupport.Bundle()))

	slot.putErr = errors.New("quota exceeded")
	replacement := testsupport.Profile()
	replacement.Name = "Bea"
	err := store.Save(ctx, replacement, testsupport.Bundle())

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, OpSave, perr.Op)
	require.ErrorContains(t, err, "quota exceeded")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ana", loaded.Profile.Name)
}

func TestSaveRejectsIncompletePair(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	store := NewStore(slot, "k")

	err := store.Save(ctx, testsupport.Profile(), domain.PlanBundle{WorkoutPlan: testsupport.WorkoutPlan(4)})
	require.True(t, domain.IsValidation(err))

	invalid := testsupport.Profile()
	invalid.Name = ""
	err = store.Save(ctx, invalid, testsupport.Bundle())
	require.True(t, domain.IsValidation(err))

	_, ok, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorageFailuresArePersistenceErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk unavailable")

	_, err := NewStore(&faultySlot{MemorySlot: NewMemorySlot(), getErr: boom}, "k").Load(ctx)
	require.True(t, domain.IsPersistence(err))
	require.ErrorIs(t, err, boom)

	err = NewStore(&faultySlot{MemorySlot: NewMemorySlot(), deleteErr: boom}, "k").Clear(ctx)
	require.True(t, domain.IsPersistence(err))

	corrupted := &faultySlot{MemorySlot: NewMemorySlot(), deleteErr: boom}
	require.NoError(t, corrupted.MemorySlot.Put(ctx, "k", []byte("{")))
	loaded, err := NewStore(corrupted, "k").Load(ctx)
	require.Nil(t, loaded)
	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, OpLoad, perr.Op)
}

func TestMemorySlotCopiesValues(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	value := []byte("abc")
	require.NoError(t, slot.Put(ctx, "k", value))
	value[0] = 'z'

	got, ok, err := slot.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _, _ := slot.Get(ctx, "k")
	require.Equal(t, "abc", string(again))
}
