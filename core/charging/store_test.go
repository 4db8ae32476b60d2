package charging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evfleet/ocppcore/core/model"
)

// fakePersistence records calls and can be told to fail.
type fakePersistence struct {
	upserts   int
	deletes   []int
	entries   []StoredProfile
	failWrite error
}

func (f *fakePersistence) UpsertProfile(evseID int, p *model.ChargingProfile) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	f.upserts++
	return nil
}

func (f *fakePersistence) DeleteProfile(id int) error {
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakePersistence) LoadAll() ([]StoredProfile, error) { return f.entries, nil }

func TestStore_AddReplacesOnSameID(t *testing.T) {
	store := NewProfileStore(nil)
	require.NoError(t, store.Add(1, absoluteProfile(5, 1, model.PurposeTxDefaultProfile, 16, scheduleStart)))
	require.NoError(t, store.Add(1, absoluteProfile(5, 2, model.PurposeTxDefaultProfile, 20, scheduleStart)))

	got := store.ListFor(1)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].StackLevel)
}

func TestStore_AddMovesProfileBetweenBuckets(t *testing.T) {
	store := NewProfileStore(nil)
	require.NoError(t, store.Add(1, absoluteProfile(5, 1, model.PurposeTxDefaultProfile, 16, scheduleStart)))
	require.NoError(t, store.Add(2, absoluteProfile(5, 1, model.PurposeTxDefaultProfile, 16, scheduleStart)))

	assert.Empty(t, store.ListFor(1))
	assert.Len(t, store.ListFor(2), 1)
	assert.Equal(t, 1, store.Count())
}

func TestStore_ListForPrependsStationWide(t *testing.T) {
	store := NewProfileStore(nil)
	require.NoError(t, store.Add(0, absoluteProfile(1, 0, model.PurposeChargingStationMaxProfile, 32, scheduleStart)))
	require.NoError(t, store.Add(1, absoluteProfile(2, 0, model.PurposeTxDefaultProfile, 16, scheduleStart)))
	require.NoError(t, store.Add(2, absoluteProfile(3, 0, model.PurposeTxDefaultProfile, 16, scheduleStart)))

	got := store.ListFor(1)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}

func TestStore_TxDefaultScope(t *testing.T) {
	store := NewProfileStore(nil)
	require.NoError(t, store.Add(0, absoluteProfile(1, 1, model.PurposeTxDefaultProfile, 16, scheduleStart)))
	require.NoError(t, store.Add(1, absoluteProfile(2, 1, model.PurposeTxDefaultProfile, 16, scheduleStart)))
	require.NoError(t, store.Add(1, absoluteProfile(3, 1, model.PurposeChargingStationMaxProfile, 32, scheduleStart)))

	stationWide := store.TxDefaultProfiles(0)
	require.Len(t, stationWide, 1)
	assert.Equal(t, 1, stationWide[0].ID)

	perEvse := store.TxDefaultProfiles(1)
	require.Len(t, perEvse, 1)
	assert.Equal(t, 2, perEvse[0].ID)
}

func TestStore_TxProfilesAndClearTransaction(t *testing.T) {
	store := NewProfileStore(nil)
	tx1 := absoluteProfile(10, 1, model.PurposeTxProfile, 16, scheduleStart)
	tx1.TransactionID = strp("abc")
	tx2 := absoluteProfile(11, 2, model.PurposeTxProfile, 10, scheduleStart)
	tx2.TransactionID = strp("abc")
	other := absoluteProfile(12, 1, model.PurposeTxProfile, 16, scheduleStart)
	other.TransactionID = strp("def")
	require.NoError(t, store.Add(1, tx1))
	require.NoError(t, store.Add(1, tx2))
	require.NoError(t, store.Add(2, other))

	assert.Len(t, store.TxProfiles("abc"), 2)

	removed, err := store.ClearTransaction("abc")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Empty(t, store.TxProfiles("abc"))
	assert.Len(t, store.TxProfiles("def"), 1)
}

func TestStore_RemoveWhere(t *testing.T) {
	store := NewProfileStore(nil)
	require.NoError(t, store.Add(0, absoluteProfile(1, 0, model.PurposeChargingStationMaxProfile, 32, scheduleStart)))
	require.NoError(t, store.Add(1, absoluteProfile(2, 1, model.PurposeTxDefaultProfile, 16, scheduleStart)))
	require.NoError(t, store.Add(1, absoluteProfile(3, 2, model.PurposeTxDefaultProfile, 16, scheduleStart)))

	removed, err := store.RemoveWhere(func(_ int, p *model.ChargingProfile) bool {
		return p.ChargingProfilePurpose == model.PurposeTxDefaultProfile
	})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Count())
}

func TestStore_ReloadOrdersByID(t *testing.T) {
	p := &fakePersistence{entries: []StoredProfile{
		{EvseID: 1, Profile: absoluteProfile(9, 0, model.PurposeTxDefaultProfile, 16, scheduleStart)},
		{EvseID: 1, Profile: absoluteProfile(3, 1, model.PurposeTxDefaultProfile, 16, scheduleStart)},
		{EvseID: 0, Profile: absoluteProfile(7, 0, model.PurposeChargingStationMaxProfile, 32, scheduleStart)},
	}}
	store := NewProfileStore(p)
	require.NoError(t, store.Reload())

	got := store.ListFor(1)
	require.Len(t, got, 3)
	assert.Equal(t, 7, got[0].ID, "station-wide first")
	assert.Equal(t, 3, got[1].ID, "then per-EVSE in ascending id order")
	assert.Equal(t, 9, got[2].ID)
}

func TestStore_AddFailedWriteLeavesMemoryUntouched(t *testing.T) {
	p := &fakePersistence{failWrite: errors.New("disk full")}
	store := NewProfileStore(p)

	err := store.Add(1, absoluteProfile(5, 1, model.PurposeTxDefaultProfile, 16, scheduleStart))
	require.Error(t, err)
	assert.Equal(t, 0, store.Count())
}

func TestStore_RemoveReportsExistence(t *testing.T) {
	p := &fakePersistence{}
	store := NewProfileStore(p)
	require.NoError(t, store.Add(1, absoluteProfile(5, 1, model.PurposeTxDefaultProfile, 16, scheduleStart)))

	removed, err := store.Remove(5)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []int{5}, p.deletes)

	removed, err = store.Remove(5)
	require.NoError(t, err)
	assert.False(t, removed)
}
