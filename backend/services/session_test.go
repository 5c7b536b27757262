package services

import (
	"testing"
	"time"

	"threatscope-web-gui/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore(t *testing.T) *SessionStore {
	t.Helper()
	store := NewSessionStore()
	require.NoError(t, store.LoadSeed(sampleRecords()))
	return store
}

func TestSessionStore_LoadSeedRejectsInvalidRecords(t *testing.T) {
	store := NewSessionStore()

	bad := sampleRecords()
	bad[2].Severity = "Apocalyptic"
	assert.Error(t, store.LoadSeed(bad))

	dup := sampleRecords()
	dup[1].ID = dup[0].ID
	assert.Error(t, store.LoadSeed(dup))
}

func TestSessionStore_AddPrependsNewestFirst(t *testing.T) {
	store := newSeededStore(t)

	fresh := makeRecord("t-live", "4.4.4.4", "Phishing", "High", "New", 25, 9, 0)
	require.NoError(t, store.Add(fresh))

	records := store.Records()
	require.Len(t, records, 6)
	assert.Equal(t, "t-live", records[0].ID)
	assert.Equal(t, "t1", records[1].ID)

	// Index map stays consistent after the prepend
	got, ok := store.Get("t3")
	require.True(t, ok)
	assert.Equal(t, "t3", got.ID)
}

func TestSessionStore_AddRejectsDuplicateAndInvalid(t *testing.T) {
	store := newSeededStore(t)

	dup := makeRecord("t1", "4.4.4.4", "Phishing", "High", "New", 25, 9, 0)
	assert.Error(t, store.Add(dup))

	invalid := makeRecord("t-bad", "4.4.4.4", "Phishing", "High", "New", 0, 9, 0)
	assert.Error(t, store.Add(invalid))

	assert.Equal(t, 5, store.Count())
}

func TestSessionStore_RecordsReturnsCopy(t *testing.T) {
	store := newSeededStore(t)

	records := store.Records()
	records[0].Status = models.StatusBlocked

	fresh, ok := store.Get(records[0].ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusNew, fresh.Status)
}

func TestSessionStore_StatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"new to investigating", models.StatusNew, models.StatusInvestigating, false},
		{"new to blocked", models.StatusNew, models.StatusBlocked, false},
		{"new to dismissed", models.StatusNew, models.StatusDismissed, false},
		{"blocked to dismissed", models.StatusBlocked, models.StatusDismissed, false},
		{"dismissed to investigating", models.StatusDismissed, models.StatusInvestigating, false},
		{"never back to new", models.StatusBlocked, models.StatusNew, true},
		{"unknown target", models.StatusNew, "Escalated", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewSessionStore()
			record := makeRecord("tx", "4.4.4.4", "XSS", "High", tt.from, 443, 1, 0)
			require.NoError(t, store.LoadSeed([]models.ThreatRecord{record}))

			updated, err := store.UpdateStatus("tx", tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				current, _ := store.Get("tx")
				assert.Equal(t, tt.from, current.Status)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.to, updated.Status)
			}
		})
	}
}

func TestSessionStore_UpdateStatusUnknownID(t *testing.T) {
	store := newSeededStore(t)

	_, err := store.UpdateStatus("nope", models.StatusBlocked)
	assert.Error(t, err)
}

func TestSessionStore_BulkUpdateSkipsIneligible(t *testing.T) {
	store := newSeededStore(t)

	// t1 and t4 are New, "nope" is unknown; all eligible records move.
	changed := store.UpdateStatusBulk([]string{"t1", "t4", "nope"}, models.StatusBlocked)

	assert.Equal(t, 2, changed)
	r1, _ := store.Get("t1")
	assert.Equal(t, models.StatusBlocked, r1.Status)
}

func TestSessionStore_SelectionLifecycle(t *testing.T) {
	store := newSeededStore(t)

	store.Select("t1", "t3", "nope")
	assert.Equal(t, []string{"t1", "t3"}, store.Selected())

	store.Deselect("t1")
	assert.Equal(t, []string{"t3"}, store.Selected())

	store.ClearSelection()
	assert.Empty(t, store.Selected())
}

func TestSessionStore_SelectVisibleHonoursCriteria(t *testing.T) {
	store := newSeededStore(t)
	store.SetCriteria(models.FilterCriteria{Severity: "Critical"})

	n := store.SelectVisible(testNow)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"t1", "t4"}, store.Selected())
}

func TestSessionStore_ApplySelection(t *testing.T) {
	store := newSeededStore(t)

	store.Select("t1", "t2")
	changed := store.ApplySelection(models.StatusDismissed)

	assert.Equal(t, 2, changed)
	assert.Empty(t, store.Selected())

	r1, _ := store.Get("t1")
	r2, _ := store.Get("t2")
	assert.Equal(t, models.StatusDismissed, r1.Status)
	assert.Equal(t, models.StatusDismissed, r2.Status)
}

func TestSessionStore_SetCriteriaResetsPage(t *testing.T) {
	store := newSeededStore(t)

	store.SetPage(4)
	assert.Equal(t, 4, store.Page())

	store.SetCriteria(models.FilterCriteria{Search: "ddos"})
	assert.Equal(t, 1, store.Page())
	assert.Equal(t, "ddos", store.Criteria().Search)
}

func TestSessionStore_AddInArrivalOrder(t *testing.T) {
	store := NewSessionStore()

	for i, id := range []string{"a", "b", "c"} {
		record := makeRecord(id, "4.4.4.4", "DDoS", "Low", "New", 80, 1, time.Duration(i)*time.Second)
		require.NoError(t, store.Add(record))
	}

	// Newest arrival sits first, earlier arrivals shift down.
	assert.Equal(t, []string{"c", "b", "a"}, ids(store.Records()))
}
