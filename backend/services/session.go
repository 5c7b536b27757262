package services

import (
	"fmt"
	"sync"
	"time"

	"threatscope-web-gui/backend/models"
)

// SessionStore owns the authoritative in-memory record set plus the UI state
// derived from it: active filter, current page, and the selection set.
// Records live exactly as long as the process; nothing here touches disk.
//
// Fiber handlers and the simulator callback run on different goroutines, so
// every mutation is serialised behind the mutex. Readers get copies; borrowed
// views never outlive a call.
type SessionStore struct {
	mu       sync.RWMutex
	records  []models.ThreatRecord
	ids      map[string]int // id -> index into records
	criteria models.FilterCriteria
	page     int
	selected map[string]struct{}
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		ids:      make(map[string]int),
		selected: make(map[string]struct{}),
		page:     1,
	}
}

// LoadSeed replaces the record set with the seed batch. Called once at
// startup before any other producer runs.
func (s *SessionStore) LoadSeed(records []models.ThreatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]int, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return err
		}
		if _, dup := ids[records[i].ID]; dup {
			return fmt.Errorf("duplicate record id %q in seed", records[i].ID)
		}
		ids[records[i].ID] = i
	}

	s.records = make([]models.ThreatRecord, len(records))
	copy(s.records, records)
	s.ids = ids
	s.selected = make(map[string]struct{})
	s.page = 1
	return nil
}

// Add prepends a record, newest first, the way the live pages display
// arrivals. Generated records funnel through here in arrival order.
func (s *SessionStore) Add(record models.ThreatRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[record.ID]; dup {
		return fmt.Errorf("duplicate record id %q", record.ID)
	}

	s.records = append([]models.ThreatRecord{record}, s.records...)
	for id, idx := range s.ids {
		s.ids[id] = idx + 1
	}
	s.ids[record.ID] = 0
	return nil
}

// Records returns a copy of the full record set in display order.
func (s *SessionStore) Records() []models.ThreatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ThreatRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Count returns the number of records held.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns a record by id.
func (s *SessionStore) Get(id string) (models.ThreatRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.ids[id]
	if !ok {
		return models.ThreatRecord{}, false
	}
	return s.records[idx], true
}

// UpdateStatus applies an operator-driven status change. Transitions back to
// New are rejected; records never revert to unhandled.
func (s *SessionStore) UpdateStatus(id, status string) (models.ThreatRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.ids[id]
	if !ok {
		return models.ThreatRecord{}, fmt.Errorf("threat %q not found", id)
	}
	if !models.CanTransitionTo(s.records[idx].Status, status) {
		return models.ThreatRecord{}, fmt.Errorf("invalid status transition %s -> %s for threat %q",
			s.records[idx].Status, status, id)
	}
	s.records[idx].Status = status
	return s.records[idx], nil
}

// UpdateStatusBulk applies one status to many records, skipping unknown ids
// and illegal transitions. Returns the number of records actually changed.
func (s *SessionStore) UpdateStatusBulk(ids []string, status string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, id := range ids {
		idx, ok := s.ids[id]
		if !ok {
			continue
		}
		if !models.CanTransitionTo(s.records[idx].Status, status) {
			continue
		}
		s.records[idx].Status = status
		changed++
	}
	return changed
}

// SetCriteria stores the active filter and resets the page, mirroring the
// pages which jump back to page 1 whenever filters change.
func (s *SessionStore) SetCriteria(criteria models.FilterCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = criteria
	s.page = 1
}

// Criteria returns the active filter.
func (s *SessionStore) Criteria() models.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.criteria
	out.ThreatTypes = append([]string(nil), s.criteria.ThreatTypes...)
	return out
}

// SetPage stores the current page.
func (s *SessionStore) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	s.page = page
}

// Page returns the current page.
func (s *SessionStore) Page() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// Select adds ids to the selection set. Unknown ids are ignored.
func (s *SessionStore) Select(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			s.selected[id] = struct{}{}
		}
	}
}

// Deselect removes ids from the selection set.
func (s *SessionStore) Deselect(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.selected, id)
	}
}

// ClearSelection empties the selection set.
func (s *SessionStore) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
}

// SelectVisible selects every record matching the active filter, the
// "select all" action of the bulk bar.
func (s *SessionStore) SelectVisible(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := FilterThreats(s.records, s.criteria, now)
	for _, t := range visible {
		s.selected[t.ID] = struct{}{}
	}
	return len(visible)
}

// Selected returns the selected ids in display order.
func (s *SessionStore) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.selected))
	for _, t := range s.records {
		if _, ok := s.selected[t.ID]; ok {
			out = append(out, t.ID)
		}
	}
	return out
}

// ApplySelection applies one status to the whole selection and clears it.
func (s *SessionStore) ApplySelection(status string) int {
	ids := s.Selected()
	changed := s.UpdateStatusBulk(ids, status)
	s.ClearSelection()
	return changed
}
