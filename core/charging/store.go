package charging

import (
	"fmt"
	"sort"
	"sync"

	"github.com/evfleet/ocppcore/core/evse"
	"github.com/evfleet/ocppcore/core/model"
)

// StoredProfile pairs a profile with the EVSE it targets. EvseID 0 means the
// profile is station-wide.
type StoredProfile struct {
	EvseID  int
	Profile *model.ChargingProfile
}

// ProfilePersistence is the durable backing of the profile store. A
// successful UpsertProfile must survive a crash before it returns.
type ProfilePersistence interface {
	UpsertProfile(evseID int, profile *model.ChargingProfile) error
	DeleteProfile(id int) error
	LoadAll() ([]StoredProfile, error)
}

// NopPersistence keeps nothing. Useful for tests and volatile deployments.
type NopPersistence struct{}

func (NopPersistence) UpsertProfile(int, *model.ChargingProfile) error { return nil }
func (NopPersistence) DeleteProfile(int) error                        { return nil }
func (NopPersistence) LoadAll() ([]StoredProfile, error)              { return nil, nil }

// ProfileView is the read access the validator needs to detect conflicts
// among already accepted profiles.
type ProfileView interface {
	TxDefaultProfiles(evseID int) []*model.ChargingProfile
	TxProfiles(transactionID string) []*model.ChargingProfile
}

// ProfileStore is the authoritative in-memory cache of accepted profiles,
// partitioned into a station-wide bucket and per-EVSE buckets, backed by a
// durable persistence. The store exclusively owns the profiles it holds;
// callers receive borrowed read-only references.
type ProfileStore struct {
	mu          sync.RWMutex
	persistence ProfilePersistence
	stationWide []*model.ChargingProfile
	perEVSE     map[int][]*model.ChargingProfile
}

// NewProfileStore creates an empty store backed by p. A nil p falls back to
// NopPersistence.
func NewProfileStore(p ProfilePersistence) *ProfileStore {
	if p == nil {
		p = NopPersistence{}
	}
	return &ProfileStore{
		persistence: p,
		perEVSE:     make(map[int][]*model.ChargingProfile),
	}
}

// Reload drops the in-memory state and rebuilds it from persistence.
// Profiles are inserted in ascending id order so behavior after a restart is
// reproducible.
func (s *ProfileStore) Reload() error {
	entries, err := s.persistence.LoadAll()
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Profile.ID < entries[j].Profile.ID })
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stationWide = nil
	s.perEVSE = make(map[int][]*model.ChargingProfile)
	for _, e := range entries {
		s.insertLocked(e.EvseID, e.Profile)
	}
	return nil
}

// Add stores the profile for the EVSE, replacing any prior profile with the
// same id. The durable write happens first; when it fails the in-memory
// state is left untouched.
func (s *ProfileStore) Add(evseID int, profile *model.ChargingProfile) error {
	if err := s.persistence.UpsertProfile(evseID, profile); err != nil {
		return fmt.Errorf("upsert profile %d: %w", profile.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(profile.ID)
	s.insertLocked(evseID, profile)
	return nil
}

// Remove deletes the profile with the given id from every bucket. It reports
// whether a profile was removed.
func (s *ProfileStore) Remove(id int) (bool, error) {
	if err := s.persistence.DeleteProfile(id); err != nil {
		return false, fmt.Errorf("delete profile %d: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id), nil
}

// RemoveWhere deletes every profile the filter matches and returns how many
// were removed.
func (s *ProfileStore) RemoveWhere(match func(evseID int, p *model.ChargingProfile) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var doomed []int
	for _, p := range s.stationWide {
		if match(evse.StationWideID, p) {
			doomed = append(doomed, p.ID)
		}
	}
	for id, bucket := range s.perEVSE {
		for _, p := range bucket {
			if match(id, p) {
				doomed = append(doomed, p.ID)
			}
		}
	}
	removed := 0
	for _, id := range doomed {
		if err := s.persistence.DeleteProfile(id); err != nil {
			return removed, fmt.Errorf("delete profile %d: %w", id, err)
		}
		s.removeLocked(id)
		removed++
	}
	return removed, nil
}

// ClearTransaction removes every TxProfile bound to the transaction. Called
// when the transaction ends.
func (s *ProfileStore) ClearTransaction(transactionID string) (int, error) {
	return s.RemoveWhere(func(_ int, p *model.ChargingProfile) bool {
		return p.ChargingProfilePurpose == model.PurposeTxProfile &&
			p.TransactionID != nil && *p.TransactionID == transactionID
	})
}

// ListFor returns the station-wide profiles followed by the EVSE's own, as a
// fresh slice snapshotted under the read lock.
func (s *ProfileStore) ListFor(evseID int) []*model.ChargingProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.ChargingProfile, 0, len(s.stationWide)+len(s.perEVSE[evseID]))
	out = append(out, s.stationWide...)
	if evseID != evse.StationWideID {
		out = append(out, s.perEVSE[evseID]...)
	}
	return out
}

// All returns every stored profile with its target EVSE, ordered by
// ascending profile id.
func (s *ProfileStore) All() []StoredProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []StoredProfile
	for _, p := range s.stationWide {
		out = append(out, StoredProfile{EvseID: evse.StationWideID, Profile: p})
	}
	for id, bucket := range s.perEVSE {
		for _, p := range bucket {
			out = append(out, StoredProfile{EvseID: id, Profile: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile.ID < out[j].Profile.ID })
	return out
}

// TxDefaultProfiles returns the TxDefault profiles in the scope addressed by
// evseID: the station-wide bucket for 0, the EVSE's own bucket otherwise.
func (s *ProfileStore) TxDefaultProfiles(evseID int) []*model.ChargingProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.stationWide
	if evseID != evse.StationWideID {
		bucket = s.perEVSE[evseID]
	}
	var out []*model.ChargingProfile
	for _, p := range bucket {
		if p.ChargingProfilePurpose == model.PurposeTxDefaultProfile {
			out = append(out, p)
		}
	}
	return out
}

// TxProfiles returns every TxProfile bound to the transaction.
func (s *ProfileStore) TxProfiles(transactionID string) []*model.ChargingProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.ChargingProfile
	scan := func(bucket []*model.ChargingProfile) {
		for _, p := range bucket {
			if p.ChargingProfilePurpose == model.PurposeTxProfile &&
				p.TransactionID != nil && *p.TransactionID == transactionID {
				out = append(out, p)
			}
		}
	}
	scan(s.stationWide)
	for _, bucket := range s.perEVSE {
		scan(bucket)
	}
	return out
}

// Count returns the number of stored profiles.
func (s *ProfileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.stationWide)
	for _, bucket := range s.perEVSE {
		n += len(bucket)
	}
	return n
}

func (s *ProfileStore) insertLocked(evseID int, p *model.ChargingProfile) {
	if evseID == evse.StationWideID {
		s.stationWide = append(s.stationWide, p)
		return
	}
	s.perEVSE[evseID] = append(s.perEVSE[evseID], p)
}

func (s *ProfileStore) removeLocked(id int) bool {
	removed := false
	s.stationWide, removed = dropByID(s.stationWide, id)
	if removed {
		return true
	}
	for evseID, bucket := range s.perEVSE {
		next, ok := dropByID(bucket, id)
		if ok {
			if len(next) == 0 {
				delete(s.perEVSE, evseID)
			} else {
				s.perEVSE[evseID] = next
			}
			return true
		}
	}
	return false
}

func dropByID(bucket []*model.ChargingProfile, id int) ([]*model.ChargingProfile, bool) {
	for i, p := range bucket {
		if p.ID == id {
			return append(bucket[:i], bucket[i+1:]...), true
		}
	}
	return bucket, false
}
