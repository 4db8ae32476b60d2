package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/evfleet/ocppcore/core/charging"
	"github.com/evfleet/ocppcore/core/model"
)

// SQLiteStore persists charging profiles in a SQLite database. Profiles are
// stored as their JSON wire form keyed by profile id, so a profile survives
// restarts exactly as it was accepted.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS charging_profiles (
        profile_id INTEGER PRIMARY KEY,
        evse_id INTEGER NOT NULL,
        payload TEXT NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// UpsertProfile writes or replaces the profile row.
func (s *SQLiteStore) UpsertProfile(evseID int, p *model.ChargingProfile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO charging_profiles (profile_id, evse_id, payload)
        VALUES (?, ?, ?)
        ON CONFLICT(profile_id) DO UPDATE SET
            evse_id = excluded.evse_id,
            payload = excluded.payload`,
		p.ID, evseID, string(b))
	return err
}

// DeleteProfile removes the row with the given profile id.
func (s *SQLiteStore) DeleteProfile(id int) error {
	_, err := s.db.Exec(`DELETE FROM charging_profiles WHERE profile_id = ?`, id)
	return err
}

// LoadAll returns every stored profile in ascending profile id order.
func (s *SQLiteStore) LoadAll() ([]charging.StoredProfile, error) {
	rows, err := s.db.Query(`SELECT evse_id, payload FROM charging_profiles ORDER BY profile_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []charging.StoredProfile
	for rows.Next() {
		var evseID int
		var data string
		if err := rows.Scan(&evseID, &data); err != nil {
			return nil, err
		}
		var p model.ChargingProfile
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
		res = append(res, charging.StoredProfile{EvseID: evseID, Profile: &p})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
