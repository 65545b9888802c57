package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrUnitNotFound = errors.New("unit not found")

// UnitRecord is a persisted Z-Wave unit. Record holds the unit's own binary
// encoding; Kind, Generic and Specific say how to construct it before decoding.
type UnitRecord struct {
	ProfileID int64
	NodeID    uint8
	Kind      string
	Generic   uint8
	Specific  uint8
	Record    []byte
	UpdatedAt time.Time
}

// UnitStore persists the units of one profile.
type UnitStore interface {
	Get(ctx context.Context, nodeID uint8) (*UnitRecord, error)
	List(ctx context.Context) ([]*UnitRecord, error)
	Save(ctx context.Context, u *UnitRecord) error
	Delete(ctx context.Context, nodeID uint8) error
}

// Units returns a UnitStore scoped to profileID.
func (db *DB) Units(profileID int64) UnitStore {
	return &unitStore{db: db, profileID: profileID}
}

type unitStore struct {
	db        *DB
	profileID int64
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (*UnitRecord, error) {
	u := &UnitRecord{}
	var updatedAt string
	if err := row.Scan(&u.ProfileID, &u.NodeID, &u.Kind, &u.Generic, &u.Specific, &u.Record, &updatedAt); err != nil {
		return nil, err
	}
	u.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return u, nil
}

func (s *unitStore) Get(ctx context.Context, nodeID uint8) (*UnitRecord, error) {
	u, err := scanUnit(s.db.QueryRowContext(ctx, `
		SELECT profile_id, node_id, kind, generic, specific, record, updated_at
		FROM units WHERE profile_id = ? AND node_id = ?
	`, s.profileID, nodeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *unitStore) List(ctx context.Context) ([]*UnitRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT profile_id, node_id, kind, generic, specific, record, updated_at
		FROM units WHERE profile_id = ? ORDER BY node_id
	`, s.profileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var units []*UnitRecord
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// Save inserts or replaces the record for u.NodeID.
func (s *unitStore) Save(ctx context.Context, u *UnitRecord) error {
	u.ProfileID = s.profileID
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO units (profile_id, node_id, kind, generic, specific, record)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile_id, node_id) DO UPDATE SET
			kind = excluded.kind,
			generic = excluded.generic,
			specific = excluded.specific,
			record = excluded.record,
			updated_at = datetime('now')
	`, s.profileID, u.NodeID, u.Kind, u.Generic, u.Specific, u.Record)
	if err != nil {
		return fmt.Errorf("failed to save unit %d: %w", u.NodeID, err)
	}
	return nil
}

func (s *unitStore) Delete(ctx context.Context, nodeID uint8) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM units WHERE profile_id = ? AND node_id = ?`, s.profileID, nodeID)
	if err != nil {
		return err
	}
	return requireRow(result, ErrUnitNotFound)
}
