package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is one hub installation: a controller, its units and the API
// listener that serves them.
type Profile struct {
	ID        int64
	Name      string
	Timezone  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileStore provides profile CRUD operations.
type ProfileStore interface {
	Get(ctx context.Context, id int64) (*Profile, error)
	GetByName(ctx context.Context, name string) (*Profile, error)
	GetActive(ctx context.Context) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	Create(ctx context.Context, p *Profile) error
	// Provision creates p together with its API server and controller
	// rows. Zero fields in api and ctrl take the column defaults.
	Provision(ctx context.Context, p *Profile, api *APIServer, ctrl *ControllerSettings) error
	Update(ctx context.Context, p *Profile) error
	SetActive(ctx context.Context, id int64) error
	// Delete removes the profile; its controller, API server and unit
	// rows go with it.
	Delete(ctx context.Context, id int64) error
}

// Profiles returns a ProfileStore for this database.
func (db *DB) Profiles() ProfileStore {
	return &profileStore{db: db}
}

type profileStore struct {
	db *DB
}

const profileColumns = `id, name, timezone, is_active, created_at, updated_at`

func scanProfile(row rowScanner) (*Profile, error) {
	p := &Profile{}
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Timezone, &p.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	p.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return p, nil
}

func (s *profileStore) queryOne(ctx context.Context, where string, args ...any) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE `+where+` LIMIT 1`, args...)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (s *profileStore) Get(ctx context.Context, id int64) (*Profile, error) {
	return s.queryOne(ctx, `id = ?`, id)
}

func (s *profileStore) GetByName(ctx context.Context, name string) (*Profile, error) {
	return s.queryOne(ctx, `name = ?`, name)
}

func (s *profileStore) GetActive(ctx context.Context) (*Profile, error) {
	return s.queryOne(ctx, `is_active = 1`)
}

func (s *profileStore) List(ctx context.Context) ([]*Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertProfile(ctx context.Context, ex execer, p *Profile) error {
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	result, err := ex.ExecContext(ctx,
		`INSERT INTO profiles (name, timezone, is_active) VALUES (?, ?, ?)`,
		p.Name, p.Timezone, p.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create profile %q: %w", p.Name, err)
	}
	p.ID, err = result.LastInsertId()
	return err
}

func (s *profileStore) Create(ctx context.Context, p *Profile) error {
	return insertProfile(ctx, s.db, p)
}

func (s *profileStore) Provision(ctx context.Context, p *Profile, api *APIServer, ctrl *ControllerSettings) error {
	if api == nil {
		api = &APIServer{}
	}
	if ctrl == nil {
		ctrl = &ControllerSettings{}
	}
	if api.Host == "" {
		api.Host = DefaultAPIHost
	}
	if api.Port == 0 {
		api.Port = DefaultAPIPort
	}
	if err := api.validate(); err != nil {
		return err
	}

	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		if p.IsActive {
			if _, err := tx.ExecContext(ctx, `UPDATE profiles SET is_active = 0`); err != nil {
				return err
			}
		}
		if err := insertProfile(ctx, tx, p); err != nil {
			return err
		}
		api.ProfileID = p.ID
		if err := insertAPIServer(ctx, tx, api); err != nil {
			return err
		}

		ctrl.ProfileID = p.ID
		if ctrl.SerialPort == "" {
			_, err := tx.ExecContext(ctx, `INSERT INTO controllers (profile_id) VALUES (?)`, p.ID)
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO controllers (profile_id, serial_port) VALUES (?, ?)`,
			p.ID, ctrl.SerialPort)
		return err
	})
}

func (s *profileStore) Update(ctx context.Context, p *Profile) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET name = ?, timezone = ?, is_active = ?, updated_at = datetime('now')
		WHERE id = ?
	`, p.Name, p.Timezone, p.IsActive, p.ID)
	return err
}

// SetActive makes id the only active profile.
func (s *profileStore) SetActive(ctx context.Context, id int64) error {
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET is_active = 0`); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE profiles SET is_active = 1, updated_at = datetime('now') WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(result, ErrProfileNotFound)
	})
}

func (s *profileStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrProfileNotFound)
}

// requireRow returns notFound when result touched no rows.
func requireRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
