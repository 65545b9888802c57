package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrControllerNotFound = errors.New("controller config not found")

// ControllerSettings is the per-profile Z-Wave controller configuration.
type ControllerSettings struct {
	ID              int64
	ProfileID       int64
	SerialPort      string
	PollPeriod      time.Duration
	PollInterval    time.Duration
	MaxRetries      int
	ResponseTimeout time.Duration
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ControllerStore provides controller config CRUD operations.
type ControllerStore interface {
	Get(ctx context.Context, profileID int64) (*ControllerSettings, error)
	Create(ctx context.Context, c *ControllerSettings) error
	Update(ctx context.Context, c *ControllerSettings) error
	Delete(ctx context.Context, profileID int64) error
}

// Controllers returns a ControllerStore for this database.
func (db *DB) Controllers() ControllerStore {
	return &controllerStore{db: db}
}

type controllerStore struct {
	db *DB
}

func (s *controllerStore) Get(ctx context.Context, profileID int64) (*ControllerSettings, error) {
	c := &ControllerSettings{}
	var (
		pollPeriod, pollInterval, timeout int64
		createdAt, updatedAt              string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, serial_port, poll_period_ms, poll_interval_ms,
		       max_retries, response_timeout_ms, created_at, updated_at
		FROM controllers WHERE profile_id = ?
	`, profileID).Scan(&c.ID, &c.ProfileID, &c.SerialPort, &pollPeriod, &pollInterval,
		&c.MaxRetries, &timeout, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrControllerNotFound
	}
	if err != nil {
		return nil, err
	}
	c.PollPeriod = time.Duration(pollPeriod) * time.Millisecond
	c.PollInterval = time.Duration(pollInterval) * time.Millisecond
	c.ResponseTimeout = time.Duration(timeout) * time.Millisecond
	c.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	c.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return c, nil
}

func (s *controllerStore) Create(ctx context.Context, c *ControllerSettings) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO controllers (profile_id, serial_port, poll_period_ms, poll_interval_ms,
		                         max_retries, response_timeout_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ProfileID, c.SerialPort, c.PollPeriod.Milliseconds(), c.PollInterval.Milliseconds(),
		c.MaxRetries, c.ResponseTimeout.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to create controller config: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (s *controllerStore) Update(ctx context.Context, c *ControllerSettings) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE controllers
		SET serial_port = ?, poll_period_ms = ?, poll_interval_ms = ?, max_retries = ?,
		    response_timeout_ms = ?, updated_at = datetime('now')
		WHERE profile_id = ?
	`, c.SerialPort, c.PollPeriod.Milliseconds(), c.PollInterval.Milliseconds(), c.MaxRetries,
		c.ResponseTimeout.Milliseconds(), c.ProfileID)
	if err != nil {
		return fmt.Errorf("failed to update controller config: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrControllerNotFound
	}
	return nil
}

func (s *controllerStore) Delete(ctx context.Context, profileID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM controllers WHERE profile_id = ?`, profileID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrControllerNotFound
	}
	return nil
}
