package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	DefaultAPIHost = "0.0.0.0"
	DefaultAPIPort = 8080
)

var (
	ErrAPIServerNotFound = errors.New("api server config not found")
	ErrInvalidPort       = errors.New("api port out of range")
)

// APIServer is where a profile's HTTP API listens.
type APIServer struct {
	ID        int64
	ProfileID int64
	Host      string
	Port      int
	CreatedAt time.Time
}

// Address returns host:port, bracketing IPv6 hosts.
func (a *APIServer) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

func (a *APIServer) validate() error {
	if a.Port < 1 || a.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, a.Port)
	}
	return nil
}

// APIServerStore provides API server config CRUD operations.
type APIServerStore interface {
	Get(ctx context.Context, profileID int64) (*APIServer, error)
	Create(ctx context.Context, a *APIServer) error
	Update(ctx context.Context, a *APIServer) error
	Delete(ctx context.Context, profileID int64) error
}

// APIServers returns an APIServerStore for this database.
func (db *DB) APIServers() APIServerStore {
	return &apiServerStore{db: db}
}

type apiServerStore struct {
	db *DB
}

func (s *apiServerStore) Get(ctx context.Context, profileID int64) (*APIServer, error) {
	a := &APIServer{}
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, profile_id, host, port, created_at FROM api_servers WHERE profile_id = ?`,
		profileID).Scan(&a.ID, &a.ProfileID, &a.Host, &a.Port, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAPIServerNotFound
	}
	if err != nil {
		return nil, err
	}
	a.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return a, nil
}

func insertAPIServer(ctx context.Context, ex execer, a *APIServer) error {
	if err := a.validate(); err != nil {
		return err
	}
	result, err := ex.ExecContext(ctx,
		`INSERT INTO api_servers (profile_id, host, port) VALUES (?, ?, ?)`,
		a.ProfileID, a.Host, a.Port)
	if err != nil {
		return fmt.Errorf("failed to create API server config: %w", err)
	}
	a.ID, err = result.LastInsertId()
	return err
}

func (s *apiServerStore) Create(ctx context.Context, a *APIServer) error {
	return insertAPIServer(ctx, s.db, a)
}

func (s *apiServerStore) Update(ctx context.Context, a *APIServer) error {
	if err := a.validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE api_servers SET host = ?, port = ? WHERE profile_id = ?`,
		a.Host, a.Port, a.ProfileID)
	if err != nil {
		return err
	}
	return requireRow(result, ErrAPIServerNotFound)
}

func (s *apiServerStore) Delete(ctx context.Context, profileID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM api_servers WHERE profile_id = ?`, profileID)
	if err != nil {
		return err
	}
	return requireRow(result, ErrAPIServerNotFound)
}
