package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

// Keys of the local slot. Live keys are rewritten after every change;
// the saved game is only written by an explicit save.
const (
	KeyPlayers     = "phase10-players"
	KeyDealerIndex = "phase10-dealerIndex"
	KeySavedGame   = "phase10-savedGame"
)

const (
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"
)

var ErrNotFound = errors.New("not found")

// Service is a small JSON key-value store holding the tracker's state.
type Service interface {
	Close() error
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

type Options struct {
	Mode        string
	SQLitePath  string
	PostgresDSN string
}

// New opens the backend selected by opts.Mode and reports the mode in use.
func New(opts Options) (Service, string, error) {
	switch mode := strings.ToLower(strings.TrimSpace(opts.Mode)); mode {
	case ModeMemory:
		return NewMemoryService(), ModeMemory, nil
	case "", ModeSQLite:
		s, err := NewSQLiteService(opts.SQLitePath)
		if err != nil {
			return nil, "", err
		}
		return s, ModeSQLite, nil
	case ModePostgres:
		s, err := NewPostgresService(opts.PostgresDSN)
		if err != nil {
			return nil, "", err
		}
		return s, ModePostgres, nil
	default:
		return nil, "", fmt.Errorf("invalid store mode %q", mode)
	}
}

// GetJSON decodes the value at key into v.
func GetJSON(ctx context.Context, s Service, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// PutJSON encodes v and stores it at key.
func PutJSON(ctx context.Context, s Service, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

type memoryService struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryService() Service {
	return &memoryService{values: make(map[string][]byte)}
}

func (m *memoryService) Close() error { return nil }

func (m *memoryService) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memoryService) Put(_ context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryService) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

type PostgresService struct {
	db *sql.DB
}

func NewPostgresService(dsn string) (*PostgresService, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS phase10_kv (
    key TEXT PRIMARY KEY,
    value JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresService{db: db}, nil
}

func (s *PostgresService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresService) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM phase10_kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *PostgresService) Put(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO phase10_kv (key, value, updated_at)
VALUES ($1, $2::jsonb, NOW())
ON CONFLICT (key) DO UPDATE
SET
    value = EXCLUDED.value,
    updated_at = NOW()
`, key, string(value))
	return err
}

func (s *PostgresService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM phase10_kv WHERE key = $1`, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}
