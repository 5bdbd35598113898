package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL = 12 * time.Hour
	tokenBytes        = 32
)

var (
	ErrInvalidPIN   = errors.New("invalid pin")
	ErrAuthDisabled = errors.New("scorekeeper pin is not configured")
)

var pinPattern = regexp.MustCompile(`^[0-9]{4,12}$`)

// Manager guards the mutating API behind a single scorekeeper PIN and keeps
// in-memory session tokens.
type Manager struct {
	mu sync.Mutex

	pinHash    []byte
	sessionTTL time.Duration
	sessions   map[string]time.Time // token -> expiry
	now        func() time.Time
}

// NewManager builds a manager from a bcrypt hash. An empty hash disables auth.
func NewManager(pinHash string, sessionTTL time.Duration) (*Manager, error) {
	pinHash = strings.TrimSpace(pinHash)
	if pinHash != "" {
		if _, err := bcrypt.Cost([]byte(pinHash)); err != nil {
			return nil, fmt.Errorf("invalid pin hash: %w", err)
		}
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &Manager{
		pinHash:    []byte(pinHash),
		sessionTTL: sessionTTL,
		sessions:   make(map[string]time.Time),
		now:        time.Now,
	}, nil
}

// HashPIN returns the bcrypt hash to configure for pin.
func HashPIN(pin string) (string, error) {
	if err := validatePIN(pin); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validatePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPIN
	}
	return nil
}

func (m *Manager) Enabled() bool { return len(m.pinHash) > 0 }

func (m *Manager) Close() error { return nil }

// Login checks pin and returns a fresh session token.
func (m *Manager) Login(pin string) (string, error) {
	if !m.Enabled() {
		return "", ErrAuthDisabled
	}
	if validatePIN(pin) != nil || bcrypt.CompareHashAndPassword(m.pinHash, []byte(pin)) != nil {
		return "", ErrInvalidPIN
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	token := mustToken()
	m.sessions[token] = m.now().Add(m.sessionTTL)
	return token, nil
}

// ResolveSession validates and refreshes a session token.
func (m *Manager) ResolveSession(token string) bool {
	if token == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.sessions[token]
	if !ok {
		return false
	}
	now := m.now()
	if !now.Before(expiresAt) {
		delete(m.sessions, token)
		return false
	}
	m.sessions[token] = now.Add(m.sessionTTL)
	return true
}

// Logout invalidates a session token.
func (m *Manager) Logout(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
