package auth

// Service is the scorekeeper session contract consumed by the HTTP API.
type Service interface {
	// Enabled is false when no PIN is configured; every request is then allowed.
	Enabled() bool
	Login(pin string) (sessionToken string, err error)
	ResolveSession(token string) bool
	Logout(token string)
	Close() error
}
