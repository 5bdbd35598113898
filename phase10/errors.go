package phase10

import "errors"

// Validation errors. Operations returning one of these leave the ledger untouched.
var (
	ErrEmptyName        = errors.New("player name is required")
	ErrDuplicateName    = errors.New("duplicate player name")
	ErrPlayerExists     = errors.New("player already exists")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrTableFull        = errors.New("max player limit reached")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrInvalidDealer    = errors.New("invalid dealer")
	ErrNoRoundResults   = errors.New("no player scored or passed a phase")
	ErrInvalidScore     = errors.New("score must be a whole number")
	ErrNegativeValue    = errors.New("value must be >= 0")
)

var validationErrors = []error{
	ErrEmptyName,
	ErrDuplicateName,
	ErrPlayerExists,
	ErrPlayerNotFound,
	ErrTableFull,
	ErrNotEnoughPlayers,
	ErrInvalidDealer,
	ErrNoRoundResults,
	ErrInvalidScore,
	ErrNegativeValue,
}

// IsValidation reports whether err is a user input problem rather than a fault.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	var ise InvalidStateError
	return errors.As(err, &ise)
}

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
