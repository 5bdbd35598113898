package phase10

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRoundScore reads a round score typed by the scorekeeper. Only digits
// are accepted; an empty field counts as 0.
func ParseRoundScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	return n, nil
}

// ParseEditValue reads a score or phase typed into the score table.
// Input that is not a number becomes 0.
func ParseEditValue(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
