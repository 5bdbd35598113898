package phase10

import "fmt"

type Config struct {
	// Table
	MinPlayers int
	MaxPlayers int

	// Last phase of the game; passing it completes the game for that player.
	FinalPhase int
}

func DefaultConfig() Config {
	return Config{
		MinPlayers: 2,
		MaxPlayers: 6,
		FinalPhase: 10,
	}
}

func (c Config) validate() error {
	if c.MaxPlayers <= 0 {
		return fmt.Errorf("MaxPlayers must be > 0")
	}
	if c.MinPlayers <= 0 {
		return fmt.Errorf("MinPlayers must be > 0")
	}
	if c.MinPlayers > c.MaxPlayers {
		return fmt.Errorf("MinPlayers must be <= MaxPlayers")
	}
	if c.FinalPhase <= 0 {
		return fmt.Errorf("FinalPhase must be > 0")
	}
	return nil
}
