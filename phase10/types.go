package phase10

// Player is one seat in the ledger. Name is the identity key.
type Player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Phase int    `json:"phase"`

	// Set by the most recent round that included this player.
	LastPhasePlayed *int  `json:"lastPhasePlayed,omitempty"`
	LastPassedPhase *bool `json:"lastPassedPhase,omitempty"`
}

// Completed reports whether the player has finished the final phase.
func (p Player) Completed(finalPhase int) bool { return p.Phase > finalPhase }

func (p Player) clone() Player {
	out := p
	if p.LastPhasePlayed != nil {
		v := *p.LastPhasePlayed
		out.LastPhasePlayed = &v
	}
	if p.LastPassedPhase != nil {
		v := *p.LastPassedPhase
		out.LastPassedPhase = &v
	}
	return out
}

func clonePlayers(ps []Player) []Player {
	out := make([]Player, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.clone())
	}
	return out
}

// RoundEntry is one player's result for a round.
type RoundEntry struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	PassedPhase bool   `json:"passedPhase"`
}

// RoundResult describes what ApplyRound committed.
type RoundResult struct {
	// Completed lists players whose phase went past the final phase this round.
	Completed []string
	Winner    *Winner
	TieBreak  bool
}

// GameOver reports whether the round produced a single winner.
func (r RoundResult) GameOver() bool {
	return r.Winner != nil && r.Winner.Player != nil
}

type Medal string

const (
	MedalNone   Medal = ""
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
)

var medalsByRank = map[int]Medal{
	1: MedalGold,
	2: MedalSilver,
	3: MedalBronze,
}

// Standing is a player's position in Rankings.
type Standing struct {
	Rank   int    `json:"rank"`
	Player Player `json:"player"`
	Medal  Medal  `json:"medal,omitempty"`
	Leader bool   `json:"leader"`
	Last   bool   `json:"last"`
}

// DealerRole tells whether a player currently deals or deals next.
type DealerRole string

const (
	DealerRoleNone    DealerRole = ""
	DealerRoleCurrent DealerRole = "current"
	DealerRoleNext    DealerRole = "next"
)
