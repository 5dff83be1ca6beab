package battle

import (
	"slices"

	"github.com/suderio/draconic-arena/internal/engine"
)

// Phases of the battle state machine.
const (
	PhaseIdle   = "idle"
	PhasePlayer = "player"
	PhaseEnemy  = "enemy"
	PhaseWon    = "won"
	PhaseLost   = "lost"
)

// State is the persisted shape of an encounter. It holds plain data only.
type State struct {
	Phase        string          `json:"phase"`
	InCombat     bool            `json:"inCombat"`
	CurrentEnemy string          `json:"currentEnemy,omitempty"`
	Enemies      []*engine.Enemy `json:"enemies"`
	Player       *engine.Player  `json:"player"`
	Turn         int             `json:"turn"`
	GroupSize    int             `json:"groupSize"`
	Drops        int             `json:"drops"`
	Difficulty   string          `json:"difficulty"`
	Area         string          `json:"area"`
	Counter      int             `json:"counter"`
	Victories    int             `json:"victories"`
}

// Clone deep-copies the state.
func (s State) Clone() State {
	c := s
	c.Enemies = make([]*engine.Enemy, 0, len(s.Enemies))
	for _, e := range s.Enemies {
		c.Enemies = append(c.Enemies, e.Clone())
	}
	c.Player = s.Player.Clone()
	return c
}

// Enemy finds an enemy by id.
func (s State) Enemy(id string) *engine.Enemy {
	i := slices.IndexFunc(s.Enemies, func(e *engine.Enemy) bool { return e.ID == id })
	if i < 0 {
		return nil
	}
	return s.Enemies[i]
}

// Living returns the enemies still standing and not yet defeat-handled.
func (s State) Living() []*engine.Enemy {
	var out []*engine.Enemy
	for _, e := range s.Enemies {
		if e.Alive() && !e.DefeatHandled {
			out = append(out, e)
		}
	}
	return out
}

// TurnReport summarizes one player command and the enemy phase that followed.
type TurnReport struct {
	Hits         []engine.PlayerHit      `json:"hits,omitempty"`
	EnemyActions []engine.AbilityOutcome `json:"enemyActions,omitempty"`
	StatusTick   engine.StatusTick       `json:"statusTick"`
	Outcome      string                  `json:"outcome"`
}

// Outcomes reported by TurnReport.
const (
	OutcomeOngoing = "ongoing"
	OutcomeVictory = "victory"
	OutcomeDefeat  = "defeat"
)
