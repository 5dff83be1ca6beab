package engine

// Summary is the running tally a journal replays into.
type Summary struct {
	Battles      int            `json:"battles"`
	Victories    int            `json:"victories"`
	Defeats      int            `json:"defeats"`
	Kills        int            `json:"kills"`
	XP           int            `json:"xp"`
	Gold         int            `json:"gold"`
	Loot         []string       `json:"loot,omitempty"`
	DamageDealt  int            `json:"damageDealt"`
	DamageTaken  int            `json:"damageTaken"`
	Crits        int            `json:"crits"`
	PostureBreak int            `json:"postureBreaks"`
	AffixFires   map[string]int `json:"affixFires"`
	AbilityUses  map[string]int `json:"abilityUses"`
	LastOutcome  string         `json:"lastOutcome,omitempty"`
}

// Projector computes a Summary from the event sequence.
type Projector struct{}

// NewProjector creates a standard projector.
func NewProjector() *Projector {
	return &Projector{}
}

// Build folds every event into a fresh Summary.
func (p *Projector) Build(events []Event) *Summary {
	s := &Summary{AffixFires: map[string]int{}, AbilityUses: map[string]int{}}
	for _, evt := range events {
		p.Apply(s, evt)
	}
	return s
}

// Apply folds one event into s. Unknown events are ignored.
func (p *Projector) Apply(s *Summary, evt Event) {
	switch e := evt.(type) {
	case *BattleStartedEvent:
		s.Battles++
	case *PlayerActionEvent:
		s.DamageDealt += e.Hit.Damage
		if e.Hit.Crit {
			s.Crits++
		}
	case *EnemyActionEvent:
		if e.Skipped || e.Outcome.Telegraphed {
			return
		}
		s.DamageTaken += e.Outcome.Damage
		s.AbilityUses[e.Outcome.AbilityID]++
	case *PostureBrokenEvent:
		s.PostureBreak++
	case *AffixTriggeredEvent:
		s.AffixFires[e.Effect.Affix]++
		if e.Effect.Kind == HookReflect {
			s.DamageTaken += e.Effect.Amount
		}
	case *EnemyDefeatedEvent:
		s.Kills++
		s.XP += e.XP
		s.Gold += e.Gold
	case *LootDroppedEvent:
		s.Loot = append(s.Loot, e.Item)
	case *BattleEndedEvent:
		s.LastOutcome = e.Outcome
		switch e.Outcome {
		case "victory":
			s.Victories++
		case "defeat":
			s.Defeats++
		}
	}
}
