package engine

import (
	"maps"
	"slices"
)

// Debuff is a flat stat reduction with a turn counter.
type Debuff struct {
	Amount int `json:"amount"`
	Turns  int `json:"turns"`
}

// PlayerStatus is the bag of timed counters the combat core reads and writes.
type PlayerStatus struct {
	AtkDown         Debuff  `json:"atkDown"`
	ArmorDown       Debuff  `json:"armorDown"`
	MagicResDown    Debuff  `json:"magicResDown"`
	ChilledTurns    int     `json:"chilledTurns"`
	ChilledDmgPct   float64 `json:"chilledDmgPct"`
	Shield          int     `json:"shield"`
	ShieldTurns     int     `json:"shieldTurns"`
	BleedTurns      int     `json:"bleedTurns"`
	BleedDamage     int     `json:"bleedDamage"`
	VulnerableTurns int     `json:"vulnerableTurns"`
}

// StatusRecord is one stackable status effect on the player.
type StatusRecord struct {
	ID       string `json:"id"`
	Stacks   int    `json:"stacks"`
	Duration int    `json:"duration"`
}

// Player is the combat subset of the player character.
type Player struct {
	Name     string `json:"name"`
	Level    int    `json:"level"`
	MaxHP    int    `json:"maxHp"`
	HP       int    `json:"hp"`
	Attack   int    `json:"attack"`
	Magic    int    `json:"magic"`
	Armor    int    `json:"armor"`
	MagicRes int    `json:"magicRes"`
	XP       int    `json:"xp"`
	Gold     int    `json:"gold"`

	CritChance  float64            `json:"critChance"`
	LastHitCrit bool               `json:"lastHitCrit"`
	GodMode     bool               `json:"godMode"`
	Resist      map[string]float64 `json:"resist,omitempty"`

	Status        PlayerStatus   `json:"status"`
	StatusEffects []StatusRecord `json:"statusEffects"`
	Inventory     []string       `json:"inventory,omitempty"`
}

// NewPlayer returns a level-appropriate adventurer.
func NewPlayer(name string, level int) *Player {
	if level < 1 {
		level = 1
	}
	hp := 80 + 12*level
	return &Player{
		Name:       name,
		Level:      level,
		MaxHP:      hp,
		HP:         hp,
		Attack:     10 + 2*level,
		Magic:      8 + 2*level,
		Armor:      3 + level,
		MagicRes:   2 + level,
		CritChance: 0.12,
	}
}

// Alive reports whether the player still stands.
func (p *Player) Alive() bool { return p.HP > 0 }

// HPRatio is hp/maxHp in [0,1].
func (p *Player) HPRatio() float64 {
	if p.MaxHP <= 0 {
		return 0
	}
	return clampFinite(float64(p.HP)/float64(p.MaxHP), 0, 1, 0)
}

// TakeDamage lowers HP and returns the amount actually removed. God mode keeps
// the player at 1 HP or more.
func (p *Player) TakeDamage(n int) int {
	if n <= 0 {
		return 0
	}
	before := p.HP
	p.HP -= n
	if p.HP < 0 {
		p.HP = 0
	}
	if p.GodMode && p.HP < 1 {
		p.HP = 1
	}
	return before - p.HP
}

// EffectiveAttack applies the attack-down and chill debuffs.
func (p *Player) EffectiveAttack() int {
	atk := p.Attack
	if p.Status.AtkDown.Turns > 0 {
		atk -= p.Status.AtkDown.Amount
	}
	return nonNegative(atk)
}

// EffectiveArmor applies the armor-down debuff.
func (p *Player) EffectiveArmor() int {
	a := p.Armor
	if p.Status.ArmorDown.Turns > 0 {
		a -= p.Status.ArmorDown.Amount
	}
	return nonNegative(a)
}

// EffectiveMagicRes applies the resist-down debuff.
func (p *Player) EffectiveMagicRes() int {
	r := p.MagicRes
	if p.Status.MagicResDown.Turns > 0 {
		r -= p.Status.MagicResDown.Amount
	}
	return nonNegative(r)
}

// Clone returns a deep copy.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	c := *p
	c.Resist = maps.Clone(p.Resist)
	c.StatusEffects = slices.Clone(p.StatusEffects)
	c.Inventory = slices.Clone(p.Inventory)
	return &c
}
