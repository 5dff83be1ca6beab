package engine

import (
	"maps"
	"slices"

	"github.com/suderio/draconic-arena/internal/data"
)

// AbilityStat is the learned value of one ability.
type AbilityStat struct {
	Value float64 `json:"value"`
	Uses  int     `json:"uses"`
}

// Memory is the per-enemy learning state. It survives save/load.
type Memory struct {
	AbilityStats map[string]AbilityStat `json:"abilityStats"`
	Exploration  float64                `json:"exploration"`
}

// Intent is a telegraphed ability the enemy will use on its next action.
type Intent struct {
	AbilityID string `json:"abilityId"`
	Name      string `json:"name"`
}

// Enemy is a combatant owned by the active encounter. The combat loop mutates
// it in place; readers outside the loop get copies through Clone.
type Enemy struct {
	ID         string `json:"id"`
	TemplateID string `json:"templateId"`
	BaseName   string `json:"baseName"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Behavior   string `json:"behavior,omitempty"`

	MaxHP      int `json:"maxHp"`
	HP         int `json:"hp"`
	Attack     int `json:"attack"`
	Magic      int `json:"magic"`
	Armor      int `json:"armor"`
	MagicRes   int `json:"magicRes"`
	BaseAttack int `json:"baseAttack"`
	BaseMagic  int `json:"baseMagic"`

	IsBoss        bool     `json:"isBoss"`
	IsElite       bool     `json:"isElite"`
	EliteAffix    string   `json:"eliteAffix,omitempty"`
	Affixes       []string `json:"affixes"`
	Rarity        int      `json:"rarity"`
	RarityApplied bool     `json:"_rarityApplied"`
	AffixCapBonus int      `json:"affixCapBonus"`
	DropMult      float64  `json:"dropMult"`

	Element         string             `json:"element,omitempty"`
	ElementalTraits []string           `json:"elementalTraits,omitempty"`
	ResistMult      map[string]float64 `json:"resistMult,omitempty"`
	ResistFlat      map[string]float64 `json:"resistFlat,omitempty"`

	GuardTurns       int     `json:"guardTurns"`
	GuardArmorBonus  int     `json:"guardArmorBonus"`
	EnrageTurns      int     `json:"enrageTurns"`
	EnrageAtkPct     float64 `json:"enrageAtkPct"`
	AtkDownTurns     int     `json:"atkDownTurns"`
	AtkDownFlat      int     `json:"atkDownFlat"`
	MagDownTurns     int     `json:"magDownTurns"`
	MagDownFlat      int     `json:"magDownFlat"`
	ChilledTurns     int     `json:"chilledTurns"`
	ChilledDmgPct    float64 `json:"chilledDmgPct"`
	MarkedTurns      int     `json:"markedTurns"`
	MarkedDmgPct     float64 `json:"markedDmgPct"`
	BrokenTurns      int     `json:"brokenTurns"`
	StunTurns        int     `json:"stunTurns"`
	ForcedGuardTurns int     `json:"forcedGuardTurns"`

	Posture    int `json:"posture"`
	PostureMax int `json:"postureMax"`

	Abilities        []string       `json:"abilities"`
	AbilityCooldowns map[string]int `json:"abilityCooldowns"`
	Memory           Memory         `json:"memory"`

	Hooks              data.AffixHook `json:"hooks"`
	AffixBerserkActive bool           `json:"affixBerserkActive"`
	Intent             *Intent        `json:"intent,omitempty"`

	XP      int `json:"xp"`
	GoldMin int `json:"goldMin"`
	GoldMax int `json:"goldMax"`

	DefeatHandled bool `json:"_defeatHandled"`
}

// NewEnemyFromTemplate builds an enemy with full HP from a static template.
// Runtime fields are left for EnsureEnemyRuntime.
func NewEnemyFromTemplate(id string, t data.EnemyTemplate) *Enemy {
	e := &Enemy{
		ID:              id,
		TemplateID:      t.ID,
		BaseName:        t.Name,
		Name:            t.Name,
		Level:           t.Level,
		Behavior:        t.Behavior,
		MaxHP:           t.MaxHP,
		HP:              t.MaxHP,
		Attack:          t.Attack,
		Magic:           t.Magic,
		Armor:           t.Armor,
		MagicRes:        t.MagicRes,
		BaseAttack:      t.Attack,
		BaseMagic:       t.Magic,
		IsBoss:          t.IsBoss,
		Element:         t.Element,
		ElementalTraits: slices.Clone(t.ElementalTraits),
		ResistMult:      maps.Clone(t.ResistMult),
		ResistFlat:      maps.Clone(t.ResistFlat),
		Abilities:       slices.Clone(t.Abilities),
		XP:              t.XP,
		GoldMin:         t.GoldMin,
		GoldMax:         t.GoldMax,
	}
	return e
}

// Alive reports whether the enemy still has HP.
func (e *Enemy) Alive() bool { return e.HP > 0 }

// HPRatio is hp/maxHp in [0,1].
func (e *Enemy) HPRatio() float64 {
	if e.MaxHP <= 0 {
		return 0
	}
	return clampFinite(float64(e.HP)/float64(e.MaxHP), 0, 1, 0)
}

// HasAffix reports whether id is already applied.
func (e *Enemy) HasAffix(id string) bool {
	return slices.Contains(e.Affixes, id)
}

// EffectiveArmor includes an active guard bonus.
func (e *Enemy) EffectiveArmor() int {
	if e.GuardTurns > 0 {
		return e.Armor + e.GuardArmorBonus
	}
	return e.Armor
}

// DamageMultiplier is the outgoing damage scale from enrage, berserk and chill.
func (e *Enemy) DamageMultiplier() float64 {
	m := 1.0
	if e.EnrageTurns > 0 {
		m += e.EnrageAtkPct
	}
	if e.AffixBerserkActive {
		m += e.Hooks.BerserkAtkPct
	}
	if e.ChilledTurns > 0 {
		m -= e.ChilledDmgPct
	}
	if m < 0.1 {
		m = 0.1
	}
	return m
}

// Clone returns a deep copy safe to hand to read-only consumers.
func (e *Enemy) Clone() *Enemy {
	if e == nil {
		return nil
	}
	c := *e
	c.Affixes = slices.Clone(e.Affixes)
	c.ElementalTraits = slices.Clone(e.ElementalTraits)
	c.ResistMult = maps.Clone(e.ResistMult)
	c.ResistFlat = maps.Clone(e.ResistFlat)
	c.Abilities = slices.Clone(e.Abilities)
	c.AbilityCooldowns = maps.Clone(e.AbilityCooldowns)
	c.Memory.AbilityStats = maps.Clone(e.Memory.AbilityStats)
	if e.Intent != nil {
		in := *e.Intent
		c.Intent = &in
	}
	return &c
}
