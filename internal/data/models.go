package data

// StatMultipliers is a multiplicative bundle applied to an enemy's stats and rewards.
// A zero field is normalized to 1 when the catalog is validated.
type StatMultipliers struct {
	HP     float64 `yaml:"hp" json:"hp"`
	Attack float64 `yaml:"attack" json:"attack"`
	Magic  float64 `yaml:"magic" json:"magic"`
	Armor  float64 `yaml:"armor" json:"armor"`
	Resist float64 `yaml:"resist" json:"resist"`
	XP     float64 `yaml:"xp" json:"xp"`
	Gold   float64 `yaml:"gold" json:"gold"`
}

func (m *StatMultipliers) normalize() {
	for _, f := range []*float64{&m.HP, &m.Attack, &m.Magic, &m.Armor, &m.Resist, &m.XP, &m.Gold} {
		if *f <= 0 {
			*f = 1
		}
	}
}

// StatusKind groups status effects by how the turn loop treats them.
type StatusKind string

const (
	StatusDamageOverTime StatusKind = "dot"
	StatusControl        StatusKind = "control"
	StatusDebuff         StatusKind = "debuff"
	StatusBuff           StatusKind = "buff"
)

// StatusEffectDef is one row of the status effect table.
type StatusEffectDef struct {
	ID             string     `yaml:"id"`
	Name           string     `yaml:"name"`
	Kind           StatusKind `yaml:"kind"`
	MaxStacks      int        `yaml:"max_stacks"`
	Duration       int        `yaml:"duration"`
	TickDamage     int        `yaml:"tick_damage"`      // per stack, per turn
	DamageTakenPct float64    `yaml:"damage_taken_pct"` // per stack
	DamageDealtPct float64    `yaml:"damage_dealt_pct"` // per stack, negative reduces
}

// AbilityKind is the closed set of enemy ability variants.
type AbilityKind string

const (
	KindDamage AbilityKind = "damage"
	KindGuard  AbilityKind = "guard"
	KindBuff   AbilityKind = "buff"
	KindDebuff AbilityKind = "debuff"
	KindHeal   AbilityKind = "heal"
)

// DamagePayload describes a damaging ability.
type DamagePayload struct {
	Stat            string  `yaml:"stat"` // "attack" or "magic"
	Potency         float64 `yaml:"potency"`
	Element         string  `yaml:"element"`
	BleedTurns      int     `yaml:"bleed_turns"`
	BleedPct        float64 `yaml:"bleed_pct"`
	VulnerableTurns int     `yaml:"vulnerable_turns"`
	ShieldShatter   bool    `yaml:"shield_shatter"`
}

// GuardPayload raises the enemy's armor for a few turns.
type GuardPayload struct {
	Turns      int `yaml:"turns"`
	ArmorBonus int `yaml:"armor_bonus"`
}

// BuffPayload enrages the enemy.
type BuffPayload struct {
	EnrageTurns int     `yaml:"enrage_turns"`
	AtkPct      float64 `yaml:"atk_pct"`
}

// DebuffPayload lowers the player's stats.
type DebuffPayload struct {
	Turns        int `yaml:"turns"`
	AtkDown      int `yaml:"atk_down"`
	ArmorDown    int `yaml:"armor_down"`
	MagicResDown int `yaml:"magic_res_down"`
}

// HealPayload restores a fraction of the enemy's max HP.
type HealPayload struct {
	Pct float64 `yaml:"pct"`
}

// StatusApplication adds a status effect record to the player.
type StatusApplication struct {
	ID       string `yaml:"id"`
	Stacks   int    `yaml:"stacks"`
	Duration int    `yaml:"duration"`
}

// AbilityDef is an enemy ability. Exactly one payload matching Kind is set.
type AbilityDef struct {
	ID        string              `yaml:"id"`
	Name      string              `yaml:"name"`
	Kind      AbilityKind         `yaml:"kind"`
	Cooldown  int                 `yaml:"cooldown"`
	Telegraph bool                `yaml:"telegraph"`
	Requires  string              `yaml:"requires"` // optional CEL gate
	Applies   []StatusApplication `yaml:"applies"`
	Damage    *DamagePayload      `yaml:"damage"`
	Guard     *GuardPayload       `yaml:"guard"`
	Buff      *BuffPayload        `yaml:"buff"`
	Debuff    *DebuffPayload      `yaml:"debuff"`
	Heal      *HealPayload        `yaml:"heal"`
}

// AffixHook holds the runtime hook magnitudes an affix installs.
type AffixHook struct {
	VampiricPct      float64 `yaml:"vampiric_pct" json:"vampiricPct,omitempty"`
	ThornsPct        float64 `yaml:"thorns_pct" json:"thornsPct,omitempty"`
	HexTurns         int     `yaml:"hex_turns" json:"hexTurns,omitempty"`
	HexAtkDown       int     `yaml:"hex_atk_down" json:"hexAtkDown,omitempty"`
	HexArmorDown     int     `yaml:"hex_armor_down" json:"hexArmorDown,omitempty"`
	HexResDown       int     `yaml:"hex_res_down" json:"hexResDown,omitempty"`
	FrozenChance     float64 `yaml:"frozen_chance" json:"frozenChance,omitempty"`
	FrozenTurns      int     `yaml:"frozen_turns" json:"frozenTurns,omitempty"`
	FrozenDmgPct     float64 `yaml:"frozen_dmg_pct" json:"frozenDmgPct,omitempty"`
	BerserkThreshold float64 `yaml:"berserk_threshold" json:"berserkThreshold,omitempty"`
	BerserkAtkPct    float64 `yaml:"berserk_atk_pct" json:"berserkAtkPct,omitempty"`
}

// AffixDef is a mini-affix an enemy can roll.
type AffixDef struct {
	ID       string          `yaml:"id"`
	Label    string          `yaml:"label"`
	MinLevel int             `yaml:"min_level"`
	Weight   float64         `yaml:"weight"`
	Mult     StatMultipliers `yaml:"mult"`
	Hook     AffixHook       `yaml:"hook"`
}

// EliteDef is an elite archetype.
type EliteDef struct {
	ID    string          `yaml:"id"`
	Label string          `yaml:"label"`
	Mult  StatMultipliers `yaml:"mult"`
}

// RarityDef is one rarity tier. Tiers are numbered from 1.
type RarityDef struct {
	Tier          int             `yaml:"tier"`
	ID            string          `yaml:"id"`
	Label         string          `yaml:"label"`
	Mult          StatMultipliers `yaml:"mult"`
	DropMult      float64         `yaml:"drop_mult"`
	AffixCapBonus int             `yaml:"affix_cap_bonus"`
	AffixChance   float64         `yaml:"affix_chance"` // added to the difficulty's base chance
}

// Difficulty is resolved once when an encounter starts.
type Difficulty struct {
	ID            string     `yaml:"id"`
	Name          string     `yaml:"name"`
	AISmartness   float64    `yaml:"ai_smartness"`
	ClosestID     string     `yaml:"closest_id"`
	EliteChance   float64    `yaml:"elite_chance"`
	AffixChance   float64    `yaml:"affix_chance"`
	GroupWeights  [3]float64 `yaml:"group_weights"`
	RarityWeights [6]float64 `yaml:"rarity_weights"`
}

// RollsAffixes reports whether random mini-affixes may appear at all.
func (d Difficulty) RollsAffixes() bool {
	return d.ID != "easy" && d.AffixChance > 0
}

// Area is a region enemies spawn in.
type Area struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Tutorial  bool     `yaml:"tutorial"`
	Templates []string `yaml:"templates"`
}

// EnemyTemplate is the static definition an enemy is spawned from.
type EnemyTemplate struct {
	ID              string             `yaml:"id"`
	Name            string             `yaml:"name"`
	Level           int                `yaml:"level"`
	MaxHP           int                `yaml:"max_hp"`
	Attack          int                `yaml:"attack"`
	Magic           int                `yaml:"magic"`
	Armor           int                `yaml:"armor"`
	MagicRes        int                `yaml:"magic_res"`
	XP              int                `yaml:"xp"`
	GoldMin         int                `yaml:"gold_min"`
	GoldMax         int                `yaml:"gold_max"`
	Behavior        string             `yaml:"behavior"`
	IsBoss          bool               `yaml:"is_boss"`
	Abilities       []string           `yaml:"abilities"`
	Element         string             `yaml:"element"`
	ElementalTraits []string           `yaml:"elemental_traits"`
	ResistMult      map[string]float64 `yaml:"resist_mult"`
	ResistFlat      map[string]float64 `yaml:"resist_flat"`
}
