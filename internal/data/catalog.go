package data

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownTemplate is returned when an enemy template id is not in the catalog.
var ErrUnknownTemplate = errors.New("unknown enemy template")

// Elements recognised by affinity inference and resistances.
var Elements = []string{"fire", "frost", "lightning", "poison", "shadow", "holy", "earth", "arcane"}

// DefaultDifficulty is used when a requested id cannot be resolved.
const DefaultDifficulty = "normal"

// DefaultSmartness is the AI smartness of a difficulty that does not set one.
const DefaultSmartness = 0.6

// Catalog bundles every static table the combat engine reads.
// It is immutable once Validate has run.
type Catalog struct {
	StatusEffects map[string]StatusEffectDef
	Abilities     map[string]AbilityDef
	Kits          map[string][]string
	Affixes       []AffixDef
	Elites        []EliteDef
	Rarities      []RarityDef
	Difficulties  map[string]Difficulty
	Templates     map[string]EnemyTemplate
	Areas         map[string]Area

	affixIndex map[string]int
}

// Ability looks up an ability by id.
func (c *Catalog) Ability(id string) (AbilityDef, bool) {
	def, ok := c.Abilities[id]
	return def, ok
}

// Kit returns a copy of the default ability kit for a behavior tag.
func (c *Catalog) Kit(behavior string) []string {
	kit, ok := c.Kits[behavior]
	if !ok || len(kit) == 0 {
		kit = c.Kits["default"]
	}
	out := make([]string, len(kit))
	copy(out, kit)
	return out
}

// Affix looks up an affix by id.
func (c *Catalog) Affix(id string) (AffixDef, bool) {
	i, ok := c.affixIndex[id]
	if !ok {
		return AffixDef{}, false
	}
	return c.Affixes[i], true
}

// Elite looks up an elite archetype by id.
func (c *Catalog) Elite(id string) (EliteDef, bool) {
	for _, e := range c.Elites {
		if e.ID == id {
			return e, true
		}
	}
	return EliteDef{}, false
}

// Rarity returns the definition for a tier, clamped to the known range.
func (c *Catalog) Rarity(tier int) RarityDef {
	if len(c.Rarities) == 0 {
		return RarityDef{Tier: 1, ID: "common", Label: "Common", Mult: identityMult(), DropMult: 1}
	}
	if tier < 1 {
		tier = 1
	}
	if tier > len(c.Rarities) {
		tier = len(c.Rarities)
	}
	return c.Rarities[tier-1]
}

// MaxRarity is the top tier.
func (c *Catalog) MaxRarity() int {
	if len(c.Rarities) == 0 {
		return 1
	}
	return len(c.Rarities)
}

// StatusEffect looks up a status effect definition.
func (c *Catalog) StatusEffect(id string) (StatusEffectDef, bool) {
	def, ok := c.StatusEffects[id]
	return def, ok
}

// Template looks up an enemy template.
func (c *Catalog) Template(id string) (EnemyTemplate, error) {
	t, ok := c.Templates[id]
	if !ok {
		return EnemyTemplate{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return t, nil
}

// Area returns an area by id, or a non-tutorial placeholder when unknown.
func (c *Catalog) Area(id string) Area {
	if a, ok := c.Areas[id]; ok {
		return a
	}
	return Area{ID: id, Name: id}
}

// Difficulty resolves a difficulty by id, following ClosestID when the id is
// unknown and finally falling back to DefaultDifficulty.
func (c *Catalog) Difficulty(id string) Difficulty {
	seen := map[string]bool{}
	cur := id
	for cur != "" && !seen[cur] {
		seen[cur] = true
		if d, ok := c.Difficulties[cur]; ok {
			return d
		}
		cur = closestDifficultyAlias(cur)
	}
	if d, ok := c.Difficulties[DefaultDifficulty]; ok {
		return d
	}
	return Difficulty{ID: DefaultDifficulty, Name: "Normal", AISmartness: DefaultSmartness, GroupWeights: [3]float64{1, 0, 0}}
}

func closestDifficultyAlias(id string) string {
	switch strings.ToLower(id) {
	case "story", "casual", "veryeasy":
		return "easy"
	case "nightmare", "brutal", "veryhard":
		return "hard"
	}
	return ""
}

func identityMult() StatMultipliers {
	return StatMultipliers{HP: 1, Attack: 1, Magic: 1, Armor: 1, Resist: 1, XP: 1, Gold: 1}
}

// Validate normalizes defaults and checks the closed schema of every table.
func (c *Catalog) Validate() error {
	var errs []error

	if c.StatusEffects == nil {
		c.StatusEffects = map[string]StatusEffectDef{}
	}
	for id, def := range c.StatusEffects {
		if def.ID == "" {
			def.ID = id
		}
		switch def.Kind {
		case StatusDamageOverTime, StatusControl, StatusDebuff, StatusBuff:
		default:
			errs = append(errs, fmt.Errorf("status effect %s: unknown kind %q", id, def.Kind))
		}
		if def.MaxStacks < 1 {
			def.MaxStacks = 1
		}
		if def.Duration < 1 {
			def.Duration = 1
		}
		c.StatusEffects[id] = def
	}

	if c.Abilities == nil {
		c.Abilities = map[string]AbilityDef{}
	}
	for id, def := range c.Abilities {
		if def.ID == "" {
			def.ID = id
		}
		if def.Name == "" {
			def.Name = id
		}
		if def.Cooldown < 0 {
			def.Cooldown = 0
		}
		if err := validateAbilityPayload(def); err != nil {
			errs = append(errs, err)
		}
		for _, app := range def.Applies {
			if _, ok := c.StatusEffects[app.ID]; !ok {
				errs = append(errs, fmt.Errorf("ability %s: applies unknown status effect %q", id, app.ID))
			}
		}
		c.Abilities[id] = def
	}
	if _, ok := c.Abilities[BasicStrike]; !ok {
		errs = append(errs, fmt.Errorf("ability catalog is missing the %q fallback", BasicStrike))
	}

	if c.Kits == nil {
		c.Kits = map[string][]string{}
	}
	if len(c.Kits["default"]) == 0 {
		c.Kits["default"] = []string{BasicStrike}
	}
	for behavior, kit := range c.Kits {
		for _, id := range kit {
			if _, ok := c.Abilities[id]; !ok {
				errs = append(errs, fmt.Errorf("kit %s: unknown ability %q", behavior, id))
			}
		}
	}

	c.affixIndex = make(map[string]int, len(c.Affixes))
	for i := range c.Affixes {
		a := &c.Affixes[i]
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("affix #%d: missing id", i))
			continue
		}
		if _, dup := c.affixIndex[a.ID]; dup {
			errs = append(errs, fmt.Errorf("affix %s: duplicate id", a.ID))
			continue
		}
		if a.Label == "" {
			a.Label = capitalize(a.ID)
		}
		if a.Weight < 0 || math.IsNaN(a.Weight) {
			a.Weight = 0
		}
		a.Mult.normalize()
		c.affixIndex[a.ID] = i
	}

	for i := range c.Elites {
		c.Elites[i].Mult.normalize()
		if c.Elites[i].Label == "" {
			c.Elites[i].Label = "Elite"
		}
	}

	sort.Slice(c.Rarities, func(i, j int) bool { return c.Rarities[i].Tier < c.Rarities[j].Tier })
	for i := range c.Rarities {
		r := &c.Rarities[i]
		if r.Tier != i+1 {
			errs = append(errs, fmt.Errorf("rarity tiers must be contiguous from 1, got %d at position %d", r.Tier, i+1))
		}
		r.Mult.normalize()
		if r.DropMult <= 0 {
			r.DropMult = 1
		}
	}

	if c.Difficulties == nil {
		c.Difficulties = map[string]Difficulty{}
	}
	for id, d := range c.Difficulties {
		if d.ID == "" {
			d.ID = id
		}
		if base, ok := c.Difficulties[d.ClosestID]; ok && d.ClosestID != id {
			d.inherit(base)
		}
		if d.AISmartness <= 0 || math.IsNaN(d.AISmartness) {
			d.AISmartness = DefaultSmartness
		}
		if d.AISmartness > 1 {
			d.AISmartness = 1
		}
		if d.GroupWeights == [3]float64{} {
			d.GroupWeights = [3]float64{1, 0, 0}
		}
		if d.RarityWeights == [6]float64{} {
			d.RarityWeights[0] = 1
		}
		c.Difficulties[id] = d
	}

	for id, t := range c.Templates {
		if t.ID == "" {
			t.ID = id
		}
		if t.Name == "" {
			t.Name = id
		}
		for _, a := range t.Abilities {
			if _, ok := c.Abilities[a]; !ok {
				errs = append(errs, fmt.Errorf("template %s: unknown ability %q", id, a))
			}
		}
		c.Templates[id] = t
	}

	for id, a := range c.Areas {
		if a.ID == "" {
			a.ID = id
		}
		for _, tid := range a.Templates {
			if _, ok := c.Templates[tid]; !ok {
				errs = append(errs, fmt.Errorf("area %s: unknown template %q", id, tid))
			}
		}
		c.Areas[id] = a
	}

	return errors.Join(errs...)
}

// BasicStrike is the always-available fallback ability.
const BasicStrike = "strike"

func validateAbilityPayload(def AbilityDef) error {
	set := 0
	for _, p := range []bool{def.Damage != nil, def.Guard != nil, def.Buff != nil, def.Debuff != nil, def.Heal != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("ability %s: expected exactly one payload, found %d", def.ID, set)
	}
	var ok bool
	switch def.Kind {
	case KindDamage:
		ok = def.Damage != nil
		if ok && def.Damage.Stat != "attack" && def.Damage.Stat != "magic" {
			return fmt.Errorf("ability %s: damage stat must be attack or magic, got %q", def.ID, def.Damage.Stat)
		}
	case KindGuard:
		ok = def.Guard != nil
	case KindBuff:
		ok = def.Buff != nil
	case KindDebuff:
		ok = def.Debuff != nil
	case KindHeal:
		ok = def.Heal != nil
	default:
		return fmt.Errorf("ability %s: unknown kind %q", def.ID, def.Kind)
	}
	if !ok {
		return fmt.Errorf("ability %s: payload does not match kind %q", def.ID, def.Kind)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// inherit fills unset fields from the closest preset difficulty.
func (d *Difficulty) inherit(base Difficulty) {
	if d.AISmartness <= 0 {
		d.AISmartness = base.AISmartness
	}
	if d.EliteChance <= 0 {
		d.EliteChance = base.EliteChance
	}
	if d.AffixChance <= 0 {
		d.AffixChance = base.AffixChance
	}
	if d.GroupWeights == [3]float64{} {
		d.GroupWeights = base.GroupWeights
	}
	if d.RarityWeights == [6]float64{} {
		d.RarityWeights = base.RarityWeights
	}
}
