package engine

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/suderio/draconic-arena/internal/data"
)

const (
	defaultExploration = 0.22
	explorationFloor   = 0.06
	explorationCeil    = 0.35

	postureFloor = 25
	postureCeil  = 420
)

// affinityKeywords maps each element to the words that hint at it.
var affinityKeywords = map[string][]string{
	"fire":      {"fire", "flame", "ember", "magma", "infern", "blaze", "burn"},
	"frost":     {"frost", "ice", "snow", "glacier", "frozen", "rime"},
	"lightning": {"storm", "spark", "thunder", "lightning", "volt"},
	"poison":    {"venom", "toxic", "plague", "bog", "marsh", "poison"},
	"shadow":    {"void", "shadow", "shade", "dark", "hex"},
	"holy":      {"holy", "radiant", "angel", "saint"},
	"earth":     {"stone", "rock", "golem", "sentinel", "earth"},
	"arcane":    {"arcane", "rune", "mage", "arcanist"},
}

// PostureMaxFor derives the break threshold from level, elite and boss flags.
func PostureMaxFor(level int, elite, boss bool) int {
	if level < 1 {
		level = 1
	}
	v := float64(34 + 6*level)
	if elite {
		v *= 1.2
	}
	if boss {
		v *= 1.6
	}
	return clampInt(roundInt(v), postureFloor, postureCeil)
}

// EnsureEnemyRuntime fills every runtime field of e with a safe default
// without overwriting valid values. It may be called any number of times on
// the same enemy; a panic inside is recovered and returned as an error.
func EnsureEnemyRuntime(e *Enemy, cat *data.Catalog) (err error) {
	if e == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ensure runtime for %s: %v", e.ID, r)
		}
	}()

	if e.Level < 1 {
		e.Level = 1
	}
	if e.BaseName == "" {
		e.BaseName = e.Name
	}
	if e.BaseName == "" {
		e.BaseName = e.TemplateID
	}

	e.MaxHP = max(1, e.MaxHP)
	e.HP = clampInt(e.HP, 0, e.MaxHP)
	e.Attack = nonNegative(e.Attack)
	e.Magic = nonNegative(e.Magic)
	e.Armor = nonNegative(e.Armor)
	e.MagicRes = nonNegative(e.MagicRes)
	if e.BaseAttack <= 0 {
		e.BaseAttack = e.Attack
	}
	if e.BaseMagic <= 0 {
		e.BaseMagic = e.Magic
	}

	if len(e.Abilities) == 0 && cat != nil {
		e.Abilities = cat.Kit(e.Behavior)
	}
	if len(e.Abilities) == 0 {
		e.Abilities = []string{data.BasicStrike}
	}
	if e.AbilityCooldowns == nil {
		e.AbilityCooldowns = map[string]int{}
	}
	for id, cd := range e.AbilityCooldowns {
		if cd < 0 {
			e.AbilityCooldowns[id] = 0
		}
	}

	for _, t := range []*int{
		&e.GuardTurns, &e.GuardArmorBonus, &e.EnrageTurns, &e.AtkDownTurns, &e.AtkDownFlat,
		&e.MagDownTurns, &e.MagDownFlat, &e.ChilledTurns, &e.MarkedTurns, &e.BrokenTurns,
		&e.StunTurns, &e.ForcedGuardTurns, &e.AffixCapBonus,
	} {
		*t = nonNegative(*t)
	}
	e.EnrageAtkPct = clampFinite(e.EnrageAtkPct, 0, 5, 0)
	e.ChilledDmgPct = clampFinite(e.ChilledDmgPct, 0, 0.9, 0)
	e.MarkedDmgPct = clampFinite(e.MarkedDmgPct, 0, 5, 0)

	if e.Memory.AbilityStats == nil {
		e.Memory.AbilityStats = map[string]AbilityStat{}
	}
	for id, st := range e.Memory.AbilityStats {
		st.Value = finiteNumber(st.Value, 0)
		st.Uses = nonNegative(st.Uses)
		e.Memory.AbilityStats[id] = st
	}
	if e.Memory.Exploration <= 0 || math.IsNaN(e.Memory.Exploration) {
		e.Memory.Exploration = defaultExploration
	}
	e.Memory.Exploration = clampFinite(e.Memory.Exploration, explorationFloor, explorationCeil, defaultExploration)

	e.Affixes = dedupe(e.Affixes)
	if n := AffixCap(e); len(e.Affixes) > n {
		e.Affixes = e.Affixes[:n]
	}
	if e.Rarity < 1 {
		e.Rarity = 1
	}
	e.DropMult = finiteNumber(e.DropMult, 1)
	if e.DropMult <= 0 {
		e.DropMult = 1
	}
	refreshDerived(e, cat)
	return nil
}

// refreshDerived recomputes everything that depends on elite/affix state:
// posture bounds, display name, affinity and reward integrity.
func refreshDerived(e *Enemy, cat *data.Catalog) {
	e.PostureMax = PostureMaxFor(e.Level, e.IsElite, e.IsBoss)
	e.Posture = clampInt(e.Posture, 0, e.PostureMax)
	e.Name = displayName(e, cat)
	if e.Element == "" {
		e.Element = inferAffinity(e)
	}
	fixRewards(e)
}

func fixRewards(e *Enemy) {
	e.XP = max(1, e.XP)
	e.GoldMin = nonNegative(e.GoldMin)
	if e.GoldMax < e.GoldMin {
		e.GoldMax = e.GoldMin
	}
}

func displayName(e *Enemy, cat *data.Catalog) string {
	parts := make([]string, 0, len(e.Affixes)+2)
	for _, id := range e.Affixes {
		label := id
		if cat != nil {
			if def, ok := cat.Affix(id); ok {
				label = def.Label
			}
		}
		parts = append(parts, label)
	}
	if e.IsElite {
		label := "Elite"
		if cat != nil {
			if def, ok := cat.Elite(e.EliteAffix); ok {
				label = def.Label
			}
		}
		parts = append(parts, label)
	}
	parts = append(parts, e.BaseName)
	return strings.Join(parts, " ")
}

// inferAffinity picks an element from traits, then resist multipliers, then
// flat resists, then keywords. Elements are walked in catalog order so ties
// resolve the same way every time.
func inferAffinity(e *Enemy) string {
	for _, t := range e.ElementalTraits {
		t = strings.ToLower(t)
		if slices.Contains(data.Elements, t) {
			return t
		}
	}

	best, bestVal := "", 1.0
	for _, el := range data.Elements {
		if v, ok := e.ResistMult[el]; ok && finiteNumber(v, 1) < bestVal {
			best, bestVal = el, v
		}
	}
	if best != "" {
		return best
	}

	bestVal = 0
	for _, el := range data.Elements {
		if v, ok := e.ResistFlat[el]; ok && finiteNumber(v, 0) > bestVal {
			best, bestVal = el, v
		}
	}
	if best != "" {
		return best
	}

	text := strings.ToLower(strings.Join(append([]string{e.BaseName, e.ID, e.TemplateID}, e.Affixes...), " "))
	for _, el := range data.Elements {
		for _, kw := range affinityKeywords[el] {
			if strings.Contains(text, kw) {
				return el
			}
		}
	}
	return ""
}

func dedupe(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	out := ids[:0:0]
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
