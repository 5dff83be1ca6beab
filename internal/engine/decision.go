package engine

import (
	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/rng"
)

// AbilityGate decides whether an ability's extra preconditions hold.
type AbilityGate interface {
	Allows(def data.AbilityDef, e *Enemy, p *Player) bool
}

// DecisionContext is resolved once per encounter and passed to every choice.
type DecisionContext struct {
	Player     *Player
	Difficulty data.Difficulty
	Catalog    *data.Catalog
	RNG        rng.Stream
	Gate       AbilityGate
}

func (c DecisionContext) smartness() float64 {
	s := c.Difficulty.AISmartness
	if s <= 0 {
		s = data.DefaultSmartness
	}
	return clampFinite(s, 0, 1, data.DefaultSmartness)
}

// Epsilon is the exploration probability for e under the context's smartness.
func (c DecisionContext) Epsilon(e *Enemy) float64 {
	return clampFinite(e.Memory.Exploration*(1.2-0.6*c.smartness()), 0.05, 0.35, 0.05)
}

// learnedWeight scales the EMA value relative to the heuristic terms.
func (c DecisionContext) learnedWeight() float64 {
	return 0.35 + 0.45*c.smartness()
}

// EstimateDamage is the pre-mitigation damage a damage ability would deal.
func EstimateDamage(e *Enemy, p *Player, def data.AbilityDef) float64 {
	if def.Damage == nil {
		return 0
	}
	stat := float64(e.Attack)
	if def.Damage.Stat == "magic" {
		stat = float64(e.Magic)
	}
	est := stat * def.Damage.Potency * e.DamageMultiplier()
	if def.Damage.Element != "" && p != nil {
		est *= 1 - clampFinite(p.Resist[def.Damage.Element], 0, 0.9, 0)
	}
	return finiteNumber(est, 0)
}

// ScoreAbility blends the learned value of id with situational heuristics.
func ScoreAbility(e *Enemy, id string, ctx DecisionContext) float64 {
	def, ok := ctx.Catalog.Ability(id)
	if !ok {
		return 0
	}
	p := ctx.Player
	score := e.Memory.AbilityStats[id].Value * ctx.learnedWeight()
	self := e.HPRatio()

	switch def.Kind {
	case data.KindGuard:
		if self < 0.45 {
			score += 22
		} else {
			score += 2
		}
		if e.GuardTurns > 0 {
			score -= 30
		}
	case data.KindBuff:
		if e.EnrageTurns > 0 {
			score -= 25
		}
		if self < 0.6 {
			score += 14
		} else {
			score += 5
		}
	case data.KindDebuff:
		if p.HPRatio() > 0.6 {
			score += 12
		}
		if p.Status.Shield > 0 {
			score += 8
		}
		if p.Status.AtkDown.Turns > 0 || p.Status.ArmorDown.Turns > 0 {
			score -= 10
		}
	case data.KindHeal:
		switch {
		case self < 0.4:
			score += 26
		case self > 0.8:
			score -= 20
		}
	case data.KindDamage:
		est := EstimateDamage(e, p, def)
		score += est
		if est >= float64(p.HP) {
			score += 65
		}
		if p.HPRatio() < 0.35 {
			score += 15
		}
		if def.Damage.BleedTurns > 0 && p.Status.BleedTurns == 0 {
			score += 6
		}
		if def.Damage.VulnerableTurns > 0 && p.Status.VulnerableTurns == 0 {
			score += 5
		}
		if def.Damage.ShieldShatter && p.Status.Shield > 0 {
			score += 12
		}
	}
	return score
}

// UsableAbilities is the kit minus anything on cooldown, unknown or gated.
// It never returns an empty list.
func UsableAbilities(e *Enemy, ctx DecisionContext) []string {
	var out []string
	for _, id := range e.Abilities {
		def, ok := ctx.Catalog.Ability(id)
		if !ok || e.AbilityCooldowns[id] > 0 {
			continue
		}
		if ctx.Gate != nil && !ctx.Gate.Allows(def, e, ctx.Player) {
			continue
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		out = []string{data.BasicStrike}
	}
	return out
}

// ChooseEnemyAbility picks the ability e uses this turn. A pending telegraphed
// intent is always honored; otherwise the pick is epsilon-greedy over scores.
func ChooseEnemyAbility(e *Enemy, ctx DecisionContext) string {
	if e.Intent != nil {
		if _, ok := ctx.Catalog.Ability(e.Intent.AbilityID); ok {
			return e.Intent.AbilityID
		}
		e.Intent = nil
	}

	usable := UsableAbilities(e, ctx)
	if ctx.RNG.Random("ai.explore") < ctx.Epsilon(e) {
		return usable[ctx.RNG.RandomInt(0, len(usable)-1, "ai.explorePick")]
	}

	best, bestScore := usable[0], ScoreAbility(e, usable[0], ctx)
	for _, id := range usable[1:] {
		if s := ScoreAbility(e, id, ctx); s > bestScore {
			best, bestScore = id, s
		}
	}
	return best
}

// ActionCategory is the coarse action choice used by enemies without a kit.
type ActionCategory string

const (
	ActionAttack     ActionCategory = "attack"
	ActionHeavy      ActionCategory = "heavy"
	ActionGuard      ActionCategory = "guard"
	ActionVoidBreath ActionCategory = "voidBreath"
)

// CategoryAbility maps a category to the catalog ability that carries it out.
var CategoryAbility = map[ActionCategory]string{
	ActionAttack:     data.BasicStrike,
	ActionHeavy:      "heavy_blow",
	ActionGuard:      "guard",
	ActionVoidBreath: "void_breath",
}

func categoryKey(c ActionCategory) string { return "category:" + string(c) }

// DecideEnemyAction chooses an action category with the same
// blend-and-explore pattern as ChooseEnemyAbility.
func DecideEnemyAction(e *Enemy, ctx DecisionContext) ActionCategory {
	p := ctx.Player
	ready := func(c ActionCategory) bool {
		id := CategoryAbility[c]
		_, known := ctx.Catalog.Ability(id)
		return known && e.AbilityCooldowns[id] == 0
	}

	options := []ActionCategory{ActionAttack}
	scores := map[ActionCategory]float64{ActionAttack: 10}
	if e.Level >= 3 && ready(ActionHeavy) {
		options = append(options, ActionHeavy)
		scores[ActionHeavy] = 8
		if p.HPRatio() > 0.5 {
			scores[ActionHeavy] = 12
		}
		if e.Behavior == "brute" {
			scores[ActionHeavy] += 4
		}
	}
	if ready(ActionGuard) && e.GuardTurns == 0 {
		options = append(options, ActionGuard)
		if e.HPRatio() < 0.35 {
			scores[ActionGuard] = 20
		}
	}
	if e.IsBoss && ready(ActionVoidBreath) {
		options = append(options, ActionVoidBreath)
		scores[ActionVoidBreath] = 18
		if p.HPRatio() > 0.6 {
			scores[ActionVoidBreath] += 6
		}
	}

	if ctx.RNG.Random("ai.category") < ctx.Epsilon(e) {
		return options[ctx.RNG.RandomInt(0, len(options)-1, "ai.categoryPick")]
	}
	best, bestScore := options[0], 0.0
	for i, c := range options {
		s := scores[c] + e.Memory.AbilityStats[categoryKey(c)].Value*ctx.learnedWeight()
		if i == 0 || s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}
