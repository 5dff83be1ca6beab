package engine

import (
	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/rng"
)

// MaxAffixes is the hard cap on mini-affixes per enemy.
const MaxAffixes = 3

// EncounterContext is resolved once when an encounter starts and carries
// everything the modifier passes read.
type EncounterContext struct {
	Catalog    *data.Catalog
	RNG        rng.Stream
	Difficulty data.Difficulty
	Area       data.Area
	// ForceElite skips the elite chance roll. Bosses are never elite.
	ForceElite bool
}

// AffixOptions controls a mini-affix pass.
type AffixOptions struct {
	// Force applies these affix ids (up to the cap) and skips the random roll.
	Force []string
}

// AffixCap is the number of mini-affixes e may carry.
func AffixCap(e *Enemy) int {
	return min(MaxAffixes, 2+nonNegative(e.AffixCapBonus))
}

// ApplyEliteModifiers rolls the elite chance and, on success, scales the
// enemy's current stats by a uniformly picked archetype. It reports whether
// the enemy became elite.
func ApplyEliteModifiers(e *Enemy, diff data.Difficulty, ctx EncounterContext) bool {
	if e == nil || e.IsBoss || e.IsElite || ctx.Catalog == nil || len(ctx.Catalog.Elites) == 0 {
		return false
	}
	if !ctx.ForceElite {
		if ctx.Area.Tutorial {
			return false
		}
		if ctx.RNG.Random("enemy.elite") >= diff.EliteChance {
			return false
		}
	}

	elites := ctx.Catalog.Elites
	arch := elites[ctx.RNG.RandomInt(0, len(elites)-1, "enemy.eliteArchetype")]
	e.IsElite = true
	e.EliteAffix = arch.ID
	scaleStats(e, arch.Mult)
	refreshDerived(e, ctx.Catalog)
	return true
}

// ApplyRarity rolls and applies a rarity tier once. Bosses always get the top
// tier. It returns the enemy's tier.
func ApplyRarity(e *Enemy, diff data.Difficulty, ctx EncounterContext) int {
	if e == nil || ctx.Catalog == nil {
		return 1
	}
	if e.RarityApplied {
		return e.Rarity
	}

	tier := 1
	top := ctx.Catalog.MaxRarity()
	if e.IsBoss {
		tier = top
	} else {
		total := 0.0
		for i := 0; i < top && i < len(diff.RarityWeights); i++ {
			total += max(0, diff.RarityWeights[i])
		}
		if total > 0 {
			r := ctx.RNG.Random("enemy.rarity") * total
			for i := 0; i < top && i < len(diff.RarityWeights); i++ {
				w := max(0, diff.RarityWeights[i])
				if w == 0 {
					continue
				}
				tier = i + 1
				r -= w
				if r <= 0 {
					break
				}
			}
		}
	}

	def := ctx.Catalog.Rarity(tier)
	e.Rarity = def.Tier
	e.RarityApplied = true
	e.DropMult = def.DropMult
	e.AffixCapBonus = def.AffixCapBonus
	scaleStats(e, def.Mult)
	refreshDerived(e, ctx.Catalog)
	return e.Rarity
}

// ApplyEnemyAffixes rolls or forces mini-affixes onto e and returns the ids
// added by this call.
func ApplyEnemyAffixes(e *Enemy, opts AffixOptions, ctx EncounterContext) []string {
	if e == nil || ctx.Catalog == nil {
		return nil
	}
	var added []string
	limit := AffixCap(e)
	defer refreshDerived(e, ctx.Catalog)

	if len(opts.Force) > 0 {
		for _, id := range opts.Force {
			if len(e.Affixes) >= limit {
				break
			}
			def, ok := ctx.Catalog.Affix(id)
			if !ok {
				continue
			}
			if applyAffix(e, def) {
				added = append(added, def.ID)
			}
		}
		return added
	}

	if !ctx.Difficulty.RollsAffixes() || ctx.Area.Tutorial {
		return nil
	}

	rarity := ctx.Catalog.Rarity(e.Rarity)
	chance := clampFinite(ctx.Difficulty.AffixChance+rarity.AffixChance, 0, 0.95, 0)
	guaranteed := e.Rarity >= 4

	roll := func(p float64) {
		if len(e.Affixes) >= limit {
			return
		}
		if ctx.RNG.Random("enemy.affixChance") >= p {
			return
		}
		if id, ok := pickAffix(e, ctx); ok {
			added = append(added, id)
		}
	}

	if guaranteed {
		if id, ok := pickAffix(e, ctx); ok {
			added = append(added, id)
		}
	} else {
		roll(chance)
	}
	roll(chance * 0.45)
	if limit >= 3 {
		roll(chance * 0.3)
	}
	return added
}

// pickAffix performs a weight-proportional pick among eligible affixes.
func pickAffix(e *Enemy, ctx EncounterContext) (string, bool) {
	if len(e.Affixes) >= AffixCap(e) {
		return "", false
	}
	var eligible []data.AffixDef
	total := 0.0
	for _, def := range ctx.Catalog.Affixes {
		if def.Weight <= 0 || def.MinLevel > e.Level || e.HasAffix(def.ID) {
			continue
		}
		eligible = append(eligible, def)
		total += def.Weight
	}
	if total <= 0 {
		return "", false
	}

	r := ctx.RNG.Random("enemy.affixPick") * total
	chosen := eligible[len(eligible)-1]
	for _, def := range eligible {
		r -= def.Weight
		if r <= 0 {
			chosen = def
			break
		}
	}
	if !applyAffix(e, chosen) {
		return "", false
	}
	return chosen.ID, true
}

// applyAffix records the affix, raises hook magnitudes and scales stats. It is
// a no-op when the affix is already present.
func applyAffix(e *Enemy, def data.AffixDef) bool {
	if def.ID == "" || e.HasAffix(def.ID) {
		return false
	}
	e.Affixes = append(e.Affixes, def.ID)
	mergeHooks(&e.Hooks, def.Hook)
	scaleStats(e, def.Mult)
	return true
}

func mergeHooks(dst *data.AffixHook, src data.AffixHook) {
	dst.VampiricPct = max(dst.VampiricPct, src.VampiricPct)
	dst.ThornsPct = max(dst.ThornsPct, src.ThornsPct)
	dst.HexTurns = max(dst.HexTurns, src.HexTurns)
	dst.HexAtkDown = max(dst.HexAtkDown, src.HexAtkDown)
	dst.HexArmorDown = max(dst.HexArmorDown, src.HexArmorDown)
	dst.HexResDown = max(dst.HexResDown, src.HexResDown)
	dst.FrozenChance = max(dst.FrozenChance, src.FrozenChance)
	dst.FrozenTurns = max(dst.FrozenTurns, src.FrozenTurns)
	dst.FrozenDmgPct = max(dst.FrozenDmgPct, src.FrozenDmgPct)
	dst.BerserkThreshold = max(dst.BerserkThreshold, src.BerserkThreshold)
	dst.BerserkAtkPct = max(dst.BerserkAtkPct, src.BerserkAtkPct)
}

// scaleStats multiplies the enemy's current stats and rewards. HP is refilled
// to the new maximum.
func scaleStats(e *Enemy, m data.StatMultipliers) {
	mul := func(v int, f float64) int {
		return roundInt(float64(v) * finiteNumber(f, 1))
	}
	e.MaxHP = max(1, mul(e.MaxHP, m.HP))
	e.HP = e.MaxHP
	e.Attack = mul(e.Attack, m.Attack)
	e.BaseAttack = mul(e.BaseAttack, m.Attack)
	e.Magic = mul(e.Magic, m.Magic)
	e.BaseMagic = mul(e.BaseMagic, m.Magic)
	e.Armor = mul(e.Armor, m.Armor)
	e.MagicRes = mul(e.MagicRes, m.Resist)
	e.XP = mul(e.XP, m.XP)
	e.GoldMin = mul(e.GoldMin, m.Gold)
	e.GoldMax = mul(e.GoldMax, m.Gold)
	fixRewards(e)
}

// SquishForGroup scales durability and offense for multi-enemy groups.
func SquishForGroup(e *Enemy, size int) {
	var hp, off float64
	switch {
	case size == 2:
		hp, off = 0.78, 0.92
	case size >= 3:
		hp, off = 0.66, 0.88
	default:
		return
	}
	e.MaxHP = max(1, roundInt(float64(e.MaxHP)*hp))
	e.HP = e.MaxHP
	e.Attack = roundInt(float64(e.Attack) * off)
	e.BaseAttack = roundInt(float64(e.BaseAttack) * off)
	e.Magic = roundInt(float64(e.Magic) * off)
	e.BaseMagic = roundInt(float64(e.BaseMagic) * off)
}
