package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/rng"
)

func encounter(cat *data.Catalog, r rng.Stream, diff, area string) EncounterContext {
	return EncounterContext{
		Catalog:    cat,
		RNG:        r,
		Difficulty: cat.Difficulty(diff),
		Area:       cat.Area(area),
	}
}

func TestForcedVampiricEndToEnd(t *testing.T) {
	cat := data.MustDefault()
	e := spawn(t, cat, "marsh_grunt")
	require.Equal(t, 100, e.MaxHP)

	ctx := encounter(cat, rng.NewScripted(), "normal", "wildwood")
	added := ApplyEnemyAffixes(e, AffixOptions{Force: []string{"vampiric"}}, ctx)

	assert.Equal(t, []string{"vampiric"}, added)
	assert.Equal(t, []string{"vampiric"}, e.Affixes)
	assert.Equal(t, 108, e.MaxHP)
	assert.Equal(t, 108, e.HP)
	assert.Equal(t, "Vampiric Marsh Grunt", e.Name)
	assert.InDelta(t, 0.18, e.Hooks.VampiricPct, 1e-9)

	p := NewPlayer("hero", 5)
	hit := ResolvePlayerHit(p, e, PlayerHeavy, false, cat)
	require.Positive(t, hit.Damage)
	wounded := e.HP

	effects := OnEnemyHitPlayer(e, p, 50, rng.NewScripted())
	require.Len(t, effects, 1)
	assert.Equal(t, HookHeal, effects[0].Kind)
	assert.Equal(t, 9, effects[0].Amount)
	assert.Equal(t, wounded+9, e.HP)
}

func TestAffixesStayUniqueAndCapped(t *testing.T) {
	cat := data.MustDefault()

	t.Run("forced duplicates", func(t *testing.T) {
		e := spawn(t, cat, "bandit_brute")
		ctx := encounter(cat, rng.NewScripted(), "normal", "wildwood")
		ApplyEnemyAffixes(e, AffixOptions{Force: []string{"thorns", "thorns", "nope", "frozen", "berserker"}}, ctx)
		assert.Equal(t, []string{"thorns", "frozen"}, e.Affixes)

		hp := e.MaxHP
		ApplyEnemyAffixes(e, AffixOptions{Force: []string{"thorns"}}, ctx)
		assert.Equal(t, hp, e.MaxHP, "re-forcing an applied affix is a no-op")
	})

	t.Run("cap bonus", func(t *testing.T) {
		e := spawn(t, cat, "bandit_brute")
		e.AffixCapBonus = 5
		ctx := encounter(cat, rng.NewScripted(), "normal", "wildwood")
		ApplyEnemyAffixes(e, AffixOptions{Force: []string{"thorns", "frozen", "berserker", "vampiric"}}, ctx)
		assert.Len(t, e.Affixes, MaxAffixes)
	})

	t.Run("random rolls", func(t *testing.T) {
		for seed := uint64(1); seed <= 300; seed++ {
			e := spawn(t, cat, "stone_sentinel")
			ctx := encounter(cat, rng.NewSeeded(seed), "hard", "frostpeak")
			ApplyRarity(e, ctx.Difficulty, ctx)
			for i := 0; i < 4; i++ {
				ApplyEnemyAffixes(e, AffixOptions{}, ctx)
			}
			assert.LessOrEqual(t, len(e.Affixes), AffixCap(e))
			seen := map[string]bool{}
			for _, id := range e.Affixes {
				assert.False(t, seen[id], "duplicate affix %s with seed %d", id, seed)
				seen[id] = true
			}
		}
	})
}

func TestAffixRollGating(t *testing.T) {
	cat := data.MustDefault()

	t.Run("easy rolls none", func(t *testing.T) {
		e := spawn(t, cat, "bandit_brute")
		r := rng.NewScripted(0, 0, 0, 0, 0, 0)
		assert.Empty(t, ApplyEnemyAffixes(e, AffixOptions{}, encounter(cat, r, "easy", "wildwood")))
		assert.Empty(t, r.Tags)
	})

	t.Run("tutorial rolls none", func(t *testing.T) {
		e := spawn(t, cat, "goblin_raider")
		r := rng.NewScripted(0, 0, 0, 0)
		assert.Empty(t, ApplyEnemyAffixes(e, AffixOptions{}, encounter(cat, r, "hard", "village")))
	})

	t.Run("forced ignores gates", func(t *testing.T) {
		e := spawn(t, cat, "goblin_raider")
		added := ApplyEnemyAffixes(e, AffixOptions{Force: []string{"vampiric"}}, encounter(cat, rng.NewScripted(), "easy", "village"))
		assert.Equal(t, []string{"vampiric"}, added)
	})

	t.Run("high tier guarantees one", func(t *testing.T) {
		e := spawn(t, cat, "bandit_brute")
		e.Rarity = 4
		r := rng.NewScripted(0.0)
		added := ApplyEnemyAffixes(e, AffixOptions{}, encounter(cat, r, "normal", "wildwood"))
		require.Len(t, added, 1)
		assert.Equal(t, "vampiric", added[0], "the first eligible affix wins a zero draw")
		assert.Equal(t, []string{"enemy.affixPick", "enemy.affixChance"}, r.Tags)
	})

	t.Run("weighted walk respects min level", func(t *testing.T) {
		e := spawn(t, cat, "goblin_raider")
		r := rng.NewScripted(0.0, 0.999)
		added := ApplyEnemyAffixes(e, AffixOptions{}, encounter(cat, r, "normal", "wildwood"))
		require.Len(t, added, 1)
		assert.Equal(t, "frozen", added[0], "level 2 cannot roll hexed, berserker or juggernaut")
	})
}

func TestRewardIntegrityAcrossModifiers(t *testing.T) {
	cat := data.MustDefault()
	for seed := uint64(1); seed <= 200; seed++ {
		for _, id := range []string{"training_dummy", "goblin_raider", "ember_imp", "void_wyrm"} {
			e := spawn(t, cat, id)
			ctx := encounter(cat, rng.NewSeeded(seed), "hard", "wildwood")
			ctx.ForceElite = seed%2 == 0
			ApplyEliteModifiers(e, ctx.Difficulty, ctx)
			ApplyRarity(e, ctx.Difficulty, ctx)
			ApplyEnemyAffixes(e, AffixOptions{}, ctx)
			SquishForGroup(e, int(seed%3)+1)

			assert.GreaterOrEqual(t, e.XP, 1)
			assert.GreaterOrEqual(t, e.GoldMin, 0)
			assert.GreaterOrEqual(t, e.GoldMax, e.GoldMin)
			assert.GreaterOrEqual(t, e.Posture, 0)
			assert.LessOrEqual(t, e.Posture, e.PostureMax)
		}
	}
}

func TestEliteModifiers(t *testing.T) {
	cat := data.MustDefault()

	t.Run("bosses are never elite", func(t *testing.T) {
		e := spawn(t, cat, "void_wyrm")
		ctx := encounter(cat, rng.NewScripted(0), "hard", "void_rift")
		ctx.ForceElite = true
		assert.False(t, ApplyEliteModifiers(e, ctx.Difficulty, ctx))
	})

	t.Run("tutorial area is skipped", func(t *testing.T) {
		e := spawn(t, cat, "goblin_raider")
		r := rng.NewScripted(0)
		assert.False(t, ApplyEliteModifiers(e, cat.Difficulty("hard"), encounter(cat, r, "hard", "village")))
		assert.Empty(t, r.Tags)
	})

	t.Run("scales current stats", func(t *testing.T) {
		e := spawn(t, cat, "marsh_grunt")
		r := rng.NewScripted(0.0, 0.0)
		ok := ApplyEliteModifiers(e, cat.Difficulty("normal"), encounter(cat, r, "normal", "wildwood"))
		require.True(t, ok)
		assert.Equal(t, []string{"enemy.elite", "enemy.eliteArchetype"}, r.Tags)
		assert.Equal(t, "brute", e.EliteAffix)
		assert.Equal(t, 145, e.MaxHP)
		assert.Equal(t, 13, e.Attack)
		assert.Equal(t, 13, e.BaseAttack)
		assert.Equal(t, "Brute Marsh Grunt", e.Name)
		assert.Equal(t, 77, e.PostureMax)
	})

	t.Run("failed roll", func(t *testing.T) {
		e := spawn(t, cat, "marsh_grunt")
		assert.False(t, ApplyEliteModifiers(e, cat.Difficulty("normal"), encounter(cat, rng.NewScripted(0.5), "normal", "wildwood")))
		assert.Equal(t, 100, e.MaxHP)
	})
}

func TestApplyRarity(t *testing.T) {
	cat := data.MustDefault()

	boss := spawn(t, cat, "void_wyrm")
	r := rng.NewScripted()
	assert.Equal(t, cat.MaxRarity(), ApplyRarity(boss, cat.Difficulty("easy"), encounter(cat, r, "easy", "void_rift")))
	assert.Empty(t, r.Tags, "bosses do not roll rarity")
	assert.Equal(t, 2.0, boss.DropMult)
	assert.Equal(t, 1, boss.AffixCapBonus)

	hp := boss.MaxHP
	ApplyRarity(boss, cat.Difficulty("easy"), encounter(cat, r, "easy", "void_rift"))
	assert.Equal(t, hp, boss.MaxHP, "rarity applies once")

	e := spawn(t, cat, "marsh_grunt")
	tier := ApplyRarity(e, cat.Difficulty("normal"), encounter(cat, rng.NewScripted(0.7), "normal", "wildwood"))
	assert.Equal(t, 2, tier)
	assert.Equal(t, 105, e.MaxHP)
}
