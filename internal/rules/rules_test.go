package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/engine"
)

func TestCELRegistry(t *testing.T) {
	registry, err := NewRegistry(func(tag string) float64 {
		if tag == "rules.mend" {
			return 0.25
		}
		return 0.9
	})
	require.NoError(t, err)

	t.Run("Basic Boolean Expression", func(t *testing.T) {
		out, err := registry.Eval("enemy.level > 3", map[string]any{"enemy": map[string]any{"level": 5}})
		assert.NoError(t, err)
		assert.Equal(t, true, out)
	})

	t.Run("Custom Roll Function", func(t *testing.T) {
		out, err := registry.Eval("roll('mend')", map[string]any{})
		assert.NoError(t, err)
		assert.Equal(t, 0.25, out)
	})

	t.Run("Compile Error", func(t *testing.T) {
		_, err := registry.Eval("enemy.level >", map[string]any{})
		assert.Error(t, err)
	})

	t.Run("Cache", func(t *testing.T) {
		before := len(registry.programs)
		_, err := registry.Compile("player.hp < 10")
		require.NoError(t, err)
		_, err = registry.Compile("player.hp < 10")
		require.NoError(t, err)
		assert.Len(t, registry.programs, before+1)
	})
}

func TestGateAllows(t *testing.T) {
	cat := data.MustDefault()
	reg, err := NewRegistry(nil)
	require.NoError(t, err)
	gate, err := NewGate(reg, cat, nil)
	require.NoError(t, err)

	tpl, err := cat.Template("ember_imp")
	require.NoError(t, err)
	e := engine.NewEnemyFromTemplate("imp-1", tpl)
	require.NoError(t, engine.EnsureEnemyRuntime(e, cat))
	p := engine.NewPlayer("hero", 3)

	mend, _ := cat.Ability("mend")
	assert.False(t, gate.Allows(mend, e, p), "full health imps do not mend")
	e.HP = e.MaxHP / 2
	assert.True(t, gate.Allows(mend, e, p))

	breath, _ := cat.Ability("void_breath")
	assert.False(t, gate.Allows(breath, e, p))

	strike, _ := cat.Ability("strike")
	assert.True(t, gate.Allows(strike, e, p))

	broken := data.AbilityDef{ID: "odd", Requires: "enemy.missing > 1"}
	assert.True(t, gate.Allows(broken, e, p), "runtime errors fail open")
}

func TestNewGateRejectsBadExpressions(t *testing.T) {
	cat := data.MustDefault()
	cat.Abilities["bad"] = data.AbilityDef{ID: "bad", Kind: data.KindHeal, Heal: &data.HealPayload{Pct: 0.1}, Requires: "enemy.hp <"}
	reg, err := NewRegistry(nil)
	require.NoError(t, err)
	_, err = NewGate(reg, cat, nil)
	assert.ErrorContains(t, err, "ability bad")
}

func TestGateFeedsDecisions(t *testing.T) {
	cat := data.MustDefault()
	reg, err := NewRegistry(nil)
	require.NoError(t, err)
	gate, err := NewGate(reg, cat, nil)
	require.NoError(t, err)

	tpl, _ := cat.Template("ember_imp")
	e := engine.NewEnemyFromTemplate("imp-1", tpl)
	require.NoError(t, engine.EnsureEnemyRuntime(e, cat))

	ctx := engine.DecisionContext{Player: engine.NewPlayer("hero", 3), Catalog: cat, Gate: gate, Difficulty: cat.Difficulty("normal")}
	assert.NotContains(t, engine.UsableAbilities(e, ctx), "mend")
}
