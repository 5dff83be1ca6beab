package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suderio/draconic-arena/internal/data"
)

func TestTickEnemyStartOfTurn(t *testing.T) {
	cat := data.MustDefault()

	t.Run("cooldowns and timers count down", func(t *testing.T) {
		e := spawn(t, cat, "bandit_brute")
		e.AbilityCooldowns["heavy_blow"] = 2
		e.AbilityCooldowns["guard"] = 0
		e.GuardTurns, e.GuardArmorBonus = 1, 6
		e.EnrageTurns, e.EnrageAtkPct = 2, 0.3

		assert.Equal(t, TurnGate{}, TickEnemyStartOfTurn(e))
		assert.Equal(t, 1, e.AbilityCooldowns["heavy_blow"])
		assert.Zero(t, e.AbilityCooldowns["guard"])
		assert.Zero(t, e.GuardTurns)
		assert.Zero(t, e.GuardArmorBonus)
		assert.Equal(t, 1, e.EnrageTurns)
		assert.Equal(t, 0.3, e.EnrageAtkPct)
	})

	t.Run("attack down restores the base", func(t *testing.T) {
		e := spawn(t, cat, "bandit_brute")
		ApplyEnemyAttackDown(e, 5, 1)
		assert.Equal(t, 7, e.Attack)
		TickEnemyStartOfTurn(e)
		assert.Equal(t, 12, e.Attack)
		assert.Zero(t, e.AtkDownFlat)
	})

	t.Run("stun beats broken", func(t *testing.T) {
		e := spawn(t, cat, "bandit_brute")
		e.StunTurns, e.BrokenTurns = 1, 1
		assert.Equal(t, "stunned", TickEnemyStartOfTurn(e).Reason)
		assert.Equal(t, "broken", TickEnemyStartOfTurn(e).Reason)
		assert.False(t, TickEnemyStartOfTurn(e).Skip)
	})

	t.Run("forced guard", func(t *testing.T) {
		e := spawn(t, cat, "bandit_brute")
		e.ForcedGuardTurns = 1
		gate := TickEnemyStartOfTurn(e)
		assert.True(t, gate.Skip)
		assert.Equal(t, "guarding", gate.Reason)
		assert.Equal(t, 1, e.GuardTurns)
		assert.Equal(t, e.Armor+4, e.EffectiveArmor())
	})

	t.Run("nil enemy", func(t *testing.T) {
		assert.True(t, TickEnemyStartOfTurn(nil).Skip)
	})
}
