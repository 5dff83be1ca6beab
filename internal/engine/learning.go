package engine

import "math"

const (
	learningRate     = 0.18
	explorationDecay = 0.996
)

// RecordAbilityOutcome folds reward into the EMA of id and decays exploration.
// It is the only place learned values change.
func RecordAbilityOutcome(e *Enemy, id string, reward float64) {
	if e == nil || id == "" {
		return
	}
	if e.Memory.AbilityStats == nil {
		e.Memory.AbilityStats = map[string]AbilityStat{}
	}
	reward = finiteNumber(reward, 0)
	st := e.Memory.AbilityStats[id]
	st.Value = st.Value*(1-learningRate) + reward*learningRate
	st.Uses++
	e.Memory.AbilityStats[id] = st

	e.Memory.Exploration = clampFinite(e.Memory.Exploration*explorationDecay, explorationFloor, explorationCeil, explorationFloor)
}

// RecordCategoryOutcome is RecordAbilityOutcome for an action category.
func RecordCategoryOutcome(e *Enemy, c ActionCategory, reward float64) {
	RecordAbilityOutcome(e, categoryKey(c), reward)
}

// RewardForOutcome turns a resolved ability into the scalar fed to learning.
// Damage and healing are scored relative to the max HP they came from.
func RewardForOutcome(o AbilityOutcome) float64 {
	var r float64
	if o.TargetMaxHP > 0 {
		r += float64(o.Damage) / float64(o.TargetMaxHP) * 100
	}
	if o.SelfMaxHP > 0 {
		r += float64(o.Healed) / float64(o.SelfMaxHP) * 60
	}
	if o.Killed {
		r += 50
	}
	if o.Buffed {
		r += 6
	}
	if len(o.Applied) > 0 {
		r += 3 * float64(len(o.Applied))
	}
	if o.Wasted {
		r -= 5
	}
	return math.Round(r*100) / 100
}
