package rules

import (
	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/engine"
)

// EnemyVars converts an enemy into the map bound to the enemy variable.
func EnemyVars(e *engine.Enemy) map[string]any {
	if e == nil {
		return map[string]any{}
	}
	return map[string]any{
		"id":          e.ID,
		"name":        e.Name,
		"level":       e.Level,
		"hp":          e.HP,
		"maxHp":       e.MaxHP,
		"hpRatio":     e.HPRatio(),
		"attack":      e.Attack,
		"magic":       e.Magic,
		"isBoss":      e.IsBoss,
		"isElite":     e.IsElite,
		"rarity":      e.Rarity,
		"affixes":     e.Affixes,
		"element":     e.Element,
		"guardTurns":  e.GuardTurns,
		"enrageTurns": e.EnrageTurns,
		"posture":     e.Posture,
		"postureMax":  e.PostureMax,
		"behavior":    e.Behavior,
	}
}

// PlayerVars converts the player into the map bound to the player variable.
func PlayerVars(p *engine.Player) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	statuses := make([]string, 0, len(p.StatusEffects))
	for _, s := range p.StatusEffects {
		statuses = append(statuses, s.ID)
	}
	return map[string]any{
		"level":      p.Level,
		"hp":         p.HP,
		"maxHp":      p.MaxHP,
		"hpRatio":    p.HPRatio(),
		"shield":     p.Status.Shield,
		"chilled":    p.Status.ChilledTurns > 0,
		"bleeding":   p.Status.BleedTurns > 0,
		"vulnerable": p.Status.VulnerableTurns > 0,
		"statuses":   statuses,
	}
}

// AbilityVars exposes the ability being gated.
func AbilityVars(def data.AbilityDef) map[string]any {
	return map[string]any{
		"id":       def.ID,
		"kind":     string(def.Kind),
		"cooldown": def.Cooldown,
	}
}
