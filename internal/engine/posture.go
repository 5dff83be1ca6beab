package engine

import "math"

// HitMeta describes the player hit that produced posture damage.
type HitMeta struct {
	Basic     bool
	Crit      bool
	Interrupt bool
}

// PostureResult reports the outcome of one posture application.
type PostureResult struct {
	Gain    int  `json:"gain"`
	Broken  bool `json:"broken"`
	Posture int  `json:"posture"`
}

// ApplyEnemyPostureFromPlayerHit adds stagger for a hit that dealt damage HP.
// When the bar fills it resets to 0 and the enemy loses its next action.
func ApplyEnemyPostureFromPlayerHit(e *Enemy, damage int, meta HitMeta) PostureResult {
	if e == nil || damage <= 0 {
		return PostureResult{}
	}
	if e.PostureMax <= 0 {
		e.PostureMax = PostureMaxFor(e.Level, e.IsElite, e.IsBoss)
	}

	gain := math.Max(1, math.Round(float64(damage)*0.25))
	if meta.Basic {
		gain++
	}
	if meta.Crit {
		gain *= 1.5
	}
	if meta.Interrupt {
		gain += 2
	}
	if e.IsBoss {
		gain *= 0.75
	}
	if e.IsElite {
		gain *= 0.85
	}
	g := max(1, roundInt(gain))

	if e.PostureMax <= 10 {
		g = e.PostureMax
	} else {
		g = min(g, max(1, roundInt(float64(e.PostureMax)*0.35)))
	}

	e.Posture = nonNegative(e.Posture) + g
	res := PostureResult{Gain: g}
	if e.Posture >= e.PostureMax {
		e.Posture = 0
		e.BrokenTurns = max(e.BrokenTurns, 1)
		e.Intent = nil
		res.Broken = true
	}
	res.Posture = e.Posture
	return res
}
