package engine

// TurnGate tells the enemy phase whether the enemy acts this turn.
type TurnGate struct {
	Skip   bool
	Reason string
}

// TickEnemyStartOfTurn decrements cooldowns and timers, expires their
// magnitudes and reports whether stun, break or a forced guard consumes the turn.
func TickEnemyStartOfTurn(e *Enemy) TurnGate {
	if e == nil {
		return TurnGate{Skip: true, Reason: "missing"}
	}
	for id, cd := range e.AbilityCooldowns {
		if cd > 0 {
			e.AbilityCooldowns[id] = cd - 1
		}
	}

	if tick(&e.GuardTurns) {
		e.GuardArmorBonus = 0
	}
	if tick(&e.EnrageTurns) {
		e.EnrageAtkPct = 0
	}
	if tick(&e.AtkDownTurns) {
		e.AtkDownFlat = 0
		e.Attack = e.BaseAttack
	}
	if tick(&e.MagDownTurns) {
		e.MagDownFlat = 0
		e.Magic = e.BaseMagic
	}
	if tick(&e.ChilledTurns) {
		e.ChilledDmgPct = 0
	}
	if tick(&e.MarkedTurns) {
		e.MarkedDmgPct = 0
	}

	switch {
	case e.StunTurns > 0:
		e.StunTurns--
		return TurnGate{Skip: true, Reason: "stunned"}
	case e.BrokenTurns > 0:
		e.BrokenTurns--
		e.Intent = nil
		return TurnGate{Skip: true, Reason: "broken"}
	case e.ForcedGuardTurns > 0:
		e.ForcedGuardTurns--
		e.GuardTurns = max(e.GuardTurns, 1)
		e.GuardArmorBonus = max(e.GuardArmorBonus, 2+e.Level/2)
		return TurnGate{Skip: true, Reason: "guarding"}
	}
	return TurnGate{}
}

// tick decrements a positive timer and reports whether it just expired.
func tick(t *int) bool {
	if *t <= 0 {
		*t = 0
		return false
	}
	*t--
	return *t == 0
}

// ApplyEnemyAttackDown lowers attack against the base shadow for turns.
func ApplyEnemyAttackDown(e *Enemy, flat, turns int) {
	if flat <= 0 || turns <= 0 {
		return
	}
	e.AtkDownFlat = max(e.AtkDownFlat, flat)
	e.AtkDownTurns = max(e.AtkDownTurns, turns)
	e.Attack = nonNegative(e.BaseAttack - e.AtkDownFlat)
}

// ApplyEnemyMagicDown lowers magic against the base shadow for turns.
func ApplyEnemyMagicDown(e *Enemy, flat, turns int) {
	if flat <= 0 || turns <= 0 {
		return
	}
	e.MagDownFlat = max(e.MagDownFlat, flat)
	e.MagDownTurns = max(e.MagDownTurns, turns)
	e.Magic = nonNegative(e.BaseMagic - e.MagDownFlat)
}
