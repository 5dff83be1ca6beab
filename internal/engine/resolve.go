package engine

import (
	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/rng"
)

// AbilityOutcome is what one enemy ability did. It feeds the combat log and
// the learning update.
type AbilityOutcome struct {
	EnemyID     string           `json:"enemyId"`
	AbilityID   string           `json:"abilityId"`
	Name        string           `json:"name"`
	Kind        data.AbilityKind `json:"kind"`
	Damage      int              `json:"damage"`
	Absorbed    int              `json:"absorbed"`
	Healed      int              `json:"healed"`
	Buffed      bool             `json:"buffed"`
	Applied     []string         `json:"applied,omitempty"`
	Hooks       []HookEffect     `json:"hooks,omitempty"`
	Telegraphed bool             `json:"telegraphed"`
	Wasted      bool             `json:"wasted"`
	Killed      bool             `json:"killed"`
	TargetMaxHP int              `json:"-"`
	SelfMaxHP   int              `json:"-"`
}

// ResolveEnemyAbility carries out ability id from e against p. A telegraphed
// ability first sets the enemy's intent and resolves on its next action.
func ResolveEnemyAbility(e *Enemy, p *Player, id string, cat *data.Catalog, r rng.Stream) AbilityOutcome {
	def, ok := cat.Ability(id)
	if !ok {
		def, _ = cat.Ability(data.BasicStrike)
	}
	out := AbilityOutcome{
		EnemyID:     e.ID,
		AbilityID:   def.ID,
		Name:        def.Name,
		Kind:        def.Kind,
		TargetMaxHP: p.MaxHP,
		SelfMaxHP:   e.MaxHP,
	}

	if def.Telegraph && (e.Intent == nil || e.Intent.AbilityID != def.ID) {
		e.Intent = &Intent{AbilityID: def.ID, Name: def.Name}
		out.Telegraphed = true
		return out
	}
	e.Intent = nil
	if def.Cooldown > 0 {
		if e.AbilityCooldowns == nil {
			e.AbilityCooldowns = map[string]int{}
		}
		e.AbilityCooldowns[def.ID] = def.Cooldown
	}

	switch def.Kind {
	case data.KindDamage:
		resolveDamage(e, p, def, cat, r, &out)
	case data.KindGuard:
		e.GuardTurns = max(e.GuardTurns, def.Guard.Turns)
		e.GuardArmorBonus = max(e.GuardArmorBonus, def.Guard.ArmorBonus)
		out.Buffed = true
	case data.KindBuff:
		out.Wasted = e.EnrageTurns > 0
		e.EnrageTurns = max(e.EnrageTurns, def.Buff.EnrageTurns)
		e.EnrageAtkPct = max(e.EnrageAtkPct, def.Buff.AtkPct)
		out.Buffed = true
	case data.KindDebuff:
		s := &p.Status
		s.AtkDown = raiseDebuff(s.AtkDown, def.Debuff.AtkDown, def.Debuff.Turns)
		s.ArmorDown = raiseDebuff(s.ArmorDown, def.Debuff.ArmorDown, def.Debuff.Turns)
		s.MagicResDown = raiseDebuff(s.MagicResDown, def.Debuff.MagicResDown, def.Debuff.Turns)
		out.Buffed = true
	case data.KindHeal:
		before := e.HP
		e.HP = min(e.MaxHP, e.HP+max(1, roundInt(float64(e.MaxHP)*def.Heal.Pct)))
		out.Healed = e.HP - before
		out.Wasted = out.Healed == 0
	}

	if def.Kind != data.KindDamage || out.Damage > 0 {
		for _, app := range def.Applies {
			if ApplyStatusEffect(p, app, cat) == nil {
				out.Applied = append(out.Applied, app.ID)
			}
		}
	}
	out.Killed = !p.Alive()
	return out
}

func resolveDamage(e *Enemy, p *Player, def data.AbilityDef, cat *data.Catalog, r rng.Stream, out *AbilityOutcome) {
	pl := def.Damage
	defense := p.EffectiveArmor()
	if pl.Stat == "magic" {
		defense = p.EffectiveMagicRes()
	}
	raw := EstimateDamage(e, p, def)*StatusDamageTaken(p, cat) - float64(defense)*0.5
	dmg := max(1, roundInt(raw))

	s := &p.Status
	if pl.ShieldShatter && s.Shield > 0 {
		s.Shield, s.ShieldTurns = 0, 0
	}
	if s.Shield > 0 {
		absorbed := min(s.Shield, dmg)
		s.Shield -= absorbed
		dmg -= absorbed
		out.Absorbed = absorbed
	}
	out.Damage = p.TakeDamage(dmg)

	if out.Damage > 0 {
		if pl.BleedTurns > 0 {
			s.BleedTurns = max(s.BleedTurns, pl.BleedTurns)
			s.BleedDamage = max(s.BleedDamage, max(1, roundInt(float64(out.Damage)*pl.BleedPct)))
		}
		if pl.VulnerableTurns > 0 {
			s.VulnerableTurns = max(s.VulnerableTurns, pl.VulnerableTurns)
		}
		out.Hooks = OnEnemyHitPlayer(e, p, out.Damage, r)
	}
	out.Wasted = out.Damage == 0 && out.Absorbed == 0
}

// PlayerAction is a player combat command.
type PlayerAction string

const (
	PlayerBasic     PlayerAction = "attack"
	PlayerHeavy     PlayerAction = "heavy"
	PlayerInterrupt PlayerAction = "interrupt"
	PlayerSpell     PlayerAction = "spell"
	PlayerCurse     PlayerAction = "curse"
	PlayerSweep     PlayerAction = "sweep"
)

type actionProfile struct {
	mult  float64
	magic bool
}

var actionProfiles = map[PlayerAction]actionProfile{
	PlayerBasic:     {mult: 1.0},
	PlayerHeavy:     {mult: 1.6},
	PlayerInterrupt: {mult: 0.7},
	PlayerSpell:     {mult: 1.2, magic: true},
	PlayerCurse:     {mult: 0.5, magic: true},
	PlayerSweep:     {mult: 0.6},
}

// ValidAction reports whether a is a known player action.
func ValidAction(a PlayerAction) bool {
	_, ok := actionProfiles[a]
	return ok
}

const critMultiplier = 1.75

// SpellElement is the element of the player's spells.
const SpellElement = "arcane"

// PlayerHit is the outcome of one player hit on one enemy.
type PlayerHit struct {
	EnemyID     string        `json:"enemyId"`
	Action      PlayerAction  `json:"action"`
	Damage      int           `json:"damage"`
	Crit        bool          `json:"crit"`
	Posture     PostureResult `json:"posture"`
	Hooks       []HookEffect  `json:"hooks,omitempty"`
	Interrupted bool          `json:"interrupted"`
	Killed      bool          `json:"killed"`
}

// ResolvePlayerHit applies action from p to e. The crit roll is made once per
// action by the caller.
func ResolvePlayerHit(p *Player, e *Enemy, action PlayerAction, crit bool, cat *data.Catalog) PlayerHit {
	prof, ok := actionProfiles[action]
	if !ok {
		action, prof = PlayerBasic, actionProfiles[PlayerBasic]
	}
	hit := PlayerHit{EnemyID: e.ID, Action: action, Crit: crit}
	p.LastHitCrit = crit

	stat, defense := float64(p.EffectiveAttack()), float64(e.EffectiveArmor())
	if prof.magic {
		stat, defense = float64(p.Magic), float64(e.MagicRes)
	}
	raw := stat * prof.mult * StatusDamageDealt(p, cat)
	if crit {
		raw *= critMultiplier
	}
	if e.MarkedTurns > 0 {
		raw *= 1 + e.MarkedDmgPct
	}
	if prof.magic {
		if m, ok := e.ResistMult[SpellElement]; ok {
			raw *= clampFinite(m, 0, 3, 1)
		}
		raw *= 1 - clampFinite(e.ResistFlat[SpellElement], 0, 0.9, 0)
	}
	dmg := max(1, roundInt(raw-defense*0.5))
	before := e.HP
	e.HP = max(0, e.HP-dmg)
	hit.Damage = before - e.HP

	switch action {
	case PlayerHeavy:
		e.MarkedTurns = max(e.MarkedTurns, 2)
		e.MarkedDmgPct = max(e.MarkedDmgPct, 0.15)
	case PlayerInterrupt:
		if e.Intent != nil {
			e.Intent = nil
			e.StunTurns = max(e.StunTurns, 1)
			hit.Interrupted = true
		}
	case PlayerSpell:
		e.ChilledTurns = max(e.ChilledTurns, 2)
		e.ChilledDmgPct = max(e.ChilledDmgPct, 0.15)
	case PlayerCurse:
		ApplyEnemyAttackDown(e, 2+p.Level/3, 3)
		ApplyEnemyMagicDown(e, 2+p.Level/3, 3)
	}

	if hit.Damage > 0 {
		hit.Posture = ApplyEnemyPostureFromPlayerHit(e, hit.Damage, HitMeta{
			Basic:     action == PlayerBasic,
			Crit:      crit,
			Interrupt: action == PlayerInterrupt,
		})
		hit.Hooks = OnPlayerHitEnemy(e, p, hit.Damage)
	}
	hit.Killed = !e.Alive()
	return hit
}
