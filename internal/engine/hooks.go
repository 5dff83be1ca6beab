package engine

import (
	"github.com/suderio/draconic-arena/internal/rng"
)

// HookKind names the effect an affix hook produced.
type HookKind string

const (
	HookHeal    HookKind = "heal"
	HookReflect HookKind = "reflect"
	HookHex     HookKind = "hex"
	HookChill   HookKind = "chill"
	HookBerserk HookKind = "berserk"
)

// HookEffect reports one affix hook that fired.
type HookEffect struct {
	Affix  string   `json:"affix"`
	Kind   HookKind `json:"kind"`
	Amount int      `json:"amount,omitempty"`
	Turns  int      `json:"turns,omitempty"`
}

// OnEnemyHitPlayer runs the hooks installed for when e lands damage on p.
func OnEnemyHitPlayer(e *Enemy, p *Player, damage int, r rng.Stream) []HookEffect {
	if e == nil || p == nil || damage <= 0 {
		return nil
	}
	var out []HookEffect
	h := e.Hooks

	if h.VampiricPct > 0 && e.Alive() {
		heal := max(1, roundInt(float64(damage)*h.VampiricPct))
		before := e.HP
		e.HP = min(e.MaxHP, e.HP+heal)
		out = append(out, HookEffect{Affix: "vampiric", Kind: HookHeal, Amount: e.HP - before})
	}

	if h.HexTurns > 0 {
		s := &p.Status
		s.AtkDown = raiseDebuff(s.AtkDown, h.HexAtkDown, h.HexTurns)
		s.ArmorDown = raiseDebuff(s.ArmorDown, h.HexArmorDown, h.HexTurns)
		s.MagicResDown = raiseDebuff(s.MagicResDown, h.HexResDown, h.HexTurns)
		out = append(out, HookEffect{Affix: "hexed", Kind: HookHex, Turns: h.HexTurns})
	}

	if h.FrozenChance > 0 && r != nil && r.Random("affix.frozen") < h.FrozenChance {
		p.Status.ChilledTurns = max(p.Status.ChilledTurns, h.FrozenTurns)
		p.Status.ChilledDmgPct = max(p.Status.ChilledDmgPct, h.FrozenDmgPct)
		out = append(out, HookEffect{Affix: "frozen", Kind: HookChill, Turns: h.FrozenTurns})
	}
	return out
}

// OnPlayerHitEnemy runs the hooks installed for when p damages e.
func OnPlayerHitEnemy(e *Enemy, p *Player, damage int) []HookEffect {
	if e == nil || p == nil || damage <= 0 {
		return nil
	}
	var out []HookEffect
	h := e.Hooks

	if h.ThornsPct > 0 {
		back := max(1, roundInt(float64(damage)*h.ThornsPct))
		taken := p.TakeDamage(back)
		out = append(out, HookEffect{Affix: "thorns", Kind: HookReflect, Amount: taken})
	}

	if h.BerserkThreshold > 0 && !e.AffixBerserkActive && e.Alive() && e.HPRatio() <= h.BerserkThreshold {
		e.AffixBerserkActive = true
		out = append(out, HookEffect{Affix: "berserker", Kind: HookBerserk})
	}
	return out
}

func raiseDebuff(d Debuff, amount, turns int) Debuff {
	if amount <= 0 {
		return d
	}
	return Debuff{Amount: max(d.Amount, amount), Turns: max(d.Turns, turns)}
}
