package engine

import (
	"errors"
	"fmt"

	"github.com/suderio/draconic-arena/internal/data"
)

// ErrUnknownStatus is returned for status ids missing from the table.
var ErrUnknownStatus = errors.New("unknown status effect")

// ApplyStatusEffect adds or refreshes a stackable status on the player.
// Stacks are capped by the table and duration never shortens.
func ApplyStatusEffect(p *Player, app data.StatusApplication, cat *data.Catalog) error {
	def, ok := cat.StatusEffect(app.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStatus, app.ID)
	}
	stacks := max(1, app.Stacks)
	dur := app.Duration
	if dur <= 0 {
		dur = def.Duration
	}
	for i := range p.StatusEffects {
		rec := &p.StatusEffects[i]
		if rec.ID != def.ID {
			continue
		}
		rec.Stacks = min(def.MaxStacks, rec.Stacks+stacks)
		rec.Duration = max(rec.Duration, dur)
		return nil
	}
	p.StatusEffects = append(p.StatusEffects, StatusRecord{
		ID:       def.ID,
		Stacks:   min(def.MaxStacks, stacks),
		Duration: dur,
	})
	return nil
}

// HasStatus reports whether the player carries the status id.
func (p *Player) HasStatus(id string) bool {
	for _, rec := range p.StatusEffects {
		if rec.ID == id && rec.Duration > 0 {
			return true
		}
	}
	return false
}

func (p *Player) pruneStatus() {
	kept := p.StatusEffects[:0]
	for _, rec := range p.StatusEffects {
		if rec.Duration > 0 {
			kept = append(kept, rec)
		}
	}
	p.StatusEffects = kept
}

// StatusDamageTaken is the incoming damage multiplier from status records.
func StatusDamageTaken(p *Player, cat *data.Catalog) float64 {
	m := 1.0
	for _, rec := range p.StatusEffects {
		if def, ok := cat.StatusEffect(rec.ID); ok {
			m += def.DamageTakenPct * float64(rec.Stacks)
		}
	}
	if p.Status.VulnerableTurns > 0 {
		m += 0.15
	}
	return clampFinite(m, 0.1, 3, 1)
}

// StatusDamageDealt is the outgoing damage multiplier from status records and chill.
func StatusDamageDealt(p *Player, cat *data.Catalog) float64 {
	m := 1.0
	for _, rec := range p.StatusEffects {
		if def, ok := cat.StatusEffect(rec.ID); ok {
			m += def.DamageDealtPct * float64(rec.Stacks)
		}
	}
	if p.Status.ChilledTurns > 0 {
		m -= p.Status.ChilledDmgPct
	}
	return clampFinite(m, 0.1, 3, 1)
}

// StatusTick is what one start-of-turn status pass did to the player.
type StatusTick struct {
	Damage  int      `json:"damage"`
	Expired []string `json:"expired,omitempty"`
}

// TickPlayerStatus deals damage over time, then counts every timer down and
// drops what expired.
func TickPlayerStatus(p *Player, cat *data.Catalog) StatusTick {
	var res StatusTick
	dot := 0
	for i := range p.StatusEffects {
		rec := &p.StatusEffects[i]
		if def, ok := cat.StatusEffect(rec.ID); ok && def.Kind == data.StatusDamageOverTime {
			dot += def.TickDamage * rec.Stacks
		}
		rec.Duration--
		if rec.Duration <= 0 {
			res.Expired = append(res.Expired, rec.ID)
		}
	}
	p.pruneStatus()

	s := &p.Status
	if s.BleedTurns > 0 {
		dot += s.BleedDamage
	}
	res.Damage = p.TakeDamage(dot)

	if tick(&s.BleedTurns) {
		s.BleedDamage = 0
		res.Expired = append(res.Expired, "bleed")
	}
	for _, d := range []struct {
		name string
		ref  *Debuff
	}{{"atkDown", &s.AtkDown}, {"armorDown", &s.ArmorDown}, {"magicResDown", &s.MagicResDown}} {
		if tick(&d.ref.Turns) {
			d.ref.Amount = 0
			res.Expired = append(res.Expired, d.name)
		}
	}
	if tick(&s.ChilledTurns) {
		s.ChilledDmgPct = 0
		res.Expired = append(res.Expired, "chilled")
	}
	if tick(&s.ShieldTurns) {
		s.Shield = 0
		res.Expired = append(res.Expired, "shield")
	}
	if tick(&s.VulnerableTurns) {
		res.Expired = append(res.Expired, "vulnerable")
	}
	return res
}
