package engine

import (
	"errors"
	"fmt"
	"strings"
)

type EventType string

const (
	EventBattleStarted  EventType = "combat:battleStarted"
	EventPlayerAction   EventType = "combat:playerAction"
	EventEnemyAction    EventType = "combat:enemyAction"
	EventPostureBroken  EventType = "combat:postureBroken"
	EventAffixTriggered EventType = "combat:affixTriggered"
	EventPlayerDefeated EventType = "combat:playerDefeated"
	EventEnemyDefeated  EventType = "world:enemyDefeated"
	EventLootDropped    EventType = "world:lootDropped"
	EventBattleEnded    EventType = "world:battleEnded"
)

// Event is a notification the combat core hands to its collaborators.
type Event interface {
	Type() EventType
	Message() string
}

// Emitter receives combat events. A failing emitter never aborts a turn.
type Emitter interface {
	Emit(evt Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event) error

func (f EmitterFunc) Emit(evt Event) error { return f(evt) }

// Bus fans an event out to every listener and joins their errors.
type Bus struct {
	listeners []Emitter
}

// Subscribe adds a listener.
func (b *Bus) Subscribe(l Emitter) {
	b.listeners = append(b.listeners, l)
}

// Emit delivers evt to every listener. A listener that fails or panics does
// not keep the event from the others.
func (b *Bus) Emit(evt Event) error {
	var errs []error
	for _, l := range b.listeners {
		if err := deliver(l, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s listener: %w", evt.Type(), err))
		}
	}
	return errors.Join(errs...)
}

func deliver(l Emitter, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return l.Emit(evt)
}

// BattleStartedEvent opens an encounter.
type BattleStartedEvent struct {
	Enemies    []string `json:"enemies"`
	Names      []string `json:"names"`
	Difficulty string   `json:"difficulty"`
	Area       string   `json:"area"`
}

func (e *BattleStartedEvent) Type() EventType { return EventBattleStarted }
func (e *BattleStartedEvent) Message() string {
	return fmt.Sprintf("Battle started against %s.", strings.Join(e.Names, ", "))
}

// PlayerActionEvent records one player hit.
type PlayerActionEvent struct {
	Hit PlayerHit `json:"hit"`
}

func (e *PlayerActionEvent) Type() EventType { return EventPlayerAction }
func (e *PlayerActionEvent) Message() string {
	crit := ""
	if e.Hit.Crit {
		crit = " Critical!"
	}
	return fmt.Sprintf("You %s %s for %d damage.%s", e.Hit.Action, e.Hit.EnemyID, e.Hit.Damage, crit)
}

// EnemyActionEvent records what an enemy did with its turn.
type EnemyActionEvent struct {
	Outcome    AbilityOutcome `json:"outcome"`
	Skipped    bool           `json:"skipped"`
	SkipReason string         `json:"skipReason,omitempty"`
}

func (e *EnemyActionEvent) Type() EventType { return EventEnemyAction }
func (e *EnemyActionEvent) Message() string {
	o := e.Outcome
	switch {
	case e.Skipped:
		return fmt.Sprintf("%s loses its turn (%s).", o.EnemyID, e.SkipReason)
	case o.Telegraphed:
		return fmt.Sprintf("%s prepares %s!", o.EnemyID, o.Name)
	case o.Damage > 0 || o.Absorbed > 0:
		msg := fmt.Sprintf("%s uses %s for %d damage.", o.EnemyID, o.Name, o.Damage)
		if o.Absorbed > 0 {
			msg += fmt.Sprintf(" Shield absorbs %d.", o.Absorbed)
		}
		return msg
	case o.Healed > 0:
		return fmt.Sprintf("%s uses %s and recovers %d HP.", o.EnemyID, o.Name, o.Healed)
	}
	return fmt.Sprintf("%s uses %s.", o.EnemyID, o.Name)
}

// PostureBrokenEvent reports a posture break.
type PostureBrokenEvent struct {
	EnemyID string `json:"enemyId"`
	Name    string `json:"name"`
}

func (e *PostureBrokenEvent) Type() EventType { return EventPostureBroken }
func (e *PostureBrokenEvent) Message() string {
	return fmt.Sprintf("%s's guard is broken!", e.Name)
}

// AffixTriggeredEvent reports a fired affix hook.
type AffixTriggeredEvent struct {
	EnemyID string     `json:"enemyId"`
	Effect  HookEffect `json:"effect"`
}

func (e *AffixTriggeredEvent) Type() EventType { return EventAffixTriggered }
func (e *AffixTriggeredEvent) Message() string {
	switch e.Effect.Kind {
	case HookHeal:
		return fmt.Sprintf("%s drains %d HP.", e.EnemyID, e.Effect.Amount)
	case HookReflect:
		return fmt.Sprintf("Thorns on %s reflect %d damage.", e.EnemyID, e.Effect.Amount)
	case HookHex:
		return fmt.Sprintf("%s hexes you for %d turns.", e.EnemyID, e.Effect.Turns)
	case HookChill:
		return fmt.Sprintf("%s chills you for %d turns.", e.EnemyID, e.Effect.Turns)
	case HookBerserk:
		return fmt.Sprintf("%s goes berserk!", e.EnemyID)
	}
	return fmt.Sprintf("%s triggers %s.", e.EnemyID, e.Effect.Affix)
}

// EnemyDefeatedEvent is emitted once per defeated enemy.
type EnemyDefeatedEvent struct {
	EnemyID string `json:"enemyId"`
	Name    string `json:"name"`
	XP      int    `json:"xp"`
	Gold    int    `json:"gold"`
	Last    bool   `json:"last"`
}

func (e *EnemyDefeatedEvent) Type() EventType { return EventEnemyDefeated }
func (e *EnemyDefeatedEvent) Message() string {
	return fmt.Sprintf("%s is defeated. +%d XP, +%d gold.", e.Name, e.XP, e.Gold)
}

// LootDroppedEvent reports an item drop.
type LootDroppedEvent struct {
	EnemyID string `json:"enemyId"`
	Item    string `json:"item"`
}

func (e *LootDroppedEvent) Type() EventType { return EventLootDropped }
func (e *LootDroppedEvent) Message() string {
	return fmt.Sprintf("%s dropped %s.", e.EnemyID, e.Item)
}

// BattleEndedEvent closes an encounter.
type BattleEndedEvent struct {
	Outcome string `json:"outcome"`
	Turns   int    `json:"turns"`
}

func (e *BattleEndedEvent) Type() EventType { return EventBattleEnded }
func (e *BattleEndedEvent) Message() string {
	return fmt.Sprintf("Battle ended: %s after %d turns.", e.Outcome, e.Turns)
}

// PlayerDefeatedEvent is emitted when the player falls.
type PlayerDefeatedEvent struct {
	By string `json:"by,omitempty"`
}

func (e *PlayerDefeatedEvent) Type() EventType { return EventPlayerDefeated }
func (e *PlayerDefeatedEvent) Message() string {
	if e.By == "" {
		return "You have been defeated."
	}
	return fmt.Sprintf("You have been defeated by %s.", e.By)
}
