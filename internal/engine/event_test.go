package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusIsolatesListeners(t *testing.T) {
	var got []EventType
	var bus Bus
	bus.Subscribe(EmitterFunc(func(Event) error { panic("boom") }))
	bus.Subscribe(EmitterFunc(func(Event) error { return errors.New("disk full") }))
	bus.Subscribe(EmitterFunc(func(evt Event) error {
		got = append(got, evt.Type())
		return nil
	}))

	err := bus.Emit(&BattleEndedEvent{Outcome: "victory", Turns: 2})
	assert.ErrorContains(t, err, "panic: boom")
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, []EventType{EventBattleEnded}, got)
}
