package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/draconic-arena/internal/battle"
	"github.com/suderio/draconic-arena/internal/config"
	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/engine"
	"github.com/suderio/draconic-arena/internal/rng"
	"github.com/suderio/draconic-arena/internal/session"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(session.Options{
		Settings: config.Settings{Difficulty: "easy", Area: "village", PlayerName: "Tester", PlayerLevel: 40},
		Catalog:  data.MustDefault(),
		RNG:      rng.NewSeeded(7),
	})
	require.NoError(t, err)
	return s
}

func TestRunShell(t *testing.T) {
	app := testSession(t)
	in := strings.NewReader("start training_dummy group: 1\n\nstatus\nbogus words\nexit\nattack\n")
	var out bytes.Buffer

	require.NoError(t, runShell(context.Background(), app, in, &out))
	text := out.String()
	assert.Contains(t, text, "Battle started")
	assert.Contains(t, text, "Turn 1")
	assert.Contains(t, text, "Error: I wasn't able to understand your command")
	assert.True(t, app.Manager().InCombat(), "input after exit is not run")
}

func TestRunSimulation(t *testing.T) {
	app := testSession(t)
	fresh := func() *engine.Player { return engine.NewPlayer("Tester", 40) }
	calls := 0

	stats, err := runSimulation(context.Background(), app, []string{"training_dummy"}, 3, fresh, func() { calls++ })
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Battles)
	assert.Equal(t, 3, calls)
	assert.Equal(t, stats.Battles, stats.Victories+stats.Defeats+stats.Stalled)
	assert.Positive(t, stats.Victories)
	assert.GreaterOrEqual(t, stats.AvgTurns(), 1.0)
	assert.Equal(t, 3, app.Summary().Battles)

	_, err = runSimulation(context.Background(), app, nil, 1, fresh, nil)
	assert.Error(t, err)
}

func TestAutoPlay(t *testing.T) {
	a := &engine.Enemy{ID: "goblin_raider-1", HP: 10}
	b := &engine.Enemy{ID: "cave_bat-2", HP: 10}

	assert.Equal(t, "attack", autoPlay(battle.State{Enemies: []*engine.Enemy{a}}))
	assert.Equal(t, "sweep", autoPlay(battle.State{Enemies: []*engine.Enemy{a, b}}))

	b.Intent = &engine.Intent{AbilityID: "crushing_blow", Name: "Crushing Blow"}
	assert.Equal(t, "interrupt at: cave_bat-2", autoPlay(battle.State{Enemies: []*engine.Enemy{a, b}}))
}

func TestProfileName(t *testing.T) {
	tests := map[string]string{
		"Wanderer":      "wanderer",
		"  Sir Gawain ": "sir_gawain",
		"../etc":        "___etc",
		"":              "default",
	}
	for in, want := range tests {
		assert.Equal(t, want, profileName(in), in)
	}
}

func TestTableFlag(t *testing.T) {
	assert.Equal(t, "status-effects", tableFlag("status_effects.yaml"))
	assert.Equal(t, "enemies", tableFlag("enemies.yaml"))
}

func TestCompletions(t *testing.T) {
	app := testSession(t)
	m := newArenaModel(app, data.MustDefault())

	assert.Contains(t, m.completions("st"), "start ")
	assert.Contains(t, m.completions("st"), "status ")
	assert.Equal(t, []string{"start training_dummy"}, m.completions("start tr"))
	assert.Contains(t, m.completions("area fr"), "area frostpeak")

	_, err := app.Execute(context.Background(), "start training_dummy group: 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"heavy at: training_dummy-1"}, m.completions("heavy at: tr"))
}

func TestWriteSummary(t *testing.T) {
	var out bytes.Buffer
	writeSummary(&out, &engine.Summary{
		Battles:     2,
		Victories:   1,
		Defeats:     1,
		Loot:        []string{"Rare Charm"},
		AbilityUses: map[string]int{"bite": 3, "basic_strike": 1},
		LastOutcome: "defeat",
	})
	text := out.String()
	assert.Contains(t, text, "Battles: 2  Victories: 1  Defeats: 1")
	assert.Contains(t, text, "Loot: Rare Charm")
	assert.Less(t, strings.Index(text, "basic_strike"), strings.Index(text, "bite"))
	assert.Contains(t, text, "Last battle: defeat")
	assert.NotContains(t, text, "Affix triggers")
}

func TestWriteVersion(t *testing.T) {
	var out bytes.Buffer
	writeVersion(&out, true)
	assert.Equal(t, "dev\n", out.String())

	out.Reset()
	writeVersion(&out, false)
	assert.Contains(t, out.String(), "draconic-arena version dev")
}
