package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/draconic-arena/internal/battle"
	"github.com/suderio/draconic-arena/internal/engine"
)

func TestJournalAppendLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	j, err := OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(&engine.BattleStartedEvent{
		Enemies: []string{"goblin_raider-1"},
		Names:   []string{"Goblin Raider"},
		Area:    "wildwood",
	}))
	require.NoError(t, j.Emit(&engine.EnemyDefeatedEvent{EnemyID: "goblin_raider-1", XP: 14, Gold: 6, Last: true}))
	require.NoError(t, j.Emit(&engine.AffixTriggeredEvent{
		EnemyID: "goblin_raider-1",
		Effect:  engine.HookEffect{Affix: "vampiric", Kind: engine.HookHeal, Amount: 9},
	}))

	events, err := j.Load()
	require.NoError(t, err)
	require.Len(t, events, 3)

	started, ok := events[0].(*engine.BattleStartedEvent)
	require.True(t, ok)
	assert.Equal(t, "wildwood", started.Area)

	defeated, ok := events[1].(*engine.EnemyDefeatedEvent)
	require.True(t, ok)
	assert.Equal(t, 14, defeated.XP)
	assert.True(t, defeated.Last)

	hook, ok := events[2].(*engine.AffixTriggeredEvent)
	require.True(t, ok)
	assert.Equal(t, engine.HookHeal, hook.Effect.Kind)
}

func TestJournalRejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"world:questStarted","data":{}}`+"\n"), 0644))

	j, err := OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = j.Load()
	assert.ErrorContains(t, err, "unknown event type")
}

func TestJournalAsBusListener(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "log.jsonl"))
	require.NoError(t, err)
	defer j.Close()

	var bus engine.Bus
	bus.Subscribe(j)
	require.NoError(t, bus.Emit(&engine.BattleEndedEvent{Outcome: "victory", Turns: 4}))

	events, err := j.Load()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, engine.EventBattleEnded, events[0].Type())
}

func testState(turn int) battle.State {
	p := engine.NewPlayer("Wanderer", 4)
	p.Gold = 31
	e := &engine.Enemy{ID: "cave_bat-2", TemplateID: "cave_bat", Name: "Cave Bat", MaxHP: 30, HP: 12, Affixes: []string{"frozen"}, RarityApplied: true}
	return battle.State{
		Phase:        battle.PhasePlayer,
		InCombat:     true,
		CurrentEnemy: e.ID,
		Enemies:      []*engine.Enemy{e},
		Player:       p,
		Turn:         turn,
		Difficulty:   "hard",
		Area:         "wildwood",
		Counter:      2,
	}
}

func TestSlotsSaveLoad(t *testing.T) {
	slots, err := OpenSlots(filepath.Join(t.TempDir(), "arena.db"))
	require.NoError(t, err)
	defer slots.Close()
	ctx := context.Background()

	require.NoError(t, slots.Save(ctx, "quick", testState(3)))
	got, err := slots.Load(ctx, "quick")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Turn)
	assert.Equal(t, 31, got.Player.Gold)
	require.Len(t, got.Enemies, 1)
	assert.Equal(t, []string{"frozen"}, got.Enemies[0].Affixes)
	assert.True(t, got.Enemies[0].RarityApplied)

	// Saving again overwrites.
	require.NoError(t, slots.Save(ctx, "quick", testState(7)))
	got, err = slots.Load(ctx, "quick")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Turn)

	_, err = slots.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.Error(t, slots.Save(ctx, "  ", testState(1)))
}

func TestSlotsListAndDelete(t *testing.T) {
	slots, err := OpenSlots(":memory:")
	require.NoError(t, err)
	defer slots.Close()
	ctx := context.Background()

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	slots.now = func() time.Time { return clock }
	require.NoError(t, slots.Save(ctx, "older", testState(1)))
	clock = clock.Add(time.Minute)
	require.NoError(t, slots.Save(ctx, "newer", testState(5)))

	list, err := slots.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Name)
	assert.Equal(t, 5, list[0].Turn)
	assert.Equal(t, clock, list[0].SavedAt)

	require.NoError(t, slots.Delete(ctx, "older"))
	require.NoError(t, slots.Delete(ctx, "older"))
	list, err = slots.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWorkspaceLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "arena")
	ws := NewWorkspace(root)

	j, err := ws.OpenJournal("wanderer")
	require.NoError(t, err)
	require.NoError(t, j.Close())
	assert.FileExists(t, filepath.Join(root, "journals", "wanderer.jsonl"))

	assert.Equal(t, filepath.Join(root, "arena.db"), ws.SlotsPath("arena.db"))
	assert.Equal(t, ":memory:", ws.SlotsPath(":memory:"))

	s, err := ws.OpenSlots("arena.db")
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
