package battle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/engine"
	"github.com/suderio/draconic-arena/internal/logging"
	"github.com/suderio/draconic-arena/internal/rng"
)

type recorder struct {
	events []engine.Event
}

func (r *recorder) Emit(evt engine.Event) error {
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) count(t engine.EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type() == t {
			n++
		}
	}
	return n
}

func (r *recorder) types() []engine.EventType {
	out := make([]engine.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type()
	}
	return out
}

func newManager(t *testing.T, seed uint64, difficulty, area string, p *engine.Player) (*Manager, *recorder) {
	t.Helper()
	rec := &recorder{}
	m, err := NewManager(Options{
		Catalog:    data.MustDefault(),
		RNG:        rng.NewSeeded(seed),
		Player:     p,
		Difficulty: difficulty,
		Area:       area,
		Emitter:    rec,
		Log:        logging.NewCombatLog(200, nil),
	})
	require.NoError(t, err)
	return m, rec
}

func strongPlayer(level int) *engine.Player {
	p := engine.NewPlayer("Tester", level)
	p.Attack = 5000
	p.Magic = 5000
	p.CritChance = 0
	return p
}

func TestNewManagerRequiresCollaborators(t *testing.T) {
	_, err := NewManager(Options{})
	assert.Error(t, err)
}

func TestStartBattleSpawnsForcedGroup(t *testing.T) {
	m, rec := newManager(t, 1, "easy", "village", strongPlayer(50))
	m.ForceNextGroupSize(3)
	require.NoError(t, m.StartBattleWith("training_dummy"))

	s := m.Snapshot()
	assert.Equal(t, PhasePlayer, s.Phase)
	assert.True(t, s.InCombat)
	assert.Len(t, s.Enemies, 3)
	assert.Equal(t, 3, s.GroupSize)
	assert.Equal(t, "training_dummy-1", s.Enemies[0].ID)
	assert.Equal(t, s.Enemies[0].ID, s.CurrentEnemy)
	for _, e := range s.Enemies {
		assert.Positive(t, e.PostureMax)
		assert.Equal(t, e.MaxHP, e.HP)
	}
	assert.Equal(t, 1, rec.count(engine.EventBattleStarted))

	assert.Zero(t, m.forceGroup, "the override is one-shot")
}

func TestStartBattleRefusedDuringCombat(t *testing.T) {
	m, _ := newManager(t, 3, "normal", "wildwood", strongPlayer(5))
	require.NoError(t, m.StartBattleWith("goblin_raider"))
	before := m.Snapshot()

	err := m.StartBattleWith("cave_bat")
	assert.ErrorIs(t, err, ErrAlreadyInCombat)
	assert.Equal(t, before, m.Snapshot())
}

func TestStartBattleUnknownTemplate(t *testing.T) {
	m, _ := newManager(t, 3, "normal", "wildwood", strongPlayer(5))
	err := m.StartBattleWith("dragon_king")
	assert.ErrorIs(t, err, data.ErrUnknownTemplate)
	assert.False(t, m.InCombat())
	assert.Equal(t, PhaseIdle, m.Phase())
}

func TestBossFightsAlone(t *testing.T) {
	m, _ := newManager(t, 9, "hard", "void_rift", strongPlayer(20))
	m.ForceNextGroupSize(3)
	require.NoError(t, m.StartBattleWith("void_wyrm"))
	s := m.Snapshot()
	require.Len(t, s.Enemies, 1)
	assert.True(t, s.Enemies[0].IsBoss)
	assert.False(t, s.Enemies[0].IsElite)
	assert.Equal(t, data.MustDefault().MaxRarity(), s.Enemies[0].Rarity)
}

func TestSweepKillingWholeGroupRewardsOnce(t *testing.T) {
	m, rec := newManager(t, 11, "easy", "village", strongPlayer(50))
	m.ForceNextGroupSize(3)
	require.NoError(t, m.StartBattleWith("training_dummy"))

	xp := 0
	for _, e := range m.Snapshot().Enemies {
		xp += e.XP
	}
	startXP := m.Snapshot().Player.XP

	rep, err := m.PlayerAttack(engine.PlayerSweep, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeVictory, rep.Outcome)
	assert.Len(t, rep.Hits, 3)
	assert.Empty(t, rep.EnemyActions)

	s := m.Snapshot()
	assert.False(t, s.InCombat)
	assert.Empty(t, s.Enemies)
	assert.Empty(t, s.CurrentEnemy)
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, startXP+xp, s.Player.XP)
	assert.Equal(t, 1, s.Victories)
	assert.LessOrEqual(t, s.Drops, maxDropsPerGroup)

	assert.Equal(t, 3, rec.count(engine.EventEnemyDefeated))
	assert.Equal(t, 1, rec.count(engine.EventBattleEnded))
	last := 0
	for _, e := range rec.events {
		if d, ok := e.(*engine.EnemyDefeatedEvent); ok && d.Last {
			last++
		}
	}
	assert.Equal(t, 1, last)

	_, err = m.PlayerAttack(engine.PlayerBasic, "")
	assert.ErrorIs(t, err, ErrNoBattle)
}

func TestHandleEnemyDefeatIsIdempotent(t *testing.T) {
	m, rec := newManager(t, 5, "easy", "village", strongPlayer(50))
	m.ForceNextGroupSize(2)
	require.NoError(t, m.StartBattleWith("training_dummy"))

	first := m.st.Enemies[0]
	first.HP = 0
	m.HandleEnemyDefeat(first)
	xp, gold := m.st.Player.XP, m.st.Player.Gold
	m.HandleEnemyDefeat(first)
	m.HandleEnemyDefeat(first.Clone())

	assert.Equal(t, xp, m.st.Player.XP)
	assert.Equal(t, gold, m.st.Player.Gold)
	assert.Equal(t, 1, rec.count(engine.EventEnemyDefeated))
	assert.True(t, m.InCombat(), "one enemy still stands")
	assert.Equal(t, m.st.Enemies[1].ID, m.st.CurrentEnemy)
}

func TestUnknownTargetIsRejected(t *testing.T) {
	m, _ := newManager(t, 5, "normal", "wildwood", strongPlayer(5))
	require.NoError(t, m.StartBattleWith("goblin_raider"))
	_, err := m.PlayerAttack(engine.PlayerBasic, "nobody-9")
	assert.ErrorIs(t, err, ErrUnknownTarget)
	assert.Equal(t, 1, m.Snapshot().Turn)
}

func TestTargetByTemplatePrefix(t *testing.T) {
	m, _ := newManager(t, 5, "easy", "village", strongPlayer(50))
	require.NoError(t, m.StartBattleWith("training_dummy"))
	rep, err := m.PlayerAttack(engine.PlayerBasic, "training_dummy")
	require.NoError(t, err)
	assert.Equal(t, OutcomeVictory, rep.Outcome)
}

func TestRoundAdvancesThroughEnemyPhase(t *testing.T) {
	p := engine.NewPlayer("Tester", 20)
	p.Attack = 1
	m, rec := newManager(t, 21, "hard", "void_rift", p)
	require.NoError(t, m.StartBattleWith("void_wyrm"))

	rep, err := m.PlayerAttack(engine.PlayerBasic, "")
	require.NoError(t, err)
	assert.Len(t, rep.EnemyActions, 1)
	assert.Equal(t, PhasePlayer, m.Phase())
	assert.Equal(t, 2, m.Snapshot().Turn)
	assert.Equal(t, 1, rec.count(engine.EventEnemyAction))

	_, err = m.RunEnemyPhase()
	assert.Error(t, err, "enemy phase is driven by player commands")
}

func TestDefendEndsTurn(t *testing.T) {
	m, _ := newManager(t, 2, "easy", "village", engine.NewPlayer("Tester", 3))
	require.NoError(t, m.StartBattleWith("training_dummy"))
	_, err := m.PlayerDefend()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Snapshot().Turn)
}

func TestPlayerDefeatIsTerminal(t *testing.T) {
	m, rec := newManager(t, 4, "normal", "wildwood", strongPlayer(5))
	require.NoError(t, m.StartBattleWith("goblin_raider"))
	m.st.Player.HP = 1
	m.st.Player.Status.BleedTurns = 2
	m.st.Player.Status.BleedDamage = 5

	rep, err := m.PlayerAttack(engine.PlayerBasic, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDefeat, rep.Outcome)
	assert.Empty(t, rep.Hits)
	assert.Equal(t, PhaseLost, m.Phase())
	assert.False(t, m.InCombat())
	assert.Equal(t, 1, rec.count(engine.EventPlayerDefeated))

	_, err = m.PlayerAttack(engine.PlayerBasic, "")
	assert.ErrorIs(t, err, ErrDefeated)
	assert.ErrorIs(t, m.StartBattleWith("goblin_raider"), ErrDefeated)

	m.HandlePlayerDefeat()
	assert.Equal(t, 1, rec.count(engine.EventPlayerDefeated), "defeat is handled once")

	m.Reset(engine.NewPlayer("Fresh", 5))
	assert.Equal(t, PhaseIdle, m.Phase())
	require.NoError(t, m.StartBattleWith("goblin_raider"))
}

func TestGodModeSurvivesLingeringDamage(t *testing.T) {
	m, _ := newManager(t, 4, "normal", "wildwood", strongPlayer(5))
	require.NoError(t, m.StartBattleWith("goblin_raider"))
	m.st.Player.GodMode = true
	m.st.Player.HP = 1
	m.st.Player.Status.BleedTurns = 2
	m.st.Player.Status.BleedDamage = 50

	rep, err := m.PlayerAttack(engine.PlayerBasic, "")
	require.NoError(t, err)
	assert.NotEqual(t, OutcomeDefeat, rep.Outcome)
	assert.NotEqual(t, PhaseLost, m.Phase())
}

func TestStunCostsOneActionPerTurn(t *testing.T) {
	m, _ := newManager(t, 5, "easy", "village", strongPlayer(50))
	m.ForceNextGroupSize(1)
	require.NoError(t, m.StartBattleWith("training_dummy"))
	p := m.st.Player
	p.GodMode = true
	require.NoError(t, engine.ApplyStatusEffect(p, data.StatusApplication{ID: "stun", Duration: 2}, m.cat))

	for turn := 1; turn <= 2; turn++ {
		rep, err := m.PlayerAttack(engine.PlayerBasic, "")
		require.NoError(t, err)
		assert.Empty(t, rep.Hits, "turn %d is lost to the stun", turn)
	}
	assert.False(t, m.st.Player.HasStatus("stun"))

	rep, err := m.PlayerAttack(engine.PlayerBasic, "")
	require.NoError(t, err)
	assert.NotEmpty(t, rep.Hits)
}

func TestRepeatedInterruptsDoNotStallEnemies(t *testing.T) {
	p := engine.NewPlayer("Tester", 1)
	p.GodMode = true
	m, rec := newManager(t, 12, "normal", "wildwood", p)
	m.ForceNextGroupSize(1)
	require.NoError(t, m.StartBattleWith("bandit_brute"))

	for i := 0; i < 10; i++ {
		rep, err := m.PlayerAttack(engine.PlayerInterrupt, "")
		require.NoError(t, err)
		if rep.Outcome != OutcomeOngoing {
			break
		}
	}

	acted := 0
	for _, evt := range rec.events {
		if a, ok := evt.(*engine.EnemyActionEvent); ok && !a.Skipped {
			acted++
		}
	}
	assert.Positive(t, acted, "interrupting with nothing telegraphed must not skip the enemy turn")
}

func TestFailingListenerKeepsLaterEvents(t *testing.T) {
	rec := &recorder{}
	flaky := engine.EmitterFunc(func(evt engine.Event) error {
		if evt.Type() == engine.EventPlayerAction {
			panic("listener exploded")
		}
		return rec.Emit(evt)
	})
	healthy := &recorder{}
	bus := &engine.Bus{}
	bus.Subscribe(flaky)
	bus.Subscribe(healthy)

	for name, emitter := range map[string]engine.Emitter{"direct": flaky, "bus": bus} {
		t.Run(name, func(t *testing.T) {
			rec.events, healthy.events = nil, nil
			m, err := NewManager(Options{
				Catalog:    data.MustDefault(),
				RNG:        rng.NewSeeded(3),
				Player:     strongPlayer(50),
				Difficulty: "easy",
				Area:       "village",
				Emitter:    emitter,
				Log:        logging.NewCombatLog(200, nil),
			})
			require.NoError(t, err)
			m.ForceNextGroupSize(1)
			require.NoError(t, m.StartBattleWith("training_dummy"))

			rep, err := m.PlayerAttack(engine.PlayerBasic, "")
			require.NoError(t, err)
			require.Equal(t, OutcomeVictory, rep.Outcome)
			assert.Equal(t, 1, rec.count(engine.EventEnemyDefeated))
			assert.Equal(t, 1, rec.count(engine.EventBattleEnded))
			assert.Positive(t, m.sup.Failures())
			if name == "bus" {
				assert.Equal(t, 1, healthy.count(engine.EventPlayerAction))
				assert.Equal(t, 1, healthy.count(engine.EventBattleEnded))
			}
		})
	}
}

func TestBossLearnsActionCategories(t *testing.T) {
	p := engine.NewPlayer("Tester", 30)
	p.GodMode = true
	p.Attack = 1
	p.Magic = 1
	m, _ := newManager(t, 21, "normal", "void_rift", p)
	require.NoError(t, m.StartBattleWith("void_wyrm"))

	for i := 0; i < 8; i++ {
		_, err := m.PlayerDefend()
		require.NoError(t, err)
	}

	boss := m.Snapshot().Enemies[0]
	var categories []string
	for key := range boss.Memory.AbilityStats {
		if strings.HasPrefix(key, "category:") {
			categories = append(categories, key)
		}
	}
	assert.NotEmpty(t, categories)
}

func TestSeededReplayIsDeterministic(t *testing.T) {
	play := func() (State, []engine.EventType) {
		p := engine.NewPlayer("Tester", 6)
		m, rec := newManager(t, 77, "normal", "wildwood", p)
		require.NoError(t, m.StartBattleWith("bandit_brute"))
		actions := []engine.PlayerAction{
			engine.PlayerBasic, engine.PlayerHeavy, engine.PlayerSpell,
			engine.PlayerCurse, engine.PlayerInterrupt, engine.PlayerBasic,
		}
		for _, a := range actions {
			if _, err := m.PlayerAttack(a, ""); err != nil {
				break
			}
		}
		return m.Snapshot(), rec.types()
	}
	s1, ev1 := play()
	s2, ev2 := play()
	assert.Equal(t, s1, s2)
	assert.Equal(t, ev1, ev2)
	assert.NotEmpty(t, ev1)
}

func TestLoadBackfillsAndResumes(t *testing.T) {
	m, _ := newManager(t, 8, "normal", "wildwood", strongPlayer(5))
	require.NoError(t, m.StartBattleWith("goblin_raider"))
	saved := m.Snapshot()
	saved.Enemies[0].PostureMax = 0
	saved.Enemies[0].Memory.AbilityStats = nil

	other, _ := newManager(t, 8, "easy", "village", strongPlayer(5))
	require.NoError(t, other.Load(saved))
	s := other.Snapshot()
	assert.Equal(t, PhasePlayer, s.Phase)
	assert.Equal(t, "normal", other.Difficulty().ID)
	assert.Positive(t, s.Enemies[0].PostureMax)
	assert.NotNil(t, s.Enemies[0].Memory.AbilityStats)

	_, err := other.PlayerAttack(engine.PlayerBasic, "")
	assert.NoError(t, err)
}

func TestLoadClearsInconsistentCombat(t *testing.T) {
	m, _ := newManager(t, 8, "normal", "wildwood", strongPlayer(5))
	require.NoError(t, m.Load(State{Phase: PhasePlayer, InCombat: true, Player: engine.NewPlayer("Ghost", 2)}))
	assert.False(t, m.InCombat())
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Error(t, m.Load(State{}))
}

func TestLootChance(t *testing.T) {
	boss := &engine.Enemy{IsBoss: true, DropMult: 2}
	elite := &engine.Enemy{IsElite: true, DropMult: 1}
	plain := &engine.Enemy{DropMult: 1}
	assert.Equal(t, 1.0, LootChance(boss, true))
	assert.InDelta(t, 0.9, LootChance(elite, false), 1e-9)
	assert.InDelta(t, 0.7*0.85, LootChance(plain, true), 1e-9)
}
