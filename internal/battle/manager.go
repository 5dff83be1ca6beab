// Package battle owns the encounter lifecycle: starting fights, running the
// player and enemy phases and settling defeats.
package battle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/engine"
	"github.com/suderio/draconic-arena/internal/logging"
	"github.com/suderio/draconic-arena/internal/rng"
)

var (
	// ErrAlreadyInCombat is returned when a battle is started during another.
	ErrAlreadyInCombat = errors.New("already in combat")
	// ErrNoBattle is returned for combat commands outside a battle.
	ErrNoBattle = errors.New("no battle in progress")
	// ErrDefeated is returned while the player is defeated.
	ErrDefeated = errors.New("player is defeated")
	// ErrUnknownTarget is returned when a target id does not name a living enemy.
	ErrUnknownTarget = errors.New("unknown target")
)

const (
	evStart     = "start"
	evEndTurn   = "end_turn"
	evNextRound = "next_round"
	evWin       = "win"
	evLose      = "lose"
	evReset     = "reset"
)

// Options wires a Manager to its collaborators. Catalog, RNG and Player are required.
type Options struct {
	Catalog    *data.Catalog
	RNG        rng.Stream
	Player     *engine.Player
	Difficulty string
	Area       string
	Emitter    engine.Emitter
	Log        logging.Sink
	Logger     *zap.Logger
	Gate       engine.AbilityGate
}

// Manager runs one encounter at a time. All methods are safe for concurrent
// use; combat itself is strictly sequential.
type Manager struct {
	mu sync.RWMutex

	cat     *data.Catalog
	rng     rng.Stream
	emitter engine.Emitter
	sink    logging.Sink
	log     *zap.Logger
	sup     *engine.Supervisor
	gate    engine.AbilityGate
	machine *fsm.FSM

	st   State
	diff data.Difficulty
	area data.Area

	forceGroup   int
	forceAffixes []string
	forceElite   bool

	tx *transaction
}

// NewManager builds an idle manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Catalog == nil || opts.RNG == nil || opts.Player == nil {
		return nil, fmt.Errorf("battle manager needs a catalog, an rng stream and a player")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Log == nil {
		opts.Log = logging.Discard
	}
	if opts.Emitter == nil {
		opts.Emitter = &engine.Bus{}
	}
	m := &Manager{
		cat:     opts.Catalog,
		rng:     opts.RNG,
		emitter: opts.Emitter,
		sink:    opts.Log,
		log:     opts.Logger,
		sup:     engine.NewSupervisor(opts.Logger),
		gate:    opts.Gate,
	}
	m.st = State{Phase: PhaseIdle, Player: opts.Player}
	m.setDifficulty(opts.Difficulty)
	m.setArea(opts.Area)
	m.machine = newMachine(PhaseIdle, func(dst string) { m.st.Phase = dst })
	return m, nil
}

func newMachine(initial string, onEnter func(dst string)) *fsm.FSM {
	return fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: evStart, Src: []string{PhaseIdle}, Dst: PhasePlayer},
			{Name: evEndTurn, Src: []string{PhasePlayer}, Dst: PhaseEnemy},
			{Name: evNextRound, Src: []string{PhaseEnemy}, Dst: PhasePlayer},
			{Name: evWin, Src: []string{PhasePlayer, PhaseEnemy}, Dst: PhaseWon},
			{Name: evLose, Src: []string{PhaseIdle, PhasePlayer, PhaseEnemy, PhaseWon}, Dst: PhaseLost},
			{Name: evReset, Src: []string{PhaseWon, PhaseLost, PhasePlayer, PhaseEnemy}, Dst: PhaseIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) { onEnter(e.Dst) },
		},
	)
}

func (m *Manager) setDifficulty(id string) {
	m.diff = m.cat.Difficulty(id)
	m.st.Difficulty = m.diff.ID
}

func (m *Manager) setArea(id string) {
	m.area = m.cat.Area(id)
	m.st.Area = m.area.ID
}

// fire moves the state machine. A refused transition is logged, never fatal.
func (m *Manager) fire(event string) {
	m.sup.Run("fsm "+event, func() error {
		return m.machine.Event(context.Background(), event)
	})
}

// SetDifficulty changes the difficulty used by the next encounter.
func (m *Manager) SetDifficulty(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setDifficulty(id)
}

// SetArea changes the area used by the next encounter.
func (m *Manager) SetArea(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setArea(id)
}

// ForceNextGroupSize overrides the group size roll of the next encounter only.
func (m *Manager) ForceNextGroupSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forceGroup = n
}

// ForceNextAffixes forces mini-affixes onto every enemy of the next encounter.
func (m *Manager) ForceNextAffixes(ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forceAffixes = append([]string(nil), ids...)
}

// ForceNextElite makes every non-boss enemy of the next encounter elite.
func (m *Manager) ForceNextElite() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forceElite = true
}

// Phase is the current state machine phase.
func (m *Manager) Phase() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Phase
}

// InCombat reports whether an encounter is running.
func (m *Manager) InCombat() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.InCombat
}

// Snapshot returns a deep copy of the encounter for read-only consumers.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Clone()
}

// Difficulty is the resolved difficulty of the manager.
func (m *Manager) Difficulty() data.Difficulty {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.diff
}

// StartBattleWith spawns an encounter led by templateID. It is refused
// without any change while another encounter runs.
func (m *Manager) StartBattleWith(templateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.st.InCombat {
		m.addLog("You are already fighting.", logging.ChannelSystem)
		return ErrAlreadyInCombat
	}
	if m.st.Phase == PhaseLost {
		return ErrDefeated
	}
	tpl, err := m.cat.Template(templateID)
	if err != nil {
		return fmt.Errorf("failed to start battle: %w", err)
	}

	size := m.groupSize(tpl)
	forced, forceElite := m.forceAffixes, m.forceElite
	m.forceGroup, m.forceAffixes, m.forceElite = 0, nil, false

	ectx := engine.EncounterContext{
		Catalog:    m.cat,
		RNG:        m.rng,
		Difficulty: m.diff,
		Area:       m.area,
		ForceElite: forceElite,
	}
	enemies := make([]*engine.Enemy, 0, size)
	for i := 0; i < size; i++ {
		member := tpl
		if i > 0 {
			member = m.companion(tpl)
		}
		m.st.Counter++
		e := engine.NewEnemyFromTemplate(fmt.Sprintf("%s-%d", member.ID, m.st.Counter), member)
		m.ensure(e)
		engine.ApplyEliteModifiers(e, m.diff, ectx)
		engine.ApplyRarity(e, m.diff, ectx)
		engine.ApplyEnemyAffixes(e, engine.AffixOptions{Force: forced}, ectx)
		engine.SquishForGroup(e, size)
		m.ensure(e)
		enemies = append(enemies, e)
	}

	m.st.InCombat = true
	m.st.Enemies = enemies
	m.st.CurrentEnemy = enemies[0].ID
	m.st.Turn = 1
	m.st.GroupSize = size
	m.st.Drops = 0
	m.fire(evStart)

	names := make([]string, len(enemies))
	ids := make([]string, len(enemies))
	for i, e := range enemies {
		names[i], ids[i] = e.Name, e.ID
	}
	m.log.Info("battle started",
		zap.Strings("enemies", ids),
		zap.String("difficulty", m.diff.ID),
		zap.String("area", m.area.ID),
	)
	m.publish(&engine.BattleStartedEvent{Enemies: ids, Names: names, Difficulty: m.diff.ID, Area: m.area.ID})
	return nil
}

// groupSize rolls how many enemies join the fight. Bosses fight alone.
func (m *Manager) groupSize(tpl data.EnemyTemplate) int {
	if tpl.IsBoss {
		return 1
	}
	if m.forceGroup > 0 {
		return min(3, m.forceGroup)
	}
	w := m.diff.GroupWeights
	total := w[0] + w[1] + w[2]
	if total <= 0 {
		return 1
	}
	r := m.rng.Random("battle.groupSize") * total
	for i, wi := range w {
		if wi <= 0 {
			continue
		}
		r -= wi
		if r <= 0 {
			return i + 1
		}
	}
	return 1
}

// companion picks a non-boss template from the area to fill out a group.
func (m *Manager) companion(lead data.EnemyTemplate) data.EnemyTemplate {
	var pool []data.EnemyTemplate
	for _, id := range m.area.Templates {
		if t, err := m.cat.Template(id); err == nil && !t.IsBoss {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		return lead
	}
	return pool[m.rng.RandomInt(0, len(pool)-1, "battle.companion")]
}

func (m *Manager) ensure(e *engine.Enemy) {
	m.sup.Run("ensure "+e.ID, func() error { return engine.EnsureEnemyRuntime(e, m.cat) })
}

func (m *Manager) decisionContext() engine.DecisionContext {
	return engine.DecisionContext{
		Player:     m.st.Player,
		Difficulty: m.diff,
		Catalog:    m.cat,
		RNG:        m.rng,
		Gate:       m.gate,
	}
}

// PlayerAttack resolves a player action against targetID (or the current
// enemy when empty) and then runs the enemy phase.
func (m *Manager) PlayerAttack(action engine.PlayerAction, targetID string) (TurnReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !engine.ValidAction(action) {
		return TurnReport{}, fmt.Errorf("unknown action %q", action)
	}
	if err := m.ready(); err != nil {
		return TurnReport{}, err
	}
	target, err := m.target(targetID)
	if err != nil {
		return TurnReport{}, err
	}

	return m.playerTurn(func(rep *TurnReport) {
		targets := []*engine.Enemy{target}
		if action == engine.PlayerSweep {
			targets = m.st.Living()
		}
		crit := m.rng.Random("player.crit") < m.st.Player.CritChance
		for _, e := range targets {
			hit := engine.ResolvePlayerHit(m.st.Player, e, action, crit, m.cat)
			rep.Hits = append(rep.Hits, hit)
			m.publish(&engine.PlayerActionEvent{Hit: hit})
			if hit.Posture.Broken {
				m.publish(&engine.PostureBrokenEvent{EnemyID: e.ID, Name: e.Name})
			}
			m.publishHooks(e.ID, hit.Hooks)
		}
		for _, e := range targets {
			if !e.Alive() {
				m.handleEnemyDefeat(e)
			}
		}
	})
}

// PlayerDefend raises a shield for the coming enemy phase.
func (m *Manager) PlayerDefend() (TurnReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return TurnReport{}, err
	}
	return m.playerTurn(func(*TurnReport) {
		p := m.st.Player
		p.Status.Shield = max(p.Status.Shield, 4+2*p.Level)
		p.Status.ShieldTurns = max(p.Status.ShieldTurns, 1)
		m.addLog(fmt.Sprintf("You raise your guard (%d shield).", p.Status.Shield), logging.ChannelCombat)
	})
}

func (m *Manager) ready() error {
	switch {
	case m.st.Phase == PhaseLost:
		return ErrDefeated
	case !m.st.InCombat:
		return ErrNoBattle
	case m.st.Phase != PhasePlayer:
		return fmt.Errorf("not the player's turn (phase %s)", m.st.Phase)
	}
	return nil
}

func (m *Manager) target(id string) (*engine.Enemy, error) {
	if id == "" {
		id = m.st.CurrentEnemy
	}
	e := m.st.Enemy(id)
	if e == nil {
		// Allow a template prefix such as "goblin_raider".
		for _, cand := range m.st.Living() {
			if strings.HasPrefix(cand.ID, id) {
				e = cand
				break
			}
		}
	}
	if e == nil || !e.Alive() || e.DefeatHandled {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, id)
	}
	return e, nil
}

// playerTurn wraps a player action with the status tick before it and the
// enemy phase after it.
func (m *Manager) playerTurn(act func(rep *TurnReport)) (TurnReport, error) {
	m.begin()
	defer m.commit()

	rep := TurnReport{Outcome: OutcomeOngoing}
	p := m.st.Player
	// Read before the tick so the last stun turn still costs the action.
	stunned := p.HasStatus("stun")

	rep.StatusTick = engine.TickPlayerStatus(p, m.cat)
	if rep.StatusTick.Damage > 0 {
		m.addLog(fmt.Sprintf("You suffer %d damage from lingering effects.", rep.StatusTick.Damage), logging.ChannelDanger)
	}
	if !p.Alive() {
		m.handlePlayerDefeat("lingering wounds")
		rep.Outcome = OutcomeDefeat
		return rep, nil
	}

	if stunned {
		m.addLog("You are stunned and lose your action.", logging.ChannelDanger)
	} else {
		act(&rep)
	}

	if m.st.Phase == PhaseLost {
		rep.Outcome = OutcomeDefeat
		return rep, nil
	}
	if !p.Alive() {
		m.handlePlayerDefeat("thorns")
		rep.Outcome = OutcomeDefeat
		return rep, nil
	}
	if !m.st.InCombat {
		rep.Outcome = OutcomeVictory
		return rep, nil
	}

	if cur := m.st.Enemy(m.st.CurrentEnemy); cur == nil || !cur.Alive() {
		if living := m.st.Living(); len(living) > 0 {
			m.st.CurrentEnemy = living[0].ID
		}
	}

	m.fire(evEndTurn)
	rep.EnemyActions = m.runEnemyPhase()
	if m.st.Phase == PhaseLost {
		rep.Outcome = OutcomeDefeat
		return rep, nil
	}
	m.st.Turn++
	m.fire(evNextRound)
	return rep, nil
}

// RunEnemyPhase lets every living enemy act once. It is only valid during the
// enemy phase; PlayerAttack and PlayerDefend call it on their own.
func (m *Manager) RunEnemyPhase() ([]engine.AbilityOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.st.InCombat {
		return nil, ErrNoBattle
	}
	if m.st.Phase != PhaseEnemy {
		return nil, fmt.Errorf("not the enemy phase (phase %s)", m.st.Phase)
	}
	m.begin()
	defer m.commit()
	out := m.runEnemyPhase()
	if m.st.Phase == PhaseEnemy {
		m.st.Turn++
		m.fire(evNextRound)
	}
	return out, nil
}

func (m *Manager) runEnemyPhase() []engine.AbilityOutcome {
	var outcomes []engine.AbilityOutcome
	p := m.st.Player
	dctx := m.decisionContext()

	for _, e := range append([]*engine.Enemy(nil), m.st.Enemies...) {
		if !m.st.InCombat || !p.Alive() {
			break
		}
		if !e.Alive() || e.DefeatHandled {
			continue
		}

		gate := engine.TickEnemyStartOfTurn(e)
		if gate.Skip {
			m.publish(&engine.EnemyActionEvent{
				Outcome:    engine.AbilityOutcome{EnemyID: e.ID, Name: e.Name},
				Skipped:    true,
				SkipReason: gate.Reason,
			})
			continue
		}

		var (
			id       string
			category engine.ActionCategory
		)
		switch {
		case e.Intent != nil:
			id = engine.ChooseEnemyAbility(e, dctx)
		case e.Behavior == "":
			category = engine.DecideEnemyAction(e, dctx)
			id = engine.CategoryAbility[category]
		case e.IsBoss:
			// Bosses pick a category first; only the signature breath bypasses the kit scorer.
			category = engine.DecideEnemyAction(e, dctx)
			if category == engine.ActionVoidBreath {
				id = engine.CategoryAbility[category]
			} else {
				id = engine.ChooseEnemyAbility(e, dctx)
			}
		default:
			id = engine.ChooseEnemyAbility(e, dctx)
		}

		out := engine.ResolveEnemyAbility(e, p, id, m.cat, m.rng)
		outcomes = append(outcomes, out)
		if !out.Telegraphed {
			reward := engine.RewardForOutcome(out)
			engine.RecordAbilityOutcome(e, out.AbilityID, reward)
			if category != "" {
				engine.RecordCategoryOutcome(e, category, reward)
			}
		}
		m.publish(&engine.EnemyActionEvent{Outcome: out})
		m.publishHooks(e.ID, out.Hooks)

		if !p.Alive() {
			m.handlePlayerDefeat(e.Name)
			break
		}
	}
	return outcomes
}

// HandleEnemyDefeat settles a defeated enemy, or the current enemy when e is
// nil. Calling it again for the same enemy does nothing.
func (m *Manager) HandleEnemyDefeat(e *engine.Enemy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e == nil {
		e = m.st.Enemy(m.st.CurrentEnemy)
	} else if own := m.st.Enemy(e.ID); own != nil {
		e = own
	}
	if e == nil {
		return
	}
	m.handleEnemyDefeat(e)
}

func (m *Manager) handleEnemyDefeat(e *engine.Enemy) {
	if e.DefeatHandled {
		return
	}
	e.DefeatHandled = true

	last := true
	for _, other := range m.st.Enemies {
		if other != e && !other.DefeatHandled {
			last = false
			break
		}
	}

	m.begin()
	defer m.commit()

	multi := m.st.GroupSize > 1
	if last {
		m.st.InCombat = false
		m.st.CurrentEnemy = ""
		m.st.Enemies = nil
		m.fire(evWin)
		m.fire(evReset)
	} else if m.st.CurrentEnemy == e.ID {
		if living := m.st.Living(); len(living) > 0 {
			m.st.CurrentEnemy = living[0].ID
		}
	}

	p := m.st.Player
	gold := m.rng.RandomInt(e.GoldMin, e.GoldMax, "reward.gold")
	p.XP += e.XP
	p.Gold += gold
	m.sup.Run("consistency", m.checkConsistency)
	m.levelUp()

	m.publish(&engine.EnemyDefeatedEvent{EnemyID: e.ID, Name: e.Name, XP: e.XP, Gold: gold, Last: last})
	m.rollLoot(e, multi)

	if last {
		m.st.Victories++
		m.publish(&engine.BattleEndedEvent{Outcome: OutcomeVictory, Turns: m.st.Turn})
	}
}

// checkConsistency rejects a state that claims combat without a valid target.
func (m *Manager) checkConsistency() error {
	if !m.st.InCombat {
		return nil
	}
	if len(m.st.Living()) == 0 {
		m.st.InCombat = false
		m.st.CurrentEnemy = ""
		return errors.New("in combat without a living enemy, combat cleared")
	}
	if cur := m.st.Enemy(m.st.CurrentEnemy); cur == nil || cur.DefeatHandled {
		m.st.CurrentEnemy = m.st.Living()[0].ID
	}
	return nil
}

// LootChance is the drop probability for a defeated enemy.
func LootChance(e *engine.Enemy, multi bool) float64 {
	base := 0.7
	switch {
	case e.IsBoss:
		base = 1.0
	case e.IsElite:
		base = 0.9
	}
	if multi && !e.IsBoss {
		base *= 0.85
	}
	base *= e.DropMult
	return max(0, min(1, base))
}

// maxDropsPerGroup caps drops in battles with more than one enemy.
const maxDropsPerGroup = 2

var lootBases = []string{"Potion", "Iron Scrap", "Rune Shard", "Charm", "Whetstone", "Tonic"}

func (m *Manager) rollLoot(e *engine.Enemy, multi bool) {
	if multi && m.st.Drops >= maxDropsPerGroup {
		return
	}
	if m.rng.Random("loot.drop") >= LootChance(e, multi) {
		return
	}
	base := lootBases[m.rng.RandomInt(0, len(lootBases)-1, "loot.item")]
	item := m.cat.Rarity(e.Rarity).Label + " " + base
	m.st.Drops++
	m.st.Player.Inventory = append(m.st.Player.Inventory, item)
	m.publish(&engine.LootDroppedEvent{EnemyID: e.ID, Item: item})
}

// levelUp raises the player one level per 100·level XP banked.
func (m *Manager) levelUp() {
	p := m.st.Player
	for p.XP >= 100*p.Level {
		p.XP -= 100 * p.Level
		p.Level++
		p.MaxHP += 12
		p.HP = min(p.MaxHP, p.HP+12)
		p.Attack += 2
		p.Magic += 2
		p.Armor++
		p.MagicRes++
		m.addLog(fmt.Sprintf("You reached level %d!", p.Level), logging.ChannelLoot)
	}
}

// HandlePlayerDefeat ends the encounter in the terminal lost phase.
func (m *Manager) HandlePlayerDefeat() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlePlayerDefeat("")
}

func (m *Manager) handlePlayerDefeat(by string) {
	if m.st.Phase == PhaseLost {
		return
	}
	m.begin()
	defer m.commit()

	p := m.st.Player
	if !p.GodMode {
		p.HP = 0
	}
	m.st.InCombat = false
	m.st.CurrentEnemy = ""
	m.st.Enemies = nil
	m.fire(evLose)

	m.log.Info("player defeated", zap.String("by", by), zap.Int("turn", m.st.Turn))
	m.publish(&engine.PlayerDefeatedEvent{By: by})
	m.publish(&engine.BattleEndedEvent{Outcome: OutcomeDefeat, Turns: m.st.Turn})
	m.addLog("Load a save or return to the menu.", logging.ChannelSystem)
}

// Reset leaves the lost phase with a fresh player.
func (m *Manager) Reset(p *engine.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p != nil {
		m.st.Player = p
	}
	m.st.InCombat = false
	m.st.CurrentEnemy = ""
	m.st.Enemies = nil
	if m.st.Phase != PhaseIdle {
		m.fire(evReset)
	}
}

// Load replaces the encounter with a saved one and backfills every enemy.
func (m *Manager) Load(s State) error {
	if s.Player == nil {
		return errors.New("saved state has no player")
	}
	s = s.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range s.Enemies {
		m.ensure(e)
	}
	if s.Phase == "" {
		s.Phase = PhaseIdle
	}
	if s.Phase == PhaseWon {
		s.Phase = PhaseIdle
	}
	m.st = s
	m.setDifficulty(s.Difficulty)
	m.setArea(s.Area)
	m.machine.SetState(s.Phase)
	m.sup.Run("consistency", m.checkConsistency)
	if !m.st.InCombat && (m.st.Phase == PhasePlayer || m.st.Phase == PhaseEnemy) {
		m.machine.SetState(PhaseIdle)
		m.st.Phase = PhaseIdle
	}
	return nil
}
