// Package session glues the command language to a battle manager: it parses a
// line, runs it, journals the emitted events and manages save slots.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"go.uber.org/zap"

	"github.com/suderio/draconic-arena/internal/battle"
	"github.com/suderio/draconic-arena/internal/config"
	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/engine"
	"github.com/suderio/draconic-arena/internal/logging"
	"github.com/suderio/draconic-arena/internal/parser"
	"github.com/suderio/draconic-arena/internal/persistence"
	"github.com/suderio/draconic-arena/internal/rng"
	"github.com/suderio/draconic-arena/internal/rules"
)

// DefaultSlot is used by save and load when no slot is named.
const DefaultSlot = "quick"

// Journal defines the dependency required by Session to persist events.
type Journal interface {
	engine.Emitter
	Load() ([]engine.Event, error)
}

// SlotStore persists whole encounters.
type SlotStore interface {
	Save(ctx context.Context, name string, st battle.State) error
	Load(ctx context.Context, name string) (battle.State, error)
	List(ctx context.Context) ([]persistence.SlotInfo, error)
}

// Options configures a Session. Journal and Slots are optional.
type Options struct {
	Settings config.Settings
	Catalog  *data.Catalog
	RNG      rng.Stream
	Journal  Journal
	Slots    SlotStore
	Logger   *zap.Logger
}

// Result is what one command produced for the caller to render.
type Result struct {
	Lines  []logging.Line
	Report *battle.TurnReport
	Info   string
}

// Session manages the loop of taking commands, running them against the
// battle manager and persisting what happened.
type Session struct {
	cat       *data.Catalog
	mgr       *battle.Manager
	log       *logging.CombatLog
	journal   Journal
	slots     SlotStore
	logger    *zap.Logger
	grammar   *participle.Parser[parser.Command]
	projector *engine.Projector
	summary   *engine.Summary
	seq       int
}

// New bootstraps a session around a fresh player built from the settings.
func New(opts Options) (*Session, error) {
	if opts.Catalog == nil || opts.RNG == nil {
		return nil, fmt.Errorf("session needs a catalog and an rng stream")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := opts.RNG
	reg, err := rules.NewRegistry(func(tag string) float64 { return r.Random(tag) })
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rules registry: %w", err)
	}
	gate, err := rules.NewGate(reg, opts.Catalog, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("invalid ability requirements: %w", err)
	}

	s := &Session{
		cat:       opts.Catalog,
		log:       logging.NewCombatLog(500, opts.Logger),
		journal:   opts.Journal,
		slots:     opts.Slots,
		logger:    opts.Logger,
		grammar:   parser.Build(),
		projector: engine.NewProjector(),
	}
	if err := s.RebuildSummary(); err != nil {
		return nil, err
	}

	bus := &engine.Bus{}
	if s.journal != nil {
		bus.Subscribe(s.journal)
	}
	bus.Subscribe(engine.EmitterFunc(func(evt engine.Event) error {
		s.projector.Apply(s.summary, evt)
		return nil
	}))

	p := engine.NewPlayer(opts.Settings.PlayerName, opts.Settings.PlayerLevel)
	p.GodMode = opts.Settings.GodMode
	s.mgr, err = battle.NewManager(battle.Options{
		Catalog:    opts.Catalog,
		RNG:        opts.RNG,
		Player:     p,
		Difficulty: opts.Settings.Difficulty,
		Area:       opts.Settings.Area,
		Emitter:    bus,
		Log:        s.log,
		Logger:     opts.Logger,
		Gate:       gate,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RebuildSummary replays the journal into a fresh summary.
func (s *Session) RebuildSummary() error {
	var events []engine.Event
	if s.journal != nil {
		var err error
		if events, err = s.journal.Load(); err != nil {
			return fmt.Errorf("failed to load combat journal: %w", err)
		}
	}
	s.summary = s.projector.Build(events)
	return nil
}

// Manager exposes the battle manager for read-only views.
func (s *Session) Manager() *battle.Manager { return s.mgr }

// Log is the combat log the session writes to.
func (s *Session) Log() *logging.CombatLog { return s.log }

// Summary is the journal tally including this session.
func (s *Session) Summary() engine.Summary { return *s.summary }

// Execute runs one command line.
func (s *Session) Execute(ctx context.Context, input string) (Result, error) {
	input = ExpandInput(input, livingIDs(s.mgr.Snapshot()))
	if input == "" {
		return Result{}, nil
	}
	cmd, err := s.grammar.ParseString("", input)
	if err != nil {
		return Result{}, parser.MapError(input, err)
	}

	var res Result
	switch {
	case cmd.Start != nil:
		err = s.start(cmd.Start)
	case cmd.Attack != nil:
		var rep battle.TurnReport
		rep, err = s.mgr.PlayerAttack(engine.PlayerAction(cmd.Attack.Verb()), cmd.Attack.Target)
		res.Report = &rep
	case cmd.Defend != nil:
		var rep battle.TurnReport
		rep, err = s.mgr.PlayerDefend()
		res.Report = &rep
	case cmd.Status != nil:
		res.Info = Describe(s.mgr.Snapshot())
	case cmd.Save != nil:
		res.Info, err = s.save(ctx, cmd.Save.Slot)
	case cmd.Load != nil:
		res.Info, err = s.load(ctx, cmd.Load.Slot)
	case cmd.Slots != nil:
		res.Info, err = s.listSlots(ctx)
	case cmd.Difficulty != nil:
		s.mgr.SetDifficulty(strings.ToLower(cmd.Difficulty.ID))
		res.Info = "Difficulty is now " + s.mgr.Difficulty().Name + "."
	case cmd.Area != nil:
		if _, ok := s.cat.Areas[cmd.Area.ID]; !ok {
			err = fmt.Errorf("unknown area %q", cmd.Area.ID)
			break
		}
		s.mgr.SetArea(cmd.Area.ID)
		res.Info = "You travel to " + s.cat.Area(cmd.Area.ID).Name + "."
	case cmd.Help != nil:
		res.Info = help(cmd.Help.Command)
	default:
		err = fmt.Errorf("unsupported command pattern")
	}
	if res.Report != nil && err != nil {
		res.Report = nil
	}

	res.Lines = s.log.Since(s.seq)
	if n := len(res.Lines); n > 0 {
		s.seq = res.Lines[n-1].Seq
	}
	return res, err
}

func (s *Session) start(c *parser.StartCmd) error {
	if n := c.GroupSize(); n > 0 {
		s.mgr.ForceNextGroupSize(n)
	}
	if affixes := c.ForcedAffixes(); len(affixes) > 0 {
		s.mgr.ForceNextAffixes(affixes...)
	}
	if c.ForceElite() {
		s.mgr.ForceNextElite()
	}
	return s.mgr.StartBattleWith(c.Template)
}

func (s *Session) save(ctx context.Context, slot string) (string, error) {
	if s.slots == nil {
		return "", errors.New("save slots are not configured")
	}
	if slot == "" {
		slot = DefaultSlot
	}
	if err := s.slots.Save(ctx, slot, s.mgr.Snapshot()); err != nil {
		return "", err
	}
	s.logger.Info("saved slot", zap.String("slot", slot))
	return fmt.Sprintf("Saved to slot %q.", slot), nil
}

func (s *Session) load(ctx context.Context, slot string) (string, error) {
	if s.slots == nil {
		return "", errors.New("save slots are not configured")
	}
	if slot == "" {
		slot = DefaultSlot
	}
	st, err := s.slots.Load(ctx, slot)
	if err != nil {
		return "", err
	}
	if err := s.mgr.Load(st); err != nil {
		return "", fmt.Errorf("failed to restore slot %s: %w", slot, err)
	}
	s.logger.Info("loaded slot", zap.String("slot", slot))
	return fmt.Sprintf("Loaded slot %q.", slot), nil
}

func (s *Session) listSlots(ctx context.Context) (string, error) {
	if s.slots == nil {
		return "", errors.New("save slots are not configured")
	}
	list, err := s.slots.List(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "No saves yet.", nil
	}
	var b strings.Builder
	for _, info := range list {
		fmt.Fprintf(&b, "%-16s turn %-3d %s\n", info.Name, info.Turn, info.SavedAt.Local().Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func help(cmd string) string {
	if cmd != "" {
		if u, ok := parser.UsageFor(cmd); ok {
			return u
		}
		return fmt.Sprintf("No help for %q.", cmd)
	}
	keys := make([]string, 0, len(parser.Usage))
	for k := range parser.Usage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = parser.Usage[k]
	}
	return strings.Join(lines, "\n")
}

func livingIDs(st battle.State) []string {
	var ids []string
	for _, e := range st.Living() {
		ids = append(ids, e.ID)
	}
	return ids
}

// Describe renders the encounter as plain text.
func Describe(st battle.State) string {
	var b strings.Builder
	p := st.Player
	fmt.Fprintf(&b, "%s  Lv %d  HP %d/%d  XP %d  Gold %d\n", p.Name, p.Level, p.HP, p.MaxHP, p.XP, p.Gold)
	if p.Status.Shield > 0 {
		fmt.Fprintf(&b, "  shield %d\n", p.Status.Shield)
	}
	for _, rec := range p.StatusEffects {
		fmt.Fprintf(&b, "  %s x%d (%d turns)\n", rec.ID, rec.Stacks, rec.Duration)
	}
	if !st.InCombat {
		fmt.Fprintf(&b, "Not in combat (%s, %s).", st.Area, st.Difficulty)
		return b.String()
	}
	fmt.Fprintf(&b, "Turn %d\n", st.Turn)
	for i, e := range st.Living() {
		marker := " "
		if e.ID == st.CurrentEnemy {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s%d. %-28s HP %d/%d  posture %d/%d", marker, i+1, e.Name, e.HP, e.MaxHP, e.Posture, e.PostureMax)
		if e.Intent != nil {
			fmt.Fprintf(&b, "  [preparing %s]", e.Intent.Name)
		}
		if e.BrokenTurns > 0 {
			b.WriteString("  [broken]")
		}
		b.WriteString("  (" + e.ID + ")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
