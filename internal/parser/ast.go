package parser

import "strings"

// Command represents one line typed at the arena prompt.
type Command struct {
	Start      *StartCmd      `parser:"( @@"`
	Attack     *AttackCmd     `parser:"| @@"`
	Defend     *DefendCmd     `parser:"| @@"`
	Status     *StatusCmd     `parser:"| @@"`
	Save       *SaveCmd       `parser:"| @@"`
	Load       *LoadCmd       `parser:"| @@"`
	Slots      *SlotsCmd      `parser:"| @@"`
	Difficulty *DifficultyCmd `parser:"| @@"`
	Area       *AreaCmd       `parser:"| @@"`
	Help       *HelpCmd       `parser:"| @@ )"`
}

// StartCmd opens an encounter: start goblin_raider group: 2 affix: vampiric and: thorns
type StartCmd struct {
	Keyword  string      `parser:"@\"start\""`
	Template string      `parser:"@Ident"`
	Options  []*StartOpt `parser:"@@*"`
}

// StartOpt is one optional modifier of StartCmd.
type StartOpt struct {
	Group   int      `parser:"( \"group\" \":\" @Int"`
	Affixes []string `parser:"| \"affix\" \":\" @Ident ( \"and\" \":\" @Ident )*"`
	Elite   bool     `parser:"| @\"elite\" )"`
}

// GroupSize is the forced group size, or 0 when none was given.
func (c *StartCmd) GroupSize() int {
	n := 0
	for _, o := range c.Options {
		if o.Group > 0 {
			n = o.Group
		}
	}
	return n
}

// ForcedAffixes collects every affix option in order.
func (c *StartCmd) ForcedAffixes() []string {
	var out []string
	for _, o := range c.Options {
		out = append(out, o.Affixes...)
	}
	return out
}

// ForceElite reports whether the elite flag was given.
func (c *StartCmd) ForceElite() bool {
	for _, o := range c.Options {
		if o.Elite {
			return true
		}
	}
	return false
}

// AttackCmd is any damaging player action, optionally aimed: heavy at: goblin_raider-2
type AttackCmd struct {
	Action string `parser:"@(\"attack\"|\"heavy\"|\"interrupt\"|\"spell\"|\"curse\"|\"sweep\")"`
	Target string `parser:"( \"at\" \":\" @(Ident|Int) )?"`
}

// Verb is the lowercased action name.
func (c *AttackCmd) Verb() string {
	return strings.ToLower(c.Action)
}

// DefendCmd spends the turn raising a shield.
type DefendCmd struct {
	Keyword string `parser:"@(\"defend\"|\"pass\")"`
}

// StatusCmd prints the current encounter.
type StatusCmd struct {
	Keyword string `parser:"@\"status\""`
}

// SaveCmd snapshots the encounter into a slot.
type SaveCmd struct {
	Keyword string `parser:"@\"save\""`
	Slot    string `parser:"( @Ident | @Int )?"`
}

// LoadCmd restores a slot.
type LoadCmd struct {
	Keyword string `parser:"@\"load\""`
	Slot    string `parser:"( @Ident | @Int )?"`
}

// SlotsCmd lists saved slots.
type SlotsCmd struct {
	Keyword string `parser:"@\"slots\""`
}

// DifficultyCmd changes the difficulty of the next encounter.
type DifficultyCmd struct {
	Keyword string `parser:"@\"difficulty\""`
	ID      string `parser:"@Ident"`
}

// AreaCmd moves to another area.
type AreaCmd struct {
	Keyword string `parser:"@\"area\""`
	ID      string `parser:"@Ident"`
}

// HelpCmd provides command guidance.
type HelpCmd struct {
	Keyword string `parser:"@\"help\""`
	Command string `parser:"( @Ident | @Keyword )?"`
}
