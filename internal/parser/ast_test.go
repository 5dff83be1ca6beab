package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/draconic-arena/internal/parser"
)

func TestParseStart(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", "start goblin_raider group: 3 affix: vampiric and: thorns elite")
	require.NoError(t, err)
	require.NotNil(t, cmd.Start)
	assert.Equal(t, "goblin_raider", cmd.Start.Template)
	assert.Equal(t, 3, cmd.Start.GroupSize())
	assert.Equal(t, []string{"vampiric", "thorns"}, cmd.Start.ForcedAffixes())
	assert.True(t, cmd.Start.ForceElite())
}

func TestParseStartBare(t *testing.T) {
	cmd, err := parser.Build().ParseString("", "START training_dummy")
	require.NoError(t, err)
	require.NotNil(t, cmd.Start)
	assert.Zero(t, cmd.Start.GroupSize())
	assert.Empty(t, cmd.Start.ForcedAffixes())
	assert.False(t, cmd.Start.ForceElite())
}

func TestParseAttacks(t *testing.T) {
	p := parser.Build()
	tests := []struct {
		input  string
		verb   string
		target string
	}{
		{"attack", "attack", ""},
		{"heavy at: goblin_raider-2", "heavy", "goblin_raider-2"},
		{"Sweep", "sweep", ""},
		{"interrupt at: void_wyrm-1", "interrupt", "void_wyrm-1"},
		{"spell at: cave_bat", "spell", "cave_bat"},
		{"curse", "curse", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := p.ParseString("", tt.input)
			require.NoError(t, err)
			require.NotNil(t, cmd.Attack)
			assert.Equal(t, tt.verb, cmd.Attack.Verb())
			assert.Equal(t, tt.target, cmd.Attack.Target)
		})
	}
}

func TestParseUtilityCommands(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", "defend")
	require.NoError(t, err)
	assert.NotNil(t, cmd.Defend)

	cmd, err = p.ParseString("", "pass")
	require.NoError(t, err)
	assert.NotNil(t, cmd.Defend)

	cmd, err = p.ParseString("", "save before_boss")
	require.NoError(t, err)
	require.NotNil(t, cmd.Save)
	assert.Equal(t, "before_boss", cmd.Save.Slot)

	cmd, err = p.ParseString("", "load")
	require.NoError(t, err)
	require.NotNil(t, cmd.Load)
	assert.Empty(t, cmd.Load.Slot)

	cmd, err = p.ParseString("", "difficulty hard")
	require.NoError(t, err)
	require.NotNil(t, cmd.Difficulty)
	assert.Equal(t, "hard", cmd.Difficulty.ID)

	cmd, err = p.ParseString("", "area frostpeak")
	require.NoError(t, err)
	require.NotNil(t, cmd.Area)
	assert.Equal(t, "frostpeak", cmd.Area.ID)

	cmd, err = p.ParseString("", "help heavy")
	require.NoError(t, err)
	require.NotNil(t, cmd.Help)
	assert.Equal(t, "heavy", cmd.Help.Command)

	cmd, err = p.ParseString("", "status")
	require.NoError(t, err)
	assert.NotNil(t, cmd.Status)

	cmd, err = p.ParseString("", "slots")
	require.NoError(t, err)
	assert.NotNil(t, cmd.Slots)
}

func TestParseRejectsMalformed(t *testing.T) {
	p := parser.Build()
	for _, input := range []string{"start", "attack at:", "start goblin_raider group: many", "dance"} {
		_, err := p.ParseString("", input)
		assert.Error(t, err, input)
	}
}

func TestMapError(t *testing.T) {
	err := parser.MapError("heavy at:", assert.AnError)
	assert.EqualError(t, err, "The command heavy must be: "+parser.Usage["attack"])

	err = parser.MapError("dance wildly", assert.AnError)
	assert.EqualError(t, err, "I wasn't able to understand your command")

	err = parser.MapError("   ", assert.AnError)
	assert.EqualError(t, err, "I wasn't able to understand your command")
}
