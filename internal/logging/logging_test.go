package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCombatLogRing(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := NewCombatLog(3, zap.New(core))

	c.AddLog("one", ChannelCombat)
	c.AddLog("two", "")
	c.AddLog("three", ChannelLoot)
	c.AddLog("four", ChannelCombat)

	all := c.Lines("")
	require.Len(t, all, 3)
	assert.Equal(t, "two", all[0].Text)
	assert.Equal(t, ChannelSystem, all[0].Channel)
	assert.Equal(t, []Line{{Seq: 4, Channel: ChannelCombat, Text: "four"}}, c.Lines(ChannelCombat))
	assert.Len(t, c.Since(2), 2)
	assert.Equal(t, 4, logs.Len())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)

	l, err := New("debug", true)
	require.NoError(t, err)
	assert.NotNil(t, l)
}
