// Package logging builds the process logger and the combat log sink.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger at the named level. Development loggers print
// human-readable lines; production loggers print JSON.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// Combat log channels.
const (
	ChannelCombat = "combat"
	ChannelDanger = "danger"
	ChannelLoot   = "loot"
	ChannelSystem = "system"
)

// Sink receives player-facing log lines.
type Sink interface {
	AddLog(text, channel string)
}

// Line is one combat log entry.
type Line struct {
	Seq     int    `json:"seq"`
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// CombatLog is a bounded, concurrency-safe Sink that mirrors every line to zap.
type CombatLog struct {
	mu    sync.RWMutex
	lines []Line
	limit int
	seq   int
	log   *zap.Logger
}

// NewCombatLog keeps at most limit lines.
func NewCombatLog(limit int, log *zap.Logger) *CombatLog {
	if limit <= 0 {
		limit = 200
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CombatLog{limit: limit, log: log}
}

func (c *CombatLog) AddLog(text, channel string) {
	if channel == "" {
		channel = ChannelSystem
	}
	c.mu.Lock()
	c.seq++
	c.lines = append(c.lines, Line{Seq: c.seq, Channel: channel, Text: text})
	if over := len(c.lines) - c.limit; over > 0 {
		c.lines = append(c.lines[:0:0], c.lines[over:]...)
	}
	c.mu.Unlock()
	c.log.Debug(text, zap.String("channel", channel))
}

// Lines returns the retained lines of a channel, or all lines when channel is empty.
func (c *CombatLog) Lines(channel string) []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		if channel == "" || l.Channel == channel {
			out = append(out, l)
		}
	}
	return out
}

// Since returns the retained lines with a sequence number above seq.
func (c *CombatLog) Since(seq int) []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Line
	for _, l := range c.lines {
		if l.Seq > seq {
			out = append(out, l)
		}
	}
	return out
}

// Discard is a Sink that drops every line.
var Discard Sink = discard{}

type discard struct{}

func (discard) AddLog(string, string) {}
