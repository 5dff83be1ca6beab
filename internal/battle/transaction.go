package battle

import (
	"github.com/suderio/draconic-arena/internal/engine"
	"github.com/suderio/draconic-arena/internal/logging"
)

// transaction stages the events and log lines of one command. Nothing reaches
// the emitter or the sink until the outermost commit, so a listener never sees
// a half-applied turn.
type transaction struct {
	depth  int
	events []engine.Event
	lines  []staged
}

type staged struct {
	text    string
	channel string
}

func (m *Manager) begin() {
	if m.tx == nil {
		m.tx = &transaction{}
	}
	m.tx.depth++
}

func (m *Manager) commit() {
	if m.tx == nil {
		return
	}
	m.tx.depth--
	if m.tx.depth > 0 {
		return
	}
	tx := m.tx
	m.tx = nil

	for _, l := range tx.lines {
		m.sup.Run("log", func() error {
			m.sink.AddLog(l.text, l.channel)
			return nil
		})
	}
	// Each event is delivered on its own so one failing listener call
	// cannot swallow the rest of the turn.
	for _, evt := range tx.events {
		m.sup.Run("emit "+string(evt.Type()), func() error {
			return m.emitter.Emit(evt)
		})
	}
}

// publish stages an event along with its log line.
func (m *Manager) publish(evt engine.Event) {
	m.begin()
	defer m.commit()
	m.tx.events = append(m.tx.events, evt)
	m.tx.lines = append(m.tx.lines, staged{text: evt.Message(), channel: channelFor(evt.Type())})
}

func (m *Manager) addLog(text, channel string) {
	m.begin()
	defer m.commit()
	m.tx.lines = append(m.tx.lines, staged{text: text, channel: channel})
}

func (m *Manager) publishHooks(enemyID string, hooks []engine.HookEffect) {
	for _, h := range hooks {
		m.publish(&engine.AffixTriggeredEvent{EnemyID: enemyID, Effect: h})
	}
}

func channelFor(t engine.EventType) string {
	switch t {
	case engine.EventEnemyAction, engine.EventAffixTriggered, engine.EventPlayerDefeated:
		return logging.ChannelDanger
	case engine.EventEnemyDefeated, engine.EventLootDropped:
		return logging.ChannelLoot
	case engine.EventBattleStarted, engine.EventBattleEnded:
		return logging.ChannelSystem
	}
	return logging.ChannelCombat
}
