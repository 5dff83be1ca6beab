// Package persistence stores combat history as a JSONL event journal and
// snapshots of whole encounters in SQLite save slots.
package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/suderio/draconic-arena/internal/engine"
)

// EventWrapper facilitates serialization of polymorphic events.
type EventWrapper struct {
	Type  engine.EventType `json:"type"`
	Event json.RawMessage  `json:"data"`
}

// Journal is an append-only JSONL log of combat events. It implements
// engine.Emitter so it can be subscribed to a battle's event bus.
type Journal struct {
	mu   sync.Mutex
	file *os.File
}

// OpenJournal opens or creates the file at path for appending lines.
func OpenJournal(path string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	return &Journal{file: file}, nil
}

// Emit appends evt.
func (j *Journal) Emit(evt engine.Event) error {
	return j.Append(evt)
}

// Append marshals evt to one JSONL line and syncs the file.
func (j *Journal) Append(evt engine.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", evt.Type(), err)
	}

	line, err := json.Marshal(EventWrapper{Type: evt.Type(), Event: data})
	if err != nil {
		return fmt.Errorf("failed to marshal wrapper: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.file.Write(append(line, '\n')); err != nil {
		return err
	}
	return j.file.Sync()
}

// Load replays every line and unpacks it into its concrete event type.
func (j *Journal) Load() ([]engine.Event, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Seek(0, 0); err != nil {
		return nil, err
	}

	var events []engine.Event
	scanner := bufio.NewScanner(j.file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var wrapper EventWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("line %d: failed to decode wrapper: %w", line, err)
		}

		evt, err := newEvent(wrapper.Type)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := json.Unmarshal(wrapper.Event, evt); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse %s event: %w", line, wrapper.Type, err)
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func newEvent(t engine.EventType) (engine.Event, error) {
	switch t {
	case engine.EventBattleStarted:
		return &engine.BattleStartedEvent{}, nil
	case engine.EventPlayerAction:
		return &engine.PlayerActionEvent{}, nil
	case engine.EventEnemyAction:
		return &engine.EnemyActionEvent{}, nil
	case engine.EventPostureBroken:
		return &engine.PostureBrokenEvent{}, nil
	case engine.EventAffixTriggered:
		return &engine.AffixTriggeredEvent{}, nil
	case engine.EventPlayerDefeated:
		return &engine.PlayerDefeatedEvent{}, nil
	case engine.EventEnemyDefeated:
		return &engine.EnemyDefeatedEvent{}, nil
	case engine.EventLootDropped:
		return &engine.LootDroppedEvent{}, nil
	case engine.EventBattleEnded:
		return &engine.BattleEndedEvent{}, nil
	}
	return nil, fmt.Errorf("unknown event type in journal: %s", t)
}

// Close handles safe shutdown.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
