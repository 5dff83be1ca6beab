package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSupervisorContainsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sup := NewSupervisor(zap.New(core))

	assert.True(t, sup.Run("ok", func() error { return nil }))
	assert.False(t, sup.Run("emit", func() error { return errors.New("disk full") }))
	assert.False(t, sup.Run("hook", func() error { panic("nil enemy") }))
	assert.Equal(t, 2, sup.Failures())

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "turn step failed", entries[0].Message)
		assert.Equal(t, "emit", entries[0].ContextMap()["step"])
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "nil enemy", entries[1].ContextMap()["panic"])
	}
}

func TestSupervisorNilLogger(t *testing.T) {
	sup := NewSupervisor(nil)
	assert.False(t, sup.Run("step", func() error { panic(errors.New("boom")) }))
	assert.Equal(t, 1, sup.Failures())
}
