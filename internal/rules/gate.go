package rules

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/suderio/draconic-arena/internal/data"
	"github.com/suderio/draconic-arena/internal/engine"
)

// Gate evaluates ability requires expressions for the decision engine.
// An expression that fails at runtime lets the ability through.
type Gate struct {
	reg *Registry
	log *zap.Logger
}

// NewGate compiles every requires expression in the catalog up front.
func NewGate(reg *Registry, cat *data.Catalog, log *zap.Logger) (*Gate, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var errs []error
	for id, def := range cat.Abilities {
		if def.Requires == "" {
			continue
		}
		if _, err := reg.Compile(def.Requires); err != nil {
			errs = append(errs, fmt.Errorf("ability %s: %w", id, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Gate{reg: reg, log: log}, nil
}

func (g *Gate) Allows(def data.AbilityDef, e *engine.Enemy, p *engine.Player) bool {
	if def.Requires == "" {
		return true
	}
	out, err := g.reg.Eval(def.Requires, map[string]any{
		"enemy":   EnemyVars(e),
		"player":  PlayerVars(p),
		"ability": AbilityVars(def),
	})
	if err != nil {
		g.log.Warn("ability gate failed", zap.String("ability", def.ID), zap.Error(err))
		return true
	}
	ok, isBool := out.(bool)
	if !isBool {
		g.log.Warn("ability gate is not boolean", zap.String("ability", def.ID), zap.Any("value", out))
		return true
	}
	return ok
}
