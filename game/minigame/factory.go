package minigame

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/grid-tactics/game/scenario"
)

// Option configures a minigame
type Option func(*options)

type options struct {
	autoAI bool
	log    logrus.FieldLogger
}

// WithAutoAI plays adversary turns automatically after every party action
func WithAutoAI(enabled bool) Option {
	return func(o *options) { o.autoAI = enabled }
}

// WithLogger replaces the package logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds the scenario and returns an initialized minigame of the
// declared type.
func New(def *scenario.Definition, opts ...Option) (Minigame, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: definition is nil", scenario.ErrInvalidScenario)
	}

	var build func(*scenario.Built) Minigame
	switch def.MinigameType {
	case scenario.TypeCombat:
		build = func(b *scenario.Built) Minigame { return NewCombat(def, b, opts...) }
	case scenario.TypeObstacle:
		build = func(b *scenario.Built) Minigame { return NewObstacle(def, b, opts...) }
	case scenario.TypeTrading:
		return nil, fmt.Errorf("%w: trading minigames are not yet implemented", ErrUnsupportedMinigame)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMinigame, def.MinigameType)
	}

	built, err := scenario.Build(def)
	if err != nil {
		return nil, err
	}
	game := build(built)
	if err := game.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s minigame: %w", def.MinigameType, err)
	}
	return game, nil
}
