package feature

import (
	"context"
	"slices"
)

// EnvironmentExtractor reads the deployment environment from ctx.
type EnvironmentExtractor func(ctx context.Context) string

type environmentStrategy struct {
	environments []string
	extract      EnvironmentExtractor
}

// NewEnvironmentStrategy enables a flag only in the listed environments.
func NewEnvironmentStrategy(extract EnvironmentExtractor, environments ...string) Strategy {
	return &environmentStrategy{environments: environments, extract: extract}
}

func (s *environmentStrategy) Evaluate(ctx context.Context) (bool, error) {
	if s.extract == nil || len(s.environments) == 0 {
		return false, ErrInvalidStrategy
	}
	return slices.Contains(s.environments, s.extract(ctx)), nil
}

// StaticEnvironment returns an extractor that ignores ctx.
func StaticEnvironment(env string) EnvironmentExtractor {
	return func(context.Context) string { return env }
}
