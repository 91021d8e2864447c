package feature

import (
	"context"
	"errors"
	"sync"
)

// Flag is a named switch with an optional rollout strategy.
type Flag struct {
	Name        string
	Description string
	Enabled     bool
	Strategy    Strategy
}

// Strategy decides whether an enabled flag applies to ctx.
type Strategy interface {
	Evaluate(ctx context.Context) (bool, error)
}

// Provider evaluates and toggles flags.
type Provider interface {
	// IsEnabled returns ErrFlagNotFound for unknown flags.
	IsEnabled(ctx context.Context, name string) (bool, error)
	SetEnabled(ctx context.Context, name string, enabled bool) error
}

// MemoryProvider keeps flags in process memory.
type MemoryProvider struct {
	mu    sync.RWMutex
	flags map[string]Flag
}

var _ Provider = (*MemoryProvider)(nil)

func NewMemoryProvider(flags ...*Flag) (*MemoryProvider, error) {
	p := &MemoryProvider{flags: make(map[string]Flag, len(flags))}
	for _, f := range flags {
		if f == nil {
			continue
		}
		if f.Name == "" {
			return nil, errors.Join(ErrInvalidFlag, errors.New("flag name cannot be empty"))
		}
		p.flags[f.Name] = *f
	}
	return p, nil
}

func (p *MemoryProvider) IsEnabled(ctx context.Context, name string) (bool, error) {
	p.mu.RLock()
	f, ok := p.flags[name]
	p.mu.RUnlock()

	if !ok {
		return false, ErrFlagNotFound
	}
	if !f.Enabled {
		return false, nil
	}
	if f.Strategy == nil {
		return true, nil
	}
	return f.Strategy.Evaluate(ctx)
}

func (p *MemoryProvider) SetEnabled(_ context.Context, name string, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.flags[name]
	if !ok {
		return ErrFlagNotFound
	}
	f.Enabled = enabled
	p.flags[name] = f
	return nil
}

// Enabled reports whether name is on, treating lookup errors as off.
func Enabled(ctx context.Context, p Provider, name string) bool {
	if p == nil {
		return false
	}
	on, err := p.IsEnabled(ctx, name)
	return err == nil && on
}
