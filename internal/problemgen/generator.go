package problemgen

import "context"

// Generator produces problem content for a topic and difficulty.
type Generator interface {
	// Generate produces a single validated problem. All configured
	// validators are run before returning. Implementations may fail; callers
	// are expected to fall back to other content sources.
	Generate(ctx context.Context, input GenerateInput) (*Generated, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, input GenerateInput) (*Generated, error)

func (f GeneratorFunc) Generate(ctx context.Context, input GenerateInput) (*Generated, error) {
	return f(ctx, input)
}
