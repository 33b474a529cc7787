package ports

import "context"

// TextGenerator is the single external capability the orchestrator depends
// on: produce text for a prompt. The model hint is optional; an empty hint
// selects the implementation's default model.
//
// Implementations must distinguish the two failure shapes callers care
// about: an empty string with a nil error is a degenerate success, while an
// error (including domain.ErrGeneratorUnavailable for missing credentials)
// is a failure. Steps apply different fallbacks to each.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, modelHint string) (string, error)
}

// GeneratorFunc adapts a plain function to the TextGenerator interface.
type GeneratorFunc func(ctx context.Context, prompt string, modelHint string) (string, error)

// Generate implements TextGenerator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, modelHint string) (string, error) {
	return f(ctx, prompt, modelHint)
}
