package ports

import (
	"context"
)

// Chooser is the injected decision capability behind intelligent_select:
// given candidates and a natural-language criterion it returns the index of
// the chosen candidate. Implementations may call out to an LLM or any other
// external decider; the engine assumes nothing about determinism or
// side effects and bounds every call with the step timeout.
type Chooser interface {
	Choose(ctx context.Context, candidates []interface{}, criterion string) (int, error)
}
