package chooser

import (
	"context"
	"fmt"
)

// Func adapts a plain function into a Chooser. Test stubs and embedded
// deciders register this way.
type Func func(ctx context.Context, candidates []interface{}, criterion string) (int, error)

func (f Func) Choose(ctx context.Context, candidates []interface{}, criterion string) (int, error) {
	return f(ctx, candidates, criterion)
}

// Fixed always picks the same index, failing when it does not exist among
// the candidates. Useful for deterministic tests and dry runs.
type Fixed struct {
	Index int
}

func (f Fixed) Choose(ctx context.Context, candidates []interface{}, criterion string) (int, error) {
	if f.Index < 0 || f.Index >= len(candidates) {
		return 0, fmt.Errorf("fixed index %d not among %d candidates", f.Index, len(candidates))
	}
	return f.Index, nil
}
