package semantic

import (
	"context"
	"fmt"
)

// DerivesFrom walks the base class chain of sym, sym included, and reports
// whether it reaches target before reaching stop. A zero stop never
// matches. The walk fails with ErrCycle if a symbol repeats, and with the
// resolver's error if a base cannot be resolved.
func DerivesFrom(ctx context.Context, r Resolver, sym *Symbol, target, stop Name) (bool, error) {
	seen := make(map[*Symbol]bool)

	for cur := sym; cur != nil; {
		if target.Matches(cur) {
			return true, nil
		}
		if stop.Matches(cur) {
			return false, nil
		}
		if seen[cur] {
			return false, fmt.Errorf("%w: %s", ErrCycle, cur)
		}
		seen[cur] = true

		base, err := r.BaseOf(ctx, cur)
		if err != nil {
			return false, err
		}
		cur = base
	}

	return false, nil
}

// BaseChain returns sym followed by its base classes, outermost last.
func BaseChain(ctx context.Context, r Resolver, sym *Symbol) ([]*Symbol, error) {
	var chain []*Symbol
	seen := make(map[*Symbol]bool)

	for cur := sym; cur != nil; {
		if seen[cur] {
			return chain, fmt.Errorf("%w: %s", ErrCycle, cur)
		}
		seen[cur] = true
		chain = append(chain, cur)

		base, err := r.BaseOf(ctx, cur)
		if err != nil {
			return chain, err
		}
		cur = base
	}

	return chain, nil
}
