package bridge

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut runs exec for each call with at most limit concurrent in
// flight, grounded on the pack's own use of golang.org/x/sync/errgroup
// for concurrent fetch-and-combine (MrWong99-glyphoxa's hotctx.Assembler),
// generalized from a fixed three-way fan-out to an arbitrary-width one via
// errgroup.Group.SetLimit. Unlike Assembler.Assemble, one call's failure
// must never abort the others — spec.md §4.6's "partial failure" case — so
// results are collected into a preallocated slice instead of returning on
// the first error.
func fanOut(ctx context.Context, limit int, calls []Call, exec func(ctx context.Context, c Call) Result) []Result {
	results := make([]Result, len(calls))

	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i, call := range calls {
		i, call := i, call
		eg.Go(func() error {
			results[i] = exec(egCtx, call)
			return nil
		})
	}
	eg.Wait() // exec never returns an error to the group, so Wait cannot fail

	return results
}
