package tab

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/staats/staats/pkg/types"
)

// GenerateBatch runs every tab of a plan, at most e.workers tables at a
// time. A failing table does not abort the batch: the failure is logged
// and its slot in the result slice holds an empty result, so the output
// keeps one entry per tab in plan order. The only error returned is a
// context cancellation.
func (e *Engine) GenerateBatch(ctx context.Context, data *types.Dataset, plan *types.TabPlan) ([]*Result, error) {
	results := make([]*Result, len(plan.Tabs))
	sem := semaphore.NewWeighted(int64(e.workers))

	var wg sync.WaitGroup
	for i, def := range plan.Tabs {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int, def types.TabDefinition) {
			defer sem.Release(1)
			defer wg.Done()

			res, err := e.Generate(data, def, plan)
			if err != nil {
				log.Printf("WARN: plan %s tab %q failed: %v", plan.Name, def.Title, err)
				results[i] = emptyResult(def.Title)
				return
			}
			results[i] = res
		}(i, def)
	}
	wg.Wait()
	return results, nil
}
