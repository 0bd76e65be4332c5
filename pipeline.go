package framecodec

import (
	"context"
	"sync"
)

// runOrdered computes work(i) for i in [0, n) on up to workers goroutines
// and hands each result to emit in index order. At most workers results are
// held at once. emit may return errStop to end early without an error.
func runOrdered[T any](ctx context.Context, n, workers int, work func(context.Context, int) (T, error), emit func(int, T) error) error {
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := work(ctx, i)
			if err != nil {
				return err
			}
			if err := emit(i, v); err != nil {
				return stopped(err)
			}
		}
		return nil
	}

	type result struct {
		v   T
		err error
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Each batch of up to workers indexes is computed concurrently, then
	// drained in order.
	var wg sync.WaitGroup
	results := make([]result, workers)
	for base := 0; base < n; base += workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := base + workers
		if end > n {
			end = n
		}
		for i := base; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v, err := work(ctx, i)
				results[i-base] = result{v: v, err: err}
			}(i)
		}
		wg.Wait()
		for i := base; i < end; i++ {
			r := results[i-base]
			if r.err != nil {
				return r.err
			}
			if err := emit(i, r.v); err != nil {
				return stopped(err)
			}
			results[i-base] = result{}
		}
	}
	return nil
}

type stopError struct{}

func (stopError) Error() string { return "framecodec: stop" }

// errStop ends runOrdered early without reporting an error.
var errStop error = stopError{}

func stopped(err error) error {
	if err == errStop {
		return nil
	}
	return err
}
