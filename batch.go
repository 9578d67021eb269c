package pagekeep

import (
	"context"
	"sync"
	"time"
)

// Outcome is the result of one document in a batch.
type Outcome struct {
	Result   *ConvertResult // nil on failure
	Err      error
	Duration time.Duration
}

// OK reports whether the document converted.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// ConvertBatch converts inputs concurrently with up to pool.Size()
// converters and returns one outcome per input, in input order.
// A failing document does not affect the others. After ctx is done,
// documents not yet started fail with the context's error.
func ConvertBatch(ctx context.Context, pool *ConverterPool, inputs []Input) []Outcome {
	if len(inputs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(inputs))
	outcomes := make([]Outcome, len(inputs))
	jobs := make(chan int, len(inputs))
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, fail the jobs this worker takes.
				for idx := range jobs {
					outcomes[idx] = Outcome{Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					outcomes[idx] = Outcome{Err: ctx.Err()}
					continue
				}
				start := time.Now()
				res, err := conv.Convert(ctx, inputs[idx])
				outcomes[idx] = Outcome{Result: res, Err: err, Duration: time.Since(start)}
			}
		}()
	}

	wg.Wait()
	return outcomes
}

// Summarize counts successful and failed outcomes.
func Summarize(outcomes []Outcome) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
