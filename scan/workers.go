package scan

import (
	"context"
	"sync"
)

type portJob struct {
	index int
	port  int
}

// runPortJobs feeds ports from next to a fixed number of workers until next
// returns an error or ctx is done. With a single worker the jobs run one at a
// time in the order next produced them. Callers that need ordered output with
// more workers store results by job index.
func runPortJobs(ctx context.Context, workers int, next func() (int, error), fn func(portJob)) {

	if workers < 1 {
		workers = 1
	}

	jobChan := make(chan portJob, workers)
	wg := &sync.WaitGroup{}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				fn(job)
			}
		}()
	}

feed:
	for i := 0; ; i++ {
		if ctx.Err() != nil {
			break
		}
		port, err := next()
		if err != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobChan <- portJob{index: i, port: port}:
		}
	}

	close(jobChan)
	wg.Wait()
}
