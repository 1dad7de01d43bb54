package worker

import "context"

// Fetcher downloads the body of a single rule source
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchJob downloads one source URL
type FetchJob struct {
	Index   int // Position of the URL in the category
	URL     string
	Fetcher Fetcher
	Limiter *Limiter
}

// Execute waits for the host's rate budget, then fetches
func (j *FetchJob) Execute(ctx context.Context) *FetchResult {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.URL); err != nil {
			return &FetchResult{Index: j.Index, URL: j.URL, Error: err}
		}
	}

	body, err := j.Fetcher.Fetch(ctx, j.URL)
	return &FetchResult{
		Index: j.Index,
		URL:   j.URL,
		Body:  body,
		Error: err,
	}
}

// FetchResult is the outcome of one download
type FetchResult struct {
	Index int
	URL   string
	Body  string
	Error error
}

// BatchFetcher downloads every source of a category
type BatchFetcher struct {
	fetcher     Fetcher
	concurrency int
	limiter     *Limiter
}

// NewBatchFetcher creates a batch fetcher.
// concurrency <= 1 fetches sequentially; limiter may be nil.
func NewBatchFetcher(fetcher Fetcher, concurrency int, limiter *Limiter) *BatchFetcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchFetcher{
		fetcher:     fetcher,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// FetchAll fetches urls and returns one result per URL in input order,
// whatever order the downloads complete in.
func (b *BatchFetcher) FetchAll(ctx context.Context, urls []string) []*FetchResult {
	if len(urls) == 0 {
		return []*FetchResult{}
	}

	if b.concurrency == 1 || len(urls) == 1 {
		results := make([]*FetchResult, len(urls))
		for i, url := range urls {
			job := &FetchJob{Index: i, URL: url, Fetcher: b.fetcher, Limiter: b.limiter}
			results[i] = job.Execute(ctx)
		}
		return results
	}

	workers := b.concurrency
	if workers > len(urls) {
		workers = len(urls)
	}

	pool := NewPool[*FetchResult](ctx, workers)
	pool.Start()

	for i, url := range urls {
		job := &FetchJob{Index: i, URL: url, Fetcher: b.fetcher, Limiter: b.limiter}
		if !pool.Submit(job.Execute) {
			break
		}
	}

	return fillMissing(ctx, urls, pool.Wait())
}

// fillMissing reports URLs that never ran because ctx was cancelled
func fillMissing(ctx context.Context, urls []string, results []*FetchResult) []*FetchResult {
	full := make([]*FetchResult, len(urls))
	copy(full, results)

	for i, url := range urls {
		if full[i] != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		full[i] = &FetchResult{Index: i, URL: url, Error: err}
	}
	return full
}
