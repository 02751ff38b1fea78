package strength

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the batch concurrency used when none is given
const DefaultWorkers = 4

// Request names one classification
type Request struct {
	Institution Institution
	Segment     Segment
	Date        time.Time
}

// Outcome is the result of one Request. Err is set when the request could
// not be classified; Result is then the zero value.
type Outcome struct {
	Request Request
	Result  Result
	Err     error
}

// Requests builds the cross product of dates, institutions and segments,
// keeping only pairs the history has a series for.
func Requests(h *History, dates []time.Time, insts []Institution, segs []Segment) []Request {
	have := make(map[Key]bool)
	for _, k := range h.Keys() {
		have[k] = true
	}

	var reqs []Request
	for _, d := range dates {
		for _, inst := range insts {
			for _, seg := range segs {
				if !have[Key{Institution: inst, Segment: seg}] {
					continue
				}
				reqs = append(reqs, Request{Institution: inst, Segment: seg, Date: NormalizeDate(d)})
			}
		}
	}
	return reqs
}

// Analyze classifies every request using up to workers goroutines. Outcomes
// are returned in request order. A failed request is reported in its Outcome
// and does not stop the batch; only cancellation of ctx does.
func Analyze(ctx context.Context, c *Classifier, reqs []Request, workers int) ([]Outcome, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	outcomes := make([]Outcome, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := c.Classify(req.Institution, req.Segment, req.Date)
			outcomes[i] = Outcome{Request: req, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Split separates successful results from failed outcomes
func Split(outcomes []Outcome) ([]Result, []Outcome) {
	var results []Result
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
			continue
		}
		results = append(results, o.Result)
	}
	return results, failed
}
