package output

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
)

// Timing summarizes how long the evaluated checks took, in milliseconds.
// Skipped checks are not counted.
type Timing struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Max   float64 `json:"max"`
}

// timings records check durations in microseconds, up to ten minutes.
type timings struct {
	histogram *hdrhistogram.Histogram
}

func newTimings() *timings {
	return &timings{histogram: hdrhistogram.New(1, 600_000_000, 3)}
}

func (t *timings) add(result *runner.RunResult) {
	for _, r := range result.Results {
		if r.Skipped {
			continue
		}
		us := r.Duration.Microseconds()
		if us < 1 {
			us = 1
		}
		_ = t.histogram.RecordValue(us)
	}
}

// summary returns nil when nothing was recorded.
func (t *timings) summary() *Timing {
	if t.histogram.TotalCount() == 0 {
		return nil
	}
	ms := func(us int64) float64 {
		return float64(us) / float64(time.Millisecond/time.Microsecond)
	}
	return &Timing{
		Count: int(t.histogram.TotalCount()),
		Min:   ms(t.histogram.Min()),
		Mean:  t.histogram.Mean() / 1000,
		P50:   ms(t.histogram.ValueAtQuantile(50)),
		P95:   ms(t.histogram.ValueAtQuantile(95)),
		P99:   ms(t.histogram.ValueAtQuantile(99)),
		Max:   ms(t.histogram.Max()),
	}
}
