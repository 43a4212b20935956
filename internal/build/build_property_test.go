//go:build property

package build

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestBuildMetricsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("successes and failures add up to the total", prop.ForAll(
		func(outcomes []bool) bool {
			m := NewBuildMetrics()
			for _, failed := range outcomes {
				r := Result{Duration: time.Millisecond}
				if failed {
					r.Error = errors.New("boom")
				}
				m.RecordBuild(r)
			}
			snap := m.GetSnapshot()
			return snap.TotalBuilds == int64(len(outcomes)) &&
				snap.SuccessfulBuilds+snap.FailedBuilds == snap.TotalBuilds
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("success rate stays within 0 and 100", prop.ForAll(
		func(outcomes []bool) bool {
			m := NewBuildMetrics()
			for _, failed := range outcomes {
				r := Result{}
				if failed {
					r.Error = errors.New("boom")
				}
				m.RecordBuild(r)
			}
			rate := m.GetSuccessRate()
			return rate >= 0 && rate <= 100
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("average duration is bounded by the extremes", prop.ForAll(
		func(millis []int) bool {
			if len(millis) == 0 {
				return true
			}
			m := NewBuildMetrics()
			lo, hi := millis[0], millis[0]
			for _, ms := range millis {
				lo, hi = min(lo, ms), max(hi, ms)
				m.RecordBuild(Result{Duration: time.Duration(ms) * time.Millisecond})
			}
			avg := m.GetSnapshot().AverageDuration
			return avg >= time.Duration(lo)*time.Millisecond && avg <= time.Duration(hi)*time.Millisecond
		},
		gen.SliceOf(gen.IntRange(0, 5000)),
	))

	properties.TestingRun(t)
}
