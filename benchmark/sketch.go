package main

import (
	"math"
	"sort"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/aclements/go-moremath/stats"
)

// distributionSketch collects operation latencies in microseconds.
type distributionSketch struct {
	sketch *ddsketch.DDSketch
}

func newDistributionSketch() *distributionSketch {
	sketch, err := ddsketch.NewDefaultDDSketch(0.01)
	if err != nil {
		panic(err)
	}
	return &distributionSketch{sketch}
}

func (t *distributionSketch) record(micros float64) {
	if t == nil {
		return
	}
	// latencies below the sketch's range are not interesting
	if micros <= 0 {
		return
	}
	t.sketch.Add(micros)
}

// getQuantiles returns NaN for every quantile when nothing was recorded.
func (t *distributionSketch) getQuantiles(q []float64) []float64 {
	res, err := t.sketch.GetValuesAtQuantiles(q)
	if err != nil {
		res = make([]float64, len(q))
		for i := range res {
			res[i] = math.NaN()
		}
	}
	return res
}

// moments returns mean, stddev, p5, p50 and p95 of xs.
func moments(xs []float64) []float64 {
	s := stats.Sample{Xs: append([]float64(nil), xs...)}
	sort.Float64s(s.Xs)
	s.Sorted = true
	return []float64{s.Mean(), s.StdDev(), s.Quantile(0.05), s.Quantile(0.50), s.Quantile(0.95)}
}
