package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/yangl1996/seenset"
	"github.com/yangl1996/seenset/hasher"
	"github.com/yangl1996/seenset/workload"
)

// membership is what every compared strategy offers.
type membership interface {
	Insert(v string) bool
	Contains(v string) bool
}

// mapSet keys a map by the values themselves. With clone it copies each
// value before keeping it, like a caller who only borrowed the value must.
type mapSet struct {
	m     map[string]struct{}
	clone bool
}

func (s *mapSet) Insert(v string) bool {
	if _, there := s.m[v]; there {
		return false
	}
	if s.clone {
		v = strings.Clone(v)
	}
	s.m[v] = struct{}{}
	return true
}

func (s *mapSet) Contains(v string) bool {
	_, there := s.m[v]
	return there
}

// newSeenSet builds a seen-set of capacity n with the named value hasher.
// Deterministic value hashers are paired with a table hasher of the same
// family.
func newSeenSet(name string, key [hasher.KeySize]byte, n int) (membership, error) {
	switch name {
	case "random":
		return seenset.WithCapacity[string](n), nil
	case "siphash":
		return seenset.WithCapacityAndHashers[string](n,
			hasher.NewSipHash[string](key, hasher.String),
			hasher.NewSipHash[uint64](key, hasher.Uint64Encoder)), nil
	case "xxhash":
		return seenset.WithCapacityAndHashers[string](n,
			hasher.NewXXHash[string](hasher.String),
			hasher.NewXXHash[uint64](hasher.Uint64Encoder)), nil
	case "blake2b":
		vh, err := hasher.NewBlake2b[string](key[:], hasher.String)
		if err != nil {
			return nil, err
		}
		return seenset.WithCapacityAndHashers[string](n, vh, hasher.NewXXHash[uint64](hasher.Uint64Encoder)), nil
	}
	return nil, ConfigError{"hasher", fmt.Sprintf("unknown hasher %q", name)}
}

func newStrategy(name, hasherName string, key [hasher.KeySize]byte, n int) (membership, error) {
	switch name {
	case "seenset":
		return newSeenSet(hasherName, key, n)
	case "map-clone":
		return &mapSet{make(map[string]struct{}, n), true}, nil
	case "map-ref":
		return &mapSet{make(map[string]struct{}, n), false}, nil
	}
	return nil, ConfigError{"strategies", fmt.Sprintf("unknown strategy %q", name)}
}

// VerifyError reports a strategy giving a wrong answer.
type VerifyError struct {
	Strategy string
	Phase    string
	Index    int
}

func (e VerifyError) Error() string {
	return fmt.Sprintf("%s gave a wrong answer in the %s phase for value %d", e.Strategy, e.Phase, e.Index)
}

// stream is a scenario materialized into values.
type stream struct {
	values   []string
	first    []bool // first[i] is whether values[i] occurs for the first time
	distinct int
}

func newStream(s Scenario, rng *rand.Rand) stream {
	var values []string
	switch s.Kind {
	case kindLongStrings:
		values = workload.LongStrings(s.Count)
	case kindTree:
		values = workload.Tree(s.Depth, s.Fanout)
	}
	res := stream{distinct: len(values)}
	if s.Revisits > 0 {
		values = workload.Revisits(values, workload.NewSoliton(rng, s.Revisits), rng)
	}
	res.values = values
	res.first = make([]bool, len(values))
	seen := make(map[string]struct{}, res.distinct)
	for i, v := range values {
		if _, there := seen[v]; !there {
			seen[v] = struct{}{}
			res.first[i] = true
		}
	}
	return res
}

// runner executes the configured scenarios.
type runner struct {
	cfg Config
	key [hasher.KeySize]byte
	log *slog.Logger
	out io.Writer
}

type result struct {
	strategy string
	runs     []float64 // seconds per run
	latency  *distributionSketch
}

func newRunner(cfg Config, log *slog.Logger, out io.Writer) (*runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key, _ := cfg.HasherKey()
	return &runner{cfg, key, log, out}, nil
}

func (r *runner) runOnce(name string, st stream, lat *distributionSketch) (time.Duration, error) {
	m, err := newStrategy(name, r.cfg.Hasher, r.key, st.distinct)
	if err != nil {
		return 0, err
	}
	return exercise(name, m, st, lat, r.cfg.Sample)
}

// exercise feeds the stream to m in three phases: insert everything, insert
// everything again, then query everything. Every answer is checked against
// the stream, and every sample-th insert is timed into lat.
func exercise(name string, m membership, st stream, lat *distributionSketch, sample int) (time.Duration, error) {
	start := time.Now()
	for i, v := range st.values {
		var got bool
		if i%sample == 0 {
			t := time.Now()
			got = m.Insert(v)
			lat.record(float64(time.Since(t).Nanoseconds()) / 1000)
		} else {
			got = m.Insert(v)
		}
		if got != st.first[i] {
			return 0, VerifyError{name, "insert", i}
		}
	}
	for i, v := range st.values {
		if m.Insert(v) {
			return 0, VerifyError{name, "reinsert", i}
		}
	}
	for i, v := range st.values {
		if !m.Contains(v) {
			return 0, VerifyError{name, "contains", i}
		}
	}
	return time.Since(start), nil
}

func (r *runner) runScenario(s Scenario, rng *rand.Rand) ([]result, error) {
	st := newStream(s, rng)
	r.log.Info("scenario ready", "name", s.Name, "values", len(st.values), "distinct", st.distinct)
	results := make([]result, 0, len(r.cfg.Strategies))
	for _, name := range r.cfg.Strategies {
		res := result{strategy: name, latency: newDistributionSketch()}
		for i := 0; i < r.cfg.Runs; i++ {
			d, err := r.runOnce(name, st, res.latency)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
			}
			r.log.Debug("run finished", "scenario", s.Name, "strategy", name, "run", i, "duration", d)
			res.runs = append(res.runs, d.Seconds())
		}
		results = append(results, res)
	}
	fmt.Fprintf(r.out, "# scenario %s: %d values, %d distinct\n", s.Name, len(st.values), st.distinct)
	for _, res := range results {
		r.report(res)
	}
	return results, nil
}

func (r *runner) report(res result) {
	m := moments(res.runs)
	q := res.latency.getQuantiles([]float64{0.50, 0.99})
	fmt.Fprintf(r.out, "%s\tmean %.3fms\tstddev %.3fms\tp5 %.3fms\tp50 %.3fms\tp95 %.3fms\top p50 %.3fus\top p99 %.3fus\n",
		res.strategy, m[0]*1000, m[1]*1000, m[2]*1000, m[3]*1000, m[4]*1000, q[0], q[1])
}

// run executes every scenario and prints a summary per scenario.
func (r *runner) run() error {
	rng := rand.New(rand.NewSource(r.cfg.Seed))
	fmt.Fprintln(r.out, "# hasher", r.cfg.Hasher, "runs", r.cfg.Runs)
	fmt.Fprintln(r.out, "# columns: strategy, run time mean, stddev, p5, p50, p95, op latency p50, p99")
	for _, s := range r.cfg.Scenarios {
		if _, err := r.runScenario(s, rng); err != nil {
			return err
		}
	}
	if rss, ok := peakRSS(); ok {
		fmt.Fprintf(r.out, "# peak rss %.1f MiB\n", float64(rss)/(1<<20))
	}
	return nil
}
