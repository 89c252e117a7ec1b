package metrics

import (
	"cmp"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"gomeasure/domain/validation"
	"gomeasure/internal/rng"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Bootstrap defaults
const (
	DefaultResamples  = 1000
	DefaultConfidence = 0.95
)

// Observer receives bootstrap timings.
type Observer interface {
	ObserveBootstrap(resamples int, elapsed time.Duration)
}

// BootstrapConfig controls percentile bootstrap intervals. The resample count
// is the only cost knob; there is no wall-clock cutoff.
type BootstrapConfig struct {
	Resamples  int
	Confidence float64

	// Seed is used only when Seeded is set. Unseeded runs draw a fresh seed
	// and log it, which is not suitable for published results.
	Seed   int64
	Seeded bool

	// Workers bounds parallel resampling; 0 means GOMAXPROCS. The result does
	// not depend on it.
	Workers int

	// Statistics names the metrics to interval-estimate; empty means F1 only.
	Statistics []string

	Logger   *slog.Logger
	Observer Observer
}

// DefaultBootstrap is 1000 resamples at 95% confidence with seed 42.
func DefaultBootstrap() BootstrapConfig {
	return BootstrapConfig{
		Resamples:  DefaultResamples,
		Confidence: DefaultConfidence,
		Seed:       42,
		Seeded:     true,
	}
}

func (c BootstrapConfig) withDefaults() BootstrapConfig {
	if c.Resamples == 0 {
		c.Resamples = DefaultResamples
	}
	if c.Confidence == 0 {
		c.Confidence = DefaultConfidence
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if len(c.Statistics) == 0 {
		c.Statistics = []string{validation.MetricF1}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

func (c BootstrapConfig) validate() error {
	if c.Resamples < 1 {
		return fmt.Errorf("bootstrap resamples must be positive, got %d", c.Resamples)
	}
	if !(c.Confidence > 0 && c.Confidence < 1) {
		return fmt.Errorf("bootstrap confidence must be in (0, 1), got %g", c.Confidence)
	}
	for _, name := range c.Statistics {
		if _, ok := statistic(Summary{}, name); !ok {
			return fmt.Errorf("unknown bootstrap statistic %q", name)
		}
	}
	return nil
}

// BootstrapResult holds the intervals and the facts needed to reproduce them.
type BootstrapResult struct {
	Intervals  map[string]validation.Interval
	StdErr     map[string]float64
	Seed       int64
	Resamples  int
	Confidence float64
}

// Bootstrap estimates percentile confidence intervals. Each of the Resamples
// iterations draws n indices uniformly with replacement, recomputes every
// configured statistic on the resample, and the (alpha/2, 1-alpha/2)
// percentiles of the collected values become the bounds. Resample i always
// draws from sub-stream i of the seed, so the outcome is identical for any
// worker count. Percentiles use gonum's stat.LinInterp estimator, which can
// differ slightly from numpy's default linear percentile on small resample
// counts.
func Bootstrap[L cmp.Ordered](predictions, labels []L, cfg BootstrapConfig) (*BootstrapResult, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e, err := encode(predictions, labels)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if !cfg.Seeded {
		seed = rng.RandomSeed()
		cfg.Logger.Warn("bootstrap seed not supplied, intervals are not reproducible without it",
			"component", "bootstrap", "seed", seed)
	}

	start := time.Now()
	dist := make(map[string][]float64, len(cfg.Statistics))
	for _, name := range cfg.Statistics {
		dist[name] = make([]float64, cfg.Resamples)
	}

	n := len(e.truth)
	k := len(e.classes)
	batch := (cfg.Resamples + cfg.Workers - 1) / cfg.Workers

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for lo := 0; lo < cfg.Resamples; lo += batch {
		hi := min(lo+batch, cfg.Resamples)
		g.Go(func() error {
			idx := make([]int, n)
			cm := newConfusion(k)
			for i := lo; i < hi; i++ {
				rng.Derive(seed, rng.LabelBootstrap, uint64(i)).Resample(idx, n)
				cm.reset()
				for _, j := range idx {
					cm.add(e.truth[j], e.predicted[j])
				}
				s := cm.summarize()
				for name, values := range dist {
					values[i], _ = statistic(s, name)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	alpha := 1 - cfg.Confidence
	result := &BootstrapResult{
		Intervals:  make(map[string]validation.Interval, len(dist)),
		StdErr:     make(map[string]float64, len(dist)),
		Seed:       seed,
		Resamples:  cfg.Resamples,
		Confidence: cfg.Confidence,
	}
	for name, values := range dist {
		slices.Sort(values)
		result.Intervals[name] = validation.Interval{
			Lower: stat.Quantile(alpha/2, stat.LinInterp, values, nil),
			Upper: stat.Quantile(1-alpha/2, stat.LinInterp, values, nil),
		}
		if len(values) > 1 {
			if sd, err := stats.StandardDeviationSample(values); err == nil {
				result.StdErr[name] = sd
			}
		}
	}

	elapsed := time.Since(start)
	if cfg.Observer != nil {
		cfg.Observer.ObserveBootstrap(cfg.Resamples, elapsed)
	}

	f1 := result.Intervals[validation.MetricF1]
	cfg.Logger.Debug("bootstrap complete",
		"component", "bootstrap",
		"resamples", cfg.Resamples,
		"workers", cfg.Workers,
		"seed", seed,
		"f1_lower", f1.Lower,
		"f1_upper", f1.Upper,
		"elapsed", elapsed)

	return result, nil
}
