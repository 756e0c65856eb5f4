// Package engine runs the generational GA over tablature candidates.
// Grounded on the usual loop: evaluate, select, recombine, mutate, replace
// with elitism, tracking the best candidate ever seen.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/alitto/pond"
	"github.com/google/uuid"
	"github.com/jsphweid/fretwise/chromosome"
	"github.com/jsphweid/fretwise/fitness"
)

// Termination reasons reported on Result.TerminatedBy.
const (
	TerminatedMaxGenerations = "max_generations"
	TerminatedStall          = "stall"
	TerminatedTarget         = "target_reached"
	TerminatedCancelled      = "cancelled"
)

// ConfigurationError reports an invalid engine configuration. Checked once
// at construction, never at run time.
type ConfigurationError struct {
	Detail string
}

func (e ConfigurationError) Error() string {
	return "bad engine configuration: " + e.Detail
}

// Config is the flat run configuration.
type Config struct {
	PopulationSize int             `yaml:"population_size"`
	MaxGenerations int             `yaml:"max_generations"`
	StallLimit     int             `yaml:"stall_limit"`    // 0 disables early stopping
	TargetFitness  *float64        `yaml:"target_fitness"` // nil disables the target check
	CrossoverRate  float64         `yaml:"crossover_rate"` // probability a parent pair recombines
	MutationRate   float64         `yaml:"mutation_rate"`  // per-gene probability
	Elitism        int             `yaml:"elitism"`        // candidates carried over unchanged
	TournamentK    int             `yaml:"tournament_k"`   // sample size for tournament selection
	Parallelism    int             `yaml:"parallelism"`    // fitness workers; <=1 means serial
	Seed           int64           `yaml:"seed"`
	Weights        fitness.Weights `yaml:"weights"`
}

func DefaultConfig() Config {
	return Config{
		PopulationSize: 100,
		MaxGenerations: 200,
		StallLimit:     50,
		CrossoverRate:  0.9,
		MutationRate:   0.1,
		Elitism:        1,
		TournamentK:    3,
		Seed:           1,
		Weights:        fitness.DefaultWeights(),
	}
}

func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return ConfigurationError{Detail: fmt.Sprintf("population size must be > 0, got %v", c.PopulationSize)}
	}
	if c.MaxGenerations <= 0 {
		return ConfigurationError{Detail: fmt.Sprintf("max generations must be > 0, got %v", c.MaxGenerations)}
	}
	if c.StallLimit < 0 {
		return ConfigurationError{Detail: fmt.Sprintf("stall limit must be >= 0, got %v", c.StallLimit)}
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return ConfigurationError{Detail: fmt.Sprintf("crossover rate must be in [0,1], got %v", c.CrossoverRate)}
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return ConfigurationError{Detail: fmt.Sprintf("mutation rate must be in [0,1], got %v", c.MutationRate)}
	}
	if c.Elitism < 0 || c.Elitism > c.PopulationSize {
		return ConfigurationError{Detail: fmt.Sprintf("elitism must be in [0,population], got %v", c.Elitism)}
	}
	if c.TournamentK <= 0 {
		return ConfigurationError{Detail: fmt.Sprintf("tournament size must be > 0, got %v", c.TournamentK)}
	}
	if err := c.Weights.Validate(); err != nil {
		return ConfigurationError{Detail: err.Error()}
	}
	return nil
}

// GenerationStats is one generation's summary, kept for plotting and
// progress reporting.
type GenerationStats struct {
	Generation int
	Best       float64
	Avg        float64
}

// Result is the outcome of one run. Best is the best candidate ever
// observed, which with elitism 0 is not necessarily in the final
// generation.
type Result struct {
	RunID         string
	Best          chromosome.Candidate
	BestFitness   float64
	BestBreakdown fitness.Breakdown
	Generations   int
	TerminatedBy  string
	History       []GenerationStats
}

// Engine drives one GA run over a fixed note sequence.
type Engine struct {
	enc  *chromosome.Encoder
	eval *fitness.Evaluator
	cfg  Config

	selector  Selector
	crossover Crossover
	mutator   Mutator

	// Progress, when set, receives each generation's stats as it completes.
	Progress func(GenerationStats)
}

func New(enc *chromosome.Encoder, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	eval, err := fitness.NewEvaluator(enc, cfg.Weights)
	if err != nil {
		return nil, ConfigurationError{Detail: err.Error()}
	}
	return &Engine{
		enc:       enc,
		eval:      eval,
		cfg:       cfg,
		selector:  TournamentSelector{K: cfg.TournamentK},
		crossover: PointCrossover{Points: 1},
		mutator:   PositionMutator{Rate: cfg.MutationRate, Enc: enc},
	}, nil
}

// UseSelector swaps the selection strategy.
func (g *Engine) UseSelector(s Selector) { g.selector = s }

// UseCrossover swaps the recombination strategy.
func (g *Engine) UseCrossover(c Crossover) { g.crossover = c }

// UseMutator swaps the mutation strategy.
func (g *Engine) UseMutator(m Mutator) { g.mutator = m }

// Run executes the GA until a termination criterion fires. The context is
// only an external-timeout hook, checked between generations.
func (g *Engine) Run(ctx context.Context) (*Result, error) {
	rng := rand.New(rand.NewSource(g.cfg.Seed))
	popSize := g.cfg.PopulationSize

	pop := make([]chromosome.Candidate, popSize)
	for i := range pop {
		pop[i] = g.enc.Random(rng)
	}
	scores := make([]float64, popSize)

	var pool *pond.WorkerPool
	if g.cfg.Parallelism > 1 {
		pool = pond.New(g.cfg.Parallelism, popSize)
		defer pool.StopAndWait()
	}

	res := &Result{RunID: uuid.New().String()}
	haveBest := false
	stall := 0

	for gen := 0; gen < g.cfg.MaxGenerations; gen++ {
		select {
		case <-ctx.Done():
			res.TerminatedBy = TerminatedCancelled
		default:
		}
		if res.TerminatedBy == TerminatedCancelled {
			if !haveBest {
				return nil, ctx.Err()
			}
			break
		}

		if err := g.evaluate(pool, pop, scores); err != nil {
			return nil, err
		}

		genBest, sum := 0, 0.0
		for i, s := range scores {
			sum += s
			if s > scores[genBest] {
				genBest = i
			}
		}
		stats := GenerationStats{
			Generation: gen,
			Best:       scores[genBest],
			Avg:        sum / float64(popSize),
		}
		res.History = append(res.History, stats)
		if g.Progress != nil {
			g.Progress(stats)
		}

		if !haveBest || scores[genBest] > res.BestFitness {
			res.Best = pop[genBest].Clone()
			res.BestFitness = scores[genBest]
			haveBest = true
			stall = 0
		} else {
			stall++
		}
		res.Generations = gen + 1

		if g.cfg.TargetFitness != nil && res.BestFitness >= *g.cfg.TargetFitness {
			res.TerminatedBy = TerminatedTarget
			break
		}
		if g.cfg.StallLimit > 0 && stall >= g.cfg.StallLimit {
			res.TerminatedBy = TerminatedStall
			break
		}
		if gen == g.cfg.MaxGenerations-1 {
			res.TerminatedBy = TerminatedMaxGenerations
			break
		}

		pop = g.nextGeneration(pop, scores, rng)
	}

	breakdown, err := g.eval.ScoreBreakdown(res.Best)
	if err != nil {
		return nil, err
	}
	res.BestBreakdown = breakdown
	return res, nil
}

// evaluate fills scores for the population, in parallel when a pool is
// configured. Evaluation is pure so the split is safe; any invariant
// violation aborts the run.
func (g *Engine) evaluate(pool *pond.WorkerPool, pop []chromosome.Candidate, scores []float64) error {
	if pool == nil {
		for i := range pop {
			s, err := g.eval.Score(pop[i])
			if err != nil {
				return err
			}
			scores[i] = s
		}
		return nil
	}

	errs := make([]error, len(pop))
	group := pool.Group()
	for i := range pop {
		i := i
		group.Submit(func() {
			scores[i], errs[i] = g.eval.Score(pop[i])
		})
	}
	group.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// nextGeneration builds the replacement population: elites first, then
// tournament-selected parents recombined and mutated.
func (g *Engine) nextGeneration(pop []chromosome.Candidate, scores []float64, rng *rand.Rand) []chromosome.Candidate {
	popSize := len(pop)
	next := make([]chromosome.Candidate, 0, popSize)

	if g.cfg.Elitism > 0 {
		order := make([]int, popSize)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return scores[order[a]] > scores[order[b]]
		})
		for i := 0; i < g.cfg.Elitism; i++ {
			next = append(next, pop[order[i]].Clone())
		}
	}

	for len(next) < popSize {
		p1 := pop[g.selector.Pick(scores, rng)]
		p2 := pop[g.selector.Pick(scores, rng)]

		var c1, c2 chromosome.Candidate
		if rng.Float64() < g.cfg.CrossoverRate {
			c1, c2 = g.crossover.Cross(p1, p2, rng)
		} else {
			c1, c2 = p1.Clone(), p2.Clone()
		}

		next = append(next, g.mutator.Mutate(c1, rng))
		if len(next) < popSize {
			next = append(next, g.mutator.Mutate(c2, rng))
		}
	}
	return next
}
