package engine

import (
	"context"
	"testing"

	"github.com/jsphweid/fretwise/chromosome"
	"github.com/jsphweid/fretwise/instrument"
	"github.com/jsphweid/fretwise/model"
	"github.com/stretchr/testify/assert"
)

func singleNotes(pitches ...model.Pitch) []model.NoteEvent {
	events := make([]model.NoteEvent, len(pitches))
	for i, p := range pitches {
		events[i] = model.NoteEvent{Pitches: []model.Pitch{p}, Onset: float64(i), Duration: 0.5}
	}
	return events
}

func newEncoder(t *testing.T, events []model.NoteEvent) *chromosome.Encoder {
	enc, err := chromosome.NewEncoder(instrument.StandardGuitar(), events)
	if err != nil {
		t.Fatal(err)
	}
	return enc
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 30
	cfg.MaxGenerations = 50
	cfg.StallLimit = 0
	cfg.Seed = 42
	return cfg
}

func TestConfigValidation(t *testing.T) {
	assert := assert.New(t)

	cases := []func(*Config){
		func(c *Config) { c.PopulationSize = 0 },
		func(c *Config) { c.MaxGenerations = 0 },
		func(c *Config) { c.StallLimit = -1 },
		func(c *Config) { c.CrossoverRate = 1.5 },
		func(c *Config) { c.MutationRate = -0.1 },
		func(c *Config) { c.Elitism = -1 },
		func(c *Config) { c.Elitism = c.PopulationSize + 1 },
		func(c *Config) { c.TournamentK = 0 },
		func(c *Config) { c.Weights.FretMove = -1 },
	}
	for _, breakIt := range cases {
		cfg := DefaultConfig()
		breakIt(&cfg)
		err := cfg.Validate()
		assert.Error(err)
		assert.IsType(ConfigurationError{}, err)
	}

	assert.NoError(DefaultConfig().Validate())
}

func TestTwoOpenNotesReachTheMaximum(t *testing.T) {
	// open high E then open G: the optimum is both open strings with
	// fitness equal to twice the open bonus
	enc := newEncoder(t, singleNotes(64, 55))
	cfg := smallConfig()
	eng, err := New(enc, cfg)

	assert := assert.New(t)
	assert.NoError(err)

	res, err := eng.Run(context.Background())
	assert.NoError(err)
	assert.InDelta(2*cfg.Weights.OpenBonus, res.BestFitness, 1e-9)
	assert.Equal(model.Position{String: 0, Fret: 0}, res.Best.Assignments[0][0])
	assert.Equal(0, res.Best.Assignments[1][0].Fret)
}

func TestDeterministicUnderFixedSeed(t *testing.T) {
	events := singleNotes(64, 62, 60, 59, 57, 55)
	cfg := smallConfig()

	run := func() *Result {
		eng, err := New(newEncoder(t, events), cfg)
		if err != nil {
			t.Fatal(err)
		}
		res, err := eng.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	a, b := run(), run()

	assert := assert.New(t)
	assert.Equal(a.Best, b.Best)
	assert.Equal(a.BestFitness, b.BestFitness)
	assert.Equal(a.TerminatedBy, b.TerminatedBy)
	assert.Equal(a.History, b.History)
}

func TestParallelEvaluationMatchesSerial(t *testing.T) {
	events := singleNotes(64, 62, 60, 59)
	serial := smallConfig()
	parallel := smallConfig()
	parallel.Parallelism = 4

	runWith := func(cfg Config) *Result {
		eng, err := New(newEncoder(t, events), cfg)
		if err != nil {
			t.Fatal(err)
		}
		res, err := eng.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	a, b := runWith(serial), runWith(parallel)

	assert := assert.New(t)
	assert.Equal(a.Best, b.Best)
	assert.Equal(a.BestFitness, b.BestFitness)
}

func TestBestNeverDegradesWithElitism(t *testing.T) {
	events := singleNotes(64, 60, 55, 59, 62, 57, 64, 55)
	cfg := smallConfig()
	cfg.Elitism = 1
	eng, err := New(newEncoder(t, events), cfg)

	assert := assert.New(t)
	assert.NoError(err)

	res, err := eng.Run(context.Background())
	assert.NoError(err)
	for i := 1; i < len(res.History); i++ {
		assert.GreaterOrEqual(res.History[i].Best, res.History[i-1].Best)
	}
}

func TestBestCandidateStaysPitchCorrect(t *testing.T) {
	events := []model.NoteEvent{
		{Pitches: []model.Pitch{60, 64, 67}, Onset: 0, Duration: 1},
		{Pitches: []model.Pitch{55}, Onset: 1, Duration: 0.5},
		{Pitches: []model.Pitch{57, 62}, Onset: 1.5, Duration: 1},
	}
	enc := newEncoder(t, events)
	eng, err := New(enc, smallConfig())

	assert := assert.New(t)
	assert.NoError(err)

	res, err := eng.Run(context.Background())
	assert.NoError(err)
	assert.NoError(enc.Verify(res.Best))

	decoded := enc.Decode(res.Best)
	for e, evt := range events {
		assert.Equal(evt.Pitches, decoded[e])
	}
}

func TestTerminatesAtMaxGenerations(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxGenerations = 5
	eng, err := New(newEncoder(t, singleNotes(64, 62, 60)), cfg)

	assert := assert.New(t)
	assert.NoError(err)

	res, err := eng.Run(context.Background())
	assert.NoError(err)
	assert.Equal(TerminatedMaxGenerations, res.TerminatedBy)
	assert.Equal(5, res.Generations)
}

func TestStallStopsEarly(t *testing.T) {
	// a pitch with a single playable position cannot improve past gen 0
	cfg := smallConfig()
	cfg.StallLimit = 3
	eng, err := New(newEncoder(t, singleNotes(40, 40)), cfg)

	assert := assert.New(t)
	assert.NoError(err)

	res, err := eng.Run(context.Background())
	assert.NoError(err)
	assert.Equal(TerminatedStall, res.TerminatedBy)
	assert.Less(res.Generations, cfg.MaxGenerations)
}

func TestTargetFitnessStopsTheRun(t *testing.T) {
	cfg := smallConfig()
	target := 2 * cfg.Weights.OpenBonus
	cfg.TargetFitness = &target
	eng, err := New(newEncoder(t, singleNotes(64, 55)), cfg)

	assert := assert.New(t)
	assert.NoError(err)

	res, err := eng.Run(context.Background())
	assert.NoError(err)
	assert.Equal(TerminatedTarget, res.TerminatedBy)
	assert.GreaterOrEqual(res.BestFitness, target)
}

func TestCancelledContextStopsTheRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng, err := New(newEncoder(t, singleNotes(64)), smallConfig())
	assert := assert.New(t)
	assert.NoError(err)

	_, err = eng.Run(ctx)
	assert.Error(err)
}

func TestProgressSeesEveryGeneration(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxGenerations = 4
	eng, err := New(newEncoder(t, singleNotes(64, 60)), cfg)

	assert := assert.New(t)
	assert.NoError(err)

	var seen []int
	eng.Progress = func(stats GenerationStats) {
		seen = append(seen, stats.Generation)
	}
	res, err := eng.Run(context.Background())
	assert.NoError(err)
	assert.Equal(res.Generations, len(seen))
	for i, gen := range seen {
		assert.Equal(i, gen)
	}
}
