package engine

import (
	"math/rand"

	"github.com/jsphweid/fretwise/chromosome"
)

// Selector picks one parent index from the scored population.
type Selector interface {
	Pick(scores []float64, rng *rand.Rand) int
}

// Crossover produces two children from two parents. Implementations must
// only swap whole per-event assignments, never split the positions inside
// one event, so children stay pitch-correct by construction.
type Crossover interface {
	Cross(a, b chromosome.Candidate, rng *rand.Rand) (chromosome.Candidate, chromosome.Candidate)
}

// Mutator returns a mutated copy of a candidate.
type Mutator interface {
	Mutate(c chromosome.Candidate, rng *rand.Rand) chromosome.Candidate
}

// TournamentSelector samples K candidates uniformly and keeps the best.
type TournamentSelector struct {
	K int
}

func (t TournamentSelector) Pick(scores []float64, rng *rand.Rand) int {
	best := rng.Intn(len(scores))
	for i := 1; i < t.K; i++ {
		idx := rng.Intn(len(scores))
		if scores[idx] > scores[best] {
			best = idx
		}
	}
	return best
}

// PointCrossover splits both parents' event sequences at Points random cut
// points and interleaves the segments.
type PointCrossover struct {
	Points int
}

func (p PointCrossover) Cross(a, b chromosome.Candidate, rng *rand.Rand) (chromosome.Candidate, chromosome.Candidate) {
	n := len(a.Assignments)
	c1, c2 := a.Clone(), b.Clone()
	if n < 2 {
		return c1, c2
	}
	points := p.Points
	if points < 1 {
		points = 1
	}
	swapping := false
	cuts := make(map[int]bool, points)
	for i := 0; i < points; i++ {
		cuts[1+rng.Intn(n-1)] = true
	}
	for i := 0; i < n; i++ {
		if cuts[i] {
			swapping = !swapping
		}
		if swapping {
			c1.Assignments[i], c2.Assignments[i] = c2.Assignments[i], c1.Assignments[i]
		}
	}
	return c1, c2
}

// PositionMutator re-picks single positions: with probability Rate per
// event pitch, the current position is replaced by another valid position
// for the exact same pitch, so mutation can never change what sounds.
type PositionMutator struct {
	Rate float64
	Enc  *chromosome.Encoder
}

func (m PositionMutator) Mutate(c chromosome.Candidate, rng *rand.Rand) chromosome.Candidate {
	out := c.Clone()
	for e := range out.Assignments {
		for p := range out.Assignments[e] {
			if rng.Float64() >= m.Rate {
				continue
			}
			alts := m.Enc.Alternatives(out, e, p)
			if len(alts) == 0 {
				continue
			}
			out.Assignments[e][p] = alts[rng.Intn(len(alts))]
		}
	}
	return out
}
