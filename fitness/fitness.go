// Package fitness scores tablature candidates on physical playability.
// Higher scores are better; all costs enter negatively and the open-string
// bonus positively.
package fitness

import (
	"fmt"

	"github.com/jsphweid/fretwise/chromosome"
	"github.com/jsphweid/fretwise/util"
)

// Weights configures the evaluator. The default ratios follow the classic
// fretboard-distance penalties: moving the hand costs roughly twice per
// fret and crossing strings five times per string, with a four-fret
// comfortable chord span.
type Weights struct {
	FretMove    float64 `yaml:"fret_move"`
	SpanPenalty float64 `yaml:"span_penalty"`
	StringCross float64 `yaml:"string_cross"`
	OpenBonus   float64 `yaml:"open_bonus"`
	ComfortSpan int     `yaml:"comfort_span"`
}

func DefaultWeights() Weights {
	return Weights{
		FretMove:    2.0,
		SpanPenalty: 4.0,
		StringCross: 5.0,
		OpenBonus:   1.0,
		ComfortSpan: 4,
	}
}

func (w Weights) Validate() error {
	if w.FretMove < 0 || w.SpanPenalty < 0 || w.StringCross < 0 || w.OpenBonus < 0 {
		return fmt.Errorf("fitness weights must be non-negative: %+v", w)
	}
	if w.ComfortSpan < 0 {
		return fmt.Errorf("comfort span must be >= 0, got %v", w.ComfortSpan)
	}
	if w.FretMove == 0 && w.SpanPenalty == 0 && w.StringCross == 0 && w.OpenBonus == 0 {
		return fmt.Errorf("all fitness weights are zero, nothing to optimize")
	}
	return nil
}

// Breakdown itemizes the components of one candidate's score.
type Breakdown struct {
	FretMove    float64
	Span        float64
	StringCross float64
	OpenBonus   float64
	Total       float64
}

// Evaluator scores candidates for one encoder's note sequence. Pure and
// deterministic given a candidate.
type Evaluator struct {
	weights Weights
	enc     *chromosome.Encoder
}

func NewEvaluator(enc *chromosome.Encoder, weights Weights) (*Evaluator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{weights: weights, enc: enc}, nil
}

// Score evaluates a candidate. It verifies the pitch-fidelity invariant
// first and returns chromosome.InvalidCandidateError if an operator broke
// it.
func (ev *Evaluator) Score(c chromosome.Candidate) (float64, error) {
	b, err := ev.ScoreBreakdown(c)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

// ScoreBreakdown is Score with the per-component contributions.
func (ev *Evaluator) ScoreBreakdown(c chromosome.Candidate) (Breakdown, error) {
	var b Breakdown
	if err := ev.enc.Verify(c); err != nil {
		return b, err
	}

	w := ev.weights
	prevHand, havePrevHand := 0.0, false
	var prevStrings []int

	for e, assignment := range c.Assignments {
		// open-string bonus and within-chord span over fretted notes
		minFret, maxFret := 0, 0
		numFretted := 0
		fretSum := 0
		strings := make([]int, 0, len(assignment))
		for _, pos := range assignment {
			strings = append(strings, pos.String)
			if pos.Fret == 0 {
				b.OpenBonus += w.OpenBonus
				continue
			}
			if numFretted == 0 {
				minFret, maxFret = pos.Fret, pos.Fret
			} else {
				minFret = util.Min(minFret, pos.Fret)
				maxFret = util.Max(maxFret, pos.Fret)
			}
			fretSum += pos.Fret
			numFretted++
		}
		if numFretted > 1 {
			if excess := maxFret - minFret - w.ComfortSpan; excess > 0 {
				b.Span -= w.SpanPenalty * float64(excess)
			}
		}

		// within-chord crossings are irreducible: n distinct strings need
		// n-1 changes
		if len(assignment) > 1 {
			b.StringCross -= w.StringCross * float64(len(assignment)-1)
		}

		// hand movement between events; an all-open event leaves the hand
		// where it was
		if numFretted > 0 {
			hand := float64(fretSum) / float64(numFretted)
			if havePrevHand {
				d := hand - prevHand
				b.FretMove -= w.FretMove * d * d
			}
			prevHand, havePrevHand = hand, true
		}

		// string crossing between consecutive events: nearest pair of
		// played strings, charged only when the event had a same-string
		// alternative it passed up
		if prevStrings != nil && ev.hasChoiceOn(e, prevStrings) {
			b.StringCross -= w.StringCross * float64(minStringDistance(prevStrings, strings))
		}
		prevStrings = strings
	}

	b.Total = b.FretMove + b.Span + b.StringCross + b.OpenBonus
	return b, nil
}

// hasChoiceOn reports whether any pitch of event e could have been played
// on one of the given strings. When it could not, moving strings was
// forced and is not penalized.
func (ev *Evaluator) hasChoiceOn(e int, strings []int) bool {
	for p := range ev.enc.Events()[e].Pitches {
		for _, pos := range ev.enc.Choices(e, p) {
			for _, s := range strings {
				if pos.String == s {
					return true
				}
			}
		}
	}
	return false
}

func minStringDistance(a, b []int) int {
	best := -1
	for _, s1 := range a {
		for _, s2 := range b {
			d := util.Abs(s1 - s2)
			if best < 0 || d < best {
				best = d
			}
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// Crossings counts the string changes a candidate demands: the irreducible
// within-chord changes plus the avoidable nearest-string movement between
// events. Score applies the StringCross weight to the same count.
func (ev *Evaluator) Crossings(c chromosome.Candidate) int {
	total := 0
	var prev []int
	for e, assignment := range c.Assignments {
		if len(assignment) > 1 {
			total += len(assignment) - 1
		}
		strings := make([]int, 0, len(assignment))
		for _, pos := range assignment {
			strings = append(strings, pos.String)
		}
		if prev != nil && ev.hasChoiceOn(e, prev) {
			total += minStringDistance(prev, strings)
		}
		prev = strings
	}
	return total
}
