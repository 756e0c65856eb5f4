package fitness

import (
	"math/rand"
	"testing"

	"github.com/jsphweid/fretwise/chromosome"
	"github.com/jsphweid/fretwise/instrument"
	"github.com/jsphweid/fretwise/model"
	"github.com/stretchr/testify/assert"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func newEvaluator(t *testing.T, events []model.NoteEvent) (*Evaluator, *chromosome.Encoder) {
	enc, err := chromosome.NewEncoder(instrument.StandardGuitar(), events)
	if err != nil {
		t.Fatal(err)
	}
	ev, err := NewEvaluator(enc, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	return ev, enc
}

func candidate(assignments ...[]model.Position) chromosome.Candidate {
	return chromosome.Candidate{Assignments: assignments}
}

func TestCompactChordCostsOnlyItsCrossings(t *testing.T) {
	// three fretted notes at frets 2,3,2 on three adjacent strings:
	// span 1 is comfortable, the 2 string changes are irreducible
	events := []model.NoteEvent{{Pitches: []model.Pitch{66, 62, 57}}}
	ev, _ := newEvaluator(t, events)

	c := candidate([]model.Position{
		{String: 0, Fret: 2},
		{String: 1, Fret: 3},
		{String: 2, Fret: 2},
	})
	b, err := ev.ScoreBreakdown(c)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(0.0, b.Span)
	assert.Equal(2, ev.Crossings(c))
	assert.InDelta(-2*DefaultWeights().StringCross, b.StringCross, 1e-9)
	assert.Equal(0.0, b.FretMove)
	assert.Equal(0.0, b.OpenBonus)
}

func TestWideChordPaysForExcessSpan(t *testing.T) {
	events := []model.NoteEvent{{Pitches: []model.Pitch{66, 68}}}
	ev, _ := newEvaluator(t, events)

	c := candidate([]model.Position{
		{String: 0, Fret: 2},
		{String: 1, Fret: 9},
	})
	b, err := ev.ScoreBreakdown(c)

	assert := assert.New(t)
	assert.NoError(err)
	// span 7 exceeds the comfortable 4 by 3
	assert.InDelta(-3*DefaultWeights().SpanPenalty, b.Span, 1e-9)
}

func TestOpenStringsReachTheoreticalMaximum(t *testing.T) {
	// open high E then open G: no same-string alternative links them, so
	// only the open-string bonus applies
	events := []model.NoteEvent{
		{Pitches: []model.Pitch{64}},
		{Pitches: []model.Pitch{55}},
	}
	ev, _ := newEvaluator(t, events)

	allOpen := candidate(
		[]model.Position{{String: 0, Fret: 0}},
		[]model.Position{{String: 2, Fret: 0}},
	)
	score, err := ev.Score(allOpen)

	assert := assert.New(t)
	assert.NoError(err)
	assert.InDelta(2*DefaultWeights().OpenBonus, score, 1e-9)

	fretted := candidate(
		[]model.Position{{String: 1, Fret: 5}},
		[]model.Position{{String: 2, Fret: 0}},
	)
	frettedScore, err := ev.Score(fretted)
	assert.NoError(err)
	assert.Greater(score, frettedScore)
}

func TestFretTransitionIsSquared(t *testing.T) {
	events := []model.NoteEvent{
		{Pitches: []model.Pitch{65}},
		{Pitches: []model.Pitch{69}},
	}
	ev, _ := newEvaluator(t, events)

	c := candidate(
		[]model.Position{{String: 0, Fret: 1}},
		[]model.Position{{String: 0, Fret: 5}},
	)
	b, err := ev.ScoreBreakdown(c)

	assert := assert.New(t)
	assert.NoError(err)
	assert.InDelta(-DefaultWeights().FretMove*16, b.FretMove, 1e-9)
	// stayed on one string
	assert.Equal(0.0, b.StringCross)
}

func TestAvoidableStringChangeIsCharged(t *testing.T) {
	events := []model.NoteEvent{
		{Pitches: []model.Pitch{64}},
		{Pitches: []model.Pitch{66}}, // playable on string 0 at fret 2
	}
	ev, _ := newEvaluator(t, events)

	sameString := candidate(
		[]model.Position{{String: 0, Fret: 0}},
		[]model.Position{{String: 0, Fret: 2}},
	)
	crossed := candidate(
		[]model.Position{{String: 0, Fret: 0}},
		[]model.Position{{String: 1, Fret: 7}},
	)

	assert := assert.New(t)
	sameScore, err := ev.Score(sameString)
	assert.NoError(err)
	crossedScore, err := ev.Score(crossed)
	assert.NoError(err)
	assert.Greater(sameScore, crossedScore)
	assert.Equal(0, ev.Crossings(sameString))
	assert.Equal(1, ev.Crossings(crossed))
}

func TestTamperedCandidateIsFatal(t *testing.T) {
	events := []model.NoteEvent{{Pitches: []model.Pitch{64}}}
	ev, enc := newEvaluator(t, events)

	c := enc.Random(newRand())
	c.Assignments[0][0] = model.Position{String: 3, Fret: 1}
	_, err := ev.Score(c)

	assert := assert.New(t)
	assert.Error(err)
	assert.IsType(chromosome.InvalidCandidateError{}, err)
}

func TestWeightValidation(t *testing.T) {
	assert := assert.New(t)

	w := DefaultWeights()
	w.FretMove = -1
	assert.Error(w.Validate())

	assert.Error(Weights{}.Validate())
	assert.NoError(DefaultWeights().Validate())
}
