// Package chromosome maps note sequences to tablature candidates and back.
// A candidate assigns one fretboard position to every pitch of every note
// event; the multiset of pitches decoded from those positions must always
// equal the source event's pitches.
package chromosome

import (
	"fmt"
	"math/rand"

	"github.com/jsphweid/fretwise/instrument"
	"github.com/jsphweid/fretwise/model"
)

// UnassignableChordError means a simultaneous pitch set cannot be placed on
// distinct strings of the instrument.
type UnassignableChordError struct {
	EventIndex int
	NumPitches int
}

func (e UnassignableChordError) Error() string {
	return fmt.Sprintf("event %v: %v simultaneous pitches cannot be placed on distinct strings", e.EventIndex, e.NumPitches)
}

// InvalidCandidateError means a candidate no longer decodes to the source
// pitches. It indicates a bug in an operator, never a recoverable condition.
type InvalidCandidateError struct {
	EventIndex int
	Detail     string
}

func (e InvalidCandidateError) Error() string {
	return fmt.Sprintf("invalid candidate at event %v: %v", e.EventIndex, e.Detail)
}

// Candidate is one tablature: an assignment per note event, index-aligned
// with the encoder's events. Candidates are value objects; operators must
// clone rather than mutate shared state.
type Candidate struct {
	Assignments []model.Assignment
}

func (c Candidate) Clone() Candidate {
	assignments := make([]model.Assignment, len(c.Assignments))
	for i, a := range c.Assignments {
		assignments[i] = append(model.Assignment(nil), a...)
	}
	return Candidate{Assignments: assignments}
}

// Encoder builds and validates candidates for one fixed note sequence on
// one instrument. Construction precomputes the per-pitch candidate position
// sets and fails fast if any event cannot be assigned at all.
type Encoder struct {
	inst   *instrument.Instrument
	events []model.NoteEvent

	// choices[e][p] lists the valid positions for pitch p of event e.
	choices [][][]model.Position
}

func NewEncoder(inst *instrument.Instrument, events []model.NoteEvent) (*Encoder, error) {
	enc := &Encoder{inst: inst, events: events}
	enc.choices = make([][][]model.Position, len(events))
	for e, evt := range events {
		if len(evt.Pitches) > inst.NumStrings() {
			return nil, UnassignableChordError{EventIndex: e, NumPitches: len(evt.Pitches)}
		}
		enc.choices[e] = make([][]model.Position, len(evt.Pitches))
		for p, pitch := range evt.Pitches {
			positions, err := inst.Positions(pitch)
			if err != nil {
				return nil, err
			}
			enc.choices[e][p] = positions
		}
		// every chord must admit at least one distinct-string assignment
		if assignEvent(enc.choices[e], nil, nil) == nil {
			return nil, UnassignableChordError{EventIndex: e, NumPitches: len(evt.Pitches)}
		}
	}
	return enc, nil
}

func (enc *Encoder) Instrument() *instrument.Instrument { return enc.inst }

func (enc *Encoder) Events() []model.NoteEvent { return enc.events }

func (enc *Encoder) NumEvents() int { return len(enc.events) }

// Choices lists the valid positions for pitch p of event e.
func (enc *Encoder) Choices(e, p int) []model.Position {
	return enc.choices[e][p]
}

// assignEvent picks one position per pitch with all strings distinct,
// backtracking when a pick blocks a later pitch. choices may be visited in
// a shuffled order per pitch (order[p]); a nil order means natural order.
func assignEvent(choices [][]model.Position, order [][]int, used map[int]bool) model.Assignment {
	if used == nil {
		used = make(map[int]bool)
	}
	assignment := make(model.Assignment, len(choices))
	var place func(p int) bool
	place = func(p int) bool {
		if p == len(choices) {
			return true
		}
		opts := choices[p]
		for k := range opts {
			idx := k
			if order != nil {
				idx = order[p][k]
			}
			pos := opts[idx]
			if used[pos.String] {
				continue
			}
			used[pos.String] = true
			assignment[p] = pos
			if place(p + 1) {
				return true
			}
			delete(used, pos.String)
		}
		return false
	}
	if !place(0) {
		return nil
	}
	return assignment
}

// Random builds a fresh candidate, picking uniformly among the valid
// positions of each pitch (subject to distinct strings within an event).
func (enc *Encoder) Random(rng *rand.Rand) Candidate {
	assignments := make([]model.Assignment, len(enc.events))
	for e := range enc.events {
		order := make([][]int, len(enc.choices[e]))
		for p := range enc.choices[e] {
			order[p] = rng.Perm(len(enc.choices[e][p]))
		}
		assignments[e] = assignEvent(enc.choices[e], order, nil)
	}
	return Candidate{Assignments: assignments}
}

// Alternatives returns the positions that could replace the current one for
// pitch p of event e without touching the event's other strings. The
// current position itself is excluded.
func (enc *Encoder) Alternatives(c Candidate, e, p int) []model.Position {
	used := make(map[int]bool)
	for i, pos := range c.Assignments[e] {
		if i != p {
			used[pos.String] = true
		}
	}
	current := c.Assignments[e][p]
	var res []model.Position
	for _, pos := range enc.choices[e][p] {
		if pos != current && !used[pos.String] {
			res = append(res, pos)
		}
	}
	return res
}

// Decode recovers the pitch sequence a candidate sounds, event by event.
func (enc *Encoder) Decode(c Candidate) [][]model.Pitch {
	res := make([][]model.Pitch, len(c.Assignments))
	for e, assignment := range c.Assignments {
		pitches := make([]model.Pitch, len(assignment))
		for p, pos := range assignment {
			pitches[p] = enc.inst.PitchAt(pos)
		}
		res[e] = pitches
	}
	return res
}

// Verify checks the pitch-fidelity invariant plus position bounds and the
// distinct-strings constraint. A failure here is an operator bug.
func (enc *Encoder) Verify(c Candidate) error {
	if len(c.Assignments) != len(enc.events) {
		return InvalidCandidateError{Detail: fmt.Sprintf("have %v assignments for %v events", len(c.Assignments), len(enc.events))}
	}
	for e, assignment := range c.Assignments {
		evt := enc.events[e]
		if len(assignment) != len(evt.Pitches) {
			return InvalidCandidateError{EventIndex: e, Detail: "assignment length does not match pitch count"}
		}
		used := make(map[int]bool)
		for p, pos := range assignment {
			if !enc.inst.InRange(pos) {
				return InvalidCandidateError{EventIndex: e, Detail: fmt.Sprintf("position (s%v f%v) out of range", pos.String, pos.Fret)}
			}
			if used[pos.String] {
				return InvalidCandidateError{EventIndex: e, Detail: fmt.Sprintf("string %v used twice", pos.String)}
			}
			used[pos.String] = true
			if got := enc.inst.PitchAt(pos); got != evt.Pitches[p] {
				return InvalidCandidateError{EventIndex: e, Detail: fmt.Sprintf("position sounds %v, want %v", got, evt.Pitches[p])}
			}
		}
	}
	return nil
}
