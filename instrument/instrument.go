package instrument

import (
	"fmt"

	"github.com/jsphweid/fretwise/model"
)

// UnreachablePitchError means the pitch cannot be produced anywhere on the
// instrument. The piece cannot be tabbed without transposing it first.
type UnreachablePitchError struct {
	Pitch model.Pitch
}

func (e UnreachablePitchError) Error() string {
	return fmt.Sprintf("pitch %v (%v) is unreachable on this instrument", e.Pitch, model.PitchName(e.Pitch))
}

// Instrument describes a fretted instrument: open-string pitches ordered
// treble first (string 0 is the highest string) and the last usable fret.
// Stateless after construction.
type Instrument struct {
	tuning  []model.Pitch
	maxFret int
}

func New(tuning []model.Pitch, maxFret int) (*Instrument, error) {
	if len(tuning) == 0 {
		return nil, fmt.Errorf("tuning must have at least one string")
	}
	if maxFret < 0 {
		return nil, fmt.Errorf("maxFret must be >= 0, got %v", maxFret)
	}
	t := make([]model.Pitch, len(tuning))
	copy(t, tuning)
	return &Instrument{tuning: t, maxFret: maxFret}, nil
}

// StandardGuitar is a 6-string guitar in standard tuning with 15 frets,
// treble first: E4 B3 G3 D3 A2 E2.
func StandardGuitar() *Instrument {
	inst, _ := New([]model.Pitch{64, 59, 55, 50, 45, 40}, 15)
	return inst
}

func (i *Instrument) NumStrings() int { return len(i.tuning) }

func (i *Instrument) MaxFret() int { return i.maxFret }

func (i *Instrument) Tuning() []model.Pitch {
	t := make([]model.Pitch, len(i.tuning))
	copy(t, i.tuning)
	return t
}

// PitchAt returns the pitch sounded by a position. The position must be in
// range for the instrument.
func (i *Instrument) PitchAt(pos model.Position) model.Pitch {
	return i.tuning[pos.String] + model.Pitch(pos.Fret)
}

// InRange reports whether a position exists on the instrument.
func (i *Instrument) InRange(pos model.Position) bool {
	return pos.String >= 0 && pos.String < len(i.tuning) &&
		pos.Fret >= 0 && pos.Fret <= i.maxFret
}

// Positions returns every position that sounds the given pitch, ordered by
// string. Returns UnreachablePitchError when there is none.
func (i *Instrument) Positions(p model.Pitch) ([]model.Position, error) {
	var res []model.Position
	for s, open := range i.tuning {
		if p < open {
			continue
		}
		fret := int(p) - int(open)
		if fret <= i.maxFret {
			res = append(res, model.Position{String: s, Fret: fret})
		}
	}
	if len(res) == 0 {
		return nil, UnreachablePitchError{Pitch: p}
	}
	return res, nil
}
