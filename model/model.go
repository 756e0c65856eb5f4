package model

import "fmt"

// Pitch is a MIDI note number (semitones, middle C = 60).
type Pitch = uint8

// NoteEvent is one musical event: one or more simultaneous pitches with an
// onset and duration in seconds. Events are read-only once extracted.
type NoteEvent struct {
	Pitches  []Pitch
	Onset    float64
	Duration float64
}

// Position is one playable spot on the fretboard. String 0 is the highest
// (treble) string.
type Position struct {
	String int
	Fret   int
}

// Assignment holds the positions chosen for one NoteEvent, index-aligned
// with the event's Pitches.
type Assignment = []Position

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName renders a pitch like "E4" or "A#2".
func PitchName(p Pitch) string {
	octave := int(p)/12 - 1
	return fmt.Sprintf("%v%v", noteNames[int(p)%12], octave)
}
