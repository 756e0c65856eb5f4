// Package render turns an optimized tablature into the six-line ASCII
// diagram and into a playable SMF.
package render

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jsphweid/fretwise/chromosome"
	"github.com/jsphweid/fretwise/instrument"
	"github.com/jsphweid/fretwise/model"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const ticksPerQuarter = 960

// Ascii renders the candidate as tab lines, one per string with the
// treble string on top, e.g.
//
//	e|-0-------
//	B|-----1---
func Ascii(inst *instrument.Instrument, c chromosome.Candidate) string {
	tuning := inst.Tuning()
	lines := make([]string, len(tuning))
	for s, open := range tuning {
		name := model.PitchName(open)
		name = name[:len(name)-1] // strip octave digit
		if s == 0 {
			name = strings.ToLower(name)
		}
		lines[s] = name + "|"
	}

	for _, assignment := range c.Assignments {
		width := 4
		cells := make(map[int]string)
		for _, pos := range assignment {
			cell := "-" + strconv.Itoa(pos.Fret) + "-"
			if len(cell)+1 > width {
				width = len(cell) + 1
			}
			cells[pos.String] = cell
		}
		for s := range lines {
			cell, ok := cells[s]
			if !ok {
				cell = ""
			}
			lines[s] += cell + strings.Repeat("-", width-len(cell))
		}
	}
	return strings.Join(lines, "\n")
}

type action struct {
	at    float64 // seconds
	on    bool
	pitch model.Pitch
}

// ToSMF builds a single-track SMF sounding the candidate's positions at
// the source events' onsets and durations.
func ToSMF(inst *instrument.Instrument, events []model.NoteEvent, c chromosome.Candidate, bpm float64) *smf.SMF {
	var actions []action
	for e, assignment := range c.Assignments {
		evt := events[e]
		for _, pos := range assignment {
			p := inst.PitchAt(pos)
			actions = append(actions, action{at: evt.Onset, on: true, pitch: p})
			actions = append(actions, action{at: evt.Onset + evt.Duration, on: false, pitch: p})
		}
	}
	// offs sort before ons at the same instant so repeated pitches re-strike
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].at != actions[j].at {
			return actions[i].at < actions[j].at
		}
		return !actions[i].on && actions[j].on
	})

	var track smf.Track
	track = append(track, smf.Event{Delta: 0, Message: smf.MetaTempo(bpm)})
	prevTicks := uint32(0)
	for _, a := range actions {
		abs := secondsToTicks(a.at, bpm)
		var msg gomidi.Message
		if a.on {
			msg = gomidi.NoteOn(0, a.pitch, 100)
		} else {
			msg = gomidi.NoteOff(0, a.pitch)
		}
		track = append(track, smf.Event{Delta: abs - prevTicks, Message: smf.Message(msg)})
		prevTicks = abs
	}
	track.Close(0)

	var res smf.SMF
	res.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	res.Tracks = append(res.Tracks, track)
	return &res
}

func secondsToTicks(sec, bpm float64) uint32 {
	return uint32(math.Round(sec * bpm / 60.0 * ticksPerQuarter))
}
