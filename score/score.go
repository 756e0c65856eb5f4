// Package score turns a parsed SMF into the ordered note-event sequence
// the optimizer consumes.
package score

import (
	"fmt"
	"sort"

	"github.com/jsphweid/fretwise/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

type timedNote struct {
	key model.Pitch
	on  int64 // microseconds
	off int64
}

// Extract reads every track, pairs note starts with their ends and groups
// notes sharing an onset into chords. Events come back ordered by onset.
func Extract(s *smf.SMF) ([]model.NoteEvent, error) {
	var notes []timedNote
	active := make(map[model.Pitch][]int)
	var lastTime int64

	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			absTime := s.TimeAt(absTicks)
			if absTime > lastTime {
				lastTime = absTime
			}
			var channel uint8
			var key uint8
			var velocity uint8
			switch {
			case event.Message.GetNoteStart(&channel, &key, &velocity):
				active[key] = append(active[key], len(notes))
				notes = append(notes, timedNote{key: key, on: absTime, off: -1})
			case event.Message.GetNoteEnd(&channel, &key):
				stack := active[key]
				if len(stack) == 0 {
					continue
				}
				notes[stack[len(stack)-1]].off = absTime
				active[key] = stack[:len(stack)-1]
			}
		}
	}

	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes found in midi file")
	}

	// notes missing their end run to the end of the file
	for i := range notes {
		if notes[i].off < 0 {
			notes[i].off = lastTime
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].on != notes[j].on {
			return notes[i].on < notes[j].on
		}
		return notes[i].key < notes[j].key
	})

	var events []model.NoteEvent
	for i := 0; i < len(notes); {
		j := i
		maxOff := notes[i].off
		var pitches []model.Pitch
		for ; j < len(notes) && notes[j].on == notes[i].on; j++ {
			// unison doublings across tracks collapse to one pitch
			if len(pitches) > 0 && pitches[len(pitches)-1] == notes[j].key {
				if notes[j].off > maxOff {
					maxOff = notes[j].off
				}
				continue
			}
			pitches = append(pitches, notes[j].key)
			if notes[j].off > maxOff {
				maxOff = notes[j].off
			}
		}
		events = append(events, model.NoteEvent{
			Pitches:  pitches,
			Onset:    float64(notes[i].on) / 1e6,
			Duration: float64(maxOff-notes[i].on) / 1e6,
		})
		i = j
	}
	return events, nil
}
