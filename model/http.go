package model

// NoteEventInput is the wire form of one note event.
type NoteEventInput struct {
	Pitches  []Pitch `json:"pitches"`
	Onset    float64 `json:"onset"`
	Duration float64 `json:"duration"`
}

type OptimizeRequestBody struct {
	Events []NoteEventInput `json:"events"`
	Seed   *int64           `json:"seed"`
}

type PositionResult struct {
	String int `json:"string"`
	Fret   int `json:"fret"`
}

type OptimizeResponse struct {
	RunID        string             `json:"run_id"`
	Fitness      float64            `json:"fitness"`
	Generations  int                `json:"generations"`
	TerminatedBy string             `json:"terminated_by"`
	Tab          [][]PositionResult `json:"tab"`
	Ascii        string             `json:"ascii"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
