package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/jsphweid/fretwise/chromosome"
	"github.com/jsphweid/fretwise/config"
	"github.com/jsphweid/fretwise/engine"
	"github.com/jsphweid/fretwise/model"
	"github.com/jsphweid/fretwise/render"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var serveConfig config.Config

func init() {
	serveCmd.Flags().StringVar(&tabConfigPath, "config", "", "yaml run configuration")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the optimizer over HTTP",
	Long:  `Serves POST /optimize, taking a note sequence and answering with the best tablature found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadServeConfig(); err != nil {
			return err
		}
		return serve()
	},
}

// LoadServeConfig initializes the server-wide run configuration. Exported
// so tests can set the server up without cobra.
func LoadServeConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	serveConfig = cfg
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: err.Error()})
}

func HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var input model.OptimizeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, 400, fmt.Errorf("could not parse request body: %w", err))
		return
	}
	if len(input.Events) == 0 {
		writeError(w, 400, fmt.Errorf("need at least one note event"))
		return
	}

	events := make([]model.NoteEvent, len(input.Events))
	for i, e := range input.Events {
		events[i] = model.NoteEvent{Pitches: e.Pitches, Onset: e.Onset, Duration: e.Duration}
	}

	cfg := serveConfig
	if input.Seed != nil {
		cfg.Engine.Seed = *input.Seed
	}

	inst, err := cfg.NewInstrument()
	if err != nil {
		writeError(w, 400, err)
		return
	}
	enc, err := chromosome.NewEncoder(inst, events)
	if err != nil {
		writeError(w, 422, err)
		return
	}
	eng, err := engine.New(enc, cfg.Engine)
	if err != nil {
		writeError(w, 400, err)
		return
	}

	// progress lands in the server log, debounced so long runs don't spam
	debounced := debounce.New(250 * time.Millisecond)
	var latest engine.GenerationStats
	eng.Progress = func(stats engine.GenerationStats) {
		latest = stats
		debounced(func() {
			log.Printf("gen %v: best %.2f avg %.2f", latest.Generation, latest.Best, latest.Avg)
		})
	}

	res, err := eng.Run(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}

	tab := make([][]model.PositionResult, len(res.Best.Assignments))
	for i, assignment := range res.Best.Assignments {
		tab[i] = make([]model.PositionResult, len(assignment))
		for j, pos := range assignment {
			tab[i][j] = model.PositionResult{String: pos.String, Fret: pos.Fret}
		}
	}

	json.NewEncoder(w).Encode(model.OptimizeResponse{
		RunID:        res.RunID,
		Fitness:      res.BestFitness,
		Generations:  res.Generations,
		TerminatedBy: res.TerminatedBy,
		Tab:          tab,
		Ascii:        render.Ascii(inst, res.Best),
	})
}

func serve() error {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/optimize", HandleOptimize).Methods("POST")
	handler := cors.Default().Handler(router)
	log.Println("listening on :8080")
	return http.ListenAndServe(":8080", handler)
}
