package cmd

import (
	"context"
	"fmt"

	"github.com/jsphweid/fretwise/archive"
	"github.com/jsphweid/fretwise/chromosome"
	"github.com/jsphweid/fretwise/config"
	"github.com/jsphweid/fretwise/engine"
	"github.com/jsphweid/fretwise/midi"
	"github.com/jsphweid/fretwise/model"
	"github.com/jsphweid/fretwise/plot"
	"github.com/jsphweid/fretwise/render"
	"github.com/jsphweid/fretwise/score"
	"github.com/jsphweid/fretwise/util"
	"github.com/spf13/cobra"
)

var (
	tabConfigPath  string
	tabSeed        int64
	tabParallelism int
	tabPlotPath    string
	tabMidiOut     string
	tabSavePath    string
	tabArchive     bool
)

func init() {
	tabCmd.Flags().StringVar(&tabConfigPath, "config", "", "yaml run configuration")
	tabCmd.Flags().Int64Var(&tabSeed, "seed", 0, "random seed (overrides config when non-zero)")
	tabCmd.Flags().IntVar(&tabParallelism, "parallelism", 0, "fitness workers (overrides config when non-zero)")
	tabCmd.Flags().StringVar(&tabPlotPath, "plot", "", "write fitness history png")
	tabCmd.Flags().StringVar(&tabMidiOut, "midi-out", "", "write playback midi of the best tab")
	tabCmd.Flags().StringVar(&tabSavePath, "save", "", "save the run result for later inspection")
	tabCmd.Flags().BoolVar(&tabArchive, "archive", false, "archive the run in DynamoDB")
	rootCmd.AddCommand(tabCmd)
}

var tabCmd = &cobra.Command{
	Use:   "tab <file.mid>",
	Short: "Optimizes a tablature",
	Long:  `Optimizes a tablature for a midi file and prints it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTab(args[0])
	},
}

// SavedRun is the gob-persisted form of a finished run, written by
// tab --save and read back by inspect.
type SavedRun struct {
	Source string
	Events []model.NoteEvent
	Config config.Config
	Result engine.Result
	Ascii  string
}

func loadConfig() (config.Config, error) {
	if tabConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(tabConfigPath)
}

func runTab(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if tabSeed != 0 {
		cfg.Engine.Seed = tabSeed
	}
	if tabParallelism != 0 {
		cfg.Engine.Parallelism = tabParallelism
	}

	parsed, err := midi.ReadMidiFile(path)
	if err != nil {
		return err
	}
	events, err := score.Extract(parsed)
	if err != nil {
		return err
	}

	inst, err := cfg.NewInstrument()
	if err != nil {
		return err
	}
	enc, err := chromosome.NewEncoder(inst, events)
	if err != nil {
		return err
	}
	eng, err := engine.New(enc, cfg.Engine)
	if err != nil {
		return err
	}

	res, err := eng.Run(context.Background())
	if err != nil {
		return err
	}

	ascii := render.Ascii(inst, res.Best)
	fmt.Printf("%v events, %v generations, terminated by %v\n", len(events), res.Generations, res.TerminatedBy)
	fmt.Printf("best fitness: %.2f (moves %.2f, span %.2f, crossings %.2f, open bonus %.2f)\n",
		res.BestFitness, res.BestBreakdown.FretMove, res.BestBreakdown.Span,
		res.BestBreakdown.StringCross, res.BestBreakdown.OpenBonus)
	fmt.Println(ascii)

	if tabPlotPath != "" {
		if err := plot.SaveHistory(res.History, path, tabPlotPath); err != nil {
			return err
		}
	}
	if tabMidiOut != "" {
		out := render.ToSMF(inst, events, res.Best, cfg.BPM)
		if err := midi.WriteMidiFile(tabMidiOut, out); err != nil {
			return err
		}
	}
	if tabSavePath != "" {
		saved := SavedRun{Source: path, Events: events, Config: cfg, Result: *res, Ascii: ascii}
		if err := util.WriteBinary(tabSavePath, saved); err != nil {
			return err
		}
	}
	if tabArchive {
		rec := archive.RunRecord{
			RunID:        res.RunID,
			Source:       path,
			BestFitness:  res.BestFitness,
			Generations:  res.Generations,
			TerminatedBy: res.TerminatedBy,
			Tab:          ascii,
		}
		if err := archive.PutRun(rec); err != nil {
			return err
		}
		fmt.Printf("archived run %v\n", res.RunID)
	}
	return nil
}
