package cmd

import (
	"fmt"
	"strconv"

	"github.com/jsphweid/fretwise/model"
	"github.com/spf13/cobra"
)

func init() {
	positionsCmd.Flags().StringVar(&tabConfigPath, "config", "", "yaml run configuration")
	rootCmd.AddCommand(positionsCmd)
}

var positionsCmd = &cobra.Command{
	Use:   "positions <midi-pitch>",
	Short: "Lists candidate positions",
	Long:  `Lists every (string, fret) position sounding the given midi pitch on the configured instrument.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pitch, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return fmt.Errorf("pitch must be a midi note number: %w", err)
		}
		return listPositions(model.Pitch(pitch))
	},
}

func listPositions(p model.Pitch) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inst, err := cfg.NewInstrument()
	if err != nil {
		return err
	}
	positions, err := inst.Positions(p)
	if err != nil {
		return err
	}
	fmt.Printf("%v (%v):\n", p, model.PitchName(p))
	for _, pos := range positions {
		open := ""
		if pos.Fret == 0 {
			open = " (open)"
		}
		fmt.Printf("  string %v fret %v%v\n", pos.String, pos.Fret, open)
	}
	return nil
}
