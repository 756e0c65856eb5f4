package cmd

import (
	"fmt"

	"github.com/jsphweid/fretwise/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <result.dat>",
	Short: "Inspects a saved run",
	Long:  `Inspects a run previously saved with tab --save.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func inspect(path string) error {
	saved, err := util.ReadBinary[SavedRun](path)
	if err != nil {
		return err
	}
	fmt.Printf("run: %v\n", saved.Result.RunID)
	fmt.Printf("source: %v\n", saved.Source)
	fmt.Printf("events: %v\n", len(saved.Events))
	fmt.Printf("seed: %v\n", saved.Config.Engine.Seed)
	fmt.Printf("generations: %v (terminated by %v)\n", saved.Result.Generations, saved.Result.TerminatedBy)
	fmt.Printf("best fitness: %.2f\n", saved.Result.BestFitness)
	fmt.Println(saved.Ascii)
	return nil
}
