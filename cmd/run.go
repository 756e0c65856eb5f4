package cmd

import (
	"fmt"

	"github.com/jsphweid/fretwise/archive"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Shows an archived run",
	Long:  `Fetches a run previously archived with tab --archive and prints it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRun(args[0])
	},
}

func showRun(id string) error {
	rec, err := archive.GetRun(id)
	if err != nil {
		return err
	}
	fmt.Printf("run: %v\n", rec.RunID)
	fmt.Printf("source: %v\n", rec.Source)
	fmt.Printf("generations: %v (terminated by %v)\n", rec.Generations, rec.TerminatedBy)
	fmt.Printf("best fitness: %.2f\n", rec.BestFitness)
	fmt.Println(rec.Tab)
	return nil
}
