package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fretwise",
	Short: "Evolves playable guitar tablature",
	Long:  `Searches for a playable (string, fret) arrangement of a midi file with a genetic algorithm.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
