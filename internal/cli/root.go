// Package cli implements the practice client: a terminal loop that records
// the microphone, converts the recording and submits it to the trainer API.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/config"
)

// Dependencies are shared by all commands.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// ServerURL is the trainer API base, e.g. http://localhost:5000.
	ServerURL string
}

// NewRootCmd builds the trainer command tree.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trainer",
		Short: "Practice Vietnamese pronunciation from the terminal",
		Long: "Records short utterances from the microphone, converts them to the\n" +
			"format the recognition gateway expects and reports whether the\n" +
			"pronunciation matched the practiced word.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&deps.ServerURL, "server", "http://localhost:5000", "Trainer API base URL")

	rootCmd.AddCommand(NewPracticeCmd(deps))
	rootCmd.AddCommand(NewWordsCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
