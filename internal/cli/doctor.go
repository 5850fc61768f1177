package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/audio"
)

// NewDoctorCmd checks the practice prerequisites.
func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ok := true

			if audio.Supported() {
				fmt.Fprintln(out, "✓ Microphone: input device available")
			} else {
				fmt.Fprintln(out, "✗ Microphone: no input device found")
				ok = false
			}

			client := newAPIClient(deps.ServerURL)
			if err := client.Health(cmd.Context()); err != nil {
				fmt.Fprintf(out, "✗ Trainer API: %s unreachable (%v)\n", deps.ServerURL, err)
				ok = false
			} else {
				fmt.Fprintf(out, "✓ Trainer API: %s\n", deps.ServerURL)
			}

			if deps.Config.Recognition.ResolveAPIKey() != "" {
				fmt.Fprintln(out, "✓ Recognition API key: configured")
			} else {
				fmt.Fprintln(out, "✗ Recognition API key: not set (only needed when running the server)")
			}

			if ok {
				fmt.Fprintln(out, "\nAll prerequisites met. Ready to practice!")
			} else {
				fmt.Fprintln(out, "\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
