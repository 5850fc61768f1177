package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/words"
)

// NewWordsCmd lists the practice vocabulary.
func NewWordsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List the practice words",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WORD\tTRANSLATION")
			for _, entry := range words.All() {
				fmt.Fprintf(w, "%s\t%s\n", entry.Word, entry.Translation)
			}
			return w.Flush()
		},
	}
}
