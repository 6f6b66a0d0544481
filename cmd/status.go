package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"setup-devenv/internal/bootstrap"
	"setup-devenv/internal/state"
)

// statusCmd prints the record of the last run.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the result of the last run",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := state.DefaultPath()
		st, err := state.LoadState(path)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if st == nil {
			fmt.Fprintf(w, "No run recorded yet (%s)\n", path)
			return nil
		}

		fmt.Fprintf(w, "Last run: %s on %s (profile %s)\n", st.StartedAt.Format(time.RFC1123), st.Host, st.Profile)
		if !st.FinishedAt.IsZero() {
			fmt.Fprintf(w, "Duration: %s\n", st.FinishedAt.Sub(st.StartedAt).Round(time.Second))
		}
		bootstrap.WriteStepTable(w, st.Steps)
		if st.Error != "" {
			fmt.Fprintf(w, "Failed: %s\n", st.Error)
		} else if n := len(st.Warnings()); n > 0 {
			fmt.Fprintf(w, "Completed with %d warning(s)\n", n)
		}
		return nil
	},
}
