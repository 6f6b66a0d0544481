package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"setup-devenv/internal/config"
	"setup-devenv/internal/platform"
)

// detectCmd prints what a run would target without changing anything.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the detected OS profile and host facts",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := platform.Detect(platform.DefaultProbe())
		if err != nil {
			return err
		}
		catalog, err := config.LoadCatalog()
		if err != nil {
			return err
		}
		p, err := catalog.ProfileFor(h)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Profile:         %s\n", h.Tag)
		fmt.Fprintf(w, "Package manager: %s\n", h.Manager)
		fmt.Fprintf(w, "Distribution:    %s %s\n", h.ID, h.VersionID)
		if h.PrettyName != "" {
			fmt.Fprintf(w, "Name:            %s\n", h.PrettyName)
		}
		fmt.Fprintf(w, "Hostname:        %s\n", h.Hostname)
		fmt.Fprintf(w, "Kernel:          %s (%s)\n", h.Kernel, h.Arch)
		fmt.Fprintf(w, "Base packages:   %s\n", strings.Join(p.Base, " "))
		if len(p.Optional) > 0 {
			fmt.Fprintf(w, "Optional:        %s\n", strings.Join(p.Optional, " "))
		}
		return nil
	},
}
