package bootstrap

import (
	"fmt"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"setup-devenv/internal/state"
)

const bannerText = "devenv"

// PrintBanner writes the ASCII banner shown at the start of a run.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, color.CyanString(figure.NewFigure(bannerText, "", true).String()))
}

// PrintSummary writes the per-step outcome table followed by next steps.
func PrintSummary(w io.Writer, st *state.State, notes []string) {
	fmt.Fprintln(w)
	WriteStepTable(w, st.Steps)

	if st.Error != "" {
		fmt.Fprintln(w, color.RedString("Setup failed: %s", st.Error))
		return
	}
	if st.DryRun {
		fmt.Fprintln(w, color.YellowString("Dry run complete, nothing was changed."))
	} else {
		fmt.Fprintln(w, color.GreenString("Setup complete."))
	}
	if len(notes) == 0 {
		return
	}
	fmt.Fprintln(w, "Next steps:")
	for _, n := range notes {
		fmt.Fprintf(w, "  - %s\n", n)
	}
}

// WriteStepTable renders recorded steps as a borderless table.
func WriteStepTable(w io.Writer, steps []state.StepRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"STEP", "RESULT", "DETAIL"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, s := range steps {
		table.Append([]string{s.Name, outcomeLabel(s.Outcome), s.Detail})
	}
	table.Render()
}

func outcomeLabel(o state.Outcome) string {
	label := strings.ToUpper(string(o))
	switch o {
	case state.Done:
		return color.GreenString(label)
	case state.Warning:
		return color.YellowString(label)
	case state.Failed:
		return color.RedString(label)
	}
	return label
}
