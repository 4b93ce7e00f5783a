package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/nao1215/staffscan/internal/config"
)

// NewTitlesCmd creates the titles command.
func NewTitlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "titles",
		Short: "Print the job title catalog",
		Long: `Titles prints the job title categories accepted by --categories.

Examples:
  # Show the categories
  staffscan titles

  # Show the titles used for website extraction when none are given
  staffscan titles --defaults`,
		Args: cobra.NoArgs,
		RunE: runTitlesCmd,
	}
	cmd.Flags().Bool("defaults", false, "Print the default website search titles")
	return cmd
}

func runTitlesCmd(cmd *cobra.Command, _ []string) error {
	defaults, err := cmd.Flags().GetBool("defaults")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if defaults {
		for _, t := range config.DefaultSearchTitles() {
			fmt.Fprintln(out, t)
		}
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Job Title Categories")
	tw.AppendHeader(table.Row{"#", "Category", "Titles"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: 80},
	})
	for i, c := range config.TitleCatalog() {
		tw.AppendRow(table.Row{i + 1, c.Name, strings.Join(c.Titles, ", ")})
	}
	tw.Render()
	return nil
}
