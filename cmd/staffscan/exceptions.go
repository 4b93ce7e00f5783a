package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/staffscan/internal/model"
	"github.com/nao1215/staffscan/internal/validator"
)

// errNeedFullName is returned for exception names without a last name.
var errNeedFullName = errors.New("give a first and last name, e.g. \"Jane Smith\"")

// NewExceptionsCmd creates the exceptions command.
func NewExceptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exceptions",
		Short: "Manage learned name validation exceptions",
		Long: `Exceptions are names that name validation always accepts (include)
or always rejects (exclude). They are learned when you decide uncertain
names during 'staffscan run' or 'staffscan validate', and can be edited here.

Examples:
  staffscan exceptions list
  staffscan exceptions include "Siobhan Featherstonehaugh"
  staffscan exceptions exclude "Princes Street"
  staffscan exceptions remove "Princes Street"
  staffscan exceptions import name_exceptions.json`,
		Args: cobra.NoArgs,
	}

	cmd.AddCommand(newExceptionsListCmd())
	cmd.AddCommand(newExceptionsSetCmd("include", true))
	cmd.AddCommand(newExceptionsSetCmd("exclude", false))
	cmd.AddCommand(newExceptionsRemoveCmd())
	cmd.AddCommand(newExceptionsImportCmd())
	return cmd
}

func newExceptionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exceptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd, true)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ListExceptions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No exceptions stored.")
				return nil
			}

			tw := newHistoryTable(out)
			tw.SetTitle(fmt.Sprintf("Name exceptions (%d)", len(entries)))
			tw.AppendHeader(table.Row{"Name", "Key", "Decision", "Updated"})
			for _, e := range entries {
				tw.AppendRow(table.Row{e.Name, e.Key, exceptionDecision(e.Include), humanize.Time(e.UpdatedAt)})
			}
			tw.Render()
			return nil
		},
	}
}

func newExceptionsSetCmd(use string, include bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>...",
		Short: fmt.Sprintf("Always %s the given names", use),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make([]model.NameException, 0, len(args))
			now := time.Now()
			for _, name := range args {
				key, err := exceptionKey(name)
				if err != nil {
					return err
				}
				entries = append(entries, model.NameException{
					Key:       key,
					Name:      strings.Join(strings.Fields(name), " "),
					Include:   include,
					UpdatedAt: now,
				})
			}

			store, err := openStore(cmd, true)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveExceptions(cmd.Context(), entries); err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", exceptionDecision(include), e.Name)
			}
			return nil
		},
	}
}

func newExceptionsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>...",
		Short: "Forget the decision for the given names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd, true)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, name := range args {
				key, err := exceptionKey(name)
				if err != nil {
					return err
				}
				removed, err := store.RemoveException(cmd.Context(), key)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(cmd.OutOrStdout(), "removed: %s\n", name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "not found: %s\n", name)
				}
			}
			return nil
		},
	}
}

func newExceptionsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <name_exceptions.json>",
		Short: "Import an always_include / always_exclude file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) //nolint:gosec // path is chosen by the operator
			if err != nil {
				return fmt.Errorf("failed to read exceptions file: %w", err)
			}
			entries, err := validator.ParseExceptionsFile(data)
			if err != nil {
				return err
			}

			store, err := openStore(cmd, true)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveExceptions(cmd.Context(), entries); err != nil {
				return err
			}

			included := 0
			for _, e := range entries {
				if e.Include {
					included++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d exceptions (%d include, %d exclude)\n",
				len(entries), included, len(entries)-included)
			return nil
		},
	}
}

func exceptionKey(name string) (string, error) {
	if len(strings.Fields(name)) < 2 {
		return "", fmt.Errorf("%w: %q", errNeedFullName, name)
	}
	return model.NameKeyFromFull(name), nil
}

func exceptionDecision(include bool) string {
	if include {
		return "include"
	}
	return "exclude"
}
