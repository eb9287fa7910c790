package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/services"
)

func newRosterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the location roster of each project",
		Long:  "Import, list and delete the locations monitored for a project. Imports accept .xlsx and .csv files with LOC_ID and SITE_NAME columns.",
	}
	cmd.AddCommand(
		newRosterImportCommand(),
		newRosterListCommand(),
		newRosterDeleteCommand(),
		newRosterProjectsCommand(),
	)
	return cmd
}

func newRosterImportCommand() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Replace a project's roster from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(_ *config.Config, mgr *services.Manager) error {
				r, err := mgr.ImportRoster(cmd.Context(), project, args[0])
				if err != nil {
					return fmt.Errorf("import %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d locations into %s\n", r.Len(), project)
				return nil
			})
		},
	}
	addProjectFlag(cmd, &project)
	return cmd
}

func newRosterListCommand() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the locations of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(func(_ *config.Config, mgr *services.Manager) error {
				r, err := mgr.Roster(cmd.Context(), project)
				if err != nil {
					return err
				}
				if r.Len() == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No roster imported for %s\n", project)
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "LOC_ID\tSITE_NAME")
				for _, loc := range r.Locations {
					fmt.Fprintf(w, "%s\t%s\n", loc.ID, loc.DisplayName)
				}
				return w.Flush()
			})
		},
	}
	addProjectFlag(cmd, &project)
	return cmd
}

func newRosterDeleteCommand() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a project's roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(func(_ *config.Config, mgr *services.Manager) error {
				n, err := mgr.DeleteRoster(cmd.Context(), project)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d locations from %s\n", n, project)
				return nil
			})
		},
	}
	addProjectFlag(cmd, &project)
	return cmd
}

func newRosterProjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List configured projects and their roster sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(func(cfg *config.Config, mgr *services.Manager) error {
				stored, err := mgr.Database().ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				counts := make(map[string]int, len(stored))
				for _, p := range stored {
					counts[p.Name] = p.LocationCount
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PROJECT\tORG_ID\tLOCATIONS\tSESSION")
				for _, p := range cfg.Projects {
					session := "-"
					if s, ok := mgr.Sessions().Get(p.Name); ok {
						session = string(s.Source)
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.Name, p.OrgID, counts[p.Name], session)
				}
				return w.Flush()
			})
		},
	}
}

func addProjectFlag(cmd *cobra.Command, project *string) {
	cmd.Flags().StringVarP(project, "project", "p", "", "project name (see 'vud roster projects')")
	_ = cmd.MarkFlagRequired("project")
}
