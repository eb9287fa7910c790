package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/j-veylop/venue-usage-tui/internal/config"
	"github.com/j-veylop/venue-usage-tui/internal/models"
	"github.com/j-veylop/venue-usage-tui/internal/services"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage venue session credentials",
		Long: `Store the venue session token (PHPSESSID) used for each project.

A running dashboard picks up changes immediately.`,
	}
	cmd.AddCommand(
		newSessionSetCommand(),
		newSessionBrowserCommand(),
		newSessionListCommand(),
		newSessionDeleteCommand(),
	)
	return cmd
}

func newSessionSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <project> <token>",
		Short: "Store a session token pasted from the browser",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(cfg *config.Config, mgr *services.Manager) error {
				if _, err := cfg.Project(args[0]); err != nil {
					return err
				}
				if err := mgr.Sessions().Set(args[0], args[1], models.SourceManual); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session stored for %s\n", args[0])
				return nil
			})
		},
	}
}

func newSessionBrowserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browser <project>",
		Short: "Copy the venue session cookie from a local browser",
		Long:  "Reads the freshest PHPSESSID cookie for the venue domain from every local browser cookie store and stores it for the project.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(cfg *config.Config, mgr *services.Manager) error {
				if _, err := cfg.Project(args[0]); err != nil {
					return err
				}
				sess, err := mgr.Sessions().ImportFromBrowser(cmd.Context(), args[0], nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s stored for %s\n", sess.Masked(), sess.Project)
				return nil
			})
		},
	}
}

func newSessionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(func(_ *config.Config, mgr *services.Manager) error {
				list := mgr.Sessions().List()
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sessions stored")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PROJECT\tTOKEN\tSOURCE\tUPDATED")
				for _, s := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Project, s.Masked(), s.Source,
						s.UpdatedAt.Local().Format("2006-01-02 15:04"))
				}
				return w.Flush()
			})
		},
	}
}

func newSessionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project>",
		Short: "Forget a project's session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(func(_ *config.Config, mgr *services.Manager) error {
				if err := mgr.Sessions().Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session removed for %s\n", args[0])
				return nil
			})
		},
	}
}
