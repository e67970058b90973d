package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simplycomply/compliance-api/internal/bootstrap"
	"github.com/simplycomply/compliance-api/internal/catalog"
	"github.com/simplycomply/compliance-api/internal/config"
	"github.com/simplycomply/compliance-api/internal/core/usecase"
	"github.com/simplycomply/compliance-api/internal/infrastructure/queue/nats"
	"github.com/simplycomply/compliance-api/internal/infrastructure/repository/postgres"
	"github.com/simplycomply/compliance-api/internal/observability/logging"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("compliance-ctl", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(cfg, os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "ctl",
		Short:         "Operator tooling for the compliance API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(migrateCmd(cfg), catalogCmd(), recomputeCmd(cfg), eventsCmd(cfg))
	return root
}

func migrateCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres schema and tables if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := bootstrap.OpenPostgres(cmd.Context(), cfg)
			if err != nil {
				return codeError(2, "%s", err)
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema %s is up to date\n", cfg.DBName)
			return nil
		},
	}
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the embedded sector catalog",
	}

	var sector string
	list := &cobra.Command{
		Use:   "list",
		Short: "List sectors, or the artifacts and requirements of one sector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listCatalog(cmd.OutOrStdout(), catalog.Default(), sector)
		},
	}
	list.Flags().StringVar(&sector, "sector", "", "Sector id to expand")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check artifact keys and item types of every sector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := catalog.Default().Validate(); err != nil {
				return codeError(3, "%s", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "catalog ok")
			return nil
		},
	}

	cmd.AddCommand(list, validate)
	return cmd
}

func listCatalog(out io.Writer, c *catalog.Catalog, sector string) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	if sector == "" {
		fmt.Fprintln(tw, "ID\tNAME\tREGULATOR\tARTIFACTS\tREQUIREMENTS")
		for _, s := range c.Sectors() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", s.ID, s.Name, s.Regulator, len(c.Artifacts(s.ID)), len(c.Requirements(s.ID)))
		}
		return nil
	}
	fmt.Fprintln(tw, "KEY\tTYPE\tCATEGORY\tREQUIRED\tTITLE")
	for _, a := range c.Artifacts(sector) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", a.Key, a.Type, a.Category, a.Required, a.Title)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "REQUIREMENT\tMANDATORY\tRENEWAL_MONTHS\tTITLE")
	for _, r := range c.Requirements(sector) {
		renewal := "-"
		if r.RenewalMonths != nil {
			renewal = fmt.Sprint(*r.RenewalMonths)
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", r.Type, r.Mandatory, renewal, r.Title)
	}
	return nil
}

func recomputeCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <business-id>",
		Short: "Rerun the score engine for one business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootstrap.OpenPostgres(cmd.Context(), cfg)
			if err != nil {
				return codeError(2, "%s", err)
			}
			defer db.Close()

			repos := postgres.New(db)
			engine := usecase.NewScoreEngine(repos.Businesses, repos.Items, repos.Scores, nil, nil)
			score, err := engine.Recompute(cmd.Context(), args[0])
			if err != nil {
				return codeError(1, "recompute %s: %s", args[0], err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(score)
		},
	}
}

func eventsCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect published domain events",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Print item and score events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.NATSURL == "" {
				return codeError(3, "NATS_URL is not set")
			}
			publisher, err := nats.New(cfg.NATSURL, cfg.NATSSubjectPrefix)
			if err != nil {
				return codeError(2, "%s", err)
			}
			defer publisher.Close()
			out := cmd.OutOrStdout()
			return publisher.Watch(cmd.Context(), func(subject string, payload []byte) {
				fmt.Fprintf(out, "%s %s\n", subject, payload)
			})
		},
	})
	return cmd
}
