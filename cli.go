package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

type rootOptions struct {
	configPath string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "qa-forum",
		Short:         "Classroom Q&A forum",
		Long:          "Students post questions, instructors dismiss them and award participation points.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config YAML file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newResetCommand(opts))
	cmd.AddCommand(newCreditAllCommand(opts))
	cmd.AddCommand(newScoresCommand(opts))
	return cmd
}

// withApp loads config, opens the app and closes it after fn.
func withApp(ctx context.Context, opts *rootOptions, fn func(*App) error) error {
	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	setLogLevel(log, cfg.LogLevel)

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, opts, func(app *App) error {
				l := logFor("server")
				if empty, _ := IsStudentTableEmpty(app.db); empty {
					if _, err := os.Stat(app.cfg.SeedPath); err == nil {
						if _, err := SeedFromJSON(app.db, app.cfg.SeedPath); err != nil {
							return err
						}
						l.WithField("path", app.cfg.SeedPath).Info("seeded roster")
					}
				}

				view := app.StartView(ctx)
				defer view.Close()

				gin.SetMode(gin.ReleaseMode)
				srv := app.Server(view)
				errc := make(chan error, 1)
				go func() {
					l.WithFields(logrus.Fields{
						"addr": app.cfg.Addr, "version": version, "built": buildTime,
						"redis": app.relay != nil, "atomicCredit": app.cfg.AtomicCredit,
					}).Info("listening")
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						errc <- err
					}
					close(errc)
				}()

				select {
				case err := <-errc:
					return err
				case <-ctx.Done():
				}
				l.Info("shutting down")
				sctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGrace)
				defer cancel()
				return srv.Shutdown(sctx)
			})
		},
	}
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load students (and optional open questions) from a JSON roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *App) error {
				roster, err := SeedFromJSON(app.db, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d students, %d questions\n", len(roster.Students), len(roster.Questions))
				return nil
			})
		},
	}
}

func newResetCommand(opts *rootOptions) *cobra.Command {
	var students bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all open questions to start a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *App) error {
				withStudents := students || app.cfg.ResetStudents
				res, err := app.mod.ResetSession(cmd.Context(), withStudents)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d questions, %d score rows\n", res.Questions, res.Students)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&students, "students", false, "also clear every score row")
	return cmd
}

func newCreditAllCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "credit-all",
		Short: "Credit every asker once per open question, then clear them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *App) error {
				view := app.StartView(cmd.Context())
				defer view.Close()

				res, err := app.mod.CreditAll(cmd.Context(), view.Questions(), view.Students())
				for _, t := range res.Credited {
					fmt.Fprintf(cmd.OutOrStdout(), "%s +%d\n", t.Name, t.Count)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d questions\n", res.Removed)
				return err
			})
		},
	}
}

func newScoresCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "Print the score table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *App) error {
				scores, err := app.store.ListStudents(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tANSWERED")
				for _, s := range scores {
					fmt.Fprintf(w, "%s\t%d\n", s.Name, s.QuestionsAnswered)
				}
				return w.Flush()
			})
		},
	}
}
