package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gomeasure/internal/config"
	"gomeasure/internal/container"
	"gomeasure/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// session is shared by every subcommand once the root pre-run has loaded
// configuration and opened the ledger.
type session struct {
	container *container.Container
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if isPreflightFailure(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run executes one command line. The session is closed whatever the command
// returns, so failed runs still flush metrics and release the ledger.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	s := &session{}
	rootCmd := newRootCmd(s)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if closeErr := s.close(context.WithoutCancel(ctx)); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

func newRootCmd(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gomeasure",
		Short:         "Audit ground truth and inspect the validation ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		newPreflightCmd(s),
		newRecordsCmd(s),
	)
	return rootCmd
}

func (s *session) open(ctx context.Context) error {
	// A missing .env file is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := logging.Init(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	s.container, err = container.New(ctx, cfg, logger)
	return err
}

func (s *session) close(ctx context.Context) error {
	if s.container == nil {
		return nil
	}
	c := s.container
	s.container = nil
	return c.Shutdown(ctx)
}
