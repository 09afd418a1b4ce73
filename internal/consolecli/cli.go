// Package consolecli implements the emconsole command line.
package consolecli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
	"github.com/ritikrathore0011/Employee-Management/internal/clientapp"
	"github.com/ritikrathore0011/Employee-Management/internal/envutil"
	"github.com/ritikrathore0011/Employee-Management/internal/security"
	"github.com/ritikrathore0011/Employee-Management/internal/session"
)

var ErrUsage = errors.New("usage")

// Execute runs the command line with args (without the program name).
func Execute(args []string) error {
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil && !errors.Is(err, ErrUsage) && strings.HasPrefix(err.Error(), "unknown command") {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return err
}

// PrintUsage writes the command summary shown after a usage error.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: emconsole setup [--api-base-url URL] [--session-secret SECRET] [--env-file .env] [--force]")
	fmt.Fprintln(w, "       emconsole run [--env-file .env]")
	fmt.Fprintln(w, "       emconsole assets build")
	fmt.Fprintln(w, "       emconsole export attendance (--token TOKEN | --username USER --password PASS) [--month YYYY-MM] [--out FILE]")
}

func usageError() error {
	return fmt.Errorf("%w: emconsole <setup|run|assets|export> [...]", ErrUsage)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "emconsole",
		Short:         "Employee management console",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
			}
			return usageError()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	root.AddCommand(newSetupCmd(), newRunCmd(), newAssetsCmd(), newExportCmd())
	return root
}

func newSetupCmd() *cobra.Command {
	var (
		apiBaseURL string
		secret     string
		addr       string
		envPath    string
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Write a .env file for the console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				generated, err := security.RandomToken(32)
				if err != nil {
					return fmt.Errorf("generate session secret: %w", err)
				}
				secret = generated
			}
			if _, err := session.NewCookieCodec(secret); err != nil {
				return fmt.Errorf("invalid session secret: %w", err)
			}

			values := map[string]string{
				"CONSOLE_ADDR":    addr,
				"API_BASE_URL":    strings.TrimRight(apiBaseURL, "/"),
				"SESSION_SECRET":  secret,
				"SESSION_TTL":     "12h",
				"SESSION_DB_PATH": "data/sessions.db",
			}
			if err := envutil.WriteDotEnv(envPath, values, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", envPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiBaseURL, "api-base-url", backend.DefaultBaseURL, "REST backend base URL")
	cmd.Flags().StringVar(&secret, "session-secret", "", "cookie signing secret (generated when empty)")
	cmd.Flags().StringVar(&addr, "addr", ":3000", "console listen address")
	cmd.Flags().StringVar(&envPath, "env-file", ".env", "path to .env file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing env file")
	return cmd
}

func newRunCmd() *cobra.Command {
	var envPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve the console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := envutil.LoadDotEnv(envPath); err != nil {
				return fmt.Errorf("load .env: %w", err)
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg := clientapp.DefaultConfigFromEnv()
			if cfg.SessionSecret == "" {
				return errors.New("SESSION_SECRET is not set (run emconsole setup)")
			}
			if err := clientapp.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&envPath, "env-file", ".env", "path to .env file")
	return cmd
}
