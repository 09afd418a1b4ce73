package consolecli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritikrathore0011/Employee-Management/internal/attendance"
	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

type exportOptions struct {
	apiBaseURL string
	token      string
	username   string
	password   string
	month      string
	out        string
	name       string
}

func newExportCmd() *cobra.Command {
	export := &cobra.Command{
		Use:   "export",
		Short: "Export data from the backend",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return fmt.Errorf("%w: usage: emconsole export attendance", ErrUsage)
		},
	}

	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Write your monthly attendance to an .xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := exportAttendance(cmd.Context(), opts, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.apiBaseURL, "api-base-url", envOr("API_BASE_URL", backend.DefaultBaseURL), "REST backend base URL")
	cmd.Flags().StringVar(&opts.token, "token", os.Getenv("CONSOLE_API_TOKEN"), "backend access token")
	cmd.Flags().StringVar(&opts.username, "username", "", "sign in with this username instead of --token")
	cmd.Flags().StringVar(&opts.password, "password", "", "password for --username")
	cmd.Flags().StringVar(&opts.month, "month", "", "month as YYYY-MM (default current month)")
	cmd.Flags().StringVar(&opts.out, "out", "", "output file (default attendance-YYYY-MM.xlsx)")
	cmd.Flags().StringVar(&opts.name, "name", "", "sheet title (default the signed-in name)")
	export.AddCommand(cmd)
	return export
}

func exportAttendance(ctx context.Context, opts exportOptions, now time.Time) (string, error) {
	year, month, err := attendance.ParseMonth(opts.month, now)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUsage, err)
	}
	api := backend.New(opts.apiBaseURL, nil)

	token, name := opts.token, opts.name
	switch {
	case token != "":
	case opts.username != "":
		user, err := api.Login(ctx, opts.username, opts.password)
		if err != nil {
			return "", fmt.Errorf("sign in: %w", err)
		}
		token = user.AccessToken
		if name == "" {
			name = user.Name
		}
	default:
		return "", fmt.Errorf("%w: --token or --username is required", ErrUsage)
	}

	records, err := api.Records(ctx, token, year, int(month))
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return "", errors.New("backend rejected the token")
		}
		return "", fmt.Errorf("fetch attendance: %w", err)
	}
	attendance.SortByDate(records.Records)

	path := opts.out
	if path == "" {
		path = fmt.Sprintf("attendance-%04d-%02d.xlsx", year, int(month))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := attendance.ExportXLSX(file, attendance.SheetName(name, year, month), records.Records); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}
