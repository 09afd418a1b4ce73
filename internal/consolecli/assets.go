package consolecli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
)

const (
	tailwindVersion    = "v3.4.17"
	tailwindReleaseURL = "https://github.com/tailwindlabs/tailwindcss/releases/download"
)

// stylesheet locates the console's tailwind inputs and the cached binary
// relative to a checkout root.
type stylesheet struct {
	root       string
	releaseURL string
	client     *http.Client
	goos       string
	goarch     string
}

func newStylesheet(root string) stylesheet {
	return stylesheet{
		root:       root,
		releaseURL: tailwindReleaseURL,
		client:     http.DefaultClient,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
}

func (s stylesheet) input() string  { return s.path("internal", "clientapp", "assets", "tailwind.input.css") }
func (s stylesheet) output() string { return s.path("internal", "clientapp", "assets", "app.css") }
func (s stylesheet) config() string { return s.path("internal", "clientapp", "tailwind.config.js") }

func (s stylesheet) binary() string {
	name := "tailwindcss"
	if s.goos == "windows" {
		name += ".exe"
	}
	return s.path("bin", name)
}

func (s stylesheet) path(parts ...string) string {
	return filepath.Join(append([]string{s.root}, parts...)...)
}

func newAssetsCmd() *cobra.Command {
	assets := &cobra.Command{
		Use:   "assets",
		Short: "Manage console stylesheets",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return fmt.Errorf("%w: usage: emconsole assets build", ErrUsage)
		},
	}
	var root string
	build := &cobra.Command{
		Use:   "build",
		Short: "Build app.css with the tailwind standalone binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newStylesheet(root).build(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	build.Flags().StringVar(&root, "root", ".", "repository checkout to build in")
	assets.AddCommand(build)
	return assets
}

func (s stylesheet) build(ctx context.Context, stdout, stderr io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(s.output()), 0o755); err != nil {
		return fmt.Errorf("create assets directory: %w", err)
	}
	tailwind, err := s.ensureBinary(ctx)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, tailwind,
		"-i", s.input(),
		"-o", s.output(),
		"--config", s.config(),
		"--minify",
	)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build tailwind css: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s\n", s.output())
	return nil
}

// ensureBinary downloads the pinned release unless an executable copy is
// already cached.
func (s stylesheet) ensureBinary(ctx context.Context) (string, error) {
	dest := s.binary()
	if info, err := os.Stat(dest); err == nil && info.Mode()&0o111 != 0 {
		return dest, nil
	}

	asset, err := tailwindReleaseAssetName(s.goos, s.goarch)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create bin directory: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.releaseURL, tailwindVersion, asset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", asset, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", asset, resp.Status)
	}

	// Write beside the target so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tailwindcss-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", asset, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("install tailwind binary: %w", err)
	}
	return dest, nil
}

func tailwindReleaseAssetName(goos, goarch string) (string, error) {
	platform := map[string]string{"darwin": "macos", "linux": "linux", "windows": "windows"}[goos]
	arch := map[string]string{"amd64": "x64", "arm64": "arm64"}[goarch]
	if platform == "" || arch == "" {
		return "", fmt.Errorf("unsupported platform for automatic tailwind install: %s/%s", goos, goarch)
	}
	name := "tailwindcss-" + platform + "-" + arch
	if goos == "windows" {
		name += ".exe"
	}
	return name, nil
}
