package consolecli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
	"github.com/ritikrathore0011/Employee-Management/internal/backend/backendtest"
	"github.com/ritikrathore0011/Employee-Management/internal/envutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(args, &out, &out)
	return out.String(), err
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"bogus"},
		{"assets"},
		{"assets", "bogus"},
		{"export"},
		{"setup", "--nope"},
	} {
		_, err := run(t, args...)
		assert.ErrorIs(t, err, ErrUsage, "%v", args)
	}
}

func TestSetupWritesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	out, err := run(t, "setup", "--env-file", path, "--api-base-url", "http://api.test/api/")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	values, err := envutil.ReadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/api", values["API_BASE_URL"])
	assert.Equal(t, ":3000", values["CONSOLE_ADDR"])
	assert.GreaterOrEqual(t, len(values["SESSION_SECRET"]), 32)

	_, err = run(t, "setup", "--env-file", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "setup", "--env-file", path, "--force", "--session-secret", "short")
	assert.ErrorContains(t, err, "invalid session secret")

	_, err = run(t, "setup", "--env-file", path, "--force", "--session-secret", "0123456789abcdef0123")
	require.NoError(t, err)
	values, err = envutil.ReadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123", values["SESSION_SECRET"])
}

func TestExportAttendance(t *testing.T) {
	srv := backendtest.New(t)
	srv.Lock()
	srv.Records = []backend.AttendanceRecord{
		{ID: "2", Date: "2025-04-02", LoginTime: "2025-04-02 09:00:00", LogoutTime: "2025-04-02 18:00:00"},
		{ID: "1", Date: "2025-04-01", LoginTime: "2025-04-01 09:30:00", LogoutTime: "2025-04-01 17:30:00"},
	}
	srv.Unlock()

	out := filepath.Join(t.TempDir(), "exports", "april.xlsx")
	path, err := exportAttendance(context.Background(), exportOptions{
		apiBaseURL: srv.BaseURL(),
		username:   "ravi",
		password:   backendtest.EmployeePassword,
		month:      "2025-04",
		out:        out,
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, out, path)

	call, ok := srv.LastCall("/records")
	require.True(t, ok)
	assert.Equal(t, backendtest.EmployeeToken, call.Token)
	assert.EqualValues(t, 2025, call.Body["year"])
	assert.EqualValues(t, 4, call.Body["month"])

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)
	assert.Equal(t, "Ravi Kumar Apr 2025", sheet)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "01/04/2025", rows[1][0])
	assert.Equal(t, "02/04/2025", rows[2][0])
}

func TestExportAttendanceNeedsCredentials(t *testing.T) {
	_, err := exportAttendance(context.Background(), exportOptions{apiBaseURL: "http://127.0.0.1:1/api"}, time.Now())
	assert.ErrorIs(t, err, ErrUsage)

	_, err = exportAttendance(context.Background(), exportOptions{token: "x", month: "April"}, time.Now())
	assert.ErrorIs(t, err, ErrUsage)
}

func TestExportAttendanceRejectedToken(t *testing.T) {
	srv := backendtest.New(t)
	_, err := exportAttendance(context.Background(), exportOptions{
		apiBaseURL: srv.BaseURL(),
		token:      "stale",
		out:        filepath.Join(t.TempDir(), "a.xlsx"),
	}, time.Now())
	assert.ErrorContains(t, err, "rejected the token")
}

func TestTailwindReleaseAssetName(t *testing.T) {
	name, err := tailwindReleaseAssetName("linux", "amd64")
	require.NoError(t, err)
	assert.Equal(t, "tailwindcss-linux-x64", name)

	_, err = tailwindReleaseAssetName("plan9", "386")
	assert.Error(t, err)
}

func TestTailwindBinaryDownloadedOnce(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/"+tailwindVersion+"/tailwindcss-linux-x64" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("#!/bin/sh\n"))
	}))
	t.Cleanup(srv.Close)

	sheet := stylesheet{root: t.TempDir(), releaseURL: srv.URL, client: srv.Client(), goos: "linux", goarch: "amd64"}
	path, err := sheet.ensureBinary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sheet.root, "bin", "tailwindcss"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111)

	_, err = sheet.ensureBinary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	sheet.root, sheet.goarch = t.TempDir(), "arm64"
	_, err = sheet.ensureBinary(context.Background())
	assert.ErrorContains(t, err, "404")
}
