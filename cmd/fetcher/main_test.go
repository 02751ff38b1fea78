package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnocli/internal/config"
)

func archiveServer(t *testing.T, published map[string]bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "abc", Path: "/"})
			return
		}
		if published[r.URL.Path] {
			_, _ = w.Write([]byte("report"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fetchArgs(base string, srv *httptest.Server, extra ...string) []string {
	return append([]string{
		"-base", base,
		"-home-url", srv.URL + "/",
		"-archive-url", srv.URL,
		"-interval", "0s",
	}, extra...)
}

func TestRunDownloadsRange(t *testing.T) {
	srv := archiveServer(t, map[string]bool{
		"/content/nsccl/fao_participant_oi_03082020.csv": true,
		"/content/nsccl/fao_participant_oi_04082020.csv": true,
		"/content/fo/fii_stats_03-Aug-2020.xls":          true,
		"/content/indices/ind_close_all_04082020.csv":    true,
	})
	base := t.TempDir()

	var stdout, stderr bytes.Buffer
	args := fetchArgs(base, srv, "-from", "2020-08-03", "-to", "2020-08-09", "-fii-stats", "-index-closes")
	require.NoError(t, run(context.Background(), args, &stdout, &stderr, time.Now()), stderr.String())

	assert.Contains(t, stdout.String(), "Downloaded 2, already present 0, not published 3 (2020-08-03 to 2020-08-09)")
	downloads := filepath.Join(base, config.DefaultDownloadsDir)
	assert.FileExists(t, filepath.Join(downloads, "fao_participant_oi_03082020.csv"))
	assert.FileExists(t, filepath.Join(downloads, "fao_participant_oi_04082020.csv"))
	assert.FileExists(t, filepath.Join(downloads, "fii_stats_03-Aug-2020.xls"))
	assert.FileExists(t, filepath.Join(downloads, "ind_close_all_04082020.csv"))
	assert.Contains(t, stderr.String(), "Fetch complete")
}

func TestRunResumesAfterLatest(t *testing.T) {
	srv := archiveServer(t, map[string]bool{
		"/content/nsccl/fao_participant_oi_05082020.csv": true,
	})
	base := t.TempDir()
	downloads := filepath.Join(base, config.DefaultDownloadsDir)
	require.NoError(t, os.MkdirAll(downloads, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(downloads, "fao_participant_oi_04082020.csv"), []byte("old"), 0o644))

	now := time.Date(2020, 8, 5, 18, 0, 0, 0, time.UTC)
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), fetchArgs(base, srv), &stdout, &stderr, now), stderr.String())
	assert.Contains(t, stdout.String(), "Downloaded 1, already present 0, not published 0 (2020-08-05 to 2020-08-05)")

	stdout.Reset()
	require.NoError(t, run(context.Background(), fetchArgs(base, srv), &stdout, &stderr, now))
	assert.Contains(t, stdout.String(), "Up to date through 2020-08-05")
}

func TestDateRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

	from, to, err := dateRange("", "", 10, t.TempDir(), now)
	require.NoError(t, err)
	assert.Equal(t, day(3, 5), from)
	assert.Equal(t, day(3, 15), to)

	from, to, err = dateRange("2024-03-01", "2024-03-08", 10, t.TempDir(), now)
	require.NoError(t, err)
	assert.Equal(t, day(3, 1), from)
	assert.Equal(t, day(3, 8), to)

	_, _, err = dateRange("2024-03-09", "2024-03-08", 10, t.TempDir(), now)
	assert.Error(t, err)

	_, _, err = dateRange("08/03/2024", "", 10, t.TempDir(), now)
	assert.Error(t, err)
}

func TestRunFlags(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &bytes.Buffer{}, time.Now()))
	assert.Contains(t, stdout.String(), "fnocli fetcher v")

	err := run(context.Background(), []string{"-h"}, &bytes.Buffer{}, &bytes.Buffer{}, time.Now())
	assert.True(t, errors.Is(err, flag.ErrHelp))
}
