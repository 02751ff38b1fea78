package nse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnocli/internal/infrastructure"
)

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Options{
		HomeURL:    srv.URL + "/",
		ArchiveURL: srv.URL,
		Timeout:    5 * time.Second,
		MaxElapsed: 15 * time.Second,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestURLs(t *testing.T) {
	date := time.Date(2020, 8, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t,
		"https://nsearchives.nseindia.com/content/nsccl/fao_participant_oi_28082020.csv",
		ParticipantURL(DefaultArchiveURL, date))
	assert.Equal(t,
		"https://nsearchives.nseindia.com/content/fo/fii_stats_28-Aug-2020.xls",
		FIIStatsURL(DefaultArchiveURL+"/", date))
	assert.Equal(t,
		"https://nsearchives.nseindia.com/content/indices/ind_close_all_28082020.csv",
		IndexCloseURL(DefaultArchiveURL, date))
}

func TestBootstrapSetsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "abc", Path: "/"})
			w.WriteHeader(http.StatusOK)
		default:
			cookie, err := r.Cookie("nsit")
			if err != nil || cookie.Value != "abc" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
			_, _ = w.Write([]byte("ok"))
		}
	}))
	defer srv.Close()

	c := testClient(t, srv)
	require.NoError(t, c.Bootstrap(context.Background()))

	body, err := c.Fetch(context.Background(), srv.URL+"/content/nsccl/x.csv")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	body, err := testClient(t, srv).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "data", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchNotFoundIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(t, srv).Fetch(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrNotPublished))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testClient(t, srv).Fetch(ctx, srv.URL)
	assert.Error(t, err)
}

func TestDownloadRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/content/nsccl/fao_participant_oi_03082020.csv",
			"/content/nsccl/fao_participant_oi_05082020.csv":
			_, _ = w.Write([]byte("report"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "fao_participant_oi_04082020.csv")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	// Monday 3 Aug to Sunday 9 Aug 2020
	from := time.Date(2020, 8, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 8, 9, 0, 0, 0, 0, time.UTC)

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())
	metrics, err := infrastructure.CreateStrengthMetrics(providers.Meter)
	require.NoError(t, err)

	summary, err := testClient(t, srv).WithMetrics(metrics).DownloadRange(context.Background(), from, to, dir)
	require.NoError(t, err)

	assert.Len(t, summary.Downloaded, 2)
	assert.Equal(t, []string{existing}, summary.Existing)
	assert.Len(t, summary.Unpublished, 2)
	assert.Len(t, summary.Files(), 3)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	latest, ok := LatestDownloadedDate(dir)
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 8, 5, 0, 0, 0, 0, time.UTC), latest)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `status="unpublished"`)
}

func TestDownloadRangeInvalid(t *testing.T) {
	c, err := NewClient(Options{}, nil)
	require.NoError(t, err)

	from := time.Date(2020, 8, 5, 0, 0, 0, 0, time.UTC)
	_, err = c.DownloadRange(context.Background(), from, from.AddDate(0, 0, -1), t.TempDir())
	assert.Error(t, err)
}

func TestTradingDays(t *testing.T) {
	days := TradingDays(time.Date(2020, 8, 7, 15, 0, 0, 0, time.UTC), time.Date(2020, 8, 10, 0, 0, 0, 0, time.UTC))
	require.Len(t, days, 2)
	assert.Equal(t, time.Friday, days[0].Weekday())
	assert.Equal(t, time.Monday, days[1].Weekday())

	_, ok := LatestDownloadedDate(t.TempDir())
	assert.False(t, ok)
}
