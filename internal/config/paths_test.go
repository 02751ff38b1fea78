package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "closes.csv")

	paths, err := PathsConfig{
		BaseDir:  base,
		DataDir:  "store",
		IndexCSV: abs,
	}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "store"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "store", "cache"), paths.CacheDir)
	assert.Equal(t, filepath.Join(base, DefaultDownloadsDir), paths.DownloadsDir)
	assert.Equal(t, filepath.Join(base, DefaultReportsDir, StrengthReportFile), paths.StrengthReportCSV)
	assert.Equal(t, filepath.Join(base, DefaultHistoryCSV), paths.HistoryCSV)
	assert.Equal(t, abs, paths.IndexCSV)

	assert.Equal(t, filepath.Join(paths.DownloadsDir, "a.csv"), paths.GetDownloadPath("a.csv"))
	assert.Equal(t, filepath.Join(paths.ReportsDir, "b.csv"), paths.GetReportPath("b.csv"))
	assert.Equal(t, filepath.Join(paths.LogsDir, "c.log"), paths.GetLogPath("c.log"))
	assert.Equal(t, filepath.Join(paths.CacheDir, "d"), paths.GetCachePath("d"))
}

func TestResolveDefaultsToExecutableDir(t *testing.T) {
	exeDir, err := ExecutableDir()
	require.NoError(t, err)

	paths, err := GetPaths()
	require.NoError(t, err)
	assert.Equal(t, exeDir, paths.BaseDir)
	assert.Equal(t, filepath.Join(exeDir, DefaultDataDir), paths.DataDir)
}

func TestEnsureDirectories(t *testing.T) {
	paths, err := PathsConfig{BaseDir: t.TempDir()}.Resolve()
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{paths.DataDir, paths.DownloadsDir, paths.ReportsDir, paths.CacheDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}

	assert.True(t, FileExists(paths.DataDir))
	assert.False(t, FileExists(paths.HistoryCSV))

	// logging the layout must not panic with a nil logger
	paths.LogPathResolution(nil)
}
