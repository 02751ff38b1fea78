package dataprocessing

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fnocli/internal/accuracy"
)

const sampleIndexCSV = `Index Name,Index Date,Open Index Value,High Index Value,Low Index Value,Closing Index Value,Points Change,Change(%),Volume,Turnover (Rs. Cr.),P/E,P/B,Div Yield
Nifty 50,28-08-2020,11602.95,11686.05,11589.20,11647.60,88.35,0.76,713416890,36545.46,34.09,3.21,1.21
Nifty Next 50,28-08-2020,27570.00,27747.35,27518.10,27707.85,203.20,0.74,109282345,6512.11,44.52,4.01,1.08
`

func TestIndexCloseFileName(t *testing.T) {
	date := time.Date(2020, 8, 28, 0, 0, 0, 0, time.UTC)
	name := IndexCloseFileName(date)
	assert.Equal(t, "ind_close_all_28082020.csv", name)

	parsed, err := IndexCloseFileDate("/tmp/" + strings.ToUpper(name[:3]) + name[3:])
	require.NoError(t, err)
	assert.Equal(t, date, parsed)

	_, err = IndexCloseFileDate("fao_participant_oi_28082020.csv")
	assert.Error(t, err)
}

func TestParseIndexClose(t *testing.T) {
	c, err := ParseIndexClose(strings.NewReader(sampleIndexCSV), "nifty 50")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 8, 28, 0, 0, 0, 0, time.UTC), c.Date)
	assert.InDelta(t, 11647.60, c.Value, 1e-9)

	_, err = ParseIndexClose(strings.NewReader(sampleIndexCSV), "Nifty Bank")
	assert.ErrorIs(t, err, ErrIndexNotFound)

	_, err = ParseIndexClose(strings.NewReader("a,b,c\n1,2,3\n"), DefaultIndexName)
	assert.Error(t, err)
}

func TestSaveClosesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "closes.csv")
	in := []accuracy.Close{
		{Date: d(1), Value: 21853.8},
		{Date: d(0), Value: 21697.45},
	}
	require.NoError(t, SaveCloses(path, in))

	out, err := LoadCloses(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, d(0), out[0].Date)
	assert.InDelta(t, 21697.45, out[0].Value, 1e-9)
}
