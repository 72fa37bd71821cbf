package collector

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReplayLab/internal/config"
	"ReplayLab/internal/model"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestCSVSource_LoadBars(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ACME.csv", `time,open,high,low,close,volume,margin_of_safety
2024-01-03,11,12,10,11.5,1200,
2024-01-02,10,11,9,10.5,1000,0.25
2024-01-04T00:00:00Z,12,13,11,12.5,1300,0.3
`)

	series, err := NewCSVSource(dir).LoadBars("acme")
	require.NoError(t, err)
	require.Len(t, series.Bars, 3)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), series.Bars[0].Time)
	assert.Equal(t, 10.5, series.Bars[0].Close)
	assert.Equal(t, 0.25, series.Bars[0].MarginOfSafety)
	assert.True(t, math.IsNaN(series.Bars[1].MarginOfSafety))
	assert.Equal(t, 1300.0, series.Bars[2].Volume)
}

func TestCSVSource_Errors(t *testing.T) {
	dir := t.TempDir()
	src := NewCSVSource(dir)

	_, err := src.LoadBars("MISSING")
	assert.Error(t, err)

	writeFile(t, dir, "EMPTY.csv", "time,open,high,low,close,volume,margin_of_safety\n")
	_, err = src.LoadBars("EMPTY")
	assert.ErrorIs(t, err, ErrNoBars)

	writeFile(t, dir, "BAD.csv", "time,open,high,low,close,volume,margin_of_safety\n2024-01-02,x,1,1,1,1,\n")
	_, err = src.LoadBars("BAD")
	assert.ErrorContains(t, err, "open")
}

func TestCSVSource_RejectsNonFinitePrices(t *testing.T) {
	dir := t.TempDir()
	src := NewCSVSource(dir)
	header := "time,open,high,low,close,volume,margin_of_safety\n"

	for name, row := range map[string]string{
		"close":  "2024-01-02,10,11,9,NaN,1000,",
		"high":   "2024-01-02,10,+Inf,9,10,1000,",
		"low":    "2024-01-02,10,11,-inf,10,1000,",
		"volume": "2024-01-02,10,11,9,10,nan,",
	} {
		sym := strings.ToUpper(name)
		writeFile(t, dir, sym+".csv", header+"2024-01-01,10,11,9,10,1000,\n"+row+"\n")
		_, err := src.LoadBars(sym)
		assert.ErrorContains(t, err, name+": non-finite", "column %s", name)
	}
}

func TestCSVSource_DuplicateTimestampsKeepLast(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "DUP.csv", `time,open,high,low,close,volume,margin_of_safety
2024-01-02,10,11,9,10,1000,
2024-01-02,10,11,9,10.8,1000,
`)
	series, err := NewCSVSource(dir).LoadBars("DUP")
	require.NoError(t, err)
	require.Len(t, series.Bars, 1)
	assert.Equal(t, 10.8, series.Bars[0].Close)
}

func TestCollect_AlignsSeries(t *testing.T) {
	rc := config.DefaultRunConfig()
	rc.RSI.Enabled = true
	rc.MACD.Enabled = true
	rc.Stochastic.Enabled = true
	rc.Band.Enabled = true
	rc.Volume.Enabled = true

	ind, err := NewCollector(&MockSource{Price: 100, Count: 120}).Collect("MOCK", rc)
	require.NoError(t, err)
	n := ind.Len()
	require.Equal(t, 120, n)

	for name, s := range map[string][]float64{
		"trend": ind.TrendMA, "rsi": ind.RSI, "macd": ind.MACDHist, "stoch": ind.StochMid.K,
		"band": ind.BandPercent, "volume avg": ind.VolumeAvg, "margin": ind.Margin,
	} {
		assert.Len(t, s, n, name)
	}
	assert.True(t, math.IsNaN(ind.TrendMA[rc.Trend.Period-2]))
	assert.False(t, math.IsNaN(ind.TrendMA[rc.Trend.Period-1]))
}

func TestCollect_SkipsDisabledFamilies(t *testing.T) {
	ind, err := NewCollector(&MockSource{Price: 50, Count: 60}).Collect("MOCK", config.DefaultRunConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, ind.TrendMA)
	assert.Nil(t, ind.RSI)
	assert.Nil(t, ind.MACDHist)
	assert.Nil(t, ind.VolumeAvg)
}

func TestCollect_EmptySource(t *testing.T) {
	_, err := NewCollector(&MockSource{Bars: []model.OHLCV{}}).Collect("MOCK", config.DefaultRunConfig())
	assert.ErrorIs(t, err, ErrNoBars)
}
