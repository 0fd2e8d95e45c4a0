package forecast

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Date,30Y_Mortgage_Rate,10Y_Treasury_Yield,Unemployment
2025-03-01,6.80,4.30,4.1
2025-01-01,6.90,4.50,4.0
2025-02-01,6.85,,4.0
2025-04-01,6.70,4.10,n/a
`

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustParse(t *testing.T, data string) *Dataset {
	t.Helper()
	ds, err := Parse(strings.NewReader(data), "10Y_Treasury_Yield")
	require.NoError(t, err)
	return ds
}

func TestParseSortsAndKeepsColumnOrder(t *testing.T) {
	ds := mustParse(t, sample)

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, []string{"30Y_Mortgage_Rate", "10Y_Treasury_Yield", "Unemployment"}, ds.Indicators())
	assert.True(t, ds.HasYield())

	rows := ds.Rows()
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i-1].Date.Before(rows[i].Date))
	}
	assert.Equal(t, day(2025, 1, 1), rows[0].Date)

	_, ok := rows[1].Value("10Y_Treasury_Yield")
	assert.False(t, ok, "empty cell must be absent")
	_, ok = rows[3].Value("Unemployment")
	assert.False(t, ok, "non-numeric cell must be absent")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "y")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse(strings.NewReader("When,y\n2025-01-01,1\n"), "y")
	assert.ErrorIs(t, err, ErrNoDateColumn)

	_, err = Parse(strings.NewReader("Date,y\nnot-a-date,1\n"), "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseAcceptsDateLayouts(t *testing.T) {
	ds := mustParse(t, "date,10Y_Treasury_Yield\n01/15/2025,4.2\n2025-02,4.3\n2025-03-01 00:00:00,4.4\n")
	from, to, ok := ds.Bounds()
	require.True(t, ok)
	assert.Equal(t, day(2025, 1, 15), from)
	assert.Equal(t, day(2025, 3, 1), to)
}

func TestMissingYieldColumnLoads(t *testing.T) {
	ds, err := Parse(strings.NewReader("Date,Other\n2025-01-01,1\n"), "10Y_Treasury_Yield")
	require.NoError(t, err)
	assert.False(t, ds.HasYield())

	row, ok := ds.Latest()
	require.True(t, ok)
	assert.True(t, math.IsNaN(ds.Yield(row)))
}

func TestFilterInclusive(t *testing.T) {
	ds := mustParse(t, sample)

	f := ds.Filter(day(2025, 2, 1), day(2025, 3, 1))
	require.Equal(t, 2, f.Len())
	from, to, _ := f.Bounds()
	assert.Equal(t, day(2025, 2, 1), from)
	assert.Equal(t, day(2025, 3, 1), to)
	assert.Equal(t, ds.Indicators(), f.Indicators())

	assert.Equal(t, 4, ds.Filter(time.Time{}, time.Time{}).Len())
	assert.Equal(t, 2, ds.Filter(day(2025, 3, 1), time.Time{}).Len())
	assert.Equal(t, 0, ds.Filter(day(2026, 1, 1), time.Time{}).Len())
}

func TestSeriesSkipsEmptyCells(t *testing.T) {
	ds := mustParse(t, sample)

	pts, err := ds.Series("10Y_Treasury_Yield")
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, 4.50, pts[0].Value)
	assert.Equal(t, 4.10, pts[2].Value)

	_, err = ds.Series("Nope")
	assert.ErrorIs(t, err, ErrUnknownIndicator)
}

func TestLatestAndNearest(t *testing.T) {
	ds := mustParse(t, sample)

	row, ok := ds.Latest()
	require.True(t, ok)
	assert.Equal(t, day(2025, 4, 1), row.Date)
	assert.Equal(t, 4.10, ds.Yield(row))

	row, _ = ds.Nearest(day(2025, 3, 15))
	assert.Equal(t, day(2025, 3, 1), row.Date)

	row, _ = ds.Nearest(day(2025, 3, 1))
	assert.Equal(t, day(2025, 3, 1), row.Date)

	row, _ = ds.Nearest(day(2024, 6, 1))
	assert.Equal(t, day(2025, 1, 1), row.Date)

	row, _ = ds.Nearest(day(2030, 1, 1))
	assert.Equal(t, day(2025, 4, 1), row.Date)

	empty := ds.Filter(day(2030, 1, 1), time.Time{})
	_, ok = empty.Nearest(day(2025, 1, 1))
	assert.False(t, ok)
	_, ok = empty.Latest()
	assert.False(t, ok)
	_, _, ok = empty.Bounds()
	assert.False(t, ok)
}

func TestWriteCSVRoundTripsFilteredRows(t *testing.T) {
	ds := mustParse(t, sample)

	var buf bytes.Buffer
	require.NoError(t, ds.Filter(day(2025, 2, 1), time.Time{}).WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,30Y_Mortgage_Rate,10Y_Treasury_Yield,Unemployment", lines[0])
	assert.Equal(t, "2025-02-01,6.85,,4", lines[1])

	again, err := Parse(&buf, "10Y_Treasury_Yield")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Len())
}

func TestCorrelation(t *testing.T) {
	data := `Date,a,b,c,flat
2025-01-01,1,2,5,7
2025-02-01,2,4,4,7
2025-03-01,3,6,,7
2025-04-01,4,8,2,7
`
	ds := mustParse(t, data)
	m := ds.Correlation()

	ab, ok := m.At("a", "b")
	require.True(t, ok)
	assert.InDelta(t, 1.0, ab, 1e-9)

	ac, _ := m.At("a", "c")
	assert.InDelta(t, -1.0, ac, 1e-9, "pairs with an empty cell are skipped")

	aa, _ := m.At("a", "a")
	assert.Equal(t, 1.0, aa)

	flat, _ := m.At("a", "flat")
	assert.True(t, math.IsNaN(flat), "zero variance is undefined")

	_, ok = m.At("a", "missing")
	assert.False(t, ok)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "null")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	ds, err := Load(path, "10Y_Treasury_Yield")
	require.NoError(t, err)
	assert.Equal(t, "10Y_Treasury_Yield", ds.YieldColumn())
	assert.Equal(t, 4, ds.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), "y")
	assert.Error(t, err)
}
