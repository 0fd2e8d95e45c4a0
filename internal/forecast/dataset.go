// Package forecast loads the pre-computed mortgage indicator forecast table
// and answers the queries the dashboard needs: date windows, single-indicator
// series, nearest-row lookup, CSV export and a correlation matrix.
package forecast

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagewatch/pkg/models"
	"github.com/seenimoa/mortgagewatch/pkg/utils"
)

// DateColumn is the header of the date column, matched case-insensitively.
const DateColumn = "Date"

var (
	// ErrNoDateColumn is returned when the header has no Date column.
	ErrNoDateColumn = errors.New("forecast: no Date column")
	// ErrEmpty is returned for a file without a header row.
	ErrEmpty = errors.New("forecast: empty file")
	// ErrUnknownIndicator is returned when a named column does not exist.
	ErrUnknownIndicator = errors.New("forecast: unknown indicator")
)

// Dataset is an immutable, date-sorted forecast table.
type Dataset struct {
	dateHeader  string
	columns     []string // indicator columns in file order
	rows        []models.ForecastRow
	yieldColumn string
}

// Load reads the CSV file at path. yieldColumn names the indicator used as
// the forecast 10-year yield; it may be absent from the file.
func Load(path, yieldColumn string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open forecast %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Parse(f, yieldColumn)
	if err != nil {
		return nil, fmt.Errorf("load forecast %s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"path":       path,
		"rows":       len(ds.rows),
		"indicators": len(ds.columns),
		"has_yield":  ds.HasYield(),
	}).Debug("forecast dataset loaded")
	return ds, nil
}

// Parse reads a forecast table from r. Empty or non-numeric cells become NaN.
func Parse(r io.Reader, yieldColumn string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	dateIdx := -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if dateIdx < 0 && strings.EqualFold(header[i], DateColumn) {
			dateIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, ErrNoDateColumn
	}

	ds := &Dataset{
		dateHeader:  header[dateIdx],
		yieldColumn: yieldColumn,
	}
	for i, h := range header {
		if i != dateIdx {
			ds.columns = append(ds.columns, h)
		}
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		date, err := utils.ParseDate(record[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := models.ForecastRow{Date: date, Values: make(map[string]float64, len(ds.columns))}
		for i, cell := range record {
			if i == dateIdx {
				continue
			}
			row.Values[header[i]] = parseCell(cell)
		}
		ds.rows = append(ds.rows, row)
	}

	sort.SliceStable(ds.rows, func(i, j int) bool {
		return ds.rows[i].Date.Before(ds.rows[j].Date)
	})
	return ds, nil
}

func parseCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Rows returns the rows in date order. The slice is a copy.
func (d *Dataset) Rows() []models.ForecastRow {
	out := make([]models.ForecastRow, len(d.rows))
	copy(out, d.rows)
	return out
}

// Indicators returns the indicator column names in file order.
func (d *Dataset) Indicators() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasIndicator reports whether name is one of the indicator columns.
func (d *Dataset) HasIndicator(name string) bool {
	for _, c := range d.columns {
		if c == name {
			return true
		}
	}
	return false
}

// YieldColumn returns the configured yield indicator name.
func (d *Dataset) YieldColumn() string { return d.yieldColumn }

// HasYield reports whether the yield indicator is present in the file.
func (d *Dataset) HasYield() bool { return d.HasIndicator(d.yieldColumn) }

// Yield returns the forecast yield of row, or NaN when the column is
// missing or the cell is empty.
func (d *Dataset) Yield(row models.ForecastRow) float64 {
	if v, ok := row.Value(d.yieldColumn); ok {
		return v
	}
	return math.NaN()
}

// Filter returns the rows dated within [from, to], inclusive. A zero bound
// is open.
func (d *Dataset) Filter(from, to time.Time) *Dataset {
	out := &Dataset{
		dateHeader:  d.dateHeader,
		columns:     d.columns,
		yieldColumn: d.yieldColumn,
	}
	if !from.IsZero() {
		from = utils.StartOfDay(from)
	}
	if !to.IsZero() {
		to = utils.StartOfDay(to)
	}
	for _, r := range d.rows {
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		out.rows = append(out.rows, r)
	}
	return out
}

// Series returns the dated values of one indicator, skipping empty cells.
func (d *Dataset) Series(name string) ([]models.SeriesPoint, error) {
	if !d.HasIndicator(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, name)
	}
	points := make([]models.SeriesPoint, 0, len(d.rows))
	for _, r := range d.rows {
		if v, ok := r.Value(name); ok {
			points = append(points, models.SeriesPoint{Date: r.Date, Value: v})
		}
	}
	return points, nil
}

// Latest returns the row with the greatest date.
func (d *Dataset) Latest() (models.ForecastRow, bool) {
	if len(d.rows) == 0 {
		return models.ForecastRow{}, false
	}
	return d.rows[len(d.rows)-1], true
}

// Nearest returns the last row dated on or before t. When t precedes every
// row, the first row is returned.
func (d *Dataset) Nearest(t time.Time) (models.ForecastRow, bool) {
	if len(d.rows) == 0 {
		return models.ForecastRow{}, false
	}
	day := utils.StartOfDay(t)
	i := sort.Search(len(d.rows), func(i int) bool {
		return d.rows[i].Date.After(day)
	})
	if i == 0 {
		return d.rows[0], true
	}
	return d.rows[i-1], true
}

// Bounds returns the first and last row dates.
func (d *Dataset) Bounds() (from, to time.Time, ok bool) {
	if len(d.rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return d.rows[0].Date, d.rows[len(d.rows)-1].Date, true
}

// WriteCSV writes the rows with the original header order, Date first.
// Empty cells are written back as empty strings.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{d.dateHeader}, d.columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, r := range d.rows {
		record[0] = utils.FormatDate(r.Date)
		for i, c := range d.columns {
			v, ok := r.Value(c)
			if !ok {
				record[i+1] = ""
				continue
			}
			record[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
