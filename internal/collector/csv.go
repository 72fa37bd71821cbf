package collector

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"ReplayLab/internal/model"
)

// barRecord is one row of a bar file. Fields stay strings so blank cells survive decoding.
type barRecord struct {
	Time           string `csv:"time"`
	Open           string `csv:"open"`
	High           string `csv:"high"`
	Low            string `csv:"low"`
	Close          string `csv:"close"`
	Volume         string `csv:"volume"`
	MarginOfSafety string `csv:"margin_of_safety"`
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

func parsePrice(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: non-finite value %q", name, s)
	}
	return v, nil
}

// ToModel converts the row. Explicit values must be finite; a blank volume or margin of safety
// becomes NaN.
func (r *barRecord) ToModel() (model.OHLCV, error) {
	var bar model.OHLCV
	var err error
	if bar.Time, err = parseTime(r.Time); err != nil {
		return bar, err
	}
	if bar.Open, err = parsePrice("open", r.Open); err != nil {
		return bar, err
	}
	if bar.High, err = parsePrice("high", r.High); err != nil {
		return bar, err
	}
	if bar.Low, err = parsePrice("low", r.Low); err != nil {
		return bar, err
	}
	if bar.Close, err = parsePrice("close", r.Close); err != nil {
		return bar, err
	}
	if strings.TrimSpace(r.Volume) == "" {
		bar.Volume = math.NaN()
	} else if bar.Volume, err = parsePrice("volume", r.Volume); err != nil {
		return bar, err
	}
	if strings.TrimSpace(r.MarginOfSafety) == "" {
		bar.MarginOfSafety = math.NaN()
	} else if bar.MarginOfSafety, err = parsePrice("margin_of_safety", r.MarginOfSafety); err != nil {
		return bar, err
	}
	return bar, nil
}

// CSVSource reads <Dir>/<SYMBOL>.csv files.
type CSVSource struct {
	Dir string
}

// NewCSVSource creates a CSVSource rooted at dir.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{Dir: dir}
}

func (s *CSVSource) Name() string { return "csv" }

// Path returns the file a symbol is read from.
func (s *CSVSource) Path(symbol string) string {
	return filepath.Join(s.Dir, strings.ToUpper(symbol)+".csv")
}

// LoadBars decodes the symbol's file and returns its bars in chronological order.
// Rows sharing a timestamp keep the last occurrence.
func (s *CSVSource) LoadBars(symbol string) (*model.BarSeries, error) {
	f, err := os.Open(s.Path(symbol))
	if err != nil {
		return nil, fmt.Errorf("open bars: %w", err)
	}
	defer f.Close()

	var records []*barRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Name(), err)
	}

	byTime := make(map[time.Time]model.OHLCV, len(records))
	for i, rec := range records {
		bar, err := rec.ToModel()
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", f.Name(), i+2, err)
		}
		byTime[bar.Time] = bar
	}
	if len(byTime) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoBars)
	}

	bars := make([]model.OHLCV, 0, len(byTime))
	for _, b := range byTime {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	return &model.BarSeries{Symbol: symbol, Bars: bars}, nil
}
