package calculator

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Bands is a Bollinger band set plus %B, the close's position inside the bands.
type Bands struct {
	Upper   []float64
	Middle  []float64
	Lower   []float64
	Percent []float64
}

// Bollinger computes bands of stdDev population standard deviations around the period SMA.
func Bollinger(closes []float64, period int, stdDev float64) (Bands, error) {
	if period <= 0 {
		return Bands{}, ErrInvalidPeriod
	}
	b := Bands{
		Upper:   nanSeries(len(closes)),
		Middle:  nanSeries(len(closes)),
		Lower:   nanSeries(len(closes)),
		Percent: nanSeries(len(closes)),
	}
	for i := period - 1; i < len(closes); i++ {
		window := stats.Float64Data(closes[i-period+1 : i+1])
		mean, err := stats.Mean(window)
		if err != nil {
			return Bands{}, fmt.Errorf("failed to calculate mean: %w", err)
		}
		sd, err := stats.StandardDeviationPopulation(window)
		if err != nil {
			return Bands{}, fmt.Errorf("failed to calculate the standard deviation: %w", err)
		}
		if math.IsNaN(mean) || math.IsNaN(sd) {
			continue
		}
		b.Middle[i] = mean
		b.Upper[i] = mean + stdDev*sd
		b.Lower[i] = mean - stdDev*sd
		if width := b.Upper[i] - b.Lower[i]; width > 0 {
			b.Percent[i] = (closes[i] - b.Lower[i]) / width
		} else {
			b.Percent[i] = 0.5
		}
	}
	return b, nil
}
