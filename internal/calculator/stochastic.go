package calculator

import "math"

// Stochastic computes %K over kPeriod bars and %D as the SMA of %K over dPeriod.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d []float64, err error) {
	if kPeriod <= 0 || dPeriod <= 0 {
		return nil, nil, ErrInvalidPeriod
	}
	hh, ll, err := RollingRange(highs, lows, kPeriod)
	if err != nil {
		return nil, nil, err
	}
	k = nanSeries(len(closes))
	for i := range closes {
		if i >= len(hh) || math.IsNaN(hh[i]) {
			continue
		}
		k[i] = 100 * Position(closes[i], hh[i], ll[i])
	}
	d, err = SMA(k, dPeriod)
	if err != nil {
		return nil, nil, err
	}
	return k, d, nil
}
