package collector

import (
	"errors"

	"ReplayLab/internal/model"
)

// ErrNoBars is returned when a source holds no bars for a symbol.
var ErrNoBars = errors.New("no bars")

// Source defines the interface for loading historical bars.
type Source interface {
	LoadBars(symbol string) (*model.BarSeries, error)
	Name() string
}
