package strategy

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ReplayLab/internal/config"
	"ReplayLab/internal/model"
	"ReplayLab/internal/risk"
)

// ErrDecisionFault marks a bar whose decision path panicked. The bar produced no signal and the
// engine state is left as it was before the bar.
var ErrDecisionFault = errors.New("decision fault")

// Engine replays one symbol. It owns the shape cache and the open position of that symbol only
// and must not be shared between goroutines.
type Engine struct {
	symbol   string
	rc       config.RunConfig
	families *Families
	tracker  *Tracker
	buy      *BuyDecider
	sell     *SellDecider
	stop     *risk.TrailingStop
	position *model.Position
	logger   *log.Entry
}

// NewEngine creates an Engine for symbol. rc is copied; later changes to the caller's value do not
// reach the engine.
func NewEngine(symbol string, rc config.RunConfig, logger *log.Entry) *Engine {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	families := BuildFamilies(&rc)
	return &Engine{
		symbol:   symbol,
		rc:       rc,
		families: families,
		tracker:  NewTracker(families.All(), rc.ShapeLookback),
		buy:      NewBuyDecider(rc, families),
		sell:     NewSellDecider(families.Signals),
		stop:     risk.NewTrailingStop(rc.StopLossPct),
		logger:   logger.WithField("symbol", symbol),
	}
}

// Position returns a copy of the open position, or nil when flat.
func (e *Engine) Position() *model.Position {
	if e.position == nil {
		return nil
	}
	p := *e.position
	return &p
}

// Step processes one bar: it updates every family state, then runs the buy side when flat or the
// sell side and trailing stop when in position. A panic inside the decision path is recovered into
// ErrDecisionFault and leaves the position untouched.
func (e *Engine) Step(f *model.Frame) (events []model.DecisionEvent, err error) {
	var saved *model.Position
	if e.position != nil {
		p := *e.position
		saved = &p
	}
	defer func() {
		if r := recover(); r != nil {
			e.position = saved
			events = nil
			err = fmt.Errorf("%w: bar %d: %v", ErrDecisionFault, f.Index, r)
		}
	}()

	e.tracker.Update(f)

	if e.position == nil {
		return e.stepFlat(f), nil
	}
	return e.stepInPosition(f), nil
}

func (e *Engine) stepFlat(f *model.Frame) []model.DecisionEvent {
	ok, trail := e.buy.Decide(f, e.tracker)
	if !ok {
		if len(trail) > 1 {
			e.logger.WithFields(log.Fields{"bar": f.Index, "trail": trail}).Debug("entry rejected")
		}
		return nil
	}

	e.position = e.stop.Open(f.Bar.Close, f.Bar.Time)
	e.logger.WithFields(log.Fields{"bar": f.Index, "price": f.Bar.Close, "stop": e.position.Stop}).Debug("position opened")
	return []model.DecisionEvent{e.event(f, model.DecisionBuy, f.Bar.Close, trail)}
}

func (e *Engine) stepInPosition(f *model.Frame) []model.DecisionEvent {
	if reason, ok := e.sell.Decide(f, e.tracker); ok {
		e.position = nil
		return []model.DecisionEvent{e.event(f, model.DecisionSell, f.Bar.Close, []string{ReasonTechnicalExit, reason})}
	}

	var events []model.DecisionEvent
	up := e.stop.Update(e.position, f.Bar.High, f.Bar.Close)
	if up.Ratcheted {
		events = append(events, e.event(f, model.DecisionStopLossRatchet, up.Stop,
			[]string{fmt.Sprintf("stop raised to %.4f (peak %.4f)", up.Stop, up.Peak)}))
	}
	if up.Exit {
		e.position = nil
		events = append(events, e.event(f, model.DecisionStopLossExit, f.Bar.Close,
			[]string{fmt.Sprintf("close %.4f below trailing stop %.4f", f.Bar.Close, up.Stop)}))
	}
	return events
}

func (e *Engine) event(f *model.Frame, kind model.DecisionKind, price float64, reasons []string) model.DecisionEvent {
	return model.DecisionEvent{
		Symbol:  e.symbol,
		Kind:    kind,
		Reasons: reasons,
		Price:   price,
		Time:    f.Bar.Time,
		Bar:     f.Index,
	}
}

// Replay steps through every bar of ind in order and hands each event to emit. It stops between
// bars when ctx is done. Faulted bars are reported to onFault and skipped.
func (e *Engine) Replay(ctx context.Context, ind *model.Indicators, emit func(model.DecisionEvent), onFault func(error)) error {
	for i := 0; i < ind.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		events, err := e.Step(ind.Frame(i))
		if err != nil {
			e.logger.WithError(err).Warn("bar degraded to no signal")
			if onFault != nil {
				onFault(err)
			}
			continue
		}
		for _, ev := range events {
			emit(ev)
		}
	}
	return nil
}
