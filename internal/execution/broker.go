// Package execution turns decision events into fills and closed trades.
package execution

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"ReplayLab/internal/model"
)

var (
	// ErrUnexpectedDecision is returned for an entry while a lot is open or an exit while flat.
	ErrUnexpectedDecision = errors.New("unexpected decision")
	ErrInvalidPrice       = errors.New("price must be positive")
)

// EquityPoint is the account value after a closed trade.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

type lot struct {
	entryTime  time.Time
	entryPrice decimal.Decimal
	qty        decimal.Decimal
	cost       decimal.Decimal // notional plus entry commission
	entryFee   decimal.Decimal
	reason     string
}

// Broker is the fill simulator of one symbol. Each entry commits the whole cash balance and each
// exit sells the whole lot. It is safe for concurrent use.
type Broker struct {
	mu         sync.Mutex
	symbol     string
	initial    decimal.Decimal
	cash       decimal.Decimal
	commission decimal.Decimal
	open       *lot
	trades     []model.Trade
	equity     []EquityPoint
	logger     *log.Entry
}

// NewBroker creates a Broker with initialCapital in cash. commissionPct is charged on the notional
// of every fill.
func NewBroker(symbol string, initialCapital, commissionPct float64) *Broker {
	capital := decimal.NewFromFloat(initialCapital)
	return &Broker{
		symbol:     symbol,
		initial:    capital,
		cash:       capital,
		commission: decimal.NewFromFloat(commissionPct),
		logger:     log.WithFields(log.Fields{"symbol": symbol, "component": "broker"}),
	}
}

// OnDecision applies one decision. Ratchets do not trade.
func (b *Broker) OnDecision(ev model.DecisionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case ev.Kind == model.DecisionBuy:
		return b.enter(ev)
	case ev.Kind.Terminal():
		return b.exit(ev)
	default:
		return nil
	}
}

func (b *Broker) enter(ev model.DecisionEvent) error {
	if b.open != nil {
		return fmt.Errorf("%w: %s while a lot is open", ErrUnexpectedDecision, ev.Kind)
	}
	if ev.Price <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, ev.Price)
	}
	price := decimal.NewFromFloat(ev.Price)

	// cash = notional × (1 + commission)
	notional := b.cash.Div(decimal.NewFromInt(1).Add(b.commission))
	fee := notional.Mul(b.commission)
	qty := notional.Div(price)

	b.open = &lot{
		entryTime:  ev.Time,
		entryPrice: price,
		qty:        qty,
		cost:       notional.Add(fee),
		entryFee:   fee,
		reason:     strings.Join(ev.Reasons, "; "),
	}
	b.cash = b.cash.Sub(notional.Add(fee))

	b.logger.WithFields(log.Fields{
		"price": price.StringFixed(4),
		"qty":   qty.StringFixed(6),
		"fee":   fee.StringFixed(2),
	}).Debug("filled entry")
	return nil
}

func (b *Broker) exit(ev model.DecisionEvent) error {
	if b.open == nil {
		return fmt.Errorf("%w: %s while flat", ErrUnexpectedDecision, ev.Kind)
	}
	if ev.Price <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, ev.Price)
	}
	l := b.open
	price := decimal.NewFromFloat(ev.Price)

	proceeds := l.qty.Mul(price)
	fee := proceeds.Mul(b.commission)
	net := proceeds.Sub(fee)
	pnl := net.Sub(l.cost)

	b.cash = b.cash.Add(net)
	b.open = nil

	ret := decimal.Zero
	if !l.cost.IsZero() {
		ret = pnl.Div(l.cost)
	}
	trade := model.Trade{
		Symbol:      b.symbol,
		EntryTime:   l.entryTime,
		ExitTime:    ev.Time,
		EntryPrice:  l.entryPrice.InexactFloat64(),
		ExitPrice:   ev.Price,
		Qty:         l.qty.InexactFloat64(),
		Commission:  l.entryFee.Add(fee).InexactFloat64(),
		PnL:         pnl.InexactFloat64(),
		ReturnPct:   ret.InexactFloat64(),
		EntryReason: l.reason,
		ExitReason:  strings.Join(ev.Reasons, "; "),
		ExitKind:    ev.Kind,
	}
	b.trades = append(b.trades, trade)
	b.equity = append(b.equity, EquityPoint{Time: ev.Time, Equity: b.cash.InexactFloat64()})

	b.logger.WithFields(log.Fields{
		"price": price.StringFixed(4),
		"pnl":   pnl.StringFixed(2),
		"kind":  ev.Kind,
	}).Debug("filled exit")
	return nil
}

// Trades returns a copy of the closed trades in fill order.
func (b *Broker) Trades() []model.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Trade(nil), b.trades...)
}

// EquityCurve returns the account value after every closed trade, starting with the initial capital.
func (b *Broker) EquityCurve() []EquityPoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]EquityPoint, 0, len(b.equity)+1)
	out = append(out, EquityPoint{Equity: b.initial.InexactFloat64()})
	return append(out, b.equity...)
}

// Equity returns cash plus the open lot marked at mark.
func (b *Broker) Equity(mark float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	eq := b.cash
	if b.open != nil {
		eq = eq.Add(b.open.qty.Mul(decimal.NewFromFloat(mark)))
	}
	return eq.InexactFloat64()
}

// InPosition reports whether a lot is open.
func (b *Broker) InPosition() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open != nil
}
