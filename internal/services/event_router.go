package services

import (
	"context"
	"sync"
	"time"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/constants"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DepositHandler consumes deposit notices for one watched address
type DepositHandler func(ctx context.Context, notice business.DepositNotice)

// LedgerClosedHandler reacts to a validated ledger index advance
type LedgerClosedHandler func(ctx context.Context, ledgerIndex uint32)

// RouterConfig configures the EventRouter
type RouterConfig struct {
	PollInterval    time.Duration
	PollingEnabled  bool
	ActivationStake decimal.Decimal
}

type route struct {
	handler    DepositHandler
	cancelPoll context.CancelFunc
}

// EventRouter owns the watched-address routing table. It demultiplexes the
// shared ledger stream to per-address handlers and runs the balance polling
// fallback. Handlers always run on their own goroutine.
type EventRouter struct {
	gateway LedgerGateway
	config  RouterConfig
	logger  *zap.Logger

	mu             sync.RWMutex
	routes         map[string]*route
	ledgerHandlers []LedgerClosedHandler
	lastLedger     uint32

	baseCtx  context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewEventRouter creates a router with an empty routing table
func NewEventRouter(gateway LedgerGateway, config RouterConfig) *EventRouter {
	if config.PollInterval <= 0 {
		config.PollInterval = constants.DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EventRouter{
		gateway: gateway,
		config:  config,
		logger:  logger.Log.With(zap.String("component", "event_router")),
		routes:  make(map[string]*route),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Stop cancels every polling task and waits for in-flight handlers
func (r *EventRouter) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
		r.mu.Lock()
		for _, rt := range r.routes {
			if rt.cancelPoll != nil {
				rt.cancelPoll()
			}
		}
		r.routes = make(map[string]*route)
		r.mu.Unlock()
		r.wg.Wait()
	})
}

// Wait blocks until in-flight handlers and pollers return
func (r *EventRouter) Wait() {
	r.wg.Wait()
}

// OnLedgerClosed registers a handler for validated ledger advances
func (r *EventRouter) OnLedgerClosed(h LedgerClosedHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgerHandlers = append(r.ledgerHandlers, h)
}

// Watch registers handler for address, subscribes it on the ledger stream and
// starts its polling fallback. Re-watching replaces the previous route.
func (r *EventRouter) Watch(ctx context.Context, address string, handler DepositHandler) error {
	rt := &route{handler: handler}

	r.mu.Lock()
	if old, ok := r.routes[address]; ok && old.cancelPoll != nil {
		old.cancelPoll()
	}
	r.routes[address] = rt
	if r.config.PollingEnabled {
		pollCtx, cancel := context.WithCancel(r.baseCtx)
		rt.cancelPoll = cancel
		r.wg.Add(1)
		go r.poll(pollCtx, address, rt)
	}
	r.mu.Unlock()

	if err := r.gateway.Subscribe(ctx, address); err != nil {
		// polling still covers the address
		r.logger.Warn("Failed to subscribe address on ledger stream",
			zap.String("wallet_address", address),
			zap.Error(err))
		return err
	}

	r.logger.Debug("Watching address", zap.String("wallet_address", address))
	return nil
}

// Unwatch removes the route for address and halts its polling
func (r *EventRouter) Unwatch(ctx context.Context, address string) {
	r.mu.Lock()
	rt, ok := r.routes[address]
	if ok {
		delete(r.routes, address)
		if rt.cancelPoll != nil {
			rt.cancelPoll()
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	if err := r.gateway.Unsubscribe(ctx, address); err != nil {
		r.logger.Warn("Failed to unsubscribe address",
			zap.String("wallet_address", address),
			zap.Error(err))
	}
	r.logger.Debug("Stopped watching address", zap.String("wallet_address", address))
}

// Watching reports whether address has a route
func (r *EventRouter) Watching(address string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[address]
	return ok
}

// HandlePayment dispatches a stream payment to the destination's handler.
// Unmatched payments are dropped.
func (r *EventRouter) HandlePayment(ev xrpl.PaymentEvent) {
	r.mu.RLock()
	rt, ok := r.routes[ev.To]
	r.mu.RUnlock()
	if !ok || !ev.Amount.IsNative() {
		return
	}

	notice := business.DepositNotice{
		Address:   ev.To,
		TxID:      ev.TxID,
		Amount:    ev.Amount.Value,
		Depositor: ev.From,
	}
	if notice.Depositor == "" {
		notice.Depositor = constants.UnknownDepositor
	}
	r.dispatch(rt.handler, notice)
}

// HandleLedgerClosed fans a validated ledger advance out to every ledger handler.
// Indices at or below the last seen one are ignored.
func (r *EventRouter) HandleLedgerClosed(ev xrpl.LedgerClosedEvent) {
	r.mu.Lock()
	if ev.LedgerIndex <= r.lastLedger {
		r.mu.Unlock()
		return
	}
	r.lastLedger = ev.LedgerIndex
	handlers := append([]LedgerClosedHandler(nil), r.ledgerHandlers...)
	r.mu.Unlock()

	for _, h := range handlers {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			h(r.baseCtx, ev.LedgerIndex)
		}()
	}
}

// PollLedger drives HandleLedgerClosed from the validated ledger index when
// no push stream is available.
func (r *EventRouter) PollLedger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.baseCtx.Done():
			return
		case <-ticker.C:
			index, err := r.gateway.GetValidatedLedgerIndex(ctx)
			if err != nil {
				r.logger.Warn("Failed to read validated ledger index", zap.Error(err))
				continue
			}
			r.HandleLedgerClosed(xrpl.LedgerClosedEvent{LedgerIndex: index})
		}
	}
}

func (r *EventRouter) dispatch(handler DepositHandler, notice business.DepositNotice) {
	if r.baseCtx.Err() != nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("Deposit handler panicked",
					zap.String("wallet_address", notice.Address),
					zap.String("tx_id", notice.TxID),
					zap.Any("panic", rec))
			}
		}()
		handler(r.baseCtx, notice)
	}()
}

// poll checks the balance every interval. The first time it exceeds the
// activation stake it emits a synthetic notice and stops.
func (r *EventRouter) poll(ctx context.Context, address string, rt *route) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		balance, err := r.gateway.GetBalance(ctx, address)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Debug("Balance poll failed",
					zap.String("wallet_address", address),
					zap.Error(err))
			}
			continue
		}
		if !balance.GreaterThan(r.config.ActivationStake) {
			continue
		}

		r.mu.Lock()
		current, ok := r.routes[address]
		var stop context.CancelFunc
		if ok && current == rt {
			stop, rt.cancelPoll = rt.cancelPoll, nil
		}
		r.mu.Unlock()
		if stop != nil {
			defer stop()
		}
		if !ok || current != rt || ctx.Err() != nil {
			return
		}

		r.logger.Info("Polling detected deposit",
			zap.String("wallet_address", address),
			zap.String("balance", balance.String()))

		r.dispatch(rt.handler, business.DepositNotice{
			Address:   address,
			TxID:      constants.PollingTxPrefix + address,
			Amount:    balance.Sub(r.config.ActivationStake),
			Depositor: constants.UnknownDepositor,
			Polled:    true,
		})
		return
	}
}
