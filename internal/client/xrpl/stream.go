package xrpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	readTimeout  = 90 * time.Second
)

var ErrStreamClosed = errors.New("ledger stream not connected")

// Stream is a reconnecting rippled WebSocket subscription carrying the
// ledger stream plus account streams for watched addresses.
type Stream struct {
	url    string
	dialer *websocket.Dialer
	logger *zap.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	accounts map[string]struct{}
	nextID   int
}

// NewStream creates a stream for the given wss endpoint
func NewStream(url string, l *zap.Logger) *Stream {
	if l == nil {
		l = logger.Log
	}
	return &Stream{
		url:      url,
		dialer:   &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
		logger:   l,
		accounts: make(map[string]struct{}),
	}
}

// Run connects, resubscribes every watched account and dispatches events to
// handler until ctx ends. Dropped connections are re-dialed with exponential
// backoff.
func (s *Stream) Run(ctx context.Context, handler StreamHandler) error {
	reconnect := backoff.NewExponentialBackOff()
	reconnect.InitialInterval = time.Second
	reconnect.MaxInterval = time.Minute
	reconnect.MaxElapsedTime = 0

	for {
		started := time.Now()
		err := s.session(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(started) > reconnect.MaxInterval {
			reconnect.Reset()
		}

		wait := reconnect.NextBackOff()
		s.logger.Warn("Ledger stream disconnected, reconnecting",
			zap.Error(err),
			zap.Duration("retry_in", wait))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (s *Stream) session(ctx context.Context, handler StreamHandler) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	s.mu.Lock()
	s.conn = conn
	accounts := make([]string, 0, len(s.accounts))
	for a := range s.accounts {
		accounts = append(accounts, a)
	}
	err = s.writeLocked(map[string]interface{}{
		"command": "subscribe",
		"streams": []string{"ledger"},
	})
	if err == nil && len(accounts) > 0 {
		err = s.writeLocked(map[string]interface{}{
			"command":  "subscribe",
			"accounts": accounts,
		})
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
	}()

	if err != nil {
		return err
	}

	s.logger.Info("Ledger stream connected",
		zap.String("url", s.url),
		zap.Int("watched_accounts", len(accounts)))

	done := make(chan struct{})
	defer close(done)
	go s.keepalive(ctx, conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		s.dispatch(data, handler)
	}
}

func (s *Stream) keepalive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
			s.mu.Unlock()
			conn.Close()
			return
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			s.mu.Unlock()
			if err != nil {
				conn.Close()
				return
			}
		}
	}
}

func (s *Stream) dispatch(data []byte, handler StreamHandler) {
	var msg streamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Debug("Ignoring undecodable stream message", zap.Error(err))
		return
	}

	switch msg.Type {
	case "ledgerClosed":
		handler.HandleLedgerClosed(LedgerClosedEvent{LedgerIndex: msg.LedgerIndex, TxnCount: msg.TxnCount})
	case "transaction":
		if event, ok := decodePayment(msg); ok {
			handler.HandlePayment(event)
		}
	}
}

// decodePayment extracts a validated, successful native payment
func decodePayment(msg streamMessage) (PaymentEvent, bool) {
	tx := msg.TxJSON
	if tx == nil {
		tx = msg.Transaction
	}
	if tx == nil || tx.TransactionType != TxTypePayment || !msg.Validated || msg.Meta == nil {
		return PaymentEvent{}, false
	}
	if msg.Meta.TransactionResult != ResultSuccess {
		return PaymentEvent{}, false
	}

	var delivered Amount
	if err := json.Unmarshal(msg.Meta.DeliveredAmount, &delivered); err != nil {
		// "unavailable" on old ledgers; fall back to the requested amount
		switch {
		case tx.DeliverMax != nil:
			delivered = *tx.DeliverMax
		case tx.Amount != nil:
			delivered = *tx.Amount
		default:
			return PaymentEvent{}, false
		}
	}
	if !delivered.IsNative() || !delivered.Value.IsPositive() {
		return PaymentEvent{}, false
	}

	hash := msg.Hash
	if hash == "" {
		hash = tx.Hash
	}
	return PaymentEvent{
		TxID:        hash,
		From:        tx.Account,
		To:          tx.Destination,
		Amount:      delivered,
		LedgerIndex: msg.LedgerIndex,
	}, true
}

// Subscribe adds address to the watched accounts
func (s *Stream) Subscribe(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[address] = struct{}{}
	if s.conn == nil {
		// picked up on the next (re)connect
		return nil
	}
	return s.writeLocked(map[string]interface{}{
		"command":  "subscribe",
		"accounts": []string{address},
	})
}

// Unsubscribe removes address from the watched accounts
func (s *Stream) Unsubscribe(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[address]; !ok {
		return nil
	}
	delete(s.accounts, address)
	if s.conn == nil {
		return nil
	}
	return s.writeLocked(map[string]interface{}{
		"command":  "unsubscribe",
		"accounts": []string{address},
	})
}

// Watched reports whether address is currently subscribed
func (s *Stream) Watched(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[address]
	return ok
}

func (s *Stream) writeLocked(cmd map[string]interface{}) error {
	if s.conn == nil {
		return ErrStreamClosed
	}
	s.nextID++
	cmd["id"] = s.nextID
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := s.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("write %v: %w", cmd["command"], err)
	}
	return nil
}
