package xrpl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu       sync.Mutex
	payments []xrpl.PaymentEvent
	ledgers  []xrpl.LedgerClosedEvent
}

func (h *recordingHandler) HandlePayment(e xrpl.PaymentEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payments = append(h.payments, e)
}

func (h *recordingHandler) HandleLedgerClosed(e xrpl.LedgerClosedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ledgers = append(h.ledgers, e)
}

func (h *recordingHandler) snapshot() ([]xrpl.PaymentEvent, []xrpl.LedgerClosedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]xrpl.PaymentEvent(nil), h.payments...), append([]xrpl.LedgerClosedEvent(nil), h.ledgers...)
}

const streamFixtures = `{"type":"ledgerClosed","ledger_index":9001,"txn_count":3}
{"type":"transaction","validated":true,"ledger_index":9001,"hash":"TX1","tx_json":{"TransactionType":"Payment","Account":"rSender","Destination":"rWatched","DeliverMax":"5000000"},"meta":{"TransactionResult":"tesSUCCESS","delivered_amount":"4000000"}}
{"type":"transaction","validated":true,"ledger_index":9001,"transaction":{"TransactionType":"Payment","Account":"rSender","Destination":"rWatched","Amount":"2000000","hash":"TX2"},"meta":{"TransactionResult":"tesSUCCESS","delivered_amount":"unavailable"}}
{"type":"transaction","validated":true,"hash":"TX3","tx_json":{"TransactionType":"Payment","Account":"rSender","Destination":"rWatched","Amount":"1000000"},"meta":{"TransactionResult":"tecPATH_DRY"}}
{"type":"transaction","validated":false,"hash":"TX4","tx_json":{"TransactionType":"Payment","Account":"rSender","Destination":"rWatched","Amount":"1000000"},"meta":{"TransactionResult":"tesSUCCESS","delivered_amount":"1000000"}}
{"type":"transaction","validated":true,"hash":"TX5","tx_json":{"TransactionType":"Payment","Account":"rSender","Destination":"rWatched"},"meta":{"TransactionResult":"tesSUCCESS","delivered_amount":{"currency":"BRL","issuer":"rI","value":"3"}}}
{"type":"transaction","validated":true,"hash":"TX6","tx_json":{"TransactionType":"TrustSet","Account":"rSender"},"meta":{"TransactionResult":"tesSUCCESS"}}
not json`

func TestStream_SubscribesAndDispatches(t *testing.T) {
	upgrader := websocket.Upgrader{}
	commands := make(chan map[string]interface{}, 10)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for {
				var cmd map[string]interface{}
				if err := conn.ReadJSON(&cmd); err != nil {
					return
				}
				commands <- cmd
			}
		}()

		for _, line := range strings.Split(streamFixtures, "\n") {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		}
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	stream := xrpl.NewStream("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, stream.Subscribe(context.Background(), "rWatched"))
	assert.True(t, stream.Watched("rWatched"))

	handler := &recordingHandler{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stream.Run(ctx, handler) }()

	require.Eventually(t, func() bool {
		payments, ledgers := handler.snapshot()
		return len(payments) == 2 && len(ledgers) == 1
	}, 2*time.Second, 10*time.Millisecond)

	payments, ledgers := handler.snapshot()
	assert.Equal(t, uint32(9001), ledgers[0].LedgerIndex)

	assert.Equal(t, "TX1", payments[0].TxID)
	assert.Equal(t, "rSender", payments[0].From)
	assert.Equal(t, "rWatched", payments[0].To)
	assert.True(t, payments[0].Amount.Value.Equal(decimal.NewFromInt(4)), "delivered amount wins over DeliverMax")

	assert.Equal(t, "TX2", payments[1].TxID)
	assert.True(t, payments[1].Amount.Value.Equal(decimal.NewFromInt(2)))

	first := <-commands
	assert.Equal(t, "subscribe", first["command"])
	assert.Equal(t, []interface{}{"ledger"}, first["streams"])
	second := <-commands
	assert.Equal(t, []interface{}{"rWatched"}, second["accounts"])

	require.NoError(t, stream.Unsubscribe(context.Background(), "rWatched"))
	assert.False(t, stream.Watched("rWatched"))
}
