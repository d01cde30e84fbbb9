package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpClient "github.com/fountain/fountain-api/internal/client/http"
	"github.com/fountain/fountain-api/internal/constants"
	"github.com/fountain/fountain-api/internal/mocks"
	"github.com/fountain/fountain-api/internal/services"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func outcomeEvent(webhookURL string) business.OutcomeEvent {
	return business.OutcomeEvent{
		Event:          constants.EventMintCompleted,
		OperationID:    uuid.New(),
		StablecoinID:   uuid.New(),
		CompanyID:      "company-1",
		CurrencyCode:   "BRX",
		Status:         business.OperationStatusCompleted,
		Amount:         dec("100"),
		Collateral:     dec("105"),
		ExcessRefunded: dec("5"),
		SettlementTxID: "ABC123",
		WebhookURL:     webhookURL,
		OccurredAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestWebhookNotifier_Notify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "delivered", status: http.StatusOK},
		{name: "rejected by receiver", status: http.StatusBadRequest, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			notifier := services.NewWebhookNotifier(httpClient.NewHTTPClient(
				httpClient.WithDefaultHeader("Content-Type", "application/json"),
				httpClient.WithRetryConfig(nil),
			))
			event := outcomeEvent(srv.URL + "/hooks")
			err := notifier.Notify(context.Background(), event)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, constants.EventMintCompleted, received["event"])
			data, ok := received["data"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, event.OperationID.String(), data["operation_id"])
			assert.Equal(t, "completed", data["status"])
			assert.NotContains(t, data, "webhook_url")
		})
	}
}

func TestWebhookNotifier_SkipsWithoutURL(t *testing.T) {
	notifier := services.NewWebhookNotifier(httpClient.NewHTTPClient())
	assert.NoError(t, notifier.Notify(context.Background(), outcomeEvent("")))
}

type fakePublisher struct {
	body       string
	attributes map[string]string
	err        error
}

func (p *fakePublisher) Publish(ctx context.Context, body string, attributes map[string]string) (string, error) {
	p.body = body
	p.attributes = attributes
	return "msg-1", p.err
}

func TestQueueNotifier_Notify(t *testing.T) {
	pub := &fakePublisher{}
	event := outcomeEvent("https://hooks.example.com")

	require.NoError(t, services.NewQueueNotifier(pub).Notify(context.Background(), event))
	assert.Equal(t, constants.EventMintCompleted, pub.attributes["EventType"])
	assert.Equal(t, event.StablecoinID.String(), pub.attributes["StablecoinID"])

	var decoded business.OutcomeEvent
	require.NoError(t, json.Unmarshal([]byte(pub.body), &decoded))
	assert.Equal(t, event.OperationID, decoded.OperationID)
	assert.Empty(t, decoded.WebhookURL)

	pub.err = errors.New("queue unavailable")
	assert.Error(t, services.NewQueueNotifier(pub).Notify(context.Background(), event))
}

type fakeEmailSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (s *fakeEmailSender) Send(req *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, req)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func TestEmailNotifier_Notify(t *testing.T) {
	sender := &fakeEmailSender{}
	notifier := services.NewEmailNotifierWithSender(sender, "ops@fountain.dev", "Fountain", []string{"treasury@example.com"})

	require.NoError(t, notifier.Notify(context.Background(), outcomeEvent("")))
	require.Len(t, sender.sent, 1)
	req := sender.sent[0]
	assert.Equal(t, "Fountain <ops@fountain.dev>", req.From)
	assert.Equal(t, []string{"treasury@example.com"}, req.To)
	assert.Equal(t, "[BRX] mint.completed completed", req.Subject)
	assert.Contains(t, req.Html, "ABC123")
	assert.Contains(t, req.Html, "Excess refunded: 5")
	assert.Equal(t, []resend.Tag{{Name: "event", Value: "mint_completed"}, {Name: "status", Value: "completed"}}, req.Tags)

	silent := services.NewEmailNotifierWithSender(sender, "ops@fountain.dev", "Fountain", nil)
	require.NoError(t, silent.Notify(context.Background(), outcomeEvent("")))
	assert.Len(t, sender.sent, 1)
}

func TestMultiNotifier_DeliversToEveryChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockNotifier(ctrl)
	second := mocks.NewMockNotifier(ctrl)
	event := outcomeEvent("")
	failure := errors.New("channel down")

	first.EXPECT().Notify(gomock.Any(), event).Return(failure)
	second.EXPECT().Notify(gomock.Any(), event).Return(nil)

	err := services.NewMultiNotifier(first, nil, second).Notify(context.Background(), event)
	assert.ErrorIs(t, err, failure)
}
