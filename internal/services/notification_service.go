package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/fountain/fountain-api/internal/client/http"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// webhookPayload is the body POSTed to an operation's webhook URL
type webhookPayload struct {
	Event     string                `json:"event"`
	Data      business.OutcomeEvent `json:"data"`
	Timestamp time.Time             `json:"timestamp"`
}

// WebhookNotifier POSTs outcome events to the operation's webhook URL
type WebhookNotifier struct {
	client *http.HTTPClient
}

// NewWebhookNotifier creates a webhook notifier over client
func NewWebhookNotifier(client *http.HTTPClient) *WebhookNotifier {
	return &WebhookNotifier{client: client}
}

// Notify delivers event when it carries a webhook URL
func (n *WebhookNotifier) Notify(ctx context.Context, event business.OutcomeEvent) error {
	if event.WebhookURL == "" {
		return nil
	}
	resp, err := n.client.Post(ctx, event.WebhookURL, webhookPayload{
		Event:     event.Event,
		Data:      event,
		Timestamp: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	return resp.Body.Close()
}

// QueuePublisher publishes a message body with string attributes
type QueuePublisher interface {
	Publish(ctx context.Context, body string, attributes map[string]string) (string, error)
}

// QueueNotifier publishes outcome events to a message queue
type QueueNotifier struct {
	publisher QueuePublisher
}

// NewQueueNotifier creates a queue notifier over publisher
func NewQueueNotifier(publisher QueuePublisher) *QueueNotifier {
	return &QueueNotifier{publisher: publisher}
}

// Notify publishes event with EventType and StablecoinID attributes
func (n *QueueNotifier) Notify(ctx context.Context, event business.OutcomeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome event: %w", err)
	}
	_, err = n.publisher.Publish(ctx, string(body), map[string]string{
		"EventType":    event.Event,
		"StablecoinID": event.StablecoinID.String(),
	})
	return err
}

// EmailSender sends one email through Resend
type EmailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

var outcomeEmailTemplate = template.Must(template.New("outcome").Parse(`<p>Operation <strong>{{.OperationID}}</strong> for {{.CurrencyCode}} finished with status <strong>{{.Status}}</strong>.</p>
<p>Amount: {{.Amount}}</p>
{{if .SettlementTxID}}<p>Ledger transaction: {{.SettlementTxID}}</p>{{end}}
{{if .ExcessRefunded.IsPositive}}<p>Excess refunded: {{.ExcessRefunded}}</p>{{end}}`))

// EmailNotifier emails outcome events to an operations mailbox
type EmailNotifier struct {
	sender    EmailSender
	fromEmail string
	fromName  string
	to        []string
}

// NewEmailNotifier creates an email notifier with a Resend client
func NewEmailNotifier(apiKey, fromEmail, fromName string, to []string) *EmailNotifier {
	return NewEmailNotifierWithSender(resend.NewClient(apiKey).Emails, fromEmail, fromName, to)
}

// NewEmailNotifierWithSender creates an email notifier over sender
func NewEmailNotifierWithSender(sender EmailSender, fromEmail, fromName string, to []string) *EmailNotifier {
	return &EmailNotifier{sender: sender, fromEmail: fromEmail, fromName: fromName, to: to}
}

// Notify sends a summary email of event
func (n *EmailNotifier) Notify(ctx context.Context, event business.OutcomeEvent) error {
	if len(n.to) == 0 {
		return nil
	}
	var html bytes.Buffer
	if err := outcomeEmailTemplate.Execute(&html, event); err != nil {
		return fmt.Errorf("failed to render outcome email: %w", err)
	}

	_, err := n.sender.Send(&resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail),
		To:      n.to,
		Subject: fmt.Sprintf("[%s] %s %s", event.CurrencyCode, event.Event, event.Status),
		Html:    html.String(),
		Tags: []resend.Tag{
			{Name: "event", Value: sanitizeTag(event.Event)},
			{Name: "status", Value: sanitizeTag(string(event.Status))},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send outcome email: %w", err)
	}
	return nil
}

// sanitizeTag keeps the characters Resend accepts in tag values
func sanitizeTag(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// MultiNotifier fans an event out to every notifier. Each failure is logged
// and the joined error returned; one failing channel never blocks the others.
type MultiNotifier struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewMultiNotifier creates a fan-out notifier. Nil entries are skipped.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{logger: logger.Log.With(zap.String("component", "notifier"))}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Notify delivers event to every notifier
func (m *MultiNotifier) Notify(ctx context.Context, event business.OutcomeEvent) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			m.logger.Warn("Notification channel failed",
				zap.String("event", event.Event),
				zap.String("operation_id", event.OperationID.String()),
				zap.String("channel", fmt.Sprintf("%T", n)),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
