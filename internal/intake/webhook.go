// Package intake relays lead submissions to the marketing automation
// webhook, which handles storage and outbound email on its side.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sotsvc/service-estimate/internal/domain"
	"github.com/sotsvc/service-estimate/internal/domain/lead"
	"go.uber.org/zap"
)

// Relay is the outbound boundary for lead and quote submissions.
type Relay interface {
	SubmitContact(ctx context.Context, c lead.ContactLead) error
	SubmitQuote(ctx context.Context, q lead.QuoteInquiry) error
}

// WebhookClient posts lead payloads to the configured webhook URL.
type WebhookClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookClient creates a webhook relay client.
func NewWebhookClient(url string, logger *zap.Logger) *WebhookClient {
	return &WebhookClient{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// SubmitContact relays a contact-form lead.
func (w *WebhookClient) SubmitContact(ctx context.Context, c lead.ContactLead) error {
	return w.post(ctx, map[string]interface{}{
		"name":        c.Name,
		"email":       c.Email,
		"phone":       c.Phone,
		"message":     c.Message,
		"form_type":   c.FormType,
		"source_site": c.SourceSite,
	})
}

// SubmitQuote relays a quote inquiry. The webhook expects the inquiry
// flattened into the contact shape plus structured fields.
func (w *WebhookClient) SubmitQuote(ctx context.Context, q lead.QuoteInquiry) error {
	message := fmt.Sprintf("Service: %s\nAddress: %s\nPreferred Date: %s\nPreferred Time: %s\nSMS Opt-in: %v",
		q.ServiceType, q.Address, q.PreferredDate, q.PreferredTime, q.SMSOptIn)
	return w.post(ctx, map[string]interface{}{
		"name":           q.FullName,
		"email":          q.Email,
		"phone":          q.Phone,
		"message":        message,
		"form_type":      "quote_request",
		"service_type":   q.ServiceType,
		"address":        q.Address,
		"preferred_date": q.PreferredDate,
		"preferred_time": q.PreferredTime,
		"sms_opt_in":     q.SMSOptIn,
	})
}

// post sends one JSON payload. Any 2xx means accepted, even when the
// response body cannot be read or parsed; non-2xx and transport errors are
// transient failures eligible for retry upstream.
func (w *WebhookClient) post(ctx context.Context, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal intake payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build intake request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return domain.NewUnavailableError("intake webhook unreachable").WithCause(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.logger.Warn("intake webhook rejected submission",
			zap.Int("status", resp.StatusCode),
		)
		return domain.NewUnavailableError(fmt.Sprintf("intake webhook returned %d", resp.StatusCode))
	}

	// Body readability does not affect the outcome.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		w.logger.Debug("could not read intake response body", zap.Error(err))
	}
	return nil
}
