package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sotsvc/service-estimate/internal/domain/lead"
	"github.com/sotsvc/service-estimate/internal/events"
	"github.com/sotsvc/service-estimate/internal/intake"
	"github.com/sotsvc/service-estimate/internal/metrics"
	"github.com/sotsvc/service-estimate/internal/retry"
)

// ContactLeadRequest holds a contact-form submission.
type ContactLeadRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Message string `json:"message" binding:"required"`
}

// QuoteInquiryRequest holds a quote-request submission.
type QuoteInquiryRequest struct {
	FullName      string `json:"full_name" binding:"required"`
	Email         string `json:"email" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	ServiceType   string `json:"service_type" binding:"required"`
	Address       string `json:"address" binding:"required"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	SMSOptIn      bool   `json:"sms_opt_in"`
}

// LeadService relays lead forms to the intake webhook. The service keeps
// no lead data of its own; the webhook's automation owns storage and
// follow-up email.
type LeadService struct {
	relay      intake.Relay
	retry      retry.Policy
	producer   EventPublisher
	sourceSite string
	logger     *zap.Logger
}

// NewLeadService creates a new LeadService.
func NewLeadService(relay intake.Relay, policy retry.Policy, producer EventPublisher, sourceSite string, logger *zap.Logger) *LeadService {
	return &LeadService{
		relay:      relay,
		retry:      policy,
		producer:   producer,
		sourceSite: sourceSite,
		logger:     logger,
	}
}

// SubmitContact validates and relays a contact-form lead.
func (s *LeadService) SubmitContact(ctx context.Context, req ContactLeadRequest) error {
	l := lead.ContactLead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
		FormType:   "contact",
		SourceSite: s.sourceSite,
	}
	if err := l.Validate(); err != nil {
		return err
	}

	err := s.retry.Do(ctx, func() error {
		return s.relay.SubmitContact(ctx, l)
	})
	s.recordOutcome(ctx, l.FormType, l.Email, err)
	return err
}

// SubmitQuoteInquiry validates and relays a quote request.
func (s *LeadService) SubmitQuoteInquiry(ctx context.Context, req QuoteInquiryRequest) error {
	q := lead.QuoteInquiry{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		ServiceType:   req.ServiceType,
		Address:       req.Address,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		SMSOptIn:      req.SMSOptIn,
	}
	if err := q.Validate(); err != nil {
		return err
	}

	err := s.retry.Do(ctx, func() error {
		return s.relay.SubmitQuote(ctx, q)
	})
	s.recordOutcome(ctx, "quote_request", q.Email, err)
	return err
}

// recordOutcome updates metrics and, on success, publishes the lead event.
func (s *LeadService) recordOutcome(ctx context.Context, formType, email string, err error) {
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		s.logger.Warn("lead relay failed",
			zap.String("form_type", formType),
			zap.Error(err),
		)
	}
	metrics.LeadSubmissionsTotal.WithLabelValues(formType, outcome).Inc()
	if err != nil {
		return
	}

	evt := events.LeadSubmittedEvent{
		FormType:   formType,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
	cloudEvent, cerr := events.NewCloudEvent(eventSource, events.LeadSubmitted, evt)
	if cerr != nil {
		s.logger.Error("failed to create cloud event", zap.Error(cerr))
		return
	}
	if perr := s.producer.PublishEvent(ctx, email, cloudEvent); perr != nil {
		s.logger.Error("failed to publish lead event", zap.Error(perr))
	}
}
