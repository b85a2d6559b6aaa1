package lead

import (
	"strings"

	"github.com/sotsvc/service-estimate/internal/domain"
)

// ContactLead is a general contact-form submission relayed to the intake
// webhook.
type ContactLead struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Message    string `json:"message"`
	FormType   string `json:"form_type"`
	SourceSite string `json:"source_site"`
}

// Validate checks required fields. Phone is optional.
func (c ContactLead) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return domain.NewValidationError("name is required")
	}
	if !looksLikeEmail(c.Email) {
		return domain.NewValidationError("a valid email is required")
	}
	if strings.TrimSpace(c.Message) == "" {
		return domain.NewValidationError("message is required")
	}
	return nil
}

// QuoteInquiry is a quote-request submission relayed to the intake webhook.
type QuoteInquiry struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ServiceType   string `json:"service_type"`
	Address       string `json:"address"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	SMSOptIn      bool   `json:"sms_opt_in"`
}

// Validate checks required fields.
func (q QuoteInquiry) Validate() error {
	if strings.TrimSpace(q.FullName) == "" {
		return domain.NewValidationError("full name is required")
	}
	if !looksLikeEmail(q.Email) {
		return domain.NewValidationError("a valid email is required")
	}
	if strings.TrimSpace(q.Phone) == "" {
		return domain.NewValidationError("phone is required")
	}
	if strings.TrimSpace(q.ServiceType) == "" {
		return domain.NewValidationError("service type is required")
	}
	if strings.TrimSpace(q.Address) == "" {
		return domain.NewValidationError("address is required")
	}
	return nil
}

func looksLikeEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at:], ".")
}
