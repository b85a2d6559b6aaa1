package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sotsvc/service-estimate/internal/domain"
	bookingDomain "github.com/sotsvc/service-estimate/internal/domain/booking"
	"github.com/sotsvc/service-estimate/internal/domain/pricing"
)

// DraftModel is the GORM model for the booking_drafts table.
type DraftModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessionID      string          `gorm:"uniqueIndex;not null;size:64"`
	ServiceType    string          `gorm:"size:30"`
	Sqft           int             `gorm:""`
	Frequency      string          `gorm:"size:20"`
	AddOns         json.RawMessage `gorm:"type:jsonb"`
	SpecialDetails string          `gorm:"size:1000"`
	Quote          json.RawMessage `gorm:"type:jsonb"`
	SelectedDate   *time.Time      `gorm:""`
	SelectedTime   string          `gorm:"size:30"`
	State          string          `gorm:"not null;size:30;index"`
	AttemptCount   int             `gorm:"not null;default:0"`
	LockoutUntil   *time.Time      `gorm:""`
	LastFailure    string          `gorm:"size:500"`
	Version        int64           `gorm:"not null;default:1"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DraftModel) TableName() string {
	return "booking_drafts"
}

// GormDraftRepository is the GORM-based implementation of DraftRepository.
type GormDraftRepository struct {
	db *gorm.DB
}

// NewGormDraftRepository creates a new GormDraftRepository.
func NewGormDraftRepository(db *gorm.DB) *GormDraftRepository {
	return &GormDraftRepository{db: db}
}

// FindBySession retrieves the draft owned by a session.
func (r *GormDraftRepository) FindBySession(ctx context.Context, sessionID string) (*bookingDomain.Draft, error) {
	var model DraftModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Draft", sessionID)
		}
		return nil, fmt.Errorf("failed to find draft by session: %w", err)
	}
	return toDomainDraft(&model)
}

// Save persists a new draft.
func (r *GormDraftRepository) Save(ctx context.Context, draft *bookingDomain.Draft) error {
	model, err := toDraftModel(draft)
	if err != nil {
		return fmt.Errorf("failed to convert draft to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Update persists changes to an existing draft with optimistic locking.
func (r *GormDraftRepository) Update(ctx context.Context, draft *bookingDomain.Draft) error {
	model, err := toDraftModel(draft)
	if err != nil {
		return fmt.Errorf("failed to convert draft to model: %w", err)
	}

	// Optimistic locking: only update if the version matches (current version - 1 since IncrementVersion was called)
	expectedVersion := draft.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&DraftModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"service_type":    model.ServiceType,
			"sqft":            model.Sqft,
			"frequency":       model.Frequency,
			"add_ons":         model.AddOns,
			"special_details": model.SpecialDetails,
			"quote":           model.Quote,
			"selected_date":   model.SelectedDate,
			"selected_time":   model.SelectedTime,
			"state":           model.State,
			"attempt_count":   model.AttemptCount,
			"lockout_until":   model.LockoutUntil,
			"last_failure":    model.LastFailure,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update draft: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("draft was modified by another transaction")
	}

	return nil
}

// Delete removes a session's draft. Deleting a missing draft is not an error.
func (r *GormDraftRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&DraftModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toDraftModel(d *bookingDomain.Draft) (*DraftModel, error) {
	var addOnsJSON json.RawMessage
	if len(d.AddOns()) > 0 {
		data, err := json.Marshal(d.AddOns())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal add-ons: %w", err)
		}
		addOnsJSON = data
	}

	var quoteJSON json.RawMessage
	if d.Quote() != nil {
		data, err := json.Marshal(d.Quote())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal quote: %w", err)
		}
		quoteJSON = data
	}

	attempts := d.Attempts()
	return &DraftModel{
		ID:             d.ID(),
		SessionID:      d.SessionID(),
		ServiceType:    string(d.ServiceType()),
		Sqft:           d.Sqft(),
		Frequency:      string(d.Frequency()),
		AddOns:         addOnsJSON,
		SpecialDetails: d.SpecialDetails(),
		Quote:          quoteJSON,
		SelectedDate:   d.SelectedDate(),
		SelectedTime:   d.SelectedTime(),
		State:          string(d.State()),
		AttemptCount:   attempts.Count,
		LockoutUntil:   attempts.LockoutUntil,
		LastFailure:    d.LastFailure(),
		Version:        d.Version(),
		CreatedAt:      d.CreatedAt(),
		UpdatedAt:      d.UpdatedAt(),
	}, nil
}

func toDomainDraft(m *DraftModel) (*bookingDomain.Draft, error) {
	var addOns []pricing.AddOn
	if len(m.AddOns) > 0 {
		if err := json.Unmarshal(m.AddOns, &addOns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal add-ons: %w", err)
		}
	}

	var quote *pricing.Quote
	if len(m.Quote) > 0 {
		var q pricing.Quote
		if err := json.Unmarshal(m.Quote, &q); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
		}
		quote = &q
	}

	state, err := bookingDomain.ParseFlowState(m.State)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructDraft(
		m.ID,
		m.SessionID,
		pricing.ServiceType(m.ServiceType),
		m.Sqft,
		pricing.Frequency(m.Frequency),
		addOns,
		m.SpecialDetails,
		quote,
		m.SelectedDate,
		m.SelectedTime,
		state,
		bookingDomain.PaymentAttempt{Count: m.AttemptCount, LockoutUntil: m.LockoutUntil},
		m.LastFailure,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
